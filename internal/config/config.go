package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	Fill    FillConfig
}

type ServerConfig struct {
	Port    int
	FillRPS float64
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

// FillConfig holds the cosmetic timings of a fill pass and the batch fan-out.
type FillConfig struct {
	HighlightMS       int
	ResumeHighlightMS int
	NotifyMS          int
	BatchConcurrency  int
}

func (f FillConfig) Highlight() time.Duration { return time.Duration(f.HighlightMS) * time.Millisecond }
func (f FillConfig) ResumeHighlight() time.Duration {
	return time.Duration(f.ResumeHighlightMS) * time.Millisecond
}
func (f FillConfig) Notify() time.Duration { return time.Duration(f.NotifyMS) * time.Millisecond }

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4100,
			FillRPS: 5,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Fill: FillConfig{
			HighlightMS:       2000,
			ResumeHighlightMS: 3000,
			NotifyMS:          3000,
			BatchConcurrency:  4,
		},
	}
}

// Load reads configuration from the config file backend and environment
// variables.
//
// The backend is a JSON file at $XDG_CONFIG_HOME/jobfill/config.json.
//
// A .env file in the working directory is loaded first; environment
// variables (JOBFILL_*) then override backend values on all platforms.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)

	return cfg, nil
}

// normalize replaces non-positive values that would disable a fill pass
// timer or the batch pool with their defaults. A non-positive
// server.fill_rps is kept: it turns the fill rate limiter off.
func normalize(cfg *Config) {
	d := defaults()
	if cfg.Fill.HighlightMS <= 0 {
		cfg.Fill.HighlightMS = d.Fill.HighlightMS
	}
	if cfg.Fill.ResumeHighlightMS <= 0 {
		cfg.Fill.ResumeHighlightMS = d.Fill.ResumeHighlightMS
	}
	if cfg.Fill.NotifyMS <= 0 {
		cfg.Fill.NotifyMS = d.Fill.NotifyMS
	}
	if cfg.Fill.BatchConcurrency <= 0 {
		cfg.Fill.BatchConcurrency = d.Fill.BatchConcurrency
	}
}
