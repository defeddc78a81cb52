package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "JOBFILL_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.fill_rps", typ: kFloat, env: "JOBFILL_SERVER_FILL_RPS",
		apply:   func(cfg *Config, v any) { cfg.Server.FillRPS = v.(float64) },
		extract: func(cfg Config) any { return cfg.Server.FillRPS },
	},
	{
		key: "storage.data_dir", typ: kString, env: "JOBFILL_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "JOBFILL_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "fill.highlight_ms", typ: kInt, env: "JOBFILL_FILL_HIGHLIGHT_MS",
		apply:   func(cfg *Config, v any) { cfg.Fill.HighlightMS = v.(int) },
		extract: func(cfg Config) any { return cfg.Fill.HighlightMS },
	},
	{
		key: "fill.resume_highlight_ms", typ: kInt, env: "JOBFILL_FILL_RESUME_HIGHLIGHT_MS",
		apply:   func(cfg *Config, v any) { cfg.Fill.ResumeHighlightMS = v.(int) },
		extract: func(cfg Config) any { return cfg.Fill.ResumeHighlightMS },
	},
	{
		key: "fill.notify_ms", typ: kInt, env: "JOBFILL_FILL_NOTIFY_MS",
		apply:   func(cfg *Config, v any) { cfg.Fill.NotifyMS = v.(int) },
		extract: func(cfg Config) any { return cfg.Fill.NotifyMS },
	},
	{
		key: "fill.batch_concurrency", typ: kInt, env: "JOBFILL_FILL_BATCH_CONCURRENCY",
		apply:   func(cfg *Config, v any) { cfg.Fill.BatchConcurrency = v.(int) },
		extract: func(cfg Config) any { return cfg.Fill.BatchConcurrency },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
