package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/jobfill/internal/api"
	"github.com/kalambet/jobfill/internal/bridge"
	"github.com/kalambet/jobfill/internal/config"
	"github.com/kalambet/jobfill/internal/profile"
	"github.com/kalambet/jobfill/internal/resume"
)

// openFile is swapped out in tests.
var openFile = browser.OpenFile

// --- fill ---

var fillCmd = &cobra.Command{
	Use:   "fill <page.html>",
	Short: "Fill the application form in an HTML page",
	Long: `Fill the application form in an HTML page with your stored profile.

The filled page is written to --out, or to stdout when --out is not given.

Examples:
  jobfill fill ./apply.html > filled.html
  jobfill fill ./apply.html --out ./filled.html --open`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		open, _ := cmd.Flags().GetBool("open")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := fillPage(cmd.Context(), client, args[0])
		printFillStatus(&resp, err)
		if err != nil {
			return errReported
		}

		if open && out == "" {
			f, err := os.CreateTemp("", "jobfill-*.html")
			if err != nil {
				return fmt.Errorf("creating temp file: %w", err)
			}
			f.Close()
			out = f.Name()
		}

		if err := writeFilled(resp.HTML, out, cmd.OutOrStdout()); err != nil {
			return err
		}

		if open {
			if err := openFile(out); err != nil {
				printWarning("could not open browser: %v", err)
			}
		}
		return nil
	},
}

func init() {
	fillCmd.Flags().String("out", "", "write the filled page to this file (default: stdout)")
	fillCmd.Flags().Bool("open", false, "open the filled page in the default browser")
}

// fillPage sends the page at path to the server and returns the fill result.
func fillPage(ctx context.Context, client *apiClient, path string) (bridge.FillResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bridge.FillResponse{}, fmt.Errorf("reading page: %w", err)
	}

	source := path
	if abs, err := filepath.Abs(path); err == nil {
		source = abs
	}

	resp, err := client.post(ctx, "/fill", api.FillRequest{HTML: string(data), Source: source})
	if err != nil {
		return bridge.FillResponse{}, err
	}

	var result bridge.FillResponse
	if err := decodeJSON(resp, &result); err != nil {
		return bridge.FillResponse{}, err
	}
	return result, nil
}

// writeFilled writes page to path, or to w when path is empty.
func writeFilled(page, path string, w io.Writer) error {
	if path == "" {
		_, err := io.WriteString(w, page)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing filled page: %w", err)
	}
	return nil
}

// --- batch ---

var batchCmd = &cobra.Command{
	Use:   "batch <page.html>...",
	Short: "Fill several HTML pages concurrently",
	Long: `Fill the application forms in several HTML pages.

Each filled page is written to --out-dir under its original file name.

Example:
  jobfill batch ./jobs/*.html --out-dir ./filled`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out-dir")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		if concurrency <= 0 {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			concurrency = cfg.Fill.BatchConcurrency
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Filling %d pages into %s", len(args), outDir)
		results := batchFill(cmd.Context(), client, args, outDir, concurrency)

		failed, filled := 0, 0
		for _, r := range results {
			name := colorize(colorBold, filepath.Base(r.Path))
			if r.Err != nil {
				failed++
				fmt.Fprintf(stderr, "  %s  %s\n", name, colorize(colorRed, bridge.StatusLine(nil, r.Err)))
				continue
			}
			filled += r.Response.FieldsFilledCount
			fmt.Fprintf(stderr, "  %s  %s  %s\n", name, bridge.StatusLine(&r.Response, nil), strings.Join(r.Response.FilledFields, ", "))
		}

		if failed > 0 {
			printError("%d of %d pages failed", failed, len(results))
			return errReported
		}
		printSuccess("Filled %d fields across %d pages", filled, len(results))
		return nil
	},
}

func init() {
	batchCmd.Flags().String("out-dir", "filled", "directory for the filled pages")
	batchCmd.Flags().Int("concurrency", 0, "pages filled at once (default: fill.batch_concurrency)")
}

type batchResult struct {
	Path     string
	Out      string
	Response bridge.FillResponse
	Err      error
}

// batchFill fills every page in paths with at most limit requests in flight.
// Results keep the order of paths; a failed page never stops the others.
func batchFill(ctx context.Context, client *apiClient, paths []string, outDir string, limit int) []batchResult {
	results := make([]batchResult, len(paths))
	outs := outputNames(paths, outDir)

	var g errgroup.Group
	g.SetLimit(limit)

	for i, p := range paths {
		g.Go(func() error {
			res := batchResult{Path: p, Out: outs[i]}
			resp, err := fillPage(ctx, client, p)
			if err == nil {
				err = writeFilled(resp.HTML, res.Out, nil)
			}
			res.Response, res.Err = resp, err
			results[i] = res
			return nil
		})
	}
	g.Wait()
	return results
}

// outputNames maps each input to a file in outDir, suffixing duplicates of
// the same base name so no two pages overwrite each other.
func outputNames(paths []string, outDir string) []string {
	seen := make(map[string]int, len(paths))
	outs := make([]string, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		n := seen[base]
		seen[base] = n + 1
		if n > 0 {
			ext := filepath.Ext(base)
			base = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), n+1, ext)
		}
		outs[i] = filepath.Join(outDir, base)
	}
	return outs
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your applicant profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		p, err := fetchProfile(cmd.Context(), client)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a profile field",
	Long: fmt.Sprintf(`Set a profile field.

Valid keys: %s`, strings.Join(profile.Keys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if err := patchProfile(cmd.Context(), client, map[string]string{key: value}); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open profile JSON in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		p, err := fetchProfile(cmd.Context(), client)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}

		tmpFile, err := os.CreateTemp("", "jobfill-profile-*.json")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		defer os.Remove(tmpPath)

		if _, err := tmpFile.Write(data); err != nil {
			tmpFile.Close()
			return err
		}
		tmpFile.Close()

		editorCmd := exec.Command(editor, tmpPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("editor exited with error: %w", err)
		}

		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		var updated profile.Profile
		dec := json.NewDecoder(strings.NewReader(string(edited)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&updated); err != nil {
			return fmt.Errorf("invalid profile JSON: %w", err)
		}

		resp, err := client.put(cmd.Context(), "/profile", updated)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, &updated); err != nil {
			return err
		}

		printSuccess("Profile updated")
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will replace your profile with the defaults. Use --confirm to proceed.")
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/profile/reset", nil)
		if err != nil {
			return err
		}
		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printSuccess("Profile reset to defaults")
		return nil
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <resume.pdf>",
	Short: "Import contact details from a PDF resume",
	Long: `Import contact details from a PDF resume.

The name, email, phone, LinkedIn and GitHub handles found in the resume are
merged into your profile; fields not found are left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		printStep("Reading %s", args[0])
		partial, err := resume.ImportFile(args[0])
		if err != nil {
			return err
		}

		fields, err := nonEmptyFields(partial)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			printWarning("No contact details found in %s", args[0])
			return nil
		}

		for _, k := range profile.Keys() {
			if v, ok := fields[k]; ok {
				printStatus(k, "%s", v)
			}
		}
		if dryRun {
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := patchProfile(cmd.Context(), client, fields); err != nil {
			return err
		}

		printSuccess("Imported %d fields", len(fields))
		return nil
	},
}

func init() {
	profileResetCmd.Flags().Bool("confirm", false, "confirm profile reset")
	profileImportCmd.Flags().Bool("dry-run", false, "show what would be imported without saving")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileResetCmd)
	profileCmd.AddCommand(profileImportCmd)
}

func fetchProfile(ctx context.Context, client *apiClient) (profile.Profile, error) {
	resp, err := client.get(ctx, "/profile")
	if err != nil {
		return profile.Profile{}, err
	}
	var p profile.Profile
	if err := decodeJSON(resp, &p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func patchProfile(ctx context.Context, client *apiClient, fields map[string]string) error {
	resp, err := client.patch(ctx, "/profile", fields)
	if err != nil {
		return err
	}
	var result map[string]string
	return decodeJSON(resp, &result)
}

// nonEmptyFields returns the set fields of p keyed by their JSON names.
func nonEmptyFields(p profile.Profile) (map[string]string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var all map[string]string
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range all {
		if v == "" {
			delete(all, k)
		}
	}
	return all, nil
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the history of filled pages",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent fill runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/runs?limit=%d", limit))
		if err != nil {
			return err
		}

		var runs []struct {
			ID          string   `json:"id"`
			CreatedAt   string   `json:"created_at"`
			Source      string   `json:"source"`
			FilledCount int      `json:"filled_count"`
			Fields      []string `json:"filled_fields"`
		}
		if err := decodeJSON(resp, &runs); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No fill runs found.")
			return nil
		}

		for _, r := range runs {
			fmt.Fprintf(w, "%s  %s  %2d  %s\n",
				colorize(colorCyan, shortID(r.ID)),
				r.CreatedAt,
				r.FilledCount,
				r.Source,
			)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single fill run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/runs/"+args[0])
		if err != nil {
			return err
		}

		var run any
		if err := decodeJSON(resp, &run); err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a fill run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/runs/"+args[0])
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted run %s", args[0])
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: fmt.Sprintf(`Set a configuration value.

Valid keys: %s`, strings.Join(config.ValidKeys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
