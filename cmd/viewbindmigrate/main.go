package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dejo1307/viewbindmigrate/internal/config"
	"github.com/dejo1307/viewbindmigrate/internal/engine"
	"github.com/dejo1307/viewbindmigrate/internal/hierarchy"
	"github.com/dejo1307/viewbindmigrate/internal/migrate"
	"github.com/dejo1307/viewbindmigrate/internal/renderers/summary"
	"github.com/dejo1307/viewbindmigrate/internal/report"
	"github.com/dejo1307/viewbindmigrate/internal/server"
)

var (
	cfgPath  string
	repoPath string
	dryRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "viewbindmigrate",
	Short: "Migrate Kotlin Android sources from kotlinx synthetics to ViewBinding",
	Long: `viewbindmigrate rewrites Activities, Fragments, custom Views and cells
that use kotlinx.android.synthetic view accessors so they use generated
ViewBinding classes instead.`,
	SilenceUsage: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert the given files, or every candidate file of the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		eng := newEngine(cfg)
		root, err := filepath.Abs(cfg.Repo)
		if err != nil {
			return fmt.Errorf("resolving repo path: %w", err)
		}

		rep, err := eng.Run(cmd.Context(), root, engine.Options{DryRun: dryRun, Files: args})
		if err != nil {
			return err
		}
		if err := eng.WriteArtifacts(root); err != nil {
			return fmt.Errorf("failed to write artifacts: %w", err)
		}

		if dryRun {
			for _, res := range rep.Results {
				if res.Diff != "" {
					fmt.Fprint(cmd.OutOrStdout(), res.Diff)
				}
			}
		}
		printSummary(rep, filepath.Join(root, cfg.Output.Dir))
		if rep.Meta.Counts[report.StatusFailed] > 0 {
			return fmt.Errorf("%d files failed", rep.Meta.Counts[report.StatusFailed])
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Print the conversion plan and diff of one file without writing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		root, err := filepath.Abs(cfg.Repo)
		if err != nil {
			return fmt.Errorf("resolving repo path: %w", err)
		}
		cfg.Repo = root

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		idx, err := hierarchy.Build(cmd.Context(), root, newEngine(cfg).HierarchyOptions())
		if err != nil {
			return fmt.Errorf("indexing classes: %w", err)
		}
		plan, err := migrate.New(cfg, idx, nil).Plan(path, src)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling plan: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, string(data))
		if plan.Changed {
			diff, err := migrate.UnifiedDiff(args[0], src, plan.Output)
			if err != nil {
				return err
			}
			fmt.Fprint(out, diff)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversion tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		eng := newEngine(cfg)

		// Restore the last report so queries work before the first run.
		if root, err := filepath.Abs(cfg.Repo); err == nil {
			reportPath := filepath.Join(root, cfg.Output.Dir, engine.ReportFile)
			if _, err := os.Stat(reportPath); err == nil {
				if err := eng.LoadArtifacts(cmd.Context(), root); err != nil {
					log.Printf("[main] warning: failed to load existing report: %v", err)
				}
			}
		}

		srv, err := server.New(eng, cfg)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $VIEWBINDMIGRATE_CONFIG or <repo>/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", "", "repository root, overrides the config")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print unified diffs instead of writing files")

	rootCmd.AddCommand(convertCmd, planCmd, serveCmd)
}

// loadConfig reads the config file, falling back to defaults when it is
// missing.
func loadConfig() *config.Config {
	path := cfgPath
	if path == "" {
		dir := repoPath
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, config.FileName)
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	if repoPath != "" {
		cfg.Repo = repoPath
	}
	return cfg
}

func newEngine(cfg *config.Config) *engine.Engine {
	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}
	eng.RegisterRenderer(summary.New(0))
	return eng
}

func printSummary(rep *report.Report, outDir string) {
	statuses := make([]string, 0, len(rep.Meta.Counts))
	for st := range rep.Meta.Counts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)

	fmt.Fprintf(os.Stderr, "\nMigration complete:\n")
	fmt.Fprintf(os.Stderr, "  Repository:  %s\n", rep.Meta.RepoPath)
	fmt.Fprintf(os.Stderr, "  Candidates:  %d\n", rep.Meta.Candidates)
	for _, st := range statuses {
		fmt.Fprintf(os.Stderr, "  %-12s %d\n", st+":", rep.Meta.Counts[report.Status(st)])
	}
	fmt.Fprintf(os.Stderr, "  Duration:    %s\n", rep.Meta.Duration)
	if rep.Meta.DryRun {
		fmt.Fprintf(os.Stderr, "  Dry run:     no file was written\n")
	}
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outDir)
}

func main() {
	// Ensure log output goes to stderr, never stdout (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)
	_ = godotenv.Load()
	cfgPath = os.Getenv("VIEWBINDMIGRATE_CONFIG")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
