// Package main provides the CLI entrypoint for tuinteract.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuinteract/internal/config"
	"github.com/verte-zerg/tuinteract/internal/function"
	"github.com/verte-zerg/tuinteract/internal/imageview"
	"github.com/verte-zerg/tuinteract/internal/interact"
	"github.com/verte-zerg/tuinteract/internal/logging"
	"github.com/verte-zerg/tuinteract/internal/model"
	"github.com/verte-zerg/tuinteract/internal/plot"
	"github.com/verte-zerg/tuinteract/internal/report"
	"github.com/verte-zerg/tuinteract/internal/session"
	"github.com/verte-zerg/tuinteract/internal/store"
	"github.com/verte-zerg/tuinteract/internal/tui"
)

const (
	defaultSamples = 500
	defaultLevel   = "info"
	exportHeight   = 16
)

var (
	windowSamples   int
	windowColor     bool
	windowPlotWidth int
	windowExportDir string
	journalEnabled  bool
	journalPath     string
	logLevel        string
	logDir          string

	exportOut string
	exportFit bool

	historyFunction string
	historySince    string
	historyLast     int
	historySummary  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuinteract",
		Short:         "Interactive function plots, fits and images in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&windowSamples, "samples", defaultSamples, "domain samples when a session gives none")
	flags.BoolVar(&windowColor, "color", false, "force colour output")
	flags.IntVar(&windowPlotWidth, "plot-width", 0, "chart width in cells (0: fit the terminal)")
	flags.StringVar(&windowExportDir, "export-dir", ".", "directory for xlsx and png exports")
	flags.BoolVar(&journalEnabled, "journal", true, "record completed fits")
	flags.StringVar(&journalPath, "journal-path", config.DefaultDBPath(), "fit journal database")
	flags.StringVar(&logLevel, "log-level", defaultLevel, "debug, info, warn or error")
	flags.StringVar(&logDir, "log-dir", config.DefaultLogDir(), "directory for window logs")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newImageCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newFuncsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveConfig merges the config file under explicitly set flags.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "samples", &windowSamples, fileCfg.Window.Samples)
	applyBoolConfig(cmd, "color", &windowColor, fileCfg.Window.Color)
	applyIntConfig(cmd, "plot-width", &windowPlotWidth, fileCfg.Window.PlotWidth)
	applyStringConfig(cmd, "export-dir", &windowExportDir, fileCfg.Window.ExportDir)
	applyBoolConfig(cmd, "journal", &journalEnabled, fileCfg.Journal.Enabled)
	applyStringConfig(cmd, "journal-path", &journalPath, fileCfg.Journal.Path)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-dir", &logDir, fileCfg.Log.Dir)

	cfg := model.Config{
		Samples:   windowSamples,
		Color:     windowColor,
		Journal:   journalEnabled,
		PlotWidth: windowPlotWidth,
		LogLevel:  logLevel,
		ExportDir: windowExportDir,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Samples < 2 {
		return fmt.Errorf("--samples must be at least 2")
	}
	if cfg.PlotWidth < 0 {
		return fmt.Errorf("--plot-width must not be negative")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <session>",
		Short: "Open a session file (.toml, .yaml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			f, err := session.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}
			return runSession(cfg, f)
		},
	}
}

func newImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <file>",
		Short: "Show a matrix file (csv, tsv, xlsx) with a cross-hair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			f := &session.File{
				Title: filepath.Base(args[0]),
				Mode:  session.ModeImage,
				Image: &session.ImageSpec{File: args[0]},
			}
			if err := f.Validate(); err != nil {
				return err
			}
			return runSession(cfg, f)
		},
	}
}

// runSession builds f and runs its window until the user quits.
func runSession(cfg model.Config, f *session.File) error {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Dir: logDir, Quiet: true})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()
	log := logger.Slog()

	if f.Mode == session.ModeImage {
		rowBuf, colBuf := interact.NewBuffer(1), interact.NewBuffer(1)
		built, err := session.Build(f, session.BuildOptions{
			Image: []imageview.Option{imageview.WithProfileCanvases(rowBuf, colBuf)},
		})
		if err != nil {
			return fmt.Errorf("failed to build session: %w", err)
		}
		rows, cols := built.Image.Dims()
		log.Info("image opened", "title", f.Title, "rows", rows, "cols", cols)
		return runImage(cfg, built.Image, f.Title, rowBuf, colBuf)
	}

	sessionID := uuid.NewString()
	log = log.With("session", sessionID)
	res := interact.NewBuffer(1)
	winOpts := []interact.Option{
		interact.WithResidualCanvas(res),
		interact.WithLogger(log),
		interact.WithSessionID(sessionID),
	}
	if cfg.Journal && f.Mode == session.ModeFit {
		st, err := store.Open(journalPath)
		if err != nil {
			log.Warn("fit journal unavailable", "path", journalPath, "err", err)
		} else {
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close db: %v\n", cerr)
				}
			}()
			winOpts = append(winOpts, interact.WithJournal(st))
		}
	}

	built, err := session.Build(f, session.BuildOptions{Samples: cfg.Samples, Window: winOpts})
	if err != nil {
		return fmt.Errorf("failed to build session: %w", err)
	}
	opts := tui.Options{
		Residuals: res,
		Color:     cfg.Color,
		ExportDir: cfg.ExportDir,
		PlotWidth: cfg.PlotWidth,
		Logger:    log,
	}

	if paths := built.WatchPaths(); f.Watch && len(paths) > 0 {
		watcher, err := session.NewWatcher(paths, session.DefaultDebounce, log)
		if err != nil {
			return fmt.Errorf("failed to watch data files: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watcher.Start(ctx)
		defer watcher.Stop()
		opts.Changes = watcher.Changes()
		opts.Reload = built.Reload
	}

	log.Info("window opened", "title", built.Window.Title(), "mode", f.Mode, "series", len(f.Series), "params", built.Window.Params().Len())
	program := tea.NewProgram(tui.NewPlotModel(built.Window, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func runImage(cfg model.Config, view *imageview.View, title string, rowBuf, colBuf *interact.Buffer) error {
	m := tui.NewImageModel(view, tui.ImageOptions{
		Title:      title,
		Color:      cfg.Color,
		RowProfile: rowBuf,
		ColProfile: colBuf,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <session>",
		Short: "Evaluate a session once and write its series",
		Long: "Evaluate a session at its initial parameters and write the series to --out.\n" +
			"The format follows the extension: .xlsx, .csv, .png, .svg or .pdf.\n" +
			"Without --out the chart is drawn to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
	cmd.Flags().BoolVar(&exportFit, "fit", false, "fit inside the session's window before exporting")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	f, err := session.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if f.Mode == session.ModeImage {
		return fmt.Errorf("export supports plot and fit sessions, %s is an image session", args[0])
	}
	built, err := session.Build(f, session.BuildOptions{
		Samples: cfg.Samples,
		Window:  []interact.Option{interact.WithLogger(logger.Slog())},
	})
	if err != nil {
		return fmt.Errorf("failed to build session: %w", err)
	}
	return exportWindow(cmd, cfg, built.Window, logger.Slog())
}

func exportWindow(cmd *cobra.Command, cfg model.Config, w *interact.Window, log *slog.Logger) error {
	w.Refresh()
	if err := w.LastError(); err != nil {
		return fmt.Errorf("failed to evaluate session: %w", err)
	}
	if exportFit {
		if !w.FitMode() {
			return fmt.Errorf("--fit needs a fit session")
		}
		if err := w.Fit(); err != nil {
			return fmt.Errorf("fit failed: %w", err)
		}
		s := w.LastFit()
		log.Info("fit done", "function", s.Function, "ssr", s.SSR, "points", s.Points)
	}

	curves := tui.Curves(w)
	var markers []float64
	if lo, hi, ok := w.Markers(); ok {
		markers = []float64{lo, hi}
	}
	if exportOut == "" || exportOut == "-" {
		fig := &plot.Figure{
			Title:   w.Title(),
			Width:   cfg.PlotWidth,
			Height:  exportHeight,
			Curves:  curves,
			Markers: markers,
			Focus:   -1,
			Color:   plot.ShouldUseColor(cmd.OutOrStdout(), cfg.Color),
		}
		return fig.Render(cmd.OutOrStdout())
	}

	if err := writeExport(exportOut, w.Title(), curves, markers); err != nil {
		return err
	}
	log.Info("exported", "path", exportOut, "series", len(curves))
	return nil
}

func newFuncsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funcs",
		Short: "List built-in functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lines := report.FunctionLines(function.Builtins())
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n")); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded fits",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyFunction, "function", "", "function filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N fits")
	cmd.Flags().BoolVar(&historySummary, "summary", false, "one line per function")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if _, err := resolveConfig(cmd); err != nil {
		return err
	}
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must not be negative")
	}

	st, err := store.Open(journalPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	h, err := report.Build(cmd.Context(), st, model.HistoryConfig{
		Function: historyFunction,
		Since:    sinceTime,
		Last:     historyLast,
	})
	if err != nil {
		return err
	}
	return h.Write(cmd.OutOrStdout(), historySummary)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return `# tuinteract config
# Values here are defaults; CLI flags override them.

[window]
# samples = 500
# color = false
# plot-width = 0
# export-dir = "."

[journal]
# enabled = true
# path = "` + config.DefaultDBPath() + `"

[log]
# level = "info"
# dir = "` + config.DefaultLogDir() + `"
`
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
