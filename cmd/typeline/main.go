// Package main provides the CLI entrypoint for typeline.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeline/internal/backend"
	"github.com/verte-zerg/typeline/internal/config"
	"github.com/verte-zerg/typeline/internal/content"
	"github.com/verte-zerg/typeline/internal/generator"
	"github.com/verte-zerg/typeline/internal/logging"
	"github.com/verte-zerg/typeline/internal/model"
	"github.com/verte-zerg/typeline/internal/practice"
	"github.com/verte-zerg/typeline/internal/store"
	"github.com/verte-zerg/typeline/internal/tui"
)

const (
	defaultSource      = model.KindNews
	defaultMode        = model.ModeHeadline
	defaultTimeSec     = 60
	defaultMaxWords    = 60
	defaultRegion      = "us"
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
	defaultTimeoutSec  = 10
)

var (
	practiceCategory   string
	practiceSource     string
	practiceMode       string
	practiceTimeSec    int
	practiceMaxWords   int
	practiceRegion     string
	practiceFile       string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typeline",
		Short:         "Typing practice on news headlines",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "local history database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVar(&practiceCategory, "category", "", "news category (default: all)")
	rootCmd.Flags().StringVar(&practiceSource, "source", defaultSource, "content source: news, editorial or yesterday")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "text mode: headline or article")
	rootCmd.Flags().IntVar(&practiceTimeSec, "time", defaultTimeSec, "time limit in seconds")
	rootCmd.Flags().IntVar(&practiceMaxWords, "max-words", defaultMaxWords, "truncate texts to N words (0: no limit)")
	rootCmd.Flags().StringVar(&practiceRegion, "region", defaultRegion, "region recorded with history")
	rootCmd.Flags().StringVar(&practiceFile, "file", "", "practice passages from a local file, one per line")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "category", &practiceCategory, fileCfg.Practice.Category)
	applyStringConfig(cmd, "source", &practiceSource, fileCfg.Practice.Source)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "time", &practiceTimeSec, fileCfg.Practice.TimeSec)
	applyIntConfig(cmd, "max-words", &practiceMaxWords, fileCfg.Practice.MaxWords)
	applyStringConfig(cmd, "region", &practiceRegion, fileCfg.Practice.Region)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	cfg := model.Config{
		Category:   strings.TrimSpace(practiceCategory),
		Source:     strings.ToLower(strings.TrimSpace(practiceSource)),
		Mode:       strings.ToLower(strings.TrimSpace(practiceMode)),
		TimeLimit:  time.Duration(practiceTimeSec) * time.Second,
		MaxWords:   practiceMaxWords,
		Region:     practiceRegion,
		File:       practiceFile,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	var passages []model.Article
	if cfg.File != "" {
		passages, err = generator.LoadPassages(cfg.File)
		if err != nil {
			return fmt.Errorf("failed to load passages: %w", err)
		}
	}

	log, err := logging.NewFile(config.DefaultLogPath(), verbose)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush of the file logger.
		_ = log.Sync()
	}()

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	client, err := newBackendClient(fileCfg.Backend)
	if err != nil {
		return err
	}
	if client != nil && client.HasToken() && boolValue(fileCfg.Backend.AutoSync, true) {
		if err := syncHistory(cmd.Context(), st, client, log); err != nil {
			logErrf("%v\n", err)
		}
	}

	var src content.Source
	if client != nil {
		src = client
	}
	svc, err := content.NewService(src, content.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	defer svc.Close()

	picker := practice.NewPicker(cfg, svc, st, generator.New(), passages, log)
	m := tui.NewModel(cfg, picker, st, log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// newBackendClient returns nil when no backend URL is configured.
func newBackendClient(cfg config.BackendConfig) (*backend.Client, error) {
	url := stringValue(cfg.URL, "")
	if url == "" {
		return nil, nil
	}
	client, err := backend.New(url,
		backend.WithToken(stringValue(cfg.SessionToken, "")),
		backend.WithTimeout(time.Duration(intValue(cfg.TimeoutSec, defaultTimeoutSec))*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}
	return client, nil
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
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
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

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List news categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCmd,
	}
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	svc, err := content.NewService(nil)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	defer svc.Close()
	for _, category := range svc.Categories() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), category); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
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

func stringValue(v *string, def string) string {
	if v == nil {
		return def
	}
	return strings.TrimSpace(*v)
}

func intValue(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolValue(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typeline configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# category = "technology"  # News category (default: all)
# source = %q              # news, editorial or yesterday
# mode = %q            # headline or article
# time = %d                  # Time limit in seconds
# max-words = %d             # Truncate texts to N words (0: no limit)
# region = %q                # Region recorded with history
# focus-weak = false         # Bias practice toward weak characters
# weak-top = %d               # Number of weak characters to focus on
# weak-factor = %.1f         # Weight factor for weak characters
# weak-window = %d           # Number of recent sessions to compute weak chars

[backend]
# url = "https://typeline.example.com"  # API base URL
# session-token = ""                   # Session token for history sync
# timeout = %d                          # Request timeout in seconds
# auto-sync = true                      # Sync local history on start
`,
		defaultSource,
		defaultMode,
		defaultTimeSec,
		defaultMaxWords,
		defaultRegion,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultTimeoutSec,
	)
}

func validateConfig(cfg model.Config) error {
	switch cfg.Source {
	case model.KindNews, model.KindEditorial, model.KindYesterday:
	default:
		return fmt.Errorf("--source must be one of news, editorial, yesterday")
	}
	switch cfg.Mode {
	case model.ModeHeadline, model.ModeArticle:
	default:
		return fmt.Errorf("--mode must be headline or article")
	}
	if cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time must be > 0")
	}
	if cfg.MaxWords < 0 {
		return fmt.Errorf("--max-words must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
