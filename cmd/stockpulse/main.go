// StockPulse: market statistics and news sentiment for a stock ticker.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/seenimoa/stockpulse/api"
	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/internal/tui"
	"github.com/seenimoa/stockpulse/pkg/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command.
var (
	cfg *config.Config
	log *logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockpulse",
	Short: "StockPulse: stock news sentiment",
	Long: `StockPulse fetches market statistics and the latest news for a stock
ticker, scores each article's sentiment, and optionally summarizes it with
a language model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
			cfg.Logging.Level = override
		}
		log, err = logger.New(level, cfg.Logging.Encoding)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "StockPulse %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [ticker]",
	Short: "Print the news sentiment report for a ticker",
	Long: `Fetch market statistics and up to five recent articles for a ticker,
score each article's sentiment, and print the report.

Examples:
  stockpulse report AAPL
  stockpulse report msft --format markdown --output msft.md
  stockpulse report --no-summary`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := cfg.Report.DefaultTicker
		if len(args) == 1 {
			ticker = args[0]
		}

		formatName, _ := cmd.Flags().GetString("format")
		if formatName == "" {
			formatName = cfg.Report.Format
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		noSummary, _ := cmd.Flags().GetBool("no-summary")
		p, err := newPipeline(cfg, log, !noSummary)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if cfg.Report.Timeout > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Report.Timeout)
			defer cancelTimeout()
		}

		rep, buildErr := p.builder.Build(ctx, ticker)
		if rep == nil {
			return buildErr
		}

		var out io.Writer = cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		if err := report.Render(out, rep, format); err != nil {
			return err
		}
		if buildErr != nil {
			return fmt.Errorf("report incomplete: %w", buildErr)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("format", "f", "", "output format: text, markdown, json, html (default from config)")
	reportCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().Bool("no-summary", false, "skip language-model summaries")
}

// --- TUI Command ---

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("log-file"); path != "" {
			cfg.Logging.File = path
		}
		tuiLog, err := tuiLogger(cfg)
		if err != nil {
			return err
		}
		defer tuiLog.Sync()

		noSummary, _ := cmd.Flags().GetBool("no-summary")
		p, err := newPipeline(cfg, tuiLog, !noSummary)
		if err != nil {
			return err
		}

		m := tui.NewModel(p.builder, cfg.Report.DefaultTicker, cfg.Report.Timeout)
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().Bool("no-summary", false, "skip language-model summaries")
	tuiCmd.Flags().String("log-file", "", "write logs to this file while the UI runs (default from config, otherwise discarded)")
}

// tuiLogger returns the logger used while the full-screen UI owns the
// terminal: a file logger when logging.file is set, otherwise a no-op.
func tuiLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.Logging.File == "" {
		return logger.NewNop(), nil
	}
	l, err := logger.NewToFile(cfg.Logging.Level, cfg.Logging.Encoding, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open tui log file: %w", err)
	}
	return l, nil
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")
		noSummary, _ := cmd.Flags().GetBool("no-summary")

		p, err := newPipeline(cfg, log, !noSummary)
		if err != nil {
			return err
		}

		api.Version = version
		srv := api.NewServer(cfg, p.builder, p.scorer, log)
		if noUI {
			srv.SetServeUI(false)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "🌐 StockPulse listening on http://%s\n", cfg.API.Addr())
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	serveCmd.Flags().Bool("no-ui", false, "serve only the API, without the web UI")
	serveCmd.Flags().Bool("no-summary", false, "skip language-model summaries")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  StockPulse · Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Market Data:   %s\n", cfg.Market.BaseURL)
		fmt.Fprintf(out, "    News:          %s (limit %d)\n", cfg.News.Provider, cfg.News.Limit)
		fmt.Fprintf(out, "    LLM Provider:  %s (model: %s)\n", cfg.LLM.Provider, cfg.LLM.ResolvedModel())
		fmt.Fprintf(out, "    Default:       %s, %s format, %s timeout\n", cfg.Report.DefaultTicker, cfg.Report.Format, cfg.Report.Timeout)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "➖ not set"
			if k.Missing() {
				status = "❌ not set (required)"
			}
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
