// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trademind/internal/app"
	"trademind/internal/config"
	"trademind/internal/logging"
	"trademind/internal/security"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2025-01-20"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	session *app.Session
	closeFn func() error
	lang    string
}

// Session opens the journal session on first use.
func (a *App) Session(ctx context.Context) (*app.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	s, closeFn, err := app.Open(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	if a.lang != "" {
		if _, err := s.UseLanguage(a.lang); err != nil {
			closeFn()
			return nil, err
		}
	}
	a.session, a.closeFn = s, closeFn
	return s, nil
}

// Close releases the storage backend if a session was opened.
func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.session, a.closeFn = nil, nil
	return err
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		return err
	}
	return nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	a := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "trademind",
		Short: "TradeMind - trading journal and psychology dashboard",
		Long: `TradeMind is a trading journal for discretionary traders.

Record trades per day, track emotion and discipline, review equity, drawdown
and calendar views, and get coaching, macro and scanner reports from an AI
advisor.

Use 'trademind examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trademind)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("lang", "", "UI language for this run (en, fr, ar)")

	addCoreCommands(rootCmd, a)
	addDashboardCommands(rootCmd, a)
	addJournalCommands(rootCmd, a)
	addAdvisorCommands(rootCmd, a)
	addBreakoutCommands(rootCmd, a)
	addLanguageCommands(rootCmd, a)
	addServeCommands(rootCmd, a)
	addHelpCommands(rootCmd, a)

	return rootCmd
}

// init loads configuration and logging before any subcommand runs.
func (a *App) init(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.Config = cfg

	debug, _ := cmd.Flags().GetBool("debug")
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.FilePath = cfg.LogFilePath()
	// Console logging only in debug; regular output goes through Output.
	logCfg.Console = debug
	a.Logger = logging.NewLoggerWithConfig(logCfg)
	if debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	if !cfg.UI.ColorEnabled {
		color.NoColor = true
	}
	a.lang, _ = cmd.Flags().GetString("lang")

	a.Logger.Debug().Str("config_dir", cfg.Dir()).Msg("Configuration loaded")
	return nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(a))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("TradeMind v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(struct {
					*config.Config
					APIKey string `json:"api_key"`
				}{a.Config, security.MaskCredential(a.Config.APIKey())})
			}
			return showConfig(output, a.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": a.Config.Dir()})
			} else {
				output.Println(a.Config.Dir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := a.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Journal")
	output.Printf("  Baseline:        %.2f\n", cfg.Journal.Baseline)
	output.Printf("  Recent Trades:   %d\n", cfg.Journal.RecentTrades)
	output.Printf("  Timeframe Mode:  %s\n", cfg.Journal.TimeframeMode)
	output.Printf("  Jitter:          %v\n", cfg.Journal.Jitter)
	output.Println()

	output.Bold("Storage")
	output.Printf("  Backend:         %s\n", cfg.Storage.Backend)
	output.Printf("  Path:            %s\n", cfg.StoragePath())
	output.Println()

	output.Bold("Advisor")
	output.Printf("  Provider:        %s\n", cfg.Advisor.Provider)
	output.Printf("  Model:           %s\n", cfg.Advisor.Model)
	output.Printf("  Search Model:    %s\n", cfg.Advisor.SearchModel)
	output.Printf("  Refresh:         %s\n", cfg.Advisor.RefreshSchedule)
	apiKey := output.Red("missing")
	if key := cfg.APIKey(); key != "" {
		apiKey = output.Green(security.MaskCredential(key))
	}
	output.Printf("  API Key:         %s\n", apiKey)
	output.Println()

	output.Bold("Server")
	output.Printf("  Port:            %d\n", cfg.Server.Port)
	output.Printf("  Dev Mode:        %v\n", cfg.Server.DevMode)
	output.Println()

	output.Bold("UI")
	output.Printf("  Language:        %s\n", cfg.UI.Language)
	output.Printf("  Color:           %v\n", cfg.UI.ColorEnabled)

	return nil
}
