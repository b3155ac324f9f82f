package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notecompacter/compacter/internal/adapters/repository"
	"github.com/notecompacter/compacter/internal/core/services"
	"github.com/notecompacter/compacter/pkg/config"
	"github.com/notecompacter/compacter/pkg/logging"
	"github.com/notecompacter/compacter/pkg/ui"
	"github.com/notecompacter/compacter/pkg/vault"
)

var (
	// Global vault instance
	appVault *vault.Vault

	// Loaded configuration
	appConfig *config.Config

	appLogger *logging.Logger

	// Services
	projectStore *services.ProjectStore
	statsService *services.StatsService
	inboxService *services.InboxService

	// Repositories
	projectRepo *repository.FileRepository

	// Global flags
	flagDataDir  string
	flagLogLevel string

	appCtx  context.Context
	stopCtx context.CancelFunc
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compacter",
	Short: "Compacter - aggregate text notes into one master document",
	Long: ui.StyleTitle.Render("Compacter") + " - Note Aggregation Tool\n\n" +
		"Collect plain text files into projects. Every ingested file is archived\n" +
		"verbatim as a component and appended to the project's master document,\n" +
		"which you can edit, rebuild from the archive, copy or export.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: finalizeApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(componentsCmd)
	rootCmd.AddCommand(componentCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Storage root (overrides config data_dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// initializeApp loads config, opens the store and wires the services
func initializeApp(cmd *cobra.Command, args []string) error {
	// Version output needs nothing from disk
	if cmd.Name() == "version" {
		return nil
	}

	v, cfg, err := openVault()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine storage location"))
		return err
	}
	appVault = v
	appConfig = cfg
	ui.SetTheme(cfg.ColorTheme)

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	appLogger, err = logging.New(logging.Config{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	// init reports on the storage it creates itself
	if cmd.Name() == "init" {
		return nil
	}

	if !appVault.Exists() {
		if err := appVault.Initialize(); err != nil {
			fmt.Println(ui.FormatError("Failed to create storage at " + appVault.RootPath))
			return err
		}
		appLogger.Info(getContext(), "storage initialized", zap.String("root", appVault.RootPath))
	}

	wireServices()
	return nil
}

func wireServices() {
	projectRepo = repository.NewFileRepository(appVault)

	projectStore = services.NewProjectStore(
		projectRepo,
		repository.LocalFiles{},
		services.WithLogger(appLogger.Named("store")),
		services.WithStorage(appVault),
		services.WithExportName(appConfig.ExportDefaultName),
		services.WithExtensions(appConfig.IngestExtensions),
	)
	statsService = services.NewStatsService(projectStore)
	inboxService = services.NewInboxService(projectStore, appLogger)
}

// openVault resolves the storage root from flag, config or XDG defaults
func openVault() (*vault.Vault, *config.Config, error) {
	v, err := vault.New()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(v.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	root := cfg.DataDir
	if flagDataDir != "" {
		root = flagDataDir
	}
	if root != "" {
		configPath := v.ConfigPath
		v = vault.NewAt(expandHome(root))
		v.ConfigPath = configPath
	}

	return v, cfg, nil
}

func finalizeApp(cmd *cobra.Command, args []string) error {
	if appLogger != nil {
		_ = appLogger.Sync()
	}
	if stopCtx != nil {
		stopCtx()
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// getContext returns a context for operations, canceled on Ctrl+C
func getContext() context.Context {
	if appCtx == nil {
		appCtx, stopCtx = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	return appCtx
}
