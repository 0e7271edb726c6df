package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mirrorkit/internal/application/features"
	"github.com/zjrosen/mirrorkit/internal/config"
	"github.com/zjrosen/mirrorkit/internal/flags"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/paths"
	"github.com/zjrosen/mirrorkit/internal/tracing"
)

const localConfigPath = ".mirrorkit/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	cfg        config.Config
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "mirrorkit",
	Short: "Resolve and inject CodeMirror features",
	Long: `mirrorkit keeps a catalog of CodeMirror add-ons, key maps, themes and modes,
resolves their dependencies and injects their scripts and style sheets into
HTML pages, each resource at most once.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mirrorkit/config.yaml, then ~/.config/mirrorkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs (also MIRRORKIT_DEBUG; path from MIRRORKIT_LOG, level from MIRRORKIT_LOG_LEVEL)")
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("assets.source", d.Assets.Source)
	v.SetDefault("assets.dir", d.Assets.Dir)
	v.SetDefault("assets.db_path", d.Assets.DBPath)
	v.SetDefault("catalog.user_dir", d.Catalog.UserDir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("editor.features", d.Editor.Features)
	v.SetDefault("editor.theme", d.Editor.Theme)
	v.SetDefault("editor.keymap", d.Editor.KeyMap)
	v.SetDefault("editor.input_style", d.Editor.InputStyle)
	v.SetDefault("editor.scrollbar_style", d.Editor.ScrollbarStyle)
	v.SetDefault("editor.read_only", d.Editor.ReadOnly)
	v.SetDefault("editor.direction", d.Editor.Direction)
	v.SetDefault("editor.line_separator", d.Editor.LineSeparator)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.watch", d.Serve.Watch)
}

func initConfig() {
	// Execute runs more than once in tests; start from a clean slate.
	viper.Reset()
	cfg = config.Config{}
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .mirrorkit/config.yaml (current directory)
		// 2. ~/.config/mirrorkit/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "mirrorkit"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file anywhere: create the default one.
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
	resolvePaths(&cfg)
}

// resolvePaths expands "~" in every configured path and finds the
// distribution root under a project or node_modules directory.
func resolvePaths(c *config.Config) {
	c.Assets.Dir = paths.ResolveDistDir(c.Assets.Dir)
	c.Assets.DBPath = paths.ExpandHome(c.Assets.DBPath)
	c.Catalog.UserDir = paths.ExpandHome(c.Catalog.UserDir)
	c.Tracing.FilePath = paths.ExpandHome(c.Tracing.FilePath)
}

func initLogging(*cobra.Command, []string) error {
	if os.Getenv("MIRRORKIT_DEBUG") == "" && !debugFlag {
		return nil
	}
	logPath := os.Getenv("MIRRORKIT_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	if name := os.Getenv("MIRRORKIT_LOG_LEVEL"); name != "" {
		level, err := log.ParseLevel(name)
		if err != nil {
			return err
		}
		log.SetMinLevel(level)
	}
	log.Info(log.CatConfig, "mirrorkit starting", "version", version, "config", viper.ConfigFileUsed())
	return nil
}

// configFilePath is where editor:enable writes.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}

// openService validates the config and assembles the feature service. The
// returned cleanup flushes traces and releases the payload source.
func openService(ctx context.Context) (*features.Service, *tracing.Provider, func(), error) {
	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	fl := flags.New(cfg.Flags)

	src, closeSource, err := features.OpenSource(cfg.Assets, cfg.Cache, fl)
	if err != nil {
		return nil, nil, nil, err
	}

	provider, err := tracing.NewProvider(cfg.Tracing, tracing.WithServiceVersion(version))
	if err != nil {
		_ = closeSource()
		return nil, nil, nil, fmt.Errorf("creating tracer: %w", err)
	}

	svc, err := features.NewService(ctx, features.Options{
		UserDir: cfg.Catalog.UserDir,
		Source:  src,
		Flags:   fl,
		Tracer:  provider.Tracer(),
	})
	if err != nil {
		_ = provider.Shutdown(ctx)
		_ = closeSource()
		return nil, nil, nil, err
	}

	cleanup := func() {
		svc.Close()
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to flush traces", err)
		}
		if err := closeSource(); err != nil {
			log.ErrorErr(log.CatDB, "Failed to close payload source", err)
		}
	}
	return svc, provider, cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
