package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/autokit/carlink/internal/bridge"
	"github.com/autokit/carlink/internal/carlink"
	"github.com/autokit/carlink/internal/config"
	"github.com/autokit/carlink/internal/logging"
	"github.com/autokit/carlink/internal/version"
)

// Run command and flags
var (
	flagWidth      int
	flagHeight     int
	flagFPS        int
	flagDPI        int
	flagLogLevel   string
	flagBridgeAddr string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the adapter and run the engine",
	Long: `Connect to the USB adapter and run the session engine until
interrupted.

The engine keeps retrying a failed device open until you stop it, and
reconnects automatically when an established session drops. A missing
adapter (nothing on the USB bus) is reported immediately instead.`,
	Example: `  # Run with the configured settings
  carlinkd run

  # Override the video geometry for this run
  carlinkd run --width 1280 --height 720 --dpi 200

  # Expose the session on a different bridge address
  carlinkd run --bridge-addr 127.0.0.1:9100 --log-level debug`,
	RunE: runEngine,
}

func init() {
	runCmd.Flags().IntVar(&flagWidth, "width", 0, "Video width in pixels (0 = use config)")
	runCmd.Flags().IntVar(&flagHeight, "height", 0, "Video height in pixels (0 = use config)")
	runCmd.Flags().IntVar(&flagFPS, "fps", 0, "Target frame rate (0 = use config)")
	runCmd.Flags().IntVar(&flagDPI, "dpi", 0, "Display density reported to the phone (0 = use config)")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&flagBridgeAddr, "bridge-addr", "", "WebSocket bridge listen address (empty = use config, '-' = disabled)")
}

func runEngine(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(flagLogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()
	logging.Info("starting", zap.String("build", version.Full()))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	node := carlink.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// The bridge subscribes to node events in NewServer, so it is built
	// before the engine starts emitting them.
	var srv *bridge.Server
	if addr := bridgeAddr(cfg); addr != "" {
		srv = bridge.NewServer(addr, node)
	}

	g.Go(func() error {
		if err := node.Connect(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return node.Disconnect()
	})

	if srv != nil {
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	return g.Wait()
}

// applyFlagOverrides folds explicit run flags over the loaded file. Zero
// values mean "not given" for the numeric flags.
func applyFlagOverrides(cfg *config.Config) {
	if flagWidth > 0 {
		cfg.Dongle.Width = flagWidth
	}
	if flagHeight > 0 {
		cfg.Dongle.Height = flagHeight
	}
	if flagFPS > 0 {
		cfg.Dongle.FPS = flagFPS
	}
	if flagDPI > 0 {
		cfg.Dongle.DPI = flagDPI
	}
	if flagBridgeAddr != "" {
		cfg.BridgeAddr = flagBridgeAddr
	}
}

func bridgeAddr(cfg *config.Config) string {
	if cfg.BridgeAddr == "-" {
		return ""
	}
	return cfg.BridgeAddr
}

// Config inspection commands

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage the configuration file",
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration as YAML: the file contents if one
exists, defaults otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to the platform config directory.
Fails if a configuration file already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration already exists: %s", path)
		}
		cfg := config.Default()
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}
