package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maquette-dev/maquette/internal/config"
	"github.com/maquette-dev/maquette/internal/devserver"
	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/internal/logging"
	"github.com/maquette-dev/maquette/pkg/components"
	"github.com/maquette-dev/maquette/pkg/preview"
	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/render"
	"github.com/maquette-dev/maquette/pkg/theme"
)

func serveCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Long: `Start the authoring preview server.

The server watches the manifest directory, re-renders on change with
debouncing, and pushes settled passes to connected preview surfaces
over WebSocket. It also exposes an HTTP API for validating, rendering
and storing manifests.

Examples:
  maquette serve
  maquette serve --port=8080
  maquette serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from maquette.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from maquette.json)")

	return cmd
}

func runServe(port int, host string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	logger := logging.Setup(logging.ParseLevel(cfg.LogLevel))

	reg := registry.New()
	components.RegisterAll(reg)

	themeOpts := []theme.ResolverOption{}
	if len(cfg.Theme.Tokens) > 0 {
		themeOpts = append(themeOpts, theme.WithGlobalDefaults(cfg.Theme.Tokens))
	}
	themes := theme.NewResolver(themeOpts...)

	renderer := render.New(reg, themes)
	harness := preview.NewHarness(renderer,
		preview.WithDebounce(time.Duration(cfg.Server.DebounceMillis)*time.Millisecond))

	srv := devserver.New(cfg, reg, renderer, harness,
		devserver.WithMetrics(devserver.NewMetrics()),
		devserver.WithLogger(logger))

	printBanner()
	info("Preview server:   http://%s", cfg.Addr())
	info("WebSocket:        ws://%s/ws", cfg.Addr())
	info("Watching:         %v", cfg.Server.Watch)
	info("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return enginerr.New("M502").
			WithDetail("preview server failed: " + err.Error()).
			Wrap(err)
	}
	return nil
}

// loadConfig loads maquette.json from the working directory, falling
// back to defaults plus environment when no project file exists.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd)
	if err == nil {
		return cfg, nil
	}
	if enginerr.Is(err, "M501") {
		warn("no maquette.json found, using defaults")
		return config.FromEnv()
	}
	return nil, err
}
