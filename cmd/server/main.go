package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sleepstars/personachat/internal/clients"
	"github.com/sleepstars/personachat/internal/config"
	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/modelbridge"
	"github.com/sleepstars/personachat/internal/proxy"
	"github.com/sleepstars/personachat/internal/server"
	"github.com/sleepstars/personachat/internal/static"
	"github.com/spf13/cobra"
)

var (
	configPath string
	port       int
	staticDir  string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "personachat",
	Short: "Persona chat server",
	Long: `personachat serves a static chat page and proxies chat messages to an
OpenAI-compatible completion API, wrapping each one in a persona prompt.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (YAML); defaults and environment are used when empty")
	flags.IntVarP(&port, "port", "p", 0, "listen port (overrides PORT and the config file)")
	flags.StringVar(&staticDir, "static-dir", "", "directory served for non-API paths")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug/info/warn/error)")
	flags.StringVar(&logFormat, "log-format", "", "log format (console/json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("static-dir") {
		cfg.Server.StaticDir = staticDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, using INFO\n", err)
	}
	log := logger.Setup(logger.Options{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    os.Stdout,
		Component: "main",
	})

	client, err := clients.FromConfig(cfg.Upstream, log.WithComponent("clients"))
	if err != nil {
		log.WithError(err).Error("Cannot start without an upstream credential")
		return err
	}
	_, demo := client.(*clients.DemoClient)

	bridge := modelbridge.NewModelBridge(client, cfg.Upstream.Timeout)
	chat := proxy.NewHandler(proxy.NewChatPipeline(cfg, bridge))
	files := static.NewResponder(cfg.Server.StaticDir, cfg.Server.IndexFile)
	srv := server.New(cfg, chat, files)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Server running at http://localhost:%d/", cfg.Server.Port)
	if demo {
		log.Info("Chat runs in demo mode; set OPENAI_API_KEY for live replies")
	} else {
		log.Info("Chat uses model %s at %s", cfg.Upstream.Model, cfg.Upstream.APIBase)
	}

	if err := srv.Run(ctx, cfg.Server.Addr()); err != nil {
		log.WithError(err).Error("Server stopped")
		return err
	}
	log.Info("Server stopped")
	return nil
}
