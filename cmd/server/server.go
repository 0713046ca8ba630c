package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	c "github.com/quesurifn/whatsup-calendar-server/calendar"
	h "github.com/quesurifn/whatsup-calendar-server/handlers"
	"github.com/quesurifn/whatsup-calendar-server/pkg/config"
	t "github.com/quesurifn/whatsup-calendar-server/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var cfg *config.Config

var flags struct {
	configFile string
	port       string
	source     string
	debug      bool
}

var serverCmd = &cobra.Command{
	Use:          "whatsup-srv",
	Short:        "Serve the WhatsUp events CSV as an iCalendar feed",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Load(&appConfig, flags.configFile); err != nil {
			return err
		}
		applyFlags(cmd)

		logger, err := newLogger(appConfig.Debug)
		if err != nil {
			return err
		}
		defer func() {
			err := logger.Sync()
			if err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
				fmt.Fprintln(os.Stderr, err)
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, logger)
	},
}

func applyFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("port") {
		appConfig.Port = flags.port
	}
	if cmd.Flags().Changed("source") {
		appConfig.Source.Location = flags.source
	}
	if cmd.Flags().Changed("debug") {
		appConfig.Debug = flags.debug
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newApp(logger *zap.Logger, registry *prometheus.Registry) (*fiber.App, error) {
	metrics, err := c.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               appConfig.AppName,
		DisableStartupMessage: true,
	})

	fiberLogger := fiberzap.New(fiberzap.Config{
		Logger: logger,
	})
	fiberLimiter := limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.IP() == "127.0.0.1"
		},
		Max:        appConfig.Limiter.Max,
		Expiration: appConfig.Limiter.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
				return fwd
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})

	app.Use(fiberLimiter)
	app.Use(fiberLogger)

	cal := c.Calendar{
		Logger: logger,
		Source: c.NewSource(appConfig.Source.Location, appConfig.Source.Timeout),
		Header: c.Header{
			ProdID:      appConfig.Feed.ProdID,
			Name:        appConfig.Feed.Name,
			Description: appConfig.Feed.Description,
			TTL:         appConfig.Feed.TTL,
		},
		Metrics: metrics,
	}
	handlers := h.Handlers{
		Logger:   logger,
		Calendar: &cal,
		Info:     t.Info{Name: appConfig.AppName, Version: version},
		Filename: appConfig.Feed.Filename,
		Gatherer: registry,
	}
	handlers.Register(app)

	return app, nil
}

func serve(ctx context.Context, logger *zap.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := newApp(logger, registry)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("port", appConfig.Port),
			zap.String("source", appConfig.Source.Location),
		)
		errCh <- app.Listen(":" + appConfig.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func init() {
	cfg = config.New(&config.Settings{ENVPrefix: "WHATSUP"})

	serverCmd.Flags().StringVarP(&flags.configFile, "config", "c", "config.yml", "config file")
	serverCmd.Flags().StringVarP(&flags.port, "port", "p", "", "app server port")
	serverCmd.Flags().StringVarP(&flags.source, "source", "s", "", "events CSV path or URL")
	serverCmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "Debug Mode")
}

func main() {
	if err := serverCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
