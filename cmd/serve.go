package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/college-counselor/internal/logger"
	"github.com/spigell/college-counselor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the counselor over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

// bootstrap builds the logger and reads the config. Startup problems are fatal.
func bootstrap(toStderr bool) (*zap.Logger, *Config) {
	build := logger.New
	if toStderr {
		build = logger.NewStderr
	}

	logger, err := build(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func redacted(config *Config) *Config {
	c := *config
	if c.Gemini != nil && c.Gemini.APIKey != "" {
		g := *c.Gemini
		g.APIKey = "***"
		c.Gemini = &g
	}
	if c.Storage != nil && (c.Storage.DSN != "" || c.Storage.Redis.Password != "") {
		s := *c.Storage
		if s.DSN != "" {
			s.DSN = "***"
		}
		if s.Redis.Password != "" {
			s.Redis.Password = "***"
		}
		c.Storage = &s
	}
	return &c
}

func serve() {
	logger, config := bootstrap(false)
	defer logger.Sync()

	logger.Info("starting the college-counselor", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the counselor", zap.Error(err))
	}
	defer app.Close()

	srv := server.New(config.Server.Addr, server.RouterConfig{
		Driver:       app.driver,
		AllowOrigins: config.Server.AllowOrigins,
		Logger:       logger.Named("http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return app.sessions.Run(gctx, config.Server.SweepInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
