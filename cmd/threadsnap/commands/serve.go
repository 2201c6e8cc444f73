package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/threadsnap/threadsnap/internal/config"
	"github.com/threadsnap/threadsnap/internal/logger"
	"github.com/threadsnap/threadsnap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scrape API server",
	Long: `Start the HTTP server exposing POST /api/scrape and GET /health.

The browser session is launched lazily on the first scrape request and
reused for the process lifetime.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.IntP("port", "p", 5469, "listen port")
	flags.Float64("rate-limit-rps", 1, "per-client sustained requests per second")
	flags.Int("rate-limit-burst", 3, "per-client request burst")

	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.rate_limit_rps", flags.Lookup("rate-limit-rps"))
	_ = viper.BindPFlag("server.rate_limit_burst", flags.Lookup("rate-limit-burst"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logError("%v", err)
		return err
	}

	pipe, err := buildPipeline(cfg)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer pipe.Close()

	handler := server.NewHandler(pipe.Scrape, cfg.Scrape.AllowedOrigins)
	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, handler)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logError("%v", err)
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
