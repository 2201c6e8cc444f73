package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/threadsnap/threadsnap/internal/config"
	"github.com/threadsnap/threadsnap/internal/logger"
	"github.com/threadsnap/threadsnap/internal/output"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a single thread URL and print the result",
	Long: `Run the scrape-and-classify pipeline once, without the HTTP server,
and write the extraction result to stdout or a file.

Examples:
  threadsnap scrape -u "https://dropmms.co/threads/example.123/"
  threadsnap scrape -u "https://dropmms.co/threads/example.123/" -o result.yaml --format yaml`,
	RunE: runScrapeCmd,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()
	flags.StringP("url", "u", "", "thread URL to scrape (required)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, yaml")

	_ = scrapeCmd.MarkFlagRequired("url")
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logError("%v", err)
		return err
	}

	targetURL, _ := cmd.Flags().GetString("url")
	if !originAllowed(targetURL, cfg.Scrape.AllowedOrigins) {
		err := fmt.Errorf("url is not on an allow-listed domain: %s", targetURL)
		logError("%v", err)
		return err
	}

	pipe, err := buildPipeline(cfg)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer pipe.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := pipe.Scrape(ctx, targetURL)
	if err != nil {
		logError("scrape failed: %v", err)
		return err
	}

	var out io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logError("failed to create output file: %v", err)
			return err
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	writer, err := output.NewWriter(out, output.Format(format))
	if err != nil {
		logError("%v", err)
		return err
	}
	return writer.Write(result)
}

func originAllowed(url string, allowed []string) bool {
	for _, prefix := range allowed {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}
