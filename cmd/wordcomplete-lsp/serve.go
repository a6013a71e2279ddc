package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	glspserver "github.com/tliron/glsp/server"
	"github.com/urfave/cli/v2"

	"github.com/CWBudde/wordcomplete-lsp/internal/config"
	"github.com/CWBudde/wordcomplete-lsp/internal/logger"
	"github.com/CWBudde/wordcomplete-lsp/internal/lsp"
	"github.com/CWBudde/wordcomplete-lsp/internal/metrics"
	"github.com/CWBudde/wordcomplete-lsp/internal/server"
)

// serve runs the language server over stdio, or TCP with --tcp.
func serve(c *cli.Context) error {
	closer, err := logger.Setup(c.String("log-level"), c.String("log-file"))
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := loadOptions(c)
	if err != nil {
		return err
	}

	m := metrics.New()

	if addr := c.String("metrics-addr"); addr != "" {
		bound, stop, err := metrics.StartServer(addr, m)
		if err != nil {
			return err
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := stop(ctx); err != nil {
				log.Warnf("Metrics server shutdown: %v", err)
			}
		}()

		log.Infof("Metrics available at http://%s/metrics", bound)
	}

	srv := server.New(server.WithOptions(opts), server.WithMetrics(m))
	defer srv.Shutdown()

	lsp.SetServer(srv)

	glspServer := glspserver.NewServer(lsp.NewHandler(), "wordcomplete-lsp", false)

	log.Infof("wordcomplete-lsp version %s starting", version)

	if c.Bool("tcp") {
		addr := fmt.Sprintf("127.0.0.1:%d", c.Int("port"))
		log.Infof("Starting TCP server on %s", addr)

		if err := glspServer.RunTCP(addr); err != nil {
			return fmt.Errorf("TCP server error: %w", err)
		}

		return nil
	}

	log.Info("Starting STDIO server")

	if err := glspServer.RunStdio(); err != nil {
		return fmt.Errorf("STDIO server error: %w", err)
	}

	return nil
}

// loadOptions returns the defaults overlaid with the --config file.
func loadOptions(c *cli.Context) (config.Options, error) {
	opts, err := config.LoadFileIfExists(c.String("config"), config.DefaultOptions())
	if err != nil {
		return opts, fmt.Errorf("failed to load config: %w", err)
	}

	return opts, nil
}
