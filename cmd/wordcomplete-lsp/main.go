package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "wordcomplete-lsp: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "wordcomplete-lsp",
		Usage:     "Language server suggesting words from every open document",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path (default: stderr)",
			},
			&cli.BoolFlag{
				Name:  "tcp",
				Usage: "Run server in TCP mode (for debugging)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "TCP port to listen on (used with --tcp)",
				Value: 8765,
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464",
			},
		},
		// Editors start the server without a command.
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the language server (default)",
				Action: serve,
			},
			{
				Name:      "index",
				Usage:     "Index files and print their word inventories",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "folder",
						Usage: "Workspace folder used for display paths (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "counts",
						Usage: "Print the occurrence count of every word",
					},
				},
				Action: indexFiles,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "wordcomplete-lsp version %s\n", version)
					return nil
				},
			},
		},
	}
}
