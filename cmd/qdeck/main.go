// Command qdeck edits, compiles and runs quantum circuits against a SuperstaQ
// service from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "qdeck:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "qdeck",
		Usage:   "edit, compile and run quantum circuits on SuperstaQ",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"QDECK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "SuperstaQ API key (default $SUPERSTAQ_API_KEY)",
			},
			&cli.StringFlag{
				Name:  "remote-host",
				Usage: "service URL (default $SUPERSTAQ_REMOTE_HOST)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "development logging",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs here instead of stderr",
			},
		},
		Commands: []*cli.Command{
			backendsCommand,
			balanceCommand,
			runCommand,
			statusCommand,
			compileCommand,
			ibmqTokenCommand,
			aqtConfigsCommand,
			editCommand,
		},
	}
}
