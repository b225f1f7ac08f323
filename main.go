package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianadrielbraun/qrform/internal/config"
	"github.com/cristianadrielbraun/qrform/internal/logging"
)

const usage = `usage: qrform [-config file] <command> [flags]

commands:
  run       interactive form session (default)
  generate  generate once, optionally download, then clean up
  serve     run the development server for /generate, /download and /cleanup
`

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cmd, args := "run", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	closer, err := logging.Setup(cfg.Logs, "qrform-"+cmd)
	if err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "run":
		err = runInteractive(ctx, cfg)
	case "generate":
		err = runGenerate(ctx, cfg, args)
	case "serve":
		err = runServe(ctx, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Printf("%s: %v", cmd, err)
		closer.Close()
		os.Exit(1)
	}
}
