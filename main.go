package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/yiblet/clippocket/internal/cli"
	"github.com/yiblet/clippocket/internal/logging"
)

func main() {
	// Parse command-line arguments
	var args cli.Args
	parser := arg.MustParse(&args)

	if err := args.Validate(); err != nil {
		parser.Fail(err.Error())
	}

	cm, cfg, err := cli.LoadConfig(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cli.LogOptions(&args, cfg))

	cliHandler, err := cli.NewWithConfig(&args, cm, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cliHandler.Execute(ctx, &args)
	stop()

	if closeErr := cliHandler.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
