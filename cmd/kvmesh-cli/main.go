package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/yndnr/kvmesh-go/internal/cli/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := command.App().RunContext(ctx, os.Args)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, command.ErrErrorReply):
		os.Exit(1)
	default:
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
