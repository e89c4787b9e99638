package main

import (
	"context"
	"os"
	"os/signal"

	"img2stl/cmd/img2stl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(commands.ExecuteContext(ctx))
}
