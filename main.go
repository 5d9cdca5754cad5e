package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"cinema-booking-cli/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	build := cmd.BuildInfo{Version: version, Commit: commit}
	if err := cmd.Execute(ctx, build, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
