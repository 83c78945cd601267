package main

import (
	"context"
	"dominicbreuker/picolink/cmd/connect"
	"dominicbreuker/picolink/cmd/listen"
	"dominicbreuker/picolink/cmd/shared"
	"dominicbreuker/picolink/cmd/version"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shared.SetupSignalHandling(cancel)

	cmd := &cli.Command{
		Name:  "picolink",
		Usage: "probe tool for tcp/udp pub/sub endpoints",
		Commands: []*cli.Command{
			connect.GetCommand(),
			listen.GetCommand(),
			version.GetCommand(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Printf("[!] Error: %s\n", err)
	}
}
