// Package connect implements the connect command, which opens a link to a
// remote endpoint and exchanges bytes with it.
package connect

import (
	"context"
	"dominicbreuker/picolink/cmd/shared"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/entrypoint"
	"dominicbreuker/picolink/pkg/log"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for connect mode.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Usage:       "Connect to a remote endpoint",
		ArgsUsage:   shared.GetArgsUsage(),
		Description: shared.GetBaseDescription(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one argument, got %d (%s)", args.Len(), strings.Join(args.Slice(), ", "))
			}

			proto, host, port, err := shared.ParseEndpoint(args.Get(0))
			if err != nil {
				return fmt.Errorf("parsing endpoint: %s", err)
			}
			if host == "" {
				return fmt.Errorf("parsing endpoint: %s: specify a host", args.Get(0))
			}

			cfg := &config.Shared{
				Protocol: proto,
				Host:     host,
				Port:     port,
				Lease:    cmd.Duration(shared.LeaseFlag),
				Timeout:  cmd.Duration(shared.TimeoutFlag),
				TTL:      int(cmd.Int(shared.TTLFlag)),
				LogFile:  cmd.String(shared.LogFileFlag),
				Verbose:  cmd.Bool(shared.VerboseFlag),
			}
			log.SetVerbose(cfg.Verbose)

			if errors := config.Validate(cfg); len(errors) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errors {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			return entrypoint.Connect(ctx, cfg, nil)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetConnectFlags()...)

	return flags
}
