// Package listen implements the listen command, which waits for a link on a
// local endpoint and exchanges bytes with whoever shows up.
package listen

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

// GetCommand returns the CLI command for listen mode.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "listen",
		Usage:       "Listen for links on a local endpoint",
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

			cfg := &config.Shared{
				Protocol: proto,
				Host:     host,
				Port:     port,
				Timeout:  cmd.Duration(shared.TimeoutFlag),
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

			return entrypoint.Listen(ctx, cfg, nil)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetListenFlags()...)

	return flags
}
