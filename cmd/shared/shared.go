// Package shared provides common CLI flag definitions and utility functions
// used across picolink's command-line interface.
package shared

import (
	"dominicbreuker/picolink/pkg/config"
	"strings"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag for the datagram receive timeout.
const TimeoutFlag = "timeout"

// LogFileFlag is the name of the flag to capture link traffic to a file.
const LogFileFlag = "log"

// GetBaseDescription returns the base description text explaining the
// endpoint argument format.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify the endpoint like this: tcp://127.0.0.1:7447 (supports tcp|udp)",
		"You can omit the host when listening to bind to all interfaces.",
		"A udp endpoint with a multicast group address publishes to or joins the group.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return strings.Join([]string{
		"endpoint",
	}, " ")
}

// GetCommonFlags returns the common CLI flags used by both probe modes.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.DurationFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Receive timeout on datagram links, 0 to wait forever",
			Category: categoryCommon,
			Value:    config.DefaultTimeout,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Capture link traffic to this file",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
	}
}

const categoryConnect = "connect"

// LeaseFlag is the name of the flag for the session lease on stream links.
const LeaseFlag = "lease"

// TTLFlag is the name of the flag for the multicast hop limit.
const TTLFlag = "ttl"

// GetConnectFlags returns the CLI flags specific to connect mode.
func GetConnectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:     LeaseFlag,
			Usage:    "Session lease bounding how long a stream link lingers on close, whole seconds",
			Category: categoryConnect,
			Value:    config.DefaultLease,
			Required: false,
		},
		&cli.IntFlag{
			Name:     TTLFlag,
			Usage:    "Hop limit for multicast publishing",
			Category: categoryConnect,
			Value:    config.DefaultTTL,
			Required: false,
		},
	}
}

// GetListenFlags returns the CLI flags specific to listen mode.
// Currently returns an empty slice.
func GetListenFlags() []cli.Flag {
	return []cli.Flag{}
}
