// Dishctl is the command-line client for monitoring and controlling a running
// dishwatchd instance. It connects over HTTP and WebSocket to query status
// and stream live events from the daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/macauleyjustin/dishwatch/internal/ctl"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "http://127.0.0.1:8471", "Dishwatch daemon URL (e.g. http://192.168.1.10:8471)")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		filter  = pflag.StringSlice("filter", nil, "Event types to show in watch (e.g. --filter status,recovery)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --tail are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	// ── Query commands ────────────────────────────────────────────
	case "status":
		err = ctl.Status(*host, *jsonOut)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "ledger":
		err = ctl.Ledger(*host, *jsonOut)

	case "satellites":
		err = ctl.Satellites(*host, *jsonOut)

	case "handover":
		err = ctl.Handover(*host, *jsonOut)

	case "tle-info":
		err = ctl.TLEInfo(*host, *jsonOut)

	case "logs":
		opts := ctl.LogsOptions{JSON: *jsonOut}
		logFlags := pflag.NewFlagSet("logs", pflag.ContinueOnError)
		logFlags.StringVar(&opts.Level, "level", "", "Filter by log level (info, error, warn)")
		logFlags.IntVar(&opts.Limit, "limit", 0, "Limit number of log entries shown")
		logFlags.BoolVar(&opts.Tail, "tail", false, "Stream live log events (like watch --filter log)")
		_ = logFlags.Parse(subArgs)
		err = ctl.Logs(*host, opts)

	// ── Control commands ──────────────────────────────────────────
	case "connect":
		err = ctl.Connect(*host, *jsonOut)

	case "disconnect":
		err = ctl.Disconnect(*host, *jsonOut)

	case "tle-refresh":
		err = ctl.TLERefresh(*host, *jsonOut)

	case "pause":
		err = ctl.Pause(*host, *jsonOut)

	case "resume":
		err = ctl.Resume(*host, *jsonOut)

	// ── Live streaming ────────────────────────────────────────────
	case "watch":
		err = ctl.Watch(*host, ctl.WatchOptions{
			Filter: *filter,
			JSON:   *jsonOut,
		})

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`
  dishctl — Dishwatch control CLI

  USAGE
    dishctl [flags] <command> [command-flags]

  COMMANDS (query)
    status          Show link state, serving satellite, and handover countdown
    health          Check daemon and component health
    version         Show CLI and daemon version information
    config          Show the daemon's running configuration
    ledger          List known access points from prior successful connections
    satellites      Show the current visibility estimate
    handover        Show seconds until the next handover boundary
    tle-info        Show orbital element cache status and freshness
    logs            Show recent daemon log messages

  COMMANDS (control)
    connect         Run a recovery attempt now, ignoring cooldown
    disconnect      Tear down the active Wi-Fi connection
    tle-refresh     Force an element set update from the network
    pause           Pause the monitor loop
    resume          Resume the monitor loop

  COMMANDS (live)
    watch           Stream live events from the daemon (Ctrl-C to stop)

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: http://127.0.0.1:8471)
        --json          Output raw JSON instead of formatted text
        --filter TYPE   Event types to show in watch (comma-separated)

  COMMAND FLAGS
    logs:
        --level LEVEL       Filter by log level (info, error, warn)
        --limit N           Limit number of log entries shown
        --tail              Stream live log events

  EXAMPLES
    dishctl status
    dishctl --json status
    dishctl --host http://192.168.1.10:8471 watch
    dishctl ledger
    dishctl satellites
    dishctl handover
    dishctl connect
    dishctl tle-refresh
    dishctl logs --level error --limit 20
    dishctl logs --tail
    dishctl watch --filter status,recovery

`)
}
