package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagSource    string
	flagWidth     int
	flagHeight    int
	flagRate      int
	flagChannels  int
	flagDuration  int
	flagStatsAddr string
	flagHelp      bool
	flagVersion   bool
)

func init() {
	flag.StringVarP(&flagSource, "source", "s", "synthetic:1280x720@30", "Capture source spec (tag:path)")
	flag.IntVarP(&flagWidth, "width", "x", 1280, "Requested video width")
	flag.IntVarP(&flagHeight, "height", "y", 720, "Requested video height")
	flag.IntVarP(&flagRate, "rate", "r", 48000, "Requested audio sample rate")
	flag.IntVarP(&flagChannels, "channels", "c", 2, "Requested audio channels")
	flag.IntVarP(&flagDuration, "duration", "t", 0, "Run time in seconds, 0 to run until interrupted")
	flag.StringVarP(&flagStatsAddr, "stats-addr", "", "", "Serve delivery stats over websocket at this address")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Capture-sink ingestion daemon

Usage: livecapd [OPTION]...

Capture:
  -s, --source=SPEC      Capture source spec, tag:path (default: synthetic:1280x720@30)
  -x, --width=NUM        Requested video width (default: 1280)
  -y, --height=NUM       Requested video height (default: 720)
  -r, --rate=NUM         Requested audio sample rate (default: 48000)
  -c, --channels=NUM     Requested audio channels (default: 2)

Run control:
  -t, --duration=NUM     Run time in seconds, 0 to run until interrupted
      --stats-addr=ADDR  Serve delivery stats over websocket at ADDR

Miscellaneous:
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits
`

// Populated via -ldflags="-X ...". See Makefile.
var GitRevisionId string

func help() {
	fmt.Print(helpString)
}

func version() {
	rev := GitRevisionId
	if rev == "" {
		rev = "unknown"
	}
	color.New(color.Bold).Println("livecapd", rev)
	fmt.Println("Copyright 2026 Livecap Labs. All rights reserved.")
}
