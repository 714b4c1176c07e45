// Command-line access to block-stored N-d volumes: create, inspect, read and write
// hyperslabs, and build lower resolutions.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/janelia-flyem/voxelio/config"
	"github.com/janelia-flyem/voxelio/dvid"

	// Storage engines this executable supports
	_ "github.com/janelia-flyem/voxelio/storage/badger"
	_ "github.com/janelia-flyem/voxelio/storage/memory"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to a TOML or YAML configuration file.
	configPath = flag.String("config", "", "")

	// Alias of the store holding volumes.
	storeAlias = flag.String("store", config.DefaultStore, "")
)

const helpMessage = `
voxelio reads and writes hyperslabs of block-stored N-d volumes

Usage: voxelio [options] <command>

      -config     =string   TOML or YAML configuration file.
      -store      =string   Alias of the configured store to use (default "default").
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	help
	create   <name> <spec.json> [compression=none|snappy|zstd]
	info     <name>
	get      <name> <start> <count> [real|raw] [type=float64] [level=0]
	put-const <name> <start> <count> <value> [real|raw] [type=float64]
	downres  <name> <level>
	delete   <name>

Coordinates are comma-separated and given in the volume's apparent dimension order,
e.g. "0,10,20".  Without a configuration file volumes are kept in a badger store
under ./voxelio-data.
`

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() { fmt.Print(helpMessage) }
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	if *runVerbose {
		dvid.SetLogMode(dvid.DebugMode)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if err := cfg.Logging.SetLogger(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if *runVerbose {
			dvid.SetLogMode(dvid.DebugMode)
		}
	}

	command := dvid.Command(flag.Args())
	if command.Name() == "about" {
		if err := doAbout(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	db, err := cfg.OpenStore(*storeAlias)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	a := &app{cfg: cfg, db: db, out: os.Stdout}
	err = a.DoCommand(command)
	if cerr := db.Close(); cerr != nil {
		dvid.Errorf("closing store %s: %v\n", db, cerr)
	}
	dvid.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
