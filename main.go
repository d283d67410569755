package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/roadmetric-data/trajectory.report/internal/config"
	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/units"
	"github.com/roadmetric-data/trajectory.report/internal/version"
)

var (
	dbPath      = flag.String("db", "trajectory_data.db", "Path to the SQLite database")
	configPath  = flag.String("config", "", "Path to an analysis config JSON (optional)")
	listen      = flag.String("listen", ":8080", "Listen address for the serve command")
	speedUnits  = flag.String("units", units.MPS, "Display units for speeds (mps, mph, kmph)")
	showVersion = flag.Bool("version", false, "Print the build version and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: trajectory.report [flags] <command> [args]

Commands:
  ingest -name <dataset> -csv <file>   Load an observation CSV into a new dataset
  derive -dataset <id>                 Derive trajectories and store an analysis run
  runs [-dataset <id>]                 List stored analysis runs
  report -run <id> -out <file.html>    Render the HTML report for a run
  serve                                Start the HTTP analytics server

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if !units.IsValid(*speedUnits) {
		log.Fatalf("unsupported -units value %q (expected mps, mph, or kmph)", *speedUnits)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	var cfg *config.AnalysisConfig
	if *configPath != "" {
		loaded, err := config.LoadAnalysisConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := runCommand(database, cfg, cmd, args); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
