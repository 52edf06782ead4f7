package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/velocity_gauge/internal/app"
	"github.com/relabs-tech/velocity_gauge/internal/config"
)

func main() {
	configPath := flag.String("config", "./velocity_config.txt", "path to configuration file")
	outDir := flag.String("out", "", "directory for plots and charts (optional)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: analyze [-config file] [-out dir] <samples.csv>")
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunAnalyze(flag.Arg(0), *outDir); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
