// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/velocity_gauge/internal/app"
	"github.com/relabs-tech/velocity_gauge/internal/config"
)

func main() {
	configPath := flag.String("config", "./velocity_config.txt", "path to configuration file")
	duration := flag.Duration("duration", 0, "recording length (0 records until Ctrl+C)")
	flag.Parse()

	log.Println("starting velocity-gauge (local console)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(*duration); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
