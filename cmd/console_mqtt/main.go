package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/velocity_gauge/internal/app"
	"github.com/relabs-tech/velocity_gauge/internal/config"
)

func main() {
	configPath := flag.String("config", "./velocity_config.txt", "path to configuration file")
	send := flag.String("send", "", "publish a control action (start or stop) and exit")
	flag.Parse()

	log.Println("starting velocity-gauge console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *send != "" {
		if err := app.SendControl(*send); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
