package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// RunConsoleMQTT prints everything the recorder publishes until Ctrl+C.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	out := os.Stdout
	if err := subscribeJSON(client, cfg.TopicStatus, func(s StatusMessage) {
		printStatus(out, s)
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicTelemetry, func(t session.Telemetry) {
		printTelemetry(out, t)
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicSummary, func(sum session.Summary) {
		printSummary(out, sum)
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

// SendControl publishes one control action to the recorder.
func SendControl(action string) error {
	if action != ActionStart && action != ActionStop {
		return fmt.Errorf("unknown control action %q (want %q or %q)", action, ActionStart, ActionStop)
	}
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := publishJSON(client, cfg.TopicControl, 1, false, ControlMessage{Action: action}); err != nil {
		return err
	}
	log.Printf("console: sent %q to %s", action, cfg.TopicControl)
	return nil
}
