package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// Control actions accepted on the control topic.
const (
	ActionStart = "start"
	ActionStop  = "stop"
)

// Recorder states published on the status topic.
const (
	StateIdle      = "idle"
	StateRecording = "recording"
)

// ControlMessage asks the recorder to start or stop a session.
type ControlMessage struct {
	Action string `json:"action"`
}

// StatusMessage reports the recorder state.
type StatusMessage struct {
	State     string `json:"state"`
	SessionID string `json:"session_id,omitempty"`
}

func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Printf("connected to MQTT broker at %s as %s", broker, clientID)
	return client, nil
}

func publishJSON(client mqtt.Client, topic string, qos byte, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	if token := client.Publish(topic, qos, retained, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// subscribeJSON decodes every message on topic into a fresh T.
func subscribeJSON[T any](client mqtt.Client, topic string, handle func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("MQTT payload unmarshal error (%s): %v", topic, err)
			return
		}
		handle(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe (%s): %w", topic, token.Error())
	}
	log.Printf("subscribed to MQTT topic %s", topic)
	return nil
}

// mqttSink publishes pipeline output. Telemetry is fire-and-forget; the
// summary is retained so late subscribers see the last session.
type mqttSink struct {
	client         mqtt.Client
	telemetryTopic string
	summaryTopic   string
}

func (s *mqttSink) Sample(t session.Telemetry) {
	payload, err := json.Marshal(t)
	if err != nil {
		log.Printf("json marshal error (telemetry): %v", err)
		return
	}
	s.client.Publish(s.telemetryTopic, 0, false, payload)
}

func (s *mqttSink) Summary(sum session.Summary) {
	if err := publishJSON(s.client, s.summaryTopic, 1, true, sum); err != nil {
		log.Printf("recorder: %v", err)
	}
}
