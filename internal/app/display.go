package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	status     StatusMessage
	haveStatus bool

	telemetry     session.Telemetry
	haveTelemetry bool

	summary     session.Summary
	haveSummary bool
}

func (d *DisplayData) snapshot() displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		status:        d.status,
		haveStatus:    d.haveStatus,
		telemetry:     d.telemetry,
		haveTelemetry: d.haveTelemetry,
		summary:       d.summary,
		haveSummary:   d.haveSummary,
	}
}

type displaySnapshot struct {
	status        StatusMessage
	haveStatus    bool
	telemetry     session.Telemetry
	haveTelemetry bool
	summary       session.Summary
	haveSummary   bool
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), splashImage(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicStatus, func(s StatusMessage) {
		data.mu.Lock()
		data.status = s
		data.haveStatus = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicTelemetry, func(t session.Telemetry) {
		data.mu.Lock()
		data.telemetry = t
		data.haveTelemetry = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicSummary, func(sum session.Summary) {
		data.mu.Lock()
		data.summary = sum
		data.haveSummary = true
		data.mu.Unlock()
	}); err != nil {
		return err
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		img := renderScreen(data.snapshot())
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

// screen draws up to four 13px text lines on a blank 128x64 image.
func screen(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		if i == 4 {
			break
		}
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawBytes([]byte(l))
	}
	return img
}

func splashImage() *image1bit.VerticalLSB {
	return screen("", "Velocity Gauge", "Waiting...")
}

// renderScreen shows the live velocity while recording and the last
// session's results while idle.
func renderScreen(s displaySnapshot) *image1bit.VerticalLSB {
	recording := s.haveStatus && s.status.State == StateRecording
	switch {
	case recording:
		lines := []string{"REC"}
		if s.haveTelemetry && s.telemetry.SessionID == s.status.SessionID {
			lines = append(lines,
				fmt.Sprintf("v: %5.2f m/s", s.telemetry.VerticalVelocity),
				fmt.Sprintf("a: %5.2f m/s2", s.telemetry.VerticalAccel),
				fmt.Sprintf("t: %6.1f s", s.telemetry.Elapsed),
			)
		}
		return screen(lines...)

	case s.haveSummary && s.summary.Failed():
		return screen("Session failed", s.summary.Error)

	case s.haveSummary:
		lines := []string{
			fmt.Sprintf("Reps: %d", len(s.summary.Reps)),
			fmt.Sprintf("Peak: %.2f m/s", s.summary.PeakVelocity),
		}
		if n := len(s.summary.Reps); n > 0 {
			last := s.summary.Reps[n-1]
			lines = append(lines,
				fmt.Sprintf("Last: %.2f m/s", last.MaxVelocity),
				fmt.Sprintf("Mean: %.2f m/s", last.MeanVelocity),
			)
		}
		return screen(lines...)

	default:
		return splashImage()
	}
}
