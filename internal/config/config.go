package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/velocity_gauge/internal/filter"
	"github.com/relabs-tech/velocity_gauge/internal/reps"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// ErrConfig is wrapped by every configuration error.
var ErrConfig = errors.New("config error")

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDRecorder string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicTelemetry string
	TopicSummary   string
	TopicControl   string
	TopicStatus    string

	// Sample source: "mock", "mpu9250", "serial" or "replay"
	SampleSource string

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Serial device-motion stream
	SerialPort     string
	SerialBaudRate int

	// Offline replay
	ReplayFile string

	// Timing (seconds)
	SampleInterval     float64 // Δt while recording
	IdleSampleInterval float64 // while idle

	// Pipeline
	AccelThreshold    float64 // m/s²
	VelocityThreshold float64 // m/s
	MinRepSamples     int
	Gravity           float64 // m/s²
	OpenRepPolicy     reps.OpenRepPolicy
	ChartDecimation   int

	// g-h filter used for gravity tracking
	GH filter.Params

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds

	// Plots
	PlotOutputDir string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every value set to its built-in default.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDRecorder: "velocity-recorder",
		MQTTClientIDConsole:  "velocity-console",
		MQTTClientIDWeb:      "velocity-web",
		MQTTClientIDDisplay:  "velocity-display",

		TopicTelemetry: "velocity/telemetry",
		TopicSummary:   "velocity/summary",
		TopicControl:   "velocity/control",
		TopicStatus:    "velocity/status",

		SampleSource: "mock",

		IMUSPIDevice: "/dev/spidev0.0",
		IMUCSPin:     "8",

		SerialPort:     "/dev/ttyUSB0",
		SerialBaudRate: 115200,

		SampleInterval:     0.01,
		IdleSampleInterval: 0.1,

		AccelThreshold:    0.05,
		VelocityThreshold: 0.1,
		MinRepSamples:     30,
		Gravity:           9.81,
		OpenRepPolicy:     reps.DropOpen,
		ChartDecimation:   10,

		GH: filter.Params{X0: 0, Dx: 0, G: 0.1, H: 0, Dt: 0.01},

		WebServerPort: 8080,

		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file on top of the defaults.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: invalid config line %d: %q", ErrConfig, lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.Set(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Set assigns a single KEY=VALUE pair.
func (c *Config) Set(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_RECORDER":
		c.MQTTClientIDRecorder = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_TELEMETRY":
		c.TopicTelemetry = value
	case "TOPIC_SUMMARY":
		c.TopicSummary = value
	case "TOPIC_CONTROL":
		c.TopicControl = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	case "SAMPLE_SOURCE":
		switch value {
		case "mock", "mpu9250", "serial", "replay":
			c.SampleSource = value
		default:
			return fmt.Errorf("%w: SAMPLE_SOURCE must be mock, mpu9250, serial or replay, got %q", ErrConfig, value)
		}

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := parseRange(key, value, 3)
		if err != nil {
			return err
		}
		c.IMUAccelRange = rangeVal
	case "IMU_GYRO_RANGE":
		rangeVal, err := parseRange(key, value, 3)
		if err != nil {
			return err
		}
		c.IMUGyroRange = rangeVal

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid SERIAL_BAUD_RATE %q: %v", ErrConfig, value, err)
		}
		c.SerialBaudRate = rate

	case "REPLAY_FILE":
		c.ReplayFile = value

	// Timing
	case "SAMPLE_INTERVAL":
		return parseFloat(key, value, &c.SampleInterval)
	case "IDLE_SAMPLE_INTERVAL":
		return parseFloat(key, value, &c.IdleSampleInterval)

	// Pipeline
	case "ACCEL_THRESHOLD":
		return parseFloat(key, value, &c.AccelThreshold)
	case "VELOCITY_THRESHOLD":
		return parseFloat(key, value, &c.VelocityThreshold)
	case "MIN_REP_SAMPLES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid MIN_REP_SAMPLES %q: %v", ErrConfig, value, err)
		}
		c.MinRepSamples = n
	case "GRAVITY":
		return parseFloat(key, value, &c.Gravity)
	case "OPEN_REP_POLICY":
		policy, err := reps.ParseOpenRepPolicy(value)
		if err != nil {
			return fmt.Errorf("%w: OPEN_REP_POLICY: %v", ErrConfig, err)
		}
		c.OpenRepPolicy = policy
	case "CHART_DECIMATION":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid CHART_DECIMATION %q: %v", ErrConfig, value, err)
		}
		c.ChartDecimation = n

	// g-h filter
	case "GH_X0":
		return parseFloat(key, value, &c.GH.X0)
	case "GH_DX":
		return parseFloat(key, value, &c.GH.Dx)
	case "GH_G":
		return parseFloat(key, value, &c.GH.G)
	case "GH_H":
		return parseFloat(key, value, &c.GH.H)
	case "GH_DT":
		return parseFloat(key, value, &c.GH.Dt)

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid WEB_SERVER_PORT %q: %v", ErrConfig, value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: invalid DISPLAY_UPDATE_INTERVAL %q: %v", ErrConfig, value, err)
		}
		c.DisplayUpdateInterval = interval

	case "PLOT_OUTPUT_DIR":
		c.PlotOutputDir = value

	default:
		return fmt.Errorf("%w: unknown config key: %q", ErrConfig, key)
	}

	return nil
}

func parseFloat(key, value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q: %v", ErrConfig, key, value, err)
	}
	*dst = f
	return nil
}

func parseRange(key, value string, max int) (byte, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q: %v", ErrConfig, key, value, err)
	}
	if val < 0 || val > max {
		return 0, fmt.Errorf("%w: %s must be 0-%d, got %d", ErrConfig, key, max, val)
	}
	return byte(val), nil
}

// Validate checks the values the pipeline depends on.
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("%w: MQTT_BROKER is required", ErrConfig)
	}
	if !(c.SampleInterval > 0) {
		return fmt.Errorf("%w: SAMPLE_INTERVAL must be > 0, got %g", ErrConfig, c.SampleInterval)
	}
	if !(c.IdleSampleInterval > 0) {
		return fmt.Errorf("%w: IDLE_SAMPLE_INTERVAL must be > 0, got %g", ErrConfig, c.IdleSampleInterval)
	}
	if c.AccelThreshold < 0 {
		return fmt.Errorf("%w: ACCEL_THRESHOLD must be >= 0, got %g", ErrConfig, c.AccelThreshold)
	}
	if c.VelocityThreshold < 0 {
		return fmt.Errorf("%w: VELOCITY_THRESHOLD must be >= 0, got %g", ErrConfig, c.VelocityThreshold)
	}
	if c.MinRepSamples < 1 {
		return fmt.Errorf("%w: MIN_REP_SAMPLES must be >= 1, got %d", ErrConfig, c.MinRepSamples)
	}
	if !(c.Gravity > 0) {
		return fmt.Errorf("%w: GRAVITY must be > 0, got %g", ErrConfig, c.Gravity)
	}
	if c.ChartDecimation < 1 {
		return fmt.Errorf("%w: CHART_DECIMATION must be >= 1, got %d", ErrConfig, c.ChartDecimation)
	}
	if err := c.GH.Validate(); err != nil {
		return fmt.Errorf("%w: GH_*: %v", ErrConfig, err)
	}
	if c.SampleSource == "replay" && c.ReplayFile == "" {
		return fmt.Errorf("%w: REPLAY_FILE is required for SAMPLE_SOURCE=replay", ErrConfig)
	}
	if c.SampleSource == "serial" && c.SerialBaudRate <= 0 {
		return fmt.Errorf("%w: SERIAL_BAUD_RATE is required for SAMPLE_SOURCE=serial", ErrConfig)
	}
	return nil
}

// ActiveInterval is the sample period while recording.
func (c *Config) ActiveInterval() time.Duration {
	return secondsToDuration(c.SampleInterval)
}

// IdleInterval is the sample period while idle.
func (c *Config) IdleInterval() time.Duration {
	return secondsToDuration(c.IdleSampleInterval)
}

// SessionParams returns the pipeline settings for a recording session.
func (c *Config) SessionParams() session.Params {
	return session.Params{
		Dt:                c.SampleInterval,
		AccelThreshold:    c.AccelThreshold,
		VelocityThreshold: c.VelocityThreshold,
		MinRepSamples:     c.MinRepSamples,
		Gravity:           c.Gravity,
		OpenRepPolicy:     c.OpenRepPolicy,
		ChartDecimation:   c.ChartDecimation,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
