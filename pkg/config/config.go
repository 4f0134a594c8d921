// Package config provides the process level options of the robot
// binaries: identity, links, the tuning file and the run log.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/romi.go/pkg/link"
	"github.com/robotalks/romi.go/pkg/link/mqtt"
	"github.com/robotalks/romi.go/pkg/link/websocket"
	"github.com/robotalks/romi.go/pkg/romi"
)

// Config provides common options to set up a robot process.
type Config struct {
	// ID identifies the robot on shared links and in the run log.
	ID string

	// SerialPort is the device of the UART/Bluetooth link.
	SerialPort string
	BaudRate   int

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	// WebsocketAddr is the listen address for browser clients.
	WebsocketAddr string

	// TuningFile is an optional YAML file layered over romi.DefaultConfig.
	TuningFile string

	// RunLog is the sqlite file recording runs. Empty disables it.
	RunLog string
}

var defaultConfig = Config{
	BaudRate:      link.DefaultBaudRate,
	WebsocketAddr: "localhost:8086",
	RunLog:        "romi-runs.db",
}

func init() {
	defaultConfig.ID = MachineID()
	if val := os.Getenv("ROMI_ID"); val != "" {
		defaultConfig.ID = val
	}
	if val := os.Getenv("ROMI_SERIAL"); val != "" {
		defaultConfig.SerialPort = val
	}
	if val := os.Getenv("ROMI_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ROMI_CONFIG"); val != "" {
		defaultConfig.TuningFile = val
	}
	if val, ok := os.LookupEnv("ROMI_RUNLOG"); ok {
		defaultConfig.RunLog = val
	}
}

// MachineID retrieves an ID identifying the machine. The raw machine
// ID is not exposed.
func MachineID() string {
	id, err := machineid.ProtectedID("romi")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "romi"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Robot ID")
	flag.StringVar(&defaultConfig.SerialPort, "serial", defaultConfig.SerialPort, "Serial port of the operator link")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address, empty to disable")
	flag.StringVar(&defaultConfig.TuningFile, "config", defaultConfig.TuningFile, "YAML tuning file")
	flag.StringVar(&defaultConfig.RunLog, "runlog", defaultConfig.RunLog, "Run log database, empty to disable")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadTuning reads a YAML tuning file over the defaults and validates
// the result.
func LoadTuning(path string) (*romi.Config, error) {
	conf := romi.DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tuning: %w", err)
		}
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("parse tuning %s: %w", path, err)
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("tuning %s: %w", path, err)
	}
	return conf, nil
}

// Tuning loads the configured tuning file.
func (c *Config) Tuning() (*romi.Config, error) {
	return LoadTuning(c.TuningFile)
}

// NewLink opens all configured links behind a Mux.
func (c *Config) NewLink() (*link.Mux, error) {
	mux := link.NewMux()
	if c.SerialPort != "" {
		l, err := link.OpenSerial(c.SerialPort, c.BaudRate)
		if err != nil {
			return nil, err
		}
		mux.Add(l)
	}
	if c.MQTTBrokerURL != "" {
		l, err := mqtt.NewLink(c.MQTTBrokerURL, c.ID)
		if err != nil {
			return nil, fmt.Errorf("create MQTT link error: %w", err)
		}
		mux.Add(l)
	}
	if c.WebsocketAddr != "" {
		l, _ := websocket.NewLink(c.WebsocketAddr)
		mux.Add(l)
	}
	if len(mux.Links) == 0 {
		return nil, fmt.Errorf("at least one link is required")
	}
	return mux, nil
}

// MustNewLink creates the links and fails on error.
func (c *Config) MustNewLink() *link.Mux {
	mux, err := c.NewLink()
	if err != nil {
		log.Fatalln(err)
	}
	return mux
}
