// Package config loads device configuration from YAML, with .env and
// environment variable overrides.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all capture configuration.
type Config struct {
	GPS     GPSConfig     `yaml:"gps"`
	WiFi    WiFiConfig    `yaml:"wifi"`
	Capture CaptureConfig `yaml:"capture"`
	UI      UIConfig      `yaml:"ui"`
	Server  ServerConfig  `yaml:"server"`
}

type GPSConfig struct {
	Type     string `yaml:"type"`      // "nmea" or "demo"
	PortPath string `yaml:"port_path"` // e.g. /dev/ttyUSB0
	BaudRate int    `yaml:"baud_rate"` // 0 = derive from module variant
	Module   string `yaml:"module"`    // "generic" or "m5stack-v1.1"
}

type WiFiConfig struct {
	Type      string `yaml:"type"`      // "iw" or "demo"
	Interface string `yaml:"interface"` // e.g. wlan0
}

type CaptureConfig struct {
	Dir        string `yaml:"dir"`
	BaseYear   int    `yaml:"base_year"`   // earliest plausible GPS year
	YearWindow int    `yaml:"year_window"` // accepted years past base
}

type UIConfig struct {
	Mode string `yaml:"mode"` // "console" or "headless"
}

type ServerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		GPS: GPSConfig{
			Type:     "nmea",
			PortPath: "/dev/ttyUSB0",
			Module:   "generic",
		},
		WiFi: WiFiConfig{
			Type:      "iw",
			Interface: "wlan0",
		},
		Capture: CaptureConfig{
			Dir:        "/BruceWardriving",
			BaseYear:   2024,
			YearWindow: 5,
		},
		UI: UIConfig{
			Mode: "console",
		},
		Server: ServerConfig{
			Enabled:    false,
			ListenAddr: ":8090",
		},
	}
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. Falls back to defaults if YAML not found.
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] no config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		cfg = Default()
	} else {
		log.Printf("[config] loaded from %s", path)
	}

	// Load .env file from the same directory as the config, or from CWD
	envPaths := []string{
		filepath.Join(filepath.Dir(path), ".env"),
		".env",
	}
	for _, ep := range envPaths {
		loadEnvFile(ep)
	}

	cfg.applyEnvOverrides()
	return cfg
}

// loadEnvFile reads a simple KEY=VALUE .env file and sets os env vars.
func loadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	log.Printf("[config] loading .env from %s", path)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		// Strip surrounding quotes
		val = strings.Trim(val, `"'`)
		// Only set if not already set in real env (real env takes precedence)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// applyEnvOverrides reads environment variables and overrides config
// values. Supported: GPS_TYPE, GPS_PORT, GPS_BAUD, GPS_MODULE,
// WIFI_TYPE, WIFI_IFACE, CAPTURE_DIR, UI_MODE, LISTEN_ADDR
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GPS_TYPE"); v != "" {
		c.GPS.Type = v
	}
	if v := os.Getenv("GPS_PORT"); v != "" {
		c.GPS.PortPath = v
	}
	if v := os.Getenv("GPS_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GPS.BaudRate = n
		}
	}
	if v := os.Getenv("GPS_MODULE"); v != "" {
		c.GPS.Module = v
	}
	if v := os.Getenv("WIFI_TYPE"); v != "" {
		c.WiFi.Type = v
	}
	if v := os.Getenv("WIFI_IFACE"); v != "" {
		c.WiFi.Interface = v
	}
	if v := os.Getenv("CAPTURE_DIR"); v != "" {
		c.Capture.Dir = v
	}
	if v := os.Getenv("UI_MODE"); v != "" {
		c.UI.Mode = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Enabled = true
		c.Server.ListenAddr = v
	}
}
