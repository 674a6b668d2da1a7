package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level server configuration loaded from file/env.
type Config struct {
	// StreamName is the name of the anchoring record stream.
	StreamName string `json:"streamName"`
	// SubscribeBufLen is the buffered capacity per SSE subscriber.
	SubscribeBufLen int `json:"subscribeBufLen"`
	// KafkaBrokers enables the record relay when non-empty.
	KafkaBrokers []string `json:"kafkaBrokers"`
	// KafkaTopic is the relay's destination topic.
	KafkaTopic string `json:"kafkaTopic"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		StreamName:      "anchors",
		SubscribeBufLen: 1024,
		KafkaTopic:      "moor.anchors",
	}
}

// Load reads configuration from a JSON file. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".json", "":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported extension %q (use JSON)", filepath.Ext(path))
	}
	if cfg.StreamName == "" {
		cfg.StreamName = Default().StreamName
	}
	if cfg.SubscribeBufLen <= 0 {
		cfg.SubscribeBufLen = Default().SubscribeBufLen
	}
	return cfg, nil
}
