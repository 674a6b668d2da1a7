package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays MOOR_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MOOR_STREAM_NAME"); v != "" {
		cfg.StreamName = v
	}
	if v := os.Getenv("MOOR_SUBSCRIBE_BUF_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SubscribeBufLen = n
		}
	}
	if v := os.Getenv("MOOR_KAFKA_BROKERS"); v != "" {
		parts := strings.Split(v, ",")
		cfg.KafkaBrokers = nil
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, p)
			}
		}
	}
	if v := os.Getenv("MOOR_KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
}
