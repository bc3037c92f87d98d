package main

import (
	"fmt"
	"os"

	"fieldbus-engine/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_config <config-file>")
		os.Exit(1)
	}

	configPath := os.Args[1]
	fmt.Printf("Loading config from: %s\n", configPath)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Config loaded successfully!")
	if cfg.MQTT != nil {
		fmt.Printf("   MQTT Broker: %s:%d\n", cfg.MQTT.Broker, cfg.MQTT.Port)
	} else {
		fmt.Println("   MQTT sink: not configured (log sink)")
	}

	fmt.Printf("   Channels: %d\n", len(cfg.Channels))
	for _, ch := range cfg.Channels {
		fmt.Printf("     - %s:\n", ch.ID)
		fmt.Printf("         Mode: %s\n", ch.Mode)
		if ch.Serial != nil {
			fmt.Printf("         Device: %s @ %d baud\n", ch.Serial.Device, ch.Serial.BaudRate)
		} else {
			fmt.Printf("         Address: %s\n", ch.Address)
		}
		fmt.Printf("         Unit ID: %d\n", ch.UnitID)
		fmt.Printf("         Poll Interval: %d ms\n", ch.PollInterval)
		fmt.Printf("         Request Timeout: %d ms\n", ch.RequestTimeout)
		fmt.Printf("         Points: %d\n", len(ch.Points))

		writable := 0
		for _, p := range ch.Points {
			if p.Access.CanWrite() {
				writable++
			}
		}
		if writable > 0 {
			fmt.Printf("         Writable points: %d\n", writable)
		}
	}

	fmt.Println("\nConfiguration is valid!")
}
