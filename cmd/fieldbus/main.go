package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fieldbus-engine/pkg/channel"
	"fieldbus-engine/pkg/config"
	"fieldbus-engine/pkg/logger"
	"fieldbus-engine/pkg/sink"
	"fieldbus-engine/pkg/transport"
)

// Application wires the configured channels to their transports and the
// shared point sink, and supervises the per-channel poll loops.
type Application struct {
	config   *config.Config
	mqttSink *sink.MQTTSink
	channels []*channel.Runtime
	controls map[string]*channel.QueueControlSource
}

// NewApplication loads the configuration and builds every channel
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	logger.Init(&cfg.Logging)
	logger.LogInfo("logging initialized with level: %s", cfg.Logging.Level)

	app := &Application{
		config:   cfg,
		controls: make(map[string]*channel.QueueControlSource),
	}

	var pointSink channel.PointSink
	if cfg.MQTT != nil {
		app.mqttSink = sink.NewMQTTSink(cfg.MQTT)
		pointSink = app.mqttSink
	} else {
		logger.LogWarn("no mqtt sink configured, point values go to the log")
		pointSink = sink.NewLogSink()
	}

	for _, chCfg := range cfg.Channels {
		tr, err := buildTransport(chCfg)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", chCfg.ID, err)
		}

		control := channel.NewQueueControlSource()
		app.controls[chCfg.ID] = control

		rt, err := channel.New(chCfg, tr, pointSink, control)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", chCfg.ID, err)
		}
		app.channels = append(app.channels, rt)
	}

	return app, nil
}

// buildTransport creates the transport a channel's configuration asks for
func buildTransport(cfg config.ChannelConfig) (transport.Transport, error) {
	if cfg.Serial != nil {
		return transport.NewSerialTransport(*cfg.Serial), nil
	}
	return transport.NewTCPTransport(cfg.Address, 0), nil
}

// Run starts every channel and blocks until the context is cancelled
func (app *Application) Run(ctx context.Context) error {
	if app.mqttSink != nil {
		if err := app.mqttSink.Connect(ctx); err != nil {
			return fmt.Errorf("error connecting sink: %w", err)
		}
		defer app.mqttSink.Disconnect()
	}

	var wg sync.WaitGroup
	for _, rt := range app.channels {
		wg.Add(1)
		go func(rt *channel.Runtime) {
			defer wg.Done()
			if err := rt.Run(ctx); err != nil {
				logger.LogError("channel terminated: %v", err)
			}
		}(rt)
	}

	logger.LogInfo("fieldbus engine started with %d channels", len(app.channels))
	wg.Wait()
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	configPath := ""
	for i, arg := range os.Args[1:] {
		if arg == "--help" || arg == "-h" {
			fmt.Printf("Usage: %s [config_path]\n", os.Args[0])
			fmt.Printf("  config_path: Path to configuration file (default: config.yaml)\n")
			return
		} else if i == 0 {
			configPath = arg
		}
	}
	if configPath == "" {
		configPath = "config.yaml"
	}

	app, err := NewApplication(configPath)
	if err != nil {
		logger.LogError("application creation error: %v", err)
		os.Exit(1)
	}

	go func() {
		<-sigChan
		logger.LogInfo("stop signal received, shutting down...")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		logger.LogError("application error: %v", err)
		os.Exit(1)
	}
	logger.LogInfo("fieldbus engine stopped")
}
