package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"fieldbus-engine/pkg/channel"
	"fieldbus-engine/pkg/config"
	"fieldbus-engine/pkg/logger"
)

// MQTTSink publishes decoded point values to an MQTT broker. It is an
// external collaborator of the engine core: the channel runtime only
// sees the PointSink interface.
type MQTTSink struct {
	client paho.Client
	config *config.MQTTConfig
}

// pointMessage is the published payload for one point sample
type pointMessage struct {
	PointID   uint32      `json:"point_id"`
	Value     interface{} `json:"value"`
	Timestamp int64       `json:"timestamp_ms"`
}

// NewMQTTSink creates an MQTT sink for the given broker configuration
func NewMQTTSink(cfg *config.MQTTConfig) *MQTTSink {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(client paho.Client) {
		logger.LogInfo("mqtt sink connected to %s:%d", cfg.Broker, cfg.Port)
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		logger.LogError("mqtt sink disconnected: %v", err)
	})

	return &MQTTSink{
		client: paho.NewClient(opts),
		config: cfg,
	}
}

// Connect connects the sink to the broker, retrying until the context
// is cancelled.
func (s *MQTTSink) Connect(ctx context.Context) error {
	retryDelay := time.Duration(s.config.RetryDelay) * time.Millisecond
	if retryDelay == 0 {
		retryDelay = 5 * time.Second
	}

	attempt := 1
	for {
		logger.LogDebug("mqtt sink connecting (attempt %d)", attempt)

		if token := s.client.Connect(); token.Wait() && token.Error() != nil {
			logger.LogWarn("mqtt sink connection failed (attempt %d): %v", attempt, token.Error())
			select {
			case <-ctx.Done():
				return fmt.Errorf("mqtt sink connection cancelled: %w", ctx.Err())
			case <-time.After(retryDelay):
				attempt++
				continue
			}
		}
		return nil
	}
}

// Disconnect closes the broker connection
func (s *MQTTSink) Disconnect() {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// Write implements channel.PointSink by publishing one JSON sample per
// point to <topic_prefix>/points/<id>.
func (s *MQTTSink) Write(pointID uint32, value channel.Value, timestampMS int64) error {
	if !s.client.IsConnected() {
		return fmt.Errorf("mqtt sink not connected")
	}

	msg := pointMessage{
		PointID:   pointID,
		Timestamp: timestampMS,
	}
	switch value.Kind {
	case channel.KindBool:
		msg.Value = value.Bool
	case channel.KindInt:
		msg.Value = value.Int
	case channel.KindFloat:
		msg.Value = value.Float
	case channel.KindBytes:
		msg.Value = fmt.Sprintf("%02X", value.Bytes)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error encoding point %d: %w", pointID, err)
	}

	topic := fmt.Sprintf("%s/points/%d", s.config.TopicPrefix, pointID)
	if token := s.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("error publishing point %d: %w", pointID, token.Error())
	}
	return nil
}
