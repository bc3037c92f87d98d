package sink

import (
	"fieldbus-engine/pkg/channel"
	"fieldbus-engine/pkg/logger"
)

// LogSink writes every point sample to the log. Useful for
// commissioning a channel before any downstream consumer exists.
type LogSink struct{}

// NewLogSink creates a logging sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Write implements channel.PointSink
func (s *LogSink) Write(pointID uint32, value channel.Value, timestampMS int64) error {
	logger.LogInfo("point %d = %s (ts %d)", pointID, value, timestampMS)
	return nil
}
