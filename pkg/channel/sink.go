package channel

// PointSink receives decoded point values from a channel runtime.
// Implementations live outside the engine core (MQTT publisher, store
// writer, test collector); the runtime only ever calls Write.
type PointSink interface {
	Write(pointID uint32, value Value, timestampMS int64) error
}

// SinkFunc adapts a function to the PointSink interface
type SinkFunc func(pointID uint32, value Value, timestampMS int64) error

// Write implements PointSink
func (f SinkFunc) Write(pointID uint32, value Value, timestampMS int64) error {
	return f(pointID, value, timestampMS)
}
