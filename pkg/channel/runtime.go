package channel

import (
	"context"
	"time"

	"fieldbus-engine/pkg/client"
	"fieldbus-engine/pkg/config"
	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/logger"
	"fieldbus-engine/pkg/pdu"
	"fieldbus-engine/pkg/reconnect"
	"fieldbus-engine/pkg/transport"
)

// Runtime drives one channel: it owns the transport, the protocol
// client, the reconnect engine and the point table, runs the
// poll/control loop and forwards decoded values to the sink.
//
// One goroutine runs the loop; requests within the channel are strictly
// sequential. Channels share no mutable state with each other.
type Runtime struct {
	cfg     config.ChannelConfig
	tr      transport.Transport
	client  *client.Client
	engine  *reconnect.Engine
	sink    PointSink
	control ControlSource

	groups []pointGroup
	points map[uint32]config.Point

	stats       statsTracker
	lastSummary time.Time
}

// summaryInterval is how often the channel logs its health counters
const summaryInterval = 30 * time.Second

// New creates a channel runtime from a validated configuration.
// The control source may be nil for read-only channels.
func New(cfg config.ChannelConfig, tr transport.Transport, sink PointSink, control ControlSource) (*Runtime, error) {
	mode := client.ModeTCP
	if cfg.Mode == "rtu" {
		mode = client.ModeRTU
	}

	points := make(map[uint32]config.Point, len(cfg.Points))
	for _, p := range cfg.Points {
		points[p.ID] = p
	}

	return &Runtime{
		cfg: cfg,
		tr:  tr,
		client: client.New(tr, client.Config{
			Mode:    mode,
			UnitID:  cfg.UnitID,
			Timeout: cfg.RequestTimeoutDuration(),
		}),
		engine:  reconnect.NewEngine(cfg.Reconnect.Policy()),
		sink:    sink,
		control: control,
		groups:  buildGroups(cfg.Points),
		points:  points,
	}, nil
}

// Run executes the poll/control loop until the context is cancelled or
// the reconnect budget is exhausted. Exhaustion is the one fatal
// outcome: the channel stops attempting I/O until externally Reset.
func (r *Runtime) Run(ctx context.Context) error {
	logger.LogInfo("channel %s starting: unit %d, %d points in %d groups, poll every %v",
		r.cfg.ID, r.cfg.UnitID, len(r.cfg.Points), len(r.groups), r.cfg.PollIntervalDuration())

	if err := r.reconnect(ctx); err != nil {
		return r.finish(err)
	}

	ticker := time.NewTicker(r.cfg.PollIntervalDuration())
	defer ticker.Stop()
	r.lastSummary = time.Now()

	// First cycle runs as soon as the link is up; the ticker paces the
	// rest. Waiting out a full interval would delay first data.
	if err := r.runCycle(ctx); err != nil {
		return r.finish(err)
	}

	for {
		select {
		case <-ctx.Done():
			return r.finish(nil)
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				return r.finish(err)
			}
			r.maybeLogSummary()
		}
	}
}

// maybeLogSummary logs the channel counters at a fixed interval so a
// healthy channel stays quiet between summaries.
func (r *Runtime) maybeLogSummary() {
	if time.Since(r.lastSummary) < summaryInterval {
		return
	}
	r.lastSummary = time.Now()

	s := r.stats.snapshot()
	logger.LogInfo("channel %s summary: %d requests, %d failures, %d reconnects, %d writes, avg latency %.1fms",
		r.cfg.ID, s.Requests, s.Failures, s.Reconnects, s.WritesDone, s.AvgLatencyMS)
}

// finish disconnects and reports why the loop ended
func (r *Runtime) finish(err error) error {
	_ = r.tr.Disconnect()
	if err != nil && !isContextError(err) {
		logger.LogError("channel %s stopped: %v", r.cfg.ID, err)
		return err
	}
	logger.LogInfo("channel %s stopped", r.cfg.ID)
	return nil
}

// runCycle performs one full poll cycle. Pending control writes are
// drained before the first read group and again after each one, so
// writes never starve behind a long point table.
func (r *Runtime) runCycle(ctx context.Context) error {
	if err := r.drainControls(ctx); err != nil {
		return err
	}

	for _, group := range r.groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.withRetries(ctx, func(c context.Context) error {
			return r.executeGroup(c, group)
		}); err != nil {
			if fatalErr := r.escalate(ctx, err); fatalErr != nil {
				return fatalErr
			}
			// Link recovered or failure was local to this group;
			// the rest of the cycle waits for the next tick.
			return nil
		}

		if err := r.drainControls(ctx); err != nil {
			return err
		}
	}
	return nil
}

// executeGroup reads one point group, decodes every point in it and
// forwards the values to the sink.
func (r *Runtime) executeGroup(ctx context.Context, group pointGroup) error {
	var bits []bool
	var regs []uint16
	var err error

	switch group.function {
	case pdu.FuncReadCoils:
		bits, err = r.client.ReadCoils(ctx, group.start, group.count)
	case pdu.FuncReadDiscreteInputs:
		bits, err = r.client.ReadDiscreteInputs(ctx, group.start, group.count)
	case pdu.FuncReadInputRegisters:
		regs, err = r.client.ReadInputRegisters(ctx, group.start, group.count)
	default:
		regs, err = r.client.ReadHoldingRegisters(ctx, group.start, group.count)
	}
	if err != nil {
		return err
	}

	timestamp := time.Now().UnixMilli()
	for _, p := range group.points {
		var value Value
		var decodeErr error
		if p.Type.IsBit() {
			value, decodeErr = extractBit(p, group, bits)
		} else {
			value, decodeErr = extractRegisters(p, group, regs)
		}
		if decodeErr != nil {
			logger.LogWarn("channel %s: %v", r.cfg.ID, decodeErr)
			continue
		}

		if sinkErr := r.sink.Write(p.ID, value, timestamp); sinkErr != nil {
			// Sink trouble must not stall polling; the sink owns its
			// own delivery guarantees.
			logger.LogWarn("channel %s: sink rejected point %d: %v", r.cfg.ID, p.ID, sinkErr)
		}
	}
	return nil
}

// drainControls executes all pending write commands sequentially
func (r *Runtime) drainControls(ctx context.Context) error {
	if r.control == nil {
		return nil
	}

	for {
		cmd, ok := r.control.PollNext()
		if !ok {
			return nil
		}

		if err := r.withRetries(ctx, func(c context.Context) error {
			return r.executeWrite(c, cmd)
		}); err != nil {
			logger.LogError("channel %s: control write to point %d failed: %v",
				r.cfg.ID, cmd.PointID, err)
			if fatalErr := r.escalate(ctx, err); fatalErr != nil {
				return fatalErr
			}
			continue
		}
		r.stats.recordWrite()
	}
}

// executeWrite performs one control write exchange
func (r *Runtime) executeWrite(ctx context.Context, cmd Command) error {
	p, ok := r.points[cmd.PointID]
	if !ok {
		return errors.Newf("channel.write", errors.KindProtocol,
			"unknown point id %d", cmd.PointID)
	}
	if !p.Access.CanWrite() {
		return errors.Newf("channel.write", errors.KindProtocol,
			"point %d is not writable", cmd.PointID)
	}

	if p.Type == config.TypeCoil {
		on := cmd.Value.AsFloat() != 0
		return r.client.WriteSingleCoil(ctx, p.Address, on)
	}

	regs, err := registersForWrite(p, cmd.Value)
	if err != nil {
		return err
	}
	if len(regs) == 1 {
		return r.client.WriteSingleRegister(ctx, p.Address, regs[0])
	}
	return r.client.WriteMultipleRegisters(ctx, p.Address, regs)
}

// withRetries runs one exchange up to MaxRetries+1 times. Timeouts,
// protocol errors and device exceptions are retried; a lost connection
// aborts immediately so the reconnect engine can take over.
func (r *Runtime) withRetries(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.LogDebug("channel %s: retry %d/%d after %v",
				r.cfg.ID, attempt, r.cfg.MaxRetries, err)
		}

		start := time.Now()
		err = op(ctx)
		r.stats.recordRequest(time.Since(start), err)

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.IsConnectionLost(err) {
			return err
		}
	}
	return err
}

// escalate decides what a cycle-aborting failure means: transport-level
// failures hand control to the reconnect engine; anything else is local
// to the request that caused it. A non-nil return is fatal for the
// channel.
func (r *Runtime) escalate(ctx context.Context, err error) error {
	if isContextError(err) {
		return err
	}
	if errors.IsConnectionLost(err) || errors.IsTimeout(err) {
		logger.LogWarn("channel %s: link failure, entering reconnect: %v", r.cfg.ID, err)
		return r.reconnect(ctx)
	}
	logger.LogWarn("channel %s: request failed after %d retries: %v",
		r.cfg.ID, r.cfg.MaxRetries, err)
	return nil
}

// reconnect drives the reconnect engine until the link is back, the
// context is cancelled, or the attempt budget is exhausted. Polling is
// suspended for the duration.
func (r *Runtime) reconnect(ctx context.Context) error {
	r.engine.MarkDisconnected()
	_ = r.tr.Disconnect()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.engine.Execute(ctx, r.tr.Connect)
		r.stats.recordReconnect()
		if err == nil {
			return nil
		}
		if kind, ok := errors.KindOf(err); ok && kind == errors.KindMaxReconnectAttempts {
			return err
		}
	}
}

// Stats returns a snapshot of the channel's health counters
func (r *Runtime) Stats() Stats {
	return r.stats.snapshot()
}

// State returns the channel's connection state
func (r *Runtime) State() reconnect.ConnectionState {
	return r.engine.State()
}

// TransportStats returns a snapshot of the underlying transport counters
func (r *Runtime) TransportStats() transport.Stats {
	return r.tr.Stats()
}

// Reset clears a Failed channel so a subsequent Run may reconnect again
func (r *Runtime) Reset() {
	r.engine.Reset()
}

func isContextError(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded
}
