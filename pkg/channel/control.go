package channel

import "sync"

// Command is one pending control write for a point
type Command struct {
	PointID uint32
	Value   Value
}

// ControlSource supplies pending control writes to a channel runtime.
// PollNext must never block; the runtime drains it between exchanges.
type ControlSource interface {
	PollNext() (Command, bool)
}

// QueueControlSource is a mutex-guarded FIFO control source that
// external layers (API handlers, rule engines) push commands into.
type QueueControlSource struct {
	mu       sync.Mutex
	commands []Command
}

// NewQueueControlSource creates an empty control queue
func NewQueueControlSource() *QueueControlSource {
	return &QueueControlSource{}
}

// Push appends a command to the queue
func (q *QueueControlSource) Push(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commands = append(q.commands, cmd)
}

// PollNext pops the oldest pending command without blocking
func (q *QueueControlSource) PollNext() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return Command{}, false
	}
	cmd := q.commands[0]
	q.commands = q.commands[1:]
	return cmd, true
}

// Len returns the number of pending commands
func (q *QueueControlSource) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
