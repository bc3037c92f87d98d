package channel

import "testing"

// TestQueueControlSourceFIFO tests ordering and non-blocking drain
func TestQueueControlSourceFIFO(t *testing.T) {
	q := NewQueueControlSource()

	if _, ok := q.PollNext(); ok {
		t.Error("empty queue returned a command")
	}

	q.Push(Command{PointID: 1, Value: IntValue(10)})
	q.Push(Command{PointID: 2, Value: IntValue(20)})
	if q.Len() != 2 {
		t.Fatalf("queue length %d, expected 2", q.Len())
	}

	cmd, ok := q.PollNext()
	if !ok || cmd.PointID != 1 {
		t.Errorf("first pop %+v", cmd)
	}
	cmd, ok = q.PollNext()
	if !ok || cmd.PointID != 2 {
		t.Errorf("second pop %+v", cmd)
	}
	if _, ok := q.PollNext(); ok {
		t.Error("drained queue returned a command")
	}
}

// TestValueConversions tests the Value union helpers
func TestValueConversions(t *testing.T) {
	if BoolValue(true).AsFloat() != 1 || BoolValue(false).AsFloat() != 0 {
		t.Error("bool conversion")
	}
	if IntValue(-5).AsFloat() != -5 {
		t.Error("int conversion")
	}
	if FloatValue(2.5).AsFloat() != 2.5 {
		t.Error("float conversion")
	}

	if s := IntValue(42).String(); s != "42" {
		t.Errorf("int string %q", s)
	}
	if s := BoolValue(true).String(); s != "true" {
		t.Errorf("bool string %q", s)
	}
}
