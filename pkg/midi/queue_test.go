package midi

import "testing"

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	q.Push(NoteOnEvent{NoteNumber: 60, Velocity: 100})
	q.Push(NoteOffEvent{NoteNumber: 60})
	q.Push(AllNotesOffEvent{})

	if q.Len() != 3 {
		t.Errorf("Len = %d, want 3", q.Len())
	}

	events := q.Drain(nil)
	if len(events) != 3 {
		t.Fatalf("drained %d events, want 3", len(events))
	}

	on, ok := events[0].(NoteOnEvent)
	if !ok || on.NoteNumber != 60 || on.Velocity != 100 {
		t.Errorf("first event = %v, want NoteOn 60/100", events[0])
	}
	if events[1].Type() != EventTypeNoteOff {
		t.Errorf("second event type = %v, want NoteOff", events[1].Type())
	}
	if events[2].Type() != EventTypeAllNotesOff {
		t.Errorf("third event type = %v, want AllNotesOff", events[2].Type())
	}

	if q.Len() != 0 {
		t.Errorf("queue should be empty after Drain, Len = %d", q.Len())
	}
	if got := q.Drain(events); len(got) != 0 {
		t.Errorf("draining an empty queue yielded %d events", len(got))
	}
}

func TestQueueDrainReusesDst(t *testing.T) {
	q := NewQueue()
	dst := make([]Event, 0, 8)

	q.Push(NoteOnEvent{NoteNumber: 64, Velocity: 80})
	got := q.Drain(dst)
	if len(got) != 1 {
		t.Fatalf("drained %d events, want 1", len(got))
	}
	if cap(got) != cap(dst) {
		t.Error("Drain should reuse the destination's capacity")
	}
}

func TestQueueOrdering(t *testing.T) {
	q := NewQueue()
	for i := uint8(0); i < 10; i++ {
		q.Push(NoteOnEvent{NoteNumber: 60 + i, Velocity: 100})
	}

	events := q.Drain(nil)
	for i, ev := range events {
		on := ev.(NoteOnEvent)
		if on.NoteNumber != 60+uint8(i) {
			t.Fatalf("event %d carries note %d, want %d", i, on.NoteNumber, 60+i)
		}
	}
}
