// Package midi carries the note events the engine consumes.
package midi

import "fmt"

// EventType discriminates note events.
type EventType uint8

const (
	// EventTypeNoteOff releases one note
	EventTypeNoteOff EventType = iota
	// EventTypeNoteOn starts one note
	EventTypeNoteOn
	// EventTypeAllNotesOff releases every sounding note
	EventTypeAllNotesOff
)

// Event is one discrete note message.
type Event interface {
	Type() EventType
	String() string
}

// NoteOnEvent starts a note. A velocity of 0 is treated as note off by
// the dispatcher, per MIDI convention.
type NoteOnEvent struct {
	NoteNumber uint8
	Velocity   uint8
}

// Type returns EventTypeNoteOn.
func (e NoteOnEvent) Type() EventType { return EventTypeNoteOn }

func (e NoteOnEvent) String() string {
	return fmt.Sprintf("NoteOn{note:%d, vel:%d}", e.NoteNumber, e.Velocity)
}

// NoteOffEvent releases a note.
type NoteOffEvent struct {
	NoteNumber uint8
}

// Type returns EventTypeNoteOff.
func (e NoteOffEvent) Type() EventType { return EventTypeNoteOff }

func (e NoteOffEvent) String() string {
	return fmt.Sprintf("NoteOff{note:%d}", e.NoteNumber)
}

// AllNotesOffEvent releases everything (also used for all-sound-off).
type AllNotesOffEvent struct{}

// Type returns EventTypeAllNotesOff.
func (e AllNotesOffEvent) Type() EventType { return EventTypeAllNotesOff }

func (e AllNotesOffEvent) String() string { return "AllNotesOff{}" }
