package engine

import "time"

// EventType represents different lifecycle phases of an evaluation run
type EventType string

const (
	EventEvaluateStart EventType = "evaluate_start"
	EventCompileStart  EventType = "compile_start"
	EventCompileEnd    EventType = "compile_end"
	EventIndexBuilt    EventType = "index_built"
	EventEvaluateEnd   EventType = "evaluate_end"
)

// Event represents a lifecycle event in an evaluation run
type Event struct {
	Type      EventType   // Type of event
	RunID     string      // Evaluation run ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (formula count, index size, result size)
}

// Observer interface for event subscribers
// Observers receive events at major evaluation phases
type Observer interface {
	OnEvent(event Event)
}
