package audit

import "time"

// Event is emitted from journey controllers to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Username    string    `json:"username"`
	Caseload    string    `json:"caseload,omitempty"`
	JourneyKind string    `json:"journeyKind"`
	JourneyID   string    `json:"journeyId"`
	Action      string    `json:"action"`
	Subject     string    `json:"subject,omitempty"`
}

// Actions recorded against journeys.
const (
	ActionStarted   = "STARTED"
	ActionCompleted = "COMPLETED"
	ActionCancelled = "CANCELLED"
)
