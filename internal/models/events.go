package models

import "time"

// Application lifecycle event types published to Kafka.
const (
	EventApplicationSubmitted = "application.submitted"
)

// ApplicationEvent is the payload published on the application events
// topic and sunk into ClickHouse by the analytics worker.
type ApplicationEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	ApplicationID string    `json:"application_id"`
	UserID        string    `json:"user_id"`
	LoanAmount    float64   `json:"loan_amount"`
	LoanPurpose   string    `json:"loan_purpose"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
