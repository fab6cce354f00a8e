package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const ActionRevertDelivery = "revert_delivery"

// AuditEvent records one state change made through the console
type AuditEvent struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Action         string    `json:"action"`
	DistributionID int       `json:"distributionId"`
	Reason         string    `json:"reason"`
	Actor          string    `json:"actor"`
	PreviousStatus string    `json:"previousStatus"`
}

// AuditLog is an in-memory, append-only event list. It lives as long as
// the process.
type AuditLog struct {
	mu     sync.RWMutex
	events []AuditEvent
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record assigns an id to e, appends it and returns the stored event
func (l *AuditLog) Record(e AuditEvent) AuditEvent {
	e.ID = uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return e
}

func (l *AuditLog) Events() []AuditEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]AuditEvent, len(l.events))
	copy(out, l.events)
	return out
}
