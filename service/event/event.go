// Package event fans out process transition events to in-process observers
// such as the audit log. Publication is best-effort: a slow or absent
// observer never blocks an activation.
package event

import (
	"time"

	"github.com/talentops/onboard/model"
)

// Topics published by the activation engine.
const (
	TopicStepEntered      = "step.entered"
	TopicStepCompleted    = "step.completed"
	TopicStepFailed       = "step.failed"
	TopicProcessSuspended = "process.suspended"
	TopicProcessCompleted = "process.completed"
	TopicProcessCancelled = "process.cancelled"
)

// Event describes one observed transition of a process.
type Event struct {
	Topic     string       `json:"topic"`
	ProcessID string       `json:"processId"`
	Step      string       `json:"step,omitempty"`
	Status    model.Status `json:"status,omitempty"`
	Actor     string       `json:"actor,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
