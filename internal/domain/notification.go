package domain

import (
	"errors"
	"time"
)

var ErrTaskNotFound = errors.New("notification task not found")

type NotificationKind string

const (
	NotificationProduct NotificationKind = "PRODUCT"
	NotificationOther   NotificationKind = "OTHER"
)

// Notification tracks one asynchronous delivery attempt. It is keyed by the
// run ID of the task that created it, so a retried run updates the same row
// instead of creating a second one. Records are created with Sent=false and
// flipped to true after delivery; they are never deleted by the task itself.
type Notification struct {
	RunID    string // task run UUID
	TargetID int64
	Kind     NotificationKind
	Sent     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// Task is one queued notification run. RunID doubles as the notification
// record key; uniqueness rests on UUID collision probability being negligible.
type Task struct {
	RunID    string
	TargetID int64
	Kind     NotificationKind

	Status      TaskStatus
	RetryCount  int
	MaxRetries  int
	ScheduledAt time.Time

	ClaimedAt   *time.Time
	ClaimedBy   *string // worker ID
	HeartbeatAt *time.Time
	CompletedAt *time.Time
	LastError   *string

	CreatedAt time.Time
}
