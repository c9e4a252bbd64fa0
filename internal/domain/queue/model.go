package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

// Status is the lifecycle state of a queue entry.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusWithDoctor Status = "with_doctor"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusWaiting:    true,
	StatusWithDoctor: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

func (s Status) Valid() bool { return validStatuses[s] }

// statusTransitions is the allowed lifecycle graph. Completed and
// cancelled are terminal.
var statusTransitions = map[Status][]Status{
	StatusWaiting:    {StatusWithDoctor, StatusCancelled},
	StatusWithDoctor: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is
// allowed. Same-state updates are always allowed (no-op).
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Priority orders waiting patients. Emergency beats urgent beats normal.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

var validPriorities = map[Priority]bool{
	PriorityNormal:    true,
	PriorityUrgent:    true,
	PriorityEmergency: true,
}

func (p Priority) Valid() bool { return validPriorities[p] }

// Rank returns the numeric ordering weight. Higher goes first.
func (p Priority) Rank() int {
	switch p {
	case PriorityEmergency:
		return 2
	case PriorityUrgent:
		return 1
	default:
		return 0
	}
}

// Badge is the display label shown next to a queue entry.
func (p Priority) Badge() string {
	switch p {
	case PriorityEmergency:
		return "EMERGENCY"
	case PriorityUrgent:
		return "URGENT"
	default:
		return "NORMAL"
	}
}

// Entry maps to the queue_entry table. QueueNumber is a label assigned at
// admission, not a live position: 0 is reserved for emergency head-of-line,
// everything else is a monotonically increasing admission tag. Live
// position is recomputed per read (see EnhancedEntry).
type Entry struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	QueueNumber int              `db:"queue_number" json:"queue_number"`
	PatientID   uuid.UUID        `db:"patient_id" json:"patient_id"`
	Status      Status           `db:"status" json:"status"`
	Priority    Priority         `db:"priority" json:"priority"`
	Notes       *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
	Patient     *patient.Patient `db:"-" json:"patient,omitempty"`
}

// EnhancedEntry is a per-request projection of a waiting entry with its
// live position and wait estimates. Never persisted.
type EnhancedEntry struct {
	Entry
	Position          int    `json:"position"`
	EstimatedWaitTime string `json:"estimated_wait_time"`
	TimeInQueue       string `json:"time_in_queue"`
	PriorityBadge     string `json:"priority_badge"`
}

// Stats aggregates the current queue contents.
type Stats struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"by_status"`
	ByPriority map[Priority]int `json:"by_priority"`
	Waiting    int              `json:"waiting"`
	Completed  int              `json:"completed"`
	Efficiency float64          `json:"efficiency"`
}

// Analytics extends Stats with wait-time figures for the dashboard.
type Analytics struct {
	Stats
	AverageWaitMinutes float64 `json:"average_wait_minutes"`
	LongestWaitMinutes float64 `json:"longest_wait_minutes"`
	CompletedToday     int     `json:"completed_today"`
}

// CallResult is what Call Next returns: the entry moved to with_doctor
// plus the announcement text read out at the front desk.
type CallResult struct {
	Entry        *Entry `json:"entry"`
	Announcement string `json:"announcement"`
}

// FormatWait renders a duration the way the front desk displays it:
// "2h 5m" with an hour component, "45m" without.
func FormatWait(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Minutes())
	hours := total / 60
	minutes := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
