package models

import (
	"strings"
	"time"
)

// KeySeparator joins the enrollment triple into a storage key.
const KeySeparator = "::"

// Ledger limits.
const (
	MaxNota          = 10.0
	MaxManualEntries = 100
	MaxHistoryEvents = 50
)

// OrigemTipo classifies where a manual grade came from.
type OrigemTipo string

const (
	OrigemProva     OrigemTipo = "PROVA"
	OrigemAtividade OrigemTipo = "ATIVIDADE"
	OrigemAula      OrigemTipo = "AULA"
	OrigemOutro     OrigemTipo = "OUTRO"
)

// Valid reports whether t is a known origin type.
func (t OrigemTipo) Valid() bool {
	switch t {
	case OrigemProva, OrigemAtividade, OrigemAula, OrigemOutro:
		return true
	default:
		return false
	}
}

// OrigemRef tags a grade entry with its source.
type OrigemRef struct {
	Type  OrigemTipo `json:"type" validate:"required,oneof=PROVA ATIVIDADE AULA OUTRO"`
	ID    *string    `json:"id,omitempty"`
	Title *string    `json:"title,omitempty"`
}

// EnrollmentRef identifies one student's participation in one class of one course.
type EnrollmentRef struct {
	CourseID  string `json:"courseId" validate:"required"`
	ClassID   string `json:"classId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
}

// Key returns the composite storage key of the enrollment.
func (r EnrollmentRef) Key() string {
	return strings.Join([]string{r.CourseID, r.ClassID, r.StudentID}, KeySeparator)
}

// TurmaKey identifies the (course, class) pair used by the seed flags.
func TurmaKey(courseID, classID string) string {
	return courseID + KeySeparator + classID
}

// NotaRecord is both the computed grade returned to callers and the shape of
// records persisted in the main (override/tombstone) namespace.
type NotaRecord struct {
	Grade     *float64   `json:"grade"`
	UpdatedAt time.Time  `json:"updatedAt"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Reason    *string    `json:"reason"`
	Origin    *OrigemRef `json:"origin"`
}

// IsTombstone reports whether the stored record means "no system grade".
func (r NotaRecord) IsTombstone() bool {
	return r.Grade == nil && r.Reason == nil && r.Origin == nil
}

// IsLegacyManual reports whether the stored record is a pre-ledger manual grade.
func (r NotaRecord) IsLegacyManual() bool {
	return r.Grade != nil && (r.Reason != nil || r.Origin != nil)
}

// IsOverride reports whether the stored record replaces the system base grade.
func (r NotaRecord) IsOverride() bool {
	return r.Grade != nil && r.Reason == nil && r.Origin == nil
}

// ManualEntry is one user-added grade delta.
type ManualEntry struct {
	ID     string     `json:"id"`
	At     time.Time  `json:"at"`
	Grade  float64    `json:"grade"`
	Reason *string    `json:"reason,omitempty"`
	Origin *OrigemRef `json:"origin,omitempty"`
}

// ManualLedger holds manual entries ordered newest first: index 0 is the most
// recent insertion.
type ManualLedger []ManualEntry

// Push records entry as the most recent one, keeping at most MaxManualEntries.
func (l ManualLedger) Push(entry ManualEntry) ManualLedger {
	next := make(ManualLedger, 0, len(l)+1)
	next = append(next, entry)
	next = append(next, l...)
	if len(next) > MaxManualEntries {
		next = next[:MaxManualEntries]
	}
	return next
}

// PopLatest removes the most recent entry.
func (l ManualLedger) PopLatest() (ManualEntry, ManualLedger, bool) {
	if len(l) == 0 {
		return ManualEntry{}, l, false
	}
	rest := make(ManualLedger, len(l)-1)
	copy(rest, l[1:])
	return l[0], rest, true
}

// Latest returns the most recent entry without removing it.
func (l ManualLedger) Latest() (ManualEntry, bool) {
	if len(l) == 0 {
		return ManualEntry{}, false
	}
	return l[0], true
}

// Total sums every entry.
func (l ManualLedger) Total() float64 {
	var total float64
	for _, entry := range l {
		total += entry.Grade
	}
	return total
}

// HistoryAction is the kind of ledger event recorded in the history log.
type HistoryAction string

const (
	HistoryAdded   HistoryAction = "ADDED"
	HistoryRemoved HistoryAction = "REMOVED"
)

// HistoryEvent is an append-only audit record.
type HistoryEvent struct {
	ID     string        `json:"id"`
	Action HistoryAction `json:"action"`
	At     time.Time     `json:"at"`
	Grade  float64       `json:"grade"`
	Reason *string       `json:"reason,omitempty"`
	Origin *OrigemRef    `json:"origin,omitempty"`
}

// History is ordered newest first.
type History []HistoryEvent

// Append records event as the newest one, keeping at most MaxHistoryEvents.
func (h History) Append(event HistoryEvent) History {
	next := make(History, 0, len(h)+1)
	next = append(next, event)
	next = append(next, h...)
	if len(next) > MaxHistoryEvents {
		next = next[:MaxHistoryEvents]
	}
	return next
}
