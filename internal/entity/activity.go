package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de ação registrados no histórico do aluno
const (
	ActionStudentCreated    = "student_created"
	ActionStudentUpdated    = "student_updated"
	ActionStudentMerged     = "student_merged"
	ActionStageChanged      = "stage_changed"
	ActionStudentTrashed    = "student_trashed"
	ActionStudentRestored   = "student_restored"
	ActionEnrollmentAdded   = "enrollment_added"
	ActionEnrollmentRemoved = "enrollment_removed"
	ActionNoteAdded         = "note_added"
)

// ActivityLog é append-only: serve só para renderizar o histórico.
type ActivityLog struct {
	ID          string         `json:"id"`
	StudentID   string         `json:"student_id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	ActorID     string         `json:"actor_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewActivityLog(studentID, action, description, actorID string, details map[string]any) *ActivityLog {
	return &ActivityLog{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		Action:      action,
		Description: description,
		Details:     details,
		ActorID:     actorID,
		CreatedAt:   time.Now(),
	}
}
