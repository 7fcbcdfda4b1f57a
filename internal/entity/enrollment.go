package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

// CourseEnrollment representa uma matrícula em curso vinculada ao aluno
type CourseEnrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseName string    `json:"course_name"`
	Status     string    `json:"status"`
	Edition    string    `json:"edition,omitempty"` // Ex: "Turma 2025.1"
	CreatedAt  time.Time `json:"created_at"`
}

func NewCourseEnrollment(studentID, courseName, status, edition string) (*CourseEnrollment, error) {
	if studentID == "" {
		return nil, errors.New("student_id é obrigatório")
	}
	if courseName == "" {
		return nil, errors.New("course_name é obrigatório")
	}
	if status == "" {
		status = EnrollmentActive
	}
	if status != EnrollmentActive && status != EnrollmentCompleted && status != EnrollmentCancelled {
		return nil, errors.New("status deve ser active, completed ou cancelled")
	}

	return &CourseEnrollment{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		CourseName: courseName,
		Status:     status,
		Edition:    edition,
		CreatedAt:  time.Now(),
	}, nil
}
