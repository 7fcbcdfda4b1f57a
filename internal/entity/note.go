package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attachment guarda só os metadados; o arquivo fica no storage externo.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type Note struct {
	ID         string      `json:"id"`
	StudentID  string      `json:"student_id"`
	AuthorID   string      `json:"author_id"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func NewNote(studentID, authorID, content string, attachment *Attachment) (*Note, error) {
	if studentID == "" {
		return nil, errors.New("student_id é obrigatório")
	}
	if content == "" && attachment == nil {
		return nil, errors.New("nota precisa de conteúdo ou anexo")
	}
	if attachment != nil && attachment.URL == "" {
		return nil, errors.New("anexo sem url")
	}

	return &Note{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		AuthorID:   authorID,
		Content:    content,
		Attachment: attachment,
		CreatedAt:  time.Now(),
	}, nil
}
