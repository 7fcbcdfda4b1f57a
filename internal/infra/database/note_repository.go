package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *entity.Note) error {
	var name, url *string
	var size *int64
	if n.Attachment != nil {
		name, url, size = &n.Attachment.Name, &n.Attachment.URL, &n.Attachment.Size
	}

	query := `
		INSERT INTO student_notes (id, student_id, author_id, content, attachment_name, attachment_url, attachment_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query, n.ID, n.StudentID, nullString(n.AuthorID), n.Content, name, url, size, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao salvar nota: %w", err)
	}
	return nil
}

func (r *NoteRepository) ListByStudent(ctx context.Context, studentID string) ([]*entity.Note, error) {
	query := `
		SELECT id, student_id, author_id, content, attachment_name, attachment_url, attachment_size, created_at
		FROM student_notes
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar notas: %w", err)
	}
	defer rows.Close()

	notes := []*entity.Note{}
	for rows.Next() {
		var (
			n         entity.Note
			authorID  sql.NullString
			name, url sql.NullString
			size      sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.StudentID, &authorID, &n.Content, &name, &url, &size, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear nota: %w", err)
		}
		n.AuthorID = authorID.String
		if url.Valid {
			n.Attachment = &entity.Attachment{Name: name.String, URL: url.String, Size: size.Int64}
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
