package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Append(ctx context.Context, log *entity.ActivityLog) error {
	var details []byte
	if log.Details != nil {
		b, err := json.Marshal(log.Details)
		if err != nil {
			return fmt.Errorf("erro ao converter detalhes do histórico: %w", err)
		}
		details = b
	}

	query := `
		INSERT INTO activity_logs (id, student_id, action, description, details, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		log.ID, log.StudentID, log.Action, log.Description, details, nullString(log.ActorID), log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar histórico: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByStudent(ctx context.Context, studentID string) ([]*entity.ActivityLog, error) {
	query := `
		SELECT id, student_id, action, description, details, actor_id, created_at
		FROM activity_logs
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	logs := []*entity.ActivityLog{}
	for rows.Next() {
		var (
			l       entity.ActivityLog
			details []byte
			actorID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.StudentID, &l.Action, &l.Description, &details, &actorID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear histórico: %w", err)
		}
		l.ActorID = actorID.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &l.Details); err != nil {
				return nil, fmt.Errorf("detalhes inválidos no histórico %s: %w", l.ID, err)
			}
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
