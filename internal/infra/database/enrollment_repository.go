package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type EnrollmentRepository struct {
	DB *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *entity.CourseEnrollment) error {
	query := `INSERT INTO course_enrollments (id, student_id, course_name, status, edition, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query, e.ID, e.StudentID, e.CourseName, e.Status, nullString(e.Edition), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao criar matrícula: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM course_enrollments WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("erro ao remover matrícula: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("matrícula não encontrada")
	}
	return nil
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*entity.CourseEnrollment, error) {
	query := `SELECT id, student_id, course_name, status, edition, created_at FROM course_enrollments WHERE student_id = $1 ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar matrículas: %w", err)
	}
	defer rows.Close()

	list := []*entity.CourseEnrollment{}
	for rows.Next() {
		var e entity.CourseEnrollment
		var edition sql.NullString
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseName, &e.Status, &edition, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear matrícula: %w", err)
		}
		e.Edition = edition.String
		list = append(list, &e)
	}
	return list, rows.Err()
}
