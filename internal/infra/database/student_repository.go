package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const studentColumns = `id, name, email, phone, cpf, birth_date, city, state, zip_code, address,
	course, source, funnel_stage, deal_value, currency, expected_close_date, tags,
	is_client, deleted_at, created_at, updated_at`

type StudentRepository struct {
	DB *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*entity.Student, error) {
	var s entity.Student
	var phone, cpf, city, state, zip, address, course, src sql.NullString
	var birth, closeDate, deletedAt sql.NullTime
	var stage string
	var tags []byte

	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &phone, &cpf, &birth, &city, &state, &zip, &address,
		&course, &src, &stage, &s.DealValue, &s.Currency, &closeDate, &tags,
		&s.IsClient, &deletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Phone = phone.String
	s.CPF = cpf.String
	s.City = city.String
	s.State = strings.TrimSpace(state.String)
	s.ZipCode = zip.String
	s.Address = address.String
	s.Course = course.String
	s.Source = src.String
	s.FunnelStage = entity.FunnelStage(stage)
	s.Currency = strings.TrimSpace(s.Currency)
	s.BirthDate = formatDate(birth)
	s.ExpectedCloseDate = formatDate(closeDate)
	if deletedAt.Valid {
		t := deletedAt.Time
		s.DeletedAt = &t
	}

	s.Tags = []entity.Tag{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &s.Tags); err != nil {
			return nil, fmt.Errorf("tags inválidas no aluno %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

func (r *StudentRepository) Create(ctx context.Context, s *entity.Student) error {
	query := `
		INSERT INTO students (` + studentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	tags, err := marshalTags(s.Tags)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		s.ID, s.Name, s.Email, nullString(s.Phone), nullString(s.CPF), nullString(s.BirthDate),
		nullString(s.City), nullString(s.State), nullString(s.ZipCode), nullString(s.Address),
		nullString(s.Course), nullString(s.Source), string(s.FunnelStage), s.DealValue, s.Currency,
		nullString(s.ExpectedCloseDate), tags, s.IsClient, s.DeletedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrStudentAlreadyExists
		}
		return fmt.Errorf("erro ao criar aluno: %w", err)
	}
	return nil
}

// Update grava os campos editáveis. id, created_at e deleted_at nunca mudam aqui.
func (r *StudentRepository) Update(ctx context.Context, s *entity.Student) error {
	query := `
		UPDATE students SET
			name = $2, email = $3, phone = $4, cpf = $5, birth_date = $6,
			city = $7, state = $8, zip_code = $9, address = $10,
			course = $11, source = $12, funnel_stage = $13, deal_value = $14, currency = $15,
			expected_close_date = $16, tags = $17, is_client = $18, updated_at = $19
		WHERE id = $1
	`
	tags, err := marshalTags(s.Tags)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query,
		s.ID, s.Name, s.Email, nullString(s.Phone), nullString(s.CPF), nullString(s.BirthDate),
		nullString(s.City), nullString(s.State), nullString(s.ZipCode), nullString(s.Address),
		nullString(s.Course), nullString(s.Source), string(s.FunnelStage), s.DealValue, s.Currency,
		nullString(s.ExpectedCloseDate), tags, s.IsClient, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao atualizar aluno: %w", err)
	}
	return expectAffected(res)
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao deletar aluno: %w", err)
	}
	return nil
}

// FindByID também devolve registros na lixeira; quem chama decide.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*entity.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrStudentNotFound
	}

	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	s, err := scanStudent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrStudentNotFound
		}
		return nil, fmt.Errorf("erro ao buscar aluno: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) List(ctx context.Context, filter entity.StudentFilter) ([]*entity.Student, error) {
	var (
		conds = []string{"deleted_at IS NULL"}
		args  []any
	)
	if filter.Stage != "" {
		args = append(args, string(filter.Stage))
		conds = append(conds, fmt.Sprintf("funnel_stage = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		conds = append(conds, fmt.Sprintf("source = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", len(args), len(args), len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		studentColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	return r.queryStudents(ctx, query, args...)
}

func (r *StudentRepository) FindActiveByName(ctx context.Context, normalizedName, excludeID string) (*entity.Student, error) {
	return r.findOneActive(ctx, `lower(regexp_replace(btrim(name), '\s+', ' ', 'g')) = $1`, excludeID, normalizedName)
}

func (r *StudentRepository) FindActiveByEmail(ctx context.Context, normalizedEmail, excludeID string) (*entity.Student, error) {
	return r.findOneActive(ctx, `lower(btrim(email)) = $1`, excludeID, normalizedEmail)
}

// O CPF pode estar gravado formatado (###.###.###-##) ou só com dígitos.
func (r *StudentRepository) FindActiveByCPF(ctx context.Context, formatted, digits, excludeID string) (*entity.Student, error) {
	return r.findOneActive(ctx, `cpf IN ($1, $2)`, excludeID, formatted, digits)
}

// ListActiveWithPhone devolve o superconjunto para o match de telefone em memória.
func (r *StudentRepository) ListActiveWithPhone(ctx context.Context, excludeID string) ([]*entity.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE deleted_at IS NULL AND phone IS NOT NULL AND phone <> ''`
	var args []any
	if excludeID != "" {
		args = append(args, excludeID)
		query += ` AND id::text <> $1`
	}
	query += ` ORDER BY created_at ASC`
	return r.queryStudents(ctx, query, args...)
}

func (r *StudentRepository) findOneActive(ctx context.Context, cond, excludeID string, args ...any) (*entity.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE deleted_at IS NULL AND ` + cond
	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(` AND id::text <> $%d`, len(args))
	}
	query += ` ORDER BY created_at ASC LIMIT 1`

	s, err := scanStudent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro na busca de duplicidade: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE students SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("erro ao mover aluno para a lixeira: %w", err)
	}
	return expectAffected(res)
}

func (r *StudentRepository) Restore(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE students SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("erro ao restaurar aluno: %w", err)
	}
	return expectAffected(res)
}

func (r *StudentRepository) ListTrashed(ctx context.Context) ([]*entity.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`
	return r.queryStudents(ctx, query)
}

// PurgeDeletedBefore apaga de vez; matrículas, notas e histórico vão junto (ON DELETE CASCADE).
func (r *StudentRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`DELETE FROM students WHERE deleted_at IS NOT NULL AND deleted_at < $1 RETURNING id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("erro ao esvaziar lixeira: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("erro ao escanear id apagado: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *StudentRepository) queryStudents(ctx context.Context, query string, args ...any) ([]*entity.Student, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar alunos: %w", err)
	}
	defer rows.Close()

	students := []*entity.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear aluno: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrStudentNotFound
	}
	return nil
}

func marshalTags(tags []entity.Tag) ([]byte, error) {
	if tags == nil {
		tags = []entity.Tag{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("erro ao converter tags: %w", err)
	}
	return b, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatDate(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02")
}
