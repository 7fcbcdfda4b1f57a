package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestActivityAppendAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewActivityRepository(db)

	log := entity.NewActivityLog("s-1", entity.ActionStudentMerged, "Cadastro mesclado", "", map[string]any{"fields": 2})
	mock.ExpectExec(`INSERT INTO activity_logs`).
		WithArgs(log.ID, "s-1", entity.ActionStudentMerged, "Cadastro mesclado", []byte(`{"fields":2}`), nil, log.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Append(context.Background(), log))

	now := time.Now()
	mock.ExpectQuery(`FROM activity_logs WHERE student_id = \$1 ORDER BY created_at DESC`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "action", "description", "details", "actor_id", "created_at"}).
			AddRow("l-2", "s-1", entity.ActionNoteAdded, "Nota adicionada", nil, "u-1", now).
			AddRow("l-1", "s-1", entity.ActionStudentMerged, "Cadastro mesclado", []byte(`{"fields":2}`), nil, now.Add(-time.Hour)))

	logs, err := repo.ListByStudent(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "u-1", logs[0].ActorID)
	assert.Nil(t, logs[0].Details)
	assert.EqualValues(t, 2, logs[1].Details["fields"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM course_enrollments WHERE id = \$1 AND student_id = \$2`).
		WithArgs("e-1", "s-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewEnrollmentRepository(db).Delete(context.Background(), "s-1", "e-1")
	assert.Error(t, err)
}

func TestNoteListMapsAttachment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM student_notes`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "author_id", "content", "attachment_name", "attachment_url", "attachment_size", "created_at"}).
			AddRow("n-1", "s-1", "u-1", "ligar amanhã", nil, nil, nil, now).
			AddRow("n-2", "s-1", nil, "", "contrato.pdf", "https://files/contrato.pdf", int64(2048), now))

	notes, err := NewNoteRepository(db).ListByStudent(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Nil(t, notes[0].Attachment)
	require.NotNil(t, notes[1].Attachment)
	assert.Equal(t, int64(2048), notes[1].Attachment.Size)
}
