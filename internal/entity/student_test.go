package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudent(t *testing.T) {
	s, err := NewStudent("Ana Souza", "ana@x.com", StageNew)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "BRL", s.Currency)
	assert.NotNil(t, s.Tags)
	assert.False(t, s.IsDeleted())

	_, err = NewStudent("", "ana@x.com", StageNew)
	assert.Error(t, err)
	_, err = NewStudent("Ana", "ana@x.com", "won")
	assert.Error(t, err)
}

func TestStudentRestoreWindow(t *testing.T) {
	deletedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &Student{DeletedAt: &deletedAt}

	assert.Equal(t, deletedAt.Add(TrashRetention), s.RestoreDeadline(TrashRetention))
	assert.True(t, s.CanRestore(deletedAt.Add(29*24*time.Hour), TrashRetention))
	assert.False(t, s.CanRestore(deletedAt.Add(TrashRetention), TrashRetention))

	active := &Student{}
	assert.False(t, active.CanRestore(time.Now(), TrashRetention))
	assert.True(t, active.RestoreDeadline(TrashRetention).IsZero())
}
