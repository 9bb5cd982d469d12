package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

func TestEnsureSeededForTurmaSeedsThreeStates(t *testing.T) {
	store := kvstore.NewMemory()
	svc := newTestNotaService(store)
	ctx := context.Background()

	result, err := svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", []string{"aluno-0", "aluno-0", "aluno-1", "aluno-2", "aluno-3"})
	require.NoError(t, err)
	assert.False(t, result.AlreadySeeded)
	assert.Equal(t, []string{"aluno-0", "aluno-1", "aluno-2"}, result.SeededStudents)

	bonus, err := svc.Get(ctx, enrollment("aluno-0"))
	require.NoError(t, err)
	assert.InDelta(t, 2.7, *bonus.Grade, 1e-9)
	require.NotNil(t, bonus.Origin)
	assert.Equal(t, models.OrigemAtividade, bonus.Origin.Type)
	require.NotNil(t, bonus.Origin.Title)
	assert.Contains(t, seedActivityTitles, *bonus.Origin.Title)
	history, err := svc.History(ctx, enrollment("aluno-0"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryAdded, history[0].Action)

	tombstone, err := svc.Get(ctx, enrollment("aluno-1"))
	require.NoError(t, err)
	assert.Nil(t, tombstone.Grade)
	history, err = svc.History(ctx, enrollment("aluno-1"))
	require.NoError(t, err)
	assert.Empty(t, history)

	removed, err := svc.Get(ctx, enrollment("aluno-2"))
	require.NoError(t, err)
	assert.Nil(t, removed.Grade)
	entries, err := svc.ManualEntries(ctx, enrollment("aluno-2"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	history, err = svc.History(ctx, enrollment("aluno-2"))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.HistoryRemoved, history[0].Action)
	assert.Equal(t, models.HistoryAdded, history[1].Action)
	assert.Equal(t, history[0].Grade, history[1].Grade)

	untouched, err := svc.Get(ctx, enrollment("aluno-3"))
	require.NoError(t, err)
	assert.Equal(t, BaseRecord(enrollment("aluno-3").Key()).Grade, untouched.Grade)
}

func TestEnsureSeededForTurmaIsIdempotent(t *testing.T) {
	store := kvstore.NewMemory()
	svc := newTestNotaService(store)
	ctx := context.Background()
	students := []string{"aluno-0", "aluno-1", "aluno-2"}

	_, err := svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", students)
	require.NoError(t, err)

	snapshot := map[string][]byte{}
	for _, key := range store.Keys() {
		raw, err := store.Get(ctx, key)
		require.NoError(t, err)
		snapshot[key] = raw
	}

	result, err := svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", students)
	require.NoError(t, err)
	assert.True(t, result.AlreadySeeded)
	assert.Empty(t, result.SeededStudents)

	for key, before := range snapshot {
		after, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, before, after, key)
	}
}

func TestEnsureSeededForTurmaKeepsExistingData(t *testing.T) {
	svc := newTestNotaService(kvstore.NewMemory())
	ctx := context.Background()

	_, err := svc.AddManual(ctx, enrollment("aluno-1"), dto.UpsertNotaRequest{Grade: grade(1)})
	require.NoError(t, err)

	result, err := svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", []string{"aluno-0", "aluno-1", "aluno-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"aluno-0", "aluno-2"}, result.SeededStudents)

	record, err := svc.Get(ctx, enrollment("aluno-1"))
	require.NoError(t, err)
	require.NotNil(t, record.Grade)
	assert.InDelta(t, *BaseRecord(enrollment("aluno-1").Key()).Grade+1, *record.Grade, 1e-9)
}

func TestEnsureSeededForTurmaBonusFitsUnderCap(t *testing.T) {
	svc := newTestNotaService(kvstore.NewMemory())
	ctx := context.Background()

	_, err := svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", []string{"aluno-7"})
	require.NoError(t, err)

	record, err := svc.Get(ctx, enrollment("aluno-7"))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, *record.Grade, 1e-9)
}

func TestEnsureSeededForTurmaValidation(t *testing.T) {
	svc := newTestNotaService(kvstore.NewMemory())
	ctx := context.Background()

	_, err := svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", []string{" ", ""})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	svc.cfg.SeedEnabled = false
	_, err = svc.EnsureSeededForTurma(ctx, "curso-1", "turma-1", []string{"aluno-0"})
	assert.True(t, errors.Is(err, appErrors.ErrFeatureOff))
}
