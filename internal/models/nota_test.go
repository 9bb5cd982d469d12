package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEnrollmentRefKey(t *testing.T) {
	ref := EnrollmentRef{CourseID: "c1", ClassID: "t1", StudentID: "a1"}
	assert.Equal(t, "c1::t1::a1", ref.Key())
	assert.Equal(t, "c1::t1", TurmaKey("c1", "t1"))
}

func TestNotaRecordKinds(t *testing.T) {
	assert.True(t, NotaRecord{}.IsTombstone())
	assert.False(t, NotaRecord{}.IsOverride())

	override := NotaRecord{Grade: ptr(7.0)}
	assert.True(t, override.IsOverride())
	assert.False(t, override.IsLegacyManual())

	legacy := NotaRecord{Grade: ptr(6.0), Reason: ptr("recuperação")}
	assert.True(t, legacy.IsLegacyManual())
	assert.False(t, legacy.IsTombstone())
}

func TestManualLedgerOrdering(t *testing.T) {
	var ledger ManualLedger
	for i := 1; i <= 3; i++ {
		ledger = ledger.Push(ManualEntry{ID: fmt.Sprintf("e%d", i), Grade: float64(i)})
	}
	latest, ok := ledger.Latest()
	require.True(t, ok)
	assert.Equal(t, "e3", latest.ID)
	assert.InDelta(t, 6.0, ledger.Total(), 1e-9)

	var popped []string
	for {
		entry, rest, ok := ledger.PopLatest()
		if !ok {
			break
		}
		popped = append(popped, entry.ID)
		ledger = rest
	}
	assert.Equal(t, []string{"e3", "e2", "e1"}, popped)
}

func TestManualLedgerCap(t *testing.T) {
	var ledger ManualLedger
	for i := 0; i < MaxManualEntries+5; i++ {
		ledger = ledger.Push(ManualEntry{ID: fmt.Sprintf("e%d", i)})
	}
	require.Len(t, ledger, MaxManualEntries)
	assert.Equal(t, fmt.Sprintf("e%d", MaxManualEntries+4), ledger[0].ID)
}

func TestHistoryCap(t *testing.T) {
	var history History
	for i := 0; i < MaxHistoryEvents+1; i++ {
		history = history.Append(HistoryEvent{ID: fmt.Sprintf("h%d", i), Action: HistoryAdded})
	}
	require.Len(t, history, MaxHistoryEvents)
	assert.Equal(t, fmt.Sprintf("h%d", MaxHistoryEvents), history[0].ID)
}

func TestOrigemTipoValid(t *testing.T) {
	assert.True(t, OrigemAula.Valid())
	assert.False(t, OrigemTipo("PALESTRA").Valid())
}
