package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

// Storage namespaces of the grades ledger. Each holds one JSON object keyed
// by the enrollment key (or the class key for seed flags).
const (
	notasOverridesKey = "painel:notas:v1"
	notasManualKey    = "painel:notas:manual:v1"
	notasHistoryKey   = "painel:notas:historico:v1"
	notasSeedKey      = "painel:notas:seed:v1"
)

// NotasNamespace is the main ledger namespace, probed by readiness checks.
const NotasNamespace = notasOverridesKey

type storeObserver interface {
	ObserveStoreOperation(op string, err error, duration time.Duration)
}

// notaState is an in-memory view of the four namespaces.
type notaState struct {
	overrides map[string]models.NotaRecord
	manual    map[string]models.ManualLedger
	history   map[string]models.History
	seeds     map[string]bool
}

// notaStore reads and writes namespaces. Read failures yield empty data.
// Write failures are logged and returned so callers can keep dependent
// writes from running.
type notaStore struct {
	kv      kvstore.Store
	metrics storeObserver
	logger  *zap.Logger
}

func (s *notaStore) readObject(ctx context.Context, namespace string) map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	if s.kv == nil {
		return out
	}
	start := time.Now()
	raw, err := s.kv.Get(ctx, namespace)
	if errors.Is(err, kvstore.ErrNotFound) {
		err = nil
	}
	s.observe("get", err, time.Since(start))
	if err != nil {
		s.logger.Debug("notas store read failed", zap.String("namespace", namespace), zap.Error(err))
		return out
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Warn("notas store holds malformed data", zap.String("namespace", namespace), zap.Error(err))
		return map[string]json.RawMessage{}
	}
	return out
}

func (s *notaStore) write(ctx context.Context, namespace string, value interface{}) error {
	if s.kv == nil {
		return kvstore.ErrUnavailable
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("notas store encode failed", zap.String("namespace", namespace), zap.Error(err))
		return err
	}
	start := time.Now()
	err = s.kv.Set(ctx, namespace, payload)
	s.observe("set", err, time.Since(start))
	if err != nil {
		s.logger.Warn("notas store write failed", zap.String("namespace", namespace), zap.Error(err))
	}
	return err
}

func (s *notaStore) observe(op string, err error, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperation(op, err, duration)
	}
}

func (s *notaStore) load(ctx context.Context) *notaState {
	return &notaState{
		overrides: s.loadOverrides(ctx),
		manual:    s.loadManual(ctx),
		history:   s.loadHistory(ctx),
		seeds:     s.loadSeeds(ctx),
	}
}

func (s *notaStore) loadOverrides(ctx context.Context) map[string]models.NotaRecord {
	out := map[string]models.NotaRecord{}
	for key, raw := range s.readObject(ctx, notasOverridesKey) {
		if record, ok := decodeRecord(raw); ok {
			out[key] = record
		}
	}
	return out
}

func (s *notaStore) loadManual(ctx context.Context) map[string]models.ManualLedger {
	out := map[string]models.ManualLedger{}
	for key, raw := range s.readObject(ctx, notasManualKey) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			continue
		}
		ledger := make(models.ManualLedger, 0, len(items))
		for _, item := range items {
			entry, ok := decodeEntry(item)
			if !ok {
				continue
			}
			ledger = append(ledger, models.ManualEntry{
				ID: entry.id, At: entry.at, Grade: entry.grade, Reason: entry.reason, Origin: entry.origin,
			})
			if len(ledger) == models.MaxManualEntries {
				break
			}
		}
		if len(ledger) > 0 {
			out[key] = ledger
		}
	}
	return out
}

func (s *notaStore) loadHistory(ctx context.Context) map[string]models.History {
	out := map[string]models.History{}
	for key, raw := range s.readObject(ctx, notasHistoryKey) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			continue
		}
		history := make(models.History, 0, len(items))
		for _, item := range items {
			entry, ok := decodeEntry(item)
			if !ok {
				continue
			}
			if entry.action != models.HistoryAdded && entry.action != models.HistoryRemoved {
				continue
			}
			history = append(history, models.HistoryEvent{
				ID: entry.id, Action: entry.action, At: entry.at, Grade: entry.grade, Reason: entry.reason, Origin: entry.origin,
			})
			if len(history) == models.MaxHistoryEvents {
				break
			}
		}
		if len(history) > 0 {
			out[key] = history
		}
	}
	return out
}

func (s *notaStore) loadSeeds(ctx context.Context) map[string]bool {
	out := map[string]bool{}
	for key, raw := range s.readObject(ctx, notasSeedKey) {
		var done bool
		if err := json.Unmarshal(raw, &done); err == nil && done {
			out[key] = true
		}
	}
	return out
}

func (s *notaStore) saveOverrides(ctx context.Context, state *notaState) error {
	return s.write(ctx, notasOverridesKey, state.overrides)
}

func (s *notaStore) saveManual(ctx context.Context, state *notaState) error {
	return s.write(ctx, notasManualKey, state.manual)
}

func (s *notaStore) saveHistory(ctx context.Context, state *notaState) error {
	return s.write(ctx, notasHistoryKey, state.history)
}

func (s *notaStore) saveSeeds(ctx context.Context, state *notaState) error {
	return s.write(ctx, notasSeedKey, state.seeds)
}

type rawEntry struct {
	ID        json.RawMessage `json:"id"`
	Action    json.RawMessage `json:"action"`
	At        json.RawMessage `json:"at"`
	Grade     json.RawMessage `json:"grade"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
	CreatedAt json.RawMessage `json:"createdAt"`
	Reason    json.RawMessage `json:"reason"`
	Origin    json.RawMessage `json:"origin"`
}

type decodedEntry struct {
	id     string
	action models.HistoryAction
	at     time.Time
	grade  float64
	reason *string
	origin *models.OrigemRef
}

// decodeRecord validates a main-namespace record. Grade may be null, every
// other field must have the expected type when present.
func decodeRecord(raw json.RawMessage) (models.NotaRecord, bool) {
	var item rawEntry
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.NotaRecord{}, false
	}
	grade, ok := decodeNullableNumber(item.Grade)
	if !ok {
		return models.NotaRecord{}, false
	}
	reason, ok := decodeNullableString(item.Reason)
	if !ok {
		return models.NotaRecord{}, false
	}
	origin, ok := decodeOrigin(item.Origin)
	if !ok {
		return models.NotaRecord{}, false
	}
	record := models.NotaRecord{Grade: grade, Reason: reason, Origin: origin}
	if updated, ok := decodeTimestamp(item.UpdatedAt); ok {
		record.UpdatedAt = updated
	}
	if created, ok := decodeTimestamp(item.CreatedAt); ok {
		record.CreatedAt = &created
	}
	return record, true
}

// decodeEntry validates a ledger entry or history event: id, timestamp and a
// finite grade are required.
func decodeEntry(raw json.RawMessage) (decodedEntry, bool) {
	var item rawEntry
	if err := json.Unmarshal(raw, &item); err != nil {
		return decodedEntry{}, false
	}
	var out decodedEntry
	if err := json.Unmarshal(item.ID, &out.id); err != nil || out.id == "" {
		return decodedEntry{}, false
	}
	at, ok := decodeTimestamp(item.At)
	if !ok {
		return decodedEntry{}, false
	}
	out.at = at
	grade, ok := decodeNullableNumber(item.Grade)
	if !ok || grade == nil {
		return decodedEntry{}, false
	}
	out.grade = *grade
	if out.reason, ok = decodeNullableString(item.Reason); !ok {
		return decodedEntry{}, false
	}
	if out.origin, ok = decodeOrigin(item.Origin); !ok {
		return decodedEntry{}, false
	}
	if len(item.Action) > 0 {
		var action string
		if err := json.Unmarshal(item.Action, &action); err != nil {
			return decodedEntry{}, false
		}
		out.action = models.HistoryAction(action)
	}
	return out, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeNullableNumber(raw json.RawMessage) (*float64, bool) {
	if isNull(raw) {
		return nil, true
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

func decodeNullableString(raw json.RawMessage) (*string, bool) {
	if isNull(raw) {
		return nil, true
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func decodeOrigin(raw json.RawMessage) (*models.OrigemRef, bool) {
	if isNull(raw) {
		return nil, true
	}
	var origin models.OrigemRef
	if err := json.Unmarshal(raw, &origin); err != nil || !origin.Type.Valid() {
		return nil, false
	}
	return &origin, true
}

// decodeTimestamp accepts RFC 3339 strings and epoch milliseconds.
func decodeTimestamp(raw json.RawMessage) (time.Time, bool) {
	if isNull(raw) {
		return time.Time{}, false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		parsed, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}
