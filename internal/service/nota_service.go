package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/hashrand"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

const (
	legacyEntryPrefix = "legacy:"
	notaTolerance     = 1e-9
)

// baseEpoch anchors the hash-derived timestamps of system base grades.
var baseEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// NotaServiceConfig tunes the grades ledger.
type NotaServiceConfig struct {
	SeedEnabled bool
}

// NotaServiceParams groups constructor dependencies.
type NotaServiceParams struct {
	Store     kvstore.Store
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
	Config    NotaServiceConfig
}

// NotaService computes enrollment grades from a deterministic base grade plus
// a ledger of manual entries.
type NotaService struct {
	store     *notaStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       NotaServiceConfig
	now       func() time.Time
	newID     func() string

	// mu serialises read-modify-write cycles over the namespaces.
	mu sync.Mutex
}

// NewNotaService constructs a NotaService. A nil store behaves like an
// unavailable backend.
func NewNotaService(params NotaServiceParams) *NotaService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
	var observer storeObserver
	if params.Metrics != nil {
		observer = params.Metrics
	}
	return &NotaService{
		store:     &notaStore{kv: params.Store, metrics: observer, logger: logger},
		validator: validate,
		logger:    logger,
		cfg:       params.Config,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// BaseRecord returns the system grade of key. It depends on nothing but the key.
func BaseRecord(key string) models.NotaRecord {
	h := hashrand.Hash(key)
	created := baseEpoch.Add(time.Duration(h%180) * 24 * time.Hour)
	updated := created.Add(time.Duration((h>>8)%30)*24*time.Hour + time.Duration((h>>16)%24)*time.Hour)
	record := models.NotaRecord{UpdatedAt: updated, CreatedAt: &created}
	if h%17 != 0 {
		grade := float64(h%101) / 10
		record.Grade = &grade
	}
	return record
}

// Get returns the computed grade of ref, migrating a legacy record on the way.
func (s *NotaService) Get(ctx context.Context, ref models.EnrollmentRef) (*models.NotaRecord, error) {
	if err := s.validateRef(ref); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.load(ctx)
	key := ref.Key()
	s.migrateLegacy(ctx, state, key)
	record := computeRecord(key, state)
	return &record, nil
}

// AddManual appends a manual entry. The cumulative grade may not exceed 10.
// A nil grade adds nothing and returns a transient zero record.
func (s *NotaService) AddManual(ctx context.Context, ref models.EnrollmentRef, req dto.UpsertNotaRequest) (*models.NotaRecord, error) {
	if err := s.validateRef(ref); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	now := s.now().UTC()
	if req.Grade == nil {
		zero := 0.0
		return &models.NotaRecord{Grade: &zero, UpdatedAt: now, Reason: req.Reason, Origin: req.Origin}, nil
	}
	grade := *req.Grade

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.load(ctx)
	key := ref.Key()
	s.migrateLegacy(ctx, state, key)

	current := currentTotal(key, state)
	if current+grade > models.MaxNota+notaTolerance {
		remaining := math.Max(0, round2(models.MaxNota-current))
		return nil, appErrors.Clone(appErrors.ErrNotaLimit,
			fmt.Sprintf("grade exceeds the maximum of 10, remaining allowance is %s", strconv.FormatFloat(remaining, 'f', -1, 64)))
	}

	entry := models.ManualEntry{ID: s.newID(), At: now, Grade: grade, Reason: req.Reason, Origin: req.Origin}
	state.manual[key] = state.manual[key].Push(entry)
	state.history[key] = state.history[key].Append(models.HistoryEvent{
		ID: s.newID(), Action: models.HistoryAdded, At: now, Grade: grade, Reason: req.Reason, Origin: req.Origin,
	})
	s.store.saveManual(ctx, state)
	s.store.saveHistory(ctx, state)

	s.logger.Info("manual grade added", zap.String("key", key), zap.Float64("grade", grade))
	record := computeRecord(key, state)
	return &record, nil
}

// UndoLastManual removes the newest manual entry. It returns nil when the
// enrollment has no manual entries.
func (s *NotaService) UndoLastManual(ctx context.Context, ref models.EnrollmentRef) (*models.NotaRecord, error) {
	if err := s.validateRef(ref); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.load(ctx)
	key := ref.Key()
	s.migrateLegacy(ctx, state, key)

	removed, rest, ok := state.manual[key].PopLatest()
	if !ok {
		return nil, nil
	}
	if len(rest) == 0 {
		delete(state.manual, key)
	} else {
		state.manual[key] = rest
	}
	state.history[key] = state.history[key].Append(models.HistoryEvent{
		ID: s.newID(), Action: models.HistoryRemoved, At: s.now().UTC(), Grade: removed.Grade, Reason: removed.Reason, Origin: removed.Origin,
	})
	s.store.saveManual(ctx, state)
	s.store.saveHistory(ctx, state)

	s.logger.Info("manual grade removed", zap.String("key", key), zap.String("entry_id", removed.ID))
	record := computeRecord(key, state)
	return &record, nil
}

// History returns the audit trail of ref, newest first.
func (s *NotaService) History(ctx context.Context, ref models.EnrollmentRef) (models.History, error) {
	if err := s.validateRef(ref); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.load(ctx)
	key := ref.Key()
	s.migrateLegacy(ctx, state, key)
	if history := state.history[key]; history != nil {
		return history, nil
	}
	return models.History{}, nil
}

// ManualEntries returns the manual ledger of ref, newest first.
func (s *NotaService) ManualEntries(ctx context.Context, ref models.EnrollmentRef) (models.ManualLedger, error) {
	if err := s.validateRef(ref); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.load(ctx)
	key := ref.Key()
	s.migrateLegacy(ctx, state, key)
	if ledger := state.manual[key]; ledger != nil {
		return ledger, nil
	}
	return models.ManualLedger{}, nil
}

// ListForTurma computes the grade grid of a class for the given students.
func (s *NotaService) ListForTurma(ctx context.Context, courseID, classID string, studentIDs []string) (*dto.NotasTurmaResponse, error) {
	courseID, classID = strings.TrimSpace(courseID), strings.TrimSpace(classID)
	if courseID == "" || classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId and classId are required")
	}
	students := distinctIDs(studentIDs)

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.load(ctx)
	resp := &dto.NotasTurmaResponse{
		CourseID:    courseID,
		ClassID:     classID,
		GeneratedAt: s.now().UTC(),
		Alunos:      make([]dto.NotaAluno, 0, len(students)),
	}
	for _, studentID := range students {
		key := models.EnrollmentRef{CourseID: courseID, ClassID: classID, StudentID: studentID}.Key()
		s.migrateLegacy(ctx, state, key)
		ledger := state.manual[key]
		resp.Alunos = append(resp.Alunos, dto.NotaAluno{
			StudentID:   studentID,
			BaseGrade:   effectiveBase(key, state).Grade,
			ManualTotal: round2(ledger.Total()),
			Entries:     len(ledger),
			Nota:        computeRecord(key, state),
		})
	}
	return resp, nil
}

// migrateLegacy turns a pre-ledger manual grade stored in the main namespace
// into a ledger entry and removes it. Running it twice is harmless. The
// legacy record is only removed once the ledger holding its entry is saved.
func (s *NotaService) migrateLegacy(ctx context.Context, state *notaState, key string) {
	stored, ok := state.overrides[key]
	if !ok || !stored.IsLegacyManual() {
		return
	}
	id := legacyEntryPrefix + key
	ledger := state.manual[key]
	if !ledgerHas(ledger, id) {
		at := stored.UpdatedAt
		if at.IsZero() {
			at = s.now().UTC()
		}
		ledger = append(ledger, models.ManualEntry{
			ID: id, At: at, Grade: *stored.Grade, Reason: stored.Reason, Origin: stored.Origin,
		})
		if len(ledger) > models.MaxManualEntries {
			ledger = ledger[:models.MaxManualEntries]
		}
		state.manual[key] = ledger
		if err := s.store.saveManual(ctx, state); err != nil {
			s.logger.Warn("legacy manual grade kept, ledger not saved", zap.String("key", key), zap.Error(err))
			return
		}
	}
	delete(state.overrides, key)
	if err := s.store.saveOverrides(ctx, state); err != nil {
		return
	}
	s.logger.Info("legacy manual grade migrated", zap.String("key", key))
}

func (s *NotaService) validateRef(ref models.EnrollmentRef) error {
	if err := s.validator.Struct(ref); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "courseId, classId and studentId are required")
	}
	for _, part := range []string{ref.CourseID, ref.ClassID, ref.StudentID} {
		if strings.Contains(part, models.KeySeparator) {
			return appErrors.Clone(appErrors.ErrValidation, "identifiers may not contain "+models.KeySeparator)
		}
	}
	return nil
}

// effectiveBase applies a stored override or tombstone to the system base.
func effectiveBase(key string, state *notaState) models.NotaRecord {
	base := BaseRecord(key)
	stored, ok := state.overrides[key]
	if !ok {
		return base
	}
	switch {
	case stored.IsTombstone():
		base.Grade = nil
	case stored.IsOverride():
		grade := *stored.Grade
		base.Grade = &grade
	default:
		return base
	}
	if !stored.UpdatedAt.IsZero() {
		base.UpdatedAt = stored.UpdatedAt
	}
	if stored.CreatedAt != nil {
		created := *stored.CreatedAt
		base.CreatedAt = &created
	}
	return base
}

func currentTotal(key string, state *notaState) float64 {
	base := effectiveBase(key, state)
	total := state.manual[key].Total()
	if base.Grade != nil {
		total += *base.Grade
	}
	return round2(total)
}

// computeRecord applies the manual ledger on top of the effective base. The
// result is clamped to [0, 10] and is null only without base and entries.
func computeRecord(key string, state *notaState) models.NotaRecord {
	record := effectiveBase(key, state)
	ledger := state.manual[key]
	latest, hasEntries := ledger.Latest()
	if record.Grade == nil && !hasEntries {
		return record
	}

	total := currentTotal(key, state)
	grade := round2(math.Min(models.MaxNota, math.Max(0, total)))
	record.Grade = &grade
	if hasEntries {
		if latest.At.After(record.UpdatedAt) {
			record.UpdatedAt = latest.At
		}
		record.Reason = latest.Reason
		record.Origin = latest.Origin
	}
	return record
}

func ledgerHas(ledger models.ManualLedger, id string) bool {
	for _, entry := range ledger {
		if entry.ID == id {
			return true
		}
	}
	return false
}

func distinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
