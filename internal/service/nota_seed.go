package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/models"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/hashrand"
)

var (
	seedActivityTitles = []string{
		"Lista de exercícios",
		"Estudo de caso",
		"Projeto prático",
		"Fórum de discussão",
		"Quiz de revisão",
	}
	seedReasons = []string{
		"Participação em aula",
		"Entrega antecipada",
		"Atividade complementar",
		"Bônus de engajamento",
	}
)

// EnsureSeededForTurma populates demo data for a class once. The first three
// distinct students get, in order: a removable bonus entry, a "no grade"
// tombstone, and an entry that was added and then removed. Enrollments that
// already hold data are left untouched.
func (s *NotaService) EnsureSeededForTurma(ctx context.Context, courseID, classID string, studentIDs []string) (*dto.SeedTurmaResult, error) {
	if !s.cfg.SeedEnabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureOff, "grade seeding is disabled")
	}
	courseID, classID = strings.TrimSpace(courseID), strings.TrimSpace(classID)
	if courseID == "" || classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId and classId are required")
	}
	students := distinctIDs(studentIDs)
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one studentId is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &dto.SeedTurmaResult{CourseID: courseID, ClassID: classID, SeededStudents: []string{}}
	state := s.store.load(ctx)
	turmaKey := models.TurmaKey(courseID, classID)
	if state.seeds[turmaKey] {
		result.AlreadySeeded = true
		return result, nil
	}

	if len(students) > 3 {
		students = students[:3]
	}
	var touchedOverrides, touchedLedger bool
	for i, studentID := range students {
		key := models.EnrollmentRef{CourseID: courseID, ClassID: classID, StudentID: studentID}.Key()
		if hasNotaData(key, state) {
			continue
		}
		switch i {
		case 0:
			if s.seedBonus(key, state) {
				touchedLedger = true
			}
		case 1:
			state.overrides[key] = models.NotaRecord{UpdatedAt: s.now().UTC()}
			touchedOverrides = true
		case 2:
			s.seedAddedThenRemoved(key, state)
			touchedOverrides, touchedLedger = true, true
		}
		result.SeededStudents = append(result.SeededStudents, studentID)
	}

	if touchedOverrides {
		s.store.saveOverrides(ctx, state)
	}
	if touchedLedger {
		s.store.saveManual(ctx, state)
		s.store.saveHistory(ctx, state)
	}
	state.seeds[turmaKey] = true
	s.store.saveSeeds(ctx, state)

	s.logger.Info("grades seeded for class",
		zap.String("course_id", courseID),
		zap.String("class_id", classID),
		zap.Strings("students", result.SeededStudents),
	)
	return result, nil
}

// seedBonus adds a bonus of up to one point that still fits under the cap.
func (s *NotaService) seedBonus(key string, state *notaState) bool {
	remaining := round2(models.MaxNota - currentTotal(key, state))
	bonus := math.Min(1.0, remaining)
	if bonus <= 0 {
		return false
	}
	now := s.now().UTC()
	reason := hashrand.Pick(key+":reason", seedReasons)
	origin := seedOrigin(key)
	state.manual[key] = state.manual[key].Push(models.ManualEntry{
		ID: s.newID(), At: now, Grade: bonus, Reason: &reason, Origin: origin,
	})
	state.history[key] = state.history[key].Append(models.HistoryEvent{
		ID: s.newID(), Action: models.HistoryAdded, At: now, Grade: bonus, Reason: &reason, Origin: origin,
	})
	return true
}

// seedAddedThenRemoved leaves a tombstone plus an ADDED and REMOVED pair in history.
func (s *NotaService) seedAddedThenRemoved(key string, state *notaState) {
	now := s.now().UTC()
	grade := float64(hashrand.Between(key+":grade", 5, 20)) / 10
	reason := hashrand.Pick(key+":reason", seedReasons)
	origin := seedOrigin(key)

	state.overrides[key] = models.NotaRecord{UpdatedAt: now}
	history := state.history[key].Append(models.HistoryEvent{
		ID: s.newID(), Action: models.HistoryAdded, At: now, Grade: grade, Reason: &reason, Origin: origin,
	})
	state.history[key] = history.Append(models.HistoryEvent{
		ID: s.newID(), Action: models.HistoryRemoved, At: now, Grade: grade, Reason: &reason, Origin: origin,
	})
}

func seedOrigin(key string) *models.OrigemRef {
	id := fmt.Sprintf("atv-%d", hashrand.Between(key+":origin", 100, 999))
	title := hashrand.Pick(key+":title", seedActivityTitles)
	return &models.OrigemRef{Type: models.OrigemAtividade, ID: &id, Title: &title}
}

func hasNotaData(key string, state *notaState) bool {
	if _, ok := state.overrides[key]; ok {
		return true
	}
	return len(state.manual[key]) > 0 || len(state.history[key]) > 0
}
