package dto

import (
	"time"

	"github.com/noah-isme/painel-admin-api/internal/models"
)

// UpsertNotaRequest appends a manual grade entry. Grade is a delta and may be
// negative. A request whose grade is null or absent is accepted and ignored.
type UpsertNotaRequest struct {
	Grade  *float64          `json:"grade" validate:"omitempty,finite,lte=10"`
	Reason *string           `json:"reason" validate:"omitempty,max=500"`
	Origin *models.OrigemRef `json:"origin" validate:"omitempty"`
}

// SeedTurmaRequest lists the students considered by the demo seeding.
type SeedTurmaRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1,dive,required"`
}

// SeedTurmaResult reports what the seeding did.
type SeedTurmaResult struct {
	CourseID       string   `json:"courseId"`
	ClassID        string   `json:"classId"`
	AlreadySeeded  bool     `json:"alreadySeeded"`
	SeededStudents []string `json:"seededStudents"`
}

// NotaAluno is one row of the class grade grid.
type NotaAluno struct {
	StudentID   string            `json:"studentId"`
	BaseGrade   *float64          `json:"baseGrade"`
	ManualTotal float64           `json:"manualTotal"`
	Entries     int               `json:"entries"`
	Nota        models.NotaRecord `json:"nota"`
}

// NotasTurmaResponse lists computed grades for a class.
type NotasTurmaResponse struct {
	CourseID    string      `json:"courseId"`
	ClassID     string      `json:"classId"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Alunos      []NotaAluno `json:"alunos"`
}
