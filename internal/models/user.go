package models

// UserRole represents the platform roles recognised by the dashboard.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleModerador  UserRole = "MODERADOR"
	RolePedagogico UserRole = "PEDAGOGICO"
	RoleInstrutor  UserRole = "INSTRUTOR"
	RoleAluno      UserRole = "ALUNO"
	RoleEmpresa    UserRole = "EMPRESA"
	RoleRecrutador UserRole = "RECRUTADOR"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
