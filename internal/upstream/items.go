package upstream

// Curso is one item of the courses overview.
type Curso struct {
	ID              FlexString `json:"id"`
	Titulo          string     `json:"titulo"`
	Nome            string     `json:"nome"`
	Status          string     `json:"status"`
	TotalTurmas     int        `json:"totalTurmas"`
	TotalInscricoes int        `json:"totalInscricoes"`
	Valor           float64    `json:"valor"`
}

// DisplayName prefers the title and falls back to the name.
func (c Curso) DisplayName() string {
	if c.Titulo != "" {
		return c.Titulo
	}
	return c.Nome
}

// Pessoa is a student or instructor list item.
type Pessoa struct {
	ID     FlexString `json:"id"`
	Nome   string     `json:"nome"`
	Status string     `json:"status"`
}

// Usuario is a platform user list item.
type Usuario struct {
	ID     FlexString `json:"id"`
	Nome   string     `json:"nome"`
	Email  string     `json:"email"`
	Role   string     `json:"role"`
	Status string     `json:"status"`
}

// Empresa is one item of the companies dashboard.
type Empresa struct {
	ID          FlexString `json:"id"`
	Nome        string     `json:"nome"`
	Status      string     `json:"status"`
	VagasAtivas int        `json:"vagasAtivas"`
}

// Vaga is a job posting list item.
type Vaga struct {
	ID     FlexString `json:"id"`
	Titulo string     `json:"titulo"`
	Status string     `json:"status"`
}
