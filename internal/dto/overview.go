package dto

// PlataformaOverviewResponse is the dashboard aggregate contract consumed by the UI.
type PlataformaOverviewResponse struct {
	Success bool                   `json:"success"`
	Data    PlataformaOverviewData `json:"data"`
	Message string                 `json:"message,omitempty"`
}

// PlataformaOverviewData groups every dashboard subsection. All fields are
// always present; missing upstream data shows up as zeros and empty lists.
type PlataformaOverviewData struct {
	MetricasGerais MetricasGerais      `json:"metricasGerais"`
	Usuarios       UsuariosOverview    `json:"usuarios"`
	Cursos         CursosOverview      `json:"cursos"`
	Empresas       EmpresasOverview    `json:"empresas"`
	Vagas          VagasOverview       `json:"vagas"`
	Faturamento    FaturamentoOverview `json:"faturamento"`
}

// MetricasGerais holds the flat headline counters.
type MetricasGerais struct {
	TotalUsuarios    int `json:"totalUsuarios"`
	TotalAlunos      int `json:"totalAlunos"`
	TotalInstrutores int `json:"totalInstrutores"`
	TotalCursos      int `json:"totalCursos"`
	TotalEmpresas    int `json:"totalEmpresas"`
	TotalVagas       int `json:"totalVagas"`
}

// UsuariosOverview breaks users down by status and role.
type UsuariosOverview struct {
	Total             int         `json:"total"`
	Ativos            int         `json:"ativos"`
	Inativos          int         `json:"inativos"`
	Bloqueados        int         `json:"bloqueados"`
	Alunos            int         `json:"alunos"`
	Instrutores       int         `json:"instrutores"`
	InstrutoresAtivos int         `json:"instrutoresAtivos"`
	PorRole           []RoleCount `json:"porRole"`
}

// RoleCount counts users holding one role.
type RoleCount struct {
	Role  string `json:"role"`
	Total int    `json:"total"`
}

// CursosOverview breaks courses down by publication status.
type CursosOverview struct {
	Total           int `json:"total"`
	Publicados      int `json:"publicados"`
	Rascunho        int `json:"rascunho"`
	Arquivados      int `json:"arquivados"`
	TotalTurmas     int `json:"totalTurmas"`
	TotalInscricoes int `json:"totalInscricoes"`
}

// EmpresasOverview breaks partner companies down by status.
type EmpresasOverview struct {
	Total       int `json:"total"`
	Ativas      int `json:"ativas"`
	Bloqueadas  int `json:"bloqueadas"`
	Pendentes   int `json:"pendentes"`
	VagasAtivas int `json:"vagasAtivas"`
}

// VagasOverview breaks job postings down by status.
type VagasOverview struct {
	Total      int `json:"total"`
	Publicadas int `json:"publicadas"`
	EmAnalise  int `json:"emAnalise"`
	Rascunho   int `json:"rascunho"`
	Encerradas int `json:"encerradas"`
}

// FaturamentoOverview summarises estimated revenue.
type FaturamentoOverview struct {
	ReceitaEstimada float64    `json:"receitaEstimada"`
	TicketMedio     float64    `json:"ticketMedio"`
	TopCursos       []TopCurso `json:"topCursos"`
}

// TopCurso ranks a course by estimated revenue.
type TopCurso struct {
	CursoID    string  `json:"cursoId"`
	Titulo     string  `json:"titulo"`
	Inscricoes int     `json:"inscricoes"`
	Receita    float64 `json:"receita"`
}

// EmptyPlataformaOverviewData returns the all-defaults aggregate with non-nil lists.
func EmptyPlataformaOverviewData() PlataformaOverviewData {
	return PlataformaOverviewData{
		Usuarios:    UsuariosOverview{PorRole: []RoleCount{}},
		Faturamento: FaturamentoOverview{TopCursos: []TopCurso{}},
	}
}
