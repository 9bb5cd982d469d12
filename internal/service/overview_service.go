package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/painel-admin-api/internal/dto"
	"github.com/noah-isme/painel-admin-api/internal/upstream"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
)

const topCursosLimit = 5

type upstreamFetcher interface {
	Fetch(ctx context.Context, endpoint upstream.Endpoint) ([]byte, error)
}

var (
	plataformaEndpoints = []upstream.Endpoint{
		upstream.EndpointCursosOverview,
		upstream.EndpointAlunos,
		upstream.EndpointInstrutores,
		upstream.EndpointUsuarios,
		upstream.EndpointEmpresasDashboard,
		upstream.EndpointVagas,
	}
	pedagogicoEndpoints = []upstream.Endpoint{
		upstream.EndpointCursosOverview,
		upstream.EndpointAlunos,
		upstream.EndpointInstrutores,
		upstream.EndpointUsuarios,
	}
)

// OverviewServiceConfig tunes the dashboard aggregator.
type OverviewServiceConfig struct {
	CacheTTL time.Duration
	// Development enables debug logging of expected 403 answers.
	Development bool
}

// OverviewServiceParams groups constructor dependencies.
type OverviewServiceParams struct {
	Upstream upstreamFetcher
	Cache    *CacheService
	Logger   *zap.Logger
	Config   OverviewServiceConfig
}

// OverviewService composes the platform dashboard from several platform API calls.
type OverviewService struct {
	upstream upstreamFetcher
	cache    *CacheService
	logger   *zap.Logger
	cfg      OverviewServiceConfig
}

// NewOverviewService constructs an OverviewService.
func NewOverviewService(params OverviewServiceParams) *OverviewService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverviewService{
		upstream: params.Upstream,
		cache:    params.Cache,
		logger:   logger,
		cfg:      cfg,
	}
}

// Plataforma returns the full overview. Unavailable sources degrade to zero
// values and are listed in the response message.
func (s *OverviewService) Plataforma(ctx context.Context, viewerID string) (*dto.PlataformaOverviewResponse, bool, error) {
	key := overviewCacheKey("full", viewerID)
	if cached, hit := s.tryCache(ctx, key); hit {
		return cached, true, nil
	}

	resp, err := s.composePlataforma(ctx)
	if err != nil {
		return nil, false, err
	}
	if resp.Message == "" {
		s.persistCache(ctx, key, resp)
	}
	return resp, false, nil
}

// Pedagogico returns the restricted overview. Companies, jobs and billing are
// always zeroed; 403 answers mean "no access" and zero their section.
func (s *OverviewService) Pedagogico(ctx context.Context, viewerID string) (*dto.PlataformaOverviewResponse, bool, error) {
	key := overviewCacheKey("pedagogico", viewerID)
	if cached, hit := s.tryCache(ctx, key); hit {
		return cached, true, nil
	}

	resp, err := s.composePedagogico(ctx)
	if err != nil {
		resp, err = s.resolvePedagogicoFailure(err)
		if err != nil {
			return nil, false, err
		}
		return resp, false, nil
	}
	s.persistCache(ctx, key, resp)
	return resp, false, nil
}

// Invalidate drops every cached overview variant of viewerID.
func (s *OverviewService) Invalidate(ctx context.Context, viewerID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, overviewCacheKey("*", viewerID))
}

// resolvePedagogicoFailure handles errors escaping the restricted assembly:
// a forbidden error becomes an all-defaults success, anything else is returned.
func (s *OverviewService) resolvePedagogicoFailure(err error) (*dto.PlataformaOverviewResponse, error) {
	if upstream.IsForbidden(err) {
		if s.cfg.Development {
			s.logger.Debug("pedagogico overview forbidden, returning defaults", zap.Error(err))
		}
		return &dto.PlataformaOverviewResponse{Success: true, Data: dto.EmptyPlataformaOverviewData()}, nil
	}
	return nil, err
}

type settledCall struct {
	body []byte
	err  error
}

// fetchAll issues every call concurrently and waits for all of them. A failed
// call never cancels its siblings.
func (s *OverviewService) fetchAll(ctx context.Context, endpoints []upstream.Endpoint) map[upstream.Endpoint]settledCall {
	results := make([]settledCall, len(endpoints))
	var g errgroup.Group
	for i, endpoint := range endpoints {
		i, endpoint := i, endpoint
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, endpoint)
			return nil
		})
	}
	_ = g.Wait()

	settled := make(map[upstream.Endpoint]settledCall, len(endpoints))
	for i, endpoint := range endpoints {
		settled[endpoint] = results[i]
	}
	return settled
}

func (s *OverviewService) fetchOne(ctx context.Context, endpoint upstream.Endpoint) (result settledCall) {
	defer func() {
		if r := recover(); r != nil {
			result = settledCall{err: fmt.Errorf("upstream %s panicked: %v", endpoint, r)}
		}
	}()
	if s.upstream == nil {
		return settledCall{err: fmt.Errorf("upstream %s: client not configured", endpoint)}
	}
	body, err := s.upstream.Fetch(ctx, endpoint)
	return settledCall{body: body, err: err}
}

// overviewSources holds the decoded lists; nil means the source is unavailable.
type overviewSources struct {
	cursos      *upstream.List[upstream.Curso]
	alunos      *upstream.List[upstream.Pessoa]
	instrutores *upstream.List[upstream.Pessoa]
	usuarios    *upstream.List[upstream.Usuario]
	empresas    *upstream.List[upstream.Empresa]
	vagas       *upstream.List[upstream.Vaga]
}

func decodeSettled[T any](results map[upstream.Endpoint]settledCall, endpoint upstream.Endpoint) (*upstream.List[T], error) {
	result, ok := results[endpoint]
	if !ok {
		return nil, nil
	}
	if result.err != nil {
		return nil, result.err
	}
	list, err := upstream.DecodeList[T](result.body)
	if err != nil {
		return nil, &upstream.Error{Endpoint: endpoint, Message: "unexpected payload", Err: err}
	}
	return &list, nil
}

func (s *OverviewService) composePlataforma(ctx context.Context) (resp *dto.PlataformaOverviewResponse, err error) {
	results := s.fetchAll(ctx, plataformaEndpoints)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("platform overview assembly panicked", zap.Any("panic", r))
			resp = nil
			err = appErrors.Wrap(fmt.Errorf("%v", r), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assemble platform overview")
		}
	}()

	var (
		sources     overviewSources
		unavailable []string
	)
	note := func(endpoint upstream.Endpoint, decodeErr error) {
		if decodeErr == nil {
			return
		}
		unavailable = append(unavailable, string(endpoint))
		s.logger.Warn("overview source unavailable", zap.String("endpoint", string(endpoint)), zap.Error(decodeErr))
	}

	var decodeErr error
	sources.cursos, decodeErr = decodeSettled[upstream.Curso](results, upstream.EndpointCursosOverview)
	note(upstream.EndpointCursosOverview, decodeErr)
	sources.alunos, decodeErr = decodeSettled[upstream.Pessoa](results, upstream.EndpointAlunos)
	note(upstream.EndpointAlunos, decodeErr)
	sources.instrutores, decodeErr = decodeSettled[upstream.Pessoa](results, upstream.EndpointInstrutores)
	note(upstream.EndpointInstrutores, decodeErr)
	sources.usuarios, decodeErr = decodeSettled[upstream.Usuario](results, upstream.EndpointUsuarios)
	note(upstream.EndpointUsuarios, decodeErr)
	sources.empresas, decodeErr = decodeSettled[upstream.Empresa](results, upstream.EndpointEmpresasDashboard)
	note(upstream.EndpointEmpresasDashboard, decodeErr)
	sources.vagas, decodeErr = decodeSettled[upstream.Vaga](results, upstream.EndpointVagas)
	note(upstream.EndpointVagas, decodeErr)

	resp = &dto.PlataformaOverviewResponse{Success: true, Data: assembleOverview(sources, true)}
	if len(unavailable) > 0 {
		resp.Message = "partial data, unavailable sources: " + strings.Join(unavailable, ", ")
	}
	return resp, nil
}

func (s *OverviewService) composePedagogico(ctx context.Context) (resp *dto.PlataformaOverviewResponse, err error) {
	results := s.fetchAll(ctx, pedagogicoEndpoints)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pedagogico overview assembly panicked", zap.Any("panic", r))
			resp = nil
			err = fmt.Errorf("pedagogico overview assembly: %v", r)
		}
	}()

	var sources overviewSources
	var firstErr error
	check := func(endpoint upstream.Endpoint, decodeErr error) bool {
		if decodeErr == nil {
			return true
		}
		if upstream.IsForbidden(decodeErr) {
			if s.cfg.Development {
				s.logger.Debug("pedagogico overview source forbidden", zap.String("endpoint", string(endpoint)))
			}
			return false
		}
		if firstErr == nil {
			firstErr = decodeErr
		}
		return false
	}

	cursos, decodeErr := decodeSettled[upstream.Curso](results, upstream.EndpointCursosOverview)
	if check(upstream.EndpointCursosOverview, decodeErr) {
		sources.cursos = cursos
	}
	alunos, decodeErr := decodeSettled[upstream.Pessoa](results, upstream.EndpointAlunos)
	if check(upstream.EndpointAlunos, decodeErr) {
		sources.alunos = alunos
	}
	instrutores, decodeErr := decodeSettled[upstream.Pessoa](results, upstream.EndpointInstrutores)
	if check(upstream.EndpointInstrutores, decodeErr) {
		sources.instrutores = instrutores
	}
	usuarios, decodeErr := decodeSettled[upstream.Usuario](results, upstream.EndpointUsuarios)
	if check(upstream.EndpointUsuarios, decodeErr) {
		sources.usuarios = usuarios
	}

	if firstErr != nil {
		s.logger.Error("pedagogico overview upstream failure", zap.Error(firstErr))
		return nil, appErrors.Wrap(firstErr, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	return &dto.PlataformaOverviewResponse{Success: true, Data: assembleOverview(sources, false)}, nil
}

// assembleOverview maps the decoded sources onto the aggregate. Totals prefer
// the server-side count; status breakdowns only see the received page.
func assembleOverview(src overviewSources, includeBusiness bool) dto.PlataformaOverviewData {
	data := dto.EmptyPlataformaOverviewData()

	if src.cursos != nil {
		data.MetricasGerais.TotalCursos = src.cursos.Count()
		data.Cursos = summarizeCursos(*src.cursos)
		if includeBusiness {
			data.Faturamento = summarizeFaturamento(src.cursos.Items)
		}
	}
	if src.alunos != nil {
		data.MetricasGerais.TotalAlunos = src.alunos.Count()
		data.Usuarios.Alunos = src.alunos.Count()
	}
	if src.instrutores != nil {
		data.MetricasGerais.TotalInstrutores = src.instrutores.Count()
		data.Usuarios.Instrutores = src.instrutores.Count()
		for _, instrutor := range src.instrutores.Items {
			if normalizeStatus(instrutor.Status) == statusAtivo {
				data.Usuarios.InstrutoresAtivos++
			}
		}
	}
	if src.usuarios != nil {
		summarizeUsuarios(&data, *src.usuarios)
	}
	if !includeBusiness {
		return data
	}
	if src.empresas != nil {
		data.MetricasGerais.TotalEmpresas = src.empresas.Count()
		data.Empresas = summarizeEmpresas(*src.empresas)
	}
	if src.vagas != nil {
		data.MetricasGerais.TotalVagas = src.vagas.Count()
		data.Vagas = summarizeVagas(*src.vagas)
	}
	return data
}

func summarizeCursos(list upstream.List[upstream.Curso]) dto.CursosOverview {
	out := dto.CursosOverview{Total: list.Count()}
	for _, curso := range list.Items {
		switch normalizeStatus(curso.Status) {
		case statusPublicado:
			out.Publicados++
		case statusRascunho:
			out.Rascunho++
		case statusArquivado:
			out.Arquivados++
		}
		out.TotalTurmas += nonNegative(curso.TotalTurmas)
		out.TotalInscricoes += nonNegative(curso.TotalInscricoes)
	}
	return out
}

func summarizeUsuarios(data *dto.PlataformaOverviewData, list upstream.List[upstream.Usuario]) {
	data.MetricasGerais.TotalUsuarios = list.Count()
	data.Usuarios.Total = list.Count()

	roles := map[string]int{}
	for _, usuario := range list.Items {
		switch normalizeStatus(usuario.Status) {
		case statusAtivo:
			data.Usuarios.Ativos++
		case statusInativo:
			data.Usuarios.Inativos++
		case statusBloqueado:
			data.Usuarios.Bloqueados++
		}
		if role := strings.ToUpper(strings.TrimSpace(usuario.Role)); role != "" {
			roles[role]++
		}
	}

	porRole := make([]dto.RoleCount, 0, len(roles))
	for role, total := range roles {
		porRole = append(porRole, dto.RoleCount{Role: role, Total: total})
	}
	sort.Slice(porRole, func(i, j int) bool {
		if porRole[i].Total != porRole[j].Total {
			return porRole[i].Total > porRole[j].Total
		}
		return porRole[i].Role < porRole[j].Role
	})
	data.Usuarios.PorRole = porRole
}

func summarizeEmpresas(list upstream.List[upstream.Empresa]) dto.EmpresasOverview {
	out := dto.EmpresasOverview{Total: list.Count()}
	for _, empresa := range list.Items {
		switch normalizeStatus(empresa.Status) {
		case statusAtivo:
			out.Ativas++
		case statusBloqueado:
			out.Bloqueadas++
		case statusPendente:
			out.Pendentes++
		}
		out.VagasAtivas += nonNegative(empresa.VagasAtivas)
	}
	return out
}

func summarizeVagas(list upstream.List[upstream.Vaga]) dto.VagasOverview {
	out := dto.VagasOverview{Total: list.Count()}
	for _, vaga := range list.Items {
		switch normalizeStatus(vaga.Status) {
		case statusPublicado:
			out.Publicadas++
		case statusEmAnalise:
			out.EmAnalise++
		case statusRascunho:
			out.Rascunho++
		case statusEncerrado:
			out.Encerradas++
		}
	}
	return out
}

// summarizeFaturamento estimates revenue as price times enrollments per course.
func summarizeFaturamento(cursos []upstream.Curso) dto.FaturamentoOverview {
	out := dto.FaturamentoOverview{TopCursos: []dto.TopCurso{}}
	var receita float64
	var inscricoes int
	ranked := make([]dto.TopCurso, 0, len(cursos))
	for _, curso := range cursos {
		count := nonNegative(curso.TotalInscricoes)
		valor := curso.Valor
		if valor < 0 || math.IsNaN(valor) || math.IsInf(valor, 0) {
			valor = 0
		}
		cursoReceita := valor * float64(count)
		receita += cursoReceita
		inscricoes += count
		if cursoReceita > 0 {
			ranked = append(ranked, dto.TopCurso{
				CursoID:    string(curso.ID),
				Titulo:     curso.DisplayName(),
				Inscricoes: count,
				Receita:    round2(cursoReceita),
			})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Receita != ranked[j].Receita {
			return ranked[i].Receita > ranked[j].Receita
		}
		return ranked[i].Inscricoes > ranked[j].Inscricoes
	})
	if len(ranked) > topCursosLimit {
		ranked = ranked[:topCursosLimit]
	}

	out.ReceitaEstimada = round2(receita)
	if inscricoes > 0 {
		out.TicketMedio = round2(receita / float64(inscricoes))
	}
	out.TopCursos = ranked
	return out
}

func (s *OverviewService) tryCache(ctx context.Context, key string) (*dto.PlataformaOverviewResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached dto.PlataformaOverviewResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

func (s *OverviewService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("overview cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func overviewCacheKey(variant, viewerID string) string {
	if viewerID == "" {
		viewerID = "anonymous"
	}
	return fmt.Sprintf("painel:overview:%s:%s", variant, viewerID)
}

// Canonical statuses; upstream services mix Portuguese and English spellings.
const (
	statusAtivo     = "ATIVO"
	statusInativo   = "INATIVO"
	statusBloqueado = "BLOQUEADO"
	statusPendente  = "PENDENTE"
	statusPublicado = "PUBLICADO"
	statusRascunho  = "RASCUNHO"
	statusArquivado = "ARQUIVADO"
	statusEmAnalise = "EM_ANALISE"
	statusEncerrado = "ENCERRADO"
)

var statusSynonyms = map[string]string{
	"ATIVO": statusAtivo, "ATIVA": statusAtivo, "ACTIVE": statusAtivo,
	"INATIVO": statusInativo, "INATIVA": statusInativo, "INACTIVE": statusInativo,
	"BLOQUEADO": statusBloqueado, "BLOQUEADA": statusBloqueado, "BLOCKED": statusBloqueado,
	"SUSPENSO": statusBloqueado, "SUSPENSA": statusBloqueado, "SUSPENDED": statusBloqueado,
	"PENDENTE": statusPendente, "PENDING": statusPendente,
	"PUBLICADO": statusPublicado, "PUBLICADA": statusPublicado, "PUBLISHED": statusPublicado,
	"ABERTA": statusPublicado, "ABERTO": statusPublicado, "OPEN": statusPublicado,
	"RASCUNHO": statusRascunho, "DRAFT": statusRascunho,
	"ARQUIVADO": statusArquivado, "ARQUIVADA": statusArquivado, "ARCHIVED": statusArquivado,
	"EM_ANALISE": statusEmAnalise, "EM_ANÁLISE": statusEmAnalise, "IN_REVIEW": statusEmAnalise,
	"UNDER_REVIEW": statusEmAnalise,
	"ENCERRADO": statusEncerrado, "ENCERRADA": statusEncerrado, "CLOSED": statusEncerrado,
	"EXPIRADO": statusEncerrado, "EXPIRADA": statusEncerrado, "EXPIRED": statusEncerrado,
}

func normalizeStatus(raw string) string {
	status := strings.ToUpper(strings.TrimSpace(raw))
	status = strings.NewReplacer(" ", "_", "-", "_").Replace(status)
	if canonical, ok := statusSynonyms[status]; ok {
		return canonical
	}
	return status
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
