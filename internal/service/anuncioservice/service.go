package anuncioservice

import (
	"context"
	"errors"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
)

// Limites de paginação das listagens.
const (
	defaultLimit = 50
	maxLimit     = 100
)

// AnuncioRepository define o contrato de persistência que este serviço espera.
type AnuncioRepository interface {
	Create(ctx context.Context, anuncio domain.Anuncio) (domain.Anuncio, error)
	FindByID(ctx context.Context, id string) (domain.Anuncio, error)
	FindAll(ctx context.Context, filter domain.AnuncioFilter) ([]domain.Anuncio, error)
	Update(ctx context.Context, id string, update domain.AnuncioUpdate) (domain.Anuncio, error)
	SetAtivo(ctx context.Context, id string, ativo bool) (domain.Anuncio, error)
	Delete(ctx context.Context, id string) error
}

// UserFinder é o recorte do repositório de usuários usado para resolver o vendedor.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// CavaloFinder é o recorte do repositório de cavalos usado para resolver o cavalo.
type CavaloFinder interface {
	FindByID(ctx context.Context, id string) (domain.Cavalo, error)
}

// CreateInput é o payload de criação de anúncio.
type CreateInput struct {
	Titulo     string  `json:"titulo"`
	Tipo       string  `json:"tipo"`
	Descricao  string  `json:"descricao,omitempty"`
	Preco      float64 `json:"preco"`
	Ativo      *bool   `json:"ativo,omitempty"`
	VendedorID string  `json:"vendedorId"`
	CavaloID   string  `json:"cavaloId"`
}

// AnuncioService implementa a lógica de negócio de anúncios.
type AnuncioService struct {
	AnuncioRepo AnuncioRepository
	UserRepo    UserFinder
	CavaloRepo  CavaloFinder
	logger      logger.Logger
}

// NewService cria uma nova instância do AnuncioService.
func NewService(anuncioRepo AnuncioRepository, userRepo UserFinder, cavaloRepo CavaloFinder, logger logger.Logger) *AnuncioService {
	return &AnuncioService{
		AnuncioRepo: anuncioRepo,
		UserRepo:    userRepo,
		CavaloRepo:  cavaloRepo,
		logger:      logger,
	}
}

// normalizeFilter sanitiza a paginação das listagens de anúncios.
func normalizeFilter(filter domain.AnuncioFilter) domain.AnuncioFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	return filter
}

// GetAnuncios retorna os anúncios que satisfazem o filtro.
func (s *AnuncioService) GetAnuncios(ctx context.Context, filter domain.AnuncioFilter) ([]domain.Anuncio, error) {
	return s.AnuncioRepo.FindAll(ctx, normalizeFilter(filter))
}

// GetAnuncioByID busca um anúncio pelo ID.
func (s *AnuncioService) GetAnuncioByID(ctx context.Context, id string) (domain.Anuncio, error) {
	return s.AnuncioRepo.FindByID(ctx, id)
}

// GetAnunciosByVendedor retorna os anúncios de um vendedor específico.
func (s *AnuncioService) GetAnunciosByVendedor(ctx context.Context, vendedorID string) ([]domain.Anuncio, error) {
	if _, err := s.UserRepo.FindByID(ctx, vendedorID); err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, apperror.NewNotFoundError("Vendedor não encontrado")
		}
		return nil, err
	}
	return s.AnuncioRepo.FindAll(ctx, normalizeFilter(domain.AnuncioFilter{VendedorID: vendedorID}))
}

// CreateAnuncio valida e persiste um novo anúncio referenciando um vendedor
// e um cavalo existentes.
func (s *AnuncioService) CreateAnuncio(ctx context.Context, input CreateInput) (domain.Anuncio, error) {
	if input.Titulo == "" || input.Tipo == "" {
		return domain.Anuncio{}, apperror.NewValidationError("Título e tipo são obrigatórios.")
	}
	if input.Preco <= 0 {
		return domain.Anuncio{}, apperror.NewValidationError("Preço deve ser maior que zero.")
	}

	vendedor, err := s.UserRepo.FindByID(ctx, input.VendedorID)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.Anuncio{}, apperror.NewNotFoundError("Vendedor não encontrado")
		}
		return domain.Anuncio{}, err
	}

	cavalo, err := s.CavaloRepo.FindByID(ctx, input.CavaloID)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.Anuncio{}, apperror.NewNotFoundError("Cavalo não encontrado")
		}
		return domain.Anuncio{}, err
	}

	ativo := true
	if input.Ativo != nil {
		ativo = *input.Ativo
	}

	anuncio := domain.Anuncio{
		Titulo:    input.Titulo,
		Tipo:      input.Tipo,
		Descricao: input.Descricao,
		Preco:     input.Preco,
		Ativo:     ativo,
		Vendedor:  vendedor.Resumo(),
		Cavalo:    cavalo.Resumo(),
	}

	return s.AnuncioRepo.Create(ctx, anuncio)
}

// UpdateAnuncio aplica uma atualização parcial com a mesma validação de preço.
func (s *AnuncioService) UpdateAnuncio(ctx context.Context, id string, update domain.AnuncioUpdate) (domain.Anuncio, error) {
	if _, err := s.AnuncioRepo.FindByID(ctx, id); err != nil {
		return domain.Anuncio{}, err
	}

	if update.Preco != nil && *update.Preco <= 0 {
		return domain.Anuncio{}, apperror.NewValidationError("Preço deve ser maior que zero.")
	}

	return s.AnuncioRepo.Update(ctx, id, update)
}

// DeleteAnuncio remove um anúncio pelo ID.
func (s *AnuncioService) DeleteAnuncio(ctx context.Context, id string) error {
	return s.AnuncioRepo.Delete(ctx, id)
}

// MarkAsInactive desativa o anúncio; desativar um anúncio já inativo falha.
func (s *AnuncioService) MarkAsInactive(ctx context.Context, id string) (domain.Anuncio, error) {
	existing, err := s.AnuncioRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Anuncio{}, err
	}

	if !existing.Ativo {
		return domain.Anuncio{}, apperror.NewValidationError("Anúncio já está inativo.")
	}

	return s.AnuncioRepo.SetAtivo(ctx, id, false)
}

// MarkAsActive reativa o anúncio; reativar um anúncio já ativo falha.
func (s *AnuncioService) MarkAsActive(ctx context.Context, id string) (domain.Anuncio, error) {
	existing, err := s.AnuncioRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Anuncio{}, err
	}

	if existing.Ativo {
		return domain.Anuncio{}, apperror.NewValidationError("Anúncio já está ativo.")
	}

	return s.AnuncioRepo.SetAtivo(ctx, id, true)
}
