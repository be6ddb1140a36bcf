package cavaloservice

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

// CavaloRepository define o contrato de persistência que este serviço espera.
type CavaloRepository interface {
	Create(ctx context.Context, cavalo domain.Cavalo) (domain.Cavalo, error)
	FindByID(ctx context.Context, id string) (domain.Cavalo, error)
	FindAll(ctx context.Context, filter domain.CavaloFilter) ([]domain.Cavalo, error)
	Update(ctx context.Context, id string, update domain.CavaloUpdate) (domain.Cavalo, error)
	SetDisponibilidade(ctx context.Context, id string, disponivel bool) (domain.Cavalo, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.CavaloStats, error)
}

// UserFinder é o recorte do repositório de usuários usado para resolver o dono.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// CreateInput é o payload de criação de cavalo.
type CreateInput struct {
	Nome       string  `json:"nome"`
	Idade      int     `json:"idade"`
	Raca       string  `json:"raca"`
	Preco      float64 `json:"preco"`
	Descricao  string  `json:"descricao,omitempty"`
	Premios    string  `json:"premios,omitempty"`
	Disponivel *bool   `json:"disponivel,omitempty"`
	DonoID     string  `json:"donoId"`
}

// CavaloService implementa a lógica de negócio de cavalos.
type CavaloService struct {
	CavaloRepo CavaloRepository
	UserRepo   UserFinder
	logger     logger.Logger
}

// NewService cria uma nova instância do CavaloService.
func NewService(cavaloRepo CavaloRepository, userRepo UserFinder, logger logger.Logger) *CavaloService {
	return &CavaloService{
		CavaloRepo: cavaloRepo,
		UserRepo:   userRepo,
		logger:     logger,
	}
}

// normalizeFilter sanitiza a paginação: página mínima 1, limite padrão 50,
// teto de 100 itens por página.
func normalizeFilter(filter domain.CavaloFilter) domain.CavaloFilter {
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

// validateCampos valida as faixas numéricas compartilhadas por criação e atualização.
func validateCampos(preco *float64, idade *int) error {
	if preco != nil && *preco <= 0 {
		return apperror.NewValidationError("Preço deve ser maior que zero.")
	}
	if idade != nil && (*idade < 1 || *idade > 50) {
		return apperror.NewValidationError("Idade deve ser entre 1 e 50 anos.")
	}
	return nil
}

// GetCavalos retorna os cavalos que satisfazem o filtro.
func (s *CavaloService) GetCavalos(ctx context.Context, filter domain.CavaloFilter) ([]domain.Cavalo, error) {
	return s.CavaloRepo.FindAll(ctx, normalizeFilter(filter))
}

// GetCavaloByID busca um cavalo pelo ID.
func (s *CavaloService) GetCavaloByID(ctx context.Context, id string) (domain.Cavalo, error) {
	return s.CavaloRepo.FindByID(ctx, id)
}

// GetCavalosByDono retorna os cavalos de um dono específico.
func (s *CavaloService) GetCavalosByDono(ctx context.Context, donoID string) ([]domain.Cavalo, error) {
	if _, err := s.UserRepo.FindByID(ctx, donoID); err != nil {
		return nil, err
	}
	return s.CavaloRepo.FindAll(ctx, normalizeFilter(domain.CavaloFilter{DonoID: donoID}))
}

// CreateCavalo valida e persiste um novo cavalo vinculado a um dono existente.
func (s *CavaloService) CreateCavalo(ctx context.Context, input CreateInput) (domain.Cavalo, error) {
	if input.Nome == "" || input.Raca == "" {
		return domain.Cavalo{}, apperror.NewValidationError("Nome e raça são obrigatórios.")
	}
	if err := validateCampos(&input.Preco, &input.Idade); err != nil {
		return domain.Cavalo{}, err
	}

	dono, err := s.UserRepo.FindByID(ctx, input.DonoID)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.Cavalo{}, apperror.NewNotFoundError("Dono (proprietário) não encontrado")
		}
		return domain.Cavalo{}, err
	}

	disponivel := true
	if input.Disponivel != nil {
		disponivel = *input.Disponivel
	}

	cavalo := domain.Cavalo{
		Nome:       input.Nome,
		Idade:      input.Idade,
		Raca:       input.Raca,
		Preco:      input.Preco,
		Descricao:  input.Descricao,
		Premios:    input.Premios,
		Disponivel: disponivel,
		Dono:       dono.Resumo(),
	}

	return s.CavaloRepo.Create(ctx, cavalo)
}

// UpdateCavalo aplica uma atualização parcial com as mesmas validações numéricas.
func (s *CavaloService) UpdateCavalo(ctx context.Context, id string, update domain.CavaloUpdate) (domain.Cavalo, error) {
	if _, err := s.CavaloRepo.FindByID(ctx, id); err != nil {
		return domain.Cavalo{}, err
	}

	if err := validateCampos(update.Preco, update.Idade); err != nil {
		return domain.Cavalo{}, err
	}

	return s.CavaloRepo.Update(ctx, id, update)
}

// DeleteCavalo remove um cavalo; anúncios dependentes cascateiam.
func (s *CavaloService) DeleteCavalo(ctx context.Context, id string) error {
	return s.CavaloRepo.Delete(ctx, id)
}

// MarkAsUnavailable marca o cavalo como indisponível.
// Marcar um cavalo já indisponível falha sem alterar o registro.
func (s *CavaloService) MarkAsUnavailable(ctx context.Context, id string) (domain.Cavalo, error) {
	existing, err := s.CavaloRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Cavalo{}, err
	}

	if !existing.Disponivel {
		return domain.Cavalo{}, apperror.NewValidationError("Cavalo já está indisponível.")
	}

	return s.CavaloRepo.SetDisponibilidade(ctx, id, false)
}

// MarkAsAvailable marca o cavalo como disponível.
// Marcar um cavalo já disponível falha sem alterar o registro.
func (s *CavaloService) MarkAsAvailable(ctx context.Context, id string) (domain.Cavalo, error) {
	existing, err := s.CavaloRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Cavalo{}, err
	}

	if existing.Disponivel {
		return domain.Cavalo{}, apperror.NewValidationError("Cavalo já está disponível.")
	}

	return s.CavaloRepo.SetDisponibilidade(ctx, id, true)
}

// GetCavaloStats retorna os contadores agregados de cavalos.
func (s *CavaloService) GetCavaloStats(ctx context.Context) (domain.CavaloStats, error) {
	return s.CavaloRepo.Stats(ctx)
}
