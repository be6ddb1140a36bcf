package userservice

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
)

// UserRepository define o contrato de persistência que este serviço espera.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindAllByTipo(ctx context.Context, tipo domain.TipoUsuario) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateComprador(ctx context.Context, user domain.User) (domain.User, error)
	CreateVendedor(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error)
	Delete(ctx context.Context, id string) error
	RateVendedor(ctx context.Context, vendedorID string, rating int) (domain.User, error)
}

// CreateInput é o payload de criação direta de usuário (fora do fluxo de registro).
type CreateInput struct {
	Nome     string   `json:"nome"`
	Email    string   `json:"email"`
	Senha    string   `json:"senha"`
	Celular  string   `json:"celular,omitempty"`
	Endereco string   `json:"endereco,omitempty"`
	Nota     *float64 `json:"nota,omitempty"`
}

// UserService implementa a lógica de negócio da hierarquia de usuários:
// CRUD das duas variantes e o fluxo de avaliação de vendedores.
type UserService struct {
	UserRepo UserRepository
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		logger:   logger,
	}
}

// GetAllUsers retorna todos os usuários, das duas variantes.
func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.UserRepo.FindAll(ctx)
}

// GetUserByID busca um usuário pelo ID, em qualquer variante.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// GetAllCompradores retorna todos os usuários da variante Comprador.
func (s *UserService) GetAllCompradores(ctx context.Context) ([]domain.User, error) {
	return s.UserRepo.FindAllByTipo(ctx, domain.TipoComprador)
}

// GetAllVendedores retorna todos os usuários da variante Vendedor.
func (s *UserService) GetAllVendedores(ctx context.Context) ([]domain.User, error) {
	return s.UserRepo.FindAllByTipo(ctx, domain.TipoVendedor)
}

// validateCreate aplica as validações comuns de criação e normaliza o email.
func (s *UserService) validateCreate(ctx context.Context, input *CreateInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Nome == "" || input.Email == "" || input.Senha == "" {
		return apperror.NewValidationError("Nome, email e senha são obrigatórios.")
	}

	exists, err := s.UserRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflictError("Email já cadastrado")
	}

	return nil
}

// buildUser monta a entidade com a senha já hasheada.
func buildUser(input CreateInput) (domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Senha), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	return domain.User{
		Nome:      input.Nome,
		Email:     input.Email,
		SenhaHash: string(hashedPassword),
		Celular:   input.Celular,
		Endereco:  input.Endereco,
	}, nil
}

// CreateComprador cria um novo usuário da variante Comprador.
func (s *UserService) CreateComprador(ctx context.Context, input CreateInput) (domain.User, error) {
	if err := s.validateCreate(ctx, &input); err != nil {
		return domain.User{}, err
	}

	user, err := buildUser(input)
	if err != nil {
		return domain.User{}, err
	}

	return s.UserRepo.CreateComprador(ctx, user)
}

// CreateVendedor cria um novo usuário da variante Vendedor.
// Nota padrão 0.0 quando não informada.
func (s *UserService) CreateVendedor(ctx context.Context, input CreateInput) (domain.User, error) {
	if input.Nota != nil && (*input.Nota < 0 || *input.Nota > 5) {
		return domain.User{}, apperror.NewValidationError("Nota deve ser entre 0 e 5.")
	}

	if err := s.validateCreate(ctx, &input); err != nil {
		return domain.User{}, err
	}

	user, err := buildUser(input)
	if err != nil {
		return domain.User{}, err
	}
	if input.Nota != nil {
		user.Nota = *input.Nota
	}

	return s.UserRepo.CreateVendedor(ctx, user)
}

// UpdateUser aplica uma atualização parcial ao usuário, exigindo que a
// variante informada corresponda à variante armazenada: tentar atualizar um
// Comprador pelo caminho de Vendedor (ou vice-versa) falha com erro de tipo.
func (s *UserService) UpdateUser(ctx context.Context, id string, tipo domain.TipoUsuario, update domain.UserUpdate) (domain.User, error) {
	if tipo != domain.TipoComprador && tipo != domain.TipoVendedor {
		return domain.User{}, apperror.NewValidationError("Tipo deve ser 'Comprador' ou 'Vendedor'.")
	}

	existing, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if existing.Tipo != tipo {
		return domain.User{}, apperror.NewValidationError("Usuário não é um " + string(tipo) + ".")
	}

	if update.Nota != nil && tipo != domain.TipoVendedor {
		return domain.User{}, apperror.NewValidationError("Apenas vendedores possuem nota.")
	}
	if update.Nota != nil && (*update.Nota < 0 || *update.Nota > 5) {
		return domain.User{}, apperror.NewValidationError("Nota deve ser entre 0 e 5.")
	}

	// Mudança de email exige nova checagem de unicidade entre as variantes.
	if update.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &normalized
		if normalized != existing.Email {
			exists, err := s.UserRepo.ExistsByEmail(ctx, normalized)
			if err != nil {
				return domain.User{}, err
			}
			if exists {
				return domain.User{}, apperror.NewConflictError("Email já cadastrado")
			}
		}
	}

	// A senha nunca chega em texto puro ao repositório.
	if update.Senha != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*update.Senha), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		hashed := string(hashedPassword)
		update.Senha = &hashed
	}

	return s.UserRepo.Update(ctx, id, update)
}

// DeleteUser remove um usuário pelo ID, sem distinguir a variante.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.UserRepo.Delete(ctx, id)
}

// GetUserStats agrega os contadores por variante e a nota média dos vendedores.
func (s *UserService) GetUserStats(ctx context.Context) (domain.UserStats, error) {
	compradores, err := s.UserRepo.FindAllByTipo(ctx, domain.TipoComprador)
	if err != nil {
		return domain.UserStats{}, err
	}

	vendedores, err := s.UserRepo.FindAllByTipo(ctx, domain.TipoVendedor)
	if err != nil {
		return domain.UserStats{}, err
	}

	stats := domain.UserStats{
		Total:       len(compradores) + len(vendedores),
		Compradores: len(compradores),
		Vendedores:  len(vendedores),
	}

	if len(vendedores) > 0 {
		var soma float64
		for _, v := range vendedores {
			soma += v.Nota
		}
		stats.AverageVendedorRating = soma / float64(len(vendedores))
	}

	return stats, nil
}

// RateVendedor registra uma avaliação inteira de 1 a 5 para um vendedor e
// devolve o vendedor com a média recalculada. O recálculo acontece em uma
// única instrução UPDATE no repositório, portanto avaliações concorrentes do
// mesmo vendedor não se perdem.
func (s *UserService) RateVendedor(ctx context.Context, vendedorID string, rating int) (domain.User, error) {
	if rating < 1 || rating > 5 {
		return domain.User{}, apperror.NewValidationError("Avaliação deve ser um inteiro entre 1 e 5.")
	}

	user, err := s.UserRepo.FindByID(ctx, vendedorID)
	if err != nil {
		return domain.User{}, err
	}

	if user.Tipo != domain.TipoVendedor {
		return domain.User{}, apperror.NewValidationError("Usuário não é um vendedor.")
	}

	return s.UserRepo.RateVendedor(ctx, vendedorID, rating)
}
