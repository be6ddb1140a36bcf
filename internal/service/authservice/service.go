package authservice

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
)

// UserRepository define o contrato de persistência que este serviço espera.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateComprador(ctx context.Context, user domain.User) (domain.User, error)
	CreateVendedor(ctx context.Context, user domain.User) (domain.User, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, email string, tipo string) (string, error)
}

// RegisterInput é o payload de entrada para o registro.
type RegisterInput struct {
	Nome     string             `json:"nome"`
	Email    string             `json:"email"`
	Senha    string             `json:"senha"`
	Celular  string             `json:"celular,omitempty"`
	Endereco string             `json:"endereco,omitempty"`
	Tipo     domain.TipoUsuario `json:"tipo"`
	Nota     *float64           `json:"nota,omitempty"`
}

// AuthResponse é a resposta de login e registro: token + projeção pública.
type AuthResponse struct {
	Token string            `json:"token"`
	User  domain.UserResumo `json:"user"`
}

// AuthService implementa o fluxo de autenticação: registro, login e emissão de JWT.
type AuthService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do AuthService.
func NewService(repo UserRepository, tokenSvc TokenService, logger logger.Logger) *AuthService {
	return &AuthService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		logger:   logger,
	}
}

// normalizeEmail aplica a normalização usada em toda a base: trim + minúsculas.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login autentica um usuário de qualquer variante e emite um JWT.
// Email inexistente e senha incorreta falham com a MESMA mensagem, para não
// permitir enumeração de contas.
func (s *AuthService) Login(ctx context.Context, email string, senha string) (AuthResponse, error) {
	email = normalizeEmail(email)
	if email == "" || senha == "" {
		return AuthResponse{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return AuthResponse{}, apperror.NewUnauthorizedError("Email ou senha inválidos")
		}
		return AuthResponse{}, err
	}

	// Sempre compara contra o hash salvo; nunca igualdade de texto puro.
	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(senha)); err != nil {
		return AuthResponse{}, apperror.NewUnauthorizedError("Email ou senha inválidos")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Email, string(user.Tipo))
	if err != nil {
		return AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID, "tipo": string(user.Tipo)})
	return AuthResponse{Token: tokenString, User: user.Resumo()}, nil
}

// Register cria um novo usuário da variante informada e emite um JWT com o
// mesmo formato do login. Ao contrário do login, a colisão de email é
// divulgada explicitamente: registro pode revelar o conflito sem risco.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)

	if input.Nome == "" || input.Email == "" || input.Senha == "" {
		return AuthResponse{}, apperror.NewValidationError("Nome, email e senha são obrigatórios.")
	}
	if input.Tipo != domain.TipoComprador && input.Tipo != domain.TipoVendedor {
		return AuthResponse{}, apperror.NewValidationError("Tipo deve ser 'Comprador' ou 'Vendedor'.")
	}
	if input.Nota != nil && (*input.Nota < 0 || *input.Nota > 5) {
		return AuthResponse{}, apperror.NewValidationError("Nota deve ser entre 0 e 5.")
	}

	exists, err := s.UserRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return AuthResponse{}, err
	}
	if exists {
		return AuthResponse{}, apperror.NewConflictError("Email já cadastrado")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Senha), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newUser := domain.User{
		Nome:      input.Nome,
		Email:     input.Email,
		SenhaHash: string(hashedPassword),
		Celular:   input.Celular,
		Endereco:  input.Endereco,
	}

	var user domain.User
	if input.Tipo == domain.TipoComprador {
		user, err = s.UserRepo.CreateComprador(ctx, newUser)
	} else {
		// Nota padrão 0.0 quando não informada para um novo vendedor.
		if input.Nota != nil {
			newUser.Nota = *input.Nota
		}
		user, err = s.UserRepo.CreateVendedor(ctx, newUser)
	}
	if err != nil {
		return AuthResponse{}, err
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Email, string(user.Tipo))
	if err != nil {
		return AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID, "tipo": string(user.Tipo)})
	return AuthResponse{Token: tokenString, User: user.Resumo()}, nil
}
