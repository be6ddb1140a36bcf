package authservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/service/authservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateComprador(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) CreateVendedor(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockTokenService simula a emissão de JWT.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, email string, tipo string) (string, error) {
	args := m.Called(userID, email, tipo)
	return args.String(0), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func hashSenha(t *testing.T, senha string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

// --- Testes para Login ---

func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	user := domain.User{
		ID:        uuid.New().String(),
		Nome:      "Maria Souza",
		Email:     "maria@example.com",
		SenhaHash: hashSenha(t, "senha-secreta"),
		Tipo:      domain.TipoVendedor,
	}

	mockRepo.On("FindByEmail", mock.Anything, "maria@example.com").Return(user, nil)
	mockToken.On("GenerateToken", user.ID, user.Email, "Vendedor").Return("jwt-token", nil)

	result, err := svc.Login(context.Background(), "  Maria@Example.com ", "senha-secreta")

	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, user.Email, result.User.Email)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

func TestLogin_Fail_EmailDesconhecido(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	mockRepo.On("FindByEmail", mock.Anything, "fantasma@example.com").
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado"))

	_, err := svc.Login(context.Background(), "fantasma@example.com", "qualquer")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Equal(t, "Email ou senha inválidos", err.Error())
	mockToken.AssertNotCalled(t, "GenerateToken")
}

func TestLogin_Fail_SenhaIncorreta(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	user := domain.User{
		ID:        uuid.New().String(),
		Email:     "joao@example.com",
		SenhaHash: hashSenha(t, "senha-correta"),
		Tipo:      domain.TipoComprador,
	}

	mockRepo.On("FindByEmail", mock.Anything, "joao@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), "joao@example.com", "senha-errada")

	// A mensagem é idêntica à de email desconhecido, para não permitir
	// enumeração de contas.
	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Equal(t, "Email ou senha inválidos", err.Error())
	mockToken.AssertNotCalled(t, "GenerateToken")
}

func TestLogin_Fail_CamposVazios(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	_, err := svc.Login(context.Background(), "", "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByEmail")
}

// --- Testes para Register ---

func TestRegister_Success_Comprador(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	created := domain.User{
		ID:    uuid.New().String(),
		Nome:  "Ana Lima",
		Email: "ana@example.com",
		Tipo:  domain.TipoComprador,
	}

	mockRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	// A senha deve chegar ao repositório hasheada, nunca em texto puro.
	mockRepo.On("CreateComprador", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "ana@example.com" &&
			u.SenhaHash != "minha-senha" &&
			bcrypt.CompareHashAndPassword([]byte(u.SenhaHash), []byte("minha-senha")) == nil
	})).Return(created, nil)
	mockToken.On("GenerateToken", created.ID, created.Email, "Comprador").Return("jwt-token", nil)

	result, err := svc.Register(context.Background(), authservice.RegisterInput{
		Nome:  "Ana Lima",
		Email: "Ana@Example.com",
		Senha: "minha-senha",
		Tipo:  domain.TipoComprador,
	})

	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, created.ID, result.User.ID)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

func TestRegister_Success_VendedorComNota(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	nota := 4.5
	created := domain.User{
		ID:    uuid.New().String(),
		Email: "vend@example.com",
		Tipo:  domain.TipoVendedor,
		Nota:  nota,
	}

	mockRepo.On("ExistsByEmail", mock.Anything, "vend@example.com").Return(false, nil)
	mockRepo.On("CreateVendedor", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Nota == nota
	})).Return(created, nil)
	mockToken.On("GenerateToken", created.ID, created.Email, "Vendedor").Return("jwt-token", nil)

	result, err := svc.Register(context.Background(), authservice.RegisterInput{
		Nome:  "Vendedor Teste",
		Email: "vend@example.com",
		Senha: "senha",
		Tipo:  domain.TipoVendedor,
		Nota:  &nota,
	})

	assert.NoError(t, err)
	assert.Equal(t, created.ID, result.User.ID)
	mockRepo.AssertExpectations(t)
}

func TestRegister_Fail_EmailDuplicado(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	mockRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), authservice.RegisterInput{
		Nome:  "Ana Lima",
		Email: "ana@example.com",
		Senha: "senha",
		Tipo:  domain.TipoComprador,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "Email já cadastrado")
	mockRepo.AssertNotCalled(t, "CreateComprador")
}

func TestRegister_Fail_TipoInvalido(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	_, err := svc.Register(context.Background(), authservice.RegisterInput{
		Nome:  "Fulano",
		Email: "fulano@example.com",
		Senha: "senha",
		Tipo:  domain.TipoUsuario("Admin"),
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ExistsByEmail")
}

func TestRegister_Fail_NotaForaDaFaixa(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	nota := 7.0
	_, err := svc.Register(context.Background(), authservice.RegisterInput{
		Nome:  "Vendedor Teste",
		Email: "vend@example.com",
		Senha: "senha",
		Tipo:  domain.TipoVendedor,
		Nota:  &nota,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "CreateVendedor")
}

func TestRegister_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := authservice.NewService(mockRepo, mockToken, newTestLogger())

	repoError := errors.New("db timeout")
	mockRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, repoError)

	_, err := svc.Register(context.Background(), authservice.RegisterInput{
		Nome:  "Ana Lima",
		Email: "ana@example.com",
		Senha: "senha",
		Tipo:  domain.TipoComprador,
	})

	assert.Error(t, err)
	assert.Equal(t, repoError, err)
}
