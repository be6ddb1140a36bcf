package anuncioservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/service/anuncioservice"
)

// MockAnuncioRepository é uma implementação mock da interface AnuncioRepository
type MockAnuncioRepository struct {
	mock.Mock
}

func (m *MockAnuncioRepository) Create(ctx context.Context, anuncio domain.Anuncio) (domain.Anuncio, error) {
	args := m.Called(ctx, anuncio)
	return args.Get(0).(domain.Anuncio), args.Error(1)
}

func (m *MockAnuncioRepository) FindByID(ctx context.Context, id string) (domain.Anuncio, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Anuncio), args.Error(1)
}

func (m *MockAnuncioRepository) FindAll(ctx context.Context, filter domain.AnuncioFilter) ([]domain.Anuncio, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Anuncio), args.Error(1)
}

func (m *MockAnuncioRepository) Update(ctx context.Context, id string, update domain.AnuncioUpdate) (domain.Anuncio, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Anuncio), args.Error(1)
}

func (m *MockAnuncioRepository) SetAtivo(ctx context.Context, id string, ativo bool) (domain.Anuncio, error) {
	args := m.Called(ctx, id, ativo)
	return args.Get(0).(domain.Anuncio), args.Error(1)
}

func (m *MockAnuncioRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserFinder resolve o vendedor do anúncio.
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockCavaloFinder resolve o cavalo do anúncio.
type MockCavaloFinder struct {
	mock.Mock
}

func (m *MockCavaloFinder) FindByID(ctx context.Context, id string) (domain.Cavalo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Cavalo), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func newTestService() (*anuncioservice.AnuncioService, *MockAnuncioRepository, *MockUserFinder, *MockCavaloFinder) {
	mockRepo := new(MockAnuncioRepository)
	mockUsers := new(MockUserFinder)
	mockCavalos := new(MockCavaloFinder)
	svc := anuncioservice.NewService(mockRepo, mockUsers, mockCavalos, newTestLogger())
	return svc, mockRepo, mockUsers, mockCavalos
}

// --- Testes para CreateAnuncio ---

func TestCreateAnuncio_Success(t *testing.T) {
	svc, mockRepo, mockUsers, mockCavalos := newTestService()

	vendedor := domain.User{ID: uuid.New().String(), Nome: "Carlos", Tipo: domain.TipoVendedor}
	cavalo := domain.Cavalo{ID: uuid.New().String(), Nome: "Relâmpago", Raca: "Mangalarga", Idade: 7}

	created := domain.Anuncio{
		ID:       uuid.New().String(),
		Titulo:   "Cavalo premiado",
		Tipo:     "Venda",
		Preco:    30000,
		Ativo:    true,
		Vendedor: vendedor.Resumo(),
		Cavalo:   cavalo.Resumo(),
	}

	mockUsers.On("FindByID", mock.Anything, vendedor.ID).Return(vendedor, nil)
	mockCavalos.On("FindByID", mock.Anything, cavalo.ID).Return(cavalo, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(a domain.Anuncio) bool {
		// Ativo padrão é true quando omitido no payload.
		return a.Ativo && a.Vendedor.ID == vendedor.ID && a.Cavalo.ID == cavalo.ID
	})).Return(created, nil)

	result, err := svc.CreateAnuncio(context.Background(), anuncioservice.CreateInput{
		Titulo:     "Cavalo premiado",
		Tipo:       "Venda",
		Preco:      30000,
		VendedorID: vendedor.ID,
		CavaloID:   cavalo.ID,
	})

	assert.NoError(t, err)
	assert.Equal(t, created.ID, result.ID)
	mockRepo.AssertExpectations(t)
}

func TestCreateAnuncio_Fail_CamposObrigatorios(t *testing.T) {
	svc, mockRepo, _, _ := newTestService()

	_, err := svc.CreateAnuncio(context.Background(), anuncioservice.CreateInput{
		Titulo: "",
		Tipo:   "",
		Preco:  1000,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateAnuncio_Fail_PrecoInvalido(t *testing.T) {
	svc, mockRepo, _, _ := newTestService()

	_, err := svc.CreateAnuncio(context.Background(), anuncioservice.CreateInput{
		Titulo:     "Anúncio",
		Tipo:       "Venda",
		Preco:      0,
		VendedorID: uuid.New().String(),
		CavaloID:   uuid.New().String(),
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Preço")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateAnuncio_Fail_VendedorNaoEncontrado(t *testing.T) {
	svc, mockRepo, mockUsers, _ := newTestService()

	vendedorID := uuid.New().String()
	mockUsers.On("FindByID", mock.Anything, vendedorID).
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado"))

	_, err := svc.CreateAnuncio(context.Background(), anuncioservice.CreateInput{
		Titulo:     "Anúncio",
		Tipo:       "Venda",
		Preco:      1000,
		VendedorID: vendedorID,
		CavaloID:   uuid.New().String(),
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.Contains(t, err.Error(), "Vendedor")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateAnuncio_Fail_CavaloNaoEncontrado(t *testing.T) {
	svc, mockRepo, mockUsers, mockCavalos := newTestService()

	vendedor := domain.User{ID: uuid.New().String(), Tipo: domain.TipoVendedor}
	cavaloID := uuid.New().String()

	mockUsers.On("FindByID", mock.Anything, vendedor.ID).Return(vendedor, nil)
	mockCavalos.On("FindByID", mock.Anything, cavaloID).
		Return(domain.Cavalo{}, apperror.NewNotFoundError("Cavalo não encontrado"))

	_, err := svc.CreateAnuncio(context.Background(), anuncioservice.CreateInput{
		Titulo:     "Anúncio",
		Tipo:       "Venda",
		Preco:      1000,
		VendedorID: vendedor.ID,
		CavaloID:   cavaloID,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.Contains(t, err.Error(), "Cavalo")
	mockRepo.AssertNotCalled(t, "Create")
}

// --- Testes para ativação/desativação ---

func TestMarkAsInactive_Success(t *testing.T) {
	svc, mockRepo, _, _ := newTestService()

	anuncioID := uuid.New().String()
	existing := domain.Anuncio{ID: anuncioID, Ativo: true}
	updated := domain.Anuncio{ID: anuncioID, Ativo: false}

	mockRepo.On("FindByID", mock.Anything, anuncioID).Return(existing, nil)
	mockRepo.On("SetAtivo", mock.Anything, anuncioID, false).Return(updated, nil)

	result, err := svc.MarkAsInactive(context.Background(), anuncioID)

	assert.NoError(t, err)
	assert.False(t, result.Ativo)
	mockRepo.AssertExpectations(t)
}

func TestMarkAsInactive_Fail_JaInativo(t *testing.T) {
	svc, mockRepo, _, _ := newTestService()

	anuncioID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, anuncioID).Return(domain.Anuncio{ID: anuncioID, Ativo: false}, nil)

	_, err := svc.MarkAsInactive(context.Background(), anuncioID)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "já está inativo")
	mockRepo.AssertNotCalled(t, "SetAtivo")
}

func TestMarkAsActive_Fail_JaAtivo(t *testing.T) {
	svc, mockRepo, _, _ := newTestService()

	anuncioID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, anuncioID).Return(domain.Anuncio{ID: anuncioID, Ativo: true}, nil)

	_, err := svc.MarkAsActive(context.Background(), anuncioID)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "já está ativo")
	mockRepo.AssertNotCalled(t, "SetAtivo")
}

// --- Testes para UpdateAnuncio ---

func TestUpdateAnuncio_Fail_PrecoInvalido(t *testing.T) {
	svc, mockRepo, _, _ := newTestService()

	anuncioID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, anuncioID).Return(domain.Anuncio{ID: anuncioID}, nil)

	preco := -10.0
	_, err := svc.UpdateAnuncio(context.Background(), anuncioID, domain.AnuncioUpdate{Preco: &preco})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

// --- Testes para GetAnunciosByVendedor ---

func TestGetAnunciosByVendedor_Fail_VendedorNaoEncontrado(t *testing.T) {
	svc, mockRepo, mockUsers, _ := newTestService()

	vendedorID := uuid.New().String()
	mockUsers.On("FindByID", mock.Anything, vendedorID).
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado"))

	_, err := svc.GetAnunciosByVendedor(context.Background(), vendedorID)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "FindAll")
}
