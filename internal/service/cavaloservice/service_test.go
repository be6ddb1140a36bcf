package cavaloservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/service/cavaloservice"
)

// MockCavaloRepository é uma implementação mock da interface CavaloRepository
type MockCavaloRepository struct {
	mock.Mock
}

func (m *MockCavaloRepository) Create(ctx context.Context, cavalo domain.Cavalo) (domain.Cavalo, error) {
	args := m.Called(ctx, cavalo)
	return args.Get(0).(domain.Cavalo), args.Error(1)
}

func (m *MockCavaloRepository) FindByID(ctx context.Context, id string) (domain.Cavalo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Cavalo), args.Error(1)
}

func (m *MockCavaloRepository) FindAll(ctx context.Context, filter domain.CavaloFilter) ([]domain.Cavalo, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Cavalo), args.Error(1)
}

func (m *MockCavaloRepository) Update(ctx context.Context, id string, update domain.CavaloUpdate) (domain.Cavalo, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Cavalo), args.Error(1)
}

func (m *MockCavaloRepository) SetDisponibilidade(ctx context.Context, id string, disponivel bool) (domain.Cavalo, error) {
	args := m.Called(ctx, id, disponivel)
	return args.Get(0).(domain.Cavalo), args.Error(1)
}

func (m *MockCavaloRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCavaloRepository) Stats(ctx context.Context) (domain.CavaloStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.CavaloStats), args.Error(1)
}

// MockUserFinder resolve o dono do cavalo.
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

// --- Testes para CreateCavalo ---

func TestCreateCavalo_Success(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	donoID := uuid.New().String()
	dono := domain.User{ID: donoID, Nome: "Carlos", Email: "carlos@example.com", Tipo: domain.TipoVendedor}

	created := domain.Cavalo{
		ID:         uuid.New().String(),
		Nome:       "Relâmpago",
		Idade:      7,
		Raca:       "Mangalarga",
		Preco:      25000,
		Disponivel: true,
		Dono:       dono.Resumo(),
	}

	mockUsers.On("FindByID", mock.Anything, donoID).Return(dono, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c domain.Cavalo) bool {
		// Disponibilidade padrão é true quando omitida no payload.
		return c.Disponivel && c.Dono.ID == donoID
	})).Return(created, nil)

	result, err := svc.CreateCavalo(context.Background(), cavaloservice.CreateInput{
		Nome:   "Relâmpago",
		Idade:  7,
		Raca:   "Mangalarga",
		Preco:  25000,
		DonoID: donoID,
	})

	assert.NoError(t, err)
	assert.Equal(t, created.ID, result.ID)
	assert.True(t, result.Disponivel)
	mockRepo.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestCreateCavalo_Fail_PrecoInvalido(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	for _, preco := range []float64{0, -100} {
		_, err := svc.CreateCavalo(context.Background(), cavaloservice.CreateInput{
			Nome:   "Relâmpago",
			Idade:  7,
			Raca:   "Mangalarga",
			Preco:  preco,
			DonoID: uuid.New().String(),
		})

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
		assert.Contains(t, err.Error(), "Preço")
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateCavalo_Fail_IdadeForaDaFaixa(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	for _, idade := range []int{0, 51} {
		_, err := svc.CreateCavalo(context.Background(), cavaloservice.CreateInput{
			Nome:   "Relâmpago",
			Idade:  idade,
			Raca:   "Mangalarga",
			Preco:  1000,
			DonoID: uuid.New().String(),
		})

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
		assert.Contains(t, err.Error(), "Idade")
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateCavalo_Fail_DonoNaoEncontrado(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	donoID := uuid.New().String()
	mockUsers.On("FindByID", mock.Anything, donoID).
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado"))

	_, err := svc.CreateCavalo(context.Background(), cavaloservice.CreateInput{
		Nome:   "Relâmpago",
		Idade:  7,
		Raca:   "Mangalarga",
		Preco:  1000,
		DonoID: donoID,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.Contains(t, err.Error(), "Dono")
	mockRepo.AssertNotCalled(t, "Create")
}

// --- Testes para GetCavalos ---

func TestGetCavalos_PaginacaoNormalizada(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	// Page < 1 vira 1; Limit 0 vira o padrão 50; Limit > 100 é truncado em 100.
	mockRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f domain.CavaloFilter) bool {
		return f.Page == 1 && f.Limit == 50
	})).Return([]domain.Cavalo{}, nil).Once()

	_, err := svc.GetCavalos(context.Background(), domain.CavaloFilter{Page: 0, Limit: 0})
	assert.NoError(t, err)

	mockRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f domain.CavaloFilter) bool {
		return f.Limit == 100
	})).Return([]domain.Cavalo{}, nil).Once()

	_, err = svc.GetCavalos(context.Background(), domain.CavaloFilter{Page: 2, Limit: 500})
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

// --- Testes para UpdateCavalo ---

func TestUpdateCavalo_Fail_NaoEncontrado(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	cavaloID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, cavaloID).
		Return(domain.Cavalo{}, apperror.NewNotFoundError("Cavalo não encontrado"))

	nome := "Trovão"
	_, err := svc.UpdateCavalo(context.Background(), cavaloID, domain.CavaloUpdate{Nome: &nome})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUpdateCavalo_Fail_PrecoInvalido(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	cavaloID := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, cavaloID).Return(domain.Cavalo{ID: cavaloID}, nil)

	preco := -50.0
	_, err := svc.UpdateCavalo(context.Background(), cavaloID, domain.CavaloUpdate{Preco: &preco})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

// --- Testes para disponibilidade ---

func TestMarkAsUnavailable_Success(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	cavaloID := uuid.New().String()
	existing := domain.Cavalo{ID: cavaloID, Disponivel: true}
	updated := domain.Cavalo{ID: cavaloID, Disponivel: false}

	mockRepo.On("FindByID", mock.Anything, cavaloID).Return(existing, nil)
	mockRepo.On("SetDisponibilidade", mock.Anything, cavaloID, false).Return(updated, nil)

	result, err := svc.MarkAsUnavailable(context.Background(), cavaloID)

	assert.NoError(t, err)
	assert.False(t, result.Disponivel)
	mockRepo.AssertExpectations(t)
}

func TestMarkAsUnavailable_Fail_JaIndisponivel(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	cavaloID := uuid.New().String()
	existing := domain.Cavalo{ID: cavaloID, Disponivel: false}

	mockRepo.On("FindByID", mock.Anything, cavaloID).Return(existing, nil)

	_, err := svc.MarkAsUnavailable(context.Background(), cavaloID)

	// O registro não é tocado quando o estado já é o pedido.
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "já está indisponível")
	mockRepo.AssertNotCalled(t, "SetDisponibilidade")
}

func TestMarkAsAvailable_Fail_JaDisponivel(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	cavaloID := uuid.New().String()
	existing := domain.Cavalo{ID: cavaloID, Disponivel: true}

	mockRepo.On("FindByID", mock.Anything, cavaloID).Return(existing, nil)

	_, err := svc.MarkAsAvailable(context.Background(), cavaloID)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "já está disponível")
	mockRepo.AssertNotCalled(t, "SetDisponibilidade")
}

// --- Testes para GetCavaloStats ---

func TestGetCavaloStats_Success(t *testing.T) {
	mockRepo := new(MockCavaloRepository)
	mockUsers := new(MockUserFinder)
	svc := cavaloservice.NewService(mockRepo, mockUsers, newTestLogger())

	mockRepo.On("Stats", mock.Anything).Return(domain.CavaloStats{Total: 10, Disponiveis: 7}, nil)

	stats, err := svc.GetCavaloStats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 7, stats.Disponiveis)
}
