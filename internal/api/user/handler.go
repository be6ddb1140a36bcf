package user

import (
	"context"
	"encoding/json"
	"net/http"

	"equitrade/internal/api/response"
	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/service/userservice"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetAllCompradores(ctx context.Context) ([]domain.User, error)
	GetAllVendedores(ctx context.Context) ([]domain.User, error)
	CreateComprador(ctx context.Context, input userservice.CreateInput) (domain.User, error)
	CreateVendedor(ctx context.Context, input userservice.CreateInput) (domain.User, error)
	UpdateUser(ctx context.Context, id string, tipo domain.TipoUsuario, update domain.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetUserStats(ctx context.Context) (domain.UserStats, error)
	RateVendedor(ctx context.Context, vendedorID string, rating int) (domain.User, error)
}

// Handler agrupa os endpoints da hierarquia de usuários.
type Handler struct {
	Service UserService
	Logger  logger.Logger
	Resp    *response.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Resp:    response.NewWriter(log),
	}
}

// GetAllUsersHandler lida com GET /api/users.
func (h *Handler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", users, len(users))
}

// GetUserByIDHandler lida com GET /api/users/{id}.
func (h *Handler) GetUserByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do usuário é obrigatório."))
		return
	}

	user, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "", user)
}

// GetCompradoresHandler lida com GET /api/users/compradores.
func (h *Handler) GetCompradoresHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllCompradores(r.Context())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", users, len(users))
}

// GetVendedoresHandler lida com GET /api/users/vendedores.
func (h *Handler) GetVendedoresHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllVendedores(r.Context())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", users, len(users))
}

// CreateCompradorHandler lida com POST /api/users/compradores.
func (h *Handler) CreateCompradorHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	user, err := h.Service.CreateComprador(r.Context(), input)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Comprador criado", map[string]interface{}{"user_id": user.ID})
	h.Resp.Success(w, http.StatusCreated, "Comprador criado com sucesso", user)
}

// CreateVendedorHandler lida com POST /api/users/vendedores.
func (h *Handler) CreateVendedorHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	user, err := h.Service.CreateVendedor(r.Context(), input)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Vendedor criado", map[string]interface{}{"user_id": user.ID})
	h.Resp.Success(w, http.StatusCreated, "Vendedor criado com sucesso", user)
}

// UpdateUserHandler lida com PUT /api/users/{id}.
// O corpo informa a variante alvo via campo "tipo"; pedir a variante errada
// para o registro existente resulta em erro de validação.
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do usuário é obrigatório."))
		return
	}

	var body struct {
		Tipo domain.TipoUsuario `json:"tipo"`
		domain.UserUpdate
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	tipo := body.Tipo
	if tipo == "" {
		tipo = domain.TipoComprador
		if body.Nota != nil {
			tipo = domain.TipoVendedor
		}
	}

	user, err := h.Service.UpdateUser(r.Context(), id, tipo, body.UserUpdate)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Usuário atualizado com sucesso", user)
}

// DeleteUserHandler lida com DELETE /api/users/{id}.
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do usuário é obrigatório."))
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Usuário removido com sucesso", nil)
}

// GetUserStatsHandler lida com GET /api/users/stats.
func (h *Handler) GetUserStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetUserStats(r.Context())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "", stats)
}

// RateVendedorHandler lida com POST /api/users/rate/{vendedorId}.
func (h *Handler) RateVendedorHandler(w http.ResponseWriter, r *http.Request) {
	vendedorID := r.PathValue("vendedorId")
	if vendedorID == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do vendedor é obrigatório."))
		return
	}

	var body struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	user, err := h.Service.RateVendedor(r.Context(), vendedorID, body.Rating)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Vendedor avaliado", map[string]interface{}{
		"vendedor_id": user.ID,
		"nota":        user.Nota,
		"avaliacoes":  user.NumeroAvaliacoes,
	})
	h.Resp.Success(w, http.StatusOK, "Avaliação registrada com sucesso", user)
}
