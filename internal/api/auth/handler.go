package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"equitrade/internal/api/response"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/service/authservice"
)

// AuthService define o contrato que o Handler espera da camada de Serviço.
type AuthService interface {
	Register(ctx context.Context, input authservice.RegisterInput) (authservice.AuthResponse, error)
	Login(ctx context.Context, email string, senha string) (authservice.AuthResponse, error)
}

// Handler agrupa os endpoints de autenticação.
type Handler struct {
	Service AuthService
	Logger  logger.Logger
	Resp    *response.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AuthService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Resp:    response.NewWriter(log),
	}
}

// RegisterHandler lida com POST /api/auth/register.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input authservice.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	result, err := h.Service.Register(ctx, input)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Novo usuário registrado", map[string]interface{}{
		"user_id": result.User.ID,
		"tipo":    result.User.Tipo,
	})

	h.Resp.Success(w, http.StatusCreated, "Usuário registrado com sucesso", result)
}

// LoginHandler lida com POST /api/auth/login.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	result, err := h.Service.Login(ctx, input.Email, input.Senha)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Resp.Success(w, http.StatusOK, "Login realizado com sucesso", result)
}
