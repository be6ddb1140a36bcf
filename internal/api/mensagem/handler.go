package mensagem

import (
	"context"
	"encoding/json"
	"net/http"

	"equitrade/internal/api/response"
	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/pkg/middleware"
	"equitrade/internal/service/mensagemservice"
)

// MensagemService define o contrato que o Handler espera da camada de Serviço.
type MensagemService interface {
	SendMensagem(ctx context.Context, input mensagemservice.SendInput) (domain.Mensagem, error)
	GetMensagemByID(ctx context.Context, id string) (domain.Mensagem, error)
	GetSentMensagens(ctx context.Context, userID string) ([]domain.Mensagem, error)
	GetReceivedMensagens(ctx context.Context, userID string) ([]domain.Mensagem, error)
	GetConversation(ctx context.Context, userID, contatoID string) ([]domain.Mensagem, error)
	GetConversations(ctx context.Context, userID string) ([]domain.Conversa, error)
	DeleteMensagem(ctx context.Context, id, callerID string) error
}

// Handler agrupa os endpoints de mensagens. Todas as rotas exigem
// autenticação: a identidade do chamador vem sempre do token, nunca do corpo.
type Handler struct {
	Service MensagemService
	Logger  logger.Logger
	Resp    *response.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc MensagemService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Resp:    response.NewWriter(log),
	}
}

// caller extrai a identidade do usuário autenticado do contexto.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.Resp.Error(w, r, apperror.NewUnauthorizedError("Autenticação necessária."))
	}
	return claims, ok
}

// SendMensagemHandler lida com POST /api/mensagens.
func (h *Handler) SendMensagemHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	var body struct {
		DestinatarioID string `json:"destinatarioId"`
		Conteudo       string `json:"conteudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	mensagem, err := h.Service.SendMensagem(r.Context(), mensagemservice.SendInput{
		RemetenteID:    claims.UserID,
		DestinatarioID: body.DestinatarioID,
		Conteudo:       body.Conteudo,
	})
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Mensagem enviada", map[string]interface{}{
		"mensagem_id":     mensagem.ID,
		"remetente_id":    mensagem.Remetente.ID,
		"destinatario_id": mensagem.Destinatario.ID,
	})
	h.Resp.Success(w, http.StatusCreated, "Mensagem enviada com sucesso", mensagem)
}

// GetMensagemByIDHandler lida com GET /api/mensagens/{id}.
func (h *Handler) GetMensagemByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID da mensagem é obrigatório."))
		return
	}

	mensagem, err := h.Service.GetMensagemByID(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "", mensagem)
}

// GetSentHandler lida com GET /api/mensagens/sent.
func (h *Handler) GetSentHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	mensagens, err := h.Service.GetSentMensagens(r.Context(), claims.UserID)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", mensagens, len(mensagens))
}

// GetReceivedHandler lida com GET /api/mensagens/received.
func (h *Handler) GetReceivedHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	mensagens, err := h.Service.GetReceivedMensagens(r.Context(), claims.UserID)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", mensagens, len(mensagens))
}

// GetConversationHandler lida com GET /api/mensagens/conversation/{userId}.
// O contato vem do path; o outro lado da conversa é sempre o usuário autenticado.
func (h *Handler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	contatoID := r.PathValue("userId")
	if contatoID == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do contato é obrigatório."))
		return
	}

	mensagens, err := h.Service.GetConversation(r.Context(), claims.UserID, contatoID)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", mensagens, len(mensagens))
}

// GetConversationsHandler lida com GET /api/mensagens/conversations.
func (h *Handler) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	conversas, err := h.Service.GetConversations(r.Context(), claims.UserID)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", conversas, len(conversas))
}

// DeleteMensagemHandler lida com DELETE /api/mensagens/{id}.
func (h *Handler) DeleteMensagemHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID da mensagem é obrigatório."))
		return
	}

	if err := h.Service.DeleteMensagem(r.Context(), id, claims.UserID); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Mensagem removida com sucesso", nil)
}
