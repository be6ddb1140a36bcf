package cavalo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"equitrade/internal/api/response"
	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/service/cavaloservice"
)

// CavaloService define o contrato que o Handler espera da camada de Serviço.
type CavaloService interface {
	GetCavalos(ctx context.Context, filter domain.CavaloFilter) ([]domain.Cavalo, error)
	GetCavaloByID(ctx context.Context, id string) (domain.Cavalo, error)
	GetCavalosByDono(ctx context.Context, donoID string) ([]domain.Cavalo, error)
	CreateCavalo(ctx context.Context, input cavaloservice.CreateInput) (domain.Cavalo, error)
	UpdateCavalo(ctx context.Context, id string, update domain.CavaloUpdate) (domain.Cavalo, error)
	DeleteCavalo(ctx context.Context, id string) error
	MarkAsAvailable(ctx context.Context, id string) (domain.Cavalo, error)
	MarkAsUnavailable(ctx context.Context, id string) (domain.Cavalo, error)
	GetCavaloStats(ctx context.Context) (domain.CavaloStats, error)
}

// Handler agrupa os endpoints de cavalos.
type Handler struct {
	Service CavaloService
	Logger  logger.Logger
	Resp    *response.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CavaloService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Resp:    response.NewWriter(log),
	}
}

// --- Parsing de query params ---

func parseBoolParam(values url.Values, key string) (*bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.NewValidationError("Parâmetro '" + key + "' deve ser true ou false.")
	}
	return &v, nil
}

func parseFloatParam(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.NewValidationError("Parâmetro '" + key + "' deve ser numérico.")
	}
	return &v, nil
}

func parseIntParam(values url.Values, key string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.NewValidationError("Parâmetro '" + key + "' deve ser um inteiro.")
	}
	return &v, nil
}

// parseFilter monta o CavaloFilter a partir da query string.
func parseFilter(values url.Values) (domain.CavaloFilter, error) {
	var filter domain.CavaloFilter
	var err error

	if filter.Disponivel, err = parseBoolParam(values, "disponivel"); err != nil {
		return filter, err
	}
	filter.NomeContains = values.Get("nome")
	filter.RacaContains = values.Get("raca")
	if filter.PrecoMin, err = parseFloatParam(values, "precoMin"); err != nil {
		return filter, err
	}
	if filter.PrecoMax, err = parseFloatParam(values, "precoMax"); err != nil {
		return filter, err
	}
	if filter.IdadeMin, err = parseIntParam(values, "idadeMin"); err != nil {
		return filter, err
	}
	if filter.IdadeMax, err = parseIntParam(values, "idadeMax"); err != nil {
		return filter, err
	}
	filter.DonoID = values.Get("donoId")

	if page, err := parseIntParam(values, "page"); err != nil {
		return filter, err
	} else if page != nil {
		filter.Page = *page
	}
	if limit, err := parseIntParam(values, "limit"); err != nil {
		return filter, err
	} else if limit != nil {
		filter.Limit = *limit
	}

	return filter, nil
}

// GetCavalosHandler lida com GET /api/cavalos (com filtros opcionais).
func (h *Handler) GetCavalosHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	cavalos, err := h.Service.GetCavalos(r.Context(), filter)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", cavalos, len(cavalos))
}

// GetCavaloByIDHandler lida com GET /api/cavalos/{id}.
func (h *Handler) GetCavaloByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do cavalo é obrigatório."))
		return
	}

	cavalo, err := h.Service.GetCavaloByID(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "", cavalo)
}

// GetCavalosByDonoHandler lida com GET /api/cavalos/dono/{donoId}.
func (h *Handler) GetCavalosByDonoHandler(w http.ResponseWriter, r *http.Request) {
	donoID := r.PathValue("donoId")
	if donoID == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do dono é obrigatório."))
		return
	}

	cavalos, err := h.Service.GetCavalosByDono(r.Context(), donoID)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", cavalos, len(cavalos))
}

// GetCavaloStatsHandler lida com GET /api/cavalos/stats.
func (h *Handler) GetCavaloStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetCavaloStats(r.Context())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "", stats)
}

// CreateCavaloHandler lida com POST /api/cavalos.
func (h *Handler) CreateCavaloHandler(w http.ResponseWriter, r *http.Request) {
	var input cavaloservice.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	cavalo, err := h.Service.CreateCavalo(r.Context(), input)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Cavalo criado", map[string]interface{}{
		"cavalo_id": cavalo.ID,
		"dono_id":   cavalo.Dono.ID,
	})
	h.Resp.Success(w, http.StatusCreated, "Cavalo criado com sucesso", cavalo)
}

// UpdateCavaloHandler lida com PUT /api/cavalos/{id}.
func (h *Handler) UpdateCavaloHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do cavalo é obrigatório."))
		return
	}

	var update domain.CavaloUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	cavalo, err := h.Service.UpdateCavalo(r.Context(), id, update)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Cavalo atualizado com sucesso", cavalo)
}

// MarkAsAvailableHandler lida com PUT /api/cavalos/{id}/available.
func (h *Handler) MarkAsAvailableHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cavalo, err := h.Service.MarkAsAvailable(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Cavalo marcado como disponível", cavalo)
}

// MarkAsUnavailableHandler lida com PUT /api/cavalos/{id}/unavailable.
func (h *Handler) MarkAsUnavailableHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cavalo, err := h.Service.MarkAsUnavailable(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Cavalo marcado como indisponível", cavalo)
}

// DeleteCavaloHandler lida com DELETE /api/cavalos/{id}.
func (h *Handler) DeleteCavaloHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do cavalo é obrigatório."))
		return
	}

	if err := h.Service.DeleteCavalo(r.Context(), id); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Cavalo removido com sucesso", nil)
}
