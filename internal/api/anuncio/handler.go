package anuncio

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
	"equitrade/internal/pkg/middleware"
	"equitrade/internal/service/anuncioservice"
)

// AnuncioService define o contrato que o Handler espera da camada de Serviço.
type AnuncioService interface {
	GetAnuncios(ctx context.Context, filter domain.AnuncioFilter) ([]domain.Anuncio, error)
	GetAnuncioByID(ctx context.Context, id string) (domain.Anuncio, error)
	GetAnunciosByVendedor(ctx context.Context, vendedorID string) ([]domain.Anuncio, error)
	CreateAnuncio(ctx context.Context, input anuncioservice.CreateInput) (domain.Anuncio, error)
	UpdateAnuncio(ctx context.Context, id string, update domain.AnuncioUpdate) (domain.Anuncio, error)
	DeleteAnuncio(ctx context.Context, id string) error
	MarkAsActive(ctx context.Context, id string) (domain.Anuncio, error)
	MarkAsInactive(ctx context.Context, id string) (domain.Anuncio, error)
}

// Handler agrupa os endpoints de anúncios.
type Handler struct {
	Service AnuncioService
	Logger  logger.Logger
	Resp    *response.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AnuncioService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Resp:    response.NewWriter(log),
	}
}

// parseFilter monta o AnuncioFilter a partir da query string.
func parseFilter(values url.Values) (domain.AnuncioFilter, error) {
	var filter domain.AnuncioFilter

	if raw := values.Get("ativo"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperror.NewValidationError("Parâmetro 'ativo' deve ser true ou false.")
		}
		filter.Ativo = &v
	}

	filter.Tipo = values.Get("tipo")
	filter.VendedorID = values.Get("vendedorId")
	filter.CavaloID = values.Get("cavaloId")

	for _, p := range []struct {
		key  string
		dest **float64
	}{
		{"precoMin", &filter.PrecoMin},
		{"precoMax", &filter.PrecoMax},
	} {
		raw := values.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, apperror.NewValidationError("Parâmetro '" + p.key + "' deve ser numérico.")
		}
		*p.dest = &v
	}

	if raw := values.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperror.NewValidationError("Parâmetro 'page' deve ser um inteiro.")
		}
		filter.Page = v
	}
	if raw := values.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperror.NewValidationError("Parâmetro 'limit' deve ser um inteiro.")
		}
		filter.Limit = v
	}

	return filter, nil
}

// GetAnunciosHandler lida com GET /api/anuncios (com filtros opcionais).
func (h *Handler) GetAnunciosHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	anuncios, err := h.Service.GetAnuncios(r.Context(), filter)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", anuncios, len(anuncios))
}

// GetAnuncioByIDHandler lida com GET /api/anuncios/{id}.
func (h *Handler) GetAnuncioByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do anúncio é obrigatório."))
		return
	}

	anuncio, err := h.Service.GetAnuncioByID(r.Context(), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "", anuncio)
}

// GetAnunciosByVendedorHandler lida com GET /api/anuncios/vendedor/{vendedorId}.
func (h *Handler) GetAnunciosByVendedorHandler(w http.ResponseWriter, r *http.Request) {
	vendedorID := r.PathValue("vendedorId")
	if vendedorID == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do vendedor é obrigatório."))
		return
	}

	anuncios, err := h.Service.GetAnunciosByVendedor(r.Context(), vendedorID)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, http.StatusOK, "", anuncios, len(anuncios))
}

// CreateAnuncioHandler lida com POST /api/anuncios.
// A rota é restrita a vendedores; o anúncio é criado em nome do usuário autenticado.
func (h *Handler) CreateAnuncioHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.Resp.Error(w, r, apperror.NewUnauthorizedError("Autenticação necessária."))
		return
	}

	var input anuncioservice.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}
	input.VendedorID = claims.UserID

	anuncio, err := h.Service.CreateAnuncio(ctx, input)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	h.Logger.Info("Anúncio criado", map[string]interface{}{
		"anuncio_id":  anuncio.ID,
		"vendedor_id": anuncio.Vendedor.ID,
		"cavalo_id":   anuncio.Cavalo.ID,
	})
	h.Resp.Success(w, http.StatusCreated, "Anúncio criado com sucesso", anuncio)
}

// UpdateAnuncioHandler lida com PUT /api/anuncios/{id}.
func (h *Handler) UpdateAnuncioHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do anúncio é obrigatório."))
		return
	}

	var update domain.AnuncioUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.Resp.Error(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	anuncio, err := h.Service.UpdateAnuncio(r.Context(), id, update)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Anúncio atualizado com sucesso", anuncio)
}

// MarkAsActiveHandler lida com PUT /api/anuncios/{id}/active.
func (h *Handler) MarkAsActiveHandler(w http.ResponseWriter, r *http.Request) {
	anuncio, err := h.Service.MarkAsActive(r.Context(), r.PathValue("id"))
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Anúncio ativado", anuncio)
}

// MarkAsInactiveHandler lida com PUT /api/anuncios/{id}/inactive.
func (h *Handler) MarkAsInactiveHandler(w http.ResponseWriter, r *http.Request) {
	anuncio, err := h.Service.MarkAsInactive(r.Context(), r.PathValue("id"))
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Anúncio desativado", anuncio)
}

// DeleteAnuncioHandler lida com DELETE /api/anuncios/{id}.
func (h *Handler) DeleteAnuncioHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.Resp.Error(w, r, apperror.NewValidationError("ID do anúncio é obrigatório."))
		return
	}

	if err := h.Service.DeleteAnuncio(r.Context(), id); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Success(w, http.StatusOK, "Anúncio removido com sucesso", nil)
}
