package router

import (
	"net/http"

	"equitrade/internal/api/anuncio"
	"equitrade/internal/api/auth"
	"equitrade/internal/api/cavalo"
	"equitrade/internal/api/mensagem"
	"equitrade/internal/api/user"
	"equitrade/internal/domain"
	"equitrade/internal/pkg/middleware"
)

// Handlers agrupa os Handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Cavalo   *cavalo.Handler
	Anuncio  *anuncio.Handler
	Mensagem *mensagem.Handler
}

// Middleware é a assinatura dos middlewares por rota (autenticação e role).
type Middleware func(next http.HandlerFunc) http.HandlerFunc

// NewRouter configura e retorna o roteador HTTP principal.
// Usamos o ServeMux padrão do net/http com padrões de método + wildcard
// (Go 1.22+); os parâmetros de rota são lidos via r.PathValue nos Handlers.
func NewRouter(h Handlers, authMw Middleware, globals ...func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	requireVendedor := middleware.RequireTipo(domain.TipoVendedor)

	// --- Health Check ---
	mux.HandleFunc("GET /api/health", HealthHandler)

	// --- Autenticação ---
	mux.HandleFunc("POST /api/auth/register", h.Auth.RegisterHandler)
	mux.HandleFunc("POST /api/auth/login", h.Auth.LoginHandler)

	// --- Usuários ---
	// As rotas literais (compradores, vendedores, stats) têm precedência
	// sobre o wildcard {id} no ServeMux.
	mux.HandleFunc("GET /api/users", h.User.GetAllUsersHandler)
	mux.HandleFunc("GET /api/users/compradores", h.User.GetCompradoresHandler)
	mux.HandleFunc("GET /api/users/vendedores", h.User.GetVendedoresHandler)
	mux.HandleFunc("GET /api/users/stats", h.User.GetUserStatsHandler)
	mux.HandleFunc("GET /api/users/{id}", h.User.GetUserByIDHandler)
	mux.HandleFunc("POST /api/users/compradores", h.User.CreateCompradorHandler)
	mux.HandleFunc("POST /api/users/vendedores", h.User.CreateVendedorHandler)
	mux.HandleFunc("PUT /api/users/{id}", authMw(h.User.UpdateUserHandler))
	mux.HandleFunc("DELETE /api/users/{id}", authMw(h.User.DeleteUserHandler))
	mux.HandleFunc("POST /api/users/rate/{vendedorId}", authMw(h.User.RateVendedorHandler))

	// --- Cavalos ---
	mux.HandleFunc("GET /api/cavalos", h.Cavalo.GetCavalosHandler)
	mux.HandleFunc("GET /api/cavalos/stats", h.Cavalo.GetCavaloStatsHandler)
	mux.HandleFunc("GET /api/cavalos/dono/{donoId}", h.Cavalo.GetCavalosByDonoHandler)
	mux.HandleFunc("GET /api/cavalos/{id}", h.Cavalo.GetCavaloByIDHandler)
	mux.HandleFunc("POST /api/cavalos", authMw(h.Cavalo.CreateCavaloHandler))
	mux.HandleFunc("PUT /api/cavalos/{id}", authMw(h.Cavalo.UpdateCavaloHandler))
	mux.HandleFunc("PUT /api/cavalos/{id}/available", authMw(h.Cavalo.MarkAsAvailableHandler))
	mux.HandleFunc("PUT /api/cavalos/{id}/unavailable", authMw(h.Cavalo.MarkAsUnavailableHandler))
	mux.HandleFunc("DELETE /api/cavalos/{id}", authMw(h.Cavalo.DeleteCavaloHandler))

	// --- Anúncios ---
	mux.HandleFunc("GET /api/anuncios", h.Anuncio.GetAnunciosHandler)
	mux.HandleFunc("GET /api/anuncios/vendedor/{vendedorId}", h.Anuncio.GetAnunciosByVendedorHandler)
	mux.HandleFunc("GET /api/anuncios/{id}", h.Anuncio.GetAnuncioByIDHandler)
	mux.HandleFunc("POST /api/anuncios", authMw(requireVendedor(h.Anuncio.CreateAnuncioHandler)))
	mux.HandleFunc("PUT /api/anuncios/{id}", authMw(h.Anuncio.UpdateAnuncioHandler))
	mux.HandleFunc("PUT /api/anuncios/{id}/active", authMw(h.Anuncio.MarkAsActiveHandler))
	mux.HandleFunc("PUT /api/anuncios/{id}/inactive", authMw(h.Anuncio.MarkAsInactiveHandler))
	mux.HandleFunc("DELETE /api/anuncios/{id}", authMw(h.Anuncio.DeleteAnuncioHandler))

	// --- Mensagens (todas autenticadas) ---
	mux.HandleFunc("POST /api/mensagens", authMw(h.Mensagem.SendMensagemHandler))
	mux.HandleFunc("GET /api/mensagens/sent", authMw(h.Mensagem.GetSentHandler))
	mux.HandleFunc("GET /api/mensagens/received", authMw(h.Mensagem.GetReceivedHandler))
	mux.HandleFunc("GET /api/mensagens/conversations", authMw(h.Mensagem.GetConversationsHandler))
	mux.HandleFunc("GET /api/mensagens/conversation/{userId}", authMw(h.Mensagem.GetConversationHandler))
	mux.HandleFunc("GET /api/mensagens/{id}", authMw(h.Mensagem.GetMensagemByIDHandler))
	mux.HandleFunc("DELETE /api/mensagens/{id}", authMw(h.Mensagem.DeleteMensagemHandler))

	// Middlewares globais (rate limiter, log de acesso) envolvem o mux inteiro.
	var handler http.Handler = mux
	for i := len(globals) - 1; i >= 0; i-- {
		handler = globals[i](handler)
	}

	return handler
}

// HealthHandler responde o health check da API.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success":true,"message":"EquiTrade API no ar"}`))
}
