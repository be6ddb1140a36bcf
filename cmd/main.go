package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"equitrade/config"
	"equitrade/internal/pkg/cache"
	"equitrade/internal/pkg/database"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/pkg/middleware"
	"equitrade/internal/pkg/token"

	// Camadas da API para Injeção de Dependências
	"equitrade/internal/api/anuncio"
	"equitrade/internal/api/auth"
	"equitrade/internal/api/cavalo"
	"equitrade/internal/api/mensagem"
	"equitrade/internal/api/router"
	"equitrade/internal/api/user"
	"equitrade/internal/repository/anunciorepo"
	"equitrade/internal/repository/cavalorepo"
	"equitrade/internal/repository/mensagemrepo"
	"equitrade/internal/repository/userrepo"
	"equitrade/internal/service/anuncioservice"
	"equitrade/internal/service/authservice"
	"equitrade/internal/service/cavaloservice"
	"equitrade/internal/service/mensagemservice"
	"equitrade/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço EquiTrade...")

	// O godotenv.Load() procura por um arquivo .env na raiz. Se ele não
	// existir, as variáveis podem estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	cavaloRepo := cavalorepo.NewCavaloRepository(db, cacheClient, cfg.DBTimeout, log)
	anuncioRepo := anunciorepo.NewAnuncioRepository(db, cfg.DBTimeout, log)
	mensagemRepo := mensagemrepo.NewMensagemRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	authSvc := authservice.NewService(userRepo, tokenSvc, log)
	userSvc := userservice.NewService(userRepo, log)
	cavaloSvc := cavaloservice.NewService(cavaloRepo, userRepo, log)
	anuncioSvc := anuncioservice.NewService(anuncioRepo, userRepo, cavaloRepo, log)
	mensagemSvc := mensagemservice.NewService(mensagemRepo, userRepo, log)
	log.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Auth:     auth.NewHandler(authSvc, log),
		User:     user.NewHandler(userSvc, log),
		Cavalo:   cavalo.NewHandler(cavaloSvc, log),
		Anuncio:  anuncio.NewHandler(anuncioSvc, log),
		Mensagem: mensagem.NewHandler(mensagemSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 4. Roteador e Servidor
	authMw := middleware.NewAuthMiddleware(tokenSvc)
	r := router.NewRouter(handlers, authMw,
		middleware.RequestLogger(log),
		middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor EquiTrade ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
