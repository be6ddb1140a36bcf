package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"equitrade/internal/domain"
	"equitrade/internal/pkg/token"
)

// ContextKey é o tipo das chaves de contexto deste pacote.
// Usamos um tipo próprio para garantir que a chave seja única e não haja
// conflito com chaves string de outros pacotes.
type ContextKey int

const (
	// UserClaimsKey é a chave usada para armazenar as claims do usuário no contexto.
	UserClaimsKey ContextKey = iota
)

// UserClaims representa os dados do usuário extraídos do token JWT,
// que serão anexados ao contexto da requisição.
type UserClaims struct {
	UserID string
	Email  string
	Tipo   domain.TipoUsuario
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// writeUnauthorized envia o envelope padrão de erro com o status informado.
func writeUnauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// NewAuthMiddleware cria uma função de middleware que valida um JWT e anexa as
// claims (UserID, Email e Tipo) ao contexto da requisição.
// Qualquer falha (header ausente, malformado, assinatura inválida ou token
// expirado) é rejeitada uniformemente como 401.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
				writeUnauthorized(w, http.StatusUnauthorized, "Token de autorização ausente ou malformado.")
				return
			}

			tokenString := authHeader[7:]

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				writeUnauthorized(w, http.StatusUnauthorized, "Token inválido ou expirado.")
				return
			}

			// 3. Anexar Claims ao Contexto
			userClaims := UserClaims{
				UserID: claims.UserID,
				Email:  claims.Email,
				Tipo:   domain.TipoUsuario(claims.Tipo),
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// RequireTipo restringe o acesso à variante de usuário informada.
// Deve ser encadeado após o NewAuthMiddleware.
func RequireTipo(tipo domain.TipoUsuario) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, http.StatusUnauthorized, "Autenticação necessária.")
				return
			}

			if claims.Tipo != tipo {
				writeUnauthorized(w, http.StatusForbidden, "Acesso restrito a usuários do tipo "+string(tipo)+".")
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}
