package domain

import "time"

// TipoUsuario é o discriminador das variantes de usuário do marketplace.
type TipoUsuario string

// Constantes para as variantes de usuário (coluna discriminadora `tipo`).
const (
	TipoComprador TipoUsuario = "Comprador"
	TipoVendedor  TipoUsuario = "Vendedor"
)

// User representa a entidade de usuário no sistema (herança de tabela única).
// Compradores e Vendedores compartilham a identidade base; os campos Nota e
// NumeroAvaliacoes só têm significado quando Tipo == TipoVendedor.
type User struct {
	ID               string      `json:"id"`
	Nome             string      `json:"nome"`
	Email            string      `json:"email"`
	SenhaHash        string      `json:"-"` // Oculta o hash da senha no JSON de resposta
	Celular          string      `json:"celular,omitempty"`
	Endereco         string      `json:"endereco,omitempty"`
	Tipo             TipoUsuario `json:"tipo"`
	Nota             float64     `json:"nota"`
	NumeroAvaliacoes int         `json:"numeroAvaliacoes"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// UserResumo é a projeção pública de um usuário, usada na resposta de
// autenticação e embutida em cavalos, anúncios e mensagens.
type UserResumo struct {
	ID    string      `json:"id"`
	Nome  string      `json:"nome"`
	Email string      `json:"email"`
	Tipo  TipoUsuario `json:"tipo,omitempty"`
}

// Resumo retorna a projeção pública do usuário.
func (u User) Resumo() UserResumo {
	return UserResumo{
		ID:    u.ID,
		Nome:  u.Nome,
		Email: u.Email,
		Tipo:  u.Tipo,
	}
}

// UserUpdate define uma atualização parcial de usuário.
// Campos nil são ignorados pelo repositório.
type UserUpdate struct {
	Nome     *string  `json:"nome,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Senha    *string  `json:"senha,omitempty"`
	Celular  *string  `json:"celular,omitempty"`
	Endereco *string  `json:"endereco,omitempty"`
	Nota     *float64 `json:"nota,omitempty"`
}

// UserStats agrega os contadores expostos em GET /api/users/stats.
type UserStats struct {
	Total                 int     `json:"total"`
	Compradores           int     `json:"compradores"`
	Vendedores            int     `json:"vendedores"`
	AverageVendedorRating float64 `json:"averageVendedorRating"`
}
