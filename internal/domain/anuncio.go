package domain

import "time"

// Anuncio representa um anúncio publicado por um vendedor para um cavalo.
type Anuncio struct {
	ID        string       `json:"id"`
	Titulo    string       `json:"titulo"`
	Tipo      string       `json:"tipo"`
	Descricao string       `json:"descricao,omitempty"`
	Preco     float64      `json:"preco"`
	Ativo     bool         `json:"ativo"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Vendedor  UserResumo   `json:"vendedor"`
	Cavalo    CavaloResumo `json:"cavalo"`
}

// AnuncioFilter define os predicados opcionais de busca de anúncios.
// Mesma semântica do CavaloFilter: AND sobre os campos presentes.
type AnuncioFilter struct {
	Ativo      *bool
	Tipo       string
	PrecoMin   *float64
	PrecoMax   *float64
	VendedorID string
	CavaloID   string
	Page       int
	Limit      int
}

// AnuncioUpdate define uma atualização parcial de anúncio.
type AnuncioUpdate struct {
	Titulo    *string  `json:"titulo,omitempty"`
	Tipo      *string  `json:"tipo,omitempty"`
	Descricao *string  `json:"descricao,omitempty"`
	Preco     *float64 `json:"preco,omitempty"`
}
