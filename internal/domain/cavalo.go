package domain

import "time"

// Cavalo representa o item anunciável do marketplace: o cavalo de um vendedor.
type Cavalo struct {
	ID         string     `json:"id"`
	Nome       string     `json:"nome"`
	Idade      int        `json:"idade"`
	Raca       string     `json:"raca"`
	Preco      float64    `json:"preco"`
	Descricao  string     `json:"descricao,omitempty"`
	Disponivel bool       `json:"disponivel"`
	Premios    string     `json:"premios,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Dono       UserResumo `json:"dono"`
}

// CavaloResumo é a projeção de cavalo embutida em anúncios.
type CavaloResumo struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Raca  string `json:"raca"`
	Idade int    `json:"idade"`
}

// Resumo retorna a projeção do cavalo para embutir em anúncios.
func (c Cavalo) Resumo() CavaloResumo {
	return CavaloResumo{
		ID:    c.ID,
		Nome:  c.Nome,
		Raca:  c.Raca,
		Idade: c.Idade,
	}
}

// CavaloFilter define os predicados opcionais de busca de cavalos.
// Campos nil/vazios não restringem o resultado; os presentes compõem em AND.
// Faixas (Min/Max) são inclusivas nas duas pontas.
type CavaloFilter struct {
	Disponivel   *bool
	NomeContains string
	RacaContains string
	PrecoMin     *float64
	PrecoMax     *float64
	IdadeMin     *int
	IdadeMax     *int
	DonoID       string
	Page         int
	Limit        int
}

// CavaloUpdate define uma atualização parcial de cavalo.
type CavaloUpdate struct {
	Nome      *string  `json:"nome,omitempty"`
	Idade     *int     `json:"idade,omitempty"`
	Raca      *string  `json:"raca,omitempty"`
	Preco     *float64 `json:"preco,omitempty"`
	Descricao *string  `json:"descricao,omitempty"`
	Premios   *string  `json:"premios,omitempty"`
}

// CavaloStats agrega os contadores expostos em GET /api/cavalos/stats.
type CavaloStats struct {
	Total       int `json:"total"`
	Disponiveis int `json:"disponiveis"`
}
