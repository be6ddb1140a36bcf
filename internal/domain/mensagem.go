package domain

import "time"

// Mensagem representa uma mensagem direta entre dois usuários.
// Imutável após a criação; só pode ser excluída.
type Mensagem struct {
	ID           string     `json:"id"`
	Conteudo     string     `json:"conteudo"`
	CreateAt     time.Time  `json:"createAt"`
	Remetente    UserResumo `json:"remetente"`
	Destinatario UserResumo `json:"destinatario"`
}

// Conversa é o resumo de uma conversa com um interlocutor, produzido por uma
// única consulta agrupada: identidade do contato, última mensagem e total.
type Conversa struct {
	Contato        UserResumo `json:"contato"`
	UltimaMensagem Mensagem   `json:"ultimaMensagem"`
	Total          int        `json:"total"`
}
