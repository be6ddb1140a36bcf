package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
)

// Envelope é o formato padrão de toda resposta da API.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Writer centraliza a serialização de respostas e o log de erros,
// para que os Handlers não repitam esse boilerplate.
type Writer struct {
	Logger logger.Logger
}

// NewWriter cria um Writer com o Logger injetado.
func NewWriter(log logger.Logger) *Writer {
	return &Writer{Logger: log}
}

func (wr *Writer) write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		wr.Logger.Error("Falha ao codificar JSON de resposta", err)
	}
}

// Success envia um payload de sucesso com o status informado.
func (wr *Writer) Success(w http.ResponseWriter, status int, message string, data interface{}) {
	wr.write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// List envia uma coleção de sucesso incluindo o campo count.
func (wr *Writer) List(w http.ResponseWriter, status int, message string, data interface{}, count int) {
	wr.write(w, status, Envelope{Success: true, Message: message, Data: data, Count: &count})
}

// Error mapeia o erro para o status HTTP via a categoria tipada e envia
// o envelope de falha: o texto legível para o usuário vai em message, e a
// categoria do erro (diagnóstico) vai em error. Erros 5xx vão para o log
// com a causa raiz; erros de cliente são apenas registrados em debug.
func (wr *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		wr.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
		// Nunca vazamos a causa raiz de um 500 para o cliente.
		message = "Erro interno do servidor"
	} else {
		wr.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}

	wr.write(w, status, Envelope{Success: false, Message: message, Error: category})
}
