package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"equitrade/internal/api/response"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
)

func newTestWriter() *response.Writer {
	return response.NewWriter(logger.NewLogger("error"))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// TestError_EnvelopeDeFalha verifica o formato do envelope de falha: o texto
// legível para o usuário fica em message e a categoria do erro fica em error.
func TestError_EnvelopeDeFalha(t *testing.T) {
	wr := newTestWriter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/abc", nil)

	wr.Error(rec, req, apperror.NewNotFoundError("Usuário não encontrado"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Usuário não encontrado", body["message"])
	assert.Equal(t, "NOT_FOUND", body["error"])
}

// TestError_ErroInternoNaoVazaCausaRaiz verifica que 5xx respondem com a
// mensagem genérica, sem expor o erro subjacente ao cliente.
func TestError_ErroInternoNaoVazaCausaRaiz(t *testing.T) {
	wr := newTestWriter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cavalos", nil)

	wr.Error(rec, req, apperror.NewDBError("failed to list cavalos", errors.New("dial tcp: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Erro interno do servidor", body["message"])
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

// TestSuccess_Envelope cobre o caminho de sucesso com message e data.
func TestSuccess_Envelope(t *testing.T) {
	wr := newTestWriter()
	rec := httptest.NewRecorder()

	wr.Success(rec, http.StatusCreated, "Usuário registrado com sucesso", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Usuário registrado com sucesso", body["message"])
	assert.NotContains(t, body, "error")
}

// TestList_IncluiCount cobre o envelope de coleção com o campo count.
func TestList_IncluiCount(t *testing.T) {
	wr := newTestWriter()
	rec := httptest.NewRecorder()

	wr.List(rec, http.StatusOK, "Cavalos listados", []string{"a", "b"}, 2)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
}
