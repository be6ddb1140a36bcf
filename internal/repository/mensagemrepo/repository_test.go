package mensagemrepo_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
	"equitrade/internal/repository/mensagemrepo"
)

const (
	mariaID = "7f9c24e5-1f14-4b9a-9d36-9e0cc0afddeb"
	joaoID  = "0b1f8c2a-6a7d-4f3e-8b11-2d9f54c7a001"
)

func newTestRepo(t *testing.T) (*mensagemrepo.MensagemRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mensagemrepo.NewMensagemRepository(db, time.Second, logger.NewLogger("error")), mock
}

func mensagemRow(rows *sqlmock.Rows, id, conteudo string, createAt time.Time, remetenteID, destinatarioID string) *sqlmock.Rows {
	return rows.AddRow(
		id, conteudo, createAt,
		remetenteID, "Remetente", "remetente@example.com", "Comprador",
		destinatarioID, "Destinatário", "destinatario@example.com", "Vendedor",
	)
}

func mensagemColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"m.id", "m.conteudo", "m.create_at",
		"ru.id", "ru.nome", "ru.email", "ru.tipo",
		"du.id", "du.nome", "du.email", "du.tipo",
	})
}

// TestFindConversation_OrdemCronologicaAscendente fixa a consulta da conversa:
// o filtro cobre os dois sentidos da troca e a ordenação é ascendente por
// create_at, da mensagem mais antiga para a mais nova.
func TestFindConversation_OrdemCronologicaAscendente(t *testing.T) {
	repo, mock := newTestRepo(t)

	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	rows := mensagemColumns()
	mensagemRow(rows, "m1", "Oi, o cavalo ainda está disponível?", t1, mariaID, joaoID)
	mensagemRow(rows, "m2", "Está sim!", t2, joaoID, mariaID)
	mensagemRow(rows, "m3", "Ótimo, posso visitar amanhã?", t3, mariaID, joaoID)

	mock.ExpectQuery(`WHERE \(m\.remetente_id = \$1 AND m\.destinatario_id = \$2\) OR \(m\.remetente_id = \$2 AND m\.destinatario_id = \$1\) ORDER BY m\.create_at ASC$`).
		WithArgs(mariaID, joaoID).
		WillReturnRows(rows)

	mensagens, err := repo.FindConversation(context.Background(), mariaID, joaoID)

	assert.NoError(t, err)
	assert.Len(t, mensagens, 3)
	assert.Equal(t, "m1", mensagens[0].ID)
	assert.Equal(t, "m2", mensagens[1].ID)
	assert.Equal(t, "m3", mensagens[2].ID)
	assert.True(t, mensagens[0].CreateAt.Before(mensagens[1].CreateAt))
	assert.True(t, mensagens[1].CreateAt.Before(mensagens[2].CreateAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindBySenderID_OrdemDescendente fixa a listagem de enviadas: mais
// recentes primeiro.
func TestFindBySenderID_OrdemDescendente(t *testing.T) {
	repo, mock := newTestRepo(t)

	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rows := mensagemColumns()
	mensagemRow(rows, "m2", "segunda", t1.Add(time.Hour), mariaID, joaoID)
	mensagemRow(rows, "m1", "primeira", t1, mariaID, joaoID)

	mock.ExpectQuery(`WHERE m\.remetente_id = \$1 ORDER BY m\.create_at DESC$`).
		WithArgs(mariaID).
		WillReturnRows(rows)

	mensagens, err := repo.FindBySenderID(context.Background(), mariaID)

	assert.NoError(t, err)
	assert.Len(t, mensagens, 2)
	assert.Equal(t, "m2", mensagens[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDelete_Fail_IDMalformado verifica que um id que o PostgreSQL rejeita
// como UUID (erro 22P02) responde como recurso não encontrado, não como 500.
func TestDelete_Fail_IDMalformado(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM mensagens WHERE id = \$1`).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02"})

	err := repo.Delete(context.Background(), "abc")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
