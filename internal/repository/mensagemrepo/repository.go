package mensagemrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/database"
	"equitrade/internal/pkg/logger"
)

const mensagemColumns = `m.id, m.conteudo, m.create_at,
	ru.id, ru.nome, ru.email, ru.tipo,
	du.id, du.nome, du.email, du.tipo`

const mensagemFrom = `FROM mensagens m
	JOIN users ru ON ru.id = m.remetente_id
	JOIN users du ON du.id = m.destinatario_id`

// MensagemRepository implementa a persistência de mensagens diretas.
type MensagemRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewMensagemRepository cria uma nova instância do MensagemRepository.
func NewMensagemRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *MensagemRepository {
	return &MensagemRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanMensagem mapeia uma linha do join mensagens+users para domain.Mensagem.
func scanMensagem(row interface{ Scan(...interface{}) error }) (domain.Mensagem, error) {
	var m domain.Mensagem

	err := row.Scan(
		&m.ID,
		&m.Conteudo,
		&m.CreateAt,
		&m.Remetente.ID,
		&m.Remetente.Nome,
		&m.Remetente.Email,
		&m.Remetente.Tipo,
		&m.Destinatario.ID,
		&m.Destinatario.Nome,
		&m.Destinatario.Email,
		&m.Destinatario.Tipo,
	)
	if err != nil {
		return domain.Mensagem{}, err
	}

	return m, nil
}

// Create insere uma nova mensagem com timestamp atribuído pelo servidor.
func (r *MensagemRepository) Create(ctx context.Context, mensagem domain.Mensagem) (domain.Mensagem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	mensagem.ID = uuid.NewString()
	mensagem.CreateAt = time.Now().UTC()

	const insertSQL = `INSERT INTO mensagens (id, conteudo, remetente_id, destinatario_id, create_at)
	                   VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		mensagem.ID,
		mensagem.Conteudo,
		mensagem.Remetente.ID,
		mensagem.Destinatario.ID,
		mensagem.CreateAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir mensagem no DB.", err)
		return domain.Mensagem{}, apperror.NewDBError("failed to insert mensagem", err)
	}

	r.logger.Info("Mensagem salva com sucesso no repositório.", map[string]interface{}{
		"mensagem_id":     mensagem.ID,
		"remetente_id":    mensagem.Remetente.ID,
		"destinatario_id": mensagem.Destinatario.ID,
	})
	return mensagem, nil
}

// FindByID busca uma mensagem pelo ID, com remetente e destinatário embutidos.
func (r *MensagemRepository) FindByID(ctx context.Context, id string) (domain.Mensagem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s %s WHERE m.id = $1", mensagemColumns, mensagemFrom)
	mensagem, err := scanMensagem(r.DB.QueryRowContext(ctxTimeout, query, id))

	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidUUID(err) {
		return domain.Mensagem{}, apperror.NewNotFoundError(fmt.Sprintf("Mensagem com id '%s' não encontrada", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar mensagem no DB.", err)
		return domain.Mensagem{}, apperror.NewDBError("failed to find mensagem by id", err)
	}

	return mensagem, nil
}

// FindBySenderID retorna as mensagens enviadas pelo usuário, mais recentes primeiro.
func (r *MensagemRepository) FindBySenderID(ctx context.Context, senderID string) ([]domain.Mensagem, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.remetente_id = $1 ORDER BY m.create_at DESC", mensagemColumns, mensagemFrom)
	return r.queryMensagens(ctx, query, senderID)
}

// FindByReceiverID retorna as mensagens recebidas pelo usuário, mais recentes primeiro.
func (r *MensagemRepository) FindByReceiverID(ctx context.Context, receiverID string) ([]domain.Mensagem, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.destinatario_id = $1 ORDER BY m.create_at DESC", mensagemColumns, mensagemFrom)
	return r.queryMensagens(ctx, query, receiverID)
}

// FindConversation retorna todas as mensagens trocadas entre dois usuários,
// em ordem cronológica ascendente: a visão de conversa renderiza de cima
// para baixo, da mais antiga para a mais nova.
func (r *MensagemRepository) FindConversation(ctx context.Context, userID1, userID2 string) ([]domain.Mensagem, error) {
	query := fmt.Sprintf(`SELECT %s %s
		WHERE (m.remetente_id = $1 AND m.destinatario_id = $2)
		   OR (m.remetente_id = $2 AND m.destinatario_id = $1)
		ORDER BY m.create_at ASC`, mensagemColumns, mensagemFrom)
	return r.queryMensagens(ctx, query, userID1, userID2)
}

func (r *MensagemRepository) queryMensagens(ctx context.Context, query string, args ...interface{}) ([]domain.Mensagem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar mensagens no DB.", err)
		return nil, apperror.NewDBError("failed to list mensagens", err)
	}
	defer rows.Close()

	mensagens := []domain.Mensagem{}
	for rows.Next() {
		mensagem, err := scanMensagem(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan mensagem row", err)
		}
		mensagens = append(mensagens, mensagem)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate mensagem rows", err)
	}

	return mensagens, nil
}

// FindConversations materializa o resumo de todas as conversas do usuário em
// UMA consulta agrupada: por interlocutor, a identidade, o total de mensagens
// e a última mensagem trocada. Substitui o fan-out de uma consulta por
// interlocutor, que não escala com a base de usuários.
func (r *MensagemRepository) FindConversations(ctx context.Context, userID string) ([]domain.Conversa, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		WITH agregado AS (
			SELECT CASE WHEN remetente_id = $1 THEN destinatario_id ELSE remetente_id END AS contato_id,
			       COUNT(1) AS total
			FROM mensagens
			WHERE remetente_id = $1 OR destinatario_id = $1
			GROUP BY 1
		)
		SELECT u.id, u.nome, u.email, u.tipo,
		       ag.total,
		       m.id, m.conteudo, m.create_at,
		       ru.id, ru.nome, ru.email, ru.tipo,
		       du.id, du.nome, du.email, du.tipo
		FROM agregado ag
		JOIN users u ON u.id = ag.contato_id
		JOIN LATERAL (
			SELECT id, conteudo, create_at, remetente_id, destinatario_id
			FROM mensagens
			WHERE (remetente_id = $1 AND destinatario_id = ag.contato_id)
			   OR (remetente_id = ag.contato_id AND destinatario_id = $1)
			ORDER BY create_at DESC
			LIMIT 1
		) m ON TRUE
		JOIN users ru ON ru.id = m.remetente_id
		JOIN users du ON du.id = m.destinatario_id
		ORDER BY m.create_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao listar conversas no DB.", err)
		return nil, apperror.NewDBError("failed to list conversas", err)
	}
	defer rows.Close()

	conversas := []domain.Conversa{}
	for rows.Next() {
		var cv domain.Conversa
		err := rows.Scan(
			&cv.Contato.ID,
			&cv.Contato.Nome,
			&cv.Contato.Email,
			&cv.Contato.Tipo,
			&cv.Total,
			&cv.UltimaMensagem.ID,
			&cv.UltimaMensagem.Conteudo,
			&cv.UltimaMensagem.CreateAt,
			&cv.UltimaMensagem.Remetente.ID,
			&cv.UltimaMensagem.Remetente.Nome,
			&cv.UltimaMensagem.Remetente.Email,
			&cv.UltimaMensagem.Remetente.Tipo,
			&cv.UltimaMensagem.Destinatario.ID,
			&cv.UltimaMensagem.Destinatario.Nome,
			&cv.UltimaMensagem.Destinatario.Email,
			&cv.UltimaMensagem.Destinatario.Tipo,
		)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan conversa row", err)
		}
		conversas = append(conversas, cv)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate conversa rows", err)
	}

	return conversas, nil
}

// Delete remove uma mensagem pelo ID (exclusão definitiva, sem "desenviar").
func (r *MensagemRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM mensagens WHERE id = $1", id)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return apperror.NewNotFoundError(fmt.Sprintf("Mensagem com id '%s' não encontrada", id))
		}
		r.logger.Error("Falha ao excluir mensagem no DB.", err)
		return apperror.NewDBError("failed to delete mensagem", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Mensagem com id '%s' não encontrada", id))
	}

	r.logger.Info("Mensagem excluída do repositório.", map[string]interface{}{"mensagem_id": id})
	return nil
}
