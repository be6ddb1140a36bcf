package cavalorepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/cache"
	"equitrade/internal/pkg/database"
	"equitrade/internal/pkg/logger"
)

// cavaloCacheKey é a chave de cache para cavalos individuais (estratégia Cache-Aside).
const cavaloCacheKey = "cavalo:%s"

// cavaloCacheTTL limita a janela em que uma leitura pode servir dados obsoletos
// vindos de escritas feitas fora deste processo.
const cavaloCacheTTL = 5 * time.Minute

const cavaloColumns = `c.id, c.nome, c.idade, c.raca, c.preco, c.descricao, c.disponivel, c.premios,
	c.created_at, c.updated_at, u.id, u.nome, u.email, u.tipo`

const cavaloFrom = "FROM cavalos c JOIN users u ON u.id = c.dono_id"

// CavaloRepository implementa a persistência de cavalos, com leitura
// individual acelerada por cache Redis.
type CavaloRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCavaloRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewCavaloRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *CavaloRepository {
	return &CavaloRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanCavalo mapeia uma linha do join cavalos+users para domain.Cavalo.
func scanCavalo(row interface{ Scan(...interface{}) error }) (domain.Cavalo, error) {
	var c domain.Cavalo
	var descricao, premios sql.NullString

	err := row.Scan(
		&c.ID,
		&c.Nome,
		&c.Idade,
		&c.Raca,
		&c.Preco,
		&descricao,
		&c.Disponivel,
		&premios,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Dono.ID,
		&c.Dono.Nome,
		&c.Dono.Email,
		&c.Dono.Tipo,
	)
	if err != nil {
		return domain.Cavalo{}, err
	}

	c.Descricao = descricao.String
	c.Premios = premios.String
	return c, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Create insere um novo cavalo pertencente ao dono informado.
func (r *CavaloRepository) Create(ctx context.Context, cavalo domain.Cavalo) (domain.Cavalo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	cavalo.ID = uuid.NewString()
	cavalo.CreatedAt = time.Now().UTC()
	cavalo.UpdatedAt = cavalo.CreatedAt

	const insertSQL = `INSERT INTO cavalos (id, nome, idade, raca, preco, descricao, disponivel, premios, dono_id, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		cavalo.ID,
		cavalo.Nome,
		cavalo.Idade,
		cavalo.Raca,
		cavalo.Preco,
		nullable(cavalo.Descricao),
		cavalo.Disponivel,
		nullable(cavalo.Premios),
		cavalo.Dono.ID,
		cavalo.CreatedAt,
		cavalo.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir cavalo no DB.", err)
		return domain.Cavalo{}, apperror.NewDBError("failed to insert cavalo", err)
	}

	r.logger.Info("Cavalo salvo com sucesso no repositório.", map[string]interface{}{"cavalo_id": cavalo.ID, "dono_id": cavalo.Dono.ID})
	return cavalo, nil
}

// FindByID busca um cavalo pelo ID, utilizando a estratégia Cache-Aside.
func (r *CavaloRepository) FindByID(ctx context.Context, id string) (domain.Cavalo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(cavaloCacheKey, id)
	var cavalo domain.Cavalo

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &cavalo) == nil {
			return cavalo, nil
		}
		// Desserialização falhou; segue para o DB.
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): loga e segue para o DB.
		r.logger.Warn("Falha ao ler cavalo do cache.", map[string]interface{}{"cavalo_id": id, "erro": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1", cavaloColumns, cavaloFrom)
	cavalo, err = scanCavalo(r.DB.QueryRowContext(ctxTimeout, query, id))

	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidUUID(err) {
		return domain.Cavalo{}, apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar cavalo no DB.", err)
		return domain.Cavalo{}, apperror.NewDBError("failed to find cavalo by id", err)
	}

	// 3. Popula o cache para futuras requisições.
	if cavaloJSON, marshalErr := json.Marshal(cavalo); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, cavaloJSON, cavaloCacheTTL)
	}

	return cavalo, nil
}

// FindAll retorna os cavalos que satisfazem o filtro, mais recentes primeiro.
// Predicados ausentes não restringem; os presentes compõem em AND.
func (r *CavaloRepository) FindAll(ctx context.Context, filter domain.CavaloFilter) ([]domain.Cavalo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where := []string{}
	args := []interface{}{}
	idx := 1

	addWhere := func(clause string, value interface{}) {
		where = append(where, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	if filter.Disponivel != nil {
		addWhere("c.disponivel = $%d", *filter.Disponivel)
	}
	if filter.NomeContains != "" {
		addWhere("c.nome ILIKE $%d", "%"+filter.NomeContains+"%")
	}
	if filter.RacaContains != "" {
		addWhere("c.raca ILIKE $%d", "%"+filter.RacaContains+"%")
	}
	if filter.PrecoMin != nil {
		addWhere("c.preco >= $%d", *filter.PrecoMin)
	}
	if filter.PrecoMax != nil {
		addWhere("c.preco <= $%d", *filter.PrecoMax)
	}
	if filter.IdadeMin != nil {
		addWhere("c.idade >= $%d", *filter.IdadeMin)
	}
	if filter.IdadeMax != nil {
		addWhere("c.idade <= $%d", *filter.IdadeMax)
	}
	if filter.DonoID != "" {
		addWhere("c.dono_id = $%d", filter.DonoID)
	}

	query := fmt.Sprintf("SELECT %s %s", cavaloColumns, cavaloFrom)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar cavalos no DB.", err)
		return nil, apperror.NewDBError("failed to list cavalos", err)
	}
	defer rows.Close()

	cavalos := []domain.Cavalo{}
	for rows.Next() {
		cavalo, err := scanCavalo(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan cavalo row", err)
		}
		cavalos = append(cavalos, cavalo)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate cavalo rows", err)
	}

	return cavalos, nil
}

// Update aplica uma atualização parcial e devolve o registro atualizado.
func (r *CavaloRepository) Update(ctx context.Context, id string, update domain.CavaloUpdate) (domain.Cavalo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	set := []string{}
	args := []interface{}{}
	idx := 1

	addSet := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if update.Nome != nil {
		addSet("nome", *update.Nome)
	}
	if update.Idade != nil {
		addSet("idade", *update.Idade)
	}
	if update.Raca != nil {
		addSet("raca", *update.Raca)
	}
	if update.Preco != nil {
		addSet("preco", *update.Preco)
	}
	if update.Descricao != nil {
		addSet("descricao", nullable(*update.Descricao))
	}
	if update.Premios != nil {
		addSet("premios", nullable(*update.Premios))
	}

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	addSet("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE cavalos SET %s WHERE id = $%d", strings.Join(set, ", "), idx)

	result, err := r.DB.ExecContext(ctxTimeout, query, args...)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return domain.Cavalo{}, apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao atualizar cavalo no DB.", err)
		return domain.Cavalo{}, apperror.NewDBError("failed to update cavalo", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Cavalo{}, apperror.NewDBError("failed to read update result", err)
	}
	if affected == 0 {
		return domain.Cavalo{}, apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
	}

	// Invalida o cache antes de reler o registro atualizado.
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(cavaloCacheKey, id))
	return r.FindByID(ctx, id)
}

// SetDisponibilidade altera o estado de disponibilidade do cavalo.
// A checagem de estado repetido acontece no serviço, antes desta escrita.
func (r *CavaloRepository) SetDisponibilidade(ctx context.Context, id string, disponivel bool) (domain.Cavalo, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(
		ctxTimeout,
		"UPDATE cavalos SET disponivel = $2, updated_at = $3 WHERE id = $1",
		id, disponivel, time.Now().UTC(),
	)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return domain.Cavalo{}, apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao alterar disponibilidade do cavalo no DB.", err)
		return domain.Cavalo{}, apperror.NewDBError("failed to set cavalo availability", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Cavalo{}, apperror.NewDBError("failed to read availability result", err)
	}
	if affected == 0 {
		return domain.Cavalo{}, apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(cavaloCacheKey, id))
	return r.FindByID(ctx, id)
}

// Delete remove um cavalo pelo ID. Anúncios dependentes cascateiam via FK.
func (r *CavaloRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM cavalos WHERE id = $1", id)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao excluir cavalo no DB.", err)
		return apperror.NewDBError("failed to delete cavalo", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Cavalo com id '%s' não encontrado", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(cavaloCacheKey, id))
	r.logger.Info("Cavalo excluído do repositório.", map[string]interface{}{"cavalo_id": id})
	return nil
}

// Stats retorna os contadores agregados de cavalos.
func (r *CavaloRepository) Stats(ctx context.Context) (domain.CavaloStats, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var stats domain.CavaloStats
	err := r.DB.QueryRowContext(
		ctxTimeout,
		"SELECT COUNT(1), COUNT(1) FILTER (WHERE disponivel) FROM cavalos",
	).Scan(&stats.Total, &stats.Disponiveis)
	if err != nil {
		r.logger.Error("Falha ao agregar estatísticas de cavalos no DB.", err)
		return domain.CavaloStats{}, apperror.NewDBError("failed to aggregate cavalo stats", err)
	}

	return stats, nil
}
