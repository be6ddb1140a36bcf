package anunciorepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/database"
	"equitrade/internal/pkg/logger"
)

const anuncioColumns = `a.id, a.titulo, a.tipo, a.descricao, a.preco, a.ativo, a.created_at, a.updated_at,
	u.id, u.nome, u.email, u.tipo, c.id, c.nome, c.raca, c.idade`

const anuncioFrom = `FROM anuncios a
	JOIN users u ON u.id = a.vendedor_id
	JOIN cavalos c ON c.id = a.cavalo_id`

// AnuncioRepository implementa a persistência de anúncios.
type AnuncioRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAnuncioRepository cria uma nova instância do AnuncioRepository.
func NewAnuncioRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *AnuncioRepository {
	return &AnuncioRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanAnuncio mapeia uma linha do join anuncios+users+cavalos para domain.Anuncio.
func scanAnuncio(row interface{ Scan(...interface{}) error }) (domain.Anuncio, error) {
	var a domain.Anuncio
	var descricao sql.NullString

	err := row.Scan(
		&a.ID,
		&a.Titulo,
		&a.Tipo,
		&descricao,
		&a.Preco,
		&a.Ativo,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.Vendedor.ID,
		&a.Vendedor.Nome,
		&a.Vendedor.Email,
		&a.Vendedor.Tipo,
		&a.Cavalo.ID,
		&a.Cavalo.Nome,
		&a.Cavalo.Raca,
		&a.Cavalo.Idade,
	)
	if err != nil {
		return domain.Anuncio{}, err
	}

	a.Descricao = descricao.String
	return a, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Create insere um novo anúncio vinculando vendedor e cavalo existentes.
func (r *AnuncioRepository) Create(ctx context.Context, anuncio domain.Anuncio) (domain.Anuncio, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	anuncio.ID = uuid.NewString()
	anuncio.CreatedAt = time.Now().UTC()
	anuncio.UpdatedAt = anuncio.CreatedAt

	const insertSQL = `INSERT INTO anuncios (id, titulo, tipo, descricao, preco, ativo, vendedor_id, cavalo_id, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		anuncio.ID,
		anuncio.Titulo,
		anuncio.Tipo,
		nullable(anuncio.Descricao),
		anuncio.Preco,
		anuncio.Ativo,
		anuncio.Vendedor.ID,
		anuncio.Cavalo.ID,
		anuncio.CreatedAt,
		anuncio.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir anúncio no DB.", err)
		return domain.Anuncio{}, apperror.NewDBError("failed to insert anuncio", err)
	}

	r.logger.Info("Anúncio salvo com sucesso no repositório.", map[string]interface{}{"anuncio_id": anuncio.ID, "vendedor_id": anuncio.Vendedor.ID})
	return anuncio, nil
}

// FindByID busca um anúncio pelo ID, com vendedor e cavalo embutidos.
func (r *AnuncioRepository) FindByID(ctx context.Context, id string) (domain.Anuncio, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", anuncioColumns, anuncioFrom)
	anuncio, err := scanAnuncio(r.DB.QueryRowContext(ctxTimeout, query, id))

	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidUUID(err) {
		return domain.Anuncio{}, apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar anúncio no DB.", err)
		return domain.Anuncio{}, apperror.NewDBError("failed to find anuncio by id", err)
	}

	return anuncio, nil
}

// FindAll retorna os anúncios que satisfazem o filtro, mais recentes primeiro.
func (r *AnuncioRepository) FindAll(ctx context.Context, filter domain.AnuncioFilter) ([]domain.Anuncio, error) {
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

	if filter.Ativo != nil {
		addWhere("a.ativo = $%d", *filter.Ativo)
	}
	if filter.Tipo != "" {
		addWhere("a.tipo = $%d", filter.Tipo)
	}
	if filter.PrecoMin != nil {
		addWhere("a.preco >= $%d", *filter.PrecoMin)
	}
	if filter.PrecoMax != nil {
		addWhere("a.preco <= $%d", *filter.PrecoMax)
	}
	if filter.VendedorID != "" {
		addWhere("a.vendedor_id = $%d", filter.VendedorID)
	}
	if filter.CavaloID != "" {
		addWhere("a.cavalo_id = $%d", filter.CavaloID)
	}

	query := fmt.Sprintf("SELECT %s %s", anuncioColumns, anuncioFrom)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar anúncios no DB.", err)
		return nil, apperror.NewDBError("failed to list anuncios", err)
	}
	defer rows.Close()

	anuncios := []domain.Anuncio{}
	for rows.Next() {
		anuncio, err := scanAnuncio(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan anuncio row", err)
		}
		anuncios = append(anuncios, anuncio)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate anuncio rows", err)
	}

	return anuncios, nil
}

// Update aplica uma atualização parcial e devolve o registro atualizado.
func (r *AnuncioRepository) Update(ctx context.Context, id string, update domain.AnuncioUpdate) (domain.Anuncio, error) {
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

	if update.Titulo != nil {
		addSet("titulo", *update.Titulo)
	}
	if update.Tipo != nil {
		addSet("tipo", *update.Tipo)
	}
	if update.Descricao != nil {
		addSet("descricao", nullable(*update.Descricao))
	}
	if update.Preco != nil {
		addSet("preco", *update.Preco)
	}

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	addSet("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE anuncios SET %s WHERE id = $%d", strings.Join(set, ", "), idx)

	result, err := r.DB.ExecContext(ctxTimeout, query, args...)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return domain.Anuncio{}, apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao atualizar anúncio no DB.", err)
		return domain.Anuncio{}, apperror.NewDBError("failed to update anuncio", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Anuncio{}, apperror.NewDBError("failed to read update result", err)
	}
	if affected == 0 {
		return domain.Anuncio{}, apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
	}

	return r.FindByID(ctx, id)
}

// SetAtivo altera o estado ativo/inativo do anúncio.
// A checagem de estado repetido acontece no serviço, antes desta escrita.
func (r *AnuncioRepository) SetAtivo(ctx context.Context, id string, ativo bool) (domain.Anuncio, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(
		ctxTimeout,
		"UPDATE anuncios SET ativo = $2, updated_at = $3 WHERE id = $1",
		id, ativo, time.Now().UTC(),
	)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return domain.Anuncio{}, apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao alterar estado do anúncio no DB.", err)
		return domain.Anuncio{}, apperror.NewDBError("failed to set anuncio state", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Anuncio{}, apperror.NewDBError("failed to read state result", err)
	}
	if affected == 0 {
		return domain.Anuncio{}, apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
	}

	return r.FindByID(ctx, id)
}

// Delete remove um anúncio pelo ID.
func (r *AnuncioRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM anuncios WHERE id = $1", id)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao excluir anúncio no DB.", err)
		return apperror.NewDBError("failed to delete anuncio", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Anúncio com id '%s' não encontrado", id))
	}

	r.logger.Info("Anúncio excluído do repositório.", map[string]interface{}{"anuncio_id": id})
	return nil
}
