package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/database"
	"equitrade/internal/pkg/logger"
)

// pgUniqueViolation é o código de erro do PostgreSQL para violação de
// constraint UNIQUE (usado como segunda linha de defesa para o email).
const pgUniqueViolation = "23505"

const userColumns = "id, nome, email, senha_hash, celular, endereco, tipo, nota, numero_avaliacoes, created_at, updated_at"

// UserRepository implementa a persistência da hierarquia polimórfica de
// usuários sobre uma única tabela com coluna discriminadora.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanUser mapeia uma linha da tabela users para a struct domain.User.
func scanUser(row interface{ Scan(...interface{}) error }) (domain.User, error) {
	var user domain.User
	var celular, endereco sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Nome,
		&user.Email,
		&user.SenhaHash,
		&celular,
		&endereco,
		&user.Tipo,
		&user.Nota,
		&user.NumeroAvaliacoes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	user.Celular = celular.String
	user.Endereco = endereco.String
	return user, nil
}

// nullable converte string vazia para NULL no banco.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// create insere um novo usuário com a variante informada.
func (r *UserRepository) create(ctx context.Context, user domain.User, tipo domain.TipoUsuario) (domain.User, error) {
	r.logger.Debug("Iniciando criação de usuário no repositório.", map[string]interface{}{"email": user.Email, "tipo": string(tipo)})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.Tipo = tipo
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	const insertSQL = `INSERT INTO users (id, nome, email, senha_hash, celular, endereco, tipo, nota, numero_avaliacoes, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		user.ID,
		user.Nome,
		user.Email,
		user.SenhaHash,
		nullable(user.Celular),
		nullable(user.Endereco),
		string(tipo),
		user.Nota,
		user.NumeroAvaliacoes,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			r.logger.Info("Tentativa de inserir email duplicado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError("Email já cadastrado")
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "tipo": string(tipo)})
	return user, nil
}

// CreateComprador insere um novo usuário da variante Comprador.
func (r *UserRepository) CreateComprador(ctx context.Context, user domain.User) (domain.User, error) {
	user.Nota = 0
	user.NumeroAvaliacoes = 0
	return r.create(ctx, user, domain.TipoComprador)
}

// CreateVendedor insere um novo usuário da variante Vendedor.
// A nota inicial vem preenchida do serviço (padrão 0.0).
func (r *UserRepository) CreateVendedor(ctx context.Context, user domain.User) (domain.User, error) {
	return r.create(ctx, user, domain.TipoVendedor)
}

// FindByID busca um usuário pelo ID, em ambas as variantes.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, id))

	if err != nil {
		// Um id sintaticamente inválido nunca identifica um registro.
		if errors.Is(err, sql.ErrNoRows) || database.IsInvalidUUID(err) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao buscar usuário por id no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}

	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail, em ambas as variantes.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, email))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}

	return user, nil
}

// ExistsByEmail verifica se já existe usuário (de qualquer variante) com o email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int
	err := r.DB.QueryRowContext(ctxTimeout, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count)
	if err != nil {
		r.logger.Error("Falha ao verificar existência de email no DB.", err)
		return false, apperror.NewDBError("failed to check email existence", err)
	}

	return count > 0, nil
}

// FindAll retorna todos os usuários, das duas variantes.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC", userColumns)
	return r.queryUsers(ctx, query)
}

// FindAllByTipo retorna todos os usuários de uma variante específica.
func (r *UserRepository) FindAllByTipo(ctx context.Context, tipo domain.TipoUsuario) ([]domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE tipo = $1 ORDER BY created_at DESC", userColumns)
	return r.queryUsers(ctx, query, string(tipo))
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return nil, apperror.NewDBError("failed to list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan user row", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate user rows", err)
	}

	return users, nil
}

// Update aplica uma atualização parcial: somente os campos não-nil entram no
// SET. O campo Senha, quando presente, já chega hasheado do serviço.
func (r *UserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
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
	if update.Email != nil {
		addSet("email", *update.Email)
	}
	if update.Senha != nil {
		addSet("senha_hash", *update.Senha)
	}
	if update.Celular != nil {
		addSet("celular", nullable(*update.Celular))
	}
	if update.Endereco != nil {
		addSet("endereco", nullable(*update.Endereco))
	}
	if update.Nota != nil {
		addSet("nota", *update.Nota)
	}

	if len(set) == 0 {
		// Nada a atualizar; devolve o estado atual.
		return r.FindByID(ctx, id)
	}

	addSet("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), idx, userColumns,
	)

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || database.IsInvalidUUID(err) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return domain.User{}, apperror.NewConflictError("Email já cadastrado")
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to update user", err)
	}

	r.logger.Info("Usuário atualizado no repositório.", map[string]interface{}{"user_id": id})
	return user, nil
}

// Delete remove um usuário pelo ID, sem distinguir a variante.
// As linhas dependentes (cavalos, anúncios, mensagens) cascateiam via FK.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		if database.IsInvalidUUID(err) {
			return apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao excluir usuário no DB.", err)
		return apperror.NewDBError("failed to delete user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
	}

	r.logger.Info("Usuário excluído do repositório.", map[string]interface{}{"user_id": id})
	return nil
}

// RateVendedor recalcula a média de avaliação do vendedor em um único UPDATE.
// A atomicidade da instrução elimina a corrida de leitura-modificação-escrita
// entre avaliadores concorrentes do mesmo vendedor.
func (r *UserRepository) RateVendedor(ctx context.Context, vendedorID string, rating int) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		UPDATE users
		SET nota = (nota * numero_avaliacoes + $2) / (numero_avaliacoes + 1),
		    numero_avaliacoes = numero_avaliacoes + 1,
		    updated_at = $3
		WHERE id = $1 AND tipo = $4
		RETURNING %s`, userColumns)

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, vendedorID, rating, time.Now().UTC(), string(domain.TipoVendedor)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || database.IsInvalidUUID(err) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Vendedor com id '%s' não encontrado", vendedorID))
		}
		r.logger.Error("Falha ao avaliar vendedor no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to rate vendedor", err)
	}

	r.logger.Info("Vendedor avaliado.", map[string]interface{}{"vendedor_id": vendedorID, "nota": user.Nota, "numero_avaliacoes": user.NumeroAvaliacoes})
	return user, nil
}
