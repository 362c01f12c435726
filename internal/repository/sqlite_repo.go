package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"recipe-llm/internal/domain"
)

// sqliteTimeLayout es de ancho fijo para que ORDER BY sobre texto respete el orden cronológico.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return t, nil
}

// SQLiteUserRepository implementa UserRepository sobre database/sql con modernc.org/sqlite.
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		formatSQLiteTime(user.CreatedAt),
	)
	if isSQLiteUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT id, email, password_hash, name, created_at FROM users WHERE id = ?`
	return r.scanOne(ctx, query, id)
}

func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?`
	return r.scanOne(ctx, query, email)
}

func (r *SQLiteUserRepository) scanOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("query user: %w", err)
	}
	if u.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// SQLiteRecipeRepository implementa RecipeRepository sin soporte de embeddings.
type SQLiteRecipeRepository struct {
	db *sql.DB
}

func NewSQLiteRecipeRepository(db *sql.DB) *SQLiteRecipeRepository {
	return &SQLiteRecipeRepository{db: db}
}

func (r *SQLiteRecipeRepository) Create(ctx context.Context, recipe domain.Recipe) error {
	const query = `
		INSERT INTO recipes (id, user_id, ingredients, recipe, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Ingredients,
		recipe.Recipe,
		formatSQLiteTime(recipe.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (r *SQLiteRecipeRepository) ListByUser(ctx context.Context, userID string) ([]domain.Recipe, error) {
	const query = `
		SELECT id, user_id, ingredients, recipe, created_at
		FROM recipes
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		var (
			rec       domain.Recipe
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Ingredients, &rec.Recipe, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		if rec.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (r *SQLiteRecipeRepository) GetForUser(ctx context.Context, userID, id string) (domain.Recipe, error) {
	const query = `
		SELECT id, user_id, ingredients, recipe, created_at
		FROM recipes
		WHERE id = ? AND user_id = ?
	`
	var (
		rec       domain.Recipe
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&rec.ID, &rec.UserID, &rec.Ingredients, &rec.Recipe, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Recipe{}, ErrNotFound
	}
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	if rec.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return domain.Recipe{}, err
	}
	return rec, nil
}

func (r *SQLiteRecipeRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRecipeRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear recipes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecipeRepository) SimilarForUser(context.Context, string, pgvector.Vector, int) ([]domain.ScoredRecipe, error) {
	return nil, ErrUnsupported
}

var (
	_ UserRepository   = (*PgUserRepository)(nil)
	_ UserRepository   = (*SQLiteUserRepository)(nil)
	_ RecipeRepository = (*PgRecipeRepository)(nil)
	_ RecipeRepository = (*SQLiteRecipeRepository)(nil)
)
