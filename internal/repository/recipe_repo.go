package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"recipe-llm/internal/domain"
)

// RecipeRepository persiste recetas. Toda operación recibe el userID dueño y filtra por él.
type RecipeRepository interface {
	Create(ctx context.Context, recipe domain.Recipe) error
	ListByUser(ctx context.Context, userID string) ([]domain.Recipe, error)
	GetForUser(ctx context.Context, userID, id string) (domain.Recipe, error)
	DeleteForUser(ctx context.Context, userID, id string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	SimilarForUser(ctx context.Context, userID string, query pgvector.Vector, k int) ([]domain.ScoredRecipe, error)
}

type PgRecipeRepository struct {
	pool *pgxpool.Pool
}

func NewPgRecipeRepository(pool *pgxpool.Pool) *PgRecipeRepository {
	return &PgRecipeRepository{pool: pool}
}

func (r *PgRecipeRepository) Create(ctx context.Context, recipe domain.Recipe) error {
	const query = `
		INSERT INTO recipes (id, user_id, ingredients, recipe, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var embedding interface{}
	if recipe.Embedding != nil {
		embedding = *recipe.Embedding
	}

	_, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Ingredients,
		recipe.Recipe,
		embedding,
		recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (r *PgRecipeRepository) ListByUser(ctx context.Context, userID string) ([]domain.Recipe, error) {
	const query = `
		SELECT id, user_id, ingredients, recipe, created_at
		FROM recipes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		var rec domain.Recipe
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Ingredients, &rec.Recipe, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (r *PgRecipeRepository) GetForUser(ctx context.Context, userID, id string) (domain.Recipe, error) {
	const query = `
		SELECT id, user_id, ingredients, recipe, created_at
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`
	var rec domain.Recipe
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Ingredients,
		&rec.Recipe,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Recipe{}, ErrNotFound
	}
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return rec, nil
}

func (r *PgRecipeRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM recipes WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRecipeRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM recipes WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("clear recipes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SimilarForUser ordena las recetas del usuario por distancia coseno (pgvector) a la consulta.
func (r *PgRecipeRepository) SimilarForUser(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]domain.ScoredRecipe, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, user_id, ingredients, recipe, created_at, embedding <=> $2 AS distance
		FROM recipes
		WHERE user_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("similar recipes: %w", err)
	}
	defer rows.Close()

	results := []domain.ScoredRecipe{}
	for rows.Next() {
		var sr domain.ScoredRecipe
		if err := rows.Scan(&sr.ID, &sr.UserID, &sr.Ingredients, &sr.Recipe, &sr.CreatedAt, &sr.Distance); err != nil {
			return nil, fmt.Errorf("scan similar recipe: %w", err)
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similar recipes: %w", err)
	}
	return results, nil
}
