package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Recipe es una receta generada o guardada por un usuario. Siempre pertenece a UserID.
type Recipe struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Ingredients string           `json:"ingredients"`
	Recipe      string           `json:"recipe"`
	Embedding   *pgvector.Vector `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ScoredRecipe acompaña una receta con su distancia coseno a la consulta.
type ScoredRecipe struct {
	Recipe
	Distance float64 `json:"distance"`
}
