package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"recipe-llm/internal/config"
	"recipe-llm/internal/db"
	"recipe-llm/internal/domain"
	"recipe-llm/internal/llm"
	"recipe-llm/internal/repository"
	"recipe-llm/internal/service"
)

// Scenario siembra Recipes para un usuario y espera que Query devuelva primero Recipes[Expected].
type Scenario struct {
	Name     string
	Recipes  []string
	Query    string
	Expected int
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres || cfg.LLMEmbeddingModel == "" {
		log.Fatal("similarity_check needs STORE_DRIVER=postgres and LLM_EMBEDDING_MODEL")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	userRepo := repository.NewPgUserRepository(pool)
	recipeRepo := repository.NewPgRecipeRepository(pool)
	llmClient, embedder := llm.NewFromConfig(cfg, zap.NewNop())
	recipeSvc := service.NewRecipeService(zap.NewNop(), recipeRepo, userRepo, llmClient, embedder, nil)

	scenarios := []Scenario{
		{
			Name:     "Ingrediente exacto",
			Recipes:  []string{"eggs, spinach, feta", "chicken, rice, peas", "flour, sugar, butter"},
			Query:    "chicken and rice",
			Expected: 1,
		},
		{
			Name:     "Sinónimos",
			Recipes:  []string{"tomatoes, basil, mozzarella", "salmon, dill, lemon", "oats, banana, honey"},
			Query:    "fresh fish with citrus",
			Expected: 1,
		},
		{
			Name:     "Repostería",
			Recipes:  []string{"beef, onion, carrots", "flour, cocoa, eggs, sugar", "lentils, cumin, garlic"},
			Query:    "chocolate cake",
			Expected: 1,
		},
	}

	passed := 0
	total := len(scenarios)

	for _, sc := range scenarios {
		fmt.Printf("=== Ejecutando: %s ===\n", sc.Name)

		owner, err := createUser(ctx, userRepo, sc.Name)
		if err != nil {
			fmt.Printf("❌ FAIL [%s] create user: %v\n\n", sc.Name, err)
			continue
		}
		stranger, err := createUser(ctx, userRepo, sc.Name+" (ajeno)")
		if err != nil {
			fmt.Printf("❌ FAIL [%s] create user: %v\n\n", sc.Name, err)
			continue
		}

		ids, err := seed(ctx, recipeSvc, owner.ID, sc.Recipes)
		if err != nil {
			fmt.Printf("❌ FAIL [%s] seed: %v\n\n", sc.Name, err)
			continue
		}
		if _, err := seed(ctx, recipeSvc, stranger.ID, []string{sc.Query}); err != nil {
			fmt.Printf("❌ FAIL [%s] seed stranger: %v\n\n", sc.Name, err)
			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		results, err := recipeSvc.Similar(runCtx, owner.ID, sc.Query, len(sc.Recipes))
		cancel()
		if err != nil {
			fmt.Printf("❌ FAIL [%s] similar: %v\n\n", sc.Name, err)
			continue
		}

		fmt.Println("--- Resultados ---")
		leaked := false
		for _, r := range results {
			fmt.Printf("%.4f  %s\n", r.Distance, r.Ingredients)
			if r.UserID != owner.ID {
				leaked = true
			}
		}
		fmt.Println("------------------")

		switch {
		case leaked:
			fmt.Printf("❌ FAIL [%s] resultados de otro usuario\n\n", sc.Name)
		case len(results) == 0 || results[0].ID != ids[sc.Expected]:
			fmt.Printf("❌ FAIL [%s] esperado=%q\n\n", sc.Name, sc.Recipes[sc.Expected])
		default:
			fmt.Printf("✅ PASS [%s]\n\n", sc.Name)
			passed++
		}

		_, _ = recipeSvc.Clear(ctx, owner.ID)
		_, _ = recipeSvc.Clear(ctx, stranger.ID)
	}

	fmt.Printf("Tests: %d/%d pasaron\n", passed, total)
	if passed != total {
		os.Exit(1)
	}
	os.Exit(0)
}

func createUser(ctx context.Context, users repository.UserRepository, name string) (domain.User, error) {
	id := uuid.NewString()
	user := domain.User{
		ID:           id,
		Email:        fmt.Sprintf("similarity_%s@example.com", id),
		Name:         name,
		PasswordHash: "-",
		CreatedAt:    time.Now().UTC(),
	}
	return user, users.Create(ctx, user)
}

func seed(ctx context.Context, recipes *service.RecipeService, userID string, ingredients []string) ([]string, error) {
	ids := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		item, err := recipes.Save(ctx, userID, ing, "Recipe with "+ing)
		if err != nil {
			return nil, err
		}
		if item.Embedding == nil {
			return nil, fmt.Errorf("no embedding stored for %q", ing)
		}
		ids = append(ids, item.ID)
	}
	return ids, nil
}
