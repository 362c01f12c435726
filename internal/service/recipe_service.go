package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"recipe-llm/internal/domain"
	"recipe-llm/internal/email"
	"recipe-llm/internal/llm"
	"recipe-llm/internal/repository"
)

var (
	ErrIngredientsRequired    = errors.New("ingredients are required")
	ErrRecipeRequired         = errors.New("ingredients and recipe are required")
	ErrSimilarityUnavailable  = errors.New("similarity search unavailable")
	ErrEmailSendFailure       = errors.New("email could not be sent")
	ErrRecipeGenerationFailed = errors.New("recipe generation failed")
)

const (
	defaultSimilarK = 5
	maxSimilarK     = 20
)

// RecipeService genera y administra las recetas de un usuario. Todas las operaciones reciben el userID dueño.
type RecipeService struct {
	logger   *zap.Logger
	recipes  repository.RecipeRepository
	users    repository.UserRepository
	llm      llm.LLMClient
	embedder llm.Embedder
	sender   email.Sender
	now      func() time.Time
}

func NewRecipeService(
	logger *zap.Logger,
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	llmClient llm.LLMClient,
	embedder llm.Embedder,
	sender email.Sender,
) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = email.NewDisabledSender("email sender not configured")
	}
	return &RecipeService{
		logger:   logger,
		recipes:  recipes,
		users:    users,
		llm:      llmClient,
		embedder: embedder,
		sender:   sender,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type GeneratedRecipe struct {
	Recipe   string `json:"recipe"`
	Saved    bool   `json:"saved"`
	RecipeID string `json:"recipe_id"`
}

// Generate pide la receta al LLM y la guarda automáticamente para el usuario.
func (s *RecipeService) Generate(ctx context.Context, userID, ingredients string) (GeneratedRecipe, error) {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return GeneratedRecipe{}, ErrIngredientsRequired
	}
	if s.llm == nil {
		return GeneratedRecipe{}, fmt.Errorf("%w: llm client not configured", ErrRecipeGenerationFailed)
	}

	start := time.Now()
	raw, err := s.llm.Generate(ctx, BuildRecipePrompt(ingredients))
	if err != nil {
		s.logger.Error("recipe generation failed", zap.String("user_id", userID), zap.Error(err))
		return GeneratedRecipe{}, fmt.Errorf("%w: %v", ErrRecipeGenerationFailed, err)
	}
	text := cleanRecipeResponse(raw)
	if text == "" {
		return GeneratedRecipe{}, fmt.Errorf("%w: %v", ErrRecipeGenerationFailed, llm.ErrEmptyResponse)
	}
	s.logger.Info("recipe generated",
		zap.String("user_id", userID),
		zap.Int("chars", len(text)),
		zap.Duration("latency", time.Since(start)),
	)

	saved, err := s.Save(ctx, userID, ingredients, text)
	if err != nil {
		return GeneratedRecipe{}, err
	}
	return GeneratedRecipe{Recipe: text, Saved: true, RecipeID: saved.ID}, nil
}

func (s *RecipeService) Save(ctx context.Context, userID, ingredients, recipe string) (domain.Recipe, error) {
	ingredients = strings.TrimSpace(ingredients)
	recipe = strings.TrimSpace(recipe)
	if ingredients == "" || recipe == "" {
		return domain.Recipe{}, ErrRecipeRequired
	}

	item := domain.Recipe{
		ID:          uuid.NewString(),
		UserID:      userID,
		Ingredients: ingredients,
		Recipe:      recipe,
		CreatedAt:   s.now(),
	}
	if vec, ok := s.embed(ctx, ingredients); ok {
		item.Embedding = &vec
	}
	if err := s.recipes.Create(ctx, item); err != nil {
		return domain.Recipe{}, err
	}
	return item, nil
}

func (s *RecipeService) List(ctx context.Context, userID string) ([]domain.Recipe, error) {
	items, err := s.recipes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Recipe{}
	}
	return items, nil
}

func (s *RecipeService) Get(ctx context.Context, userID, id string) (domain.Recipe, error) {
	if !validID(id) {
		return domain.Recipe{}, repository.ErrNotFound
	}
	return s.recipes.GetForUser(ctx, userID, id)
}

// Delete responde ErrNotFound tanto si la receta no existe como si pertenece a otro usuario.
func (s *RecipeService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return s.recipes.DeleteForUser(ctx, userID, id)
}

func (s *RecipeService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.recipes.DeleteAllForUser(ctx, userID)
}

func (s *RecipeService) Similar(ctx context.Context, userID, query string, k int) ([]domain.ScoredRecipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrIngredientsRequired
	}
	if s.embedder == nil {
		return nil, ErrSimilarityUnavailable
	}
	if k <= 0 {
		k = defaultSimilarK
	}
	if k > maxSimilarK {
		k = maxSimilarK
	}

	raw, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.Error(err))
		return nil, ErrSimilarityUnavailable
	}
	items, err := s.recipes.SimilarForUser(ctx, userID, pgvector.NewVector(raw), k)
	if err != nil {
		if errors.Is(err, repository.ErrUnsupported) {
			return nil, ErrSimilarityUnavailable
		}
		return nil, err
	}
	if items == nil {
		items = []domain.ScoredRecipe{}
	}
	return items, nil
}

// EmailRecipe envía una receta propia al email del usuario autenticado.
func (s *RecipeService) EmailRecipe(ctx context.Context, userID, toEmail, id string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return ErrInvalidInput
	}
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.sender.SendRecipe(ctx, toEmail, s.recipientName(ctx, userID), item.Ingredients, item.Recipe); err != nil {
		s.logger.Warn("recipe email failed", zap.String("recipe_id", id), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrEmailSendFailure, err)
	}
	return nil
}

// recipientName devuelve el nombre del dueño para el saludo; vacío si no se puede leer.
func (s *RecipeService) recipientName(ctx context.Context, userID string) string {
	if s.users == nil {
		return ""
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return user.Name
}

func (s *RecipeService) embed(ctx context.Context, text string) (pgvector.Vector, bool) {
	if s.embedder == nil {
		return pgvector.Vector{}, false
	}
	raw, err := s.embedder.CreateEmbedding(ctx, text)
	if err != nil || len(raw) == 0 {
		s.logger.Warn("ingredients embedding skipped", zap.Error(err))
		return pgvector.Vector{}, false
	}
	return pgvector.NewVector(raw), true
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
