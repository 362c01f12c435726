package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"recipe-llm/internal/domain"
	"recipe-llm/internal/llm"
	"recipe-llm/internal/repository"
)

type mockRecipeRepo struct {
	mu          sync.Mutex
	items       map[string]domain.Recipe
	similar     []domain.ScoredRecipe
	similarErr  error
	lastSimilar int
	createErr   error
}

func newMockRecipeRepo() *mockRecipeRepo {
	return &mockRecipeRepo{items: make(map[string]domain.Recipe)}
}

func (m *mockRecipeRepo) Create(_ context.Context, recipe domain.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.items[recipe.ID] = recipe
	return nil
}

func (m *mockRecipeRepo) ListByUser(_ context.Context, userID string) ([]domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Recipe
	for _, r := range m.items {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRecipeRepo) GetForUser(_ context.Context, userID, id string) (domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID {
		return domain.Recipe{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *mockRecipeRepo) DeleteForUser(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRecipeRepo) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.items {
		if r.UserID == userID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRecipeRepo) SimilarForUser(_ context.Context, _ string, _ pgvector.Vector, k int) ([]domain.ScoredRecipe, error) {
	m.lastSimilar = k
	return m.similar, m.similarErr
}

type mockSender struct {
	to, name, ingredients, recipe string
	err                     error
	calls                   int
}

func (m *mockSender) SendRecipe(_ context.Context, toEmail, toName, ingredients, recipe string) error {
	m.calls++
	m.to, m.name, m.ingredients, m.recipe = toEmail, toName, ingredients, recipe
	return m.err
}

const (
	adaID = "11111111-1111-4111-8111-111111111111"
	bobID = "22222222-2222-4222-8222-222222222222"
)

func TestRecipeServiceGenerate_SavesForCaller(t *testing.T) {
	repo := newMockRecipeRepo()
	client := &llm.MockClient{Response: "```\nSpinach omelette\n\n1. Beat eggs\n```"}
	svc := NewRecipeService(zap.NewNop(), repo, nil, client, nil, nil)

	out, err := svc.Generate(context.Background(), adaID, " eggs, spinach ")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Recipe != "Spinach omelette\n\n1. Beat eggs" || !out.Saved || out.RecipeID == "" {
		t.Fatalf("unexpected result %+v", out)
	}
	if !strings.Contains(client.LastPrompt, "eggs, spinach") {
		t.Fatalf("expected ingredients in prompt, got %q", client.LastPrompt)
	}

	stored, err := repo.GetForUser(context.Background(), adaID, out.RecipeID)
	if err != nil {
		t.Fatalf("expected stored recipe: %v", err)
	}
	if stored.Ingredients != "eggs, spinach" || stored.Embedding != nil {
		t.Fatalf("unexpected stored recipe %+v", stored)
	}
}

func TestRecipeServiceGenerate_Errors(t *testing.T) {
	repo := newMockRecipeRepo()

	svc := NewRecipeService(zap.NewNop(), repo, nil, &llm.MockClient{Response: "x"}, nil, nil)
	if _, err := svc.Generate(context.Background(), adaID, "   "); !errors.Is(err, ErrIngredientsRequired) {
		t.Fatalf("expected ErrIngredientsRequired, got %v", err)
	}

	svc = NewRecipeService(zap.NewNop(), repo, nil, &llm.MockClient{Err: errors.New("quota")}, nil, nil)
	if _, err := svc.Generate(context.Background(), adaID, "rice"); !errors.Is(err, ErrRecipeGenerationFailed) {
		t.Fatalf("expected ErrRecipeGenerationFailed, got %v", err)
	}

	svc = NewRecipeService(zap.NewNop(), repo, nil, &llm.MockClient{Response: "```\n```"}, nil, nil)
	if _, err := svc.Generate(context.Background(), adaID, "rice"); !errors.Is(err, ErrRecipeGenerationFailed) {
		t.Fatalf("expected ErrRecipeGenerationFailed for empty output, got %v", err)
	}

	if len(repo.items) != 0 {
		t.Fatalf("failed generations must not persist, got %d", len(repo.items))
	}
}

func TestRecipeServiceSave_StoresEmbeddingBestEffort(t *testing.T) {
	repo := newMockRecipeRepo()
	embedder := &llm.MockClient{Embedding: []float32{0.1, 0.2}}
	svc := NewRecipeService(zap.NewNop(), repo, nil, nil, embedder, nil)

	item, err := svc.Save(context.Background(), adaID, "rice", "Fried rice")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if item.Embedding == nil || len(item.Embedding.Slice()) != 2 {
		t.Fatalf("expected embedding stored, got %+v", item.Embedding)
	}

	embedder.EmbedErr = errors.New("embeddings down")
	item, err = svc.Save(context.Background(), adaID, "beans", "Chili")
	if err != nil {
		t.Fatalf("save should survive embedding failure: %v", err)
	}
	if item.Embedding != nil {
		t.Fatalf("expected no embedding when embedder fails")
	}

	if _, err := svc.Save(context.Background(), adaID, "rice", "  "); !errors.Is(err, ErrRecipeRequired) {
		t.Fatalf("expected ErrRecipeRequired, got %v", err)
	}
}

func TestRecipeServiceOwnershipScoping(t *testing.T) {
	repo := newMockRecipeRepo()
	svc := NewRecipeService(zap.NewNop(), repo, nil, nil, nil, nil)

	ada, err := svc.Save(context.Background(), adaID, "eggs", "Omelette")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	bobList, err := svc.List(context.Background(), bobID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if bobList == nil || len(bobList) != 0 {
		t.Fatalf("expected empty non-nil list for bob, got %#v", bobList)
	}

	if _, err := svc.Get(context.Background(), bobID, ada.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound reading another user's recipe, got %v", err)
	}
	if err := svc.Delete(context.Background(), bobID, ada.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's recipe, got %v", err)
	}
	if _, ok := repo.items[ada.ID]; !ok {
		t.Fatalf("ada's recipe must survive bob's delete")
	}

	if n, err := svc.Clear(context.Background(), bobID); err != nil || n != 0 {
		t.Fatalf("expected bob clear to remove nothing, got %d %v", n, err)
	}
	if err := svc.Delete(context.Background(), adaID, ada.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(context.Background(), adaID, ada.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRecipeServiceMalformedIDIsNotFound(t *testing.T) {
	svc := NewRecipeService(zap.NewNop(), newMockRecipeRepo(), nil, nil, nil, nil)
	for _, id := range []string{"", "42", "not-a-uuid"} {
		if _, err := svc.Get(context.Background(), adaID, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", id, err)
		}
		if err := svc.Delete(context.Background(), adaID, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", id, err)
		}
	}
}

func TestRecipeServiceSimilar(t *testing.T) {
	repo := newMockRecipeRepo()
	repo.similar = []domain.ScoredRecipe{{Recipe: domain.Recipe{ID: uuid.NewString(), UserID: adaID}, Distance: 0.1}}

	svc := NewRecipeService(zap.NewNop(), repo, nil, nil, nil, nil)
	if _, err := svc.Similar(context.Background(), adaID, "rice", 3); !errors.Is(err, ErrSimilarityUnavailable) {
		t.Fatalf("expected ErrSimilarityUnavailable without embedder, got %v", err)
	}

	svc = NewRecipeService(zap.NewNop(), repo, nil, nil, &llm.MockClient{Embedding: []float32{1, 0}}, nil)
	items, err := svc.Similar(context.Background(), adaID, "rice", 100)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if len(items) != 1 || repo.lastSimilar != maxSimilarK {
		t.Fatalf("unexpected result %d items, k=%d", len(items), repo.lastSimilar)
	}
	if _, err := svc.Similar(context.Background(), adaID, "rice", 0); err != nil || repo.lastSimilar != defaultSimilarK {
		t.Fatalf("expected default k, got %d (%v)", repo.lastSimilar, err)
	}
	if _, err := svc.Similar(context.Background(), adaID, " ", 3); !errors.Is(err, ErrIngredientsRequired) {
		t.Fatalf("expected ErrIngredientsRequired, got %v", err)
	}

	repo.similarErr = repository.ErrUnsupported
	if _, err := svc.Similar(context.Background(), adaID, "rice", 3); !errors.Is(err, ErrSimilarityUnavailable) {
		t.Fatalf("expected ErrSimilarityUnavailable on unsupported store, got %v", err)
	}
}

func TestRecipeServiceEmailRecipe(t *testing.T) {
	repo := newMockRecipeRepo()
	users := newMockUserRepo()
	users.usersByID[adaID] = domain.User{ID: adaID, Name: "Ada", Email: "ada@example.com"}
	sender := &mockSender{}
	svc := NewRecipeService(zap.NewNop(), repo, users, nil, nil, sender)

	item, err := svc.Save(context.Background(), adaID, "eggs", "Omelette")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.EmailRecipe(context.Background(), adaID, "ada@example.com", item.ID); err != nil {
		t.Fatalf("email: %v", err)
	}
	if sender.to != "ada@example.com" || sender.name != "Ada" || sender.recipe != "Omelette" || sender.ingredients != "eggs" {
		t.Fatalf("unexpected send %+v", sender)
	}

	if err := svc.EmailRecipe(context.Background(), bobID, "bob@example.com", item.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's recipe, got %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected no send for foreign recipe, got %d calls", sender.calls)
	}

	sender.err = errors.New("smtp down")
	if err := svc.EmailRecipe(context.Background(), adaID, "ada@example.com", item.ID); !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}

	disabled := NewRecipeService(zap.NewNop(), repo, nil, nil, nil, nil)
	if err := disabled.EmailRecipe(context.Background(), adaID, "ada@example.com", item.ID); !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure with disabled sender, got %v", err)
	}
}
