package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-llm/internal/service"
)

// RecipeHandler expone las recetas del usuario autenticado. El dueño sale siempre de los claims, nunca del request.
type RecipeHandler struct {
	logger  *zap.Logger
	recipes *service.RecipeService
}

func NewRecipeHandler(logger *zap.Logger, recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{logger: logger, recipes: recipes}
}

// Generate maneja POST /api/generate-recipe.
func (h *RecipeHandler) Generate(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req struct {
		Ingredients string `json:"ingredients" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrIngredientsRequired.Error()})
		return
	}

	out, err := h.recipes.Generate(c.Request.Context(), claims.UserID, req.Ingredients)
	if err != nil {
		respondError(c, h.logger, "generate recipe", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Create maneja POST /api/recipes.
func (h *RecipeHandler) Create(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var req struct {
		Ingredients string `json:"ingredients" binding:"required"`
		Recipe      string `json:"recipe" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrRecipeRequired.Error()})
		return
	}

	item, err := h.recipes.Save(c.Request.Context(), claims.UserID, req.Ingredients, req.Recipe)
	if err != nil {
		respondError(c, h.logger, "save recipe", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Recipe saved successfully", "id": item.ID})
}

// List maneja GET /api/recipes.
func (h *RecipeHandler) List(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	items, err := h.recipes.List(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "list recipes", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get maneja GET /api/recipes/:id.
func (h *RecipeHandler) Get(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	item, err := h.recipes.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get recipe", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete maneja DELETE /api/recipes/:id.
func (h *RecipeHandler) Delete(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		respondError(c, h.logger, "delete recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// Clear maneja DELETE /api/recipes.
func (h *RecipeHandler) Clear(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	n, err := h.recipes.Clear(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "clear recipes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All recipes cleared successfully", "deleted": n})
}

// Similar maneja GET /api/recipes/similar?q=...&k=...
func (h *RecipeHandler) Similar(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	k := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
			return
		}
		k = parsed
	}
	items, err := h.recipes.Similar(c.Request.Context(), claims.UserID, c.Query("q"), k)
	if err != nil {
		respondError(c, h.logger, "similar recipes", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Email maneja POST /api/recipes/:id/email; el destinatario es el email del token.
func (h *RecipeHandler) Email(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	if err := h.recipes.EmailRecipe(c.Request.Context(), claims.UserID, claims.Email, c.Param("id")); err != nil {
		respondError(c, h.logger, "email recipe", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Recipe sent"})
}

func (h *RecipeHandler) claims(c *gin.Context) (service.Claims, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
	}
	return claims, ok
}
