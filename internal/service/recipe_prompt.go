package service

import (
	"regexp"
	"strings"
)

// BuildRecipePrompt arma el prompt de generación para la lista de ingredientes.
func BuildRecipePrompt(ingredients string) string {
	var b strings.Builder
	b.WriteString("Create a delicious and practical recipe using these ingredients: ")
	b.WriteString(strings.TrimSpace(ingredients))
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. A recipe title\n")
	b.WriteString("2. Complete ingredients list (including basic seasonings if needed)\n")
	b.WriteString("3. Clear step-by-step cooking instructions\n")
	b.WriteString("4. Estimated cooking time\n\n")
	b.WriteString("Make it a realistic, cookable recipe that someone could actually make.")
	return b.String()
}

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:markdown|md|text)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanRecipeResponse quita BOM y fences ``` que algunos modelos agregan alrededor del texto.
func cleanRecipeResponse(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF")
	if s == "" {
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(s), "```") {
		s = fenceStart.ReplaceAllString(s, "")
		s = fenceEnd.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
