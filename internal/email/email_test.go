package email

import (
	"context"
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@example.com", "Recipes", "ada@example.com", "Your recipe", "body")

	if !strings.Contains(msg, "From: Recipes <noreply@example.com>\r\n") {
		t.Fatalf("missing named from header: %q", msg)
	}
	if !strings.Contains(msg, "To: ada@example.com\r\n") {
		t.Fatalf("missing to header: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("body not separated from headers: %q", msg)
	}

	plain := buildMessage("noreply@example.com", " ", "ada@example.com", "s", "b")
	if !strings.Contains(plain, "From: noreply@example.com\r\n") {
		t.Fatalf("expected bare from header: %q", plain)
	}
}

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 587, "", "", "from@example.com", "", false); err == nil {
		t.Fatalf("expected error for empty host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 587, "", "", "", "", false); err == nil {
		t.Fatalf("expected error for empty from")
	}
	s, err := NewSMTPSender("smtp.example.com", 0, "", "", "from@example.com", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestSMTPSender_RejectsEmptyRecipient(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com", 587, "", "", "from@example.com", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SendRecipe(context.Background(), " ", "Ada", "eggs", "omelette"); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("smtp not configured").SendRecipe(context.Background(), "a@example.com", "", "", "")
	if err == nil || err.Error() != "smtp not configured" {
		t.Fatalf("expected configured reason, got %v", err)
	}
	if err := NewDisabledSender("").SendRecipe(context.Background(), "a@example.com", "", "", ""); err == nil {
		t.Fatalf("expected error from disabled sender")
	}
}
