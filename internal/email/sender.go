package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para enviar recetas por correo.
type Sender interface {
	SendRecipe(ctx context.Context, toEmail, toName, ingredients, recipe string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendRecipe(_ context.Context, _, _, _, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
