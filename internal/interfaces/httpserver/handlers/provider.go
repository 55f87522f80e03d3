package handlers

import (
	"github.com/rs/zerolog"

	"jan-server/services/dialog-api/internal/domain/dialog"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Dialog  *DialogHandler
	Message *MessageHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(service dialog.Service, paging Paging, log zerolog.Logger) *Provider {
	return &Provider{
		Dialog:  NewDialogHandler(service, paging, log),
		Message: NewMessageHandler(service, paging, log),
	}
}
