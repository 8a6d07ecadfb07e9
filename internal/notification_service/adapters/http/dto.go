package http

import "github.com/mmoney/golang_services/internal/notification_service/domain"

// ComposeRequestDTO is the body of POST /v1/messages/compose and one item of a batch.
type ComposeRequestDTO struct {
	ClientID   int64             `json:"client_id" validate:"required,gt=0"`
	TemplateID int64             `json:"template_id" validate:"required,gt=0"`
	Parameters map[string]string `json:"parameters"`
}

type ComposeBatchRequestDTO struct {
	Items []ComposeRequestDTO `json:"items" validate:"required,min=1,max=500,dive"`
}

type ComposeBatchResponse struct {
	Messages []domain.Message `json:"messages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
