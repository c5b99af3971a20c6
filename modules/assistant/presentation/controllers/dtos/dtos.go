package dtos

import "github.com/nicolasimarinw/hr-ontology/modules/assistant"

// APIError standardizes JSON error responses.
type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type ChatRequest struct {
	History []assistant.Message `json:"history" validate:"dive"`
	Message string              `json:"message" validate:"required,max=8000"`
}

type HealthResponse struct {
	Status string          `json:"status"`
	Graph  bool            `json:"graph"`
	Lake   bool            `json:"lake"`
	LLM    bool            `json:"llm"`
	Tables map[string]bool `json:"tables,omitempty"`
}
