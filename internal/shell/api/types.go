package api

import (
	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/shell/store"
)

// =============================================================================
// Response Types
// =============================================================================

// HealthResponse is the response for health checks.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// GeneratorResponse summarizes one registered generator.
type GeneratorResponse struct {
	Name        string `json:"name"`
	Capability  bool   `json:"capability"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Error       string `json:"error,omitempty"`
}

// GeneratorDetailResponse is the full catalog entry of one generator.
type GeneratorDetailResponse struct {
	*catalog.ModuleInfoDef
	Capability bool `json:"capability"`
}

// EnumResponse lists the values of one enum.
type EnumResponse struct {
	ID     string                `json:"id"`
	Values []catalog.Enumeration `json:"values"`
}

// HistoryResponse lists apply journal entries, newest first.
type HistoryResponse struct {
	Entries []store.JournalEntry `json:"entries"`
}
