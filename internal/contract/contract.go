// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import "github.com/huangsam/brewwater/schema"

// HistoryManager defines the interface for managing the history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for recording computed recipes.
type HistoryStore interface {
	// RecordRecipe stores one computed recipe and returns its run ID
	RecordRecipe(record schema.RecipeRunRecord) (int64, error)

	// GetAllRecipeRuns returns every stored recipe ordered by run ID
	GetAllRecipeRuns() ([]schema.RecipeRunRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
