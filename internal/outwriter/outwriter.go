// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRecipe prints a single recipe using the configured output format.
func (ow *OutWriter) WriteRecipe(result *schema.DoseResult, cfg *contract.Config, duration time.Duration) error {
	return WriteRecipeResult(result, cfg, duration)
}

// WritePresets prints the preset catalog using the configured output format.
func (ow *OutWriter) WritePresets(summaries []schema.PresetSummary, cfg *contract.Config) error {
	return WritePresetSummaries(summaries, cfg)
}

// WriteProfiles prints the concentrate profiles using the configured output format.
func (ow *OutWriter) WriteProfiles(profiles []schema.ConcentrateProfile, cfg *contract.Config) error {
	return WriteConcentrateProfiles(profiles, cfg)
}
