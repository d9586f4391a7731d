// Package core has core logic for dosing, rounding and recipe orchestration.
package core

import (
	"context"
	"time"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/internal/outwriter"
	"github.com/huangsam/brewwater/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// GetRecipeResult computes the recipe for the configured request and records
// it in the history store unless the context opts out.
func GetRecipeResult(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (*schema.DoseResult, error) {
	result, err := Calculate(cfg.Request, cfg.Profile, cfg.Rounding)
	if err != nil {
		return nil, err
	}
	recordRecipe(ctx, cfg, mgr, result)
	return result, nil
}

// ExecuteRecipe computes one recipe and prints it using the configured output format.
// It serves as the main entry point for the 'recipe' command.
func ExecuteRecipe(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	if cfg.SkipHistory {
		ctx = WithSkipHistory(ctx)
	}
	result, err := GetRecipeResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRecipe(result, cfg, time.Since(start))
}

// GetPresetSummaries computes the drop counts of every preset at the
// configured volume, profile and rounding. Nothing is recorded.
func GetPresetSummaries(cfg *contract.Config) ([]schema.PresetSummary, error) {
	summaries := make([]schema.PresetSummary, 0, len(cfg.Presets))
	for _, p := range cfg.Presets {
		result, err := Calculate(p.Request(cfg.Request.VolumeMl), cfg.Profile, cfg.Rounding)
		if err != nil {
			return nil, err
		}
		drops := make(map[schema.Mineral]int, len(result.Doses))
		for _, d := range result.Doses {
			drops[d.Mineral] = d.RoundedDropCount
		}
		summaries = append(summaries, schema.PresetSummary{
			Preset:   p,
			VolumeMl: cfg.Request.VolumeMl,
			Drops:    drops,
		})
	}
	return summaries, nil
}

// ExecutePresets prints the preset catalog with its recipes.
func ExecutePresets(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	summaries, err := GetPresetSummaries(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePresets(summaries, cfg)
}

// ExecuteProfiles prints the available concentrate profiles.
func ExecuteProfiles(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	return outwriter.NewOutWriter().WriteProfiles(cfg.Profiles, cfg)
}

// recordRecipe stores a computed recipe. Failures are logged, never returned.
func recordRecipe(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, result *schema.DoseResult) {
	if mgr == nil || shouldSkipHistory(ctx) {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}
	record := schema.NewRecipeRunRecord(result, cfg.PresetKey, time.Now().UTC())
	if _, err := store.RecordRecipe(record); err != nil {
		contract.LogWarn("Recipe history recording failed", err)
	}
}
