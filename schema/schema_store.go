package schema

import "time"

// HistoryStatus represents the status of the recipe history store.
type HistoryStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      int64            `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalDrops     int64            `json:"total_drops"`
	TableSizes     map[string]int64 `json:"table_sizes"`
	TopPresetKey   string           `json:"top_preset_key,omitempty"`
	TopPresetCount int              `json:"top_preset_count,omitempty"`
}

// RecipeRunRecord represents a row from the brewwater_recipe_runs table.
type RecipeRunRecord struct {
	RunID               int64
	CreatedAt           time.Time
	PresetKey           string // empty for custom builds
	Profile             string
	Strategy            string
	GeneralHardness     float64
	CarbonateHardness   float64
	MagnesiumPct        float64
	PotassiumPct        float64
	VolumeMl            float64
	Scale               float64
	MagnesiumDrops      int32
	CalciumDrops        int32
	PotassiumDrops      int32
	SodiumDrops         int32
	SodiumMilligrams    float64
	PotassiumMilligrams float64
}

// NewRecipeRunRecord flattens a dose result into a history row.
func NewRecipeRunRecord(result *DoseResult, presetKey string, createdAt time.Time) RecipeRunRecord {
	return RecipeRunRecord{
		CreatedAt:           createdAt,
		PresetKey:           presetKey,
		Profile:             result.Profile,
		Strategy:            string(result.Strategy),
		GeneralHardness:     result.Request.GeneralHardness,
		CarbonateHardness:   result.Request.CarbonateHardness,
		MagnesiumPct:        result.Request.MagnesiumPct,
		PotassiumPct:        result.Request.PotassiumPct,
		VolumeMl:            result.Request.VolumeMl,
		Scale:               result.Scale,
		MagnesiumDrops:      int32(result.Dose(Magnesium).RoundedDropCount),
		CalciumDrops:        int32(result.Dose(Calcium).RoundedDropCount),
		PotassiumDrops:      int32(result.Dose(PotassiumBicarbonate).RoundedDropCount),
		SodiumDrops:         int32(result.Dose(SodiumBicarbonate).RoundedDropCount),
		SodiumMilligrams:    result.SodiumMilligrams,
		PotassiumMilligrams: result.PotassiumMilligrams,
	}
}
