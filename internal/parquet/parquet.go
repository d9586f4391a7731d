// Package parquet provides data structures and functions for exporting brewwater
// recipes to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/brewwater/schema"
	"github.com/parquet-go/parquet-go"
)

// RecipeRun represents a single computed recipe from the history store.
// This struct maps to the brewwater_recipe_runs database table.
type RecipeRun struct {
	RunID     int64     `parquet:"run_id,snappy"`
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// PresetKey is null for custom builds
	PresetKey *string `parquet:"preset_key,optional,snappy"`

	Profile           string  `parquet:"profile,snappy"`
	Strategy          string  `parquet:"strategy,snappy"`
	GeneralHardness   float64 `parquet:"general_hardness,snappy"`
	CarbonateHardness float64 `parquet:"carbonate_hardness,snappy"`
	MagnesiumPct      float64 `parquet:"magnesium_pct,snappy"`
	PotassiumPct      float64 `parquet:"potassium_pct,snappy"`
	VolumeMl          float64 `parquet:"volume_ml,snappy"`
	Scale             float64 `parquet:"scale,snappy"`

	MagnesiumDrops int32 `parquet:"magnesium_drops,snappy"`
	CalciumDrops   int32 `parquet:"calcium_drops,snappy"`
	PotassiumDrops int32 `parquet:"potassium_drops,snappy"`
	SodiumDrops    int32 `parquet:"sodium_drops,snappy"`

	SodiumMilligrams    float64 `parquet:"sodium_mg,snappy"`
	PotassiumMilligrams float64 `parquet:"potassium_mg,snappy"`
}

// DoseRow is one mineral line of a single recipe, used by --output parquet.
type DoseRow struct {
	Profile          string  `parquet:"profile,snappy"`
	Strategy         string  `parquet:"strategy,snappy"`
	VolumeMl         float64 `parquet:"volume_ml,snappy"`
	Mineral          string  `parquet:"mineral,dict,snappy"`
	ContributionPpm  float64 `parquet:"ppm,snappy"`
	TargetMilligrams float64 `parquet:"target_mg,snappy"`
	RawDropCount     float64 `parquet:"raw_drops,snappy"`
	RoundedDropCount int32   `parquet:"drops,snappy"`
}

// WriteRecipeRunsParquet writes a slice of RecipeRun structs to a Parquet file.
func WriteRecipeRunsParquet(data []RecipeRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDoseRowsParquet writes a slice of DoseRow structs to a Parquet file.
func WriteDoseRowsParquet(data []DoseRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows of any struct type, deriving the schema from its tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRecipeRunRecords converts schema.RecipeRunRecord to RecipeRun for Parquet export.
func ConvertRecipeRunRecords(records []schema.RecipeRunRecord) []RecipeRun {
	result := make([]RecipeRun, len(records))
	for i, record := range records {
		var presetKey *string
		if record.PresetKey != "" {
			key := record.PresetKey
			presetKey = &key
		}
		result[i] = RecipeRun{
			RunID:               record.RunID,
			CreatedAt:           record.CreatedAt,
			PresetKey:           presetKey,
			Profile:             record.Profile,
			Strategy:            record.Strategy,
			GeneralHardness:     record.GeneralHardness,
			CarbonateHardness:   record.CarbonateHardness,
			MagnesiumPct:        record.MagnesiumPct,
			PotassiumPct:        record.PotassiumPct,
			VolumeMl:            record.VolumeMl,
			Scale:               record.Scale,
			MagnesiumDrops:      record.MagnesiumDrops,
			CalciumDrops:        record.CalciumDrops,
			PotassiumDrops:      record.PotassiumDrops,
			SodiumDrops:         record.SodiumDrops,
			SodiumMilligrams:    record.SodiumMilligrams,
			PotassiumMilligrams: record.PotassiumMilligrams,
		}
	}
	return result
}

// ConvertDoseResult flattens a dose result into one row per mineral.
func ConvertDoseResult(result *schema.DoseResult) []DoseRow {
	rows := make([]DoseRow, len(result.Doses))
	for i, d := range result.Doses {
		rows[i] = DoseRow{
			Profile:          result.Profile,
			Strategy:         string(result.Strategy),
			VolumeMl:         result.Request.VolumeMl,
			Mineral:          string(d.Mineral),
			ContributionPpm:  d.ContributionPpm,
			TargetMilligrams: d.TargetMilligrams,
			RawDropCount:     d.RawDropCount,
			RoundedDropCount: int32(d.RoundedDropCount),
		}
	}
	return rows
}
