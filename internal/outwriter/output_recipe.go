package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/internal/parquet"
	"github.com/huangsam/brewwater/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// recipeFixedWidth is the space taken by every recipe column except Effect.
const recipeFixedWidth = 50

// WriteRecipeResult outputs a recipe, dispatching based on the output format configured.
func WriteRecipeResult(result *schema.DoseResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecipeCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		if err := parquet.WriteDoseRowsParquet(parquet.ConvertDoseResult(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecipeTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRecipeTable generates and writes the human-readable recipe.
func writeRecipeTable(w io.Writer, result *schema.DoseResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, recipeTitle(result, cfg)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	headers := []string{"Mineral", "Drops", "Raw", "Target mg", "ppm"}
	if cfg.ShowEffects {
		headers = append(headers, "Effect")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	effectWidth := GetMaxTextColumnWidth(cfg, recipeFixedWidth)
	var data [][]string
	for _, d := range result.Doses {
		label := contract.GetPlainLabel(d.Mineral)
		if cfg.UseColors {
			label = contract.GetColorLabel(d.Mineral)
		}
		row := []string{
			label,
			contract.GetDropsLabel(d, cfg.UseColors),
			fmtFloat(d.RawDropCount),
			fmtFloat(d.TargetMilligrams),
			fmtFloat(d.ContributionPpm),
		}
		if cfg.ShowEffects {
			row = append(row, contract.TruncateText(schema.MineralEffects[d.Mineral], effectWidth))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Total drops: %d (rounding: %s)\n", result.TotalDrops(), result.Strategy); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Buffer delivers %s mg Na and %s mg K\n",
		fmtFloat(result.SodiumMilligrams), fmtFloat(result.PotassiumMilligrams)); err != nil {
		return err
	}
	footer := fmt.Sprintf("Computed in %v. History backend: %s", duration, historyLabel(cfg))
	if cfg.UseColors {
		footer = contract.MutedColor.Sprint(footer)
	}
	_, err := fmt.Fprintln(w, footer)
	return err
}

// recipeTitle summarizes the request above the table.
func recipeTitle(result *schema.DoseResult, cfg *contract.Config) string {
	name := "Custom Build"
	if cfg.PresetKey != "" {
		if p, err := schema.FindPreset(cfg.Presets, cfg.PresetKey); err == nil {
			name = p.Name
		}
	}
	req := result.Request
	target := req.Target()
	title := fmt.Sprintf("%s | GH %g ppm (Mg %g%%) | KH %g ppm (K %g%%) | %g mL | %s profile",
		name, target.GeneralHardness, req.MagnesiumPct, target.CarbonateHardness, req.PotassiumPct, req.VolumeMl, result.Profile)
	if cfg.UseColors {
		return contract.HeaderColor.Sprint(title)
	}
	return title
}

// historyLabel names the active history backend for the footer.
func historyLabel(cfg *contract.Config) string {
	if cfg.HistoryBackend == "" {
		return "disabled"
	}
	return string(cfg.HistoryBackend)
}

// writeRecipeCSV writes one CSV row per mineral.
func writeRecipeCSV(w io.Writer, result *schema.DoseResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"mineral", "label", "ppm", "target_mg", "raw_drops", "drops", "profile", "rounding", "volume_ml"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range result.Doses {
			rec := []string{
				string(d.Mineral),
				contract.GetPlainLabel(d.Mineral),
				fmtFloat(d.ContributionPpm),
				fmtFloat(d.TargetMilligrams),
				fmtFloat(d.RawDropCount),
				fmt.Sprintf(intFmt, d.RoundedDropCount),
				result.Profile,
				string(result.Strategy),
				fmtFloat(result.Request.VolumeMl),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
