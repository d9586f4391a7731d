package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// presetFixedWidth is the space taken by every preset column except Name.
const presetFixedWidth = 60

// WritePresetSummaries outputs the preset catalog, dispatching based on the output format configured.
func WritePresetSummaries(summaries []schema.PresetSummary, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePresetCSV(w, summaries, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for recipes")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePresetTable(w, summaries, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	}
}

func writePresetTable(w io.Writer, summaries []schema.PresetSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"#", "Key", "Name", "GH", "KH", "Mg %", "K %"}
	for _, m := range schema.AllMinerals {
		headers = append(headers, contract.GetPlainLabel(m))
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTextColumnWidth(cfg, presetFixedWidth)
	var data [][]string
	for i, s := range summaries {
		row := []string{
			strconv.Itoa(i + 1),
			s.Key,
			contract.TruncateText(s.Name, nameWidth),
			fmtFloat(s.GeneralHardness),
			fmtFloat(s.CarbonateHardness),
			fmtFloat(s.MagnesiumPct),
			fmtFloat(s.PotassiumPct),
		}
		for _, m := range schema.AllMinerals {
			row = append(row, fmt.Sprintf(intFmt, s.Drops[m]))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	volume := schema.DefaultVolumeMl
	if len(summaries) > 0 {
		volume = summaries[0].VolumeMl
	}
	_, err := fmt.Fprintf(w, "Drops shown for %g mL with the %s profile and %s rounding\n", volume, cfg.Profile.Name, cfg.Rounding)
	return err
}

func writePresetCSV(w io.Writer, summaries []schema.PresetSummary, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"key", "name", "gh", "kh", "mg_pct", "k_pct", "volume_ml"}
	for _, m := range schema.AllMinerals {
		header = append(header, string(m)+"_drops")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			rec := []string{
				s.Key,
				s.Name,
				fmtFloat(s.GeneralHardness),
				fmtFloat(s.CarbonateHardness),
				fmtFloat(s.MagnesiumPct),
				fmtFloat(s.PotassiumPct),
				fmtFloat(s.VolumeMl),
			}
			for _, m := range schema.AllMinerals {
				rec = append(rec, fmt.Sprintf(intFmt, s.Drops[m]))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteConcentrateProfiles outputs the concentrate profiles, dispatching based on the output format configured.
func WriteConcentrateProfiles(profiles []schema.ConcentrateProfile, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, profiles)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"name", "reference_volume_ml", "mg", "ca", "khco3", "nahco3", "description"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, p := range profiles {
					if err := cw.Write(profileRow(p, fmtFloat, p.Description)); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for recipes")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Name", "Ref mL", "Mg", "Ca", "KHCO₃", "NaHCO₃", "Description"})
			table.Configure(func(c *tablewriter.Config) {
				c.Row.Alignment.Global = tw.AlignRight
			})
			descWidth := GetMaxTextColumnWidth(cfg, presetFixedWidth)
			var data [][]string
			for _, p := range profiles {
				name := p.Name
				if p.Name == cfg.Profile.Name {
					name += " *"
				}
				row := profileRow(p, fmtFloat, contract.TruncateText(p.Description, descWidth))
				row[0] = name
				data = append(data, row)
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w, "Potency is ppm added per drop at the reference volume. * marks the active profile")
			return err
		}, "Wrote table")
	}
}

// profileRow formats a profile in column order with the given description.
func profileRow(p schema.ConcentrateProfile, fmtFloat func(float64) string, description string) []string {
	return []string{
		p.Name,
		fmtFloat(p.ReferenceVolumeMl),
		fmtFloat(p.Potency.Magnesium),
		fmtFloat(p.Potency.Calcium),
		fmtFloat(p.Potency.PotassiumBicarbonate),
		fmtFloat(p.Potency.SodiumBicarbonate),
		description,
	}
}
