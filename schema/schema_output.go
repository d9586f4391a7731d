package schema

// PresetSummary pairs a preset with the recipe it yields at a given volume.
type PresetSummary struct {
	Preset
	VolumeMl float64        `json:"volume_ml"`
	Drops    map[Mineral]int `json:"drops"`
}

// GetMineralLabel returns a short descriptive label for a mineral.
func GetMineralLabel(m Mineral) string {
	switch m {
	case Magnesium:
		return "Mg"
	case Calcium:
		return "Ca"
	case PotassiumBicarbonate:
		return "KHCO₃ (K)"
	case SodiumBicarbonate:
		return "NaHCO₃"
	default:
		return string(m)
	}
}
