package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Potency is how much one drop of each concentrate adds, in ppm per
// reference volume of water.
type Potency struct {
	Magnesium            float64 `json:"mg"`
	Calcium              float64 `json:"ca"`
	PotassiumBicarbonate float64 `json:"khco3"`
	SodiumBicarbonate    float64 `json:"nahco3"`
}

// For returns the potency of the given mineral.
func (p Potency) For(m Mineral) float64 {
	switch m {
	case Magnesium:
		return p.Magnesium
	case Calcium:
		return p.Calcium
	case PotassiumBicarbonate:
		return p.PotassiumBicarbonate
	case SodiumBicarbonate:
		return p.SodiumBicarbonate
	default:
		return 0
	}
}

// ConcentrateProfile ties a potency table to the water volume it was
// measured against.
type ConcentrateProfile struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	ReferenceVolumeMl float64 `json:"reference_volume_ml"`
	Potency           Potency `json:"potency"`
}

// Preset is a named hardness target with its composition split.
type Preset struct {
	Key               string  `json:"key"`
	Name              string  `json:"name"`
	GeneralHardness   float64 `json:"general_hardness"`
	CarbonateHardness float64 `json:"carbonate_hardness"`
	MagnesiumPct      float64 `json:"magnesium_pct"`
	PotassiumPct      float64 `json:"potassium_pct"`
	Notes             string  `json:"notes,omitempty"`
}

// Request builds a dose request from the preset at the given volume.
func (p Preset) Request(volumeMl float64) DoseRequest {
	return DoseRequest{
		GeneralHardness:   p.GeneralHardness,
		CarbonateHardness: p.CarbonateHardness,
		MagnesiumPct:      p.MagnesiumPct,
		PotassiumPct:      p.PotassiumPct,
		VolumeMl:          volumeMl,
	}
}

// Built-in profile names.
const (
	StandardProfile = "standard" // default
	CompactProfile  = "compact"
)

// DefaultProfiles returns a fresh copy of the built-in concentrate profiles.
func DefaultProfiles() []ConcentrateProfile {
	return []ConcentrateProfile{
		{
			Name:              StandardProfile,
			Description:       "1 drop adds the listed ppm to 1 L of water",
			ReferenceVolumeMl: StandardReferenceVolumeMl,
			Potency: Potency{
				Magnesium:            8,
				Calcium:              5,
				PotassiumBicarbonate: 8,
				SodiumBicarbonate:    5,
			},
		},
		{
			Name:              CompactProfile,
			Description:       "1 drop adds the listed ppm to a 250 mL cup",
			ReferenceVolumeMl: CompactReferenceVolumeMl,
			Potency: Potency{
				Magnesium:            8,
				Calcium:              8,
				PotassiumBicarbonate: 8,
				SodiumBicarbonate:    5,
			},
		},
	}
}

// DefaultPresets returns a fresh copy of the built-in champion presets.
func DefaultPresets() []Preset {
	return []Preset{
		{Key: "bright-juicy", Name: "Bright & Juicy (Washed Africans)", GeneralHardness: 40, CarbonateHardness: 20, MagnesiumPct: 80, PotassiumPct: 80},
		{Key: "balanced-sweetness", Name: "Balanced Sweetness (Latin Americans)", GeneralHardness: 50, CarbonateHardness: 30, MagnesiumPct: 50, PotassiumPct: 50},
		{Key: "body-roundness", Name: "Body & Roundness (Naturals / Anaerobic)", GeneralHardness: 60, CarbonateHardness: 40, MagnesiumPct: 30, PotassiumPct: 30},
		{Key: "floral-clarity", Name: "High Floral Clarity (Geishas)", GeneralHardness: 35, CarbonateHardness: 20, MagnesiumPct: 90, PotassiumPct: 90},
	}
}

// CustomBuildDefaults is the starting point when no preset is chosen.
var CustomBuildDefaults = DoseRequest{
	GeneralHardness:   50,
	CarbonateHardness: 30,
	MagnesiumPct:      70,
	PotassiumPct:      60,
	VolumeMl:          DefaultVolumeMl,
}

// FindPreset looks up a preset by key or by case-insensitive name.
func FindPreset(presets []Preset, keyOrName string) (Preset, error) {
	needle := strings.ToLower(strings.TrimSpace(keyOrName))
	for _, p := range presets {
		if p.Key == needle || strings.ToLower(p.Name) == needle {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q. Available: %s", keyOrName, strings.Join(PresetKeys(presets), ", "))
}

// FindProfile looks up a concentrate profile by name.
func FindProfile(profiles []ConcentrateProfile, name string) (ConcentrateProfile, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, p := range profiles {
		if p.Name == needle {
			return p, nil
		}
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return ConcentrateProfile{}, fmt.Errorf("unknown profile %q. Available: %s", name, strings.Join(names, ", "))
}

// PresetKeys returns the keys of the given presets in catalog order.
func PresetKeys(presets []Preset) []string {
	keys := make([]string, len(presets))
	for i, p := range presets {
		keys[i] = p.Key
	}
	return keys
}
