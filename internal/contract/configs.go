package contract

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/brewwater/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 6
)

// presetKeyPattern restricts preset keys to lowercase slugs.
var presetKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// PresetRaw is a preset definition from the YAML config file.
// Use float64 pointers so missing fields can be detected.
type PresetRaw struct {
	Key     string   `mapstructure:"key"`
	Name    string   `mapstructure:"name"`
	GH      *float64 `mapstructure:"gh"`
	KH      *float64 `mapstructure:"kh"`
	MgShare *float64 `mapstructure:"mg_share"`
	KShare  *float64 `mapstructure:"k_share"`
	Notes   string   `mapstructure:"notes"`
}

// ProfileRaw holds the potency overrides for a single concentrate profile.
// Only fields that are set replace the built-in values.
type ProfileRaw struct {
	Description     *string  `mapstructure:"description"`
	ReferenceVolume *float64 `mapstructure:"reference_volume_ml"`
	Mg              *float64 `mapstructure:"mg"`
	Ca              *float64 `mapstructure:"ca"`
	KHCO3           *float64 `mapstructure:"khco3"`
	NaHCO3          *float64 `mapstructure:"nahco3"`
}

// Config holds the runtime configuration for a recipe run.
// This struct remains the "final, validated" config.
type Config struct {
	PresetKey string // empty for custom builds
	Request   schema.DoseRequest
	Profile   schema.ConcentrateProfile
	Rounding  schema.RoundingStrategy

	Output      schema.OutputMode
	OutputFile  string
	Precision   int
	ShowEffects bool
	SkipHistory bool // do not record this run even when a backend is set
	UseColors   bool
	Width       int // Terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	// Presets is the built-in catalog merged with presets from the config file
	Presets []schema.Preset

	// Profiles is the built-in profile list merged with config file overrides
	Profiles []schema.ConcentrateProfile
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args and cobra, so no tag
	PresetStr string
	Overrides map[string]bool

	// --- Fields from recipeCmd.Flags() ---
	GH        float64 `mapstructure:"gh"`
	KH        float64 `mapstructure:"kh"`
	MgShare   float64 `mapstructure:"mg-share"`
	KShare    float64 `mapstructure:"k-share"`
	Volume    float64 `mapstructure:"volume"`
	Effects   bool    `mapstructure:"effects"`
	NoHistory bool    `mapstructure:"no-history"`

	// --- Fields from rootCmd.PersistentFlags() ---
	Profile          string `mapstructure:"profile"`
	Rounding         string `mapstructure:"rounding"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Color            string `mapstructure:"color"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Catalog additions from config file ---
	Presets  []PresetRaw           `mapstructure:"presets"`
	Profiles map[string]ProfileRaw `mapstructure:"profiles"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Presets != nil {
		clone.Presets = slices.Clone(c.Presets)
	}
	if c.Profiles != nil {
		clone.Profiles = slices.Clone(c.Profiles)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processCatalog(cfg, input); err != nil {
		return err
	}
	if err := processRequest(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend, "":
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseRoundingStrategy validates a rounding strategy name. Empty means the default.
func ParseRoundingStrategy(s string) (schema.RoundingStrategy, error) {
	if strings.TrimSpace(s) == "" {
		return schema.IndependentRounding, nil
	}
	strategy := schema.RoundingStrategy(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidRoundingStrategies[strategy]; !ok {
		return "", fmt.Errorf("invalid rounding '%s'. must be independent or balanced", s)
	}
	return strategy, nil
}

// validateSimpleInputs handles the flags that need no cross-field logic.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output '%s'. must be text, csv, json or parquet", input.Output)
	}
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when --output is parquet")
	}

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width
	cfg.ShowEffects = input.Effects
	cfg.SkipHistory = input.NoHistory

	cfg.UseColors = true
	if input.Color != "" {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	rounding, err := ParseRoundingStrategy(input.Rounding)
	if err != nil {
		return err
	}
	cfg.Rounding = rounding

	return nil
}

// validateBackendConfigs validates the history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(input.HistoryBackend)))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// processCatalog merges config file presets and profile overrides into the
// built-in catalog. The merged slices are not modified after this point.
func processCatalog(cfg *Config, input *ConfigRawInput) error {
	presets, err := MergePresets(schema.DefaultPresets(), input.Presets)
	if err != nil {
		return err
	}
	cfg.Presets = presets

	profiles, err := MergeProfiles(schema.DefaultProfiles(), input.Profiles)
	if err != nil {
		return err
	}
	cfg.Profiles = profiles

	profileName := input.Profile
	if strings.TrimSpace(profileName) == "" {
		profileName = schema.StandardProfile
	}
	profile, err := schema.FindProfile(cfg.Profiles, profileName)
	if err != nil {
		return err
	}
	cfg.Profile = profile
	return nil
}

// MergePresets appends custom presets to the base catalog. A custom preset
// with the key of a built-in one replaces it in place.
func MergePresets(base []schema.Preset, custom []PresetRaw) ([]schema.Preset, error) {
	result := slices.Clone(base)
	for i, raw := range custom {
		key := strings.ToLower(strings.TrimSpace(raw.Key))
		if !presetKeyPattern.MatchString(key) {
			return nil, fmt.Errorf("preset #%d has invalid key %q. use lowercase letters, digits and dashes", i+1, raw.Key)
		}
		if raw.GH == nil || raw.KH == nil || raw.MgShare == nil || raw.KShare == nil {
			return nil, fmt.Errorf("preset %q must define gh, kh, mg_share and k_share", key)
		}
		if *raw.GH < 0 || *raw.KH < 0 {
			return nil, fmt.Errorf("preset %q hardness cannot be negative", key)
		}
		if *raw.MgShare < 0 || *raw.MgShare > 100 || *raw.KShare < 0 || *raw.KShare > 100 {
			return nil, fmt.Errorf("preset %q shares must be between 0 and 100", key)
		}
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			name = key
		}
		preset := schema.Preset{
			Key:               key,
			Name:              name,
			GeneralHardness:   *raw.GH,
			CarbonateHardness: *raw.KH,
			MagnesiumPct:      *raw.MgShare,
			PotassiumPct:      *raw.KShare,
			Notes:             raw.Notes,
		}
		if idx := slices.IndexFunc(result, func(p schema.Preset) bool { return p.Key == key }); idx >= 0 {
			result[idx] = preset
		} else {
			result = append(result, preset)
		}
	}
	return result, nil
}

// MergeProfiles applies potency overrides to the base profiles. Unknown
// profile names create new profiles and must define every field.
func MergeProfiles(base []schema.ConcentrateProfile, overrides map[string]ProfileRaw) ([]schema.ConcentrateProfile, error) {
	result := slices.Clone(base)

	// Sorted for deterministic ordering of new profiles.
	names := slices.Sorted(maps.Keys(overrides))
	for _, rawName := range names {
		raw := overrides[rawName]
		name := strings.ToLower(strings.TrimSpace(rawName))
		idx := slices.IndexFunc(result, func(p schema.ConcentrateProfile) bool { return p.Name == name })

		var profile schema.ConcentrateProfile
		if idx >= 0 {
			profile = result[idx]
		} else {
			if raw.ReferenceVolume == nil || raw.Mg == nil || raw.Ca == nil || raw.KHCO3 == nil || raw.NaHCO3 == nil {
				return nil, fmt.Errorf("new profile %q must define reference_volume_ml, mg, ca, khco3 and nahco3", name)
			}
			profile.Name = name
		}

		if raw.Description != nil {
			profile.Description = *raw.Description
		}
		if raw.ReferenceVolume != nil {
			profile.ReferenceVolumeMl = *raw.ReferenceVolume
		}
		if raw.Mg != nil {
			profile.Potency.Magnesium = *raw.Mg
		}
		if raw.Ca != nil {
			profile.Potency.Calcium = *raw.Ca
		}
		if raw.KHCO3 != nil {
			profile.Potency.PotassiumBicarbonate = *raw.KHCO3
		}
		if raw.NaHCO3 != nil {
			profile.Potency.SodiumBicarbonate = *raw.NaHCO3
		}

		if profile.ReferenceVolumeMl <= 0 {
			return nil, fmt.Errorf("profile %q reference_volume_ml must be greater than 0", name)
		}
		for _, m := range schema.AllMinerals {
			if profile.Potency.For(m) <= 0 {
				return nil, fmt.Errorf("profile %q potency for %s must be greater than 0", name, m)
			}
		}

		if idx >= 0 {
			result[idx] = profile
		} else {
			result = append(result, profile)
		}
	}
	return result, nil
}

// processRequest resolves the preset (if any), applies explicit flag
// overrides and clamps values to the ranges the CLI accepts.
func processRequest(cfg *Config, input *ConfigRawInput) error {
	req := schema.DoseRequest{
		GeneralHardness:   input.GH,
		CarbonateHardness: input.KH,
		MagnesiumPct:      input.MgShare,
		PotassiumPct:      input.KShare,
		VolumeMl:          input.Volume,
	}

	cfg.PresetKey = ""
	if strings.TrimSpace(input.PresetStr) != "" {
		preset, err := schema.FindPreset(cfg.Presets, input.PresetStr)
		if err != nil {
			return err
		}
		cfg.PresetKey = preset.Key

		// Preset values win unless the flag was given explicitly.
		fromPreset := preset.Request(input.Volume)
		if !input.Overrides["gh"] {
			req.GeneralHardness = fromPreset.GeneralHardness
		}
		if !input.Overrides["kh"] {
			req.CarbonateHardness = fromPreset.CarbonateHardness
		}
		if !input.Overrides["mg-share"] {
			req.MagnesiumPct = fromPreset.MagnesiumPct
		}
		if !input.Overrides["k-share"] {
			req.PotassiumPct = fromPreset.PotassiumPct
		}
	}

	req.GeneralHardness = clampWithWarning("gh", req.GeneralHardness, schema.MinHardnessPpm, schema.MaxHardnessPpm)
	req.CarbonateHardness = clampWithWarning("kh", req.CarbonateHardness, schema.MinHardnessPpm, schema.MaxHardnessPpm)
	req.MagnesiumPct = clampWithWarning("mg-share", req.MagnesiumPct, 0, 100)
	req.PotassiumPct = clampWithWarning("k-share", req.PotassiumPct, 0, 100)
	req.VolumeMl = clampWithWarning("volume", req.VolumeMl, schema.MinVolumeMl, schema.MaxVolumeMl)

	cfg.Request = req
	return nil
}

// clampWithWarning bounds v to [lo, hi] and warns when it had to move it.
func clampWithWarning(name string, v, lo, hi float64) float64 {
	if v < lo {
		LogWarn("Adjusted --"+name, fmt.Errorf("%g is below minimum %g", v, lo))
		return lo
	}
	if v > hi {
		LogWarn("Adjusted --"+name, fmt.Errorf("%g is above maximum %g", v, hi))
		return hi
	}
	return v
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
