package contract

import (
	"testing"

	"github.com/huangsam/brewwater/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func baseInput() *ConfigRawInput {
	return &ConfigRawInput{
		GH:        50,
		KH:        30,
		MgShare:   70,
		KShare:    60,
		Volume:    300,
		Profile:   "standard",
		Rounding:  "independent",
		Output:    "text",
		Precision: DefaultPrecision,
		Color:     "no",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid custom build", mutate: func(*ConfigRawInput) {}},
		{name: "valid preset", mutate: func(in *ConfigRawInput) { in.PresetStr = "bright-juicy" }},
		{name: "unknown preset", mutate: func(in *ConfigRawInput) { in.PresetStr = "nope" }, expectError: true},
		{name: "unknown profile", mutate: func(in *ConfigRawInput) { in.Profile = "tiny" }, expectError: true},
		{name: "invalid rounding", mutate: func(in *ConfigRawInput) { in.Rounding = "stochastic" }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 7 }, expectError: true},
		{name: "negative width", mutate: func(in *ConfigRawInput) { in.Width = -1 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "oracle" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "mysql" }, expectError: true},
		{name: "sqlite backend", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "sqlite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidatePresetOverrides(t *testing.T) {
	t.Run("preset fills unchanged flags", func(t *testing.T) {
		input := baseInput()
		input.PresetStr = "Body & Roundness (Naturals / Anaerobic)"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))

		assert.Equal(t, "body-roundness", cfg.PresetKey)
		assert.Equal(t, 60.0, cfg.Request.GeneralHardness)
		assert.Equal(t, 40.0, cfg.Request.CarbonateHardness)
		assert.Equal(t, 30.0, cfg.Request.MagnesiumPct)
		assert.Equal(t, 30.0, cfg.Request.PotassiumPct)
		assert.Equal(t, 300.0, cfg.Request.VolumeMl)
	})

	t.Run("explicit flag wins over preset", func(t *testing.T) {
		input := baseInput()
		input.PresetStr = "bright-juicy"
		input.GH = 55
		input.Overrides = map[string]bool{"gh": true}
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))

		assert.Equal(t, 55.0, cfg.Request.GeneralHardness)
		assert.Equal(t, 20.0, cfg.Request.CarbonateHardness)
	})
}

func TestProcessAndValidateClamping(t *testing.T) {
	input := baseInput()
	input.GH = 250
	input.KH = -5
	input.MgShare = 120
	input.Volume = 50
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.MaxHardnessPpm, cfg.Request.GeneralHardness)
	assert.Equal(t, schema.MinHardnessPpm, cfg.Request.CarbonateHardness)
	assert.Equal(t, 100.0, cfg.Request.MagnesiumPct)
	assert.Equal(t, schema.MinVolumeMl, cfg.Request.VolumeMl)
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := baseInput()
	input.Profile = ""
	input.Rounding = ""
	input.Output = ""
	input.Color = ""
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.StandardProfile, cfg.Profile.Name)
	assert.Equal(t, schema.IndependentRounding, cfg.Rounding)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.SkipHistory)
	assert.Len(t, cfg.Presets, 4)
	assert.Len(t, cfg.Profiles, 2)
}

func TestProcessAndValidateNoHistory(t *testing.T) {
	input := baseInput()
	input.NoHistory = true
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.True(t, cfg.SkipHistory)
	assert.True(t, cfg.Clone().SkipHistory)
}

func TestMergePresets(t *testing.T) {
	t.Run("adds and replaces", func(t *testing.T) {
		custom := []PresetRaw{
			{Key: "my-light", GH: ptr(30.0), KH: ptr(15.0), MgShare: ptr(60.0), KShare: ptr(50.0)},
			{Key: "bright-juicy", Name: "House Bright", GH: ptr(45.0), KH: ptr(25.0), MgShare: ptr(75.0), KShare: ptr(70.0)},
		}
		merged, err := MergePresets(schema.DefaultPresets(), custom)
		require.NoError(t, err)
		require.Len(t, merged, 5)

		assert.Equal(t, "House Bright", merged[0].Name)
		assert.Equal(t, 45.0, merged[0].GeneralHardness)
		assert.Equal(t, "my-light", merged[4].Key)
		assert.Equal(t, "my-light", merged[4].Name)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		cases := [][]PresetRaw{
			{{Key: "Bad Key", GH: ptr(1.0), KH: ptr(1.0), MgShare: ptr(1.0), KShare: ptr(1.0)}},
			{{Key: "partial", GH: ptr(1.0)}},
			{{Key: "negative", GH: ptr(-1.0), KH: ptr(1.0), MgShare: ptr(1.0), KShare: ptr(1.0)}},
			{{Key: "share", GH: ptr(1.0), KH: ptr(1.0), MgShare: ptr(101.0), KShare: ptr(1.0)}},
		}
		for _, c := range cases {
			_, err := MergePresets(schema.DefaultPresets(), c)
			assert.Error(t, err, c[0].Key)
		}
	})
}

func TestMergeProfiles(t *testing.T) {
	t.Run("overrides single potency", func(t *testing.T) {
		merged, err := MergeProfiles(schema.DefaultProfiles(), map[string]ProfileRaw{
			"standard": {Ca: ptr(6.0)},
		})
		require.NoError(t, err)
		require.Len(t, merged, 2)
		assert.Equal(t, 6.0, merged[0].Potency.Calcium)
		assert.Equal(t, 8.0, merged[0].Potency.Magnesium)
	})

	t.Run("adds complete profile", func(t *testing.T) {
		merged, err := MergeProfiles(schema.DefaultProfiles(), map[string]ProfileRaw{
			"travel": {ReferenceVolume: ptr(500.0), Mg: ptr(4.0), Ca: ptr(4.0), KHCO3: ptr(4.0), NaHCO3: ptr(4.0)},
		})
		require.NoError(t, err)
		require.Len(t, merged, 3)
		assert.Equal(t, "travel", merged[2].Name)
	})

	t.Run("rejects incomplete new profile", func(t *testing.T) {
		_, err := MergeProfiles(schema.DefaultProfiles(), map[string]ProfileRaw{"travel": {Mg: ptr(4.0)}})
		assert.Error(t, err)
	})

	t.Run("rejects zero potency", func(t *testing.T) {
		_, err := MergeProfiles(schema.DefaultProfiles(), map[string]ProfileRaw{"compact": {NaHCO3: ptr(0.0)}})
		assert.Error(t, err)
	})
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/brew"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=brew"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}

func TestParseRoundingStrategy(t *testing.T) {
	s, err := ParseRoundingStrategy("")
	require.NoError(t, err)
	assert.Equal(t, schema.IndependentRounding, s)

	s, err = ParseRoundingStrategy(" Balanced ")
	require.NoError(t, err)
	assert.Equal(t, schema.BalancedRounding, s)

	_, err = ParseRoundingStrategy("floor")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Presets: schema.DefaultPresets(), Profiles: schema.DefaultProfiles()}
	clone := cfg.Clone()
	clone.Presets[0].GeneralHardness = 1
	clone.Profiles[0].Potency.Calcium = 1

	assert.Equal(t, 40.0, cfg.Presets[0].GeneralHardness)
	assert.Equal(t, 5.0, cfg.Profiles[0].Potency.Calcium)
}

func TestProcessProfilingConfig(t *testing.T) {
	var p ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&p, ""))
	assert.False(t, p.Enabled)

	require.NoError(t, ProcessProfilingConfig(&p, "brew"))
	assert.True(t, p.Enabled)
	assert.Equal(t, "brew", p.Prefix)
}
