package core

import (
	"errors"
	"math"
	"testing"

	"github.com/huangsam/brewwater/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func standardProfile(t *testing.T) schema.ConcentrateProfile {
	t.Helper()
	p, err := schema.FindProfile(schema.DefaultProfiles(), schema.StandardProfile)
	require.NoError(t, err)
	return p
}

func compactProfile(t *testing.T) schema.ConcentrateProfile {
	t.Helper()
	p, err := schema.FindProfile(schema.DefaultProfiles(), schema.CompactProfile)
	require.NoError(t, err)
	return p
}

func TestCalculateBrightJuicyAt300(t *testing.T) {
	req := schema.DoseRequest{GeneralHardness: 40, CarbonateHardness: 20, MagnesiumPct: 80, PotassiumPct: 80, VolumeMl: 300}
	result, err := Calculate(req, standardProfile(t), schema.IndependentRounding)
	require.NoError(t, err)

	assert.InDelta(t, 0.3, result.Scale, tolerance)
	assert.Equal(t, schema.StandardProfile, result.Profile)
	assert.Equal(t, schema.IndependentRounding, result.Strategy)
	assert.InDelta(t, 0.8, result.Split.MagnesiumShare, tolerance)

	expected := []struct {
		mineral schema.Mineral
		ppm     float64
		raw     float64
		drops   int
	}{
		{schema.Magnesium, 32, 1.2, 1},
		{schema.Calcium, 8, 0.48, 0},
		{schema.PotassiumBicarbonate, 16, 0.6, 1},
		{schema.SodiumBicarbonate, 4, 0.24, 0},
	}
	require.Len(t, result.Doses, len(expected))
	for i, e := range expected {
		d := result.Doses[i]
		assert.Equal(t, e.mineral, d.Mineral)
		assert.InDelta(t, e.ppm, d.ContributionPpm, tolerance, string(e.mineral))
		assert.InDelta(t, e.ppm*0.3, d.TargetMilligrams, tolerance, string(e.mineral))
		assert.InDelta(t, e.raw, d.RawDropCount, tolerance, string(e.mineral))
		assert.Equal(t, e.drops, d.RoundedDropCount, string(e.mineral))
	}

	assert.InDelta(t, 1.2*schema.SodiumFractionOfNaHCO3, result.SodiumMilligrams, tolerance)
	assert.InDelta(t, 4.8*schema.PotassiumFractionOfKHCO3, result.PotassiumMilligrams, tolerance)
	assert.Equal(t, 2, result.TotalDrops())
}

func TestCalculateCompactBalanced(t *testing.T) {
	req := schema.DoseRequest{GeneralHardness: 90, CarbonateHardness: 42, MagnesiumPct: 75, PotassiumPct: 50, VolumeMl: 250}

	balanced, err := Calculate(req, compactProfile(t), schema.BalancedRounding)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, balanced.Scale, tolerance)

	mg := balanced.Dose(schema.Magnesium)
	ca := balanced.Dose(schema.Calcium)
	assert.InDelta(t, 67.5, mg.TargetMilligrams, tolerance)
	assert.InDelta(t, 22.5, ca.TargetMilligrams, tolerance)
	assert.InDelta(t, 8.4375, mg.RawDropCount, tolerance)
	assert.InDelta(t, 2.8125, ca.RawDropCount, tolerance)
	assert.Equal(t, 9, mg.RoundedDropCount)
	assert.Equal(t, 2, ca.RoundedDropCount)

	independent, err := Calculate(req, compactProfile(t), schema.IndependentRounding)
	require.NoError(t, err)
	assert.Equal(t, 8, independent.Dose(schema.Magnesium).RoundedDropCount)
	assert.Equal(t, 3, independent.Dose(schema.Calcium).RoundedDropCount)

	// KH side is identical under both strategies
	assert.Equal(t,
		independent.Dose(schema.PotassiumBicarbonate).RoundedDropCount,
		balanced.Dose(schema.PotassiumBicarbonate).RoundedDropCount)
	assert.Equal(t,
		independent.Dose(schema.SodiumBicarbonate).RoundedDropCount,
		balanced.Dose(schema.SodiumBicarbonate).RoundedDropCount)
}

func TestCalculateShareBoundaries(t *testing.T) {
	profile := standardProfile(t)

	t.Run("all calcium", func(t *testing.T) {
		req := schema.DoseRequest{GeneralHardness: 50, CarbonateHardness: 30, MagnesiumPct: 0, PotassiumPct: 0, VolumeMl: 1000}
		result, err := Calculate(req, profile, schema.IndependentRounding)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Dose(schema.Magnesium).ContributionPpm)
		assert.Equal(t, 50.0, result.Dose(schema.Calcium).ContributionPpm)
		assert.Equal(t, 0.0, result.Dose(schema.PotassiumBicarbonate).ContributionPpm)
		assert.Equal(t, 30.0, result.Dose(schema.SodiumBicarbonate).ContributionPpm)
		assert.Equal(t, 0.0, result.PotassiumMilligrams)
	})

	t.Run("all magnesium", func(t *testing.T) {
		req := schema.DoseRequest{GeneralHardness: 50, CarbonateHardness: 30, MagnesiumPct: 100, PotassiumPct: 100, VolumeMl: 1000}
		for _, strategy := range []schema.RoundingStrategy{schema.IndependentRounding, schema.BalancedRounding} {
			result, err := Calculate(req, profile, strategy)
			require.NoError(t, err)
			assert.Equal(t, 50.0, result.Dose(schema.Magnesium).ContributionPpm)
			assert.Equal(t, 0.0, result.Dose(schema.Calcium).TargetMilligrams)
			assert.Equal(t, 0.0, result.Dose(schema.Calcium).RawDropCount)
			assert.Equal(t, 0, result.Dose(schema.Calcium).RoundedDropCount, string(strategy))
			assert.Equal(t, 0.0, result.SodiumMilligrams)
		}
	})

	t.Run("zero hardness", func(t *testing.T) {
		req := schema.DoseRequest{VolumeMl: 300, MagnesiumPct: 50, PotassiumPct: 50}
		result, err := Calculate(req, profile, schema.BalancedRounding)
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalDrops())
	})
}

func TestCalculatePpmSplitSumsToHardness(t *testing.T) {
	profile := standardProfile(t)
	for _, share := range []float64{0, 12.5, 33, 50, 80, 99.9, 100} {
		req := schema.DoseRequest{GeneralHardness: 73, CarbonateHardness: 41, MagnesiumPct: share, PotassiumPct: share, VolumeMl: 300}
		result, err := Calculate(req, profile, schema.IndependentRounding)
		require.NoError(t, err)

		gh := result.Dose(schema.Magnesium).ContributionPpm + result.Dose(schema.Calcium).ContributionPpm
		kh := result.Dose(schema.PotassiumBicarbonate).ContributionPpm + result.Dose(schema.SodiumBicarbonate).ContributionPpm
		assert.InDelta(t, 73.0, gh, tolerance)
		assert.InDelta(t, 41.0, kh, tolerance)
		for _, d := range result.Doses {
			assert.GreaterOrEqual(t, d.ContributionPpm, 0.0)
			assert.GreaterOrEqual(t, d.RoundedDropCount, 0)
		}
	}
}

func TestCalculateVolumeScaling(t *testing.T) {
	profile := standardProfile(t)
	base := schema.DoseRequest{GeneralHardness: 60, CarbonateHardness: 40, MagnesiumPct: 30, PotassiumPct: 30, VolumeMl: 300}
	doubled := base
	doubled.VolumeMl = 600

	a, err := Calculate(base, profile, schema.IndependentRounding)
	require.NoError(t, err)
	b, err := Calculate(doubled, profile, schema.IndependentRounding)
	require.NoError(t, err)

	for i := range a.Doses {
		assert.InDelta(t, 2*a.Doses[i].TargetMilligrams, b.Doses[i].TargetMilligrams, tolerance)
		assert.InDelta(t, 2*a.Doses[i].RawDropCount, b.Doses[i].RawDropCount, tolerance)
		assert.Equal(t, a.Doses[i].ContributionPpm, b.Doses[i].ContributionPpm)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	profile := standardProfile(t)
	req := schema.DoseRequest{GeneralHardness: 35, CarbonateHardness: 20, MagnesiumPct: 90, PotassiumPct: 90, VolumeMl: 473}

	a, err := Calculate(req, profile, schema.BalancedRounding)
	require.NoError(t, err)
	b, err := Calculate(req, profile, schema.BalancedRounding)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	for i := range a.Doses {
		assert.Equal(t, math.Float64bits(a.Doses[i].RawDropCount), math.Float64bits(b.Doses[i].RawDropCount))
	}
}

func TestCalculateInvalidInput(t *testing.T) {
	profile := standardProfile(t)
	valid := schema.DoseRequest{GeneralHardness: 40, CarbonateHardness: 20, MagnesiumPct: 80, PotassiumPct: 80, VolumeMl: 300}

	tests := []struct {
		name   string
		mutate func(*schema.DoseRequest)
	}{
		{"negative gh", func(r *schema.DoseRequest) { r.GeneralHardness = -1 }},
		{"negative kh", func(r *schema.DoseRequest) { r.CarbonateHardness = -0.5 }},
		{"mg share above 100", func(r *schema.DoseRequest) { r.MagnesiumPct = 100.1 }},
		{"k share below 0", func(r *schema.DoseRequest) { r.PotassiumPct = -3 }},
		{"zero volume", func(r *schema.DoseRequest) { r.VolumeMl = 0 }},
		{"negative volume", func(r *schema.DoseRequest) { r.VolumeMl = -250 }},
		{"nan gh", func(r *schema.DoseRequest) { r.GeneralHardness = math.NaN() }},
		{"infinite volume", func(r *schema.DoseRequest) { r.VolumeMl = math.Inf(1) }},
		{"raw drops beyond limit", func(r *schema.DoseRequest) { r.GeneralHardness = 1e300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			result, err := Calculate(req, profile, schema.IndependentRounding)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	t.Run("drop count limit", func(t *testing.T) {
		req := valid
		req.CarbonateHardness = 1e12
		result, err := Calculate(req, profile, schema.IndependentRounding)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "needs more than")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		result, err := Calculate(valid, profile, schema.RoundingStrategy("stochastic"))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero potency", func(t *testing.T) {
		broken := profile
		broken.Potency.Calcium = 0
		result, err := Calculate(valid, broken, schema.IndependentRounding)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero reference volume", func(t *testing.T) {
		broken := profile
		broken.ReferenceVolumeMl = 0
		_, err := Calculate(valid, broken, schema.IndependentRounding)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCalculateEveryPresetAtDefaultVolume(t *testing.T) {
	profile := standardProfile(t)
	for _, p := range schema.DefaultPresets() {
		result, err := Calculate(p.Request(schema.DefaultVolumeMl), profile, schema.BalancedRounding)
		require.NoError(t, err, p.Key)
		assert.Len(t, result.Doses, len(schema.AllMinerals))
	}
}
