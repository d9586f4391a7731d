package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/brewwater/schema"
)

// ErrInvalidInput is returned when a calculation input is out of range or
// not a finite number. No partial result accompanies it.
var ErrInvalidInput = errors.New("invalid input")

// maxDropCount bounds raw drop counts so rounding stays within int range.
const maxDropCount = 1e9

// Calculate converts a hardness target into concentrate drop counts.
//
// It is a pure function: no I/O, no shared state, identical inputs give
// identical results. Safe for concurrent use.
func Calculate(req schema.DoseRequest, profile schema.ConcentrateProfile, strategy schema.RoundingStrategy) (*schema.DoseResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	if _, ok := schema.ValidRoundingStrategies[strategy]; !ok {
		return nil, fmt.Errorf("%w: unknown rounding strategy %q", ErrInvalidInput, strategy)
	}

	scale := req.VolumeMl / profile.ReferenceVolumeMl

	mgPpm := req.GeneralHardness * (req.MagnesiumPct / 100)
	caPpm := req.GeneralHardness - mgPpm
	kPpm := req.CarbonateHardness * (req.PotassiumPct / 100)
	naPpm := req.CarbonateHardness - kPpm

	ppm := map[schema.Mineral]float64{
		schema.Magnesium:            mgPpm,
		schema.Calcium:              caPpm,
		schema.PotassiumBicarbonate: kPpm,
		schema.SodiumBicarbonate:    naPpm,
	}

	doses := make([]schema.Dose, len(schema.AllMinerals))
	for i, m := range schema.AllMinerals {
		target := ppm[m] * scale
		raw := target / profile.Potency.For(m)
		if !(raw <= maxDropCount) {
			return nil, fmt.Errorf("%w: %s needs more than %g drops", ErrInvalidInput, m, float64(maxDropCount))
		}
		doses[i] = schema.Dose{
			Mineral:          m,
			TargetMilligrams: target,
			RawDropCount:     raw,
			RoundedDropCount: RoundIndependent(raw),
			ContributionPpm:  ppm[m],
		}
	}

	if strategy == schema.BalancedRounding {
		// Only the GH pair is balanced; doses[0] is Mg and doses[1] is Ca.
		doses[0].RoundedDropCount, doses[1].RoundedDropCount = RoundBalanced(doses[0].RawDropCount, doses[1].RawDropCount)
	}

	return &schema.DoseResult{
		Request:             req,
		Split:               req.Split(),
		Profile:             profile.Name,
		Strategy:            strategy,
		Scale:               scale,
		Doses:               doses,
		SodiumMilligrams:    doses[3].TargetMilligrams * schema.SodiumFractionOfNaHCO3,
		PotassiumMilligrams: doses[2].TargetMilligrams * schema.PotassiumFractionOfKHCO3,
	}, nil
}

// validateRequest rejects hardness, share and volume values the formula cannot use.
func validateRequest(req schema.DoseRequest) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"general hardness", req.GeneralHardness},
		{"carbonate hardness", req.CarbonateHardness},
		{"magnesium share", req.MagnesiumPct},
		{"potassium share", req.PotassiumPct},
		{"volume", req.VolumeMl},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, f.name)
		}
	}

	if req.GeneralHardness < 0 {
		return fmt.Errorf("%w: general hardness cannot be negative (received %g)", ErrInvalidInput, req.GeneralHardness)
	}
	if req.CarbonateHardness < 0 {
		return fmt.Errorf("%w: carbonate hardness cannot be negative (received %g)", ErrInvalidInput, req.CarbonateHardness)
	}
	if req.MagnesiumPct < 0 || req.MagnesiumPct > 100 {
		return fmt.Errorf("%w: magnesium share must be between 0 and 100 (received %g)", ErrInvalidInput, req.MagnesiumPct)
	}
	if req.PotassiumPct < 0 || req.PotassiumPct > 100 {
		return fmt.Errorf("%w: potassium share must be between 0 and 100 (received %g)", ErrInvalidInput, req.PotassiumPct)
	}
	if req.VolumeMl <= 0 {
		return fmt.Errorf("%w: volume must be greater than 0 (received %g)", ErrInvalidInput, req.VolumeMl)
	}
	return nil
}

// validateProfile guards against divide-by-zero in the drop formula.
func validateProfile(profile schema.ConcentrateProfile) error {
	if !(profile.ReferenceVolumeMl > 0) || math.IsInf(profile.ReferenceVolumeMl, 0) {
		return fmt.Errorf("%w: profile %q needs a positive reference volume", ErrInvalidInput, profile.Name)
	}
	for _, m := range schema.AllMinerals {
		p := profile.Potency.For(m)
		if !(p > 0) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: profile %q needs a positive potency for %s", ErrInvalidInput, profile.Name, m)
		}
	}
	return nil
}
