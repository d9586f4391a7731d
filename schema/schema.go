// Package schema has configs, models and global variables for all parts of brewwater.
package schema

// HardnessTarget is the desired mineral profile for one liter of water.
type HardnessTarget struct {
	GeneralHardness   float64 `json:"general_hardness"`   // GH in ppm (magnesium + calcium)
	CarbonateHardness float64 `json:"carbonate_hardness"` // KH in ppm (bicarbonate buffer)
}

// CompositionSplit holds the fraction of GH attributed to magnesium and the
// fraction of KH attributed to potassium bicarbonate. Both are in [0,1].
type CompositionSplit struct {
	MagnesiumShare float64 `json:"magnesium_share"`
	PotassiumShare float64 `json:"potassium_share"`
}

// DoseRequest is the calculator input. Shares are percentages in [0,100].
type DoseRequest struct {
	GeneralHardness   float64 `json:"general_hardness"`
	CarbonateHardness float64 `json:"carbonate_hardness"`
	MagnesiumPct      float64 `json:"magnesium_pct"`
	PotassiumPct      float64 `json:"potassium_pct"`
	VolumeMl          float64 `json:"volume_ml"`
}

// Target returns the hardness part of the request.
func (r DoseRequest) Target() HardnessTarget {
	return HardnessTarget{GeneralHardness: r.GeneralHardness, CarbonateHardness: r.CarbonateHardness}
}

// Split returns the percentage shares as fractions.
func (r DoseRequest) Split() CompositionSplit {
	return CompositionSplit{MagnesiumShare: r.MagnesiumPct / 100, PotassiumShare: r.PotassiumPct / 100}
}

// Dose is the computed dosing for a single mineral concentrate.
type Dose struct {
	Mineral          Mineral `json:"mineral"`
	TargetMilligrams float64 `json:"target_mg"`
	RawDropCount     float64 `json:"raw_drops"`
	RoundedDropCount int     `json:"drops"`
	ContributionPpm  float64 `json:"ppm"`
}

// DoseResult is the full output of one calculation. It is produced fresh on
// every call and holds no reference to the inputs beyond copies.
type DoseResult struct {
	Request             DoseRequest      `json:"request"`
	Split               CompositionSplit `json:"split"`
	Profile             string           `json:"profile"`
	Strategy            RoundingStrategy `json:"rounding"`
	Scale               float64          `json:"scale"`
	Doses               []Dose           `json:"doses"`
	SodiumMilligrams    float64          `json:"sodium_mg"`    // Na delivered by the NaHCO3 target dose
	PotassiumMilligrams float64          `json:"potassium_mg"` // K delivered by the KHCO3 target dose
}

// Dose returns the dose for the given mineral, or a zero Dose if absent.
func (r *DoseResult) Dose(m Mineral) Dose {
	for _, d := range r.Doses {
		if d.Mineral == m {
			return d
		}
	}
	return Dose{Mineral: m}
}

// TotalDrops sums the rounded drop counts across all minerals.
func (r *DoseResult) TotalDrops() int {
	total := 0
	for _, d := range r.Doses {
		total += d.RoundedDropCount
	}
	return total
}
