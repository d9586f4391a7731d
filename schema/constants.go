package schema

// Custom string types for type safety.
type (
	// Mineral identifies a concentrate in the dosing kit.
	Mineral string

	// RoundingStrategy represents how raw drop counts become whole drops.
	RoundingStrategy string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for recipe history.
	DatabaseBackend string
)

// All minerals supported, in display order.
const (
	Magnesium            Mineral = "Mg"
	Calcium              Mineral = "Ca"
	PotassiumBicarbonate Mineral = "KHCO3"
	SodiumBicarbonate    Mineral = "NaHCO3"
)

// All rounding strategies supported.
const (
	IndependentRounding RoundingStrategy = "independent" // default
	BalancedRounding    RoundingStrategy = "balanced"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Stoichiometric mass fractions of the cation in each bicarbonate salt.
const (
	SodiumFractionOfNaHCO3    = 22.98977 / 84.00661
	PotassiumFractionOfKHCO3  = 39.0983 / 100.1151
	DefaultVolumeMl           = 300.0
	StandardReferenceVolumeMl = 1000.0
	CompactReferenceVolumeMl  = 250.0
)

// Ranges enforced by the command-line layer. The calculator itself only
// rejects physically meaningless values.
const (
	MinHardnessPpm = 0.0
	MaxHardnessPpm = 200.0
	MinVolumeMl    = 100.0
	MaxVolumeMl    = 5000.0
)

// AllMinerals lists every mineral in display order.
var AllMinerals = []Mineral{Magnesium, Calcium, PotassiumBicarbonate, SodiumBicarbonate}

// ValidRoundingStrategies lists all valid rounding strategies.
var ValidRoundingStrategies = map[RoundingStrategy]struct{}{
	IndependentRounding: {},
	BalancedRounding:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// MineralEffects describes what each concentrate does to the cup.
var MineralEffects = map[Mineral]string{
	Magnesium:            "Enhances Brightness, Juiciness, Perceived Acidity",
	Calcium:              "Enhances Body, Weight, Richness",
	PotassiumBicarbonate: "Buffers Acidity, Adds Potassium Sweetness",
	SodiumBicarbonate:    "Buffers Acidity, Adds Sodium Sweetness",
}
