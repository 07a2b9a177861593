package taf

// CodeClass is the classification of one two-letter weather code.
type CodeClass string

const (
	ClassModifier   CodeClass = "modifier"
	ClassPhenomenon CodeClass = "phenomenon"
	ClassUnknown    CodeClass = "unknown"
)

// weatherCodeClasses maps every two-letter code that may appear inside a
// weather phenomenon run to its class. Codes outside this table classify
// as unknown; that is never fatal.
var weatherCodeClasses = map[string]CodeClass{
	// Modifiers
	"MI": ClassModifier, // shallow
	"BC": ClassModifier, // patches
	"DR": ClassModifier, // low drifting
	"BL": ClassModifier, // blowing
	"SH": ClassModifier, // showers
	"TS": ClassModifier, // thunderstorm
	"FZ": ClassModifier, // freezing
	"PR": ClassModifier, // partial

	// Phenomena
	"DZ": ClassPhenomenon, // drizzle
	"RA": ClassPhenomenon, // rain
	"SN": ClassPhenomenon, // snow
	"SG": ClassPhenomenon, // snow grains
	"IC": ClassPhenomenon, // ice crystals
	"PL": ClassPhenomenon, // ice pellets
	"GR": ClassPhenomenon, // hail
	"GS": ClassPhenomenon, // small hail
	"UP": ClassPhenomenon, // unknown precipitation
	"BR": ClassPhenomenon, // mist
	"FG": ClassPhenomenon, // fog
	"FU": ClassPhenomenon, // smoke
	"DU": ClassPhenomenon, // widespread dust
	"SA": ClassPhenomenon, // sand
	"HZ": ClassPhenomenon, // haze
	"PY": ClassPhenomenon, // spray
	"VA": ClassPhenomenon, // volcanic ash
	"PO": ClassPhenomenon, // dust whirls
	"SQ": ClassPhenomenon, // squalls
	"FC": ClassPhenomenon, // funnel cloud
	"SS": ClassPhenomenon, // sandstorm
	"DS": ClassPhenomenon, // duststorm
}

// ClassifyCode looks up the class of a two-letter weather code.
func ClassifyCode(code string) CodeClass {
	if class, ok := weatherCodeClasses[code]; ok {
		return class
	}
	return ClassUnknown
}

// CloudCoverage is a cloud layer coverage code.
type CloudCoverage string

const (
	CoverageFew       CloudCoverage = "FEW"
	CoverageScattered CloudCoverage = "SCT"
	CoverageBroken    CloudCoverage = "BKN"
	CoverageOvercast  CloudCoverage = "OVC"
)

// CloudForm is an optional cloud form suffix on a layer token.
type CloudForm string

const (
	FormCumulus         CloudForm = "CU"
	FormCumulonimbus    CloudForm = "CB"
	FormToweringCumulus CloudForm = "TCU"
	FormCirrus          CloudForm = "CI"
)

// SkyState is a standalone sky condition token that replaces cloud layers.
type SkyState string

const (
	SkyClear         SkyState = "SKC"
	SkyClearAuto     SkyState = "CLR"
	SkyNoSignificant SkyState = "NSC"
	SkyCAVOK         SkyState = "CAVOK"
	SkyCAVU          SkyState = "CAVU"
)
