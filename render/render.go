// Package render turns decoded TAF structures into human-readable text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/flightwx/tafcast/taf"
)

// Color definitions using fatih/color
var (
	labelColor   = color.New(color.FgCyan)
	dateColor    = color.New(color.FgGreen)
	sectionColor = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
)

// Modifier code wording.
var modifierWords = map[string]string{
	"MI": "shallow",
	"BC": "patchy",
	"DR": "low drifting",
	"BL": "blowing",
	"SH": "showers",
	"TS": "thunderstorms",
	"FZ": "freezing",
	"PR": "partial",
}

// Phenomenon code wording.
var phenomenonWords = map[string]string{
	"DZ": "drizzle",
	"RA": "rain",
	"SN": "snow",
	"SG": "snow grains",
	"IC": "ice",
	"PL": "ice pellets",
	"GR": "hail",
	"GS": "small snow/hail pellets",
	"UP": "unknown precipitation",
	"BR": "mist",
	"FG": "fog",
	"FU": "smoke",
	"DU": "dust",
	"SA": "sand",
	"HZ": "haze",
	"PY": "spray",
	"VA": "volcanic ash",
	"PO": "dust/sand whirl",
	"SQ": "squall",
	"FC": "funnel cloud",
	"SS": "sand storm",
	"DS": "dust storm",
}

// comboWords fixes the worst grammar of naive modifier+phenomenon joins.
var comboWords = map[string]string{
	"SHRA": "showers",
	"SHSN": "snow showers",
	"SHSG": "snow grain showers",
	"SHPL": "ice pellet showers",
	"SHIC": "ice showers",
	"SHGS": "snow pellet showers",
	"SHGR": "hail showers",
	"TSRA": "thunderstorms and rain",
	"TSUP": "thunderstorms with unknown precipitation",
}

var coverageWords = map[taf.CloudCoverage]string{
	taf.CoverageFew:       "few",
	taf.CoverageScattered: "scattered",
	taf.CoverageBroken:    "broken",
	taf.CoverageOvercast:  "overcast",
}

var formWords = map[taf.CloudForm]string{
	taf.FormCumulus:         "cumulus",
	taf.FormCumulonimbus:    "cumulonimbus",
	taf.FormToweringCumulus: "towering cumulus",
	taf.FormCirrus:          "cirrus",
}

var skyStateWords = map[taf.SkyState]string{
	taf.SkyClear:         "sky clear",
	taf.SkyClearAuto:     "sky clear",
	taf.SkyNoSignificant: "no significant cloud",
	taf.SkyCAVOK:         "ceiling and visibility are OK",
	taf.SkyCAVU:          "ceiling and visibility unrestricted",
}

// Ordinal formats a day number with its English ordinal suffix.
func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// onThe formats a timestamp as "HH:MM UTC on the Nth".
func onThe(t time.Time) string {
	return fmt.Sprintf("%02d:%02d UTC on the %s", t.Hour(), t.Minute(), Ordinal(t.Day()))
}

// Header renders the report envelope line.
func Header(tl *taf.Timeline) string {
	h := tl.Header()

	var sb strings.Builder
	switch h.Kind {
	case taf.KindAmended:
		sb.WriteString("TAF amended for ")
	case taf.KindCorrected:
		sb.WriteString("TAF corrected for ")
	case taf.KindDelayed:
		sb.WriteString("TAF related for ")
	default:
		sb.WriteString("TAF for ")
	}
	sb.WriteString(h.Station)

	if h.Origin != nil {
		fmt.Fprintf(&sb, " issued %s,", onThe(tl.Issued()))
	}
	fmt.Fprintf(&sb, " valid from %s to %s", onThe(tl.ValidFrom()), onThe(tl.ValidTill()))
	return sb.String()
}

// PeriodHeader renders the period-kind line of one forecast period.
func PeriodHeader(p taf.Period) string {
	till := "an unknown end"
	if !p.End.IsZero() {
		till = onThe(p.End)
	}

	switch p.Kind {
	case taf.GroupMain:
		return ""
	case taf.GroupFrom, taf.GroupMainExt:
		return fmt.Sprintf("From %s:", onThe(p.Start))
	case taf.GroupTempo:
		return fmt.Sprintf("Temporarily between %s and %s:", onThe(p.Start), till)
	case taf.GroupBecoming:
		return fmt.Sprintf("Gradual change to the following between %s and %s:", onThe(p.Start), till)
	case taf.GroupProb:
		return fmt.Sprintf("Probability %d%% of the following between %s and %s:", p.Probability, onThe(p.Start), till)
	case taf.GroupProbTempo:
		return fmt.Sprintf("Probability %d%% of the following temporarily between %s and %s:", p.Probability, onThe(p.Start), till)
	}
	return ""
}

// Wind renders decoded wind as plain English.
func Wind(w taf.Wind) string {
	if w.Calm {
		return "calm"
	}

	var sb strings.Builder
	if w.Variable {
		sb.WriteString("variable")
	} else {
		fmt.Fprintf(&sb, "from %03d degrees", w.Direction)
	}

	unit := "knots"
	if w.Unit == taf.UnitMetersPerSecond {
		unit = "meters per second"
	}
	fmt.Fprintf(&sb, " at %d %s", w.Speed, unit)
	if w.Gust != nil {
		fmt.Fprintf(&sb, " gusting to %d %s", *w.Gust, unit)
	}
	return sb.String()
}

// Visibility renders decoded visibility as plain English.
func Visibility(v taf.Visibility) string {
	var sb strings.Builder
	if v.AtLeast {
		sb.WriteString("more than ")
	}
	sb.WriteString(v.Raw)
	if v.Unit == taf.UnitStatuteMiles {
		sb.WriteString(" statute miles")
	} else {
		sb.WriteString(" meters")
	}
	return sb.String()
}

// Clouds renders a cloud layer list as plain English.
func Clouds(layers []taf.CloudLayer) string {
	var parts []string
	for _, layer := range layers {
		if layer.Sky != "" {
			return skyStateWords[layer.Sky]
		}
		desc := coverageWords[layer.Coverage]
		if form, ok := formWords[layer.Form]; ok {
			desc += " " + form
		}
		parts = append(parts, fmt.Sprintf("%s clouds at %d feet", desc, layer.Ceiling*100))
	}
	return strings.Join(parts, ", ")
}

// Weather renders decoded weather phenomenon runs as plain English.
func Weather(groups []taf.WeatherGroup) string {
	var parts []string
	for _, g := range groups {
		parts = append(parts, weatherGroup(g))
	}
	return strings.Join(parts, ", ")
}

func weatherGroup(g taf.WeatherGroup) string {
	// Tornado special case.
	if g.Intensity == "+" && len(g.Codes) == 1 && g.Codes[0].Code == "FC" {
		return "tornado or waterspout"
	}

	var words []string
	for i := 0; i < len(g.Codes); i++ {
		code := g.Codes[i]
		if i+1 < len(g.Codes) {
			if combo, ok := comboWords[code.Code+g.Codes[i+1].Code]; ok {
				words = append(words, combo)
				i++
				continue
			}
		}
		switch code.Class {
		case taf.ClassModifier:
			words = append(words, modifierWords[code.Code])
		case taf.ClassPhenomenon:
			words = append(words, phenomenonWords[code.Code])
		default:
			words = append(words, code.Code)
		}
	}

	phrase := strings.Join(words, " ")
	switch g.Intensity {
	case "+":
		return "heavy " + phrase
	case "-":
		return "light " + phrase
	case "VC":
		return phrase + " in the vicinity"
	case "+VC":
		return "heavy " + phrase + " in the vicinity"
	case "-VC":
		return "light " + phrase + " in the vicinity"
	}
	return phrase
}

// WindShear renders decoded wind shear as plain English.
func WindShear(ws taf.WindShear) string {
	unit := "knots"
	if ws.Unit == taf.UnitMetersPerSecond {
		unit = "meters per second"
	}
	return fmt.Sprintf("at %d feet, wind from %03d degrees at %d %s", ws.Altitude*100, ws.Direction, ws.Speed, unit)
}

// Period renders one forecast period: its header line plus indented field
// lines for whatever fields are set.
func Period(p taf.Period) string {
	var sb strings.Builder

	if header := PeriodHeader(p); header != "" {
		dateColor.Fprint(&sb, header)
		sb.WriteString("\n")
	}
	writeField := func(label, value string) {
		if value == "" {
			return
		}
		sb.WriteString("    ")
		labelColor.Fprint(&sb, label+": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	if p.Wind != nil {
		writeField("Wind", Wind(*p.Wind))
	}
	if p.Visibility != nil {
		writeField("Visibility", Visibility(*p.Visibility))
	}
	if len(p.Clouds) > 0 {
		writeField("Sky conditions", Clouds(p.Clouds))
	}
	if p.VertVis != nil {
		writeField("Vertical visibility", fmt.Sprintf("%d feet", *p.VertVis*100))
	}
	if len(p.Weather) > 0 {
		writeField("Weather", Weather(p.Weather))
	}
	if p.WindShear != nil {
		writeField("Windshear", WindShear(*p.WindShear))
	}
	return sb.String()
}

// Timeline renders the whole decoded report: header, every resolved period
// in chronological order, the maintenance note and any decode warnings.
func Timeline(tl *taf.Timeline) string {
	var sb strings.Builder

	sb.WriteString(Header(tl))
	sb.WriteString("\n")

	for _, p := range tl.Periods() {
		sb.WriteString("\n")
		sb.WriteString(Period(p))
	}

	if tl.Maintenance() {
		sb.WriteString("\n")
		sectionColor.Fprint(&sb, "Station is under maintenance check")
		sb.WriteString("\n")
	}

	if warnings := tl.Warnings(); len(warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range warnings {
			warnColor.Fprint(&sb, "Note: "+w.Message)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
