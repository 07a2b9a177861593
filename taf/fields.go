package taf

import (
	"regexp"
	"strconv"
	"strings"
)

// SpeedUnit is a wind or wind shear speed unit.
type SpeedUnit string

const (
	UnitKnots           SpeedUnit = "KT"
	UnitMetersPerSecond SpeedUnit = "MPS"
)

// DistanceUnit is a visibility distance unit.
type DistanceUnit string

const (
	UnitStatuteMiles DistanceUnit = "SM"
	UnitMeters       DistanceUnit = "M"
)

// Wind is decoded surface wind. Direction "000" is the calm sentinel,
// independent of speed.
type Wind struct {
	Calm     bool
	Variable bool
	// Direction in degrees, meaningful only when neither Calm nor Variable.
	Direction int
	Speed     int
	Gust      *int
	Unit      SpeedUnit
}

// Visibility is decoded horizontal visibility. Raw preserves the report's
// range text (whole number, fraction or mixed whole+fraction); Distance is
// its numeric value.
type Visibility struct {
	// AtLeast is set by the P prefix and by the metric 9999 special case.
	AtLeast  bool
	Distance float64
	Raw      string
	Unit     DistanceUnit
}

// CloudLayer is one cloud layer, or a standalone sky-state token in which
// case the remaining fields are zero.
type CloudLayer struct {
	Sky      SkyState
	Coverage CloudCoverage
	// Ceiling in hundreds of feet.
	Ceiling int
	Form    CloudForm
}

// WeatherCode is one two-letter code of a phenomenon run together with its
// code-table classification.
type WeatherCode struct {
	Code  string
	Class CodeClass
}

// WeatherGroup is one decoded weather phenomenon run, e.g. "-TSRA".
type WeatherGroup struct {
	// Intensity is the leading intensity/vicinity prefix: "", "+", "-",
	// "VC", "+VC" or "-VC".
	Intensity string
	Codes     []WeatherCode
	Raw       string
}

// WindShear is a decoded low-level wind shear token.
type WindShear struct {
	// Altitude in hundreds of feet.
	Altitude  int
	Direction int
	Speed     int
	Unit      SpeedUnit
}

// GroupFields are the optional field slots of one weather group. A nil
// pointer or empty slice means the group did not specify that field.
type GroupFields struct {
	Wind       *Wind
	Visibility *Visibility
	Clouds     []CloudLayer
	// VertVis is vertical visibility in hundreds of feet.
	VertVis   *int
	Weather   []WeatherGroup
	WindShear *WindShear
}

var (
	windRegex      = regexp.MustCompile(`^(VRB|\d{3})(\d{2,3})(?:G(\d{2,3}))?(KT|MPS)$`)
	visRegexSM     = regexp.MustCompile(`^(P)?(\d+(?:/\d+)?)SM$`)
	visFractionSM  = regexp.MustCompile(`^(\d+/\d+)SM$`)
	visRegexMeters = regexp.MustCompile(`^\d{4}$`)
	cloudRegex     = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3})(CU|CB|TCU|CI)?$`)
	skyStateRegex  = regexp.MustCompile(`^(SKC|CLR|NSC|CAVOK|CAVU)$`)
	vvRegex        = regexp.MustCompile(`^VV(\d{3})$`)
	windShearRegex = regexp.MustCompile(`^WS(\d{3})/(\d{3})(\d{2})(KT|MPS)$`)
	// weatherRunRegex isolates tokens composed only of intensity markers
	// and the two-letter modifier/phenomenon alphabet.
	weatherRunRegex  = regexp.MustCompile(`^(?:\+|-|VC|MI|BC|DR|BL|SH|TS|FZ|PR|DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|DU|SA|HZ|PY|VA|PO|SQ|FC|SS|DS)+$`)
	intensityPrefix  = regexp.MustCompile(`^([+-]?(?:VC)?)`)
	wholeVisPrefixSM = regexp.MustCompile(`^\d+$`)
)

// extractGroup runs every field extraction over one raw group substring.
// Each sub-extraction is independent; a failed match leaves the field unset.
func extractGroup(raw string) RawGroup {
	g := RawGroup{Raw: raw}
	tokens := strings.Fields(raw)

	g.Header = parseGroupHeader(tokens)

	skyState := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if matches := windRegex.FindStringSubmatch(tok); matches != nil {
			g.Wind = parseWind(matches)
			continue
		}

		// Mixed whole+fraction visibility spans two tokens ("1 1/2SM").
		if i+1 < len(tokens) && wholeVisPrefixSM.MatchString(tok) && visFractionSM.MatchString(tokens[i+1]) {
			g.Visibility = parseVisibilitySM(false, tok+" "+tokens[i+1][:len(tokens[i+1])-2], g.Visibility)
			i++
			continue
		}
		if matches := visRegexSM.FindStringSubmatch(tok); matches != nil {
			g.Visibility = parseVisibilitySM(matches[1] == "P", matches[2], g.Visibility)
			continue
		}
		if visRegexMeters.MatchString(tok) {
			g.Visibility = parseVisibilityMeters(tok)
			continue
		}

		if matches := skyStateRegex.FindStringSubmatch(tok); matches != nil {
			// A sky-state token is the sole cloud result; layer tokens
			// elsewhere in the group are discarded.
			g.Clouds = []CloudLayer{{Sky: SkyState(matches[1])}}
			skyState = true
			continue
		}
		if matches := cloudRegex.FindStringSubmatch(tok); matches != nil && !skyState {
			ceiling, _ := strconv.Atoi(matches[2])
			g.Clouds = append(g.Clouds, CloudLayer{
				Coverage: CloudCoverage(matches[1]),
				Ceiling:  ceiling,
				Form:     CloudForm(matches[3]),
			})
			continue
		}

		if matches := vvRegex.FindStringSubmatch(tok); matches != nil {
			vv, _ := strconv.Atoi(matches[1])
			g.VertVis = &vv
			continue
		}

		if matches := windShearRegex.FindStringSubmatch(tok); matches != nil {
			g.WindShear = parseWindShear(matches)
			continue
		}

		if weatherRunRegex.MatchString(tok) {
			g.Weather = append(g.Weather, parseWeatherRun(tok))
			continue
		}
	}

	return g
}

// parseGroupHeader matches the group sub-header: the FM pattern first, then
// the PROB/TEMPO/BECMG pattern. The MAIN group has neither and returns nil.
func parseGroupHeader(tokens []string) *GroupHeader {
	if len(tokens) == 0 {
		return nil
	}

	if matches := fmAnchorRegex.FindStringSubmatch(tokens[0]); matches != nil {
		day, _ := strconv.Atoi(matches[1])
		hour, _ := strconv.Atoi(matches[2])
		minute, _ := strconv.Atoi(matches[3])
		return &GroupHeader{
			Kind: GroupFrom,
			From: &DayTime{Day: day, Hour: hour, Minute: minute},
		}
	}

	h := GroupHeader{}
	spanIdx := 1
	switch {
	case tokens[0] == string(GroupTempo):
		h.Kind = GroupTempo
	case tokens[0] == string(GroupBecoming):
		h.Kind = GroupBecoming
	case probAnchorRegex.MatchString(tokens[0]):
		matches := probAnchorRegex.FindStringSubmatch(tokens[0])
		h.Probability, _ = strconv.Atoi(matches[1])
		h.Kind = GroupProb
		if len(tokens) > 1 && tokens[1] == string(GroupTempo) {
			h.Kind = GroupProbTempo
			spanIdx = 2
		}
	default:
		return nil
	}

	if len(tokens) > spanIdx {
		if matches := spanRegex.FindStringSubmatch(tokens[spanIdx]); matches != nil {
			fromDay, _ := strconv.Atoi(matches[1])
			fromHour, _ := strconv.Atoi(matches[2])
			tillDay, _ := strconv.Atoi(matches[3])
			tillHour, _ := strconv.Atoi(matches[4])
			h.From = &DayTime{Day: fromDay, Hour: fromHour}
			h.Till = &DayTime{Day: tillDay, Hour: tillHour}
		}
	}
	return &h
}

// parseWind builds a Wind from the wind regex submatches.
func parseWind(matches []string) *Wind {
	w := Wind{Unit: SpeedUnit(matches[4])}
	if matches[1] == "VRB" {
		w.Variable = true
	} else {
		w.Direction, _ = strconv.Atoi(matches[1])
		if matches[1] == "000" {
			w.Calm = true
		}
	}
	w.Speed, _ = strconv.Atoi(matches[2])
	if matches[3] != "" {
		gust, _ := strconv.Atoi(matches[3])
		w.Gust = &gust
	}
	return &w
}

// parseVisibilitySM decodes a statute-mile range. The metric grammar takes
// precedence when both match, so an existing meters value is kept.
func parseVisibilitySM(atLeast bool, rangeStr string, existing *Visibility) *Visibility {
	if existing != nil && existing.Unit == UnitMeters {
		return existing
	}
	return &Visibility{
		AtLeast:  atLeast,
		Distance: decodeRange(rangeStr),
		Raw:      rangeStr,
		Unit:     UnitStatuteMiles,
	}
}

// parseVisibilityMeters decodes a 4-digit metric range. "9999" means
// visibility of at least 10 km.
func parseVisibilityMeters(tok string) *Visibility {
	if tok == "9999" {
		return &Visibility{
			AtLeast:  true,
			Distance: 10000,
			Raw:      "10 000",
			Unit:     UnitMeters,
		}
	}
	meters, _ := strconv.Atoi(tok)
	return &Visibility{
		Distance: float64(meters),
		Raw:      tok,
		Unit:     UnitMeters,
	}
}

// decodeRange turns a whole, fraction or mixed whole+fraction range string
// into its numeric value.
func decodeRange(rangeStr string) float64 {
	whole := 0.0
	rem := rangeStr
	if before, after, found := strings.Cut(rangeStr, " "); found {
		w, _ := strconv.Atoi(before)
		whole = float64(w)
		rem = after
	}
	if num, denom, found := strings.Cut(rem, "/"); found {
		n, _ := strconv.Atoi(num)
		d, _ := strconv.Atoi(denom)
		if d != 0 {
			return whole + float64(n)/float64(d)
		}
		return whole
	}
	v, _ := strconv.Atoi(rem)
	return whole + float64(v)
}

// parseWeatherRun decodes one phenomenon run: strip the intensity/vicinity
// prefix, then classify consecutive two-character chunks. Unrecognized
// chunks classify as unknown; extraction continues.
func parseWeatherRun(run string) WeatherGroup {
	w := WeatherGroup{Raw: run}

	rem := run
	if matches := intensityPrefix.FindStringSubmatch(run); matches != nil && matches[1] != "" {
		w.Intensity = matches[1]
		rem = run[len(matches[1]):]
	}

	for len(rem) >= 2 {
		chunk := rem[:2]
		w.Codes = append(w.Codes, WeatherCode{Code: chunk, Class: ClassifyCode(chunk)})
		rem = rem[2:]
	}
	if len(rem) == 1 {
		w.Codes = append(w.Codes, WeatherCode{Code: rem, Class: ClassUnknown})
	}
	return w
}

// parseWindShear builds a WindShear from the wind shear regex submatches.
func parseWindShear(matches []string) *WindShear {
	ws := WindShear{Unit: SpeedUnit(matches[4])}
	ws.Altitude, _ = strconv.Atoi(matches[1])
	ws.Direction, _ = strconv.Atoi(matches[2])
	ws.Speed, _ = strconv.Atoi(matches[3])
	return &ws
}
