// Package taf decodes Terminal Aerodrome Forecast (TAF) reports into a
// structured, queryable timeline of forecast periods.
//
// Decoding is a two-stage pipeline: Parse splits the raw report into a
// header and an ordered sequence of weather groups and extracts typed
// fields from each group, and BuildTimeline resolves the groups into
// absolute, gap-free forecast periods.
package taf

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedReport is returned when the report header does not match the
// TAF grammar or no weather groups can be found. No partial result is
// returned alongside it.
var ErrMalformedReport = errors.New("malformed TAF report")

// ReportKind qualifies the report as routine or amended/corrected/delayed.
type ReportKind string

const (
	KindRoutine   ReportKind = "MAIN"
	KindAmended   ReportKind = "AMD"
	KindCorrected ReportKind = "COR"
	KindDelayed   ReportKind = "RTD"
)

// GroupKind identifies the kind of one weather group or forecast period.
type GroupKind string

const (
	GroupMain      GroupKind = "MAIN"
	GroupFrom      GroupKind = "FM"
	GroupTempo     GroupKind = "TEMPO"
	GroupBecoming  GroupKind = "BECMG"
	GroupProb      GroupKind = "PROB"
	GroupProbTempo GroupKind = "PROB TEMPO"
	// GroupMainExt marks a synthetic period cloned from the MAIN group to
	// fill a gap in time coverage.
	GroupMainExt GroupKind = "MAIN-EXT"
)

// DayTime is a day-of-month plus time-of-day reference as encoded in a TAF.
// The month and year are not part of the wire format; the timeline builder
// infers them from the report's origin timestamp.
type DayTime struct {
	Day    int
	Hour   int
	Minute int
}

// Header is the TAF envelope: report kind, station, origin time and the
// base validity window. Immutable once parsed.
type Header struct {
	Kind    ReportKind
	Station string
	// Origin is the issue time. Some aerodromes omit it.
	Origin    *DayTime
	ValidFrom DayTime
	ValidTill DayTime
}

// GroupHeader holds the sub-header fields of a FM/TEMPO/BECMG/PROB group.
// The implicit MAIN group carries no sub-header.
type GroupHeader struct {
	Kind GroupKind
	// Probability is the PROBnn percentage, 0 when absent.
	Probability int
	// From is the period start. FM groups encode day/hour/minute; the
	// others encode day/hour. Nil when the group omitted its time span.
	From *DayTime
	// Till is the period end. FM groups never carry one.
	Till *DayTime
}

// RawGroup is one weather group: its substring of the report, its matched
// sub-header and the typed fields extracted from it.
type RawGroup struct {
	Raw    string
	Header *GroupHeader
	GroupFields
}

// Report is a parsed TAF: header plus ordered weather groups. Produced
// once by Parse and never mutated.
type Report struct {
	Raw         string
	Header      Header
	Groups      []RawGroup
	Maintenance bool
}

var (
	headerRegex = regexp.MustCompile(`^(?:TAF\s+)*(?:(AMD|COR|RTD)\s+)?([A-Z]{4})\s+(?:(\d{2})(\d{2})(\d{2})Z\s+)?(\d{2})(\d{2})/?(\d{2})(\d{2})`)
	// groupTokenRegex is the allowed character class for group content;
	// tokens outside it are dropped so unexpected content does not corrupt
	// segmentation.
	groupTokenRegex = regexp.MustCompile(`^[A-Z0-9+\-/$]+$`)
	fmAnchorRegex   = regexp.MustCompile(`^FM(\d{2})(\d{2})(\d{2})$`)
	probAnchorRegex = regexp.MustCompile(`^PROB(\d{1,2})$`)
	spanRegex       = regexp.MustCompile(`^(\d{2})(\d{2})/(\d{2})(\d{2})$`)
)

// Parse decodes the raw text of one TAF report into a Report. The input may
// carry arbitrary internal whitespace, a repeated or absent TAF literal and
// an optional trailing "=" terminator.
func Parse(raw string) (*Report, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimSuffix(cleaned, "=")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty report", ErrMalformedReport)
	}
	cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")

	header, err := parseHeader(cleaned)
	if err != nil {
		return nil, err
	}

	groups := segmentGroups(cleaned)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no weather groups found", ErrMalformedReport)
	}

	r := &Report{
		Raw:         cleaned,
		Header:      header,
		Maintenance: strings.Contains(cleaned, "$"),
	}
	for _, g := range groups {
		r.Groups = append(r.Groups, extractGroup(g))
	}
	return r, nil
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// parseHeader matches the report prefix: optional TAF literal(s), optional
// kind qualifier, station code, optional origin day/hour/minute and the
// mandatory validity window.
func parseHeader(cleaned string) (Header, error) {
	matches := headerRegex.FindStringSubmatch(cleaned)
	if matches == nil {
		return Header{}, fmt.Errorf("%w: no valid header found", ErrMalformedReport)
	}

	h := Header{Kind: KindRoutine, Station: matches[2]}
	if matches[1] != "" {
		h.Kind = ReportKind(matches[1])
	}

	if matches[3] != "" {
		day, _ := strconv.Atoi(matches[3])
		hour, _ := strconv.Atoi(matches[4])
		minute, _ := strconv.Atoi(matches[5])
		h.Origin = &DayTime{Day: day, Hour: hour, Minute: minute}
	}

	h.ValidFrom.Day, _ = strconv.Atoi(matches[6])
	h.ValidFrom.Hour, _ = strconv.Atoi(matches[7])
	h.ValidTill.Day, _ = strconv.Atoi(matches[8])
	h.ValidTill.Hour, _ = strconv.Atoi(matches[9])
	return h, nil
}

// segmentGroups splits the report into maximal substrings running from one
// group anchor (FM, PROBnn, PROBnn TEMPO, TEMPO, BECMG) up to the next
// anchor or end of report. The chunk before the first anchor is the MAIN
// group.
func segmentGroups(cleaned string) []string {
	var groups []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, strings.Join(current, " "))
			current = nil
		}
	}

	tokens := strings.Fields(cleaned)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !groupTokenRegex.MatchString(tok) {
			continue
		}

		switch {
		case fmAnchorRegex.MatchString(tok), tok == string(GroupTempo), tok == string(GroupBecoming):
			flush()
			current = append(current, tok)
		case probAnchorRegex.MatchString(tok):
			flush()
			current = append(current, tok)
			// PROBnn TEMPO is a single anchor; consume the TEMPO so it
			// does not start a group of its own.
			if i+1 < len(tokens) && tokens[i+1] == string(GroupTempo) {
				current = append(current, tokens[i+1])
				i++
			}
		default:
			current = append(current, tok)
		}
	}
	flush()
	return groups
}
