package taf

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrTimelineResolution is returned when a required timestamp component of
// the report cannot be resolved to an absolute time.
var ErrTimelineResolution = errors.New("cannot resolve timeline")

// coverageGapTolerance is the largest gap between consecutive coverage
// periods that does not trigger a synthetic gap-fill period.
const coverageGapTolerance = 5 * time.Minute

// Warning codes recorded during timeline construction.
const (
	WarnDayNormalized  = "day-normalized"
	WarnMissingEndTime = "missing-end-time"
	WarnCoverageGap    = "coverage-gap"
)

// Warning is a non-fatal data-quality note recorded while building a
// timeline.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Period is one resolved forecast period. Start and End bound the half-open
// interval [Start, End); a zero End on an overlay period means the report
// omitted its till-timestamp. Immutable once the timeline is built.
type Period struct {
	Kind        GroupKind
	Probability int
	Start       time.Time
	End         time.Time
	GroupFields
	Raw string
}

// Covers reports whether t falls inside the period's interval.
func (p Period) Covers(t time.Time) bool {
	return !p.End.IsZero() && !p.Start.After(t) && t.Before(p.End)
}

// Overlay reports whether the period is a TEMPO/BECMG/PROB overlay, which
// coexists inside a coverage period's interval without affecting the
// coverage invariant.
func (p Period) Overlay() bool {
	switch p.Kind {
	case GroupTempo, GroupBecoming, GroupProb, GroupProbTempo:
		return true
	}
	return false
}

// Timeline is the resolved, chronologically ordered set of forecast
// periods of one report. Read-only and safe for concurrent use.
type Timeline struct {
	header      Header
	issued      time.Time
	validFrom   time.Time
	validTill   time.Time
	periods     []Period
	warnings    []Warning
	maintenance bool
}

// Header returns the report header the timeline was built from.
func (tl *Timeline) Header() Header { return tl.header }

// Issued returns the resolved origin timestamp of the report.
func (tl *Timeline) Issued() time.Time { return tl.issued }

// ValidFrom returns the resolved start of the base validity window.
func (tl *Timeline) ValidFrom() time.Time { return tl.validFrom }

// ValidTill returns the resolved end of the base validity window.
func (tl *Timeline) ValidTill() time.Time { return tl.validTill }

// Maintenance reports whether the report carried the "$" maintenance marker.
func (tl *Timeline) Maintenance() bool { return tl.maintenance }

// Warnings returns the data-quality notes recorded during construction.
func (tl *Timeline) Warnings() []Warning { return tl.warnings }

// Periods returns all periods, overlays included, sorted by start time.
// The returned slice must not be modified.
func (tl *Timeline) Periods() []Period { return tl.periods }

// PeriodAt returns the coverage period whose interval contains t. The
// second return value is false when no period covers t; given the coverage
// invariant that indicates a malformed report or a caller time outside the
// validity window.
func (tl *Timeline) PeriodAt(t time.Time) (Period, bool) {
	for _, p := range tl.periods {
		if !p.Overlay() && p.Covers(t) {
			return p, true
		}
	}
	return Period{}, false
}

// PeriodAtAll is like PeriodAt but considers overlay periods too, returning
// the first period in chronological order that contains t.
func (tl *Timeline) PeriodAtAll(t time.Time) (Period, bool) {
	for _, p := range tl.periods {
		if p.Covers(t) {
			return p, true
		}
	}
	return Period{}, false
}

// buildOptions collects the optional knobs of BuildTimeline.
type buildOptions struct {
	now time.Time
}

// Option configures BuildTimeline.
type Option func(*buildOptions)

// WithNow sets the reference time used to infer month and year when the
// report header lacks an origin timestamp. Defaults to the package clock's
// current UTC time.
func WithNow(now time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// BuildTimeline resolves a parsed report into an immutable timeline: one
// period per weather group with absolute timestamps, synthetic periods
// filling coverage gaps, and unset overlay fields inherited from the
// nearest preceding period. On error no timeline is returned.
func BuildTimeline(r *Report, opts ...Option) (*Timeline, error) {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now.IsZero() {
		o.now = clock.Now().UTC()
	}

	tl := &Timeline{header: r.Header, maintenance: r.Maintenance}

	if err := tl.resolveIssued(r.Header, o.now); err != nil {
		return nil, err
	}

	var err error
	tl.validFrom, err = tl.resolve(dayTime(r.Header.ValidFrom))
	if err != nil {
		return nil, err
	}
	tl.validTill, err = tl.resolve(dayTime(r.Header.ValidTill))
	if err != nil {
		return nil, err
	}

	if err := tl.buildPeriods(r); err != nil {
		return nil, err
	}
	tl.fillCoverageGaps()
	tl.inheritFields()
	return tl, nil
}

// dayTime adapts a by-value DayTime to the pointer the resolver takes.
func dayTime(dt DayTime) *DayTime { return &dt }

// resolveIssued fixes the report's origin timestamp. Month and year come
// from the caller's reference time; a missing origin falls back to the
// reference time itself.
func (tl *Timeline) resolveIssued(h Header, now time.Time) error {
	if h.Origin == nil {
		tl.issued = now
		return nil
	}
	if err := validDayTime(*h.Origin); err != nil {
		return err
	}

	year, month := now.Year(), now.Month()
	day := h.Origin.Day
	if day == 31 && daysInMonth(year, month) == 30 {
		tl.warn(WarnDayNormalized, fmt.Sprintf("origin day 31 does not exist in %s; normalized to the 1st of the next month", month))
		month++
		day = 1
	}
	if day > daysInMonth(year, month) {
		return fmt.Errorf("%w: origin day %d does not exist in %s", ErrTimelineResolution, day, month)
	}
	tl.issued = time.Date(year, month, day, h.Origin.Hour, h.Origin.Minute, 0, 0, time.UTC)
	return nil
}

// resolve turns a day/hour(/minute) reference into an absolute timestamp
// relative to the issued timestamp, rolling the month forward (never
// backward) when the target day precedes the origin's day.
func (tl *Timeline) resolve(dt *DayTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("%w: missing day/hour reference", ErrTimelineResolution)
	}
	if err := validDayTime(*dt); err != nil {
		return time.Time{}, err
	}

	hour, minute := dt.Hour, dt.Minute
	if hour == 24 {
		// End-of-day sentinel.
		hour, minute = 23, 59
	}

	year, month := tl.issued.Year(), tl.issued.Month()
	if tl.issued.Day() > dt.Day {
		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	day := dt.Day
	if day == 31 && daysInMonth(year, month) == 30 {
		// Some stations encode day 31 in a 30-day month. Correct it, but
		// only this exact malformation.
		tl.warn(WarnDayNormalized, fmt.Sprintf("day 31 does not exist in %s; normalized to the 1st of the next month", month))
		month++
		day = 1
	}
	if day > daysInMonth(year, month) {
		// Any other impossible combination, day 31 or 30 against February
		// for instance, cannot be corrected with confidence.
		return time.Time{}, fmt.Errorf("%w: day %d does not exist in %s", ErrTimelineResolution, day, month)
	}
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}

// validDayTime rejects day/hour values no calendar arithmetic can recover.
func validDayTime(dt DayTime) error {
	if dt.Day < 1 || dt.Day > 31 {
		return fmt.Errorf("%w: day %d out of range", ErrTimelineResolution, dt.Day)
	}
	if dt.Hour < 0 || dt.Hour > 24 {
		return fmt.Errorf("%w: hour %d out of range", ErrTimelineResolution, dt.Hour)
	}
	return nil
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (tl *Timeline) warn(code, message string) {
	tl.warnings = append(tl.warnings, Warning{Code: code, Message: message})
}

// buildPeriods constructs one period per extracted group in report order,
// fills missing MAIN/FM end times from the next period in report order and
// sorts the result by start time.
func (tl *Timeline) buildPeriods(r *Report) error {
	periods := make([]Period, 0, len(r.Groups))
	for _, g := range r.Groups {
		p := Period{Kind: GroupMain, GroupFields: g.GroupFields, Raw: g.Raw}
		start := dayTime(r.Header.ValidFrom)

		if g.Header != nil {
			p.Kind = g.Header.Kind
			p.Probability = g.Header.Probability
			if g.Header.From != nil {
				start = g.Header.From
			}
			if g.Header.Till != nil {
				end, err := tl.resolve(g.Header.Till)
				if err != nil {
					return err
				}
				p.End = end
			}
		}

		var err error
		p.Start, err = tl.resolve(start)
		if err != nil {
			return err
		}
		periods = append(periods, p)
	}

	// MAIN and FM periods run until the next group begins; the last one
	// runs until the end of the validity window. Overlays carry both ends
	// themselves, or are left open with a warning.
	for i, p := range periods {
		if !p.End.IsZero() {
			continue
		}
		if p.Overlay() {
			tl.warn(WarnMissingEndTime, fmt.Sprintf("%s group %q has no end time", p.Kind, p.Raw))
			continue
		}
		if i+1 < len(periods) {
			periods[i].End = periods[i+1].Start
		} else {
			periods[i].End = tl.validTill
		}
	}

	sortPeriods(periods)
	tl.periods = periods
	return nil
}

func sortPeriods(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
}

// fillCoverageGaps walks consecutive coverage periods and synthesizes
// MAIN-EXT periods, cloned from the MAIN period's fields, wherever coverage
// is interrupted by more than the tolerance, including the stretch between
// the last coverage period and the end of the validity window.
func (tl *Timeline) fillCoverageGaps() {
	main, ok := tl.mainPeriod()
	if !ok {
		return
	}

	var coverage []Period
	for _, p := range tl.periods {
		if !p.Overlay() {
			coverage = append(coverage, p)
		}
	}

	var fillers []Period
	addFiller := func(start, end time.Time) {
		fillers = append(fillers, Period{
			Kind:        GroupMainExt,
			Start:       start,
			End:         end,
			GroupFields: main.GroupFields,
			Raw:         main.Raw,
		})
		tl.warn(WarnCoverageGap, fmt.Sprintf("coverage gap from %s to %s filled from the main group",
			start.Format("02 15:04"), end.Format("02 15:04")))
	}

	for i := 0; i+1 < len(coverage); i++ {
		if coverage[i+1].Start.Sub(coverage[i].End) > coverageGapTolerance {
			addFiller(coverage[i].End, coverage[i+1].Start)
		}
	}
	if last := coverage[len(coverage)-1]; tl.validTill.Sub(last.End) > coverageGapTolerance {
		addFiller(last.End, tl.validTill)
	}

	if len(fillers) > 0 {
		tl.periods = append(tl.periods, fillers...)
		sortPeriods(tl.periods)
	}
}

// mainPeriod returns the MAIN period. Exactly one exists in any timeline
// built from a parsed report.
func (tl *Timeline) mainPeriod() (Period, bool) {
	for _, p := range tl.periods {
		if p.Kind == GroupMain {
			return p, true
		}
	}
	return Period{}, false
}

// inheritFields fills each unset field slot of every overlay period from
// the nearest preceding period, in sorted order, that has the slot set.
// Fields the group specified are never overwritten.
func (tl *Timeline) inheritFields() {
	for i := range tl.periods {
		if !tl.periods[i].Overlay() {
			continue
		}
		for j := i - 1; j >= 0 && tl.periods[i].Wind == nil; j-- {
			tl.periods[i].Wind = tl.periods[j].Wind
		}
		for j := i - 1; j >= 0 && tl.periods[i].Visibility == nil; j-- {
			tl.periods[i].Visibility = tl.periods[j].Visibility
		}
		for j := i - 1; j >= 0 && len(tl.periods[i].Clouds) == 0; j-- {
			tl.periods[i].Clouds = tl.periods[j].Clouds
		}
		for j := i - 1; j >= 0 && tl.periods[i].VertVis == nil; j-- {
			tl.periods[i].VertVis = tl.periods[j].VertVis
		}
		for j := i - 1; j >= 0 && len(tl.periods[i].Weather) == 0; j-- {
			tl.periods[i].Weather = tl.periods[j].Weather
		}
		for j := i - 1; j >= 0 && tl.periods[i].WindShear == nil; j-- {
			tl.periods[i].WindShear = tl.periods[j].WindShear
		}
	}
}
