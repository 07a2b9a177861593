package taf

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightwx/tafcast/testdata"
)

// A reference time inside the corpus month keeps day/month inference stable.
var testNow = time.Date(2025, time.March, 25, 12, 0, 0, 0, time.UTC)

func buildFromRaw(t *testing.T, raw string) *Timeline {
	t.Helper()
	report, err := Parse(raw)
	require.NoError(t, err)
	tl, err := BuildTimeline(report, WithNow(testNow))
	require.NoError(t, err)
	return tl
}

func TestBuildTimeline_twoPeriodEnds(t *testing.T) {
	t.Parallel()

	tl := buildFromRaw(t, "TAF KXYZ 010600Z 0106/0212 21010KT P6SM SKC FM011200 22012KT P6SM BKN050")

	periods := tl.Periods()
	require.Len(t, periods, 2)

	assert.Equal(t, GroupMain, periods[0].Kind)
	assert.Equal(t, time.Date(2025, time.March, 1, 6, 0, 0, 0, time.UTC), periods[0].Start)
	assert.Equal(t, time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC), periods[0].End)

	assert.Equal(t, GroupFrom, periods[1].Kind)
	assert.Equal(t, time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC), periods[1].Start)
	assert.Equal(t, time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC), periods[1].End)

	assert.Empty(t, tl.Warnings())
}

func TestBuildTimeline_monthRollsForward(t *testing.T) {
	t.Parallel()

	// Issued on the 31st, valid into the 1st of the next month.
	tl := buildFromRaw(t, "TAF KXYZ 311800Z 3118/0124 21010KT P6SM SKC")

	assert.Equal(t, time.Date(2025, time.March, 31, 18, 0, 0, 0, time.UTC), tl.ValidFrom())
	assert.Equal(t, time.Date(2025, time.April, 1, 23, 59, 0, 0, time.UTC), tl.ValidTill())
}

func TestBuildTimeline_hour24IsEndOfDay(t *testing.T) {
	t.Parallel()

	tl := buildFromRaw(t, "TAF KJFK 251730Z 2518/2624 24012KT P6SM FEW250")
	assert.Equal(t, time.Date(2025, time.March, 26, 23, 59, 0, 0, time.UTC), tl.ValidTill())
}

func TestBuildTimeline_day31Normalized(t *testing.T) {
	t.Parallel()

	report, err := Parse("TAF KXYZ 301800Z 3018/3118 21010KT P6SM SKC")
	require.NoError(t, err)

	// April has 30 days, so day 31 must normalize to May 1st.
	april := time.Date(2025, time.April, 30, 12, 0, 0, 0, time.UTC)
	tl, err := BuildTimeline(report, WithNow(april))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.May, 1, 18, 0, 0, 0, time.UTC), tl.ValidTill())

	require.NotEmpty(t, tl.Warnings())
	assert.Equal(t, WarnDayNormalized, tl.Warnings()[0].Code)
}

func TestBuildTimeline_nonexistentDayIsFatal(t *testing.T) {
	t.Parallel()

	feb := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"day 31 in february", "TAF KXYZ 280000Z 2800/3118 21010KT P6SM SKC"},
		{"day 30 in february", "TAF KXYZ 280000Z 2800/3018 21010KT P6SM SKC"},
		{"origin day 30 in february", "TAF KXYZ 300000Z 0100/0218 21010KT P6SM SKC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := Parse(tt.raw)
			require.NoError(t, err)

			tl, err := BuildTimeline(report, WithNow(feb))
			assert.ErrorIs(t, err, ErrTimelineResolution)
			assert.Nil(t, tl)
		})
	}
}

func TestBuildTimeline_invalidDay(t *testing.T) {
	t.Parallel()

	report, err := Parse("TAF KXYZ 010600Z 0106/0212 21010KT P6SM SKC")
	require.NoError(t, err)
	report.Header.ValidTill.Day = 32

	_, err = BuildTimeline(report, WithNow(testNow))
	assert.ErrorIs(t, err, ErrTimelineResolution)
}

func TestBuildTimeline_missingOriginUsesNow(t *testing.T) {
	t.Parallel()

	tl := buildFromRaw(t, "TAF KJFK 2518/2624 24012KT P6SM FEW250")
	assert.Equal(t, testNow, tl.Issued())
	assert.Equal(t, time.Date(2025, time.March, 25, 18, 0, 0, 0, time.UTC), tl.ValidFrom())
}

func TestBuildTimeline_coverageInvariant(t *testing.T) {
	t.Parallel()

	for _, line := range testdata.Reports(t) {
		report, err := Parse(line)
		require.NoError(t, err, line)
		tl, err := BuildTimeline(report, WithNow(testNow))
		require.NoError(t, err, line)

		// Every coverage period must abut the next one.
		var prev *Period
		for i := range tl.Periods() {
			p := tl.Periods()[i]
			if p.Overlay() {
				continue
			}
			if prev != nil {
				assert.Equal(t, prev.End, p.Start, line)
			}
			prev = &tl.Periods()[i]
		}
		require.NotNil(t, prev, line)
		assert.Equal(t, tl.ValidTill(), prev.End, line)
	}
}

func TestBuildTimeline_gapFilledFromMain(t *testing.T) {
	t.Parallel()

	raw := "TAF KIAH 301720Z 3018/3124 20010KT P6SM VCTS SCT040CB BKN200 " +
		"FM310000 22008KT P6SM SCT040 " +
		"FM310900 23006KT P6SM FEW250 " +
		"TEMPO 3111/3114 4SM BR " +
		"FM311600 24012KT P6SM SCT050"
	tl := buildFromRaw(t, raw)

	// FM310900 ends where the TEMPO starts in report order, leaving
	// 11:00-16:00 uncovered. The filler clones the main group's fields.
	var filler *Period
	for i := range tl.Periods() {
		if tl.Periods()[i].Kind == GroupMainExt {
			filler = &tl.Periods()[i]
			break
		}
	}
	require.NotNil(t, filler)
	assert.Equal(t, time.Date(2025, time.March, 31, 11, 0, 0, 0, time.UTC), filler.Start)
	assert.Equal(t, time.Date(2025, time.March, 31, 16, 0, 0, 0, time.UTC), filler.End)

	require.NotNil(t, filler.Wind)
	assert.Equal(t, 200, filler.Wind.Direction)
	require.NotEmpty(t, filler.Weather)
	assert.Equal(t, "VCTS", filler.Weather[0].Raw)

	codes := make([]string, 0, len(tl.Warnings()))
	for _, w := range tl.Warnings() {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnCoverageGap)
}

func TestBuildTimeline_overlayInherits(t *testing.T) {
	t.Parallel()

	raw := "TAF EGLL 251658Z 2518/2624 23010KT 9999 SCT030 " +
		"TEMPO 2600/2609 4000 RA"
	tl := buildFromRaw(t, raw)

	var tempo *Period
	for i := range tl.Periods() {
		if tl.Periods()[i].Kind == GroupTempo {
			tempo = &tl.Periods()[i]
			break
		}
	}
	require.NotNil(t, tempo)

	// Specified fields stay; unset ones come from the preceding period.
	require.NotNil(t, tempo.Visibility)
	assert.Equal(t, float64(4000), tempo.Visibility.Distance)
	require.NotNil(t, tempo.Wind)
	assert.Equal(t, 230, tempo.Wind.Direction)
	require.NotEmpty(t, tempo.Clouds)
	assert.Equal(t, CoverageScattered, tempo.Clouds[0].Coverage)
}

func TestBuildTimeline_overlayMissingEndWarns(t *testing.T) {
	t.Parallel()

	tl := buildFromRaw(t, "TAF EGLL 251658Z 2518/2624 23010KT 9999 SCT030 BECMG 25012KT")

	var becmg *Period
	for i := range tl.Periods() {
		if tl.Periods()[i].Kind == GroupBecoming {
			becmg = &tl.Periods()[i]
			break
		}
	}
	require.NotNil(t, becmg)
	assert.True(t, becmg.End.IsZero())

	require.NotEmpty(t, tl.Warnings())
	assert.Equal(t, WarnMissingEndTime, tl.Warnings()[0].Code)
}

func TestPeriodAt(t *testing.T) {
	t.Parallel()

	raw := "TAF KIAH 301720Z 3018/3124 20010KT P6SM SCT040 " +
		"FM310000 22008KT P6SM SCT040 " +
		"FM310900 23006KT P6SM FEW250 " +
		"TEMPO 3111/3114 4SM BR " +
		"FM311600 24012KT P6SM SCT050"
	tl := buildFromRaw(t, raw)

	noon := time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)

	base, ok := tl.PeriodAt(noon)
	require.True(t, ok)
	assert.Equal(t, GroupMainExt, base.Kind)

	overlay, ok := tl.PeriodAtAll(noon)
	require.True(t, ok)
	assert.Equal(t, GroupTempo, overlay.Kind)

	_, ok = tl.PeriodAt(time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestPeriod_coversHalfOpen(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 25, 18, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	p := Period{Start: start, End: end}

	assert.True(t, p.Covers(start))
	assert.True(t, p.Covers(end.Add(-time.Second)))
	assert.False(t, p.Covers(end))
	assert.False(t, p.Covers(start.Add(-time.Second)))
}

func TestBuildTimeline_packageClock(t *testing.T) {
	frozen := time.Date(2025, time.July, 25, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	report, err := Parse("TAF KJFK 2518/2624 24012KT P6SM FEW250")
	require.NoError(t, err)
	tl, err := BuildTimeline(report)
	require.NoError(t, err)

	assert.Equal(t, frozen, tl.Issued())
	assert.Equal(t, time.Date(2025, time.July, 25, 18, 0, 0, 0, time.UTC), tl.ValidFrom())
}

func TestBuildTimeline_deterministic(t *testing.T) {
	t.Parallel()

	raw := "TAF KJFK 251730Z 2518/2624 24012G22KT P6SM FEW250 FM260000 23008KT P6SM SCT200"
	a := buildFromRaw(t, raw)
	b := buildFromRaw(t, raw)
	assert.Equal(t, a.Periods(), b.Periods())
	assert.Equal(t, a.Warnings(), b.Warnings())
}
