package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flightwx/tafcast/fetch"
	"github.com/flightwx/tafcast/internal/config"
	"github.com/flightwx/tafcast/render"
	"github.com/flightwx/tafcast/taf"
)

var (
	noRawFlag    bool
	noDecodeFlag bool
	noColorFlag  bool
	jsonFlag     bool
	atFlag       string
)

var rootCmd = &cobra.Command{
	Use:   "tafcast [station]",
	Short: "Fetch and decode Terminal Aerodrome Forecasts",
	Long: `tafcast fetches the latest TAF for an ICAO station from the Aviation
Weather Center and decodes it into plain English. A raw report can also be
piped in on stdin instead of fetching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVar(&noRawFlag, "no-raw", false, "Hide the raw report")
	rootCmd.Flags().BoolVar(&noDecodeFlag, "no-decode", false, "Show only the raw report without decoding")
	rootCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable color output")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the decoded timeline as JSON")
	rootCmd.Flags().StringVar(&atFlag, "at", "", "Show the forecast period in effect at an RFC 3339 time")
}

func run(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfgPath, err := config.Path()
	if err != nil {
		logger.Warn("could not locate config", "error", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("could not read config", "error", err)
	}

	if noColorFlag || cfg.NoColor {
		color.NoColor = true
	}
	noRaw := noRawFlag || cfg.NoRaw

	// A report piped in on stdin takes priority over fetching.
	raw, stdinHasData := readFromStdin()
	if !stdinHasData {
		stationCode := cfg.Station
		if len(args) > 0 {
			stationCode = args[0]
		}
		if stationCode == "" {
			stationCode, err = promptForStationCode()
			if err != nil {
				return err
			}
		}
		stationCode, err = normalizeStationCode(stationCode)
		if err != nil {
			return err
		}

		raw, err = fetch.TAF(stationCode)
		if err != nil {
			return err
		}
	}

	if !noRaw || noDecodeFlag {
		fmt.Println(raw)
	}
	if noDecodeFlag {
		return nil
	}

	report, err := taf.Parse(raw)
	if err != nil {
		return err
	}
	timeline, err := taf.BuildTimeline(report)
	if err != nil {
		return err
	}
	for _, w := range timeline.Warnings() {
		logger.Warn("decode note", "code", w.Code, "message", w.Message)
	}

	if !stdinHasData {
		if site, err := fetch.Site(report.Header.Station); err == nil && site.Name != report.Header.Station {
			location := site.Name
			if site.State != "" {
				location += ", " + site.State
			}
			if site.Country != "" {
				location += ", " + site.Country
			}
			fmt.Println(location)
		}
	}

	if jsonFlag {
		return printJSON(timeline)
	}

	if atFlag != "" {
		at, err := time.Parse(time.RFC3339, atFlag)
		if err != nil {
			return fmt.Errorf("invalid --at time: %w", err)
		}
		return printAt(timeline, at)
	}

	fmt.Print(render.Timeline(timeline))
	return nil
}

// printAt shows the coverage period and any overlay in effect at the given
// instant.
func printAt(tl *taf.Timeline, at time.Time) error {
	base, ok := tl.PeriodAt(at.UTC())
	if !ok {
		return fmt.Errorf("no forecast period covers %s", at.Format(time.RFC3339))
	}
	fmt.Print(render.Period(base))

	if overlay, ok := tl.PeriodAtAll(at.UTC()); ok && overlay.Overlay() {
		fmt.Print(render.Period(overlay))
	}
	return nil
}

func printJSON(tl *taf.Timeline) error {
	type periodJSON struct {
		Kind        string          `json:"kind"`
		Probability int             `json:"probability,omitempty"`
		Start       time.Time       `json:"start"`
		End         *time.Time      `json:"end,omitempty"`
		Fields      taf.GroupFields `json:"fields"`
		Raw         string          `json:"raw"`
	}
	type timelineJSON struct {
		Station     string        `json:"station"`
		Issued      time.Time     `json:"issued"`
		ValidFrom   time.Time     `json:"valid_from"`
		ValidTill   time.Time     `json:"valid_till"`
		Maintenance bool          `json:"maintenance,omitempty"`
		Periods     []periodJSON  `json:"periods"`
		Warnings    []taf.Warning `json:"warnings,omitempty"`
	}

	out := timelineJSON{
		Station:     tl.Header().Station,
		Issued:      tl.Issued(),
		ValidFrom:   tl.ValidFrom(),
		ValidTill:   tl.ValidTill(),
		Maintenance: tl.Maintenance(),
		Warnings:    tl.Warnings(),
	}
	for _, p := range tl.Periods() {
		pj := periodJSON{
			Kind:        string(p.Kind),
			Probability: p.Probability,
			Start:       p.Start,
			Fields:      p.GroupFields,
			Raw:         p.Raw,
		}
		if !p.End.IsZero() {
			end := p.End
			pj.End = &end
		}
		out.Periods = append(out.Periods, pj)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// readFromStdin reads a raw report from stdin if data is piped in.
func readFromStdin() (string, bool) {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "", false
	}

	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	raw := strings.TrimSpace(strings.Join(lines, " "))
	if raw == "" {
		return "", false
	}
	return raw, true
}

// promptForStationCode prompts the user for a station code
func promptForStationCode() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter ICAO airport code (e.g., KJFK, EGLL): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return input, nil
}

func normalizeStationCode(input string) (string, error) {
	stationCode := strings.ToUpper(strings.TrimSpace(input))
	if len(stationCode) != 4 {
		return "", fmt.Errorf("invalid station code: must be 4 characters")
	}
	return stationCode, nil
}
