// Package fetch retrieves raw TAF reports and station metadata from the
// Aviation Weather Center API.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
}

var (
	siteRegex    = regexp.MustCompile(`Site:\s+(.+)`)
	stateRegex   = regexp.MustCompile(`State:\s+(.+)`)
	countryRegex = regexp.MustCompile(`Country:\s+(.+)`)
)

// SiteInfo holds station metadata returned by the station info endpoint.
type SiteInfo struct {
	Name    string
	State   string
	Country string
}

// fetchData fetches data from a URL for a given station code
func fetchData(urlTemplate string, stationCode string, dataType string) (string, error) {
	url := fmt.Sprintf(urlTemplate, stationCode)

	resp, err := httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("error fetching %s: %w", dataType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	data := strings.TrimSpace(string(body))
	if data == "" {
		return "", fmt.Errorf("no %s data found for station %s", dataType, stationCode)
	}

	return data, nil
}

// TAF fetches the raw TAF for a given station code.
func TAF(stationCode string) (string, error) {
	return fetchData("https://aviationweather.gov/api/data/taf?ids=%s", stationCode, "TAF")
}

// Site fetches station metadata from the Aviation Weather API. On error it
// returns a SiteInfo that falls back to the station code as the name, so
// callers can keep rendering.
func Site(stationCode string) (SiteInfo, error) {
	defaultSiteInfo := SiteInfo{Name: stationCode}

	url := fmt.Sprintf("https://aviationweather.gov/api/data/stationinfo?ids=%s", stationCode)

	resp, err := httpClient.Get(url)
	if err != nil {
		return defaultSiteInfo, fmt.Errorf("error fetching site data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return defaultSiteInfo, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return defaultSiteInfo, fmt.Errorf("error reading response: %w", err)
	}

	text := string(body)

	var siteName, state, country string
	if m := siteRegex.FindStringSubmatch(text); len(m) > 1 {
		siteName = strings.TrimSpace(m[1])
	}
	if m := stateRegex.FindStringSubmatch(text); len(m) > 1 {
		state = strings.TrimSpace(m[1])
	}
	if m := countryRegex.FindStringSubmatch(text); len(m) > 1 {
		country = strings.TrimSpace(m[1])
	}

	if siteName == "" {
		return defaultSiteInfo, fmt.Errorf("could not extract site name from response")
	}

	return SiteInfo{
		Name:    siteName,
		State:   state,
		Country: country,
	}, nil
}
