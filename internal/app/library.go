package app

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
)

// SentinelLabel marks records the classifier has not covered, either because
// they fall outside the analysis limit or because classification failed.
const SentinelLabel = "Unclassified"

type Game struct {
	AppID           int     `json:"appid"`
	Name            string  `json:"name"`
	PlaytimeMinutes int     `json:"playtime_minutes"`
	IconURL         string  `json:"icon_url,omitempty"`
	HoursPlayed     float64 `json:"hours_played"`

	Genre string `json:"genre"`
	Style string `json:"style"`
	Vibe  string `json:"vibe"`
}

// HoursFromMinutes converts total playtime to hours rounded to one decimal.
func HoursFromMinutes(minutes int) float64 {
	return math.Round(float64(minutes)/60.0*10) / 10
}

// SortByPlaytime orders games by playtime descending. The sort is stable so
// ties keep their source order; Steam defines no secondary key.
func SortByPlaytime(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].PlaytimeMinutes > games[j].PlaytimeMinutes
	})
}

type LibraryStats struct {
	TotalGames int
	TotalHours int
	MostPlayed string
}

// ComputeStats expects games already sorted by playtime descending.
func ComputeStats(games []Game) LibraryStats {
	stats := LibraryStats{TotalGames: len(games)}
	var hours float64
	for _, g := range games {
		hours += g.HoursPlayed
	}
	stats.TotalHours = int(hours)
	if len(games) > 0 {
		stats.MostPlayed = games[0].Name
	}
	return stats
}

type GenreShare struct {
	Genre string
	Count int
	Share float64
}

// othersShareThreshold groups genres below a 3% share into "Others" so the
// chart stays readable on long-tail libraries.
const othersShareThreshold = 0.03

// GenreDistribution aggregates classified games by genre. Sentinel and
// unknown labels are excluded; genres under the share threshold collapse
// into a trailing "Others" bucket.
func GenreDistribution(games []Game) []GenreShare {
	counts := make(map[string]int)
	total := 0
	for _, g := range games {
		genre := strings.TrimSpace(g.Genre)
		if genre == "" || genre == SentinelLabel || strings.EqualFold(genre, "unknown") {
			continue
		}
		counts[genre]++
		total++
	}
	if total == 0 {
		return nil
	}

	shares := make([]GenreShare, 0, len(counts))
	others := 0
	for genre, count := range counts {
		share := float64(count) / float64(total)
		if share < othersShareThreshold {
			others += count
			continue
		}
		shares = append(shares, GenreShare{Genre: genre, Count: count, Share: share})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Genre < shares[j].Genre
	})
	if others > 0 {
		shares = append(shares, GenreShare{
			Genre: "Others",
			Count: others,
			Share: float64(others) / float64(total),
		})
	}
	return shares
}

// summaryRows caps how much of the library is replayed into the chat prompt.
const summaryRows = 50

// LibrarySummary renders the top rows as an aligned text table used as
// grounding context for recommendations.
func LibrarySummary(games []Game) string {
	if len(games) == 0 {
		return "The library is empty."
	}
	limit := summaryRows
	if limit > len(games) {
		limit = len(games)
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Game\tHours\tGenre\tStyle\tVibe")
	for _, g := range games[:limit] {
		fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%s\n", g.Name, g.HoursPlayed, g.Genre, g.Style, g.Vibe)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// normalizeName is the merge key between classifier output and library
// records. Trimming plus case folding absorbs the whitespace and casing
// drift models introduce when echoing game titles back.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
