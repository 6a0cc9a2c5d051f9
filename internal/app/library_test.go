package app

import (
	"strings"
	"testing"
)

func TestHoursFromMinutes_RoundsToOneDecimal(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    float64
	}{
		{name: "125 minutes", minutes: 125, want: 2.1},
		{name: "zero", minutes: 0, want: 0.0},
		{name: "exact hour", minutes: 60, want: 1.0},
		{name: "ninety minutes", minutes: 90, want: 1.5},
		{name: "one minute", minutes: 1, want: 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HoursFromMinutes(tc.minutes)
			if got != tc.want {
				t.Fatalf("HoursFromMinutes(%d) = %v, want %v", tc.minutes, got, tc.want)
			}
		})
	}
}

func TestSortByPlaytime_DescendingAndStable(t *testing.T) {
	games := []Game{
		{Name: "b", PlaytimeMinutes: 100},
		{Name: "a", PlaytimeMinutes: 500},
		{Name: "tie-first", PlaytimeMinutes: 200},
		{Name: "tie-second", PlaytimeMinutes: 200},
	}
	SortByPlaytime(games)

	for i := 1; i < len(games); i++ {
		if games[i-1].PlaytimeMinutes < games[i].PlaytimeMinutes {
			t.Fatalf("not descending at %d: %v", i, games)
		}
	}
	if games[1].Name != "tie-first" || games[2].Name != "tie-second" {
		t.Fatalf("tie broke source order: %v, %v", games[1].Name, games[2].Name)
	}
}

func TestComputeStats(t *testing.T) {
	games := []Game{
		{Name: "Factorio", HoursPlayed: 500.5},
		{Name: "Hades", HoursPlayed: 99.9},
	}
	stats := ComputeStats(games)
	if stats.TotalGames != 2 {
		t.Fatalf("TotalGames = %d, want 2", stats.TotalGames)
	}
	if stats.TotalHours != 600 {
		t.Fatalf("TotalHours = %d, want 600", stats.TotalHours)
	}
	if stats.MostPlayed != "Factorio" {
		t.Fatalf("MostPlayed = %q, want Factorio", stats.MostPlayed)
	}
}

func TestComputeStats_EmptyLibrary(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.TotalGames != 0 || stats.TotalHours != 0 || stats.MostPlayed != "" {
		t.Fatalf("unexpected stats for empty library: %+v", stats)
	}
}

func TestGenreDistribution_FiltersSentinelAndGroupsSmallShares(t *testing.T) {
	var games []Game
	for i := 0; i < 60; i++ {
		games = append(games, Game{Genre: "RPG"})
	}
	for i := 0; i < 38; i++ {
		games = append(games, Game{Genre: "Strategy"})
	}
	// Two singletons at 1% each fall under the 3% threshold.
	games = append(games, Game{Genre: "Puzzle"}, Game{Genre: "Racing"})
	// Sentinel and unknown labels never count.
	games = append(games, Game{Genre: SentinelLabel}, Game{Genre: "Unknown"}, Game{Genre: ""})

	shares := GenreDistribution(games)
	if len(shares) != 3 {
		t.Fatalf("expected RPG, Strategy, Others; got %+v", shares)
	}
	if shares[0].Genre != "RPG" || shares[0].Count != 60 {
		t.Fatalf("top share = %+v, want RPG x60", shares[0])
	}
	if shares[1].Genre != "Strategy" || shares[1].Count != 38 {
		t.Fatalf("second share = %+v, want Strategy x38", shares[1])
	}
	last := shares[len(shares)-1]
	if last.Genre != "Others" || last.Count != 2 {
		t.Fatalf("expected trailing Others bucket with 2 games, got %+v", last)
	}
}

func TestGenreDistribution_AllSentinel(t *testing.T) {
	games := []Game{{Genre: SentinelLabel}, {Genre: SentinelLabel}}
	if shares := GenreDistribution(games); shares != nil {
		t.Fatalf("expected nil distribution, got %+v", shares)
	}
}

func TestLibrarySummary_RendersTopRows(t *testing.T) {
	games := []Game{
		{Name: "Celeste", HoursPlayed: 12.5, Genre: "Platformer", Style: "Singleplayer", Vibe: "Intense"},
	}
	out := LibrarySummary(games)
	if !strings.Contains(out, "Celeste") {
		t.Fatalf("summary missing game name: %q", out)
	}
	if !strings.Contains(out, "12.5") {
		t.Fatalf("summary missing hours: %q", out)
	}
	if !strings.Contains(out, "Genre") {
		t.Fatalf("summary missing header: %q", out)
	}
}

func TestLibrarySummary_Empty(t *testing.T) {
	if out := LibrarySummary(nil); out != "The library is empty." {
		t.Fatalf("unexpected empty summary: %q", out)
	}
}

func TestNormalizeName(t *testing.T) {
	if normalizeName("  Half-Life   2 ") != normalizeName("half-life 2") {
		t.Fatalf("normalization should absorb whitespace and casing drift")
	}
}
