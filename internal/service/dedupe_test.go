package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/marquee/marquee-go/internal/model"
)

func creditDate(c model.CombinedCredit) string { return c.Date() }

func TestDeduplicateAndSortByPopularity(t *testing.T) {
	tests := []struct {
		name  string
		input []model.CombinedCredit
		want  []int
	}{
		{
			name: "first occurrence wins then popularity desc",
			input: []model.CombinedCredit{
				{ID: 1, Popularity: 5, ReleaseDate: "2020-01-01"},
				{ID: 2, Popularity: 9, ReleaseDate: "2019-01-01"},
				{ID: 1, Popularity: 100, ReleaseDate: "2021-01-01"},
				{ID: 3, Popularity: 5, ReleaseDate: "2022-01-01"},
			},
			want: []int{2, 3, 1},
		},
		{
			name: "missing date sorts after real dates",
			input: []model.CombinedCredit{
				{ID: 1, Popularity: 1},
				{ID: 2, Popularity: 1, FirstAirDate: "1950-06-01"},
				{ID: 3, Popularity: 1, ReleaseDate: "not-a-date"},
			},
			want: []int{2, 1, 3},
		},
		{
			name:  "empty",
			input: nil,
			want:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeduplicateAndSortByPopularity(tt.input, creditDate)
			ids := make([]int, len(got))
			for i, c := range got {
				ids[i] = c.ID
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got ids %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("got ids %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestDeduplicateKeepsFirstOccurrenceFields(t *testing.T) {
	got := DeduplicateAndSortByPopularity([]model.CombinedCredit{
		{ID: 7, Popularity: 3, Character: "Neo"},
		{ID: 7, Popularity: 3, Job: "Director"},
	}, creditDate)
	if len(got) != 1 || got[0].Character != "Neo" {
		t.Fatalf("got %+v, want the first occurrence only", got)
	}
}

func genCredit() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 20),
		gen.IntRange(0, 5),
		gen.OneConstOf("", "2001-01-01", "1999-12-31", "2024-05-05", "bogus"),
	).Map(func(v []interface{}) model.CombinedCredit {
		return model.CombinedCredit{
			ID:          v[0].(int),
			Popularity:  float64(v[1].(int)),
			ReleaseDate: v[2].(string),
		}
	})
}

func TestDeduplicateAndSortProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ids are unique", prop.ForAll(
		func(items []model.CombinedCredit) bool {
			seen := map[int]bool{}
			for _, c := range DeduplicateAndSortByPopularity(items, creditDate) {
				if seen[c.ID] {
					return false
				}
				seen[c.ID] = true
			}
			return true
		},
		gen.SliceOf(genCredit()),
	))

	properties.Property("every input id survives", prop.ForAll(
		func(items []model.CombinedCredit) bool {
			out := map[int]bool{}
			for _, c := range DeduplicateAndSortByPopularity(items, creditDate) {
				out[c.ID] = true
			}
			for _, c := range items {
				if !out[c.ID] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCredit()),
	))

	properties.Property("popularity is non-increasing", prop.ForAll(
		func(items []model.CombinedCredit) bool {
			out := DeduplicateAndSortByPopularity(items, creditDate)
			for i := 1; i < len(out); i++ {
				if out[i].Popularity > out[i-1].Popularity {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCredit()),
	))

	properties.Property("equal popularity is ordered newest first", prop.ForAll(
		func(items []model.CombinedCredit) bool {
			out := DeduplicateAndSortByPopularity(items, creditDate)
			for i := 1; i < len(out); i++ {
				if out[i].Popularity != out[i-1].Popularity {
					continue
				}
				prev, cur := normalizedDate(out[i-1].ReleaseDate), normalizedDate(out[i].ReleaseDate)
				if cur > prev {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCredit()),
	))

	properties.TestingRun(t)
}

// normalizedDate maps invalid dates to the 1900-01-01 sentinel so ISO strings
// compare correctly.
func normalizedDate(s string) string {
	switch s {
	case "2001-01-01", "1999-12-31", "2024-05-05":
		return s
	}
	return "1900-01-01"
}
