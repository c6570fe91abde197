package service

import (
	"slices"
	"time"
)

// Popular is an item with a stable id and a popularity score.
type Popular interface {
	RankID() int
	RankPopularity() float64
}

// missingDate orders undated items after every real release.
var missingDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// DeduplicateAndSortByPopularity keeps the first occurrence of every id and
// sorts the survivors by popularity, most popular first. Ties are broken by
// date, newest first; a missing or unparseable date counts as 1900-01-01.
// Remaining ties keep input order. date may be nil.
func DeduplicateAndSortByPopularity[T Popular](items []T, date func(T) string) []T {
	seen := make(map[int]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id := item.RankID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, item)
	}

	dates := make(map[int]time.Time, len(out))
	for _, item := range out {
		d := missingDate
		if date != nil {
			if t, err := time.Parse(time.DateOnly, date(item)); err == nil {
				d = t
			}
		}
		dates[item.RankID()] = d
	}

	slices.SortStableFunc(out, func(a, b T) int {
		pa, pb := a.RankPopularity(), b.RankPopularity()
		switch {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		}
		return dates[b.RankID()].Compare(dates[a.RankID()])
	})
	return out
}
