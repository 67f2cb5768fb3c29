package mro

import (
	"fmt"

	"nexus_dashboard/internal/models"
)

// Stats summarizes the whole fetched list, independent of any table filter.
type Stats struct {
	Total      int            `json:"total"`
	InProgress int            `json:"inProgress"`
	Completed  int            `json:"completed"`
	Pending    int            `json:"pending"`
	ByCategory map[string]int `json:"byCategory"`
	// Warning is set when the data looks like a bad import. The counts are
	// still valid.
	Warning string `json:"warning,omitempty"`
}

func ComputeStats(items []models.MROItem) Stats {
	s := Stats{
		Total:      len(items),
		ByCategory: make(map[string]int),
	}

	incomplete := 0
	for _, item := range items {
		progress, progressOK := models.ParseProgress(string(item.Progress))
		switch {
		case progress.Active():
			s.InProgress++
		case progress == models.ProgressClosed:
			s.Completed++
		case progress == models.ProgressPending:
			s.Pending++
		}

		bucket := string(item.Category)
		categoryOK := !models.IsPlaceholder(bucket)
		if !categoryOK {
			bucket = models.Uncategorized
		}
		s.ByCategory[bucket]++

		if !progressOK || !categoryOK {
			incomplete++
		}
	}

	if incomplete*2 > len(items) {
		s.Warning = fmt.Sprintf("data quality: %d of %d items are missing a progress or category value", incomplete, len(items))
	}
	return s
}
