// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
)

// Issue is one enriched tracker item (a plain issue or a pull request).
// It is the core domain entity of this application.
//
// ApprovedBy is non-empty exactly when Approved is true. Merged is always
// false for items that are not pull requests.
type Issue struct {
	Repo       string    `json:"repo"`
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Creator    string    `json:"creator"`
	CreatedAt  time.Time `json:"created_at"`
	Approved   bool      `json:"approved"`
	ApprovedBy string    `json:"approved_by,omitempty"`
	Merged     bool      `json:"merged"`
}

// Summary holds the aggregate counts shown above the dashboard table.
type Summary struct {
	Total       int     `json:"total"`
	Merged      int     `json:"merged"`
	Unmerged    int     `json:"unmerged"`
	Approved    int     `json:"approved"`
	MeanAgeDays float64 `json:"mean_age_days"`
	MedianAge   float64 `json:"median_age_days"`
}

// Summarize computes aggregate counts and age statistics for a list of issues.
// Ages are measured from CreatedAt to now, in days; items without a creation
// timestamp are excluded from the age statistics.
func Summarize(issues []Issue, now time.Time) Summary {
	s := Summary{Total: len(issues)}
	ages := make([]float64, 0, len(issues))
	for _, is := range issues {
		if is.Merged {
			s.Merged++
		} else {
			s.Unmerged++
		}
		if is.Approved {
			s.Approved++
		}
		if !is.CreatedAt.IsZero() {
			ages = append(ages, now.Sub(is.CreatedAt).Hours()/24)
		}
	}
	if len(ages) > 0 {
		// stats returns an error only for empty input, which is excluded above.
		s.MeanAgeDays, _ = stats.Mean(ages)
		s.MedianAge, _ = stats.Median(ages)
	}
	return s
}

// SortFields lists the column names SortIssues accepts, in display order.
var SortFields = []string{"repo", "number", "title", "creator", "created", "approved", "merged"}

// SortIssues returns a sorted copy of issues ordered by the named field.
// The input slice is never modified. The sort is stable, so equal keys keep
// their fetch order. An unrecognized field sorts by number.
func SortIssues(issues []Issue, field string, descending bool) []Issue {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)

	less := lessFunc(field)
	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func lessFunc(field string) func(a, b Issue) bool {
	switch field {
	case "repo":
		return func(a, b Issue) bool { return a.Repo < b.Repo }
	case "title":
		return func(a, b Issue) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "creator":
		return func(a, b Issue) bool { return a.Creator < b.Creator }
	case "created":
		return func(a, b Issue) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "approved":
		return func(a, b Issue) bool { return !a.Approved && b.Approved }
	case "merged":
		return func(a, b Issue) bool { return !a.Merged && b.Merged }
	default:
		return func(a, b Issue) bool { return a.Number < b.Number }
	}
}
