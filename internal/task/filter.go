package task

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

type StatusFilter string

const (
	StatusFilterAll        StatusFilter = "all"
	StatusFilterCompleted  StatusFilter = "completed"
	StatusFilterIncomplete StatusFilter = "incomplete"
)

// Filter selects tasks. Every field is optional; empty and "all" match
// anything. Conditions are combined with AND.
type Filter struct {
	SearchQuery string       `json:"searchQuery,omitempty"`
	Category    string       `json:"category,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Status      StatusFilter `json:"status,omitempty"`
}

func isWildcard(s string) bool {
	return s == "" || s == "all"
}

func (f Filter) Match(t *Task) bool {
	if t.IsDeleted() {
		return false
	}
	// The query is matched as typed, surrounding spaces included.
	if q := strings.ToLower(f.SearchQuery); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if !isWildcard(f.Category) && string(t.Category) != f.Category {
		return false
	}
	if !isWildcard(f.Priority) && string(t.Priority) != f.Priority {
		return false
	}
	switch f.Status {
	case StatusFilterCompleted:
		return t.Completed()
	case StatusFilterIncomplete:
		return !t.Completed()
	}
	return true
}

// FilterTasks returns the matching tasks in input order. Soft-deleted tasks
// never match. The input slice is not modified.
func FilterTasks(tasks []*Task, f Filter) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func HasActiveFilters(f Filter) bool {
	return f.SearchQuery != "" ||
		!isWildcard(f.Category) ||
		!isWildcard(f.Priority) ||
		!isWildcard(string(f.Status))
}

// Describe renders the active conditions, e.g. `"report" in work, high priority, incomplete`.
func (f Filter) Describe() string {
	var parts []string
	if q := f.SearchQuery; q != "" {
		parts = append(parts, fmt.Sprintf("%q", q))
	}
	if !isWildcard(f.Category) {
		parts = append(parts, "in "+f.Category)
	}
	if !isWildcard(f.Priority) {
		parts = append(parts, f.Priority+" priority")
	}
	if !isWildcard(string(f.Status)) {
		parts = append(parts, string(f.Status))
	}
	if len(parts) == 0 {
		return "all tasks"
	}
	return strings.Join(parts, ", ")
}

type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
	SortByCreatedAt SortKey = "createdAt"
	SortByTitle     SortKey = "title"
)

// compareMissing orders present values before missing ones; a missing value
// is greater than anything.
func compareMissing(aMissing, bMissing bool) (int, bool) {
	switch {
	case aMissing && bMissing:
		return 0, true
	case aMissing:
		return 1, true
	case bMissing:
		return -1, true
	}
	return 0, false
}

func compareBy(key SortKey) func(a, b *Task) int {
	switch key {
	case SortByDueDate:
		return func(a, b *Task) int {
			if c, done := compareMissing(a.DueDate == nil, b.DueDate == nil); done {
				return c
			}
			return a.DueDate.Compare(*b.DueDate)
		}
	case SortByPriority:
		return func(a, b *Task) int {
			ra, rb := a.Priority.Rank(), b.Priority.Rank()
			if c, done := compareMissing(ra == 0, rb == 0); done {
				return c
			}
			return cmp.Compare(ra, rb)
		}
	case SortByCreatedAt:
		return func(a, b *Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	case SortByTitle:
		return func(a, b *Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		return nil
	}
}

// SortTasks returns a stably sorted copy. Descending order negates every
// comparison, so missing values come last ascending and first descending.
// An unknown key keeps the input order.
func SortTasks(tasks []*Task, by SortKey, ascending bool) []*Task {
	out := slices.Clone(tasks)
	compare := compareBy(by)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b *Task) int {
		if ascending {
			return compare(a, b)
		}
		return -compare(a, b)
	})
	return out
}

type DueStatus string

const (
	DueOverdue  DueStatus = "overdue"
	DueUpcoming DueStatus = "upcoming"
	DueNone     DueStatus = "none"
)

// DueDateStatus is overdue when the due date falls before today.
func DueDateStatus(t *Task, now time.Time) DueStatus {
	if t.DueDate == nil {
		return DueNone
	}
	if t.DueDate.Before(StartOfDay(now)) {
		return DueOverdue
	}
	return DueUpcoming
}

// FormatDueDate renders "Today", "Tomorrow" or a short date.
func FormatDueDate(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	today := StartOfDay(now)
	day := StartOfDay(due.In(now.Location()))
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return due.Format("Jan 2, 2006")
	}
}

// GroupByCategory buckets tasks by category, keeping input order per bucket.
func GroupByCategory(tasks []*Task) map[Category][]*Task {
	grouped := make(map[Category][]*Task)
	for _, t := range tasks {
		grouped[t.Category] = append(grouped[t.Category], t)
	}
	return grouped
}
