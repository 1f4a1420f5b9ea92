package overview

import (
	"cmp"
	"slices"
	"time"

	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/internal/team"
)

const recentLimit = 5

type ActivityKind string

const (
	ActivityTask ActivityKind = "task"
	ActivityTeam ActivityKind = "team"
)

type Activity struct {
	Kind  ActivityKind `json:"kind"`
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Date  time.Time    `json:"date"`
}

type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Active     int `json:"active"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
	Teams      int `json:"teams"`
	// CompletionRate is a percentage in [0, 100].
	CompletionRate float64 `json:"completionRate"`
}

type Overview struct {
	Stats  Stats      `json:"stats"`
	Recent []Activity `json:"recent"`
}

// Compute summarizes tasks and teams. Deleted tasks are ignored. Overdue
// counts unfinished tasks whose due date is before today.
func Compute(tasks []*task.Task, teams []*team.Team, now time.Time) Overview {
	var o Overview
	var live []*task.Task
	for _, t := range tasks {
		if t.IsDeleted() {
			continue
		}
		live = append(live, t)
		o.Stats.Total++
		switch t.Status() {
		case task.StatusCompleted:
			o.Stats.Completed++
		case task.StatusInProgress:
			o.Stats.InProgress++
		default:
			o.Stats.Active++
		}
		if !t.Completed() && task.DueDateStatus(t, now) == task.DueOverdue {
			o.Stats.Overdue++
		}
	}
	o.Stats.Teams = len(teams)
	if o.Stats.Total > 0 {
		o.Stats.CompletionRate = float64(o.Stats.Completed) / float64(o.Stats.Total) * 100
	}

	activities := make([]Activity, 0, len(live)+len(teams))
	for _, t := range live {
		activities = append(activities, Activity{Kind: ActivityTask, ID: t.ID, Title: t.Title, Date: t.CreatedAt})
	}
	for _, tm := range teams {
		activities = append(activities, Activity{Kind: ActivityTeam, ID: tm.ID, Title: tm.Name, Date: tm.CreatedAt})
	}
	slices.SortStableFunc(activities, func(a, b Activity) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	o.Recent = activities[:min(recentLimit, len(activities))]
	return o
}
