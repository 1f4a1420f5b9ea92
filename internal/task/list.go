package task

// Counts partitions the filtered set.
type Counts struct {
	All        int              `json:"all"`
	Completed  int              `json:"completed"`
	Incomplete int              `json:"incomplete"`
	ByCategory map[Category]int `json:"byCategory"`
	ByStatus   map[Status]int   `json:"byStatus"`
}

type ListView struct {
	Tasks  []*Task
	Counts Counts
}

type ListOptions struct {
	Filter    Filter
	SortBy    SortKey
	Ascending bool
}

// ProjectList filters, then sorts, then counts. Counts cover the filtered
// set, not the whole input.
func ProjectList(tasks []*Task, opts ListOptions) ListView {
	filtered := FilterTasks(tasks, opts.Filter)
	return ListView{
		Tasks:  SortTasks(filtered, opts.SortBy, opts.Ascending),
		Counts: CountTasks(filtered),
	}
}

func CountTasks(tasks []*Task) Counts {
	c := Counts{
		ByCategory: make(map[Category]int),
		ByStatus:   make(map[Status]int),
	}
	for _, t := range tasks {
		c.All++
		if t.Completed() {
			c.Completed++
		} else {
			c.Incomplete++
		}
		c.ByCategory[t.Category]++
		c.ByStatus[t.Status()]++
	}
	return c
}
