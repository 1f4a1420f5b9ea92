package task

import "fmt"

type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "inProgress"
	ColumnCompleted  Column = "completed"
)

var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnCompleted}

// ParseColumn accepts column ids and status names alike ("active" is the
// todo column).
func ParseColumn(s string) (Column, error) {
	st, err := ParseStatus(s)
	if err != nil || st == StatusDeleted {
		return "", fmt.Errorf("unknown column %q", s)
	}
	return ColumnFor(st), nil
}

// ColumnFor maps a status to its board column.
func ColumnFor(s Status) Column {
	switch s {
	case StatusInProgress:
		return ColumnInProgress
	case StatusCompleted:
		return ColumnCompleted
	default:
		return ColumnTodo
	}
}

func (c Column) Status() Status {
	switch c {
	case ColumnInProgress:
		return StatusInProgress
	case ColumnCompleted:
		return StatusCompleted
	default:
		return StatusActive
	}
}

func (c Column) Label() string {
	return c.Status().Label()
}

type BoardColumn struct {
	Column Column
	Tasks  []*Task
}

type Board struct {
	Columns []BoardColumn
}

// ProjectBoard groups tasks into the three columns by exact status, keeping
// input order. Deleted tasks are left out.
func ProjectBoard(tasks []*Task) Board {
	b := Board{Columns: make([]BoardColumn, len(Columns))}
	index := make(map[Column]int, len(Columns))
	for i, c := range Columns {
		b.Columns[i] = BoardColumn{Column: c, Tasks: []*Task{}}
		index[c] = i
	}
	for _, t := range tasks {
		if t.IsDeleted() {
			continue
		}
		i := index[ColumnFor(t.Status())]
		b.Columns[i].Tasks = append(b.Columns[i].Tasks, t)
	}
	return b
}

func (b Board) Column(c Column) []*Task {
	for _, col := range b.Columns {
		if col.Column == c {
			return col.Tasks
		}
	}
	return nil
}

// Move is a drag-and-drop gesture on the board.
type Move struct {
	TaskID    string `json:"taskId"`
	From      Column `json:"from"`
	To        Column `json:"to"`
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
}

// Transition returns the status the dragged task must move to. Drops within
// the same column only reorder visually and report ok=false.
func (m Move) Transition() (Status, bool) {
	if m.From == m.To {
		return "", false
	}
	return m.To.Status(), true
}
