package main

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"connectrpc.com/connect"
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

var labelPalette = []color.Attribute{
	color.FgHiRed,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiBlue,
	color.FgHiMagenta,
	color.FgHiCyan,
	color.FgBlue,
	color.FgMagenta,
}

// labelColor gives each label the same color on every run.
func labelColor(label string) *color.Color {
	h := fnv.New32a()
	h.Write([]byte(label))
	return color.New(labelPalette[h.Sum32()%uint32(len(labelPalette))])
}

func labels(ls []string) string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = labelColor(l).Sprint(l)
	}
	return strings.Join(out, " ")
}

var (
	heading = color.New(color.Bold, color.FgCyan)
	faint   = color.New(color.Faint)
	title   = cases.Title(language.English)
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func priorityColor(p task.Priority) *color.Color {
	switch p {
	case task.PriorityHigh:
		return color.New(color.FgRed)
	case task.PriorityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// dueColumn colors every cell so escape sequences keep the same width.
func dueColumn(t *task.Task, now time.Time) string {
	due := task.FormatDueDate(t.DueDate, now)
	if due == "" {
		due = "-"
	}
	if task.DueDateStatus(t, now) == task.DueOverdue {
		return color.New(color.FgRed).Sprint(due)
	}
	return color.New(color.FgWhite).Sprint(due)
}

func printTasks(w io.Writer, tasks []*task.Task, now time.Time) error {
	tw := newTable(w)
	fmt.Fprintln(tw, heading.Sprint("ID\tTITLE\tSTATUS\tCATEGORY\tPRIORITY\tDUE\tLABELS"))
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Title,
			t.Status().Label(),
			title.String(string(t.Category)),
			priorityColor(t.Priority).Sprint(title.String(string(t.Priority))),
			dueColumn(t, now),
			labels(t.Labels),
		)
	}
	return tw.Flush()
}

// printError prints the message and any field violations.
func printError(err error) {
	code := cerr.CodeOf(err)
	msg := err.Error()
	var ce *connect.Error
	if errors.As(err, &ce) {
		msg = ce.Message()
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("error (%s):", code), msg)
	for _, v := range cerr.Violations(err) {
		fmt.Fprintf(os.Stderr, "  - %s %s\n", faint.Sprintf("[%s]", v.RuleID), v.Message)
	}
}
