package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/team"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

func testTeam() *team.Team {
	return &team.Team{
		ID:   "team1",
		Name: "Platform",
		Members: []team.Member{
			{ID: "alice", Role: team.RoleAdmin},
			{ID: "bob", Role: team.RoleMember},
			{ID: "carol", Role: team.RoleAdmin},
		},
		Settings: team.DefaultSettings(),
	}
}

func TestAuthorize(t *testing.T) {
	personal := &Task{ID: "t1", UserID: "bob"}
	shared := &Task{ID: "t2", UserID: "bob", TeamID: "team1", AssignedTo: []string{"dave"}}
	tm := testTeam()

	tests := []struct {
		name   string
		task   *Task
		team   *team.Team
		user   string
		action Action
		code   cerr.Code
	}{
		{name: "owner deletes personal", task: personal, user: "bob", action: ActionDelete},
		{name: "stranger views personal", task: personal, user: "alice", action: ActionView, code: cerr.PermissionDenied},
		{name: "member edits team task", task: shared, team: tm, user: "carol", action: ActionEdit},
		{name: "admin deletes team task", task: shared, team: tm, user: "alice", action: ActionDelete},
		{name: "non-admin member cannot delete", task: &Task{ID: "t3", UserID: "alice", TeamID: "team1"}, team: tm, user: "bob", action: ActionDelete, code: cerr.PermissionDenied},
		{name: "assignee outside team may view", task: shared, team: tm, user: "dave", action: ActionView},
		{name: "assignee outside team may not edit", task: shared, team: tm, user: "dave", action: ActionEdit, code: cerr.PermissionDenied},
		{name: "team task without loaded team", task: shared, user: "carol", action: ActionEdit, code: cerr.PermissionDenied},
		{name: "anonymous", task: personal, action: ActionView, code: cerr.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sess *session.Session
			if tt.user != "" {
				sess = &session.Session{UserID: tt.user}
			}
			err := Authorize(tt.task, tt.team, sess, tt.action)
			assert.Equal(t, tt.code, cerr.CodeOf(err))
		})
	}
}

func TestValidateAssignment(t *testing.T) {
	tm := testTeam()
	admin := &session.Session{UserID: "alice"}
	member := &session.Session{UserID: "bob"}

	assert.NoError(t, ValidateAssignment(nil, nil, nil, member))
	assert.NoError(t, ValidateAssignment([]string{"bob", "carol"}, nil, tm, member))

	err := ValidateAssignment([]string{"bob", "mallory"}, nil, tm, member)
	assert.Equal(t, cerr.InvalidArgument, cerr.CodeOf(err))
	vs := cerr.Violations(err)
	if assert.Len(t, vs, 1) {
		assert.Equal(t, "assignedTo.member", vs[0].RuleID)
	}

	err = ValidateAssignment([]string{"bob"}, nil, nil, member)
	assert.Equal(t, cerr.InvalidArgument, cerr.CodeOf(err))

	tm.Settings.AllowTaskAssignment = false
	assert.Equal(t, cerr.PermissionDenied, cerr.CodeOf(ValidateAssignment([]string{"bob"}, nil, tm, member)))
	assert.NoError(t, ValidateAssignment([]string{"bob"}, nil, tm, admin))

	// keeping the stored assignment is not an assignment change
	assert.NoError(t, ValidateAssignment([]string{"carol", "bob"}, []string{"bob", "carol"}, tm, member))
	assert.Equal(t, cerr.PermissionDenied, cerr.CodeOf(ValidateAssignment([]string{"bob", "carol"}, []string{"bob"}, tm, member)))
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	earlierToday := now.Add(-time.Hour)

	valid := func() *Task {
		return &Task{Title: "Write spec", Category: CategoryWork, Priority: PriorityHigh}
	}

	assert.NoError(t, valid().Validate(nil, now))

	tk := valid()
	tk.DueDate = &earlierToday
	assert.NoError(t, tk.Validate(nil, now), "today is not in the past")

	tk = valid()
	tk.DueDate = &yesterday
	assert.Error(t, tk.Validate(nil, now))
	assert.NoError(t, tk.Validate(tk.Clone(), now), "an unchanged due date is not re-checked")

	tk = &Task{Title: "  ", Description: strings.Repeat("a", 501), Category: "chores", Priority: "urgent",
		Attachments: make([]Attachment, 6), AssignedTo: []string{"bob"}}
	err := tk.Validate(nil, now)
	var rules []string
	for _, v := range cerr.Violations(err) {
		rules = append(rules, v.RuleID)
	}
	assert.Equal(t, []string{
		"title.required", "description.max_len", "category.in", "priority.in",
		"attachments.max_items", "assignedTo.team_required",
	}, rules)

	tk = valid()
	tk.Title = strings.Repeat("x", 101)
	assert.Error(t, tk.Validate(nil, now))
	tk.Title = strings.Repeat("x", 100)
	assert.NoError(t, tk.Validate(nil, now))
}

func TestNormalizeLabels(t *testing.T) {
	assert.Equal(t, []string{"bug", "urgent"}, NormalizeLabels([]string{"urgent", " bug", "", "urgent"}))
	assert.Equal(t, []string{}, NormalizeLabels(nil))
}
