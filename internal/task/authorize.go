package task

import (
	"fmt"
	"slices"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/team"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

type Action int

const (
	ActionView Action = iota
	ActionEdit
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "access"
	}
}

// Authorize checks whether sess may perform action on t. tm is the owning
// team, or nil for personal tasks.
//
//   - view: owner, assignee or team member
//   - edit (including status changes): owner or team member
//   - delete: owner or team admin
func Authorize(t *Task, tm *team.Team, sess *session.Session, action Action) error {
	if sess == nil || sess.UserID == "" {
		return session.ErrUnauthenticated()
	}
	if t.UserID == sess.UserID {
		return nil
	}
	inTeam := tm != nil && tm.ID == t.TeamID
	switch action {
	case ActionView:
		if t.IsAssigned(sess.UserID) || (inTeam && tm.IsMember(sess.UserID)) {
			return nil
		}
	case ActionEdit:
		if inTeam && tm.IsMember(sess.UserID) {
			return nil
		}
	case ActionDelete:
		if inTeam && tm.IsAdmin(sess.UserID) {
			return nil
		}
	}
	return cerr.NewError(cerr.PermissionDenied, fmt.Sprintf("you are not allowed to %s this task", action), nil)
}

// ValidateAssignment checks assignees against the owning team. Assignees must
// be team members, and a task without a team cannot be assigned. With
// allowTaskAssignment off only admins may change the assignment; prev is the
// stored assignment, which non-admins may keep as is.
func ValidateAssignment(assignees, prev []string, tm *team.Team, sess *session.Session) error {
	if len(assignees) == 0 {
		return nil
	}
	if tm == nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid assignment", nil).
			AddDetailMessageWithCode("only team tasks can be assigned", "assignedTo.team_required")
	}
	changed := !sameIDs(assignees, prev)
	if changed && !tm.Settings.AllowTaskAssignment && !tm.IsAdmin(sess.UserID) {
		return cerr.NewError(cerr.PermissionDenied, "only team admins can assign tasks in this team", nil)
	}
	members := tm.MemberIDs()
	e := cerr.NewError(cerr.InvalidArgument, "invalid assignment", nil)
	for _, id := range assignees {
		if !slices.Contains(members, id) {
			e.AddDetailMessageWithCode(fmt.Sprintf("%s is not a member of %s", id, tm.Name), "assignedTo.member")
		}
	}
	if len(e.Details) > 0 {
		return e
	}
	return nil
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range a {
		if !slices.Contains(b, id) {
			return false
		}
	}
	return true
}
