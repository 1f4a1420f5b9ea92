package team

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

func errNotMember() error {
	return cerr.NewError(cerr.PermissionDenied, "you are not a member of this team", nil)
}

func errAdminOnly() error {
	return cerr.NewError(cerr.PermissionDenied, "only team admins can do this", nil)
}

// New builds a team whose only member is the creator, as admin.
func New(id string, sess *session.Session, name, description string, now time.Time) (*Team, error) {
	t := &Team{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedBy:   sess.UserID,
		Members: []Member{{
			ID:          sess.UserID,
			Email:       sess.Email,
			DisplayName: sess.DisplayName,
			Role:        RoleAdmin,
			PhotoURL:    sess.PhotoURL,
			JoinedAt:    now,
		}},
		Settings:  DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.syncEmails()
	return t, nil
}

func (t *Team) Validate() error {
	e := cerr.NewError(cerr.InvalidArgument, "invalid team", nil)
	if t.Name == "" {
		e.AddDetailMessageWithCode("team name is required", "name.required")
	} else if n := len([]rune(t.Name)); n > maxNameLength {
		e.AddDetailMessageWithCode(fmt.Sprintf("team name must be at most %d characters", maxNameLength), "name.max_len")
	}
	if len([]rune(t.Description)) > maxDescriptionLength {
		e.AddDetailMessageWithCode(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength), "description.max_len")
	}
	if t.Settings.MaxAttachmentSize < 0 {
		e.AddDetailMessageWithCode("max attachment size must not be negative", "settings.max_attachment_size")
	}
	if len(e.Details) > 0 {
		return e
	}
	return nil
}

func (t *Team) RequireMember(sess *session.Session) error {
	if !t.IsMember(sess.UserID) {
		return errNotMember()
	}
	return nil
}

func (t *Team) RequireAdmin(sess *session.Session) error {
	if !t.IsAdmin(sess.UserID) {
		return errAdminOnly()
	}
	return nil
}

// Invite adds addresses to InvitedEmails. Members and already invited
// addresses are skipped; if nothing is left the call fails.
func (t *Team) Invite(sess *session.Session, emails []string, now time.Time) ([]string, error) {
	if !t.IsAdmin(sess.UserID) && !(t.Settings.AllowMemberInvites && t.IsMember(sess.UserID)) {
		return nil, errAdminOnly()
	}
	e := cerr.NewError(cerr.InvalidArgument, "invalid invitation", nil)
	var added []string
	for _, raw := range emails {
		addr := normalizeEmail(raw)
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			e.AddDetailMessageWithCode(fmt.Sprintf("%q is not a valid email address", raw), "emails.format")
			continue
		}
		if t.HasMemberEmail(addr) || t.IsInvited(addr) || slices.Contains(added, addr) {
			continue
		}
		added = append(added, addr)
	}
	if len(e.Details) > 0 {
		return nil, e
	}
	if len(added) == 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "all of these people are already members or invited", nil)
	}
	t.InvitedEmails = append(t.InvitedEmails, added...)
	t.UpdatedAt = now
	return added, nil
}

// Accept turns the caller's pending invitation into a membership.
func (t *Team) Accept(sess *session.Session, now time.Time) error {
	email := sess.NormalizedEmail()
	if !t.IsInvited(email) {
		return cerr.NewError(cerr.NotFound, "invitation not found", nil)
	}
	if t.IsMember(sess.UserID) {
		t.InvitedEmails = slices.DeleteFunc(t.InvitedEmails, func(e string) bool { return e == email })
		return nil
	}
	t.Members = append(t.Members, Member{
		ID:          sess.UserID,
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		Role:        RoleMember,
		PhotoURL:    sess.PhotoURL,
		JoinedAt:    now,
	})
	t.syncEmails()
	t.UpdatedAt = now
	return nil
}

func (t *Team) Decline(sess *session.Session, now time.Time) error {
	email := sess.NormalizedEmail()
	if !t.IsInvited(email) {
		return cerr.NewError(cerr.NotFound, "invitation not found", nil)
	}
	t.InvitedEmails = slices.DeleteFunc(t.InvitedEmails, func(e string) bool { return e == email })
	t.UpdatedAt = now
	return nil
}

// RemoveMember removes memberID. Admins may remove anyone; members may only
// leave. The last admin cannot leave or be removed.
func (t *Team) RemoveMember(sess *session.Session, memberID string, now time.Time) (Member, error) {
	if memberID != sess.UserID && !t.IsAdmin(sess.UserID) {
		return Member{}, errAdminOnly()
	}
	m, ok := t.Member(memberID)
	if !ok {
		return Member{}, cerr.NewError(cerr.NotFound, "member not found", nil)
	}
	if m.Role == RoleAdmin && t.AdminCount() == 1 {
		return Member{}, cerr.NewError(cerr.FailedPrecondition, "a team needs at least one admin; promote someone else first", nil)
	}
	t.Members = slices.DeleteFunc(t.Members, func(x Member) bool { return x.ID == memberID })
	t.syncEmails()
	t.UpdatedAt = now
	return m, nil
}

func (t *Team) UpdateMemberRole(sess *session.Session, memberID string, role Role, now time.Time) error {
	if err := t.RequireAdmin(sess); err != nil {
		return err
	}
	if !role.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown role %q", role), nil)
	}
	i := slices.IndexFunc(t.Members, func(m Member) bool { return m.ID == memberID })
	if i < 0 {
		return cerr.NewError(cerr.NotFound, "member not found", nil)
	}
	if t.Members[i].Role == role {
		return nil
	}
	if t.Members[i].Role == RoleAdmin && t.AdminCount() == 1 {
		return cerr.NewError(cerr.FailedPrecondition, "a team needs at least one admin", nil)
	}
	t.Members[i].Role = role
	t.UpdatedAt = now
	return nil
}
