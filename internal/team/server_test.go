package team_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/team"
	"github.com/kazz187/taskdeck/internal/team/repositoryimpl"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/storage"
)

var (
	alice = &session.Session{UserID: "alice", Email: "alice@example.com"}
	bob   = &session.Session{UserID: "bob", Email: "bob@example.com"}
)

func as(s *session.Session) context.Context {
	return session.WithSession(context.Background(), s)
}

func newServer(t *testing.T) (*team.Server, *eventbus.Bus) {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	bus := eventbus.New()
	return team.NewServer(repositoryimpl.NewYAMLRepository(st), bus), bus
}

func TestTeamService_InvitationFlow(t *testing.T) {
	s, bus := newServer(t)
	_, events := bus.Subscribe(32)

	created, err := s.CreateTeam(as(alice), connect.NewRequest(&team.CreateTeamRequest{Name: "Platform"}))
	require.NoError(t, err)
	id := created.Msg.Team.ID
	assert.Equal(t, eventbus.TypeTeamCreated, (<-events).Type)

	_, err = s.GetTeam(as(bob), connect.NewRequest(&team.GetTeamRequest{ID: id}))
	assert.Equal(t, cerr.PermissionDenied, cerr.CodeOf(err))

	inv, err := s.InviteMembers(as(alice), connect.NewRequest(&team.InviteMembersRequest{TeamID: id, Emails: []string{"Bob@example.com"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com"}, inv.Msg.Invited)
	ev := <-events
	assert.Equal(t, eventbus.TypeTeamMemberInvited, ev.Type)
	assert.True(t, ev.VisibleTo("bob", "bob@example.com"), "invitee sees the invitation by email")

	pending, err := s.ListInvitations(as(bob), connect.NewRequest(&team.ListInvitationsRequest{}))
	require.NoError(t, err)
	require.Len(t, pending.Msg.Invitations, 1)
	assert.Equal(t, "Platform", pending.Msg.Invitations[0].TeamName)

	accepted, err := s.AcceptInvitation(as(bob), connect.NewRequest(&team.AcceptInvitationRequest{TeamID: id}))
	require.NoError(t, err)
	assert.Len(t, accepted.Msg.Team.Members, 2)
	assert.Empty(t, accepted.Msg.Team.InvitedEmails)
	assert.Equal(t, eventbus.TypeTeamMemberJoined, (<-events).Type)

	list, err := s.ListTeams(as(bob), connect.NewRequest(&team.ListTeamsRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Teams, 1)

	_, err = s.UpdateTeam(as(bob), connect.NewRequest(&team.UpdateTeamRequest{ID: id}))
	assert.Equal(t, cerr.PermissionDenied, cerr.CodeOf(err))

	left, err := s.RemoveMember(as(bob), connect.NewRequest(&team.RemoveMemberRequest{TeamID: id, MemberID: "bob"}))
	require.NoError(t, err)
	assert.Len(t, left.Msg.Team.Members, 1)
	ev = <-events
	assert.Equal(t, eventbus.TypeTeamMemberRemoved, ev.Type)
	assert.Equal(t, "bob", ev.Metadata["member_id"])
	assert.True(t, ev.VisibleTo("bob", ""))
}

func TestTeamService_UpdateAndDelete(t *testing.T) {
	s, _ := newServer(t)
	created, err := s.CreateTeam(as(alice), connect.NewRequest(&team.CreateTeamRequest{Name: "Platform"}))
	require.NoError(t, err)
	id := created.Msg.Team.ID

	name := "Infra"
	settings := team.DefaultSettings()
	settings.AllowMemberInvites = true
	updated, err := s.UpdateTeam(as(alice), connect.NewRequest(&team.UpdateTeamRequest{ID: id, Name: &name, Settings: &settings}))
	require.NoError(t, err)
	assert.Equal(t, "Infra", updated.Msg.Team.Name)
	assert.True(t, updated.Msg.Team.Settings.AllowMemberInvites)

	empty := " "
	_, err = s.UpdateTeam(as(alice), connect.NewRequest(&team.UpdateTeamRequest{ID: id, Name: &empty}))
	assert.Equal(t, cerr.InvalidArgument, cerr.CodeOf(err))

	_, err = s.DeleteTeam(as(alice), connect.NewRequest(&team.DeleteTeamRequest{ID: id}))
	require.NoError(t, err)
	_, err = s.GetTeam(as(alice), connect.NewRequest(&team.GetTeamRequest{ID: id}))
	assert.Equal(t, cerr.NotFound, cerr.CodeOf(err))
}

func TestTeamService_RequiresSession(t *testing.T) {
	s, _ := newServer(t)
	_, err := s.ListTeams(context.Background(), connect.NewRequest(&team.ListTeamsRequest{}))
	assert.Equal(t, cerr.Unauthenticated, cerr.CodeOf(err))
}
