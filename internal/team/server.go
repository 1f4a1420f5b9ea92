package team

import (
	"context"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
)

type Server struct {
	repo     Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewServer(repo Repository, eventBus *eventbus.Bus) *Server {
	return &Server{
		repo:     repo,
		eventBus: eventBus,
		now:      time.Now,
	}
}

func (s *Server) get(ctx context.Context, id string) (*Team, error) {
	if id == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "team id is required", nil)
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	clog.AddAttribute(ctx, "team.id", t.ID)
	return t, nil
}

func (s *Server) publish(typ eventbus.Type, t *Team, sess *session.Session, audience []string, emails []string, metadata map[string]string) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["team_name"] = t.Name
	ev := eventbus.NewEvent(typ, t.ID, sess.UserID, eventbus.Audience(t.MemberIDs(), audience), metadata)
	ev.AudienceEmails = emails
	s.eventBus.Publish(ev)
}

func (s *Server) CreateTeam(ctx context.Context, req *connect.Request[CreateTeamRequest]) (*connect.Response[CreateTeamResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := New(ulid.Make().String(), sess, req.Msg.Name, req.Msg.Description, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamCreated, t, sess, nil, nil, nil)
	return connect.NewResponse(&CreateTeamResponse{Team: ToView(t)}), nil
}

func (s *Server) GetTeam(ctx context.Context, req *connect.Request[GetTeamRequest]) (*connect.Response[GetTeamResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := t.RequireMember(sess); err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetTeamResponse{Team: ToView(t)}), nil
}

func (s *Server) ListTeams(ctx context.Context, _ *connect.Request[ListTeamsRequest]) (*connect.Response[ListTeamsResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := ListForMember(ctx, s.repo, sess.UserID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ListTeamsResponse{Teams: ToViews(teams)}), nil
}

func (s *Server) ListInvitations(ctx context.Context, _ *connect.Request[ListInvitationsRequest]) (*connect.Response[ListInvitationsResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	resp := &ListInvitationsResponse{Invitations: []InvitationView{}}
	if sess.NormalizedEmail() == "" {
		return connect.NewResponse(resp), nil
	}
	teams, err := ListInvitations(ctx, s.repo, sess.NormalizedEmail())
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		resp.Invitations = append(resp.Invitations, InvitationView{
			TeamID:      t.ID,
			TeamName:    t.Name,
			Description: t.Description,
			MemberCount: len(t.Members),
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *Server) UpdateTeam(ctx context.Context, req *connect.Request[UpdateTeamRequest]) (*connect.Response[UpdateTeamResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	t, err := s.get(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if err := t.RequireAdmin(sess); err != nil {
		return nil, err
	}
	if m.Name != nil {
		t.Name = strings.TrimSpace(*m.Name)
	}
	if m.Description != nil {
		t.Description = strings.TrimSpace(*m.Description)
	}
	if m.Settings != nil {
		t.Settings = *m.Settings
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamUpdated, t, sess, nil, nil, nil)
	return connect.NewResponse(&UpdateTeamResponse{Team: ToView(t)}), nil
}

// DeleteTeam removes the team document. Its tasks are kept and fall back
// to their owners.
func (s *Server) DeleteTeam(ctx context.Context, req *connect.Request[DeleteTeamRequest]) (*connect.Response[DeleteTeamResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := t.RequireAdmin(sess); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamDeleted, t, sess, nil, nil, nil)
	return connect.NewResponse(&DeleteTeamResponse{}), nil
}

func (s *Server) InviteMembers(ctx context.Context, req *connect.Request[InviteMembersRequest]) (*connect.Response[InviteMembersResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	if err := t.RequireMember(sess); err != nil {
		return nil, err
	}
	added, err := t.Invite(sess, req.Msg.Emails, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamMemberInvited, t, sess, nil, added, map[string]string{
		"emails": strings.Join(added, ","),
	})
	return connect.NewResponse(&InviteMembersResponse{Team: ToView(t), Invited: added}), nil
}

func (s *Server) AcceptInvitation(ctx context.Context, req *connect.Request[AcceptInvitationRequest]) (*connect.Response[AcceptInvitationResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	if err := t.Accept(sess, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamMemberJoined, t, sess, nil, nil, map[string]string{"member_id": sess.UserID})
	return connect.NewResponse(&AcceptInvitationResponse{Team: ToView(t)}), nil
}

func (s *Server) DeclineInvitation(ctx context.Context, req *connect.Request[DeclineInvitationRequest]) (*connect.Response[DeclineInvitationResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	if err := t.Decline(sess, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamInviteDeclined, t, sess, nil, nil, map[string]string{"email": sess.NormalizedEmail()})
	return connect.NewResponse(&DeclineInvitationResponse{}), nil
}

// RemoveMember removes a member or lets the caller leave. The removed member
// is kept in the event audience so their clients drop the team.
func (s *Server) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, req.Msg.TeamID)
	if err != nil {
		return nil, err
	}
	if err := t.RequireMember(sess); err != nil {
		return nil, err
	}
	removed, err := t.RemoveMember(sess, req.Msg.MemberID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamMemberRemoved, t, sess, []string{removed.ID}, nil, map[string]string{"member_id": removed.ID})
	return connect.NewResponse(&RemoveMemberResponse{Team: ToView(t)}), nil
}

func (s *Server) UpdateMemberRole(ctx context.Context, req *connect.Request[UpdateMemberRoleRequest]) (*connect.Response[UpdateMemberRoleResponse], error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	t, err := s.get(ctx, m.TeamID)
	if err != nil {
		return nil, err
	}
	if err := t.UpdateMemberRole(sess, m.MemberID, m.Role, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(eventbus.TypeTeamMemberRoleChanged, t, sess, nil, nil, map[string]string{
		"member_id": m.MemberID,
		"role":      string(m.Role),
	})
	return connect.NewResponse(&UpdateMemberRoleResponse{Team: ToView(t)}), nil
}
