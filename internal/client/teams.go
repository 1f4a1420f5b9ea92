package client

import (
	"context"

	"github.com/kazz187/taskdeck/internal/team"
)

func (c *Client) CreateTeam(ctx context.Context, name, description string) (*team.TeamView, error) {
	resp, err := unary[team.CreateTeamRequest, team.CreateTeamResponse](ctx, c, team.CreateTeamProcedure,
		&team.CreateTeamRequest{Name: name, Description: description})
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}

func (c *Client) GetTeam(ctx context.Context, id string) (*team.TeamView, error) {
	resp, err := unary[team.GetTeamRequest, team.GetTeamResponse](ctx, c, team.GetTeamProcedure, &team.GetTeamRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}

func (c *Client) ListTeams(ctx context.Context) ([]*team.TeamView, error) {
	resp, err := unary[team.ListTeamsRequest, team.ListTeamsResponse](ctx, c, team.ListTeamsProcedure, &team.ListTeamsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

func (c *Client) ListInvitations(ctx context.Context) ([]team.InvitationView, error) {
	resp, err := unary[team.ListInvitationsRequest, team.ListInvitationsResponse](ctx, c, team.ListInvitationsProcedure, &team.ListInvitationsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Invitations, nil
}

func (c *Client) UpdateTeam(ctx context.Context, req *team.UpdateTeamRequest) (*team.TeamView, error) {
	resp, err := unary[team.UpdateTeamRequest, team.UpdateTeamResponse](ctx, c, team.UpdateTeamProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}

func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	_, err := unary[team.DeleteTeamRequest, team.DeleteTeamResponse](ctx, c, team.DeleteTeamProcedure, &team.DeleteTeamRequest{ID: id})
	return err
}

func (c *Client) InviteMembers(ctx context.Context, teamID string, emails []string) (*team.InviteMembersResponse, error) {
	return unary[team.InviteMembersRequest, team.InviteMembersResponse](ctx, c, team.InviteMembersProcedure,
		&team.InviteMembersRequest{TeamID: teamID, Emails: emails})
}

func (c *Client) AcceptInvitation(ctx context.Context, teamID string) (*team.TeamView, error) {
	resp, err := unary[team.AcceptInvitationRequest, team.AcceptInvitationResponse](ctx, c, team.AcceptInvitationProcedure,
		&team.AcceptInvitationRequest{TeamID: teamID})
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}

func (c *Client) DeclineInvitation(ctx context.Context, teamID string) error {
	_, err := unary[team.DeclineInvitationRequest, team.DeclineInvitationResponse](ctx, c, team.DeclineInvitationProcedure,
		&team.DeclineInvitationRequest{TeamID: teamID})
	return err
}

func (c *Client) RemoveMember(ctx context.Context, teamID, memberID string) (*team.TeamView, error) {
	resp, err := unary[team.RemoveMemberRequest, team.RemoveMemberResponse](ctx, c, team.RemoveMemberProcedure,
		&team.RemoveMemberRequest{TeamID: teamID, MemberID: memberID})
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}

func (c *Client) UpdateMemberRole(ctx context.Context, teamID, memberID string, role team.Role) (*team.TeamView, error) {
	resp, err := unary[team.UpdateMemberRoleRequest, team.UpdateMemberRoleResponse](ctx, c, team.UpdateMemberRoleProcedure,
		&team.UpdateMemberRoleRequest{TeamID: teamID, MemberID: memberID, Role: role})
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}
