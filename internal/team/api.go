package team

import (
	"slices"
	"time"
)

const ServiceName = "taskdeck.v1.TeamService"

const (
	CreateTeamProcedure        = "/" + ServiceName + "/CreateTeam"
	GetTeamProcedure           = "/" + ServiceName + "/GetTeam"
	ListTeamsProcedure         = "/" + ServiceName + "/ListTeams"
	ListInvitationsProcedure   = "/" + ServiceName + "/ListInvitations"
	UpdateTeamProcedure        = "/" + ServiceName + "/UpdateTeam"
	DeleteTeamProcedure        = "/" + ServiceName + "/DeleteTeam"
	InviteMembersProcedure     = "/" + ServiceName + "/InviteMembers"
	AcceptInvitationProcedure  = "/" + ServiceName + "/AcceptInvitation"
	DeclineInvitationProcedure = "/" + ServiceName + "/DeclineInvitation"
	RemoveMemberProcedure      = "/" + ServiceName + "/RemoveMember"
	UpdateMemberRoleProcedure  = "/" + ServiceName + "/UpdateMemberRole"
)

type TeamView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedBy     string    `json:"createdBy"`
	Members       []Member  `json:"members"`
	MemberEmails  []string  `json:"memberEmails"`
	InvitedEmails []string  `json:"invitedEmails"`
	Settings      Settings  `json:"settings"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func ToView(t *Team) *TeamView {
	return &TeamView{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		CreatedBy:     t.CreatedBy,
		Members:       nonNil(t.Members),
		MemberEmails:  nonNil(t.MemberEmails),
		InvitedEmails: nonNil(t.InvitedEmails),
		Settings:      t.Settings,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func ToViews(teams []*Team) []*TeamView {
	views := make([]*TeamView, len(teams))
	for i, t := range teams {
		views[i] = ToView(t)
	}
	return views
}

// InvitationView is what an invitee sees of a team before joining.
type InvitationView struct {
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateTeamResponse struct {
	Team *TeamView `json:"team"`
}

type GetTeamRequest struct {
	ID string `json:"id"`
}

type GetTeamResponse struct {
	Team *TeamView `json:"team"`
}

type ListTeamsRequest struct{}

type ListTeamsResponse struct {
	Teams []*TeamView `json:"teams"`
}

type ListInvitationsRequest struct{}

type ListInvitationsResponse struct {
	Invitations []InvitationView `json:"invitations"`
}

// UpdateTeamRequest is a partial update; nil fields are left alone.
type UpdateTeamRequest struct {
	ID          string    `json:"id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Settings    *Settings `json:"settings,omitempty"`
}

type UpdateTeamResponse struct {
	Team *TeamView `json:"team"`
}

type DeleteTeamRequest struct {
	ID string `json:"id"`
}

type DeleteTeamResponse struct{}

type InviteMembersRequest struct {
	TeamID string   `json:"teamId"`
	Emails []string `json:"emails"`
}

type InviteMembersResponse struct {
	Team    *TeamView `json:"team"`
	Invited []string  `json:"invited"`
}

type AcceptInvitationRequest struct {
	TeamID string `json:"teamId"`
}

type AcceptInvitationResponse struct {
	Team *TeamView `json:"team"`
}

type DeclineInvitationRequest struct {
	TeamID string `json:"teamId"`
}

type DeclineInvitationResponse struct{}

type RemoveMemberRequest struct {
	TeamID   string `json:"teamId"`
	MemberID string `json:"memberId"`
}

type RemoveMemberResponse struct {
	Team *TeamView `json:"team"`
}

type UpdateMemberRoleRequest struct {
	TeamID   string `json:"teamId"`
	MemberID string `json:"memberId"`
	Role     Role   `json:"role"`
}

type UpdateMemberRoleResponse struct {
	Team *TeamView `json:"team"`
}
