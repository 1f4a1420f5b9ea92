package team

import (
	"net/http"

	"connectrpc.com/connect"
)

func NewHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(CreateTeamProcedure, connect.NewUnaryHandler(CreateTeamProcedure, s.CreateTeam, opts...))
	mux.Handle(GetTeamProcedure, connect.NewUnaryHandler(GetTeamProcedure, s.GetTeam, opts...))
	mux.Handle(ListTeamsProcedure, connect.NewUnaryHandler(ListTeamsProcedure, s.ListTeams, opts...))
	mux.Handle(ListInvitationsProcedure, connect.NewUnaryHandler(ListInvitationsProcedure, s.ListInvitations, opts...))
	mux.Handle(UpdateTeamProcedure, connect.NewUnaryHandler(UpdateTeamProcedure, s.UpdateTeam, opts...))
	mux.Handle(DeleteTeamProcedure, connect.NewUnaryHandler(DeleteTeamProcedure, s.DeleteTeam, opts...))
	mux.Handle(InviteMembersProcedure, connect.NewUnaryHandler(InviteMembersProcedure, s.InviteMembers, opts...))
	mux.Handle(AcceptInvitationProcedure, connect.NewUnaryHandler(AcceptInvitationProcedure, s.AcceptInvitation, opts...))
	mux.Handle(DeclineInvitationProcedure, connect.NewUnaryHandler(DeclineInvitationProcedure, s.DeclineInvitation, opts...))
	mux.Handle(RemoveMemberProcedure, connect.NewUnaryHandler(RemoveMemberProcedure, s.RemoveMember, opts...))
	mux.Handle(UpdateMemberRoleProcedure, connect.NewUnaryHandler(UpdateMemberRoleProcedure, s.UpdateMemberRole, opts...))
	return "/" + ServiceName + "/", mux
}
