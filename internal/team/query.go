package team

import "context"

// ListForMember returns the teams userID belongs to.
func ListForMember(ctx context.Context, repo Repository, userID string) ([]*Team, error) {
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Team
	for _, t := range all {
		if t.IsMember(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListInvitations returns the teams with a pending invitation for email.
func ListInvitations(ctx context.Context, repo Repository, email string) ([]*Team, error) {
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Team
	for _, t := range all {
		if t.IsInvited(email) {
			out = append(out, t)
		}
	}
	return out, nil
}
