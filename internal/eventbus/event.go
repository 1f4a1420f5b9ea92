package eventbus

import (
	"slices"
	"strings"
	"time"
)

type Type string

const (
	TypeTaskCreated       Type = "task.created"
	TypeTaskUpdated       Type = "task.updated"
	TypeTaskStatusChanged Type = "task.status_changed"
	TypeTaskAssigned      Type = "task.assigned"
	TypeTaskDeleted       Type = "task.deleted"

	TypeTeamCreated           Type = "team.created"
	TypeTeamUpdated           Type = "team.updated"
	TypeTeamDeleted           Type = "team.deleted"
	TypeTeamMemberInvited     Type = "team.member_invited"
	TypeTeamMemberJoined      Type = "team.member_joined"
	TypeTeamMemberRemoved     Type = "team.member_removed"
	TypeTeamMemberRoleChanged Type = "team.member_role_changed"
	TypeTeamInviteDeclined    Type = "team.invite_declined"

	TypeSettingsUpdated Type = "settings.updated"
	TypeUploadProgress  Type = "upload.progress"

	// Stream control events are written by the event stream itself and
	// never published on a bus.
	TypeStreamReady     Type = "stream.ready"
	TypeStreamKeepalive Type = "stream.keepalive"
)

// IsControl reports whether t is a stream control event.
func (t Type) IsControl() bool {
	return strings.HasPrefix(string(t), "stream.")
}

// Event is a change notification. Audience lists the user ids allowed to
// see it; AudienceEmails covers people addressed by email only (pending
// invitations).
type Event struct {
	ID             string            `json:"id"`
	Type           Type              `json:"type"`
	ResourceID     string            `json:"resourceId"`
	ActorID        string            `json:"actorId,omitempty"`
	Audience       []string          `json:"audience,omitempty"`
	AudienceEmails []string          `json:"audienceEmails,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Origin         string            `json:"origin"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// VisibleTo reports whether a user with the given id and email may receive e.
func (e *Event) VisibleTo(userID, email string) bool {
	if userID != "" && slices.Contains(e.Audience, userID) {
		return true
	}
	if email == "" {
		return false
	}
	return slices.ContainsFunc(e.AudienceEmails, func(s string) bool {
		return strings.EqualFold(s, email)
	})
}

// Audience builds a de-duplicated audience list, skipping empty ids.
func Audience(ids ...[]string) []string {
	var out []string
	for _, group := range ids {
		for _, id := range group {
			if id != "" && !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}
