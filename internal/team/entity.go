package team

import (
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Member struct {
	ID          string    `yaml:"id" json:"id"`
	Email       string    `yaml:"email" json:"email"`
	DisplayName string    `yaml:"display_name" json:"displayName"`
	Role        Role      `yaml:"role" json:"role"`
	PhotoURL    string    `yaml:"photo_url" json:"photoURL"`
	JoinedAt    time.Time `yaml:"joined_at" json:"joinedAt"`
}

type Settings struct {
	AllowMemberInvites  bool  `yaml:"allow_member_invites" json:"allowMemberInvites"`
	AllowTaskAssignment bool  `yaml:"allow_task_assignment" json:"allowTaskAssignment"`
	AllowAttachments    bool  `yaml:"allow_attachments" json:"allowAttachments"`
	MaxAttachmentSize   int64 `yaml:"max_attachment_size" json:"maxAttachmentSize"`
}

func DefaultSettings() Settings {
	return Settings{
		AllowMemberInvites:  false,
		AllowTaskAssignment: true,
		AllowAttachments:    true,
		MaxAttachmentSize:   5 << 20,
	}
}

type Team struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	CreatedBy   string   `yaml:"created_by"`
	Members     []Member `yaml:"members"`
	// MemberEmails mirrors Members[].Email (lower-cased) for lookups by email.
	MemberEmails  []string  `yaml:"member_emails"`
	InvitedEmails []string  `yaml:"invited_emails"`
	Settings      Settings  `yaml:"settings"`
	CreatedAt     time.Time `yaml:"created_at"`
	UpdatedAt     time.Time `yaml:"updated_at"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (t *Team) Member(id string) (Member, bool) {
	i := slices.IndexFunc(t.Members, func(m Member) bool { return m.ID == id })
	if i < 0 {
		return Member{}, false
	}
	return t.Members[i], true
}

func (t *Team) IsMember(userID string) bool {
	_, ok := t.Member(userID)
	return ok
}

func (t *Team) IsAdmin(userID string) bool {
	m, ok := t.Member(userID)
	return ok && m.Role == RoleAdmin
}

func (t *Team) MemberIDs() []string {
	ids := make([]string, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.ID
	}
	return ids
}

func (t *Team) AdminCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Role == RoleAdmin {
			n++
		}
	}
	return n
}

func (t *Team) HasMemberEmail(email string) bool {
	return slices.Contains(t.MemberEmails, normalizeEmail(email))
}

func (t *Team) IsInvited(email string) bool {
	return slices.Contains(t.InvitedEmails, normalizeEmail(email))
}

// syncEmails recomputes MemberEmails and drops invitations that now
// belong to members.
func (t *Team) syncEmails() {
	t.MemberEmails = t.MemberEmails[:0]
	for _, m := range t.Members {
		if e := normalizeEmail(m.Email); e != "" && !slices.Contains(t.MemberEmails, e) {
			t.MemberEmails = append(t.MemberEmails, e)
		}
	}
	t.InvitedEmails = slices.DeleteFunc(t.InvitedEmails, func(e string) bool {
		return slices.Contains(t.MemberEmails, e)
	})
}
