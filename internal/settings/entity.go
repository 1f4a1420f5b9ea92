package settings

import (
	"fmt"
	"time"

	"github.com/kazz187/taskdeck/internal/task"
	"github.com/kazz187/taskdeck/pkg/cerr"
)

type View string

const (
	ViewList  View = "list"
	ViewBoard View = "board"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// UserSettings holds per-user preferences.
type UserSettings struct {
	UserID               string        `yaml:"user_id" json:"userId"`
	DefaultView          View          `yaml:"default_view" json:"defaultView"`
	EmailNotifications   bool          `yaml:"email_notifications" json:"emailNotifications"`
	DesktopNotifications bool          `yaml:"desktop_notifications" json:"desktopNotifications"`
	DefaultTaskCategory  task.Category `yaml:"default_task_category" json:"defaultTaskCategory"`
	Theme                Theme         `yaml:"theme" json:"theme"`
	UpdatedAt            time.Time     `yaml:"updated_at" json:"updatedAt"`
}

func Defaults(userID string, now time.Time) *UserSettings {
	return &UserSettings{
		UserID:               userID,
		DefaultView:          ViewList,
		EmailNotifications:   true,
		DesktopNotifications: true,
		DefaultTaskCategory:  task.CategoryWork,
		Theme:                ThemeSystem,
		UpdatedAt:            now,
	}
}

func (s *UserSettings) Validate() error {
	e := cerr.NewError(cerr.InvalidArgument, "invalid settings", nil)
	if s.DefaultView != ViewList && s.DefaultView != ViewBoard {
		e.AddDetailMessageWithCode(fmt.Sprintf("unknown view %q", s.DefaultView), "defaultView.in")
	}
	if !s.DefaultTaskCategory.Valid() {
		e.AddDetailMessageWithCode(fmt.Sprintf("unknown category %q", s.DefaultTaskCategory), "defaultTaskCategory.in")
	}
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		e.AddDetailMessageWithCode(fmt.Sprintf("unknown theme %q", s.Theme), "theme.in")
	}
	if len(e.Details) > 0 {
		return e
	}
	return nil
}
