package settings

import "github.com/kazz187/taskdeck/internal/task"

const ServiceName = "taskdeck.v1.SettingsService"

const (
	GetSettingsProcedure    = "/" + ServiceName + "/GetSettings"
	UpdateSettingsProcedure = "/" + ServiceName + "/UpdateSettings"
)

type GetSettingsRequest struct{}

type GetSettingsResponse struct {
	Settings *UserSettings `json:"settings"`
}

// UpdateSettingsRequest is a partial update; nil fields are left alone.
type UpdateSettingsRequest struct {
	DefaultView          *View          `json:"defaultView,omitempty"`
	EmailNotifications   *bool          `json:"emailNotifications,omitempty"`
	DesktopNotifications *bool          `json:"desktopNotifications,omitempty"`
	DefaultTaskCategory  *task.Category `json:"defaultTaskCategory,omitempty"`
	Theme                *Theme         `json:"theme,omitempty"`
}

type UpdateSettingsResponse struct {
	Settings *UserSettings `json:"settings"`
}
