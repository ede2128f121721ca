package server

import (
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
)

// UserView is the user record as shown to API clients; credentials never
// leave the directory.
type UserView struct {
	ID          string       `json:"user_id"` //nolint:tagliatelle
	Username    string       `json:"username"`
	FullName    string       `json:"full_name"` //nolint:tagliatelle
	Role        models.Role  `json:"role"`
	MinistryID  string       `json:"ministry_id,omitempty"` //nolint:tagliatelle
	AllowedTabs []models.Tab `json:"allowed_tabs"`          //nolint:tagliatelle
}

func toUserView(u models.User) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Role:        u.Role,
		MinistryID:  u.MinistryID,
		AllowedTabs: u.AllowedTabs,
	}
}

func toUserViews(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}

	return views
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type ValidationResponse struct {
	Fields map[string]bool `json:"fields"`
}

type SheetURLResponse struct {
	URL string `json:"url"`
}
