package directoryservice

// RegisterRequest is the public self-registration form for ministry
// administrators.
type RegisterRequest struct {
	FullName   string `json:"full_name"` //nolint:tagliatelle
	Username   string `json:"username"`
	Password   string `json:"password"`
	MinistryID string `json:"ministry_id"` //nolint:tagliatelle
}
