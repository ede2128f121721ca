package models

// BilingualText is a French/Arabic string pair, the unit of every
// user-facing label in the system.
type BilingualText struct {
	FR string `json:"fr"`
	AR string `json:"ar"`
}

func (bt BilingualText) Empty() bool {
	return bt.FR == "" && bt.AR == ""
}

// ComplianceStatus is derived from the age of a ministry's most recent asset
// submission. It is never authoritative when found in a stored record.
type ComplianceStatus string

const (
	ComplianceCompliant ComplianceStatus = "compliant"
	CompliancePending   ComplianceStatus = "pending"
	ComplianceOverdue   ComplianceStatus = "overdue"
)

type MinistryContact struct {
	ID               string           `json:"contact_id"` //nolint:tagliatelle
	Name             BilingualText    `json:"name"`
	Department       BilingualText    `json:"department"`
	Representative   string           `json:"representative"`
	Role             BilingualText    `json:"role"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	ComplianceStatus ComplianceStatus `json:"compliance_status"`         //nolint:tagliatelle
	LastSubmission   string           `json:"last_submission,omitempty"` //nolint:tagliatelle
}

type WorkGroup struct {
	ID         string   `json:"group_id"` //nolint:tagliatelle
	Name       string   `json:"name"`
	ContactIDs []string `json:"contact_ids"` //nolint:tagliatelle
}
