package api

import "fmt"

// ActionKind is the disposition chosen for the selected items.
type ActionKind string

const (
	ActionDonate   ActionKind = "donate"
	ActionGiveaway ActionKind = "giveaway"
	ActionResale   ActionKind = "resale"
)

// ActionKinds lists every kind in display order.
var ActionKinds = []ActionKind{ActionDonate, ActionGiveaway, ActionResale}

func (k ActionKind) String() string {
	return string(k)
}

// Label is the button caption for the kind ("Donate", "Giveaway", "Resale").
func (k ActionKind) Label() string {
	switch k {
	case ActionDonate:
		return "Donate"
	case ActionGiveaway:
		return "Giveaway"
	case ActionResale:
		return "Resale"
	}
	return string(k)
}

// ParseActionKind validates a user supplied kind.
func ParseActionKind(s string) (ActionKind, error) {
	for _, k := range ActionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action kind %q: must be one of donate, giveaway, resale", s)
}

// Organization is an NGO as listed by GET /ngos.
type Organization struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo_url"`
}

// RequirementCatalog is the response of GET /ngo_requirements/{id}.
type RequirementCatalog struct {
	OrganizationID   int                 `json:"ngo_id,omitempty"`
	OrganizationName string              `json:"ngo_name"`
	Requirements     map[string][]string `json:"requirements"`
}

// ItemRecord is one selected item in a donation request. Quantity is always 1
// when built by the controller.
type ItemRecord struct {
	Category string `json:"category"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// DonationActionRequest is the body of POST /donate. OriginalCost and
// PurchaseYear are only sent for resale.
type DonationActionRequest struct {
	UserEmail      string       `json:"user_email"`
	OrganizationID int          `json:"ngo_id"`
	ActionType     ActionKind   `json:"action_type"`
	SelectedItems  []ItemRecord `json:"selected_items"`
	OriginalCost   *float64     `json:"original_cost,omitempty"`
	PurchaseYear   *int         `json:"purchase_year,omitempty"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type donorTotalResponse struct {
	TotalDonors int `json:"total_donors"`
}
