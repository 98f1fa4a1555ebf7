package webhook

import "strings"

// Event is the envelope of an identity provider webhook delivery.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData is the user payload inside an identity event. Deleted events
// carry only the id.
type EventData struct {
	ID              string         `json:"id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Username        string         `json:"username"`
	PrimaryEmailID  string         `json:"primary_email_address_id"`
	EmailAddresses  []EmailAddress `json:"email_addresses"`
	ProfileImageURL string         `json:"profile_image_url"`
	Deleted         bool           `json:"deleted"`
}

// EmailAddress is one of a user's email records.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail resolves the user's primary email address, falling back to
// the first listed address when the primary id does not resolve.
func (d *EventData) PrimaryEmail() string {
	for _, addr := range d.EmailAddresses {
		if addr.ID == d.PrimaryEmailID {
			return addr.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// DisplayName builds a display name from the profile fields, preferring
// the full name, then the username, then the email's local part.
func (d *EventData) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
	if name != "" {
		return name
	}
	if d.Username != "" {
		return d.Username
	}
	if email := d.PrimaryEmail(); email != "" {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
		return email
	}
	return "Anonymous"
}
