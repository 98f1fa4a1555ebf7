package webhook

import (
	"encoding/json"
	"testing"
)

func TestPrimaryEmail(t *testing.T) {
	tests := []struct {
		name string
		data EventData
		want string
	}{
		{
			name: "primary id resolves",
			data: EventData{
				PrimaryEmailID: "em_2",
				EmailAddresses: []EmailAddress{
					{ID: "em_1", EmailAddress: "old@example.com"},
					{ID: "em_2", EmailAddress: "primary@example.com"},
				},
			},
			want: "primary@example.com",
		},
		{
			name: "falls back to first address",
			data: EventData{
				PrimaryEmailID: "em_missing",
				EmailAddresses: []EmailAddress{
					{ID: "em_1", EmailAddress: "first@example.com"},
				},
			},
			want: "first@example.com",
		},
		{
			name: "no addresses",
			data: EventData{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.PrimaryEmail(); got != tt.want {
				t.Errorf("PrimaryEmail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		data EventData
		want string
	}{
		{"full name", EventData{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", EventData{FirstName: "Ada"}, "Ada"},
		{"last only", EventData{LastName: "Lovelace"}, "Lovelace"},
		{"username fallback", EventData{Username: "ada_l"}, "ada_l"},
		{
			"email local part fallback",
			EventData{EmailAddresses: []EmailAddress{{ID: "em_1", EmailAddress: "ada@example.com"}}},
			"ada",
		},
		{"nothing at all", EventData{}, "Anonymous"},
		{"whitespace names ignored", EventData{FirstName: "  ", LastName: " ", Username: "ada_l"}, "ada_l"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventUnmarshal(t *testing.T) {
	payload := `{
		"type": "user.created",
		"data": {
			"id": "user_29w83",
			"first_name": "Example",
			"last_name": "User",
			"primary_email_address_id": "idn_29w83",
			"email_addresses": [
				{"id": "idn_29w83", "email_address": "example@example.org"}
			]
		}
	}`

	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if event.Type != "user.created" {
		t.Errorf("type = %q", event.Type)
	}
	if event.Data.ID != "user_29w83" {
		t.Errorf("id = %q", event.Data.ID)
	}
	if got := event.Data.PrimaryEmail(); got != "example@example.org" {
		t.Errorf("primary email = %q", got)
	}
	if got := event.Data.DisplayName(); got != "Example User" {
		t.Errorf("display name = %q", got)
	}
}
