// Package models provides the data types shared across the goUsersTable service.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// User is one flattened user record as displayed in the table.
// The JSON field names match the upstream directory payload exactly.
type User struct {
	ID         string `json:"id" yaml:"id"`
	FullName   string `json:"fullName" yaml:"fullName"`
	Balance    string `json:"balance" yaml:"balance"`
	IsActive   bool   `json:"isActive" yaml:"isActive"`
	Registered string `json:"registered" yaml:"registered"`
	State      string `json:"state" yaml:"state"`
	Country    string `json:"country" yaml:"country"`
}

// State is one state entry of the upstream payload
type State struct {
	Name  string `json:"name"`
	Users []User `json:"users"`
}

// Country is the top level entry of the upstream payload
type Country struct {
	Country string  `json:"country"`
	State   []State `json:"state"`
}

// UnmarshalJSON decodes a user leniently. Text fields accept strings, numbers and
// booleans; anything else (missing, null, objects) decodes to "". isActive accepts a
// JSON boolean only and is false otherwise.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.ID = lenientText(raw["id"])
	u.FullName = lenientText(raw["fullName"])
	u.Balance = lenientText(raw["balance"])
	u.Registered = lenientText(raw["registered"])
	u.State = lenientText(raw["state"])
	u.Country = lenientText(raw["country"])

	u.IsActive = false
	if v, ok := raw["isActive"]; ok {
		var active bool
		if err := json.Unmarshal(v, &active); err == nil {
			u.IsActive = active
		}
	}

	return nil
}

func lenientText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		return ""
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return strconv.FormatBool(b)
		}
		return ""
	case 'n', '{', '[':
		return ""
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			return n.String()
		}
		return ""
	}
}

// ActiveLabel renders the active flag the way the table shows it
func (u User) ActiveLabel() string {
	if u.IsActive {
		return "yes"
	}
	return "no"
}
