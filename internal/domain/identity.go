package domain

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// GuestCartKey is the storage key of the cart used while nobody is logged in.
const GuestCartKey = "cart_guest"

const cartKeyPrefix = "cart_"

type Profile struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// UnmarshalJSON also accepts the backend's "_id", as a string or a number.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		MongoID json.RawMessage `json:"_id"`
		Email   string          `json:"email"`
		Name    string          `json:"name"`
		Role    Role            `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile{
		ID:    firstNonEmpty(rawID(raw.ID), rawID(raw.MongoID)),
		Email: strings.TrimSpace(raw.Email),
		Name:  raw.Name,
		Role:  raw.Role,
	}
	return nil
}

// Identity is the authenticated user. The zero value is the guest.
type Identity struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

func (i Identity) IsGuest() bool {
	return i.Token == ""
}

func (i Identity) IsAdmin() bool {
	return !i.IsGuest() && i.Profile.Role == RoleAdmin
}

// CartKey returns the storage key holding this identity's cart.
// Email wins over id so the key survives backends that omit ids.
func (i Identity) CartKey() string {
	if i.IsGuest() {
		return GuestCartKey
	}
	if email := strings.TrimSpace(i.Profile.Email); email != "" {
		return cartKeyPrefix + email
	}
	if id := strings.TrimSpace(i.Profile.ID); id != "" {
		return cartKeyPrefix + id
	}
	return GuestCartKey
}

// Guest is the sentinel returned when nobody is logged in.
var Guest = Identity{}
