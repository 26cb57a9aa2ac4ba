package domain

import (
	"encoding/json"
	"fmt"
)

// User es la identidad devuelta por la API tras un login.
// Los atributos que el cliente no modela se conservan en Extra para que
// sobrevivan a un ciclo de persistencia.
type User struct {
	ID    string
	Name  string
	Email string
	Extra map[string]json.RawMessage
}

func (u User) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(u.Extra)+3)
	for k, v := range u.Extra {
		fields[k] = v
	}
	fields["_id"] = u.ID
	if u.Name != "" {
		fields["name"] = u.Name
	}
	if u.Email != "" {
		fields["email"] = u.Email
	}
	return json.Marshal(fields)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	var out User
	for key, value := range raw {
		var target *string
		switch key {
		case "_id":
			target = &out.ID
		case "name":
			target = &out.Name
		case "email":
			target = &out.Email
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = value
			continue
		}
		if string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			return fmt.Errorf("user field %s: %w", key, err)
		}
	}
	*u = out
	return nil
}
