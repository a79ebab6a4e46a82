package directory

import (
	"encoding/json"
	"fmt"

	"github.com/chybatronik/goUsersTable/internal/models"
)

// Decode parses the nested payload: an array of countries, each holding an array of
// states, each holding an array of users.
func Decode(data []byte) ([]models.Country, error) {
	var countries []models.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return countries, nil
}

// Flatten lists every user in payload order: country order, then state order, then user
// order. Each record is tagged with the enclosing state's name and country's name,
// replacing whatever the user object carried in those fields.
func Flatten(countries []models.Country) []models.User {
	var n int
	for _, c := range countries {
		for _, s := range c.State {
			n += len(s.Users)
		}
	}

	users := make([]models.User, 0, n)
	for _, c := range countries {
		for _, s := range c.State {
			for _, u := range s.Users {
				u.State = s.Name
				u.Country = c.Country
				users = append(users, u)
			}
		}
	}
	return users
}

// DecodeUsers decodes and flattens a raw payload
func DecodeUsers(data []byte) ([]models.User, error) {
	countries, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Flatten(countries), nil
}
