package sessions

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
)

// User is the profile snapshot kept alongside the access token
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserID accepts both numeric and string ids from the API. Ids in canonical
// integer form are written back as JSON numbers, everything else as a string.
type UserID string

func (id UserID) String() string {
	return string(id)
}

func (id UserID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(errors.ErrInvalidUserRecord, "id must be a string or number")
	}
	*id = UserID(n.String())
	return nil
}

// DecodeUser parses a persisted user value. Only a JSON object is a valid
// profile: bare strings, numbers, arrays, null and malformed JSON are rejected
// with ErrInvalidUserRecord.
func DecodeUser(raw string) (*User, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, errors.Wrapf(errors.ErrInvalidUserRecord, "not a keyed record")
	}

	var u User
	if err := json.Unmarshal([]byte(trimmed), &u); err != nil {
		if errors.Is(err, errors.ErrInvalidUserRecord) {
			return nil, err
		}
		return nil, errors.Wrapf(errors.ErrInvalidUserRecord, "decode: %v", err)
	}
	return &u, nil
}

// EncodeUser serialises a profile for persistence
func EncodeUser(u *User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
