package apiclient

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
)

// UserUpdate is the profile form. Password is only sent when set.
type UserUpdate struct {
	Name     string
	Email    string
	Password string
}

// GetUser loads a profile
func (c *Client) GetUser(ctx context.Context, id sessions.UserID) (*sessions.User, error) {
	if id == "" {
		return nil, errors.Wrapf(errors.ErrNotFound, "user without id")
	}
	var u sessions.User
	if _, err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id.String()), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser saves the profile as a multipart form
func (c *Client) UpdateUser(ctx context.Context, id sessions.UserID, update UserUpdate) error {
	if id == "" {
		return errors.Wrapf(errors.ErrNotFound, "user without id")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{{"name", update.Name}, {"email", update.Email}}
	if update.Password != "" {
		fields = append(fields, [2]string{"password", update.Password})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return errors.Wrapf(err, "write %s field", f[0])
		}
	}
	if err := mw.Close(); err != nil {
		return errors.Wrapf(err, "close profile form")
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/users/"+url.PathEscape(id.String()), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, err = c.do(req, nil)
	return err
}
