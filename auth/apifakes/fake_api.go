package fakeapi

import (
	"context"
	"strconv"
	"sync"

	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/auth"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
)

var _ auth.API = (*FakeAPI)(nil)

// FakeAPI is an in-memory account API. Users are keyed by email.
type FakeAPI struct {
	lock      sync.Mutex
	users     map[string]*fakeUser
	nextID    int
	Calls     []string
	Updates   []apiclient.UserUpdate
	FailNext  error
	ResetMsgs []string
}

type fakeUser struct {
	user     sessions.User
	password string
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		users:  make(map[string]*fakeUser),
		nextID: 1,
	}
}

// AddUser seeds an account
func (f *FakeAPI) AddUser(name, email, password string) sessions.User {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.addLocked(name, email, password)
}

func (f *FakeAPI) addLocked(name, email, password string) sessions.User {
	u := sessions.User{ID: sessions.UserID(strconv.Itoa(f.nextID)), Name: name, Email: email}
	f.nextID++
	f.users[email] = &fakeUser{user: u, password: password}
	return u
}

func (f *FakeAPI) record(call string) error {
	f.Calls = append(f.Calls, call)
	if err := f.FailNext; err != nil {
		f.FailNext = nil
		return err
	}
	return nil
}

func (f *FakeAPI) Login(ctx context.Context, req apiclient.LoginRequest) (*sessions.LoginPayload, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("login"); err != nil {
		return nil, err
	}
	u, ok := f.users[req.Email]
	if !ok || u.password != req.Password {
		return nil, &apiclient.APIError{Status: 401, Message: "Invalid credentials"}
	}
	user := u.user
	return &sessions.LoginPayload{AccessToken: "token-" + user.ID.String(), RefreshToken: "refresh-" + user.ID.String(), User: &user}, nil
}

func (f *FakeAPI) Register(ctx context.Context, req apiclient.RegisterRequest) (*sessions.LoginPayload, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("register"); err != nil {
		return nil, err
	}
	if _, exists := f.users[req.Email]; exists {
		return nil, &apiclient.APIError{Status: 422, Message: "Email already taken"}
	}
	user := f.addLocked(req.Name, req.Email, req.Password)
	return &sessions.LoginPayload{AccessToken: "token-" + user.ID.String(), User: &user}, nil
}

func (f *FakeAPI) ForgotPassword(ctx context.Context, email string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return "", f.record("forgot-password")
}

func (f *FakeAPI) ResetPassword(ctx context.Context, req apiclient.ResetPasswordRequest) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("password-reset"); err != nil {
		return "", err
	}
	if len(f.ResetMsgs) > 0 {
		msg := f.ResetMsgs[0]
		f.ResetMsgs = f.ResetMsgs[1:]
		return msg, nil
	}
	return "", nil
}

func (f *FakeAPI) GetUser(ctx context.Context, id sessions.UserID) (*sessions.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("get-user"); err != nil {
		return nil, err
	}
	for _, u := range f.users {
		if u.user.ID == id {
			user := u.user
			return &user, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404, Message: "User not found", Err: errors.ErrNotFound}
}

func (f *FakeAPI) UpdateUser(ctx context.Context, id sessions.UserID, update apiclient.UserUpdate) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.record("update-user"); err != nil {
		return err
	}
	f.Updates = append(f.Updates, update)
	for email, u := range f.users {
		if u.user.ID != id {
			continue
		}
		delete(f.users, email)
		u.user.Name = update.Name
		u.user.Email = update.Email
		if update.Password != "" {
			u.password = update.Password
		}
		f.users[update.Email] = u
		return nil
	}
	return &apiclient.APIError{Status: 404, Message: "User not found"}
}
