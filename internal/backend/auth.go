package backend

import (
	"context"
	"net/http"
	"strings"
)

const (
	loginPath         = "/api/auth/login/"
	registerPath      = "/api/auth/register/"
	profilePath       = "/api/auth/profile/"
	profileUpdatePath = "/api/auth/profile/update/"
)

// Credentials are the transient login fields. They are never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is the login response. Only Access is required.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Registration carries the fields accepted by the registration endpoint.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2,omitempty"`
}

// Account is the acknowledgement returned after registration.
type Account struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile describes the signed-in user.
type Profile struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	WelcomeMessage string `json:"welcome_message,omitempty"`
	Message        string `json:"message,omitempty"`
}

// ProfileUpdate holds editable profile fields. Empty values are left unchanged by the backend.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	var pair TokenPair
	if err := c.Post(ctx, loginPath, creds, "", &pair); err != nil {
		return TokenPair{}, err
	}
	if strings.TrimSpace(pair.Access) == "" {
		return TokenPair{}, &APIError{
			Status:  http.StatusBadGateway,
			Message: "login response did not include an access token",
		}
	}
	return pair, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg Registration) (Account, error) {
	var acct Account
	if err := c.Post(ctx, registerPath, reg, "", &acct); err != nil {
		return Account{}, err
	}
	if acct.Email == "" {
		acct.Email = reg.Email
	}
	if acct.Username == "" {
		acct.Username = reg.Username
	}
	return acct, nil
}

// Profile fetches the profile of the token owner.
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var p Profile
	if err := c.Get(ctx, profilePath, token, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile changes username and/or email.
func (c *Client) UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) (Profile, error) {
	var p Profile
	if err := c.Put(ctx, profileUpdatePath, upd, token, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
