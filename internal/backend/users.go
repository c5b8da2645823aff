package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// AuthResult is the login/register response. User is nil when the
// backend left it out.
type AuthResult struct {
	Token   string          `json:"token"`
	User    *domain.Profile `json:"user"`
	Message string          `json:"message"`
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/users/login", credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/users/register", credentials{Name: name, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, creds credentials) (AuthResult, error) {
	data, err := c.do(ctx, http.MethodPost, c.authURL+path, creds)
	if err != nil {
		return AuthResult{}, err
	}
	return decodeOne[AuthResult](data, "data")
}
