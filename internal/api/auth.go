package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/safar/pizza-storefront/internal/models"
)

// Token is the credential exchange response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	var token Token
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{Email: email, Password: password}, &token)
	if err != nil {
		return Token{}, fmt.Errorf("login: %w", err)
	}
	return token, nil
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, credentials{Email: email, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Me fetches the profile behind the current bearer token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	user := &models.User{}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, user); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return user, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{oldPassword, newPassword}

	if err := c.do(ctx, http.MethodPost, "/auth/change-password", nil, body, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{email}

	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, body, nil); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}{token, newPassword}

	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, body, nil); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// VerifyEmail confirms an address using the token from the verification
// mail. The token travels as a query parameter, not a body field.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	query := url.Values{"token": {token}}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-email", query, nil, nil); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

// CreateEmployee registers a back-office account. Admin only; the backend
// enforces the role.
func (c *Client) CreateEmployee(ctx context.Context, email, password string) error {
	err := c.do(ctx, http.MethodPost, "/auth/create-user", nil, credentials{Email: email, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}
