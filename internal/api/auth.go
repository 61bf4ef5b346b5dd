package api

import (
	"context"
	"net/http"

	"pawhub/internal/models"
	"pawhub/internal/platform/tracer"
)

// Credentials are what the login endpoints accept.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is what the customer sign-up endpoint accepts.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Login authenticates as kind: POST /auth/{kind}/login.
func (c *Client) Login(ctx context.Context, kind models.SessionKind, creds Credentials) (models.Session, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanAPILogin, tracer.String(tracer.AttrKind, string(kind)))
	var out models.LoginResponse
	err := c.do(ctx, "auth", http.MethodPost, "/auth/"+string(kind)+"/login", nil, creds, &out)
	span.End(err)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{Kind: kind, AccessToken: out.AccessToken, Profile: out.Profile}, nil
}

// Register creates a customer account and signs it in: POST /auth/user/register.
func (c *Client) Register(ctx context.Context, reg Registration) (models.Session, error) {
	var out models.LoginResponse
	if err := c.do(ctx, "auth", http.MethodPost, "/auth/user/register", nil, reg, &out); err != nil {
		return models.Session{}, err
	}
	return models.Session{Kind: models.SessionUser, AccessToken: out.AccessToken, Profile: out.Profile}, nil
}
