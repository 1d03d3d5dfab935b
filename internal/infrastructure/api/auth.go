package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/optica/admin/internal/domain/identity"
)

// LoginResult is the user and token issued by login or register
type LoginResult struct {
	User  identity.User
	Token string
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, creds identity.Credentials) (LoginResult, error) {
	return c.authenticate(ctx, "/login", creds)
}

// Register creates an account and signs it in
func (c *Client) Register(ctx context.Context, reg identity.Registration) (LoginResult, error) {
	return c.authenticate(ctx, "/register", reg)
}

// Logout revokes the current token on the server
func (c *Client) Logout(ctx context.Context) error {
	req, _ := jsonRequest(http.MethodPost, "/logout", nil)
	_, err := c.do(ctx, req)
	return err
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (LoginResult, error) {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return LoginResult{}, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return LoginResult{}, err
	}

	res := LoginResult{Token: env.Token}
	userRaw := env.User
	if res.Token == "" || len(userRaw) == 0 {
		// some deployments nest the pair under data
		var nested struct {
			Token string          `json:"token"`
			User  json.RawMessage `json:"user"`
		}
		if err := decodeObject(env.Data, &nested); err == nil {
			if res.Token == "" {
				res.Token = nested.Token
			}
			if len(userRaw) == 0 {
				userRaw = nested.User
			}
		}
	}
	if res.Token == "" {
		return LoginResult{}, &Error{Method: http.MethodPost, Path: path, StatusCode: http.StatusOK, Message: "response carried no token"}
	}
	if err := decodeObject(userRaw, &res.User); err != nil {
		return LoginResult{}, fmt.Errorf("decoding user: %w", err)
	}
	return res, nil
}
