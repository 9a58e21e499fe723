package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
)

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Login exchanges credentials for a user record and a bearer token.
func (c *Client) Login(ctx context.Context, name, password string) (*port.LoginResult, error) {
	const path = "/users/login"
	env, err := c.do(ctx, http.MethodPost, path, "", loginRequest{Name: name, Password: password})
	if err != nil {
		return nil, err
	}

	op := http.MethodPost + " " + path
	if env.Token == "" {
		return nil, &domain.ErrMalformed{Op: op, Reason: "missing token"}
	}
	if isAbsent(env.User) {
		return nil, &domain.ErrMalformed{Op: op, Reason: "missing user"}
	}

	var user domain.User
	if err := json.Unmarshal(env.User, &user); err != nil {
		return nil, &domain.ErrMalformed{Op: op, Reason: "user: " + err.Error()}
	}

	return &port.LoginResult{User: user, Token: env.Token, Message: env.Message}, nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/users", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.User]("GET /users", env)
}

func (c *Client) CreateUser(ctx context.Context, token string, u domain.NewUser) error {
	_, err := c.do(ctx, http.MethodPost, "/users", token, u)
	return err
}

// UpdateUser renames a user or changes their password; the remote API
// expects both fields on every call.
func (c *Client) UpdateUser(ctx context.Context, token string, userID int64, u domain.UserUpdate) error {
	_, err := c.do(ctx, http.MethodPut, userPath(userID), token, u)
	return err
}

func (c *Client) DeleteUser(ctx context.Context, token string, userID int64) error {
	_, err := c.do(ctx, http.MethodDelete, userPath(userID), token, nil)
	return err
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
