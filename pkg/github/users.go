package github

import (
	"context"
	"encoding/json"
	"fmt"
)

// UsersService resolves account information.
type UsersService interface {
	Me(ctx context.Context) (User, error)
}

type usersService struct {
	client *Client
}

// Me returns the account the token belongs to. It doubles as a token check.
func (s *usersService) Me(ctx context.Context) (User, error) {
	respData, err := s.client.DoRequest(ctx, "GET", "/user", nil)
	if err != nil {
		return User{}, fmt.Errorf("get authenticated user: %w", err)
	}
	var u User
	if err := json.Unmarshal(respData, &u); err != nil {
		return User{}, fmt.Errorf("get authenticated user: unmarshal: %w", err)
	}
	return u, nil
}
