package authsdk

import (
	"context"
	"fmt"
)

// Session performs requests on behalf of one authenticated user.
type Session struct {
	client *SDKClient
	tokens TokenSource
}

// AccessToken returns the token the session would send next.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	token, err := s.tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("obtain access token: %w", err)
	}
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
