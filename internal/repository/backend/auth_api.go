package backend

import (
	"context"
	"net/http"

	"go-jobboard-client/internal/domain"
)

type authAPI struct {
	*Client
}

func NewAuthAPI(c *Client) domain.AuthAPI {
	return &authAPI{Client: c}
}

func (a *authAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	data, err := a.do(ctx, call{
		method:   http.MethodPost,
		path:     "/v1/auth/login",
		endpoint: "POST /v1/auth/login",
		body:     req,
	})
	if err != nil {
		return nil, err
	}
	var result domain.LoginResult
	if err := a.decodeObject("auth.login", data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
