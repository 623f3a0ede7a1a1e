package client

import (
	"context"
	"net/http"

	"unihub-board/internal/dto"
	"unihub-board/internal/model"
)

// Login POST /auth/login
// 响应缺少 token 时不报错，由调用方决定如何提示
func (c *Client) Login(ctx context.Context, payload *dto.LoginRequest) (*model.AuthResult, error) {
	body, err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var w wireAuth
	if err := decode("login", body, &w); err != nil {
		return nil, err
	}
	return w.toModel(), nil
}

// Register POST /auth/register
func (c *Client) Register(ctx context.Context, payload *dto.RegisterRequest) (*model.AuthResult, error) {
	body, err := c.do(ctx, request{
		op:     "register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var w wireAuth
	if err := decode("register", body, &w); err != nil {
		return nil, err
	}
	return w.toModel(), nil
}

// GetProfile GET /user/profile
func (c *Client) GetProfile(ctx context.Context, token string) (*model.UserProfile, error) {
	body, err := c.do(ctx, request{
		op:     "get_profile",
		method: http.MethodGet,
		path:   "/user/profile",
		token:  token,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	var w wireProfile
	if err := decode("get_profile", unwrapObject(body, "user", "profile"), &w); err != nil {
		return nil, err
	}
	p := w.toModel()
	return &p, nil
}
