package api

import (
	"context"
	"net/http"
)

// CurrentUser asks the auth service who owns the forwarded session.
// A successful response without a user yields (nil, nil).
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var env envelope[User]
	err := c.doJSON(ctx, call{
		method: http.MethodGet,
		route:  "/api/auth/me",
		path:   "/api/auth/me",
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Login returns the cookies the auth service set for the new session.
func (c *Client) Login(ctx context.Context, req LoginRequest) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/api/auth/login",
		path:   "/api/auth/login",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return resp.cookies, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/api/auth/register",
		path:   "/api/auth/register",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return resp.cookies, nil
}

// Logout returns the cookies the auth service sent to clear the session.
func (c *Client) Logout(ctx context.Context) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/api/auth/logout",
		path:   "/api/auth/logout",
		body:   struct{}{},
	})
	if err != nil {
		return nil, err
	}
	return resp.cookies, nil
}
