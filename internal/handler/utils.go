package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/utils"
	"time"

	"github.com/go-chi/chi/v5"
)

var ErrBadRequest = errors.New("bad request")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// mapErr turns an API client error into the status of the page we answer
// with. An unreachable API is a bad gateway, not our own failure.
func mapErr(err error) int {
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, utils.ErrCircuitOpen) {
		return http.StatusServiceUnavailable
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	if apiErr, ok := api.AsError(err); ok {
		switch {
		case apiErr.IsValidationError():
			return http.StatusBadRequest
		case apiErr.StatusCode == http.StatusConflict:
			return http.StatusConflict
		case apiErr.IsForbidden():
			return http.StatusForbidden
		case apiErr.IsNotFound():
			return http.StatusNotFound
		case apiErr.IsUnauthorized():
			return http.StatusUnauthorized
		case apiErr.StatusCode >= 500:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(map[string]string{"error": message})
	w.Write(resp)
}

func parsePathParam(r *http.Request, key string) (string, error) {
	val := chi.URLParam(r, key)
	if val == "" {
		return "", fmt.Errorf("%w: missing path param: %s", ErrBadRequest, key)
	}
	return val, nil
}

// cached returns the JSON stored under key, or loads, stores and returns it.
// Cache failures are never fatal.
func cached[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if data, ok := c.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.Delete(ctx, key)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, data, ttl)
	}
	return v, nil
}

const categoriesKey = "categories"

func buildTutorKey(id string) string {
	return "tutor:" + id
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
