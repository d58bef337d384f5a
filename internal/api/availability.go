package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListMyAvailability(ctx context.Context) ([]AvailabilitySlot, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/api/tutor/availability",
		path:   "/api/tutor/availability",
	})
	if err != nil {
		return nil, err
	}
	return NormalizeList[AvailabilitySlot](resp.body)
}

func (c *Client) CreateAvailabilitySlot(ctx context.Context, payload CreateAvailabilityPayload) (*AvailabilitySlot, error) {
	return getData[AvailabilitySlot](ctx, c, call{
		method: http.MethodPost,
		route:  "/api/tutor/availability",
		path:   "/api/tutor/availability",
		body:   payload,
	})
}

func (c *Client) DeleteAvailabilitySlot(ctx context.Context, slotID string) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/api/tutor/availability/{slotId}",
		path:   "/api/tutor/availability/" + url.PathEscape(slotID),
	})
	return err
}
