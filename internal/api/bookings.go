package api

import (
	"context"
	"net/http"
	"net/url"
)

// UpdateBookingStatus asks the API to move a booking to status. Whether the
// transition is allowed is decided by the API alone.
func (c *Client) UpdateBookingStatus(ctx context.Context, bookingID string, status BookingStatus) error {
	_, err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/api/bookings/{id}/status",
		path:   "/api/bookings/" + url.PathEscape(bookingID) + "/status",
		body:   updateBookingStatusRequest{Status: status},
	})
	return err
}
