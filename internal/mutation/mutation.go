// Package mutation runs remote state changes the fire-and-report way: the
// change goes to the API, the user is told how it went, and on success the
// caller's view is reloaded from the server. Nothing is written locally.
package mutation

import (
	"context"
	"skillbridge/internal/api"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Run calls fn. On success it reports successMsg and calls refresh once; on
// failure it reports failureMsg and returns the error without refreshing.
// A nil refresh is allowed.
func Run(ctx context.Context, n Notifier, refresh func(), successMsg, failureMsg string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		n.Failure(failureMsg)
		return err
	}

	n.Success(successMsg)
	if refresh != nil {
		refresh()
	}
	return nil
}

const (
	StatusUpdated      = "Status updated"
	StatusUpdateFailed = "Failed to update status"
)

type BookingStatusUpdater interface {
	UpdateBookingStatus(ctx context.Context, bookingID string, status api.BookingStatus) error
}

type BookingStatusMutator struct {
	client BookingStatusUpdater
}

func NewBookingStatusMutator(client BookingStatusUpdater) *BookingStatusMutator {
	return &BookingStatusMutator{client: client}
}

// SetBookingStatus requests a transition for one booking. Callers only offer
// it for actionable bookings; whether the transition is legal is left to the
// API. The booking's displayed state only changes through refresh.
func (m *BookingStatusMutator) SetBookingStatus(ctx context.Context, n Notifier, refresh func(), bookingID string, status api.BookingStatus) error {
	return Run(ctx, n, refresh, StatusUpdated, StatusUpdateFailed, func(ctx context.Context) error {
		return m.client.UpdateBookingStatus(ctx, bookingID, status)
	})
}
