package api

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTutor   Role = "TUTOR"
	RoleAdmin   Role = "ADMIN"
)

// UnmarshalJSON accepts both the lower-case roles returned by the auth
// endpoints and the upper-case ones used everywhere else.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = Role(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Actionable reports whether the tutor may still request a transition for a
// booking in this status. Legality of the transition itself is decided by the API.
func (s BookingStatus) Actionable() bool {
	return s == BookingPending || s == BookingConfirmed
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Image string `json:"image,omitempty"`
}

type TutorUser struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
	Phone *string `json:"phone"`
}

type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

type AvailabilitySlot struct {
	ID             string `json:"id"`
	TutorProfileID string `json:"tutorProfileId"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	IsBooked       bool   `json:"isBooked"`
}

type ReviewStudent struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// Review.Rating is a decimal encoded as a string by the API.
type Review struct {
	ID             string         `json:"id"`
	Rating         string         `json:"rating"`
	Comment        *string        `json:"comment"`
	StudentID      string         `json:"studentId"`
	TutorProfileID string         `json:"tutorProfileId"`
	CreatedAt      string         `json:"createdAt"`
	Student        *ReviewStudent `json:"student,omitempty"`
}

type BookingStudent struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
	Email string  `json:"email"`
}

type Booking struct {
	ID             string           `json:"id"`
	StudentID      string           `json:"studentId"`
	TutorProfileID string           `json:"tutorProfileId"`
	SlotID         string           `json:"slotId"`
	Status         BookingStatus    `json:"status"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
	Slot           AvailabilitySlot `json:"slot"`
	Student        BookingStudent   `json:"student"`
}

type TutorProfile struct {
	ID           string             `json:"id"`
	UserID       string             `json:"userId"`
	Bio          *string            `json:"bio"`
	HourlyRate   float64            `json:"hourlyRate"`
	Experience   int                `json:"experience"`
	CategoryID   string             `json:"categoryId"`
	Rating       float64            `json:"rating"`
	TotalReviews int                `json:"totalReviews"`
	CreatedAt    string             `json:"createdAt"`
	UpdatedAt    string             `json:"updatedAt"`
	User         TutorUser          `json:"user"`
	Category     Category           `json:"category"`
	Availability []AvailabilitySlot `json:"availability,omitempty"`
	Reviews      []Review           `json:"reviews,omitempty"`
	Bookings     []Booking          `json:"bookings,omitempty"`
}

// TutorStats is computed by the API and must never be recalculated locally.
type TutorStats struct {
	TotalSessions  int     `json:"totalSessions"`
	Upcoming       int     `json:"upcoming"`
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	TotalEarnings  float64 `json:"totalEarnings"`
	AvailableSlots int     `json:"availableSlots"`
	Rating         float64 `json:"rating"`
	TotalReviews   int     `json:"totalReviews"`
}

type TutorStatsResponse struct {
	Stats          TutorStats   `json:"stats"`
	TutorProfile   TutorProfile `json:"tutorProfile"`
	RecentBookings []Booking    `json:"recentBookings"`
	RecentReviews  []Review     `json:"recentReviews"`
}

type TutorsQuery struct {
	Search     string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	Page       int
	Limit      int
}

type Pagination struct {
	TotalTutors int `json:"totalTutors"`
	Page        int `json:"page"`
	Limit       int `json:"limit"`
	TotalPages  int `json:"totalPages"`
}

type TutorsResponse struct {
	Tutors     []TutorProfile `json:"tutors"`
	Pagination Pagination     `json:"pagination"`
}

// UpdateTutorProfilePayload is a partial update: nil fields are not sent.
type UpdateTutorProfilePayload struct {
	Bio        *string  `json:"bio,omitempty"`
	HourlyRate *float64 `json:"hourlyRate,omitempty"`
	Experience *int     `json:"experience,omitempty"`
	CategoryID *string  `json:"categoryId,omitempty"`
}

type CreateAvailabilityPayload struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateBookingStatusRequest struct {
	Status BookingStatus `json:"status"`
}

type envelope[T any] struct {
	Data *T `json:"data"`
}
