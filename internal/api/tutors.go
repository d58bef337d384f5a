package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (q TutorsQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) ListTutors(ctx context.Context, q TutorsQuery) (*TutorsResponse, error) {
	var resp TutorsResponse
	err := c.doJSON(ctx, call{
		method: http.MethodGet,
		route:  "/api/tutors",
		path:   "/api/tutors",
		query:  q.values(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Tutors == nil {
		resp.Tutors = []TutorProfile{}
	}
	return &resp, nil
}

// GetTutor returns an *Error with IsNotFound set when the profile does not exist.
func (c *Client) GetTutor(ctx context.Context, id string) (*TutorProfile, error) {
	return getData[TutorProfile](ctx, c, call{
		method: http.MethodGet,
		route:  "/api/tutors/{id}",
		path:   "/api/tutors/" + url.PathEscape(id),
	})
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/api/categories",
		path:   "/api/categories",
	})
	if err != nil {
		return nil, err
	}
	return NormalizeList[Category](resp.body)
}

func (c *Client) GetMyStats(ctx context.Context) (*TutorStatsResponse, error) {
	stats, err := getData[TutorStatsResponse](ctx, c, call{
		method: http.MethodGet,
		route:  "/api/tutors/me/stats",
		path:   "/api/tutors/me/stats",
	})
	if err != nil {
		return nil, err
	}
	if stats.RecentBookings == nil {
		stats.RecentBookings = []Booking{}
	}
	if stats.RecentReviews == nil {
		stats.RecentReviews = []Review{}
	}
	return stats, nil
}

func (c *Client) UpdateMyProfile(ctx context.Context, payload UpdateTutorProfilePayload) (*TutorProfile, error) {
	return getData[TutorProfile](ctx, c, call{
		method: http.MethodPut,
		route:  "/api/tutors/me",
		path:   "/api/tutors/me",
		body:   payload,
	})
}
