package notification

import "time"

// Response for API responses and live pushes
type Response struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *string        `json:"read_at,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ResponseFromEntity converts entity to response DTO
func ResponseFromEntity(n *Notification) *Response {
	resp := &Response{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.GetData(),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}

	if n.ReadAt.Valid {
		readAt := n.ReadAt.Time.Format(time.RFC3339)
		resp.ReadAt = &readAt
	}

	return resp
}

// ListResponse for the list endpoint: hasMore = offset + len(items) < total.
type ListResponse struct {
	Items   []*Response `json:"items"`
	Total   int64       `json:"total"`
	HasMore bool        `json:"hasMore"`
}

// CreateRequest for the internal create endpoint
type CreateRequest struct {
	UserID    int64          `json:"user_id" binding:"required"`
	Type      string         `json:"type" binding:"required"`
	Title     string         `json:"title" binding:"required"`
	Body      string         `json:"body,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	DedupeKey string         `json:"dedupe_key,omitempty"`
}
