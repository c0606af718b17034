package activity

import "time"

// Response for API responses and live echoes
type Response struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ResponseFromEntity converts entity to response DTO
func ResponseFromEntity(a *Activity) *Response {
	return &Response{
		ID:        a.ID,
		UserID:    a.UserID,
		Type:      string(a.Type),
		Metadata:  a.GetMetadata(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// ListResponse for the list endpoint: hasMore = offset + len(items) < total.
type ListResponse struct {
	Items   []*Response `json:"items"`
	Total   int64       `json:"total"`
	HasMore bool        `json:"hasMore"`
}

// CountResponse for the count endpoint
type CountResponse struct {
	Total int64 `json:"total"`
}

// RecordRequest for the internal record endpoint
type RecordRequest struct {
	UserID       int64          `json:"user_id" binding:"required"`
	Type         string         `json:"type" binding:"required"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Participants []int64        `json:"participants,omitempty"`
}
