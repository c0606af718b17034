package activity

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"billsplit/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetActivities returns a filtered page of the user's activity feed.
// @Summary		List activity events
// @Description	Returns the user's activity feed, newest first. Filters compose conjunctively: types (comma-separated), dateFrom/dateTo (epoch seconds, inclusive).
// @Tags		Activities
// @Security	BearerAuth
// @Param		limit		query	int		false	"Page size (default 20, max 100)"
// @Param		offset		query	int		false	"Offset into the ordered list (default 0)"
// @Param		types		query	string	false	"Comma-separated type filter"
// @Param		dateFrom	query	int		false	"Inclusive lower bound, epoch seconds"
// @Param		dateTo		query	int		false	"Inclusive upper bound, epoch seconds"
// @Success		200	{object}	ListResponse
// @Failure		401	{object}	map[string]interface{}
// @Failure		500	{object}	map[string]interface{}
// @Router		/activities [GET]
func (h *Handler) GetActivities(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	f := parseFilters(c)

	items, total, err := h.service.List(c.Request.Context(), userID, f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get activities")
		return
	}

	out := make([]*Response, len(items))
	for i := range items {
		out[i] = ResponseFromEntity(&items[i])
	}

	response.Success(c, http.StatusOK, ListResponse{
		Items:   out,
		Total:   total,
		HasMore: int64(f.Offset+len(out)) < total,
	})
}

// GetActivityCount returns the count under the same filters as the list.
// @Summary		Count activity events
// @Tags		Activities
// @Security	BearerAuth
// @Param		types		query	string	false	"Comma-separated type filter"
// @Param		dateFrom	query	int		false	"Inclusive lower bound, epoch seconds"
// @Param		dateTo		query	int		false	"Inclusive upper bound, epoch seconds"
// @Success		200	{object}	CountResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/activities/count [GET]
func (h *Handler) GetActivityCount(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	total, err := h.service.Count(c.Request.Context(), userID, parseFilters(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to count activities")
		return
	}

	response.Success(c, http.StatusOK, CountResponse{Total: total})
}

// RecordInternal is the service-to-service record endpoint, guarded by the
// internal token middleware.
func (h *Handler) RecordInternal(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}

	a, err := h.service.Record(c.Request.Context(), req.UserID, Type(req.Type), req.Metadata, req.Participants)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "RECORD_FAILED", "Failed to record activity")
		return
	}

	response.Success(c, http.StatusCreated, ResponseFromEntity(a))
}

// parseFilters reads the query defensively: unparseable values behave like
// an absent filter, and an inverted range simply matches nothing.
func parseFilters(c *gin.Context) Filters {
	f := Filters{Limit: 20}

	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			f.Limit = v
			if f.Limit > 100 {
				f.Limit = 100
			}
		}
	}

	if s := c.Query("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			f.Offset = v
		}
	}

	if s := c.Query("types"); s != "" {
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, Type(t))
			}
		}
	}

	if s := c.Query("dateFrom"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			from := time.Unix(v, 0)
			f.DateFrom = &from
		}
	}

	if s := c.Query("dateTo"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			to := time.Unix(v, 0)
			f.DateTo = &to
		}
	}

	return f
}
