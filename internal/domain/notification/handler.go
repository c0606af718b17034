package notification

import (
	"errors"
	"net/http"
	"strconv"

	"billsplit/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications returns a page of the current user's notifications.
// @Summary		List notifications
// @Description	Returns the user's notifications, newest first. Supports limit/offset pagination and an unreadOnly filter.
// @Tags		Notifications
// @Security	BearerAuth
// @Param		limit		query	int		false	"Page size (default 20, max 100)"
// @Param		offset		query	int		false	"Offset into the ordered list (default 0)"
// @Param		unreadOnly	query	bool	false	"Only notifications without read_at"
// @Success		200	{object}	ListResponse
// @Failure		401	{object}	map[string]interface{}
// @Failure		500	{object}	map[string]interface{}
// @Router		/notifications [GET]
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
			if limit > 100 {
				limit = 100
			}
		}
	}

	offset := 0
	if s := c.Query("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	unreadOnly := c.Query("unreadOnly") == "true" || c.Query("unreadOnly") == "1"

	items, total, err := h.service.List(c.Request.Context(), userID, limit, offset, unreadOnly)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notifications")
		return
	}

	out := make([]*Response, len(items))
	for i := range items {
		out[i] = ResponseFromEntity(&items[i])
	}

	response.Success(c, http.StatusOK, ListResponse{
		Items:   out,
		Total:   total,
		HasMore: int64(offset+len(out)) < total,
	})
}

// GetCounts returns the derived counters for the current user.
// @Summary		Notification counts
// @Description	Returns total and unread counts, recomputed from the store on every call.
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	Counts
// @Failure		401	{object}	map[string]interface{}
// @Failure		500	{object}	map[string]interface{}
// @Router		/notifications/count [GET]
func (h *Handler) GetCounts(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	counts, err := h.service.Counts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get counts")
		return
	}

	response.Success(c, http.StatusOK, counts)
}

// MarkAsRead marks one notification as read.
// @Summary		Mark notification as read
// @Description	Sets read_at on the user's notification. Idempotent: marking an already-read notification returns it unchanged.
// @Tags		Notifications
// @Security	BearerAuth
// @Param		id	path	int	true	"Notification ID"
// @Success		200	{object}	Response
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/notifications/{id}/read [PUT]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	n, err := h.service.MarkAsRead(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark as read")
		return
	}

	response.Success(c, http.StatusOK, ResponseFromEntity(n))
}

// MarkAllAsRead marks every unread notification of the user as read.
// @Summary		Mark all as read
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/notifications/read-all [PUT]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	if err := h.service.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark all as read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "all_read"})
}

// DeleteNotification removes a notification.
// @Summary		Delete notification
// @Description	Hard delete. Deleting a missing id succeeds: delete is idempotent by policy.
// @Tags		Notifications
// @Security	BearerAuth
// @Param		id	path	int	true	"Notification ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/notifications/{id} [DELETE]
func (h *Handler) DeleteNotification(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete notification")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// CreateInternal is the service-to-service create endpoint, guarded by the
// internal token middleware. The expense/settlement services call it to
// trigger notifications.
func (h *Handler) CreateInternal(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}

	n := &Notification{
		UserID: req.UserID,
		Type:   Type(req.Type),
		Title:  req.Title,
		Body:   req.Body,
	}
	if req.DedupeKey != "" {
		n.DedupeKey = &req.DedupeKey
	}
	if err := n.SetData(req.Data); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_DATA", "Payload is not serializable")
		return
	}

	if err := h.service.Create(c.Request.Context(), n); err != nil {
		if errors.Is(err, ErrDuplicateNotification) {
			response.Success(c, http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create notification")
		return
	}

	response.Success(c, http.StatusCreated, ResponseFromEntity(n))
}
