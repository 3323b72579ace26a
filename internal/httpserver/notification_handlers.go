package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/service"
)

// mailbox routes take an explicit user ID; only the owner or an admin may
// touch someone's mailbox
func mailboxUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	caller := CurrentUser(r)
	if caller.ID != id && caller.Role != domain.RoleAdmin {
		return 0, false
	}
	return id, true
}

// @Summary      List notifications
// @Description  The user's mailbox, newest first
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200  {array}  domain.Notification
// @Failure      403  {object}  map[string]string
// @Router       /notifications/{userID} [get]
func handleListNotifications(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mailboxUserID(r)
		if !ok {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not your mailbox"})
			return
		}
		notifs, err := notifSvc.List(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, notifs)
	}
}

// @Summary      Mark a notification read
// @Description  Idempotent; unknown IDs are 404
// @Tags         notifications
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /notifications/seen/{id} [put]
func handleMarkNotificationRead(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
			return
		}
		if err := notifSvc.MarkRead(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Mark all notifications read
// @Description  Returns how many notifications changed (zero on repeat)
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200  {object}  map[string]int64
// @Failure      403  {object}  map[string]string
// @Router       /notifications/seen-all/{userID} [put]
func handleMarkAllNotificationsRead(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mailboxUserID(r)
		if !ok {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not your mailbox"})
			return
		}
		n, err := notifSvc.MarkAllRead(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
	}
}

type createNotificationRequest struct {
	UserID      int64  `json:"user_id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	RelatedKind string `json:"related_kind"`
	RelatedID   int64  `json:"related_id"`
}

// @Summary      Create a notification
// @Description  Admin-only direct mailbox write
// @Tags         notifications
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body createNotificationRequest true "Notification"
// @Success      201  {object}  domain.Notification
// @Failure      400  {object}  map[string]string
// @Router       /notifications [post]
func handleCreateNotification(notifSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		n, err := notifSvc.Create(r.Context(), req.UserID,
			domain.NotificationType(req.Type), req.Message,
			domain.RelatedEntity{Kind: domain.RelatedKind(req.RelatedKind), ID: req.RelatedID})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}
