package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/service"
)

// @Summary      List users
// @Description  Admin listing with role/approval/search filters
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        role     query string false "Filter by role"
// @Param        approved query bool   false "Filter by approval state"
// @Param        q        query string false "Search fragment"
// @Success      200  {array}  domain.User
// @Router       /admin/users [get]
func handleAdminListUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := domain.UserFilter{Search: q.Get("q")}
		if v := q.Get("role"); v != "" {
			role := domain.Role(v)
			if !role.Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown role"})
				return
			}
			f.Role = &role
		}
		if v := q.Get("approved"); v != "" {
			approved, err := strconv.ParseBool(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid approved filter"})
				return
			}
			f.Approved = &approved
		}
		f.Offset, _ = strconv.Atoi(q.Get("offset"))
		f.Limit, _ = strconv.Atoi(q.Get("limit"))

		users, err := userSvc.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// @Summary      List pending approvals
// @Description  Mentor and alumni accounts waiting for review
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /admin/approvals [get]
func handleAdminListApprovals(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userSvc.ListPendingApproval(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

type approvalRequest struct {
	Approve bool `json:"approve"`
}

// @Summary      Decide a pending approval
// @Description  Approval unlocks login; rejection deletes the account. The applicant is emailed either way
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Param        userID path int true "User ID"
// @Param        input body approvalRequest true "Decision"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/approvals/{userID} [put]
func handleAdminDecideApproval(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		var req approvalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if err := userSvc.Decide(r.Context(), id, req.Approve); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Delete a user
// @Description  Hard delete; the user's messages cascade
// @Tags         admin
// @Security     BearerAuth
// @Param        userID path int true "User ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{userID} [delete]
func handleAdminDeleteUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		if caller := CurrentUser(r); caller.ID == id {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot delete your own account"})
			return
		}
		if err := userSvc.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type announcementRequest struct {
	Message string `json:"message"`
}

// @Summary      Post a platform announcement
// @Description  One announcement notification per user, broadcast to connected clients
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body announcementRequest true "Announcement"
// @Success      201  {object}  map[string]int
// @Failure      400  {object}  map[string]string
// @Router       /admin/announcements [post]
func handleAdminAnnounce(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req announcementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		sent, err := userSvc.Announce(r.Context(), req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int{"sent": sent})
	}
}
