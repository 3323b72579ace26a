package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unichat-backend/internal/service"
)

// @Summary      Search users
// @Description  Find users by name or email fragment
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        q     query string true  "Search query"
// @Param        limit query int    false "Max results"
// @Success      200  {array}  domain.User
// @Router       /users/search [get]
func handleSearchUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		users, err := userSvc.Search(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// @Summary      Get a user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /users/{userID} [get]
func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		user, err := userSvc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

type profileUpdateRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Bio         string  `json:"bio"`
	Program     *string `json:"program"`
	ProgramType *string `json:"program_type"`
	CurrentJob  *string `json:"current_job"`
}

// @Summary      Update own profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body profileUpdateRequest true "Profile fields"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  map[string]string
// @Router       /users/me [put]
func handleUpdateProfile(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		updated, err := userSvc.UpdateProfile(r.Context(), user.ID, service.ProfileUpdateInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Bio:         req.Bio,
			Program:     req.Program,
			ProgramType: req.ProgramType,
			CurrentJob:  req.CurrentJob,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}
