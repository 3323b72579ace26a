package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unichat-backend/internal/service"
)

type groupRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsPrivate   bool    `json:"is_private"`
	MemberIDs   []int64 `json:"member_ids"`
}

func groupIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	return id, err == nil && id > 0
}

// @Summary      Create a group
// @Description  The creator is always a member; every added member is notified
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body groupRequest true "Group"
// @Success      201  {object}  domain.Group
// @Failure      400  {object}  map[string]string
// @Router       /groups [post]
func handleCreateGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req groupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		g, err := groupSvc.Create(r.Context(), user.ID, service.GroupCreateInput{
			Name:        req.Name,
			Description: req.Description,
			IsPrivate:   req.IsPrivate,
			MemberIDs:   req.MemberIDs,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

// @Summary      List my groups
// @Tags         groups
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.Group
// @Router       /groups [get]
func handleListGroups(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		groups, err := groupSvc.ListForUser(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

// @Summary      Get a group
// @Tags         groups
// @Security     BearerAuth
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Success      200  {object}  domain.Group
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /groups/{groupID} [get]
func handleGetGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		g, err := groupSvc.Get(r.Context(), id, user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// @Summary      Update a group
// @Description  Creator only
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Param        input body groupRequest true "Group fields"
// @Success      200  {object}  domain.Group
// @Failure      403  {object}  map[string]string
// @Router       /groups/{groupID} [put]
func handleUpdateGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		var req groupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		g, err := groupSvc.Update(r.Context(), id, user.ID, service.GroupUpdateInput{
			Name:        req.Name,
			Description: req.Description,
			IsPrivate:   req.IsPrivate,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// @Summary      Delete a group
// @Description  Creator only; cascades membership and messages
// @Tags         groups
// @Security     BearerAuth
// @Param        groupID path int true "Group ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /groups/{groupID} [delete]
func handleDeleteGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		if err := groupSvc.Delete(r.Context(), id, user.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type addMemberRequest struct {
	UserID int64 `json:"user_id"`
}

// @Summary      Add a group member
// @Description  Creator only; Conflict when already a member
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Param        groupID path int true "Group ID"
// @Param        input body addMemberRequest true "Member"
// @Success      204
// @Failure      409  {object}  map[string]string
// @Router       /groups/{groupID}/members [post]
func handleAddMember(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		var req addMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
			return
		}
		if err := groupSvc.AddMember(r.Context(), id, user.ID, req.UserID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Remove a group member
// @Description  Creator, or the member removing themself; the creator can never be removed
// @Tags         groups
// @Security     BearerAuth
// @Param        groupID path int true "Group ID"
// @Param        userID  path int true "User ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /groups/{groupID}/members/{userID} [delete]
func handleRemoveMember(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		target, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		if err := groupSvc.RemoveMember(r.Context(), id, user.ID, target); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Leave a group
// @Description  Non-creator members only; the creator must delete the group instead
// @Tags         groups
// @Security     BearerAuth
// @Param        groupID path int true "Group ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /groups/{groupID}/leave [post]
func handleLeaveGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		if err := groupSvc.Leave(r.Context(), id, user.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      List group members
// @Tags         groups
// @Security     BearerAuth
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Success      200  {array}  domain.User
// @Failure      403  {object}  map[string]string
// @Router       /groups/{groupID}/members [get]
func handleListMembers(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := groupIDParam(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group id"})
			return
		}
		members, err := groupSvc.ListMembers(r.Context(), id, user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}
