package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unichat-backend/internal/service"
)

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Body           string `json:"body"`
}

// @Summary      Send a message
// @Description  Persist a message and fan out notifications; the result exposes partial fan-out
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body sendMessageRequest true "Message"
// @Success      201  {object}  service.SendResult
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /messages [post]
func handleSendMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		res, err := msgSvc.Send(r.Context(), req.ConversationID, user.ID, req.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// @Summary      Mark a conversation read
// @Description  Records the caller's read receipt for everything currently in the conversation
// @Tags         messages
// @Security     BearerAuth
// @Param        conversationID path string true "Conversation ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /messages/{conversationID}/read [post]
func handleMarkConversationRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if err := msgSvc.MarkConversationRead(r.Context(), chi.URLParam(r, "conversationID"), user.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Toggle a like on a message
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        conversationID path string true "Conversation ID"
// @Param        messageID      path int    true "Message ID"
// @Success      200  {object}  map[string]bool
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{conversationID}/{messageID}/like [post]
func handleToggleLike(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}
		liked, err := msgSvc.ToggleLike(r.Context(), chi.URLParam(r, "conversationID"), messageID, user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
	}
}
