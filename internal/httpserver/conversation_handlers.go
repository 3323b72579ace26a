package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"unichat-backend/internal/service"
)

// @Summary      List conversations
// @Description  Direct and group conversations merged, newest activity first
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  service.Conversation
// @Router       /conversations [get]
func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		convs, err := convSvc.ListConversations(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

// @Summary      Get conversation history
// @Description  Ascending message history with sender names resolved
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        conversationID path string true "Conversation ID"
// @Success      200  {array}  service.Message
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{conversationID} [get]
func handleGetMessages(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		msgs, err := convSvc.GetMessages(r.Context(), chi.URLParam(r, "conversationID"), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}
