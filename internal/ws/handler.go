package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"unichat-backend/internal/security"
	"unichat-backend/internal/service"
)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
// Authenticates via Bearer token (Authorization header or
// Sec-WebSocket-Protocol), then dispatches client events:
//   - join-room / leave-room -> subscribe to a conversation room
//     (join is authorized against the conversation's participants)
//   - send-message           -> persist via MessageService, broadcast
//     new-message to the room and new-notification to recipients
//   - typing                 -> forward user-typing to the room, sender
//     excluded
func MakeHandler(
	hub *Hub,
	presence PresenceRegistry,
	tokens *security.TokenService,
	dir *service.UserDirectory,
	convs *service.ConversationService,
	msgs *service.MessageService,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			if authErr, ok := err.(wsAuthError); ok {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := dir.Resolve(ctx, userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hub.Register(user.ID, conn)
		if err := presence.Add(ctx, user.ID); err != nil {
			log.Printf("ws: presence add for %d: %v", user.ID, err)
		}
		defer func() {
			remaining := hub.Unregister(user.ID, conn)
			if remaining > 0 {
				// user still online through another connection
				return
			}
			if err := presence.Remove(context.Background(), user.ID); err != nil {
				log.Printf("ws: presence remove for %d: %v", user.ID, err)
			}
			hub.All(map[string]any{
				"type":    "user-offline",
				"user_id": user.ID,
				"name":    user.FullName(),
			})
		}()

		hub.All(map[string]any{
			"type":    "user-online",
			"user_id": user.ID,
			"name":    user.FullName(),
		})
		if online, err := presence.Online(ctx); err == nil {
			_ = conn.WriteJSON(map[string]any{
				"type":  "online-users",
				"users": online,
			})
		} else {
			log.Printf("ws: list online: %v", err)
		}

		for {
			var payload map[string]any
			if err := conn.ReadJSON(&payload); err != nil {
				break
			}
			evType, _ := payload["type"].(string)
			switch evType {

			// ── room membership ──────────────────────────────────────────────
			case "join-room":
				room, _ := payload["room"].(string)
				if room == "" {
					sendError(conn, "join-room requires a room")
					continue
				}
				if _, err := convs.Authorize(ctx, room, user.ID); err != nil {
					sendError(conn, "not allowed for this conversation")
					continue
				}
				hub.Join(room, conn)

			case "leave-room":
				room, _ := payload["room"].(string)
				if room == "" {
					continue
				}
				hub.Leave(room, conn)

			// ── send message ─────────────────────────────────────────────────
			case "send-message":
				room, _ := payload["room"].(string)
				body, _ := payload["body"].(string)
				if room == "" || strings.TrimSpace(body) == "" {
					sendError(conn, "send-message requires a room and a non-empty body")
					continue
				}
				res, err := msgs.Send(ctx, room, user.ID, body)
				if err != nil {
					log.Printf("ws: send message: %v", err)
					sendError(conn, "failed to send message")
					continue
				}
				// room broadcast happens in the service; nudge the
				// recipients' personal channels so unread badges update
				// even with the room closed
				ref, err := convs.Authorize(ctx, room, user.ID)
				if err == nil {
					hub.ToUsers(msgs.Recipients(ctx, ref, user.ID), map[string]any{
						"type":            "conversation-updated",
						"conversation_id": res.ConversationID,
					})
				}

			// ── typing indicator ─────────────────────────────────────────────
			case "typing":
				room, _ := payload["room"].(string)
				if room == "" {
					continue
				}
				if _, err := convs.Authorize(ctx, room, user.ID); err != nil {
					sendError(conn, "not allowed for this conversation")
					continue
				}
				hub.BroadcastRoom(room, conn, map[string]any{
					"type":    "user-typing",
					"room":    room,
					"user_id": user.ID,
					"name":    user.FullName(),
				})

			default:
				log.Printf("ws: unknown event type %q from user %d", evType, user.ID)
			}
		}
	}
}

func sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(map[string]any{
		"type":    "error",
		"message": msg,
	})
}
