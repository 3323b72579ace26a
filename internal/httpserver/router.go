package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"unichat-backend/internal/config"
	"unichat-backend/internal/domain"
	"unichat-backend/internal/email"
	"unichat-backend/internal/security"
	"unichat-backend/internal/service"
	"unichat-backend/internal/ws"

	_ "unichat-backend/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Repos bundles the store implementations; main picks postgres or sqlite.
type Repos struct {
	Users         domain.UserRepository
	DirectMsgs    domain.DirectMessageRepository
	GroupMsgs     domain.GroupMessageRepository
	Groups        domain.GroupRepository
	Notifications domain.NotificationRepository
}

// NewRouter constructs the main HTTP router and wires routes, services,
// and middleware.
func NewRouter(
	cfg *config.Config,
	repos Repos,
	hub *ws.Hub,
	presence ws.PresenceRegistry,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	mailer email.Sender,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	dir := service.NewUserDirectory(repos.Users)
	notifSvc := service.NewNotificationService(repos.Notifications, repos.Users, hub, cfg.ValidateNotificationRecipients)
	authSvc := service.NewAuthService(repos.Users, tokenSvc, passwordHasher, notifSvc, mailer)
	userSvc := service.NewUserService(repos.Users, notifSvc, mailer)
	convSvc := service.NewConversationService(repos.Users, repos.DirectMsgs, repos.Groups, repos.GroupMsgs, dir)
	msgSvc := service.NewMessageService(repos.DirectMsgs, repos.GroupMsgs, repos.Groups, convSvc, notifSvc, dir, hub)
	groupSvc := service.NewGroupService(repos.Groups, notifSvc, dir)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"UniChat API","version":"1.0.0","docs":"/docs"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, dir))

			r.Get("/auth/me", handleMe())

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Get("/search", handleSearchUsers(userSvc))
				r.Put("/me", handleUpdateProfile(userSvc))
				r.Get("/{userID}", handleGetUser(userSvc))
			})

			// Conversations and messages
			r.Get("/conversations", handleListConversations(convSvc))
			r.Route("/messages", func(r chi.Router) {
				r.Post("/", handleSendMessage(msgSvc))
				r.Get("/{conversationID}", handleGetMessages(convSvc))
				r.Post("/{conversationID}/read", handleMarkConversationRead(msgSvc))
				r.Post("/{conversationID}/{messageID}/like", handleToggleLike(msgSvc))
			})

			// Groups
			r.Route("/groups", func(r chi.Router) {
				r.Post("/", handleCreateGroup(groupSvc))
				r.Get("/", handleListGroups(groupSvc))
				r.Get("/{groupID}", handleGetGroup(groupSvc))
				r.Put("/{groupID}", handleUpdateGroup(groupSvc))
				r.Delete("/{groupID}", handleDeleteGroup(groupSvc))
				r.Get("/{groupID}/members", handleListMembers(groupSvc))
				r.Post("/{groupID}/members", handleAddMember(groupSvc))
				r.Delete("/{groupID}/members/{userID}", handleRemoveMember(groupSvc))
				r.Post("/{groupID}/leave", handleLeaveGroup(groupSvc))
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/{userID}", handleListNotifications(notifSvc))
				r.Put("/seen/{id}", handleMarkNotificationRead(notifSvc))
				r.Put("/seen-all/{userID}", handleMarkAllNotificationsRead(notifSvc))
				r.With(RequireAdmin).Post("/", handleCreateNotification(notifSvc))
			})

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/users", handleAdminListUsers(userSvc))
				r.Delete("/users/{userID}", handleAdminDeleteUser(userSvc))
				r.Get("/approvals", handleAdminListApprovals(userSvc))
				r.Put("/approvals/{userID}", handleAdminDecideApproval(userSvc))
				r.Post("/announcements", handleAdminAnnounce(userSvc))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, presence, tokenSvc, dir, convSvc, msgSvc, cfg.CORSOrigins))

	return r
}
