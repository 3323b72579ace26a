package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/service"
)

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Bio       string `json:"bio"`

	Program        *string    `json:"program"`
	ProgramType    *string    `json:"program_type"`
	ExpectedGradAt *time.Time `json:"expected_grad_at"`
	OverallGPA     *float64   `json:"overall_gpa"`
	Proof          *string    `json:"proof"`

	GradAt     *time.Time `json:"grad_at"`
	CurrentJob *string    `json:"current_job"`

	Courses []domain.CourseEnrollment `json:"courses"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary      Register a new user
// @Description  Register with a role; mentors and alumni stay pending until an admin approves them
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body registerRequest true "Register input"
// @Success      201  {object}  domain.User
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /auth/register [post]
func handleRegister(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		user, err := authSvc.Register(r.Context(), service.RegisterInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Username:       req.Username,
			Email:          req.Email,
			Password:       req.Password,
			Role:           domain.Role(req.Role),
			Bio:            req.Bio,
			Program:        req.Program,
			ProgramType:    req.ProgramType,
			ExpectedGradAt: req.ExpectedGradAt,
			OverallGPA:     req.OverallGPA,
			Proof:          req.Proof,
			GradAt:         req.GradAt,
			CurrentJob:     req.CurrentJob,
			Courses:        req.Courses,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// @Summary      Login
// @Description  Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body loginRequest true "Login input"
// @Success      200  {object}  service.TokenResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/login [post]
func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// @Summary      Get Current User
// @Description  Get currently logged in user details
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
