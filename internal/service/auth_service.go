package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/email"
	"unichat-backend/internal/security"
)

// AuthService handles registration and login.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
	notifs *NotificationService
	mail   email.Sender
}

func NewAuthService(
	users domain.UserRepository,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
	notifs *NotificationService,
	mail email.Sender,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
		notifs: notifs,
		mail:   mail,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Role      domain.Role
	Bio       string

	// Student / mentor fields
	Program        *string
	ProgramType    *string
	ExpectedGradAt *time.Time
	OverallGPA     *float64
	Proof          *string

	// Alumni fields
	GradAt     *time.Time
	CurrentJob *string

	Courses []domain.CourseEnrollment
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" ||
		strings.TrimSpace(in.Username) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		in.Password == "" {
		return fmt.Errorf("%w: first name, username, email and password are required", domain.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	switch in.Role {
	case domain.RoleStudent:
		if in.Program == nil || in.ExpectedGradAt == nil {
			return fmt.Errorf("%w: students need a program and an expected graduation date", domain.ErrInvalidInput)
		}
	case domain.RoleMentor:
		if in.OverallGPA == nil || in.Proof == nil {
			return fmt.Errorf("%w: mentors need a GPA and a proof document", domain.ErrInvalidInput)
		}
	case domain.RoleAlumni:
		if in.GradAt == nil || in.CurrentJob == nil {
			return fmt.Errorf("%w: alumni need a graduation date and a current job", domain.ErrInvalidInput)
		}
	}
	return nil
}

// Register creates an account. Students and admins are active right away;
// mentors and alumni stay locked until an admin approves them. Course-peer
// notifications and the welcome email are best-effort side effects.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Username:       strings.TrimSpace(in.Username),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		HashedPassword: hashed,
		Role:           in.Role,
		Bio:            in.Bio,
		IsApproved:     !in.Role.RequiresApproval(),
		Program:        in.Program,
		ProgramType:    in.ProgramType,
		ExpectedGradAt: in.ExpectedGradAt,
		OverallGPA:     in.OverallGPA,
		Proof:          in.Proof,
		GradAt:         in.GradAt,
		CurrentJob:     in.CurrentJob,
		Courses:        in.Courses,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email or username already registered", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notifs.NotifyCoursePeers(ctx, user)

	if err := s.mail.SendWelcome(ctx, user.Email, user.FullName(), !user.IsApproved); err != nil {
		log.Printf("welcome email to %s: %v", user.Email, err)
	}

	return user, nil
}

// Login authenticates by email and password. Mentors and alumni that are
// still pending approval cannot log in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if !user.IsApproved {
		return nil, fmt.Errorf("%w: account is pending admin approval", domain.ErrForbidden)
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}
