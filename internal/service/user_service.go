package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/email"
)

// UserService covers profiles, user search and the admin moderation
// surface (approvals, deletion, announcements).
type UserService struct {
	users  domain.UserRepository
	notifs *NotificationService
	mail   email.Sender
}

func NewUserService(users domain.UserRepository, notifs *NotificationService, mail email.Sender) *UserService {
	return &UserService{users: users, notifs: notifs, mail: mail}
}

// Get returns a user's profile with enrollments attached.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	courses, err := s.users.ListEnrollments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	u.Courses = courses
	return u, nil
}

type ProfileUpdateInput struct {
	FirstName   string
	LastName    string
	Bio         string
	Program     *string
	ProgramType *string
	CurrentJob  *string
}

// UpdateProfile lets a user edit their own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdateInput) (*domain.User, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Bio = in.Bio
	if in.Program != nil {
		u.Program = in.Program
	}
	if in.ProgramType != nil {
		u.ProgramType = in.ProgramType
	}
	if in.CurrentJob != nil {
		u.CurrentJob = in.CurrentJob
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// Search finds users by name or email fragment, for member pickers.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.User{}, nil
	}
	users, err := s.users.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// List is the admin user listing with role/approval filters.
func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]*domain.User, error) {
	users, err := s.users.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// ListPendingApproval returns mentor/alumni accounts waiting for review.
func (s *UserService) ListPendingApproval(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.ListPendingApproval(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// Decide approves or rejects a pending account. Approval unlocks login;
// rejection hard-deletes the account. Either way the applicant is emailed.
func (s *UserService) Decide(ctx context.Context, userID int64, approve bool) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Role.RequiresApproval() {
		return fmt.Errorf("%w: %s accounts do not go through approval", domain.ErrInvalidInput, u.Role)
	}
	if u.IsApproved {
		return fmt.Errorf("%w: account already approved", domain.ErrConflict)
	}

	if approve {
		if err := s.users.SetApproval(ctx, userID, true); err != nil {
			return fmt.Errorf("approve user: %w", err)
		}
	} else {
		if err := s.users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("reject user: %w", err)
		}
	}

	if err := s.mail.SendApprovalDecision(ctx, u.Email, u.FullName(), approve); err != nil {
		log.Printf("approval email to %s: %v", u.Email, err)
	}
	return nil
}

// Delete hard-deletes a user. Their messages cascade with the account.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Announce posts a platform-wide announcement through the notification
// feed. Returns how many mailboxes were written.
func (s *UserService) Announce(ctx context.Context, message string) (int, error) {
	return s.notifs.Announce(ctx, message)
}
