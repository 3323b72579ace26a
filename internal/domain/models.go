package domain

import "time"

// Role discriminates the single users table into its variants.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// RequiresApproval reports whether accounts with this role stay locked
// until an admin approves them.
func (r Role) RequiresApproval() bool {
	return r == RoleMentor || r == RoleAlumni
}

// User represents a platform member. All roles share one table; the
// role-specific fields are nullable and only populated for the matching role.
type User struct {
	ID             int64     `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Role           Role      `db:"role" json:"role"`
	Bio            string    `db:"bio" json:"bio,omitempty"`
	IsApproved     bool      `db:"is_approved" json:"is_approved"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Student / mentor fields
	Program        *string    `db:"program" json:"program,omitempty"`
	ProgramType    *string    `db:"program_type" json:"program_type,omitempty"`
	ExpectedGradAt *time.Time `db:"expected_grad_at" json:"expected_grad_at,omitempty"`
	OverallGPA     *float64   `db:"overall_gpa" json:"overall_gpa,omitempty"`
	Proof          *string    `db:"proof" json:"proof,omitempty"`

	// Alumni fields
	GradAt     *time.Time `db:"grad_at" json:"grad_at,omitempty"`
	CurrentJob *string    `db:"current_job" json:"current_job,omitempty"`

	Courses []CourseEnrollment `db:"-" json:"courses,omitempty"`
}

// FullName is the display name used in conversation summaries and
// notification text.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CourseEnrollment identifies one course offering a user is enrolled in.
// Two users are course peers when all three fields match.
type CourseEnrollment struct {
	Course   string `db:"course" json:"course"`
	Semester string `db:"semester" json:"semester"`
	Year     int    `db:"year" json:"year"`
}

// DirectMessage is one pairwise message. Immutable once created except for
// the read receipt and like set.
type DirectMessage struct {
	ID         int64      `db:"id" json:"id"`
	SenderID   int64      `db:"sender_id" json:"sender_id"`
	ReceiverID int64      `db:"receiver_id" json:"receiver_id"`
	Body       string     `db:"body" json:"body"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// GroupMessage is one message scoped to a group's membership.
type GroupMessage struct {
	ID        int64     `db:"id" json:"id"`
	GroupID   int64     `db:"group_id" json:"group_id"`
	SenderID  int64     `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Group is a creator-owned chat group. The creator is always a member and
// can never be removed; deleting the group cascades to its messages.
type Group struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatorID   int64     `db:"creator_id" json:"creator_id"`
	IsPrivate   bool      `db:"is_private" json:"is_private"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	MemberIDs []int64 `db:"-" json:"member_ids,omitempty"`
}

// IsCreator reports whether userID owns the group.
func (g *Group) IsCreator(userID int64) bool {
	return g.CreatorID == userID
}
