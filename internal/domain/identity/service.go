package identity

import (
	"context"
	"net/mail"

	"github.com/google/uuid"

	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/auth"
)

var validRoles = map[string]bool{
	auth.RolePatient:    true,
	auth.RoleDentist:    true,
	auth.RoleSecretary:  true,
	auth.RoleSuperAdmin: true,
}

type Service struct {
	users    UserRepository
	branches BranchRepository
}

func NewService(users UserRepository, branches BranchRepository) *Service {
	return &Service{users: users, branches: branches}
}

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if u.Email == "" {
		return apperr.Validation("email is required").WithField("email", "required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperr.Validation("invalid email %q", u.Email).WithField("email", "invalid")
	}
	if u.FirstName == "" || u.LastName == "" {
		return apperr.Validation("first_name and last_name are required")
	}
	if !validRoles[u.Role] {
		return apperr.Validation("invalid role %q", u.Role).WithField("role", "invalid")
	}
	u.Active = true
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if _, err := s.users.GetByID(ctx, u.ID); err != nil {
		return err
	}
	if u.Role != "" && !validRoles[u.Role] {
		return apperr.Validation("invalid role %q", u.Role)
	}
	return s.users.Update(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

func (s *Service) ListUsersByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	if !validRoles[role] {
		return nil, 0, apperr.Validation("invalid role %q", role)
	}
	return s.users.ListByRole(ctx, role, limit, offset)
}

// DentistExists reports whether the id refers to an active dentist account.
func (s *Service) DentistExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.users.Exists(ctx, id, auth.RoleDentist)
}

// PatientExists reports whether the id refers to a patient account.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.users.Exists(ctx, id, auth.RolePatient)
}

// UserExists reports whether the id refers to any account regardless of role.
func (s *Service) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.users.Exists(ctx, id, "")
}

// BranchExists reports whether the id refers to a clinic branch.
func (s *Service) BranchExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.branches.Exists(ctx, id)
}

func (s *Service) CreateBranch(ctx context.Context, b *Branch) error {
	if b.Name == "" {
		return apperr.Validation("branch name is required").WithField("name", "required")
	}
	return s.branches.Create(ctx, b)
}

func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return s.branches.GetByID(ctx, id)
}

func (s *Service) UpdateBranch(ctx context.Context, b *Branch) error {
	if b.Name == "" {
		return apperr.Validation("branch name is required")
	}
	if _, err := s.branches.GetByID(ctx, b.ID); err != nil {
		return err
	}
	return s.branches.Update(ctx, b)
}

func (s *Service) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	if _, err := s.branches.GetByID(ctx, id); err != nil {
		return err
	}
	return s.branches.Delete(ctx, id)
}

func (s *Service) ListBranches(ctx context.Context, limit, offset int) ([]*Branch, int, error) {
	return s.branches.List(ctx, limit, offset)
}
