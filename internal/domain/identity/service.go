package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartguard/heartguard/pkg/pagination"
)

var validRoles = map[string]bool{
	RolePatient: true,
	RoleDoctor:  true,
	RoleAdmin:   true,
}

var validGenders = map[string]bool{
	"": true, "male": true, "female": true, "other": true, "unknown": true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("invalid email: %q", u.Email)
	}
	if strings.TrimSpace(u.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if !validGenders[u.Gender] {
		return fmt.Errorf("invalid gender: %s", u.Gender)
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{RolePatient}
	}
	for _, role := range u.Roles {
		if !validRoles[role] {
			return fmt.Errorf("invalid role: %s", role)
		}
	}
	u.Active = true
	return s.repo.Create(ctx, u)
}

// UpdateProfile changes name, date of birth and gender. Email and roles have
// their own operations.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, fullName string, dob *time.Time, gender string) (*User, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if !validGenders[gender] {
		return nil, fmt.Errorf("invalid gender: %s", gender)
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.FullName = strings.TrimSpace(fullName)
	u.DateOfBirth = dob
	u.Gender = gender
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) List(ctx context.Context, page pagination.Params) ([]*User, int, error) {
	return s.repo.List(ctx, page)
}

// SetRoles replaces a user's role list. Admin only at the handler layer.
func (s *Service) SetRoles(ctx context.Context, id uuid.UUID, roles []string) (*User, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("at least one role is required")
	}
	for _, role := range roles {
		if !validRoles[role] {
			return nil, fmt.Errorf("invalid role: %s", role)
		}
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Deactivate disables an account without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Active = false
	return s.repo.Update(ctx, u)
}
