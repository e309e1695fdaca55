package provisioning

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/shared"
)

// RepositoryPort defines data access methods for provisioning.
type RepositoryPort interface {
	CreateUser(ctx context.Context, u NewUser) (int64, error)
}

// Service validates provisioning requests and creates accounts.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	audit    *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, validate: validator.New(), audit: audit}
}

// Provision creates the account described by input. Role names must come
// from the fixed role enum; the student record is created only when
// "student" is among the roles.
func (s *Service) Provision(ctx context.Context, input Input) (int64, error) {
	if err := s.validate.Struct(input); err != nil {
		return 0, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}

	roles := make([]string, 0, len(input.Roles))
	isStudent := false
	for _, raw := range input.Roles {
		role, ok := identity.ParseRole(raw)
		if !ok {
			return 0, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, raw)
		}
		roles = append(roles, string(role))
		if role == identity.RoleStudent {
			isStudent = true
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	user := NewUser{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Roles:        roles,
	}
	if isStudent {
		user.Student = input.StudentData
		if user.Student == nil {
			user.Student = &StudentData{}
		}
	}

	userID, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return 0, err
	}

	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   "provisioning.create",
		Entity:   "users",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"roles": roles},
	})
	return userID, nil
}
