package classes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/listcache"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	"github.com/meridian-edu/meridian-edu/internal/shared"
)

// RepositoryPort defines data access methods for classes.
type RepositoryPort interface {
	ListScoped(ctx context.Context, pred scope.Predicate) ([]Class, error)
	Insert(ctx context.Context, c Class) (int64, error)
	Roster(ctx context.Context, classID int64) ([]Student, error)
}

// Service handles class business logic.
type Service struct {
	repo  RepositoryPort
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// List returns classes scoped to the actor: trainers see their own classes,
// students their enrolments, back-office roles everything.
func (s *Service) List(ctx context.Context, actor identity.Actor) ([]Class, error) {
	pred := scope.ForResource(scope.ResourceClasses, actor)
	if pred.Denied() {
		return []Class{}, nil
	}
	key, err := s.cache.Key(ctx, scope.ResourceClasses, pred)
	if err != nil {
		return s.repo.ListScoped(ctx, pred)
	}
	var out []Class
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListScoped(ctx, pred)
	})
	return out, err
}

// Create registers a class. Admin and secretary only.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateInput) (Class, error) {
	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		return Class{}, fmt.Errorf("%w: role may not create classes", httpx.ErrForbidden)
	}
	if strings.TrimSpace(input.Name) == "" {
		return Class{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if input.TrainerID == 0 {
		return Class{}, fmt.Errorf("%w: trainer is required", httpx.ErrValidation)
	}

	row := Class{
		Name:      strings.TrimSpace(input.Name),
		Program:   strings.TrimSpace(input.Program),
		TrainerID: input.TrainerID,
	}
	id, err := s.repo.Insert(ctx, row)
	if err != nil {
		return Class{}, err
	}
	row.ID = id

	_ = s.cache.Bump(ctx, scope.ResourceClasses)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "class.create",
		Entity:   "classes",
		EntityID: strconv.FormatInt(id, 10),
	})
	return row, nil
}

// Roster lists the students of a class the actor may see.
func (s *Service) Roster(ctx context.Context, actor identity.Actor, classID int64) ([]Student, error) {
	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		if !actor.HasRole(identity.RoleTrainer) || !containsID(actor.ClassIDs, classID) {
			return nil, fmt.Errorf("%w: class %d", httpx.ErrForbidden, classID)
		}
	}
	return s.repo.Roster(ctx, classID)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
