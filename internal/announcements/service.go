package announcements

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

// RepositoryPort defines data access methods for announcements.
type RepositoryPort interface {
	ListScoped(ctx context.Context, pred scope.Predicate, limit, offset int) ([]Announcement, error)
	Insert(ctx context.Context, a Announcement) (int64, error)
	Delete(ctx context.Context, id int64, pred scope.Predicate) (int64, error)
}

// Service shapes and validates announcement mutations and serves scoped
// listings.
type Service struct {
	repo  RepositoryPort
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// List returns announcements the actor is entitled to see.
func (s *Service) List(ctx context.Context, actor identity.Actor, limit, offset int) ([]Announcement, error) {
	pred := scope.ForResource(scope.ResourceAnnouncements, actor)
	if pred.Denied() {
		return []Announcement{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	key, err := s.cache.Key(ctx, scope.ResourceAnnouncements, pred,
		strconv.Itoa(limit), strconv.Itoa(offset))
	if err != nil {
		return s.repo.ListScoped(ctx, pred, limit, offset)
	}
	var out []Announcement
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListScoped(ctx, pred, limit, offset)
	})
	return out, err
}

// Create validates the input, applies role-based defaulting and inserts the
// shaped row. The shaping rules are fixed policy:
//   - back-office roles choose public (target_roles NULL) or targeted at
//     every role;
//   - trainers always produce a private, student-targeted, class-pinned
//     announcement and must name a specific class.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateInput) (Announcement, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Announcement{}, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.Body) == "" {
		return Announcement{}, fmt.Errorf("%w: body is required", httpx.ErrValidation)
	}

	row := Announcement{
		Title:     strings.TrimSpace(input.Title),
		Body:      strings.TrimSpace(input.Body),
		CreatedBy: actor.ID,
	}

	switch {
	case actor.HasAny(identity.RoleAdmin, identity.RoleSecretary, identity.RoleFinance, identity.RoleIT):
		if input.IsPublic {
			row.IsPublic = true
			row.TargetRoles = nil
		} else {
			row.IsPublic = false
			row.TargetRoles = roleNames(identity.AllRoles())
		}
	case actor.HasRole(identity.RoleTrainer):
		if len(actor.ClassIDs) == 0 {
			return Announcement{}, fmt.Errorf("%w: no class assigned to this trainer", httpx.ErrValidation)
		}
		classID := input.ClassID
		if classID == 0 {
			if len(actor.ClassIDs) == 1 {
				// Single-class trainers get the class selector auto-filled.
				classID = actor.ClassIDs[0]
			} else {
				return Announcement{}, fmt.Errorf("%w: select a specific class", httpx.ErrValidation)
			}
		}
		if !containsID(actor.ClassIDs, classID) {
			return Announcement{}, fmt.Errorf("%w: class not assigned to this trainer", httpx.ErrForbidden)
		}
		row.IsPublic = false
		row.TargetRoles = []string{string(identity.RoleStudent)}
		row.ClassID = &classID
	default:
		return Announcement{}, fmt.Errorf("%w: role may not publish announcements", httpx.ErrForbidden)
	}

	id, err := s.repo.Insert(ctx, row)
	if err != nil {
		return Announcement{}, err
	}
	row.ID = id

	_ = s.cache.Bump(ctx, scope.ResourceAnnouncements)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "announcement.create",
		Entity:   "announcements",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"is_public": row.IsPublic},
	})
	return row, nil
}

// Delete removes an announcement. Back-office roles may delete any row,
// trainers only their own.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id int64) error {
	var pred scope.Predicate
	switch {
	case actor.HasAny(identity.RoleAdmin, identity.RoleSecretary, identity.RoleFinance, identity.RoleIT):
		pred = scope.Predicate{}
	case actor.HasRole(identity.RoleTrainer):
		pred = scope.Predicate{All: []scope.Clause{{Field: "created_by", Op: scope.OpEq, Value: actor.ID}}}
	default:
		return fmt.Errorf("%w: role may not delete announcements", httpx.ErrForbidden)
	}

	affected, err := s.repo.Delete(ctx, id, pred)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: announcement %d", httpx.ErrNotFound, id)
	}

	_ = s.cache.Bump(ctx, scope.ResourceAnnouncements)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "announcement.delete",
		Entity:   "announcements",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

func roleNames(roles []identity.Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
