package facilities

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

// RepositoryPort defines data access methods for facility records.
type RepositoryPort interface {
	ListNetworks(ctx context.Context) ([]WiFiNetwork, error)
	InsertNetwork(ctx context.Context, input WiFiInput) (int64, error)
	UpdateNetwork(ctx context.Context, id int64, input WiFiInput) (int64, error)
	DeleteNetwork(ctx context.Context, id int64) (int64, error)
	ListMaterials(ctx context.Context, limit, offset int) ([]MaterialTransaction, error)
	InsertMaterial(ctx context.Context, tx MaterialTransaction) (int64, error)
}

// Service implements the admin-only facility views: WiFi credentials and
// material stock movements.
type Service struct {
	repo  RepositoryPort
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

func requireAdminView(rt scope.ResourceType, actor identity.Actor) error {
	if !scope.ViewAllowed(rt, actor) {
		return fmt.Errorf("%w: view is admin only", httpx.ErrForbidden)
	}
	return nil
}

// Networks returns every WiFi record. Non-admins get 403, never a filtered
// list.
func (s *Service) Networks(ctx context.Context, actor identity.Actor) ([]WiFiNetwork, error) {
	if err := requireAdminView(scope.ResourceWiFi, actor); err != nil {
		return nil, err
	}
	pred := scope.ForResource(scope.ResourceWiFi, actor)
	key, err := s.cache.Key(ctx, scope.ResourceWiFi, pred)
	if err != nil {
		return s.repo.ListNetworks(ctx)
	}
	var out []WiFiNetwork
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListNetworks(ctx)
	})
	return out, err
}

// CreateNetwork stores a WiFi record.
func (s *Service) CreateNetwork(ctx context.Context, actor identity.Actor, input WiFiInput) (int64, error) {
	if err := requireAdminView(scope.ResourceWiFi, actor); err != nil {
		return 0, err
	}
	if err := validateNetwork(&input); err != nil {
		return 0, err
	}

	id, err := s.repo.InsertNetwork(ctx, input)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Bump(ctx, scope.ResourceWiFi)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "wifi.create",
		Entity:   "wifi_networks",
		EntityID: strconv.FormatInt(id, 10),
	})
	return id, nil
}

// UpdateNetwork replaces a WiFi record.
func (s *Service) UpdateNetwork(ctx context.Context, actor identity.Actor, id int64, input WiFiInput) error {
	if err := requireAdminView(scope.ResourceWiFi, actor); err != nil {
		return err
	}
	if err := validateNetwork(&input); err != nil {
		return err
	}

	affected, err := s.repo.UpdateNetwork(ctx, id, input)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: network %d", httpx.ErrNotFound, id)
	}
	_ = s.cache.Bump(ctx, scope.ResourceWiFi)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "wifi.update",
		Entity:   "wifi_networks",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

// DeleteNetwork removes a WiFi record.
func (s *Service) DeleteNetwork(ctx context.Context, actor identity.Actor, id int64) error {
	if err := requireAdminView(scope.ResourceWiFi, actor); err != nil {
		return err
	}

	affected, err := s.repo.DeleteNetwork(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: network %d", httpx.ErrNotFound, id)
	}
	_ = s.cache.Bump(ctx, scope.ResourceWiFi)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "wifi.delete",
		Entity:   "wifi_networks",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

// Materials returns stock movements. Non-admins get 403.
func (s *Service) Materials(ctx context.Context, actor identity.Actor, limit, offset int) ([]MaterialTransaction, error) {
	if err := requireAdminView(scope.ResourceMaterials, actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	pred := scope.ForResource(scope.ResourceMaterials, actor)
	key, err := s.cache.Key(ctx, scope.ResourceMaterials, pred,
		strconv.Itoa(limit), strconv.Itoa(offset))
	if err != nil {
		return s.repo.ListMaterials(ctx, limit, offset)
	}
	var out []MaterialTransaction
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListMaterials(ctx, limit, offset)
	})
	return out, err
}

// RecordMaterial logs a stock movement.
func (s *Service) RecordMaterial(ctx context.Context, actor identity.Actor, input MaterialInput) (MaterialTransaction, error) {
	if err := requireAdminView(scope.ResourceMaterials, actor); err != nil {
		return MaterialTransaction{}, err
	}
	if strings.TrimSpace(input.Material) == "" {
		return MaterialTransaction{}, fmt.Errorf("%w: material is required", httpx.ErrValidation)
	}
	if input.Direction != DirectionIn && input.Direction != DirectionOut {
		return MaterialTransaction{}, fmt.Errorf("%w: direction must be in or out", httpx.ErrValidation)
	}
	if input.Quantity <= 0 {
		return MaterialTransaction{}, fmt.Errorf("%w: quantity must be greater than zero", httpx.ErrValidation)
	}

	tx := MaterialTransaction{
		Material:   strings.TrimSpace(input.Material),
		Direction:  input.Direction,
		Quantity:   input.Quantity,
		Note:       strings.TrimSpace(input.Note),
		RecordedBy: actor.ID,
	}
	id, err := s.repo.InsertMaterial(ctx, tx)
	if err != nil {
		return MaterialTransaction{}, err
	}
	tx.ID = id

	_ = s.cache.Bump(ctx, scope.ResourceMaterials)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "materials.record",
		Entity:   "material_transactions",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"direction": input.Direction, "quantity": input.Quantity},
	})
	return tx, nil
}

func validateNetwork(input *WiFiInput) error {
	input.SSID = strings.TrimSpace(input.SSID)
	input.Location = strings.TrimSpace(input.Location)
	if input.SSID == "" {
		return fmt.Errorf("%w: ssid is required", httpx.ErrValidation)
	}
	if input.Password == "" {
		return fmt.Errorf("%w: password is required", httpx.ErrValidation)
	}
	return nil
}
