package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/listcache"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	"github.com/meridian-edu/meridian-edu/internal/shared"
	"github.com/meridian-edu/meridian-edu/internal/stats"
)

// RepositoryPort defines data access methods for attendance.
type RepositoryPort interface {
	ListScoped(ctx context.Context, pred scope.Predicate, classID int64, date string) ([]Record, error)
	ListForStudent(ctx context.Context, pred scope.Predicate, limit int) ([]Record, error)
	DeleteForClassDate(ctx context.Context, classID int64, date string) error
	InsertRecords(ctx context.Context, records []Record) error
}

// Service implements attendance marking and lookup.
type Service struct {
	repo  RepositoryPort
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// Sheet returns the attendance rows for (class, date) the actor may see.
func (s *Service) Sheet(ctx context.Context, actor identity.Actor, classID int64, date string) ([]Record, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", httpx.ErrValidation)
	}
	pred := scope.ForResource(scope.ResourceAttendance, actor)
	if pred.Denied() {
		return []Record{}, nil
	}
	return s.repo.ListScoped(ctx, pred, classID, date)
}

// History returns the actor-visible attendance history, newest first.
func (s *Service) History(ctx context.Context, actor identity.Actor, limit int) ([]Record, error) {
	pred := scope.ForResource(scope.ResourceAttendance, actor)
	if pred.Denied() {
		return []Record{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListForStudent(ctx, pred, limit)
}

// Save stores a full attendance sheet with replace semantics: the existing
// rows for (class_id, date) are deleted, then the new set is inserted. The
// two statements run in sequence without a transaction. If the insert
// fails after the delete, the partition is left empty and the caller must
// resubmit. Concurrent saves for the same key race and the last writer
// wins silently.
func (s *Service) Save(ctx context.Context, actor identity.Actor, input SaveInput) error {
	if input.ClassID == 0 {
		return fmt.Errorf("%w: class is required", httpx.ErrValidation)
	}
	if _, err := time.Parse(DateLayout, input.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", httpx.ErrValidation)
	}
	if len(input.Marks) == 0 {
		return fmt.Errorf("%w: at least one student mark is required", httpx.ErrValidation)
	}
	seen := make(map[int64]struct{}, len(input.Marks))
	for _, m := range input.Marks {
		if m.StudentID == 0 {
			return fmt.Errorf("%w: student is required on every mark", httpx.ErrValidation)
		}
		if _, dup := seen[m.StudentID]; dup {
			return fmt.Errorf("%w: duplicate student %d", httpx.ErrValidation, m.StudentID)
		}
		seen[m.StudentID] = struct{}{}
	}

	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		if !actor.HasRole(identity.RoleTrainer) || !containsID(actor.ClassIDs, input.ClassID) {
			return fmt.Errorf("%w: class %d", httpx.ErrForbidden, input.ClassID)
		}
	}

	records := make([]Record, len(input.Marks))
	for i, m := range input.Marks {
		records[i] = Record{
			ClassID:    input.ClassID,
			StudentID:  m.StudentID,
			Date:       input.Date,
			Present:    m.Present,
			RecordedBy: actor.ID,
		}
	}

	if err := s.repo.DeleteForClassDate(ctx, input.ClassID, input.Date); err != nil {
		return err
	}
	if err := s.repo.InsertRecords(ctx, records); err != nil {
		return err
	}

	_ = s.cache.Bump(ctx, scope.ResourceAttendance)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "attendance.save",
		Entity:   "attendance_records",
		EntityID: fmt.Sprintf("%d:%s", input.ClassID, input.Date),
		Meta:     map[string]any{"marks": len(records)},
	})
	return nil
}

// RateSummary folds records into the stat-card percentage.
type RateSummary struct {
	Present int     `json:"present"`
	Total   int     `json:"total"`
	Rate    float64 `json:"rate"`
}

// Rate computes the attendance rate over the given records. An empty set
// yields a zero rate.
func Rate(records []Record) RateSummary {
	present := stats.CountWhere(records, func(r Record) bool { return r.Present })
	return RateSummary{
		Present: present,
		Total:   len(records),
		Rate:    stats.AttendanceRate(present, len(records)),
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
