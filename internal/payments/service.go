package payments

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/listcache"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	"github.com/meridian-edu/meridian-edu/internal/shared"
	"github.com/meridian-edu/meridian-edu/internal/stats"
)

// RepositoryPort defines data access methods for payments.
type RepositoryPort interface {
	ListScoped(ctx context.Context, pred scope.Predicate, limit, offset int) ([]Payment, error)
	Insert(ctx context.Context, p Payment) (int64, error)
	MarkPaid(ctx context.Context, id int64) (int64, error)
}

// Service implements fee recording and scoped lookup.
type Service struct {
	repo  RepositoryPort
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// List returns payments the actor may see. Finance, admin and secretary see
// every row; students only their own.
func (s *Service) List(ctx context.Context, actor identity.Actor, limit, offset int) ([]Payment, error) {
	pred := scope.ForResource(scope.ResourcePayments, actor)
	if pred.Denied() {
		return []Payment{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	key, err := s.cache.Key(ctx, scope.ResourcePayments, pred,
		strconv.Itoa(limit), strconv.Itoa(offset))
	if err != nil {
		return s.repo.ListScoped(ctx, pred, limit, offset)
	}
	var out []Payment
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListScoped(ctx, pred, limit, offset)
	})
	return out, err
}

// Create charges a fee to a student. Finance, admin and secretary only; the
// amount must be positive and the description non-empty.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateInput) (Payment, error) {
	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary, identity.RoleFinance) {
		return Payment{}, fmt.Errorf("%w: role may not record payments", httpx.ErrForbidden)
	}
	if input.StudentID == 0 {
		return Payment{}, fmt.Errorf("%w: student is required", httpx.ErrValidation)
	}
	if math.IsNaN(input.Amount) || input.Amount <= 0 {
		return Payment{}, fmt.Errorf("%w: amount must be greater than zero", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return Payment{}, fmt.Errorf("%w: description is required", httpx.ErrValidation)
	}

	row := Payment{
		StudentID:   input.StudentID,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Status:      StatusUnpaid,
		RecordedBy:  actor.ID,
	}
	id, err := s.repo.Insert(ctx, row)
	if err != nil {
		return Payment{}, err
	}
	row.ID = id

	_ = s.cache.Bump(ctx, scope.ResourcePayments)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "payment.create",
		Entity:   "payments",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"student_id": input.StudentID, "amount": input.Amount},
	})
	return row, nil
}

// MarkPaid settles an unpaid fee. Finance, admin and secretary only.
func (s *Service) MarkPaid(ctx context.Context, actor identity.Actor, id int64) error {
	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary, identity.RoleFinance) {
		return fmt.Errorf("%w: role may not settle payments", httpx.ErrForbidden)
	}

	affected, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: unpaid fee %d", httpx.ErrNotFound, id)
	}

	_ = s.cache.Bump(ctx, scope.ResourcePayments)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "payment.mark_paid",
		Entity:   "payments",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

// Summary folds payments into the dashboard stat card totals.
type Summary struct {
	Collected   float64 `json:"collected"`
	Outstanding float64 `json:"outstanding"`
	PaidCount   int     `json:"paid_count"`
	UnpaidCount int     `json:"unpaid_count"`
}

// Summarize computes totals over already-scoped payment rows.
func Summarize(rows []Payment) Summary {
	return Summary{
		Collected: stats.SumBy(rows, func(p Payment) float64 {
			if p.Status == StatusPaid {
				return p.Amount
			}
			return 0
		}),
		Outstanding: stats.SumBy(rows, func(p Payment) float64 {
			if p.Status == StatusUnpaid {
				return p.Amount
			}
			return 0
		}),
		PaidCount:   stats.CountWhere(rows, func(p Payment) bool { return p.Status == StatusPaid }),
		UnpaidCount: stats.CountWhere(rows, func(p Payment) bool { return p.Status == StatusUnpaid }),
	}
}
