package payroll

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
)

// RepositoryPort defines data access methods for payroll.
type RepositoryPort interface {
	ListSalaries(ctx context.Context, pred scope.Predicate) ([]Salary, error)
	SalaryFor(ctx context.Context, employeeID int64) (Salary, error)
	UpsertSalary(ctx context.Context, input SalaryInput) (int64, error)
	ListAdvances(ctx context.Context, pred scope.Predicate) ([]Advance, error)
	InsertAdvance(ctx context.Context, adv Advance) (int64, error)
	ReviewAdvance(ctx context.Context, id int64, status string, reviewerID int64) (int64, error)
}

// Service implements salary listings and advance requests.
type Service struct {
	repo  RepositoryPort
	cache *listcache.Cache
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *listcache.Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// Salaries returns salary rows the actor may see. Everyone except admins is
// pinned to their own employee_id.
func (s *Service) Salaries(ctx context.Context, actor identity.Actor) ([]Salary, error) {
	pred := scope.ForResource(scope.ResourceSalaries, actor)
	if pred.Denied() {
		return []Salary{}, nil
	}
	key, err := s.cache.Key(ctx, scope.ResourceSalaries, pred)
	if err != nil {
		return s.repo.ListSalaries(ctx, pred)
	}
	var out []Salary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListSalaries(ctx, pred)
	})
	return out, err
}

// SetSalary records or replaces an employee's salary. Admin only.
func (s *Service) SetSalary(ctx context.Context, actor identity.Actor, input SalaryInput) (int64, error) {
	if !actor.HasRole(identity.RoleAdmin) {
		return 0, fmt.Errorf("%w: only admins manage salaries", httpx.ErrForbidden)
	}
	if input.EmployeeID == 0 {
		return 0, fmt.Errorf("%w: employee is required", httpx.ErrValidation)
	}
	if math.IsNaN(input.Amount) || input.Amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", httpx.ErrValidation)
	}

	id, err := s.repo.UpsertSalary(ctx, input)
	if err != nil {
		return 0, err
	}
	_ = s.cache.Bump(ctx, scope.ResourceSalaries)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "payroll.salary.set",
		Entity:   "salaries",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"employee_id": input.EmployeeID},
	})
	return id, nil
}

// Advances returns advance requests the actor may see.
func (s *Service) Advances(ctx context.Context, actor identity.Actor) ([]Advance, error) {
	pred := scope.ForResource(scope.ResourceAdvances, actor)
	if pred.Denied() {
		return []Advance{}, nil
	}
	key, err := s.cache.Key(ctx, scope.ResourceAdvances, pred)
	if err != nil {
		return s.repo.ListAdvances(ctx, pred)
	}
	var out []Advance
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListAdvances(ctx, pred)
	})
	return out, err
}

// RequestAdvance files an advance for the acting employee. The amount is
// capped at the actor's on-file salary; requests over the cap, non-positive
// or NaN amounts are rejected before any insert.
func (s *Service) RequestAdvance(ctx context.Context, actor identity.Actor, input AdvanceInput) (Advance, error) {
	if math.IsNaN(input.Amount) || input.Amount <= 0 {
		return Advance{}, fmt.Errorf("%w: amount must be greater than zero", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.Reason) == "" {
		return Advance{}, fmt.Errorf("%w: reason is required", httpx.ErrValidation)
	}

	salary, err := s.repo.SalaryFor(ctx, actor.ID)
	if err != nil {
		return Advance{}, err
	}
	if input.Amount > salary.Amount {
		return Advance{}, fmt.Errorf("%w: amount exceeds your salary of %.2f", httpx.ErrValidation, salary.Amount)
	}

	adv := Advance{
		EmployeeID: actor.ID,
		Amount:     input.Amount,
		Reason:     strings.TrimSpace(input.Reason),
		Status:     AdvancePending,
	}
	id, err := s.repo.InsertAdvance(ctx, adv)
	if err != nil {
		return Advance{}, err
	}
	adv.ID = id

	_ = s.cache.Bump(ctx, scope.ResourceAdvances)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "payroll.advance.request",
		Entity:   "salary_advances",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"amount": input.Amount},
	})
	return adv, nil
}

// ReviewAdvance approves or rejects a pending request. Admin only.
func (s *Service) ReviewAdvance(ctx context.Context, actor identity.Actor, id int64, status string) error {
	if !actor.HasRole(identity.RoleAdmin) {
		return fmt.Errorf("%w: only admins review advances", httpx.ErrForbidden)
	}
	if status != AdvanceApproved && status != AdvanceRejected {
		return fmt.Errorf("%w: status must be approved or rejected", httpx.ErrValidation)
	}

	affected, err := s.repo.ReviewAdvance(ctx, id, status, actor.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: pending advance %d", httpx.ErrNotFound, id)
	}

	_ = s.cache.Bump(ctx, scope.ResourceAdvances)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "payroll.advance." + status,
		Entity:   "salary_advances",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

// Payslip renders the actor's payslip text. Admins may render any employee's.
func (s *Service) Payslip(ctx context.Context, actor identity.Actor, employeeID int64) (string, error) {
	if employeeID == 0 {
		employeeID = actor.ID
	}
	if employeeID != actor.ID && !actor.HasRole(identity.RoleAdmin) {
		return "", fmt.Errorf("%w: payslips are visible to their owner only", httpx.ErrForbidden)
	}

	salary, err := s.repo.SalaryFor(ctx, employeeID)
	if err != nil {
		return "", err
	}
	pred := scope.Predicate{All: []scope.Clause{{Field: "employee_id", Op: scope.OpEq, Value: employeeID}}}
	advances, err := s.repo.ListAdvances(ctx, pred)
	if err != nil {
		return "", err
	}
	return RenderPayslip(salary, advances), nil
}
