package certificates

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/shared"
)

// RepositoryPort defines data access methods for certificates.
type RepositoryPort interface {
	ListAll(ctx context.Context) ([]Certificate, error)
	ListForStudent(ctx context.Context, studentID int64) ([]Certificate, error)
	Get(ctx context.Context, id int64) (Certificate, error)
	Insert(ctx context.Context, cert Certificate) (int64, error)
}

// Renderer turns an HTML document into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Service implements certificate issuing and PDF rendering.
type Service struct {
	repo     RepositoryPort
	renderer Renderer
	audit    *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, renderer Renderer, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, renderer: renderer, audit: audit}
}

// List returns certificates the actor may see: admin and secretary see all,
// students their own.
func (s *Service) List(ctx context.Context, actor identity.Actor) ([]Certificate, error) {
	switch {
	case actor.HasAny(identity.RoleAdmin, identity.RoleSecretary):
		return s.repo.ListAll(ctx)
	case actor.HasRole(identity.RoleStudent):
		return s.repo.ListForStudent(ctx, actor.StudentID)
	}
	return nil, fmt.Errorf("%w: certificates are not visible to this role", httpx.ErrForbidden)
}

// Issue creates a certificate record. Admin and secretary only.
func (s *Service) Issue(ctx context.Context, actor identity.Actor, input IssueInput) (Certificate, error) {
	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		return Certificate{}, fmt.Errorf("%w: role may not issue certificates", httpx.ErrForbidden)
	}
	if input.StudentID == 0 {
		return Certificate{}, fmt.Errorf("%w: student is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.CourseName) == "" {
		return Certificate{}, fmt.Errorf("%w: course name is required", httpx.ErrValidation)
	}

	cert := Certificate{
		StudentID:  input.StudentID,
		CourseName: strings.TrimSpace(input.CourseName),
		LogoURL:    strings.TrimSpace(input.LogoURL),
		IssuedBy:   actor.ID,
	}
	id, err := s.repo.Insert(ctx, cert)
	if err != nil {
		return Certificate{}, err
	}
	cert.ID = id

	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "certificate.issue",
		Entity:   "certificates",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"student_id": input.StudentID},
	})
	return cert, nil
}

// RenderPDF fetches a certificate and renders it. Students may render only
// their own.
func (s *Service) RenderPDF(ctx context.Context, actor identity.Actor, id int64) ([]byte, error) {
	cert, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		if !actor.HasRole(identity.RoleStudent) || cert.StudentID != actor.StudentID {
			return nil, fmt.Errorf("%w: certificate %d", httpx.ErrForbidden, id)
		}
	}

	html, err := RenderHTML(cert)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, html)
}
