package certificates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type mockRepository struct {
	certs  []Certificate
	nextID int64
}

func (m *mockRepository) ListAll(ctx context.Context) ([]Certificate, error) {
	return m.certs, nil
}

func (m *mockRepository) ListForStudent(ctx context.Context, studentID int64) ([]Certificate, error) {
	var out []Certificate
	for _, c := range m.certs {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Certificate, error) {
	for _, c := range m.certs {
		if c.ID == id {
			return c, nil
		}
	}
	return Certificate{}, httpx.ErrNotFound
}

func (m *mockRepository) Insert(ctx context.Context, cert Certificate) (int64, error) {
	m.nextID++
	cert.ID = m.nextID
	m.certs = append(m.certs, cert)
	return cert.ID, nil
}

type mockRenderer struct {
	lastHTML string
}

func (m *mockRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	m.lastHTML = html
	return []byte("%PDF-1.7 fake"), nil
}

func secretary() identity.Actor {
	return identity.Actor{ID: 2, Roles: []identity.Role{identity.RoleSecretary}}
}

func TestIssueAndRender(t *testing.T) {
	repo := &mockRepository{}
	renderer := &mockRenderer{}
	svc := NewService(repo, renderer, nil)

	cert, err := svc.Issue(context.Background(), secretary(), IssueInput{StudentID: 5, CourseName: "Go Fundamentals"})
	require.NoError(t, err)

	repo.certs[0].StudentName = "Dana Cole"
	repo.certs[0].IssuedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	pdf, err := svc.RenderPDF(context.Background(), secretary(), cert.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
	assert.Contains(t, renderer.lastHTML, "Dana Cole")
	assert.Contains(t, renderer.lastHTML, "Go Fundamentals")
	assert.Contains(t, renderer.lastHTML, "1 March 2026")
}

func TestIssueForbiddenForTrainer(t *testing.T) {
	svc := NewService(&mockRepository{}, &mockRenderer{}, nil)
	trainer := identity.Actor{ID: 9, Roles: []identity.Role{identity.RoleTrainer}}

	_, err := svc.Issue(context.Background(), trainer, IssueInput{StudentID: 5, CourseName: "x"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestIssueValidation(t *testing.T) {
	svc := NewService(&mockRepository{}, &mockRenderer{}, nil)

	_, err := svc.Issue(context.Background(), secretary(), IssueInput{CourseName: "x"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Issue(context.Background(), secretary(), IssueInput{StudentID: 5, CourseName: "  "})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStudentRendersOwnOnly(t *testing.T) {
	repo := &mockRepository{certs: []Certificate{
		{ID: 1, StudentID: 5, StudentName: "Dana", CourseName: "Go"},
		{ID: 2, StudentID: 6, StudentName: "Riley", CourseName: "SQL"},
	}, nextID: 2}
	svc := NewService(repo, &mockRenderer{}, nil)
	student := identity.Actor{ID: 30, StudentID: 5, Roles: []identity.Role{identity.RoleStudent}}

	_, err := svc.RenderPDF(context.Background(), student, 1)
	require.NoError(t, err)

	_, err = svc.RenderPDF(context.Background(), student, 2)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	certs, err := svc.List(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, int64(1), certs[0].ID)
}

func TestListForbiddenForFinance(t *testing.T) {
	svc := NewService(&mockRepository{}, &mockRenderer{}, nil)
	finance := identity.Actor{ID: 3, Roles: []identity.Role{identity.RoleFinance}}

	_, err := svc.List(context.Background(), finance)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestRenderHTMLEscapes(t *testing.T) {
	html, err := RenderHTML(Certificate{
		StudentName: "<script>alert(1)</script>",
		CourseName:  "Go",
		IssuedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}
