package identity_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/shared"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type stubActorRepo struct {
	actor identity.Actor
	err   error
}

func (s *stubActorRepo) LoadActor(ctx context.Context, userID int64) (identity.Actor, error) {
	if s.err != nil {
		return identity.Actor{}, s.err
	}
	return s.actor, nil
}

func requestWithSessionUser(user string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := &shared.Session{ID: "sess-1"}
	sess.SetUser(user)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireActorNoSession(t *testing.T) {
	mw := identity.Middleware{Service: identity.NewService(&stubActorRepo{})}
	res := httptest.NewRecorder()
	mw.RequireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	})).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestRequireActorFailsClosedOnResolveError(t *testing.T) {
	mw := identity.Middleware{Service: identity.NewService(&stubActorRepo{err: errors.New("db down")})}
	res := httptest.NewRecorder()
	mw.RequireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when resolution fails")
	})).ServeHTTP(res, requestWithSessionUser("7"))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestRequireActorInjectsActor(t *testing.T) {
	want := identity.Actor{ID: 7, Roles: []identity.Role{identity.RoleTrainer}}
	mw := identity.Middleware{Service: identity.NewService(&stubActorRepo{actor: want})}

	var got identity.Actor
	res := httptest.NewRecorder()
	mw.RequireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(res, requestWithSessionUser("7"))

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if got.ID != want.ID || !got.HasRole(identity.RoleTrainer) {
		t.Fatalf("actor not injected: %+v", got)
	}
}

func TestRequireRoles(t *testing.T) {
	mw := identity.Middleware{}
	handler := mw.RequireRoles(identity.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := identity.ContextWithActor(req.Context(), identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleTrainer}})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req.WithContext(ctx))
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}

	ctx = identity.ContextWithActor(req.Context(), identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleTrainer, identity.RoleAdmin}})
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req.WithContext(ctx))
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
}
