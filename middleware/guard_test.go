package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway/fake"
)

func newTestClient(t *testing.T) *dashauth.Client {
	t.Helper()
	g, err := fake.NewDev()
	if err != nil {
		t.Fatalf("NewDev: %v", err)
	}
	cfg := dashauth.DefaultConfig()
	cfg.Store.Backend = dashauth.StoreMemory
	c, err := dashauth.New().WithConfig(cfg).WithGateway(g).WithStore(credstore.NewMemoryStore()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func login(t *testing.T, c *dashauth.Client, email, password string) {
	t.Helper()
	if _, err := c.Login(context.Background(), dashauth.Credentials{Email: email, Password: password}); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func viewerRole(w http.ResponseWriter, r *http.Request) {
	s, ok := dashauth.ViewerFromContext(r.Context())
	if !ok || s.User == nil {
		http.Error(w, "no viewer", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(s.User.Role))
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGuardRedirectsAnonymousToLoginWithOrigin(t *testing.T) {
	c := newTestClient(t)
	h := Guard(c, dashauth.RoleStudent)(http.HandlerFunc(viewerRole))

	rec := serve(h, "/student/courses?term=fall")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	want := "/login?next=%2Fstudent%2Fcourses%3Fterm%3Dfall"
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGuardRendersForPermittedRole(t *testing.T) {
	c := newTestClient(t)
	login(t, c, "advisor@campus.test", "advisor-pass")
	h := Guard(c, dashauth.RoleAdvisor, dashauth.RoleAdmin)(http.HandlerFunc(viewerRole))

	rec := serve(h, "/advisor/caseload")
	if rec.Code != http.StatusOK || rec.Body.String() != "advisor" {
		t.Fatalf("expected render with viewer, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGuardSendsWrongRoleToOwnLanding(t *testing.T) {
	c := newTestClient(t)
	login(t, c, "student@campus.test", "student-pass")
	h := RequireRole(c, dashauth.RoleAdmin)(http.HandlerFunc(viewerRole))

	rec := serve(h, "/admin/users")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/student/dashboard" {
		t.Fatalf("expected neutral redirect to student landing, got %q", got)
	}
}

func TestRequireAuthenticatedAcceptsAnyRole(t *testing.T) {
	c := newTestClient(t)
	login(t, c, "admin@campus.test", "admin-pass")
	rec := serve(RequireAuthenticated(c)(http.HandlerFunc(viewerRole)), "/profile")
	if rec.Code != http.StatusOK || rec.Body.String() != "admin" {
		t.Fatalf("expected render, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGuardNilClientRejects(t *testing.T) {
	rec := serve(Guard(nil)(http.HandlerFunc(viewerRole)), "/profile")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRedirectAuthenticatedUsesCapturedOrigin(t *testing.T) {
	c := newTestClient(t)
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("login form")) })
	h := RedirectAuthenticated(c)(page)

	if rec := serve(h, "/login?next=%2Fx"); rec.Code != http.StatusOK {
		t.Fatalf("anonymous viewer must see the login page, got %d", rec.Code)
	}

	login(t, c, "student@campus.test", "student-pass")
	rec := serve(h, "/login?next=%2Fx")
	if got := rec.Header().Get("Location"); rec.Code != http.StatusSeeOther || got != "/x" {
		t.Fatalf("expected redirect to /x, got %d %q", rec.Code, got)
	}

	rec = serve(h, "/login?next=https%3A%2F%2Fevil.test")
	if got := rec.Header().Get("Location"); got != "/student/dashboard" {
		t.Fatalf("expected unsafe origin to fall back to landing, got %q", got)
	}
}
