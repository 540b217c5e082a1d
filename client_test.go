package goAuthClient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/gateway/fake"
	"github.com/MrEthical07/goAuthClient/guard"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type harness struct {
	client *Client
	fake   *fake.Gateway
	store  credstore.Store
	audit  *ChannelSink
	logs   *observer.ObservedLogs
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()
	g, err := fake.NewDev()
	if err != nil {
		t.Fatalf("NewDev: %v", err)
	}
	return newHarnessWith(t, g, credstore.NewMemoryStore(), mutate...)
}

func newHarnessWith(t *testing.T, g *fake.Gateway, store credstore.Store, mutate ...func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Store.Backend = StoreMemory
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	cfg.Metrics.EnableLatencyHistograms = true
	for _, m := range mutate {
		m(&cfg)
	}

	core, logs := observer.New(zap.DebugLevel)
	sink := NewChannelSink(128)
	c, err := New().
		WithConfig(cfg).
		WithGateway(g).
		WithStore(store).
		WithLogger(zap.New(core)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(c.Close)
	return &harness{client: c, fake: g, store: store, audit: sink, logs: logs}
}

func (h *harness) record(t *testing.T) credstore.Record {
	t.Helper()
	rec, err := h.store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return rec
}

func (h *harness) auditTypes() []string {
	h.client.Close()
	var out []string
	for {
		select {
		case ev := <-h.audit.Events():
			out = append(out, ev.EventType)
		default:
			return out
		}
	}
}

var (
	adminCreds   = Credentials{Email: "admin@campus.test", Password: "admin-pass"}
	studentCreds = Credentials{Email: "student@campus.test", Password: "student-pass"}
)

func TestLoginAdminLandsOnAdminDashboard(t *testing.T) {
	h := newHarness(t)
	user, err := h.client.Login(context.Background(), adminCreds)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	s := h.client.Session()
	if s.Status != StatusAuthenticated || s.User == nil || s.User.Role != RoleAdmin {
		t.Fatalf("unexpected session %+v", s)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("unexpected user %+v", user)
	}
	if got := h.client.Landing().PathFor(RoleAdmin); got != "/admin/dashboard" {
		t.Fatalf("unexpected admin landing %q", got)
	}
	if got := h.client.LandingPath(); got != "/admin/dashboard" {
		t.Fatalf("unexpected landing path %q", got)
	}

	rec := h.record(t)
	if !rec.Tokens.Complete() || rec.User == nil || rec.User.ID != user.ID {
		t.Fatalf("expected tokens and user persisted, got %+v", rec)
	}
	if h.client.Metrics().Value(MetricLoginSuccess) != 1 {
		t.Fatalf("expected login success metric")
	}
}

func TestLoginInvalidCredentialsEntersError(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Login(context.Background(), Credentials{Email: "admin@campus.test", Password: "wrong-pass"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	s := h.client.Session()
	if s.Status != StatusError || s.Error != MessageInvalidCredentials || s.User != nil {
		t.Fatalf("unexpected session %+v", s)
	}
	if rec := h.record(t); rec.HasAccessToken() || rec.User != nil {
		t.Fatalf("expected nothing persisted, got %+v", rec)
	}

	// ERROR is recoverable by retrying.
	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("retry Login: %v", err)
	}
	if h.client.Session().Status != StatusAuthenticated {
		t.Fatalf("expected retry to authenticate")
	}
}

func TestLoginNetworkAndMalformedFailures(t *testing.T) {
	h := newHarness(t)
	h.fake.Fail(fake.OpLogin, gateway.ErrNetworkFailure)
	_, err := h.client.Login(context.Background(), adminCreds)
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
	if s := h.client.Session(); s.Status != StatusError || s.Error != MessageUnavailable {
		t.Fatalf("unexpected session %+v", s)
	}

	h.fake.Fail(fake.OpLogin, gateway.ErrMalformedResponse)
	_, err = h.client.Login(context.Background(), adminCreds)
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected malformed response to surface as ErrNetworkFailure, got %v", err)
	}
	if s := h.client.Session(); s.Status != StatusError || s.Error != MessageUnavailable {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := newHarness(t)
	for _, creds := range []Credentials{
		{},
		{Email: "admin@campus.test"},
		{Password: "admin-pass"},
		{Email: "   ", Password: "admin-pass"},
		{Email: "not-an-email", Password: "admin-pass"},
	} {
		if _, err := h.client.Login(context.Background(), creds); !errors.Is(err, ErrCredentialsRequired) {
			t.Fatalf("%+v: expected ErrCredentialsRequired, got %v", creds, err)
		}
		if s := h.client.Session(); s.Status != StatusUnauthenticated {
			t.Fatalf("empty input must not change the session, got %s", s.Status)
		}
	}
	if h.fake.Calls(fake.OpLogin) != 0 {
		t.Fatalf("gateway must not be called for empty input")
	}
}

func TestLoginRejectedWhileAuthenticatedOrPending(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	h.fake.SetHook(fake.OpLogin, func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.client.Login(context.Background(), adminCreds)
		done <- err
	}()
	<-entered

	if _, err := h.client.Login(context.Background(), adminCreds); !errors.Is(err, ErrLoginInProgress) {
		t.Fatalf("expected ErrLoginInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Login: %v", err)
	}
	h.fake.SetHook(fake.OpLogin, nil)

	if _, err := h.client.Login(context.Background(), adminCreds); !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Fatalf("expected ErrAlreadyAuthenticated, got %v", err)
	}
}

func TestStaleLoginCompletionAfterLogoutIsDiscarded(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	h.fake.SetHook(fake.OpLogin, func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.client.Login(context.Background(), adminCreds)
		done <- err
	}()
	<-entered
	h.client.Logout(context.Background())
	close(release)

	if err := <-done; !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	if s := h.client.Session(); s.Status != StatusUnauthenticated || s.User != nil {
		t.Fatalf("stale login must not authenticate, got %+v", s)
	}
	if rec := h.record(t); rec.HasAccessToken() {
		t.Fatalf("stale login must not persist tokens")
	}
	if h.client.Metrics().Value(MetricStaleResultDiscarded) != 1 {
		t.Fatalf("expected stale discard metric")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), studentCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}

	h.client.Logout(context.Background())
	first := h.client.Session()
	firstRec := h.record(t)
	h.client.Logout(context.Background())
	second := h.client.Session()
	secondRec := h.record(t)

	if first.Status != StatusUnauthenticated || second.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated after logout, got %s then %s", first.Status, second.Status)
	}
	if first.User != nil || second.User != nil || firstRec.HasAccessToken() || secondRec.HasAccessToken() || secondRec.User != nil {
		t.Fatalf("logout left state behind")
	}
	if h.fake.Calls(fake.OpLogout) != 1 {
		t.Fatalf("expected exactly one remote logout, got %d", h.fake.Calls(fake.OpLogout))
	}
	if h.fake.ActiveSessions() != 0 {
		t.Fatalf("expected gateway session revoked")
	}
}

func TestLogoutSwallowsRemoteFailure(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), studentCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	h.fake.Fail(fake.OpLogout, gateway.ErrNetworkFailure)

	h.client.Logout(context.Background())
	if s := h.client.Session(); s.Status != StatusUnauthenticated {
		t.Fatalf("expected local logout despite remote failure, got %s", s.Status)
	}
	if h.client.Metrics().Value(MetricLogoutRemoteFailure) != 1 {
		t.Fatalf("expected remote failure metric")
	}
	if n := h.logs.FilterMessage("remote logout failed").Len(); n != 1 {
		t.Fatalf("expected one warn entry, got %d", n)
	}

	types := h.auditTypes()
	want := []string{AuditLoginSuccess, AuditLogout, AuditLogoutRemoteFailure}
	if len(types) != len(want) {
		t.Fatalf("unexpected audit events %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("unexpected audit events %v", types)
		}
	}
}

func TestDismissError(t *testing.T) {
	h := newHarness(t)
	if err := h.client.DismissError(context.Background()); err == nil {
		t.Fatalf("expected dismiss to fail outside ERROR")
	}
	_, _ = h.client.Login(context.Background(), Credentials{Email: "admin@campus.test", Password: "nope-nope"})
	if err := h.client.DismissError(context.Background()); err != nil {
		t.Fatalf("DismissError: %v", err)
	}
	if s := h.client.Session(); s.Status != StatusUnauthenticated || s.Error != "" {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestBootstrapRestoresPersistedSession(t *testing.T) {
	g, err := fake.NewDev()
	if err != nil {
		t.Fatalf("NewDev: %v", err)
	}
	store := credstore.NewMemoryStore()

	first := newHarnessWith(t, g, store)
	user, err := first.client.Login(context.Background(), adminCreds)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	reloaded := newHarnessWith(t, g, store)
	if got := reloaded.client.Bootstrap(context.Background()); got != BootstrapRestored {
		t.Fatalf("expected restored, got %s", got)
	}
	s := reloaded.client.Session()
	if s.Status != StatusAuthenticated || s.User == nil || s.User.ID != user.ID {
		t.Fatalf("unexpected session %+v", s)
	}
	if got := reloaded.client.Bootstrap(context.Background()); got != BootstrapRestored {
		t.Fatalf("second Bootstrap must return the first outcome, got %s", got)
	}
	if g.Calls(fake.OpGetCurrentUser) != 1 {
		t.Fatalf("bootstrap must run once, got %d gateway calls", g.Calls(fake.OpGetCurrentUser))
	}
}

func TestBootstrapRevokedTokenClearsSilently(t *testing.T) {
	g, err := fake.NewDev()
	if err != nil {
		t.Fatalf("NewDev: %v", err)
	}
	store := credstore.NewMemoryStore()

	first := newHarnessWith(t, g, store)
	user, err := first.client.Login(context.Background(), studentCreds)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	g.RevokeUser(user.ID)

	reloaded := newHarnessWith(t, g, store)
	if got := reloaded.client.Bootstrap(context.Background()); got != BootstrapCleared {
		t.Fatalf("expected cleared, got %s", got)
	}
	s := reloaded.client.Session()
	if s.Status != StatusUnauthenticated || s.Error != "" || s.User != nil {
		t.Fatalf("bootstrap failure must be silent, got %+v", s)
	}
	if rec := reloaded.record(t); rec.HasAccessToken() || rec.User != nil {
		t.Fatalf("expected storage cleared, got %+v", rec)
	}
}

func TestBootstrapWithoutTokenDoesNothing(t *testing.T) {
	h := newHarness(t)
	if got := h.client.Bootstrap(context.Background()); got != BootstrapNoToken {
		t.Fatalf("expected no token, got %s", got)
	}
	if h.fake.Calls(fake.OpGetCurrentUser) != 0 {
		t.Fatalf("gateway must not be called without a token")
	}
}

func TestBootstrapSupersededByLogout(t *testing.T) {
	g, err := fake.NewDev()
	if err != nil {
		t.Fatalf("NewDev: %v", err)
	}
	store := credstore.NewMemoryStore()
	first := newHarnessWith(t, g, store)
	if _, err := first.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}

	reloaded := newHarnessWith(t, g, store)
	release := make(chan struct{})
	entered := make(chan struct{})
	g.SetHook(fake.OpGetCurrentUser, func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan BootstrapOutcome, 1)
	go func() { done <- reloaded.client.Bootstrap(context.Background()) }()
	<-entered
	reloaded.client.Logout(context.Background())
	close(release)

	if got := <-done; got != BootstrapSuperseded {
		t.Fatalf("expected superseded, got %s", got)
	}
	if s := reloaded.client.Session(); s.Status != StatusUnauthenticated {
		t.Fatalf("stale bootstrap must not authenticate, got %s", s.Status)
	}
}

func TestConcurrentRefreshSharesOneGatewayCall(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), advisorCreds()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	before := h.record(t).Tokens

	release := make(chan struct{})
	h.fake.SetHook(fake.OpRefresh, func(ctx context.Context) error {
		<-release
		return nil
	})

	const callers = 5
	var (
		start sync.WaitGroup
		done  sync.WaitGroup
	)
	start.Add(1)
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			tokens[i], errs[i] = h.client.EnsureFreshToken(context.Background())
		}(i)
	}
	start.Done()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	if got := h.fake.Calls(fake.OpRefresh); got != 1 {
		t.Fatalf("expected exactly 1 gateway refresh, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != tokens[0] || tokens[i] == before.AccessToken {
			t.Fatalf("callers must share the new token")
		}
	}
	after := h.record(t)
	if after.Tokens.AccessToken != tokens[0] || after.Tokens.RefreshToken == before.RefreshToken {
		t.Fatalf("expected rotated pair persisted")
	}
	if s := h.client.Session(); s.Status != StatusAuthenticated || s.User == nil || s.User.Role != RoleAdvisor {
		t.Fatalf("refresh must keep the user, got %+v", s)
	}
}

func TestRefreshFailureEndsSessionForEveryWaiter(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), studentCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	release := make(chan struct{})
	h.fake.SetHook(fake.OpRefresh, func(ctx context.Context) error {
		<-release
		return gateway.ErrUnauthorized
	})

	var wg sync.WaitGroup
	var expired atomic.Int64
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.client.EnsureFreshToken(context.Background()); errors.Is(err, ErrSessionExpired) {
				expired.Add(1)
			}
		}()
	}
	time.Sleep(30 * time.Millisecond)
	close(release)
	wg.Wait()

	if expired.Load() != 3 {
		t.Fatalf("expected 3 ErrSessionExpired, got %d", expired.Load())
	}
	if h.fake.Calls(fake.OpRefresh) != 1 {
		t.Fatalf("refresh must not be retried, got %d calls", h.fake.Calls(fake.OpRefresh))
	}
	if s := h.client.Session(); s.Status != StatusUnauthenticated || s.Error != "" {
		t.Fatalf("expected silent logout, got %+v", s)
	}
	if rec := h.record(t); rec.HasAccessToken() || rec.User != nil {
		t.Fatalf("expected storage cleared")
	}
}

func TestEnsureFreshTokenRequiresSession(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.EnsureFreshToken(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if h.fake.Calls(fake.OpRefresh) != 0 {
		t.Fatalf("gateway must not be called")
	}
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	cfg := fake.DefaultConfig()
	cfg.AccessTTL = 10 * time.Second
	g, err := fake.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, u := range fake.DevUsers() {
		if _, err := g.AddUser(u); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
	}
	// Default skew is 30s, so a 10s token is always due for refresh.
	h := newHarnessWith(t, g, credstore.NewMemoryStore())
	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	before := h.record(t).Tokens.AccessToken

	token, err := h.client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token == before || g.Calls(fake.OpRefresh) != 1 {
		t.Fatalf("expected proactive refresh")
	}
}

func TestAccessTokenKeepsFreshToken(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	before := h.record(t).Tokens.AccessToken
	token, err := h.client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != before || h.fake.Calls(fake.OpRefresh) != 0 {
		t.Fatalf("fresh token must be returned without refresh")
	}
}

func TestDoRetriesOnceAfterUnauthorized(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	var seen []string
	err := h.client.Do(context.Background(), func(ctx context.Context, token string) error {
		seen = append(seen, token)
		if len(seen) == 1 {
			return gateway.ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(seen) != 2 || seen[0] == seen[1] {
		t.Fatalf("expected a replay with a new token, got %v", seen)
	}
	if h.client.Metrics().Value(MetricRequestRetried) != 1 {
		t.Fatalf("expected retry metric")
	}

	calls := 0
	err = h.client.Do(context.Background(), func(ctx context.Context, token string) error {
		calls++
		return gateway.ErrUnauthorized
	})
	if !errors.Is(err, gateway.ErrUnauthorized) || calls != 2 {
		t.Fatalf("expected exactly one replay, got %d calls and %v", calls, err)
	}
}

func TestNavigationScenarios(t *testing.T) {
	h := newHarness(t)

	// Unauthenticated visitor is sent to login with the origin preserved.
	d := h.client.Decide(guard.Query{RequestedPath: "/x", RequiredRoles: []Role{RoleStudent}})
	if d.Kind != guard.RedirectLogin || d.Origin != "/x" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if _, err := h.client.Login(context.Background(), studentCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := h.client.PostLoginTarget(d.Origin); got != "/x" {
		t.Fatalf("expected to return to /x, got %q", got)
	}
	if got := h.client.PostLoginTarget(""); got != "/student/dashboard" {
		t.Fatalf("expected student landing, got %q", got)
	}

	// Authenticated student asking for an admin area gets a neutral redirect.
	d = h.client.Decide(guard.Query{RequestedPath: "/admin/settings", RequiredRoles: []Role{RoleAdmin}})
	if d.Kind != guard.RedirectNeutral || d.Target != "/student/dashboard" {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestSubscribeSeesTransitionsInOrder(t *testing.T) {
	h := newHarness(t)
	var (
		mu       sync.Mutex
		statuses []Status
	)
	unsubscribe := h.client.Subscribe(func(s Session) {
		mu.Lock()
		statuses = append(statuses, s.Status)
		mu.Unlock()
	})

	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	h.client.Logout(context.Background())
	unsubscribe()
	h.client.Logout(context.Background())

	want := []Status{StatusAuthenticating, StatusAuthenticated, StatusUnauthenticated}
	mu.Lock()
	defer mu.Unlock()
	if len(statuses) != len(want) {
		t.Fatalf("unexpected notifications %v", statuses)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("unexpected notifications %v", statuses)
		}
	}
}

func TestBuildRequiresDependencies(t *testing.T) {
	if _, err := New().WithStore(credstore.NewMemoryStore()).Build(); !errors.Is(err, ErrClientNotReady) {
		t.Fatalf("expected ErrClientNotReady without gateway, got %v", err)
	}
	g, _ := fake.NewDev()
	if _, err := New().WithGateway(g).Build(); !errors.Is(err, ErrClientNotReady) {
		t.Fatalf("expected ErrClientNotReady without store, got %v", err)
	}
	b := New().WithGateway(g).WithStore(credstore.NewMemoryStore())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected second Build to fail")
	}
}

func advisorCreds() Credentials {
	return Credentials{Email: "advisor@campus.test", Password: "advisor-pass"}
}
