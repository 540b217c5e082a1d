//go:build integration
// +build integration

package test

import (
	"net/http/httptest"
	"testing"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway/fake"
	"github.com/MrEthical07/goAuthClient/gateway/httpgateway"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// stack is a fake gateway behind a real HTTP server plus a Redis credential store.
type stack struct {
	gateway *fake.Gateway
	server  *httptest.Server
	mr      *miniredis.Miniredis
	rdb     *redis.Client
}

func newIntegrationStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g, err := fake.NewDev()
	if err != nil {
		t.Fatalf("NewDev failed: %v", err)
	}
	srv := httptest.NewServer(fake.NewServer(g))

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
		srv.Close()
	})
	return &stack{gateway: g, server: srv, mr: mr, rdb: rdb}
}

// newClient builds a Client that reaches the gateway over HTTP and persists under prefix.
func (s *stack) newClient(t *testing.T, prefix string) *dashauth.Client {
	t.Helper()
	gw, err := httpgateway.New(s.server.URL)
	if err != nil {
		t.Fatalf("httpgateway.New failed: %v", err)
	}
	cfg := dashauth.DefaultConfig()
	cfg.Gateway.BaseURL = s.server.URL
	cfg.Store.Backend = dashauth.StoreRedis
	cfg.Store.Prefix = prefix

	c, err := dashauth.New().
		WithConfig(cfg).
		WithGateway(gw).
		WithStore(credstore.NewRedisStore(s.rdb, prefix, 0)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}
