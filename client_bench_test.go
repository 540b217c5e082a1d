package goAuthClient

import (
	"context"
	"testing"

	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway/fake"
	"github.com/MrEthical07/goAuthClient/guard"
)

func newBenchmarkClient(b *testing.B) *Client {
	b.Helper()
	g, err := fake.NewDev()
	if err != nil {
		b.Fatalf("NewDev: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Store.Backend = StoreMemory
	c, err := New().WithConfig(cfg).WithGateway(g).WithStore(credstore.NewMemoryStore()).Build()
	if err != nil {
		b.Fatalf("Build: %v", err)
	}
	b.Cleanup(c.Close)
	if _, err := c.Login(context.Background(), adminCreds); err != nil {
		b.Fatalf("Login: %v", err)
	}
	return c
}

func BenchmarkSessionSnapshotParallel(b *testing.B) {
	c := newBenchmarkClient(b)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if c.Session().Status != StatusAuthenticated {
				b.Fatal("expected authenticated")
			}
		}
	})
}

func BenchmarkDecide(b *testing.B) {
	c := newBenchmarkClient(b)
	q := guard.Query{RequestedPath: "/admin/users", RequiredRoles: []Role{RoleAdmin}}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if d := c.Decide(q); d.Kind != guard.Render {
			b.Fatalf("unexpected decision %v", d.Kind)
		}
	}
}

func BenchmarkAccessTokenParallel(b *testing.B) {
	c := newBenchmarkClient(b)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.AccessToken(context.Background()); err != nil {
				b.Fatalf("AccessToken: %v", err)
			}
		}
	})
}
