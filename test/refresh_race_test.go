//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"
	"time"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway/fake"
)

func TestRefreshRaceSingleGatewayCall(t *testing.T) {
	ctx := context.Background()
	s := newIntegrationStack(t)
	c := s.newClient(t, "race")

	if _, err := c.Login(ctx, dashauth.Credentials{Email: "advisor@campus.test", Password: "advisor-pass"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	release := make(chan struct{})
	s.gateway.SetHook(fake.OpRefresh, func(context.Context) error {
		<-release
		return nil
	})

	const workers = 16
	start := make(chan struct{})
	var (
		wg    sync.WaitGroup
		ready sync.WaitGroup
	)
	wg.Add(workers)
	ready.Add(workers)

	results := make(chan string, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ready.Done()
			<-start
			token, err := c.EnsureFreshToken(ctx)
			if err != nil {
				t.Errorf("EnsureFreshToken failed: %v", err)
			}
			results <- token
		}()
	}

	ready.Wait()
	close(start)
	waitForCalls(t, s.gateway, fake.OpRefresh, 1)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	var first string
	for token := range results {
		if first == "" {
			first = token
		}
		if token != first {
			t.Fatalf("callers received different tokens")
		}
	}
	if got := s.gateway.Calls(fake.OpRefresh); got != 1 {
		t.Fatalf("expected exactly one gateway refresh, got %d", got)
	}

	stored, err := s.rdb.Get(ctx, credstore.PrefixKeys{Prefix: "race"}.Key(credstore.KeyAccessToken)).Result()
	if err != nil {
		t.Fatalf("redis get failed: %v", err)
	}
	if stored != first {
		t.Fatalf("redis does not hold the rotated access token")
	}
}
