package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	server := NewServer()
	ts := httptest.NewServer(http.HandlerFunc(server.HandleWebSocket))
	t.Cleanup(ts.Close)
	return server, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestServer_BroadcastReload(t *testing.T) {
	server, url := startServer(t)

	received := make(chan *ReloadPayload, 1)
	client := NewClient(url)
	client.OnReload(func(p *ReloadPayload) { received <- p })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	waitFor(t, func() bool { return server.SessionCount() == 1 }, "session registration")

	payload := ReloadPayload{
		Component: "Counter",
		Changes:   []ChangePayload{{Kind: "inserted", Path: "10"}},
	}
	if err := server.Broadcast(FrameReload, payload); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Component != "Counter" || len(got.Changes) != 1 {
			t.Errorf("payload = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reload frame never arrived")
	}
}

func TestServer_BroadcastBuildError(t *testing.T) {
	server, url := startServer(t)

	received := make(chan *ErrorPayload, 1)
	client := NewClient(url)
	client.OnBuildError(func(p *ErrorPayload) { received <- p })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	waitFor(t, func() bool { return server.SessionCount() == 1 }, "session registration")

	server.Broadcast(FrameBuildError, ErrorPayload{Component: "Broken", Message: "no render body"})

	select {
	case got := <-received:
		if got.Component != "Broken" {
			t.Errorf("payload = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error frame never arrived")
	}
}

func TestClient_HandlerRegisteredAfterConnect(t *testing.T) {
	server, url := startServer(t)

	client := NewClient(url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	waitFor(t, func() bool { return server.SessionCount() == 1 }, "session registration")

	// Registration races the running read loop; frames arriving after it
	// must reach the new handler.
	received := make(chan *ReloadPayload, 1)
	client.OnReload(func(p *ReloadPayload) { received <- p })

	if err := server.Broadcast(FrameReload, ReloadPayload{Component: "Late"}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Component != "Late" {
			t.Errorf("payload = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reload frame never arrived")
	}
}

func TestServer_SessionLifecycle(t *testing.T) {
	server, url := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a := NewClient(url)
	if err := a.Connect(ctx); err != nil {
		t.Fatalf("first Connect failed: %v", err)
	}
	b := NewClient(url)
	if err := b.Connect(ctx); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}

	waitFor(t, func() bool { return server.SessionCount() == 2 }, "both sessions")

	a.Close()
	waitFor(t, func() bool { return server.SessionCount() == 1 }, "session removal")
	b.Close()
	waitFor(t, func() bool { return server.SessionCount() == 0 }, "empty session map")
}
