package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sternrassler/character-browser/internal/testutil"
	"github.com/Sternrassler/character-browser/pkg/config"
	"github.com/Sternrassler/character-browser/pkg/web"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRedis(t *testing.T) (*redis.Client, string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Redis container not available: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	addr := host + ":" + port.Port()
	redisClient := redis.NewClient(&redis.Options{Addr: addr})

	cleanup := func() {
		redisClient.Close()
		redisC.Terminate(ctx)
	}

	return redisClient, addr, cleanup
}

func testConfig(t *testing.T, environ map[string]string) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(environ)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	return cfg
}

func TestNewStack_WithoutRedis(t *testing.T) {
	mock := testutil.NewMockGraphQL(45, 20)
	defer mock.Close()

	s, err := newStack(context.Background(), testConfig(t, map[string]string{"GRAPHQL_URL": mock.URL()}))
	if err != nil {
		t.Fatalf("newStack() failed: %v", err)
	}
	defer s.Close()

	if s.store != nil || s.redis != nil {
		t.Error("no Redis store expected without REDIS_URL")
	}
	if s.client.Endpoint() != mock.URL() {
		t.Errorf("Endpoint() = %q, want %q", s.client.Endpoint(), mock.URL())
	}
}

func TestNewStack_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, map[string]string{"REDIS_URL": "127.0.0.1:1"})

	if _, err := newStack(context.Background(), cfg); err == nil {
		t.Fatal("newStack() should fail when Redis is unreachable")
	}
}

func TestHealthEndpoint(t *testing.T) {
	mock := testutil.NewMockGraphQL(45, 20)
	defer mock.Close()

	s, err := newStack(context.Background(), testConfig(t, map[string]string{"GRAPHQL_URL": mock.URL()}))
	if err != nil {
		t.Fatalf("newStack() failed: %v", err)
	}
	defer s.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	web.NewServer(s.cache, web.DefaultConfig()).Routes().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint(t *testing.T) {
	_, addr, cleanup := setupTestRedis(t)
	defer cleanup()

	mock := testutil.NewMockGraphQL(45, 20)
	defer mock.Close()

	s, err := newStack(context.Background(), testConfig(t, map[string]string{
		"GRAPHQL_URL": mock.URL(),
		"REDIS_URL":   addr,
	}))
	if err != nil {
		t.Fatalf("newStack() failed: %v", err)
	}
	defer s.Close()

	cfg := web.DefaultConfig()
	cfg.Ready = s.store
	handler := web.NewServer(s.cache, cfg).Routes()

	t.Run("ready", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ready", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}

		if string(body) != "OK" {
			t.Errorf("Expected body 'OK', got %s", string(body))
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		// Close Redis to simulate failure
		s.redis.Close()

		req := httptest.NewRequest("GET", "/ready", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		resp := w.Result()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "browse"} {
		if !names[want] {
			t.Errorf("missing %q subcommand", want)
		}
	}

	serve, _, err := root.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("Find(serve) failed: %v", err)
	}
	for _, flag := range []string{"addr", "warm"} {
		if serve.Flags().Lookup(flag) == nil {
			t.Errorf("serve is missing --%s", flag)
		}
	}

	browse, _, err := root.Find([]string{"browse"})
	if err != nil {
		t.Fatalf("Find(browse) failed: %v", err)
	}
	if browse.Flags().Lookup("page") == nil {
		t.Error("browse is missing --page")
	}
}

func TestBrowseCommand_RejectsInvalidPage(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"browse", "--page", "0"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--page") {
		t.Errorf("Execute() error = %v, want a --page error", err)
	}
}

func TestServeCommand_RejectsInvalidLogLevel(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"serve", "--log-level", "loud"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("Execute() error = %v, want a LOG_LEVEL error", err)
	}
}
