package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"gateconsole/pkg/models"
)

func TestDeriveBaseURL(t *testing.T) {
	cases := []struct {
		host, port, want string
	}{
		{"127.0.0.1", "8081", "http://127.0.0.1:8081"},
		{"engine.internal", "80", "http://engine.internal:80"},
		{"::1", "9000", "http://::1:9000"},
	}
	for _, tc := range cases {
		got := Derive(tc.host, tc.port)
		if got.BaseURL != tc.want || got.Host != tc.host || got.Port != tc.port {
			t.Fatalf("Derive(%q,%q) = %+v, want base %q", tc.host, tc.port, got, tc.want)
		}
	}
}

func TestMergeKeepsCurrentForEmptyFields(t *testing.T) {
	cur := Derive("10.0.0.1", "8081")

	got := Merge(cur, models.EngineConfig{Port: "9090"})
	if got.Host != "10.0.0.1" || got.BaseURL != "http://10.0.0.1:9090" {
		t.Fatalf("unexpected merge: %+v", got)
	}

	got = Merge(cur, models.EngineConfig{Host: "h", BaseURL: "http://ignored:1"})
	if got.BaseURL != "http://h:8081" {
		t.Fatalf("base URL must be re-derived: %+v", got)
	}

	got = Merge(cur, models.EngineConfig{Host: " scanner ", Port: " 9000 "})
	if got.Host != "scanner" || got.Port != "9000" || got.BaseURL != "http://scanner:9000" {
		t.Fatalf("patch values must be trimmed: %+v", got)
	}

	got = Merge(cur, models.EngineConfig{Host: "  ", Port: "\t"})
	if got.BaseURL != "http://10.0.0.1:8081" {
		t.Fatalf("blank patch fields must keep current: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	for _, port := range []string{"1", "8081", "65535"} {
		if err := Validate(Derive("h", port)); err != nil {
			t.Fatalf("expected port %q to be valid: %v", port, err)
		}
	}
	for _, cfg := range []models.EngineConfig{
		Derive(" ", "8081"),
		Derive(" h", "8081"),
		Derive("h/path", "8081"),
		Derive("h", ""),
		Derive("h", "eighty"),
		Derive("h", "NaN"),
		Derive("h", "Infinity"),
		Derive("h", " 9000 "),
		Derive("h", "1.5"),
		Derive("h", "1e3"),
		Derive("h", "+80"),
		Derive("h", "-1"),
		Derive("h", "0"),
		Derive("h", "70000"),
	} {
		if err := Validate(cfg); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %+v, got %v", cfg, err)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "engine-config.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	cfg, err := store.Load(ctx)
	if err != nil || cfg != nil {
		t.Fatalf("expected empty store, got %+v, %v", cfg, err)
	}

	if err := store.Save(ctx, Derive("engine", "8443")); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg == nil || cfg.BaseURL != "http://engine:8443" {
		t.Fatalf("unexpected loaded config: %+v", cfg)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"engine-config"`) || !strings.Contains(string(raw), `"baseUrl"`) {
		t.Fatalf("unexpected file layout: %s", raw)
	}
}

func TestManagerUpdateResetAndNotify(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "s.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	m, err := NewManager(ctx, store, models.EngineConfig{Host: "127.0.0.1", Port: "8081"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.Current().BaseURL != "http://127.0.0.1:8081" {
		t.Fatalf("unexpected default: %+v", m.Current())
	}

	var notified []string
	m.OnChange(func(cfg models.EngineConfig) { notified = append(notified, cfg.BaseURL) })

	if _, err := m.Update(ctx, models.EngineConfig{Host: "scanner", Port: "abc"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if m.Current().Host != "127.0.0.1" {
		t.Fatalf("invalid update must not apply: %+v", m.Current())
	}

	if _, err := m.Update(ctx, models.EngineConfig{Host: "scanner"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	reloaded, err := NewManager(ctx, store, models.EngineConfig{Host: "127.0.0.1", Port: "8081"})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Current().BaseURL != "http://scanner:8081" {
		t.Fatalf("update not persisted: %+v", reloaded.Current())
	}

	if _, err := m.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if m.Current().BaseURL != "http://127.0.0.1:8081" {
		t.Fatalf("reset did not restore defaults: %+v", m.Current())
	}
	if len(notified) != 2 || notified[0] != "http://scanner:8081" || notified[1] != "http://127.0.0.1:8081" {
		t.Fatalf("unexpected notifications: %v", notified)
	}
}

func TestRedisKey(t *testing.T) {
	if got := redisKey(" gateconsole "); got != "gateconsole:engine-config" {
		t.Fatalf("unexpected key %q", got)
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{Addr: mr.Addr(), KeyPrefix: "console-test"})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	cfg, err := store.Load(ctx)
	if err != nil || cfg != nil {
		t.Fatalf("expected empty store, got %+v, %v", cfg, err)
	}

	if err := store.Save(ctx, Derive("engine", "8443")); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg == nil || cfg.Host != "engine" || cfg.BaseURL != "http://engine:8443" {
		t.Fatalf("unexpected loaded config: %+v", cfg)
	}

	raw, err := mr.Get("console-test:engine-config")
	if err != nil {
		t.Fatalf("key not written: %v", err)
	}
	if !strings.Contains(raw, `"baseUrl":"http://engine:8443"`) {
		t.Fatalf("unexpected stored value: %s", raw)
	}
}

func TestRedisStoreMissingKeyFallsBackToDefaults(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	m, err := NewManager(ctx, store, models.EngineConfig{Host: "127.0.0.1", Port: "8081"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.Current().BaseURL != "http://127.0.0.1:8081" {
		t.Fatalf("expected defaults, got %+v", m.Current())
	}

	if _, err := m.Update(ctx, models.EngineConfig{Port: "9000"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	reloaded, err := NewManager(ctx, store, models.EngineConfig{Host: "127.0.0.1", Port: "8081"})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Current().BaseURL != "http://127.0.0.1:9000" {
		t.Fatalf("update not persisted in redis: %+v", reloaded.Current())
	}

	mr.Del("console-test:engine-config")
	cfg, err := store.Load(ctx)
	if err != nil || cfg != nil {
		t.Fatalf("deleted key should load as nothing saved, got %+v, %v", cfg, err)
	}
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Set("console-test:engine-config", "{not json")
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisStore(RedisConfig{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure")
	}
}
