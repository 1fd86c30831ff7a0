package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/claim-ledger/internal/config"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/cache"
	basecache "github.com/riskibarqy/claim-ledger/internal/platform/cache"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:               config.EnvDev,
		ServiceName:          "claim-ledger",
		ServiceVersion:       "test",
		HTTPAddr:             "127.0.0.1:0",
		ShutdownTimeout:      time.Second,
		MutationTimeout:      time.Second,
		CORSAllowedOrigins:   []string{"*"},
		StorageDriver:        config.StorageMemory,
		CacheEnabled:         true,
		CacheTTL:             time.Minute,
		RealtimeBufferSize:   4,
		RealtimePingInterval: time.Second,
		ImportWorkers:        2,
	}
}

func TestOpenRepositories_MemoryWithCache(t *testing.T) {
	hub := realtime.NewHub(4, logging.NewNop())
	repos, err := OpenRepositories(context.Background(), testConfig(), hub, logging.NewNop())
	if err != nil {
		t.Fatalf("open repositories: %v", err)
	}
	defer repos.Close()

	if repos.Cache == nil {
		t.Fatalf("expected cache store when caching is enabled")
	}
	if _, ok := repos.Games.(*cache.GameRepository); !ok {
		t.Fatalf("expected cached game repository, got %T", repos.Games)
	}
}

func TestOpenRepositories_CacheDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CacheEnabled = false

	repos, err := OpenRepositories(context.Background(), cfg, realtime.NewHub(4, nil), logging.NewNop())
	if err != nil {
		t.Fatalf("open repositories: %v", err)
	}
	if repos.Cache != nil {
		t.Fatalf("expected no cache store")
	}
	if _, ok := repos.Games.(*cache.GameRepository); ok {
		t.Fatalf("expected undecorated game repository")
	}
	if err := repos.Close(); err != nil {
		t.Fatalf("close memory storage: %v", err)
	}
}

func TestNew_ServesHealthAndLedgerRoutes(t *testing.T) {
	a, err := New(context.Background(), testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	}()

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/v1/games", "application/json", strings.NewReader(`{"name":"Quiz night"}`))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected create game 201, got %d", resp.StatusCode)
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestStartJobs_PurgesExpiredCacheEntries(t *testing.T) {
	store := basecache.NewStore[string](time.Millisecond)
	store.Set(context.Background(), "game:g-1", "stale")

	sched, err := StartJobs(JobOptions{CachePurgeInterval: 10 * time.Millisecond}, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("start jobs: %v", err)
	}
	defer sched.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for store.Stats().Entries != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected expired entry to be purged, cache still holds %d", store.Stats().Entries)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartJobs_NoJobsWhenIntervalsZero(t *testing.T) {
	sched, err := StartJobs(JobOptions{}, basecache.NewStore[string](time.Minute), realtime.NewHub(1, nil), logging.NewNop())
	if err != nil {
		t.Fatalf("start jobs: %v", err)
	}
	defer sched.Shutdown()

	if n := len(sched.Jobs()); n != 0 {
		t.Fatalf("expected no jobs, got %d", n)
	}
}

func postForID(t *testing.T, srv *httptest.Server, path, body string) string {
	t.Helper()

	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("post %s: expected 201, got %d", path, resp.StatusCode)
	}

	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return env.Data.ID
}

func TestNew_ForwardsChangesToWebhook(t *testing.T) {
	var (
		mu       sync.Mutex
		received []claim.Change
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var change claim.Change
		if err := sonic.Unmarshal(raw, &change); err == nil {
			mu.Lock()
			received = append(received, change)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	cfg := testConfig()
	cfg.WebhookURL = hook.URL
	cfg.WebhookTimeout = time.Second
	cfg.WebhookBufferSize = 8

	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	gameID := postForID(t, srv, "/v1/games", `{"name":"Hook night"}`)
	playerID := postForID(t, srv, "/v1/games/"+gameID+"/players", `{"name":"Ana"}`)
	challengeID := postForID(t, srv, "/v1/games/"+gameID+"/challenges", `{"title":"Ace","base_points":2}`)
	eventID := postForID(t, srv, "/v1/games/"+gameID+"/claims",
		`{"player_id":"`+playerID+`","challenge_id":"`+challengeID+`","kind":"base"}`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 forwarded change, got %d", len(received))
	}
	if received[0].Kind != claim.ChangeInsert || received[0].EventID != eventID || received[0].GameID != gameID {
		t.Fatalf("unexpected forwarded change: %+v", received[0])
	}
}
