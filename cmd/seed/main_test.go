package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestReadCatalog(t *testing.T) {
	path := writeCatalog(t, `{"challenges":[{"title":"Ace","base_points":3,"bonus_points":1,"is_active":false}]}`)

	catalog, err := readCatalog(path)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if catalog.GameName != "Seeded game" {
		t.Fatalf("expected default game name, got %q", catalog.GameName)
	}
	input := catalog.Challenges[0].toInput()
	if input.Title != "Ace" || input.BasePoints != 3 || *input.BonusPoints != 1 || *input.IsActive {
		t.Fatalf("unexpected challenge input: %+v", input)
	}
}

func TestReadCatalog_Errors(t *testing.T) {
	if _, err := readCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := readCatalog(writeCatalog(t, `{"challenges":[]}`)); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
	if _, err := readCatalog(writeCatalog(t, `{"challenges":`)); err == nil {
		t.Fatalf("expected error for malformed catalog")
	}
}

func TestRun_SeedsMemoryStorage(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_DRIVER", "memory")
	path := writeCatalog(t, `{"game_name":"Test night","challenges":[
		{"title":"Ace","base_points":3},
		{"title":"","base_points":1},
		{"title":"Streak","base_points":2,"is_repeatable":true}
	]}`)

	if err := run(context.Background(), []string{"-catalog", path}, logging.NewNop()); err != nil {
		t.Fatalf("run seed: %v", err)
	}
}

func TestRun_UnknownGame(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_DRIVER", "memory")
	path := writeCatalog(t, `{"challenges":[{"title":"Ace","base_points":3}]}`)

	if err := run(context.Background(), []string{"-catalog", path, "-game", "missing"}, logging.NewNop()); err == nil {
		t.Fatalf("expected unknown game to fail")
	}
}
