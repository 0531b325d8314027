package db

import (
	"testing"
	"testing/fstest"
	"time"
)

func TestLoad(t *testing.T) {
	files := fstest.MapFS{
		"002_problem_list.sql": {Data: []byte("CREATE TABLE problem_list (id UUID);")},
		"001_users.sql":        {Data: []byte("CREATE TABLE users (id UUID);")},
		"010_later.sql":        {Data: []byte("SELECT 10;")},
		"README.md":            {Data: []byte("docs")},
		"seed.sql":             {Data: []byte("SELECT 0;")},
		"abc_bad.sql":          {Data: []byte("SELECT 0;")},
		"sub/003_nested.sql":   {Data: []byte("SELECT 3;")},
	}

	migrations, err := NewMigrator(nil, files).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	wantVersions := []int{1, 2, 10}
	for i, v := range wantVersions {
		if migrations[i].Version != v {
			t.Errorf("migration %d: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
	if migrations[0].Name != "001_users.sql" {
		t.Errorf("expected 001_users.sql first, got %s", migrations[0].Name)
	}
	if migrations[1].SQL != "CREATE TABLE problem_list (id UUID);" {
		t.Errorf("unexpected SQL: %s", migrations[1].SQL)
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	files := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"01_b.sql":  {Data: []byte("SELECT 1;")},
	}
	if _, err := NewMigrator(nil, files).Load(); err == nil {
		t.Fatal("expected error for duplicate version")
	}
}

func TestLoad_Empty(t *testing.T) {
	migrations, err := NewMigrator(nil, fstest.MapFS{}).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected no migrations, got %d", len(migrations))
	}
}

func TestPendingAndStatuses(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_users.sql"},
		{Version: 2, Name: "002_problem_list.sql"},
		{Version: 3, Name: "003_indexes.sql"},
	}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	applied := map[int]time.Time{1: at, 3: at}

	pending := Pending(migrations, applied)
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected only version 2 pending, got %+v", pending)
	}

	statuses := Statuses(migrations, applied)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Applied || statuses[0].AppliedAt == nil || !statuses[0].AppliedAt.Equal(at) {
		t.Errorf("expected version 1 applied at %v, got %+v", at, statuses[0])
	}
	if statuses[1].Applied || statuses[1].AppliedAt != nil {
		t.Errorf("expected version 2 pending, got %+v", statuses[1])
	}
}
