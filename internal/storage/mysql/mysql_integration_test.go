//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"counsel_locator/internal/domain"
	mysqlrepo "counsel_locator/internal/storage/mysql"
)

// ---------- small helpers ----------
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndListNear(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=counsel",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "counsel")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Arrange
	near := domain.Attorney{
		ID:               "osm-node-1",
		Name:             "Karachi Legal Aid Centre",
		Source:           domain.SourceOSM,
		Lat:              pfloat(24.87),
		Lng:              pfloat(67.01),
		Location:         "Saddar, Karachi",
		DetailedLocation: "Saddar, Karachi",
		Phone:            "+92 21 1234567",
		Rating:           4.6,
		Cases:            120,
		Specialization:   []string{"Legal Aid"},
		Languages:        []string{"en", "ur"},
		SocialMedia:      map[string]string{"twitter": "@klac"},
		Reviews:          []domain.Review{},
		Verified:         true,
		LastUpdated:      now,
	}
	far := near
	far.ID, far.Name = "osm-node-2", "Lahore Rights Chambers"
	far.Lat, far.Lng = pfloat(31.55), pfloat(74.34)
	mock := near
	mock.ID, mock.Source = "mock-1", domain.SourceMock

	if err := repo.UpsertAttorneys(ctx, []domain.Attorney{near, far, mock}); err != nil {
		t.Fatalf("UpsertAttorneys: %v", err)
	}

	// A second sighting without a phone keeps the stored one.
	again := near
	again.Phone = ""
	again.Rating = 4.7
	if err := repo.UpsertAttorneys(ctx, []domain.Attorney{again}); err != nil {
		t.Fatalf("UpsertAttorneys (again): %v", err)
	}

	box := domain.BoundingBox{MinLat: 24.5, MinLng: 66.5, MaxLat: 25.5, MaxLng: 67.5}
	got, err := repo.ListNear(ctx, box, 10)
	if err != nil {
		t.Fatalf("ListNear: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 record in box, got %d: %+v", len(got), got)
	}
	a := got[0]
	if a.ID != "osm-node-1" || a.Phone != "+92 21 1234567" || a.Rating != 4.7 {
		t.Fatalf("unexpected record: %+v", a)
	}
	if len(a.Languages) != 2 || a.SocialMedia["twitter"] != "@klac" || len(a.PracticeAreas) != 1 {
		t.Fatalf("json columns not round-tripped: %+v", a)
	}

	if err := repo.LogMiss(ctx, "24.870_67.010_50", "no_results"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, "24.870_67.010_50", "no_results"); err != nil {
		t.Fatalf("LogMiss (again): %v", err)
	}
	var hits int
	if err := db.QueryRowContext(ctx, `SELECT hits FROM upstream_misses WHERE cache_key = ?`, "24.870_67.010_50").Scan(&hits); err != nil {
		t.Fatalf("read miss: %v", err)
	}
	if hits != 2 {
		t.Fatalf("want 2 hits, got %d", hits)
	}
}
