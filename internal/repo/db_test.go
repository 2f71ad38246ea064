package repo

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/domain"
)

const fixturePath = "testdata/news.json"

// newTestDB opens a migrated file-backed SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// newSeededDB returns a test database loaded with testdata/news.json.
func newSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	ds, err := LoadDataset(fixturePath)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if err := Seed(context.Background(), db, ds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return db
}

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}

	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpenSQLite_PragmasOnEveryConnection(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}

	// Pin two distinct connections; both must carry the pragmas.
	ctx := context.Background()
	c1, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("conn 1: %v", err)
	}
	defer c1.Close()
	c2, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("conn 2: %v", err)
	}
	defer c2.Close()

	for name, conn := range map[string]*sql.Conn{"c1": c1, "c2": c2} {
		if v := pragmaInt(t, conn, "foreign_keys"); v != 1 {
			t.Fatalf("%s: foreign_keys=%d, want 1", name, v)
		}
		if v := pragmaInt(t, conn, "busy_timeout"); v != 5000 {
			t.Fatalf("%s: busy_timeout=%d, want 5000", name, v)
		}
		// NORMAL == 1
		if v := pragmaInt(t, conn, "synchronous"); v != 1 {
			t.Fatalf("%s: synchronous=%d, want 1", name, v)
		}
	}

	var journal string
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journal); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if strings.ToLower(journal) != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journal)
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := SQLiteDSN("news.db")
	if !strings.HasPrefix(got, "news.db?_pragma=") {
		t.Fatalf("unexpected dsn %q", got)
	}
	if !strings.Contains(got, "foreign_keys%281%29") {
		t.Fatalf("foreign_keys pragma missing: %q", got)
	}
	mem := SQLiteDSN("file:x?mode=memory")
	if !strings.HasPrefix(mem, "file:x?mode=memory&_pragma=") {
		t.Fatalf("existing query string not extended: %q", mem)
	}
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := newTestDB(t)
	m := db.Migrator()
	for _, tbl := range []any{&domain.Topic{}, &domain.User{}, &domain.Article{}, &domain.Comment{}, &domain.Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if m.HasColumn(&domain.Article{}, "comment_count") {
		t.Fatalf("comment_count must be derived, not stored")
	}
}

func TestOpen_SQLiteFromConfig(t *testing.T) {
	cfg := config.Config{
		DBDriver:       config.DriverSQLite,
		DBPath:         filepath.Join(t.TempDir(), "cfg.db"),
		DBMaxOpenConns: 3,
	}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if got := sqlDB.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("MaxOpenConnections=%d, want 3", got)
	}
}

func pragmaInt(t *testing.T, conn *sql.Conn, name string) int {
	t.Helper()
	var v int
	if err := conn.QueryRowContext(context.Background(), "PRAGMA "+name+";").Scan(&v); err != nil {
		t.Fatalf("PRAGMA %s: %v", name, err)
	}
	return v
}

// Compile-time guard to ensure signature stability.
var _ func(string) (*gorm.DB, error) = OpenSQLite

func tableDDL(t *testing.T, db *gorm.DB, table string) string {
	t.Helper()
	var ddl string
	if err := db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl).Error; err != nil {
		t.Fatalf("read ddl of %s: %v", table, err)
	}
	return strings.NewReplacer("`", "", `"`, "", " (", "(").Replace(strings.ToLower(ddl))
}

func TestAutoMigrate_ForeignKeysPointAtParents(t *testing.T) {
	db := newTestDB(t)

	comments := tableDDL(t, db, "comments")
	if !strings.Contains(comments, "references articles(article_id)") {
		t.Fatalf("comments has no article_id foreign key: %s", comments)
	}
	if !strings.Contains(comments, "on delete cascade") {
		t.Fatalf("comments foreign key does not cascade: %s", comments)
	}
	if !strings.Contains(comments, "references users(username)") {
		t.Fatalf("comments has no author foreign key: %s", comments)
	}

	articles := tableDDL(t, db, "articles")
	if strings.Contains(articles, "references comments") {
		t.Fatalf("articles must not reference comments: %s", articles)
	}
	for _, want := range []string{"references topics(slug)", "references users(username)"} {
		if !strings.Contains(articles, want) {
			t.Fatalf("articles missing %q: %s", want, articles)
		}
	}
}

func TestForeignKeys_RawDeleteCascades(t *testing.T) {
	db := newSeededDB(t)

	if err := db.Exec("DELETE FROM articles WHERE article_id = ?", 1).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	var left int64
	db.Table("comments").Where("article_id = ?", 1).Count(&left)
	if left != 0 {
		t.Fatalf("cascade not enforced by the database: %d comments left", left)
	}
	if err := db.Exec("INSERT INTO comments (body, article_id, author, votes, created_at) VALUES ('x', 999, 'butter_bridge', 0, CURRENT_TIMESTAMP)").Error; err == nil {
		t.Fatal("comment on a missing article was accepted")
	}
}
