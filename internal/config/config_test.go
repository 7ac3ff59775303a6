package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := tmp.WriteString(""); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}

	cfg, err := Load(tmp.Name())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Oracle.DSN == "" {
		t.Fatalf("unexpected empty oracle dsn")
	}
	if cfg.SUT.DialTimeoutSeconds != 10 {
		t.Fatalf("unexpected dial timeout: %d", cfg.SUT.DialTimeoutSeconds)
	}
	if cfg.Cases.CaseTimeoutSeconds != 120 {
		t.Fatalf("unexpected case timeout: %d", cfg.Cases.CaseTimeoutSeconds)
	}
	if cfg.Logging.LogFile != "logs/miniobench.log" {
		t.Fatalf("unexpected log file: %s", cfg.Logging.LogFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	content := `sut:
  executable_path: /usr/local/bin/sut
  tcp_port: 4000
oracle:
  database: regression_db
`
	if _, err := tmp.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}

	cfg, err := Load(tmp.Name())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SUT.ExecutablePath != "/usr/local/bin/sut" {
		t.Fatalf("unexpected executable path: %s", cfg.SUT.ExecutablePath)
	}
	if cfg.SUT.TCPPort != 4000 {
		t.Fatalf("unexpected tcp port: %d", cfg.SUT.TCPPort)
	}
	if cfg.Oracle.Database != "regression_db" {
		t.Fatalf("unexpected oracle database: %s", cfg.Oracle.Database)
	}
}

func TestEnsureDatabaseInDSNOnlyFillsEmptyPath(t *testing.T) {
	cases := []struct {
		dsn  string
		db   string
		want string
	}{
		{"root:@tcp(127.0.0.1:4000)/", "miniobench_oracle", "root:@tcp(127.0.0.1:4000)/miniobench_oracle"},
		{"root:@tcp(127.0.0.1:4000)/existing", "miniobench_oracle", "root:@tcp(127.0.0.1:4000)/existing"},
		{"root:@tcp(127.0.0.1:4000)/?timeout=5s", "miniobench_oracle", "root:@tcp(127.0.0.1:4000)/miniobench_oracle?timeout=5s"},
	}
	for _, c := range cases {
		got := ensureDatabaseInDSN(c.dsn, c.db)
		if got != c.want {
			t.Errorf("ensureDatabaseInDSN(%q, %q) = %q, want %q", c.dsn, c.db, got, c.want)
		}
	}
}

func TestUpdateDatabaseInDSNPreservesQuery(t *testing.T) {
	got := UpdateDatabaseInDSN("root:@tcp(127.0.0.1:4000)/old?timeout=5s", "new")
	want := "root:@tcp(127.0.0.1:4000)/new?timeout=5s"
	if got != want {
		t.Fatalf("UpdateDatabaseInDSN = %q, want %q", got, want)
	}
}

func TestAdminDSNStripsDatabase(t *testing.T) {
	got := AdminDSN("root:@tcp(127.0.0.1:4000)/mydb?timeout=5s")
	want := "root:@tcp(127.0.0.1:4000)/?timeout=5s"
	if got != want {
		t.Fatalf("AdminDSN = %q, want %q", got, want)
	}
}
