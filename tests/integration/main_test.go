package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		os.Exit(0)
	}

	ctx := context.Background()

	var err error
	testDB, err = SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	testDB.Teardown(ctx)
	os.Exit(code)
}

// newServer resets the tables and starts a fresh stack for one test
func newServer(t *testing.T) *TestServer {
	t.Helper()

	if err := testDB.CleanupTables(context.Background()); err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}

	ts, err := NewTestServer(testDB.DB, t.TempDir())
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}
	t.Cleanup(ts.Close)
	return ts
}
