package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCartLinesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_lines_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no cart lines migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS cart_lines",
		"REFERENCES users(id) ON DELETE CASCADE",
		"REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_lines_user_product",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_user_created",
		"DROP TABLE IF EXISTS cart_lines",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
