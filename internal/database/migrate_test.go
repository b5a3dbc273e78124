// Package database provides connection setup for MariaDB and Redis.
// This file validates migration SQL files to catch schema mismatches early.
package database

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
)

// validTagCategories must match the ENUM values on emotion_tags.category.
// Current ENUM: ENUM('positive', 'negative', 'neutral')
// Defined in 000001.
var validTagCategories = map[string]bool{
	"positive": true,
	"negative": true,
	"neutral":  true,
}

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// TestMigrations_TagCategoryValues scans all .up.sql migration files for
// INSERT or UPDATE statements that reference the emotion_tags table and
// validates that any category values used are valid ENUM members. This
// prevents the "Data truncated for column 'category'" crash (Error 1265)
// that occurs when an invalid ENUM value is used.
func TestMigrations_TagCategoryValues(t *testing.T) {
	dir := migrationsDir(t)
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migration files found")
	}

	// Tag names are capitalized and colors start with '#', so any quoted
	// all-lowercase word in a data row is a category value.
	categoryPattern := regexp.MustCompile(`'([a-z]+)'`)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}
		content := string(data)

		// Only check files that reference the emotion_tags table.
		if !strings.Contains(content, "emotion_tags") {
			continue
		}

		// Skip CREATE/ALTER TABLE statements (they define the ENUM, not use it).
		lines := strings.Split(content, "\n")
		inDDL := false
		for _, line := range lines {
			trimmed := strings.TrimSpace(strings.ToUpper(line))
			if strings.HasPrefix(trimmed, "CREATE TABLE") || strings.HasPrefix(trimmed, "ALTER TABLE") {
				inDDL = true
			}
			if inDDL {
				if strings.Contains(line, ";") {
					inDDL = false
				}
				continue
			}

			matches := categoryPattern.FindAllStringSubmatch(line, -1)
			for _, match := range matches {
				value := match[1]
				if !validTagCategories[value] {
					t.Errorf("%s: invalid tag category %q; valid values: positive, negative, neutral",
						filepath.Base(f), value)
				}
			}
		}
	}
}

// TestMigrations_SeedTagColors ensures every seeded default tag carries a
// well-formed hex color, matching what the tag service accepts at runtime.
func TestMigrations_SeedTagColors(t *testing.T) {
	dir := migrationsDir(t)
	files, err := filepath.Glob(filepath.Join(dir, "*seed*.up.sql"))
	if err != nil {
		t.Fatalf("globbing seed files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no seed migration found")
	}

	colorPattern := regexp.MustCompile(`'(#[^']*)'`)
	validColor := regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}

		matches := colorPattern.FindAllStringSubmatch(string(data), -1)
		if len(matches) == 0 {
			continue
		}
		for _, match := range matches {
			if !validColor.MatchString(match[1]) {
				t.Errorf("%s: malformed hex color %q", filepath.Base(f), match[1])
			}
		}
	}
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}

	for _, up := range upFiles {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}
