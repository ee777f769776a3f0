// Package migration applies the embedded schema migrations in version order.
// Applied versions are tracked in a schema_migrations table together with a
// checksum of the SQL that was executed, so a modified migration file is
// detected instead of silently diverging from the deployed schema.
package migration

import (
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	// ErrInvalidMigrationFile indicates a migration file that cannot be parsed.
	ErrInvalidMigrationFile = errors.New("migration: invalid migration file")
	// ErrDuplicateVersion indicates two migration files sharing a version.
	ErrDuplicateVersion = errors.New("migration: duplicate version")
	// ErrChecksumMismatch indicates an applied migration whose file content changed.
	ErrChecksumMismatch = errors.New("migration: checksum mismatch")
)

// filePattern matches {version}_{description}.sql with a numeric version.
var filePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Migration represents one schema migration with its metadata and SQL content.
type Migration struct {
	Version     int
	Description string
	SQL         string
	Checksum    string
}

// AppliedMigration records a migration that has been executed.
type AppliedMigration struct {
	Version       int
	Checksum      string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// Load parses the embedded migration files, sorted by version ascending.
func Load() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		matches := filePattern.FindStringSubmatch(name)
		if matches == nil {
			return nil, fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, name)
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("%w: version in %q is not numeric", ErrInvalidMigrationFile, name)
		}
		if existing, ok := seen[version]; ok {
			return nil, fmt.Errorf("%w: version %d found in both %s and %s", ErrDuplicateVersion, version, existing, name)
		}
		seen[version] = name

		content, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		sqlContent := string(content)
		if strings.TrimSpace(sqlContent) == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidMigrationFile, name)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: descriptionFor(sqlContent, matches[2]),
			SQL:         sqlContent,
			Checksum:    checksum(sqlContent),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// descriptionFor prefers a "-- Description: ..." header over the filename.
func descriptionFor(sqlContent, filenameDescription string) string {
	for _, line := range strings.Split(sqlContent, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-- Description:") {
			if description := strings.TrimSpace(strings.TrimPrefix(line, "-- Description:")); description != "" {
				return description
			}
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
	}
	return strings.ReplaceAll(filenameDescription, "_", " ")
}

func checksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
