package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SourceDir is where new migrations are written, relative to the repo root.
const SourceDir = "pkg/migrate/migrations"

const versionLayout = "20060102150405"

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`

var slugDisallowed = regexp.MustCompile(`[^a-z0-9]+`)

// migrationSlug turns a free-form description into the snake_case suffix
// accepted by ValidateDir.
func migrationSlug(name string) string {
	slug := slugDisallowed.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}

// CreateSQLMigration writes an empty goose migration named
// <version>_<slug>.sql. Passing DefaultDir targets SourceDir so new files
// end up next to the embedded ones.
func CreateSQLMigration(dir, name string) (string, error) {
	return createAt(dir, name, time.Now().UTC())
}

func createAt(dir, name string, now time.Time) (string, error) {
	switch {
	case dir == "":
		return "", fmt.Errorf("dir is required")
	case dir == DefaultDir:
		dir = SourceDir
	}

	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %q: %w", dir, err)
	}

	path := filepath.Join(dir, now.Format(versionLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("migration already exists: %s", path)
		}
		return "", fmt.Errorf("creating %q: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, migrationTemplate, slug); err != nil {
		return "", fmt.Errorf("writing %q: %w", path, err)
	}
	return path, nil
}
