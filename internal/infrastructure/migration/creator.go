package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

var upTemplate = template.Must(template.New("up").Parse(
	`-- {{.Name}}
-- {{.Description}}
-- created {{.Timestamp}}

-- Schema changes go here.

`))

var downTemplate = template.Must(template.New("down").Parse(
	`-- {{.Name}}
-- Rollback for {{.Description}}
-- created {{.Timestamp}}

-- Undo the matching up migration here.

`))

// MigrationFile describes a generated up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes a timestamped up/down .sql pair into
// migrationsDir. The version prefix (YYYYMMDDHHMMSS) keeps files in apply
// order; the name is lowercased and underscored.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := version + "_" + sanitizeName(name)

	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+".up.sql"),
		DownPath:    filepath.Join(migrationsDir, base+".down.sql"),
	}

	if err := renderTo(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := renderTo(mf.DownPath, downTemplate, mf); err != nil {
		// Never leave a half-created pair behind
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

func renderTo(path string, tmpl *template.Template, data *MigrationFile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// sanitizeName lowercases and collapses separators to single underscores,
// dropping any other character.
func sanitizeName(name string) string {
	tokens := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})

	kept := tokens[:0]
	for _, tok := range tokens {
		var b strings.Builder
		for _, r := range tok {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			kept = append(kept, b.String())
		}
	}
	return strings.Join(kept, "_")
}

// ListMigrations returns the base names of the up/down pairs in
// migrationsDir, one entry per pair. A missing directory lists empty.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, found := strings.CutSuffix(entry.Name(), ".up.sql")
		if found && base != "" {
			migrations = append(migrations, base)
		}
	}
	return migrations, nil
}
