package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
	versionDigits = 6
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}} ({{.Direction}})
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

var (
	migrationFileRe = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)
	nonWordRe       = regexp.MustCompile(`[^a-z0-9]+`)
)

// MigrationFile is one numbered up/down pair
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Base returns the shared file name stem, e.g. 000003_writeoff_reasons
func (f MigrationFile) Base() string {
	return fmt.Sprintf("%0*d_%s", versionDigits, f.Version, f.Name)
}

// CreateMigration writes an empty up/down pair numbered one past the highest
// existing migration in dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	mf := &MigrationFile{Version: next, Name: slug}
	mf.UpPath = filepath.Join(dir, mf.Base()+upSuffix)
	mf.DownPath = filepath.Join(dir, mf.Base()+downSuffix)

	created := time.Now().Format(time.RFC3339)
	if err := writeTemplate(mf.UpPath, mf.Base(), "up", description, created); err != nil {
		return nil, err
	}
	if err := writeTemplate(mf.DownPath, mf.Base(), "down", description, created); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeTemplate(path, name, direction, description, created string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	return fileTemplate.Execute(f, map[string]string{
		"Name":        name,
		"Direction":   direction,
		"Description": strings.TrimSpace(description),
		"Created":     created,
	})
}

// slugify lower-cases name and collapses every other run of characters into
// a single underscore
func slugify(name string) string {
	return strings.Trim(nonWordRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// ListMigrations returns the up migrations in dir ordered by version. A
// missing directory holds no migrations.
func ListMigrations(dir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var files []MigrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(e.Name(), upSuffix)
		files = append(files, MigrationFile{
			Version:  uint(version),
			Name:     match[2],
			UpPath:   filepath.Join(dir, e.Name()),
			DownPath: filepath.Join(dir, base+downSuffix),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}
