package ddl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"snowddl/internal/common"
	apperrors "snowddl/pkg/errors"
)

// File is one discovered DDL file. Read-only after discovery.
type File struct {
	Path   string // absolute path
	Name   string // base name, e.g. raw.customers.sql
	Prefix string // stage token parsed from the naming convention
	SQL    string // trimmed file content
}

// Discover walks the immediate subdirectories of root (each one a table
// folder, lexicographic order) and collects files matching
// <prefix>.*.sql inside each, lexicographic within a folder. Files whose
// content trims to empty are skipped silently.
func Discover(root, prefix string) ([]File, error) {
	cleaned, err := common.CleanPath(root)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidPath, "invalid ddl_root path")
	}

	folders, err := TableFolders(cleaned)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, folder := range folders {
		matches, err := filepath.Glob(filepath.Join(folder, prefix+".*.sql"))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeFileNotFound, "failed to glob SQL files").
				WithContext("folder", folder)
		}
		sort.Strings(matches)

		for _, match := range matches {
			path, err := common.ValidatePath(match, cleaned)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidPath, "SQL file escapes ddl_root").
					WithContext("file", match)
			}

			content, err := os.ReadFile(path) // #nosec G304 - path constrained under validated root
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeFilePermission, "failed to read SQL file").
					WithContext("file", path)
			}

			sql := strings.TrimSpace(string(content))
			if sql == "" {
				continue
			}

			files = append(files, File{
				Path:   path,
				Name:   filepath.Base(path),
				Prefix: prefix,
				SQL:    sql,
			})
		}
	}

	return files, nil
}

// TableFolders lists the immediate subdirectories of root in
// lexicographic order.
func TableFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileNotFound, "failed to list ddl_root").
			WithContext("ddl_root", root).
			WithSuggestions("Check the ddl_root path in the [ddl] section of config.ini")
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(folders)
	return folders, nil
}
