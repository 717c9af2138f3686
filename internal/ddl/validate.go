package ddl

import (
	"regexp"
	"strings"
)

// SchemaUnknown is recorded when no CREATE statement is detectable in a
// file. Such files pass validation with a warning.
const SchemaUnknown = "unknown"

// createPattern finds the first schema-qualified CREATE TABLE/VIEW
// statement. Best-effort by design: it cannot see through comments or
// string literals, which is accepted for this naming-convention check.
var createPattern = regexp.MustCompile(`(?i)CREATE\s+(?:OR\s+REPLACE\s+)?(?:TABLE|VIEW)\s+(\w+)\.`)

// DetectSchema returns the lower-cased schema of the first CREATE
// TABLE/VIEW statement in sql, or "" when none is found.
func DetectSchema(sql string) string {
	m := createPattern.FindStringSubmatch(sql)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// ValidationResult records the schema check outcome for one file.
type ValidationResult struct {
	File           File
	DetectedSchema string
	OK             bool
}

// ValidateStage checks every file's detected schema against its filename
// prefix (case-insensitive). A single mismatch invalidates the whole
// stage: ok is false and nothing from the stage may be executed. Files
// with no detectable CREATE statement pass with DetectedSchema set to
// "unknown".
func ValidateStage(files []File) (results []ValidationResult, ok bool) {
	ok = true
	for _, f := range files {
		detected := DetectSchema(f.SQL)
		r := ValidationResult{File: f, DetectedSchema: detected, OK: true}

		switch {
		case detected == "":
			r.DetectedSchema = SchemaUnknown
		case !strings.EqualFold(detected, f.Prefix):
			r.OK = false
			ok = false
		}

		results = append(results, r)
	}
	return results, ok
}
