package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeparators(t *testing.T) {
	files := []File{
		{Name: "raw.a.sql", Prefix: "raw", SQL: "CREATE TABLE raw.a (id INT)"},
		{Name: "raw.b.sql", Prefix: "raw", SQL: "CREATE TABLE raw.b (id INT)"},
		{Name: "raw.c.sql", Prefix: "raw", SQL: "CREATE TABLE raw.c (id INT)"},
	}

	batch := Build("raw", files, nil)

	assert.Equal(t, 3, batch.Count)
	assert.Equal(t, 2, strings.Count(batch.Query, ";\n\n"), "three files join with exactly two separators")
	assert.True(t, strings.HasSuffix(batch.Query, ";"))
	assert.False(t, strings.HasSuffix(batch.Query, ";;"))
}

func TestBuildEmpty(t *testing.T) {
	batch := Build("raw", nil, nil)

	assert.Equal(t, 0, batch.Count)
	assert.Empty(t, batch.Query)
	assert.Empty(t, batch.Files)
}

func TestBuildCountIgnoresNestedSemicolons(t *testing.T) {
	files := []File{
		{Name: "raw.proc.sql", Prefix: "raw", SQL: "CREATE TABLE raw.a (id INT); CREATE TABLE raw.b (id INT)"},
	}

	batch := Build("raw", files, nil)

	// Count is files included, not semicolons in the text.
	assert.Equal(t, 1, batch.Count)
}

func TestBuildAppliesRewrite(t *testing.T) {
	files := []File{
		{Name: "raw.customers.sql", Prefix: "raw", SQL: "CREATE TABLE raw.customers(id INT)"},
	}

	rewrite := func(sql string) string {
		return strings.ReplaceAll(sql, "raw.", "RAW_DB.")
	}

	batch := Build("raw", files, rewrite)

	assert.Equal(t, "CREATE TABLE RAW_DB.customers(id INT);", batch.Query)
	// Provenance reflects the original text, pre-rewrite.
	require.Len(t, batch.Files, 1)
	assert.Equal(t, "raw", batch.Files[0].DetectedSchema)
}

func TestBuildProvenance(t *testing.T) {
	files := []File{
		{Name: "raw.customers.sql", Prefix: "raw", SQL: "CREATE TABLE raw.customers(id INT)"},
		{Name: "raw.grants.sql", Prefix: "raw", SQL: "GRANT SELECT ON raw.customers TO ROLE reporting"},
	}

	batch := Build("raw", files, nil)

	require.Len(t, batch.Files, 2)
	assert.Equal(t, Provenance{Name: "raw.customers.sql", DetectedSchema: "raw"}, batch.Files[0])
	assert.Equal(t, Provenance{Name: "raw.grants.sql", DetectedSchema: SchemaUnknown}, batch.Files[1])
}
