package ddl

// Provenance records which file contributed a statement to a batch, for
// the success report.
type Provenance struct {
	Name           string `yaml:"file"`
	DetectedSchema string `yaml:"detected_schema"`
}

// Batch is one concatenated multi-statement query for a stage, executed
// as a single client invocation and discarded afterwards.
type Batch struct {
	Stage string       `yaml:"stage"`
	Files []Provenance `yaml:"files"`
	Query string       `yaml:"query"`
	Count int          `yaml:"statements"`
}

// Build joins the files' SQL with ";\n\n" and a trailing ";". rewrite,
// when non-nil, is applied to each file's text before joining. Count is
// the number of files included, not the number of semicolons: semicolons
// nested inside a single file are not split. An empty file list yields a
// zero-count batch that must not be executed.
func Build(stage string, files []File, rewrite func(string) string) Batch {
	b := Batch{Stage: stage}
	if len(files) == 0 {
		return b
	}

	for i, f := range files {
		b.Files = append(b.Files, Provenance{
			Name:           f.Name,
			DetectedSchema: detectedOrUnknown(f.SQL),
		})

		sql := f.SQL
		if rewrite != nil {
			sql = rewrite(sql)
		}

		if i > 0 {
			b.Query += ";\n\n"
		}
		b.Query += sql
	}

	b.Query += ";"
	b.Count = len(files)
	return b
}

func detectedOrUnknown(sql string) string {
	if detected := DetectSchema(sql); detected != "" {
		return detected
	}
	return SchemaUnknown
}
