// Package output serializes collected records to the JSON and delimited
// text files a run produces.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/use-agent/yokatlas/models"
)

// FormatCSV renders records as comma-separated lines under a header of
// models.RecordKeys. Lines are separated by "\n" with no trailing newline.
// An empty value is written as the literal "", embedded quotes are doubled
// and values containing a space, comma or line break are quoted.
// With no records only the header is written.
func FormatCSV(records []models.Record) string {
	var b strings.Builder
	b.WriteString(strings.Join(models.RecordKeys, ","))
	for _, r := range records {
		b.WriteByte('\n')
		for i, v := range r.Values() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvField(v))
		}
	}
	return b.String()
}

func csvField(v string) string {
	if v == "" {
		return `""`
	}
	quote := strings.ContainsAny(v, " ,\r\n")
	v = strings.ReplaceAll(v, `"`, `""`)
	if quote {
		return `"` + v + `"`
	}
	return v
}

// FormatJSON renders records as a JSON array of flat objects. A nil slice
// renders as [].
func FormatJSON(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	return json.Marshal(records)
}

// WriteFiles writes records as JSON to dir/jsonName and as delimited text
// to dir/csvName, creating dir if needed.
func WriteFiles(dir, jsonName, csvName string, records []models.Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: create %s: %w", dir, err)
	}

	data, err := FormatJSON(records)
	if err != nil {
		return fmt.Errorf("output: encode json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, jsonName), data, 0o644); err != nil {
		return fmt.Errorf("output: write %s: %w", jsonName, err)
	}

	if err := os.WriteFile(filepath.Join(dir, csvName), []byte(FormatCSV(records)), 0o644); err != nil {
		return fmt.Errorf("output: write %s: %w", csvName, err)
	}
	return nil
}
