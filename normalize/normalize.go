// Package normalize turns source-shaped rows into canonical records.
//
// Extraction is positional for API rows and label-based for scraped rows.
// Both encode exact knowledge of the upstream table layout: when the source
// moves a column, the index or label constants below must follow.
package normalize

import (
	"regexp"
	"strings"

	"github.com/use-agent/yokatlas/models"
	"golang.org/x/text/unicode/norm"
)

// Cell positions in the server_processing data array.
const (
	cellDepartmentCode   = 2
	cellProgramDetail    = 5
	cellCity             = 6
	cellUniversityType   = 7
	cellScholarship      = 8
	cellBaseScore        = 37
	cellUniversityName   = 41
	cellProgramName      = 42
	cellMinimumPlacement = 44
)

var reDecimalComma = regexp.MustCompile(`^\d+,\d+$`)

// DecimalDot rewrites a comma-decimal number ("12,34") to dot-decimal
// ("12.34"). Anything else, including text that merely contains a comma,
// is returned unchanged.
func DecimalDot(s string) string {
	if !reDecimalComma.MatchString(s) {
		return s
	}
	return strings.Replace(s, ",", ".", 1)
}

// CellRow is an API row: an ordered list of string cells, some of which
// carry inline HTML.
type CellRow []string

// Normalize implements models.RawRow.
func (r CellRow) Normalize(c models.Category) models.Record {
	return FromCells(r, c)
}

// FromCells maps an API row to a Record. Out-of-range cells become empty
// strings.
func FromCells(cells []string, c models.Category) models.Record {
	at := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return field(cellText(cells[i]))
	}

	return models.Record{
		UniversityName:   at(cellUniversityName),
		UniversityType:   at(cellUniversityType),
		City:             at(cellCity),
		DepartmentCode:   at(cellDepartmentCode),
		DepartmentType:   string(c),
		DepartmentName:   joinNonEmpty(at(cellProgramName), at(cellProgramDetail)),
		ScholarshipType:  at(cellScholarship),
		MinimumPlacement: at(cellMinimumPlacement),
		BaseScore:        at(cellBaseScore),
	}
}

// field applies the text transforms every stored value goes through.
func field(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	return DecimalDot(s)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
