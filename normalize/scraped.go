package normalize

import (
	"strings"

	"github.com/use-agent/yokatlas/models"
	"golang.org/x/text/unicode/norm"
)

// Column labels of the rendered listing table, as produced by Label.
var (
	LabelDepartmentCode   = Label("Program Kodu")
	LabelUniversityName   = Label("Üniversite Adı")
	LabelUniversityType   = Label("Üniversite Türü")
	LabelCity             = Label("Şehir")
	LabelProgramName      = Label("Program Adı")
	LabelProgramDetail    = Label("Program Özellikleri")
	LabelScholarship      = Label("Burs Türü")
	LabelBaseScore        = Label("Taban Puan")
	LabelMinimumPlacement = Label("Başarı Sırası")
)

// Label canonicalizes a column header so lookups survive whitespace,
// case and Unicode composition differences in the rendered table.
func Label(s string) string {
	s = norm.NFC.String(s)
	return strings.ToLower(collapseSpace(s))
}

// ScrapedRow is a browser-scraped row: text fragments keyed by the
// canonical label of the column they were read from.
type ScrapedRow map[string]string

// Normalize implements models.RawRow.
func (r ScrapedRow) Normalize(c models.Category) models.Record {
	return FromScraped(r, c)
}

// FromScraped maps a scraped row to a Record. Missing labels become empty
// strings.
func FromScraped(row ScrapedRow, c models.Category) models.Record {
	get := func(label string) string {
		return field(row[label])
	}

	return models.Record{
		UniversityName:   get(LabelUniversityName),
		UniversityType:   get(LabelUniversityType),
		City:             get(LabelCity),
		DepartmentCode:   get(LabelDepartmentCode),
		DepartmentType:   string(c),
		DepartmentName:   joinNonEmpty(get(LabelProgramName), get(LabelProgramDetail)),
		ScholarshipType:  get(LabelScholarship),
		MinimumPlacement: get(LabelMinimumPlacement),
		BaseScore:        get(LabelBaseScore),
	}
}
