package models

// Record is the canonical normalized admissions entry. Every field is a
// string, numeric ones included, so source formatting is preserved. Missing
// values are empty strings, never absent.
type Record struct {
	UniversityName   string `json:"universityName"`
	UniversityType   string `json:"universityType"`
	City             string `json:"city"`
	DepartmentCode   string `json:"departmentCode"`
	DepartmentType   string `json:"departmentType"`
	DepartmentName   string `json:"departmentName"`
	ScholarshipType  string `json:"scholarshipType"`
	MinimumPlacement string `json:"minimumPlacement"`
	BaseScore        string `json:"baseScore"`
}

// RecordKeys is the stable field order used by every serialized form.
var RecordKeys = []string{
	"universityName",
	"universityType",
	"city",
	"departmentCode",
	"departmentType",
	"departmentName",
	"scholarshipType",
	"minimumPlacement",
	"baseScore",
}

// Values returns the field values in RecordKeys order.
func (r Record) Values() []string {
	return []string{
		r.UniversityName,
		r.UniversityType,
		r.City,
		r.DepartmentCode,
		r.DepartmentType,
		r.DepartmentName,
		r.ScholarshipType,
		r.MinimumPlacement,
		r.BaseScore,
	}
}

// Category returns the record's category.
func (r Record) Category() Category { return Category(r.DepartmentType) }

// RawRow is one source-shaped row before normalization. The API strategy
// yields ordered cell lists; the browser strategy yields labeled text
// fragments. Both normalize to the same Record.
type RawRow interface {
	Normalize(c Category) Record
}

// PageCursor identifies one fetchable page of a category. Index is 0-based
// for the query strategy (offset paging) and 1-based for the browser
// strategy (the UI pagination control).
type PageCursor struct {
	Category Category
	Index    int
	Size     int
}

// Offset is the record offset of the cursor for 0-based paging.
func (c PageCursor) Offset() int { return c.Index * c.Size }
