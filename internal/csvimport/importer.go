package csvimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/validation"
)

const (
	messageEmpty       = "CSV file is empty"
	messageParseFailed = "Failed to parse CSV file. Please check the format."
)

// RowError lists every problem found on one line of the upload. Row 0 refers
// to the file as a whole; data rows start at 2 because the header is row 1.
type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// Report is the outcome of validating one upload.
type Report[T any] struct {
	Valid  bool       `json:"valid"`
	Errors []RowError `json:"errors"`
	Data   []T        `json:"data"`
}

// Summary renders the first error the way the admin console displays it.
func (r Report[T]) Summary() string {
	if len(r.Errors) == 0 {
		return ""
	}
	first := r.Errors[0]
	if first.Row == 0 {
		return strings.Join(first.Errors, "; ")
	}
	return fmt.Sprintf("Row %d: %s", first.Row, strings.Join(first.Errors, "; "))
}

// Importer validates uploaded sheets against their row schemas.
type Importer struct {
	validator *validator.Validate
}

// NewImporter builds an importer; a nil validator gets the portal defaults.
func NewImporter(v *validator.Validate) *Importer {
	if v == nil {
		v = validation.New()
	}
	return &Importer{validator: v}
}

type verificationRow struct {
	RollNo        string `json:"rollNo" validate:"required"`
	StudentName   string `json:"studentName" validate:"required"`
	ClassSelected string `json:"classSelected" validate:"oneof=10 12"`
	Year          string `json:"year" validate:"year4"`
	DOB           string `json:"dob" validate:"isodate"`
	Status        string `json:"status" validate:"oneof=Pass Fail"`
}

var verificationMessages = map[string]string{
	"rollNo":        "Roll number is required",
	"studentName":   "Student name is required",
	"classSelected": "Class must be 10 or 12",
	"year":          "Year must be a 4-digit number",
	"dob":           "DOB must be in YYYY-MM-DD format",
	"status":        "Status must be Pass or Fail",
}

type applicationRow struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	StudentName   string `json:"studentName" validate:"required"`
	DOB           string `json:"dob" validate:"isodate"`
	ClassApplied  string `json:"classApplied" validate:"required"`
	Status        string `json:"status" validate:"oneof=Pending Accepted Rejected"`
	Remarks       string `json:"remarks"`
}

var applicationMessages = map[string]string{
	"applicationId": "Application ID is required",
	"studentName":   "Student name is required",
	"dob":           "DOB must be in YYYY-MM-DD format",
	"classApplied":  "Class applied is required",
	"status":        "Status must be Pending, Accepted, or Rejected",
}

type resultRow struct {
	RollNo        string `json:"rollNo" validate:"required"`
	StudentName   string `json:"studentName" validate:"required"`
	DOB           string `json:"dob" validate:"isodate"`
	ClassSelected string `json:"classSelected" validate:"required"`
	Year          string `json:"year" validate:"year4"`
	TotalMarks    string `json:"totalMarks" validate:"jsnumber"`
	Percentage    string `json:"percentage" validate:"jsnumber"`
	Result        string `json:"result" validate:"oneof=Pass Fail"`
	Division      string `json:"division" validate:"required"`
}

var resultMessages = map[string]string{
	"rollNo":        "Roll number is required",
	"studentName":   "Student name is required",
	"dob":           "DOB must be in YYYY-MM-DD format",
	"classSelected": "Class is required",
	"year":          "Year must be a 4-digit number",
	"totalMarks":    "Total marks must be a number",
	"percentage":    "Percentage must be a number",
	"result":        "Result must be Pass or Fail",
	"division":      "Division is required",
}

// Verification validates a certificate verification sheet.
func (i *Importer) Verification(text string) Report[models.VerificationData] {
	return run(i, text, KindVerification, verificationMessages,
		func(values map[string]string) verificationRow {
			return verificationRow{
				RollNo:        values["rollno"],
				StudentName:   values["studentname"],
				ClassSelected: values["classselected"],
				Year:          values["year"],
				DOB:           values["dob"],
				Status:        values["status"],
			}
		},
		func(row verificationRow) models.VerificationData {
			return models.VerificationData{
				RollNo:        row.RollNo,
				StudentName:   row.StudentName,
				ClassSelected: row.ClassSelected,
				Year:          row.Year,
				DOB:           row.DOB,
				Status:        row.Status,
			}
		})
}

// Applications validates an admissions status sheet.
func (i *Importer) Applications(text string) Report[models.ApplicationStatus] {
	return run(i, text, KindApplication, applicationMessages,
		func(values map[string]string) applicationRow {
			return applicationRow{
				ApplicationID: values["applicationid"],
				StudentName:   values["studentname"],
				DOB:           values["dob"],
				ClassApplied:  values["classapplied"],
				Status:        values["status"],
				Remarks:       values["remarks"],
			}
		},
		func(row applicationRow) models.ApplicationStatus {
			return models.ApplicationStatus{
				ApplicationID: row.ApplicationID,
				StudentName:   row.StudentName,
				DOB:           row.DOB,
				ClassApplied:  row.ClassApplied,
				Status:        row.Status,
				Remarks:       row.Remarks,
			}
		})
}

// Results validates an examination results sheet.
func (i *Importer) Results(text string) Report[models.StudentResult] {
	return run(i, text, KindResult, resultMessages,
		func(values map[string]string) resultRow {
			return resultRow{
				RollNo:        values["rollno"],
				StudentName:   values["studentname"],
				DOB:           values["dob"],
				ClassSelected: values["classselected"],
				Year:          values["year"],
				TotalMarks:    values["totalmarks"],
				Percentage:    values["percentage"],
				Result:        values["result"],
				Division:      values["division"],
			}
		},
		func(row resultRow) models.StudentResult {
			return models.StudentResult{
				RollNo:        row.RollNo,
				StudentName:   row.StudentName,
				DOB:           row.DOB,
				ClassSelected: row.ClassSelected,
				Year:          row.Year,
				Subjects:      []models.SubjectMark{},
				TotalMarks:    leadingInt(row.TotalMarks),
				Percentage:    leadingFloat(row.Percentage),
				Result:        row.Result,
				Division:      row.Division,
			}
		})
}

func run[R any, T any](
	i *Importer,
	text string,
	kind Kind,
	messages map[string]string,
	build func(map[string]string) R,
	convert func(R) T,
) Report[T] {
	report := Report[T]{Errors: []RowError{}, Data: []T{}}

	rows := Parse(text)
	if len(rows) == 0 {
		report.Errors = append(report.Errors, RowError{Row: 0, Errors: []string{messageEmpty}})
		return report
	}

	header := make([]string, len(rows[0]))
	present := make(map[string]struct{}, len(rows[0]))
	for idx, name := range rows[0] {
		header[idx] = strings.ToLower(strings.TrimSpace(name))
		present[header[idx]] = struct{}{}
	}

	var missing []string
	for _, required := range kind.Headers() {
		if _, ok := present[strings.ToLower(required)]; !ok {
			missing = append(missing, strings.ToLower(required))
		}
	}
	if len(missing) > 0 {
		report.Errors = append(report.Errors, RowError{
			Row:    0,
			Errors: []string{"Missing required headers: " + strings.Join(missing, ", ")},
		})
		return report
	}

	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		lineNumber := idx + 1

		if len(row) != len(header) {
			report.Errors = append(report.Errors, RowError{
				Row:    lineNumber,
				Errors: []string{fmt.Sprintf("Expected %d columns, got %d", len(header), len(row))},
			})
			continue
		}

		values := make(map[string]string, len(header))
		for col, name := range header {
			values[name] = strings.TrimSpace(row[col])
		}

		record := build(values)
		if err := i.validator.Struct(record); err != nil {
			problems := validation.OrderedMessages(err, messages)
			if len(problems) == 0 {
				return Report[T]{
					Errors: []RowError{{Row: 0, Errors: []string{messageParseFailed}}},
					Data:   []T{},
				}
			}
			report.Errors = append(report.Errors, RowError{Row: lineNumber, Errors: problems})
			continue
		}

		report.Data = append(report.Data, convert(record))
	}

	report.Valid = len(report.Errors) == 0
	return report
}

// leadingInt reads an optional sign and the digits that follow it, ignoring
// anything after the first non-digit. "85.9" yields 85 and "0x1A" yields 26.
func leadingInt(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	negative := false
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		negative = value[end] == '-'
		end++
	}

	base := 10
	if len(value) > end+1 && value[end] == '0' && (value[end+1] == 'x' || value[end+1] == 'X') {
		base = 16
		end += 2
	}

	start := end
	for end < len(value) && isDigit(value[end], base) {
		end++
	}
	if end == start {
		return 0
	}
	parsed, err := strconv.ParseInt(value[start:end], base, 64)
	if err != nil {
		return 0
	}
	if negative {
		parsed = -parsed
	}
	return int(parsed)
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')):
		return true
	default:
		return false
	}
}

// leadingFloat reads a validated percentage. Radix literals have no fractional
// reading and yield 0; values that do not fit a finite float yield 0.
func leadingFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if len(value) > 1 && value[0] == '0' && strings.ContainsRune("xXoObB", rune(value[1])) {
		return 0
	}
	parsed, ok := validation.ParseNumber(value)
	if !ok || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0
	}
	return parsed
}
