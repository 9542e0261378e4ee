package csvimport

import (
	"errors"
	"strings"
)

// Kind identifies one of the uploadable datasets.
type Kind string

const (
	KindVerification Kind = "verification"
	KindApplication  Kind = "application"
	KindResult       Kind = "result"
)

// ErrUnknownKind is returned when a dataset name cannot be resolved.
var ErrUnknownKind = errors.New("unknown dataset kind")

var kindAliases = map[string]Kind{
	"verification":      KindVerification,
	"verifications":     KindVerification,
	"verification-data": KindVerification,
	"verification_data": KindVerification,
	"application":       KindApplication,
	"applications":      KindApplication,
	"result":            KindResult,
	"results":           KindResult,
}

var kindHeaders = map[Kind][]string{
	KindVerification: {"rollNo", "studentName", "classSelected", "year", "dob", "status"},
	KindApplication:  {"applicationId", "studentName", "dob", "classApplied", "status", "remarks"},
	KindResult:       {"rollNo", "studentName", "dob", "classSelected", "year", "totalMarks", "percentage", "result", "division"},
}

// ParseKind resolves route names such as "results" or "verification-data".
func ParseKind(raw string) (Kind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrUnknownKind
	}
	return kind, nil
}

// Kinds lists every dataset kind in display order.
func Kinds() []Kind {
	return []Kind{KindApplication, KindResult, KindVerification}
}

// Headers returns the required upload headers for the kind.
func (k Kind) Headers() []string {
	headers := kindHeaders[k]
	out := make([]string, len(headers))
	copy(out, headers)
	return out
}

// Slug is the plural name used in routes and exports.
func (k Kind) Slug() string {
	switch k {
	case KindVerification:
		return "verification-data"
	case KindApplication:
		return "applications"
	case KindResult:
		return "results"
	default:
		return string(k)
	}
}

// SampleFileName is the download name of the kind's template file.
func (k Kind) SampleFileName() string {
	return string(k) + "_sample.csv"
}
