package csvimport

import "strings"

var sampleRows = map[Kind][]string{
	KindVerification: {
		"AB1234,John Doe,12,2024,2006-05-15,Pass",
		"AB1235,Jane Smith,10,2024,2008-08-20,Pass",
		"AB1236,Mike Johnson,12,2023,2005-11-30,Fail",
	},
	KindApplication: {
		"APP-001,John Doe,2006-05-15,Class 12,Accepted,Admission confirmed",
		"APP-002,Jane Smith,2008-08-20,Class 10,Pending,Under review",
		"APP-003,Mike Johnson,2005-11-30,Class 12,Rejected,Incomplete documents",
	},
	KindResult: {
		"AB1234,John Doe,2006-05-15,Class 12,2024,467,85.5,Pass,First Division",
		"AB1235,Jane Smith,2008-08-20,Class 10,2024,425,78.2,Pass,First Division",
		"AB1236,Mike Johnson,2005-11-30,Class 12,2023,310,56.4,Pass,Second Division",
	},
}

// Sample returns a template upload for the kind: the header line followed by
// three example rows.
func Sample(kind Kind) string {
	headers := kindHeaders[kind]
	if len(headers) == 0 {
		return ""
	}
	lines := append([]string{strings.Join(headers, ",")}, sampleRows[kind]...)
	return strings.Join(lines, "\n")
}
