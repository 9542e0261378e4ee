package csvimport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

func writeAll(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// WriteApplications exports the admissions sheet with the upload headers so
// the file can be edited and uploaded again.
func WriteApplications(w io.Writer, items []models.ApplicationStatus) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ApplicationID, item.StudentName, item.DOB, item.ClassApplied, item.Status, item.Remarks,
		})
	}
	return writeAll(w, kindHeaders[KindApplication], rows)
}

// WriteResults exports results; the subject breakdown is JSON encoded in its
// own column.
func WriteResults(w io.Writer, items []models.StudentResult) error {
	header := []string{"rollNo", "studentName", "dob", "classSelected", "year", "subjects", "totalMarks", "percentage", "result", "division"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		subjects := []models.SubjectMark(item.Subjects)
		if subjects == nil {
			subjects = []models.SubjectMark{}
		}
		encoded, err := json.Marshal(subjects)
		if err != nil {
			return fmt.Errorf("encode subjects for %s: %w", item.RollNo, err)
		}
		rows = append(rows, []string{
			item.RollNo,
			item.StudentName,
			item.DOB,
			item.ClassSelected,
			item.Year,
			string(encoded),
			strconv.Itoa(item.TotalMarks),
			strconv.FormatFloat(item.Percentage, 'f', -1, 64),
			item.Result,
			item.Division,
		})
	}
	return writeAll(w, header, rows)
}

// WriteVerificationData exports the certificate sheet.
func WriteVerificationData(w io.Writer, items []models.VerificationData) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.RollNo, item.StudentName, item.ClassSelected, item.Year, item.DOB, item.Status,
		})
	}
	return writeAll(w, kindHeaders[KindVerification], rows)
}

// WriteFormSubmissions exports application form submissions.
func WriteFormSubmissions(w io.Writer, items []models.FormSubmission) error {
	header := []string{"id", "studentName", "guardianName", "email", "mobile", "formType", "classSelected", "submissionDate", "status"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ReferenceID,
			item.StudentName,
			item.GuardianName,
			item.Email,
			item.Mobile,
			item.FormType,
			item.ClassSelected,
			item.SubmittedAt.UTC().Format(time.RFC3339),
			item.Status,
		})
	}
	return writeAll(w, header, rows)
}

// WriteVerificationRequests exports verification requests.
func WriteVerificationRequests(w io.Writer, items []models.VerificationRequest) error {
	header := []string{"id", "candidateName", "rollNo", "classSelected", "year", "email", "mobile", "purpose", "submissionDate", "status"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ReferenceID,
			item.CandidateName,
			item.RollNo,
			item.ClassSelected,
			item.Year,
			item.Email,
			item.Mobile,
			item.Purpose,
			item.SubmittedAt.UTC().Format(time.RFC3339),
			item.Status,
		})
	}
	return writeAll(w, header, rows)
}
