package dto

import "github.com/noah-isme/dsbe-portal-api/internal/models"

// InstantVerifyRequest looks up a certificate record.
type InstantVerifyRequest struct {
	RollNo        string `json:"roll_no"`
	ClassSelected string `json:"class_selected"`
	Year          string `json:"year"`
	DOB           string `json:"dob"`
}

// InstantVerifyResponse reports the outcome of an instant verification.
type InstantVerifyResponse struct {
	Found  bool   `json:"found"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
	RollNo string `json:"roll_no,omitempty"`
}

// ApplicationTrackRequest looks up an admission application.
type ApplicationTrackRequest struct {
	ApplicationID string `query:"application_id"`
	DOB           string `query:"dob"`
}

// ApplicationStatusResponse is the public view of an application row.
type ApplicationStatusResponse struct {
	ApplicationID string `json:"application_id"`
	StudentName   string `json:"student_name"`
	DOB           string `json:"dob"`
	ClassApplied  string `json:"class_applied"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks"`
}

// NewApplicationStatusResponse maps the model.
func NewApplicationStatusResponse(model models.ApplicationStatus) ApplicationStatusResponse {
	return ApplicationStatusResponse{
		ApplicationID: model.ApplicationID,
		StudentName:   model.StudentName,
		DOB:           model.DOB,
		ClassApplied:  model.ClassApplied,
		Status:        model.Status,
		Remarks:       model.Remarks,
	}
}

// ResultLookupRequest looks up a marksheet.
type ResultLookupRequest struct {
	RollNo        string `query:"roll_no"`
	ClassSelected string `query:"class"`
	Year          string `query:"year"`
	DOB           string `query:"dob"`
}

// ResultResponse is the public view of a result row.
type ResultResponse struct {
	RollNo        string               `json:"roll_no"`
	StudentName   string               `json:"student_name"`
	DOB           string               `json:"dob"`
	ClassSelected string               `json:"class_selected"`
	Year          string               `json:"year"`
	Subjects      []models.SubjectMark `json:"subjects"`
	TotalMarks    int                  `json:"total_marks"`
	Percentage    float64              `json:"percentage"`
	Result        string               `json:"result"`
	Division      string               `json:"division"`
}

// NewResultResponse maps the model.
func NewResultResponse(model models.StudentResult) ResultResponse {
	subjects := []models.SubjectMark(model.Subjects)
	if subjects == nil {
		subjects = []models.SubjectMark{}
	}
	return ResultResponse{
		RollNo:        model.RollNo,
		StudentName:   model.StudentName,
		DOB:           model.DOB,
		ClassSelected: model.ClassSelected,
		Year:          model.Year,
		Subjects:      subjects,
		TotalMarks:    model.TotalMarks,
		Percentage:    model.Percentage,
		Result:        model.Result,
		Division:      model.Division,
	}
}

// MeritEntry is one line of the merit list. Dates of birth are never exposed.
type MeritEntry struct {
	Rank          int     `json:"rank"`
	StudentName   string  `json:"student_name"`
	ClassSelected string  `json:"class_selected"`
	Year          string  `json:"year"`
	Percentage    float64 `json:"percentage"`
	Division      string  `json:"division"`
}

// MeritListResponse lists the top performers of the current results sheet.
type MeritListResponse struct {
	Items    []MeritEntry `json:"items"`
	CacheHit bool         `json:"cache_hit"`
}
