package dto

import (
	"time"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

// ApplicationFormRequest is the online student application form.
type ApplicationFormRequest struct {
	ApplicantName string   `json:"applicant_name" validate:"required"`
	GuardianName  string   `json:"guardian_name" validate:"required"`
	DOB           string   `json:"dob" validate:"required"`
	Gender        string   `json:"gender" validate:"required"`
	Email         string   `json:"email" validate:"required,looseemail"`
	Mobile        string   `json:"mobile" validate:"mobile"`
	Address       string   `json:"address" validate:"required"`
	City          string   `json:"city" validate:"required"`
	State         string   `json:"state" validate:"required"`
	Pincode       string   `json:"pincode" validate:"pincode"`
	ClassSelected string   `json:"class_selected" validate:"required,oneof=10 12"`
	Stream        string   `json:"stream" validate:"required_if=ClassSelected 12"`
	Subjects      []string `json:"subjects" validate:"min=5,max=7,dive,required"`
	Category      string   `json:"category"`
	Nationality   string   `json:"nationality"`
}

// VerificationRequestPayload asks the board to verify a certificate.
type VerificationRequestPayload struct {
	RequestorType  string `json:"requestor_type" validate:"required"`
	OrgName        string `json:"org_name" validate:"required"`
	OrgAddress     string `json:"org_address"`
	ContactPerson  string `json:"contact_person" validate:"required"`
	Email          string `json:"email" validate:"required,looseemail"`
	Mobile         string `json:"mobile" validate:"mobile"`
	CandidateName  string `json:"candidate_name" validate:"required"`
	CandidateRoll  string `json:"candidate_roll" validate:"required"`
	CandidateClass string `json:"candidate_class" validate:"required"`
	CandidateYear  string `json:"candidate_year" validate:"year4"`
	CandidateDOB   string `json:"candidate_dob" validate:"required"`
	Purpose        string `json:"purpose" validate:"required"`
}

// SubmissionReceipt acknowledges a public submission.
type SubmissionReceipt struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submission_date"`
}

// FormSubmissionResponse serializes a form submission for admin endpoints.
type FormSubmissionResponse struct {
	ID            string    `json:"id"`
	StudentName   string    `json:"student_name"`
	GuardianName  string    `json:"guardian_name"`
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	FormType      string    `json:"form_type"`
	ClassSelected string    `json:"class_selected"`
	DOB           string    `json:"dob,omitempty"`
	Gender        string    `json:"gender,omitempty"`
	Category      string    `json:"category,omitempty"`
	Nationality   string    `json:"nationality,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Pincode       string    `json:"pincode,omitempty"`
	Stream        string    `json:"stream,omitempty"`
	Subjects      []string  `json:"subjects"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submission_date"`
}

// NewFormSubmissionResponse maps the model.
func NewFormSubmissionResponse(model models.FormSubmission) FormSubmissionResponse {
	subjects := model.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return FormSubmissionResponse{
		ID:            model.ReferenceID,
		StudentName:   model.StudentName,
		GuardianName:  model.GuardianName,
		Email:         model.Email,
		Mobile:        model.Mobile,
		FormType:      model.FormType,
		ClassSelected: model.ClassSelected,
		DOB:           model.DOB,
		Gender:        model.Gender,
		Category:      model.Category,
		Nationality:   model.Nationality,
		Address:       model.Address,
		City:          model.City,
		State:         model.State,
		Pincode:       model.Pincode,
		Stream:        model.Stream,
		Subjects:      subjects,
		Status:        model.Status,
		SubmittedAt:   model.SubmittedAt,
	}
}

// VerificationRequestResponse serializes a verification request for admin endpoints.
type VerificationRequestResponse struct {
	ID            string    `json:"id"`
	CandidateName string    `json:"candidate_name"`
	RollNo        string    `json:"roll_no"`
	ClassSelected string    `json:"class_selected"`
	Year          string    `json:"year"`
	CandidateDOB  string    `json:"candidate_dob,omitempty"`
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	Purpose       string    `json:"purpose"`
	RequestorType string    `json:"requestor_type,omitempty"`
	OrgName       string    `json:"org_name,omitempty"`
	OrgAddress    string    `json:"org_address,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submission_date"`
}

// NewVerificationRequestResponse maps the model.
func NewVerificationRequestResponse(model models.VerificationRequest) VerificationRequestResponse {
	return VerificationRequestResponse{
		ID:            model.ReferenceID,
		CandidateName: model.CandidateName,
		RollNo:        model.RollNo,
		ClassSelected: model.ClassSelected,
		Year:          model.Year,
		CandidateDOB:  model.CandidateDOB,
		Email:         model.Email,
		Mobile:        model.Mobile,
		Purpose:       model.Purpose,
		RequestorType: model.RequestorType,
		OrgName:       model.OrgName,
		OrgAddress:    model.OrgAddress,
		ContactPerson: model.ContactPerson,
		Status:        model.Status,
		SubmittedAt:   model.SubmittedAt,
	}
}
