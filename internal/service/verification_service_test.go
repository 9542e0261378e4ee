package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
	"github.com/noah-isme/dsbe-portal-api/internal/validation"
)

func newVerificationServiceForTest(t *testing.T) (VerificationService, repository.VerificationRequestRepository, repository.VerificationDataRepository, *capturePublisher) {
	t.Helper()
	db := newServiceDB(t)
	requests := repository.NewVerificationRequestRepository(db)
	records := repository.NewVerificationDataRepository(db)
	events := &capturePublisher{}
	return NewVerificationService(requests, records, validation.New(), events, nil, testLogger()), requests, records, events
}

func validVerificationPayload() dto.VerificationRequestPayload {
	return dto.VerificationRequestPayload{
		RequestorType:  "Employer",
		OrgName:        "Acme Corp",
		ContactPerson:  "HR Desk",
		Email:          "hr@acme.example",
		Mobile:         "9123456780",
		CandidateName:  "John Doe",
		CandidateRoll:  "AB1234",
		CandidateClass: "12",
		CandidateYear:  "2024",
		CandidateDOB:   "2006-05-15",
		Purpose:        "Employment",
	}
}

func TestVerificationServiceRequestStoresPending(t *testing.T) {
	svc, requests, _, events := newVerificationServiceForTest(t)

	receipt, err := svc.Request(context.Background(), validVerificationPayload())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(receipt.ID, "VER-"))

	stored, err := requests.GetByReference(context.Background(), receipt.ID)
	require.NoError(t, err)
	require.Equal(t, models.VerificationStatusPending, stored.Status)
	require.Equal(t, "AB1234", stored.RollNo)
	require.Equal(t, "Acme Corp", stored.OrgName)

	require.Len(t, events.events, 1)
	require.Equal(t, EventVerificationRequested, events.events[0].Type)
}

func TestVerificationServiceRequestValidation(t *testing.T) {
	svc, _, _, _ := newVerificationServiceForTest(t)

	payload := validVerificationPayload()
	payload.OrgName = ""
	payload.Email = "bad"
	payload.CandidateYear = "24"

	_, err := svc.Request(context.Background(), payload)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "Please fix the errors", validationErr.Message)
	require.Equal(t, "Required", validationErr.Fields["org_name"])
	require.Equal(t, "Valid email required", validationErr.Fields["email"])
	require.Equal(t, "Valid year required", validationErr.Fields["candidate_year"])
}

func TestVerificationServiceVerify(t *testing.T) {
	svc, _, records, _ := newVerificationServiceForTest(t)
	ctx := context.Background()

	require.NoError(t, records.ReplaceAll(ctx, []models.VerificationData{
		{RollNo: "AB1234", StudentName: "John Doe", ClassSelected: "12", Year: "2024", DOB: "2006-05-15", Status: "Pass"},
	}))

	found, err := svc.Verify(ctx, dto.InstantVerifyRequest{RollNo: "ab1234", ClassSelected: "12", Year: "2024", DOB: "2006-05-15"})
	require.NoError(t, err)
	require.True(t, found.Found)
	require.Equal(t, "John Doe", found.Name)
	require.Equal(t, "Pass", found.Status)
	require.Equal(t, "AB1234", found.RollNo)

	wrongYear, err := svc.Verify(ctx, dto.InstantVerifyRequest{RollNo: "AB1234", ClassSelected: "12", Year: "2023", DOB: "2006-05-15"})
	require.NoError(t, err)
	require.False(t, wrongYear.Found)

	wrongDOB, err := svc.Verify(ctx, dto.InstantVerifyRequest{RollNo: "AB1234", ClassSelected: "12", Year: "2024", DOB: "2006-05-16"})
	require.NoError(t, err)
	require.False(t, wrongDOB.Found)

	_, err = svc.Verify(ctx, dto.InstantVerifyRequest{RollNo: "AB1234", DOB: "2006-05-15"})
	require.ErrorIs(t, err, ErrLookupFieldsMissing)
}

func TestVerificationServiceRequestDropsDashboardCache(t *testing.T) {
	mini, client := newTestRedis(t)
	db := newServiceDB(t)
	svc := NewVerificationService(repository.NewVerificationRequestRepository(db), repository.NewVerificationDataRepository(db), validation.New(), nil, client, testLogger())

	require.NoError(t, mini.Set(dashboardCacheKey, "stale"))

	_, err := svc.Request(context.Background(), validVerificationPayload())
	require.NoError(t, err)
	require.False(t, mini.Exists(dashboardCacheKey))
}
