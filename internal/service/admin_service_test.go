package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

type adminFixture struct {
	svc           AdminService
	forms         repository.FormSubmissionRepository
	verifications repository.VerificationRequestRepository
	activity      repository.ActivityLogRepository
	events        *capturePublisher
}

func newAdminFixture(t *testing.T, db *gorm.DB, cache *redis.Client) adminFixture {
	t.Helper()

	fixture := adminFixture{
		forms:         repository.NewFormSubmissionRepository(db),
		verifications: repository.NewVerificationRequestRepository(db),
		activity:      repository.NewActivityLogRepository(db),
		events:        &capturePublisher{},
	}
	fixture.svc = NewAdminService(AdminDependencies{
		Forms:             fixture.forms,
		Verifications:     fixture.verifications,
		Applications:      repository.NewApplicationStatusRepository(db),
		Results:           repository.NewStudentResultRepository(db),
		VerificationData:  repository.NewVerificationDataRepository(db),
		Users:             repository.NewUserRepository(db),
		Imports:           repository.NewImportRepository(db),
		Cache:             cache,
		DashboardCacheTTL: time.Minute,
		Activity:          NewActivityService(fixture.activity, testLogger()),
		Events:            fixture.events,
	}, testLogger())
	return fixture
}

func seedForm(t *testing.T, repo repository.FormSubmissionRepository, reference, name string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.FormSubmission{
		ReferenceID:   reference,
		StudentName:   name,
		GuardianName:  "Guardian",
		Email:         strings.ToLower(name) + "@example.com",
		Mobile:        "9876543210",
		FormType:      models.FormTypeStudentApplication,
		ClassSelected: "Class 10",
		Subjects:      []string{"English", "Mathematics"},
		Status:        models.FormStatusPending,
		SubmittedAt:   time.Now().UTC(),
	}))
}

func seedVerification(t *testing.T, repo repository.VerificationRequestRepository, reference string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.VerificationRequest{
		ReferenceID:   reference,
		CandidateName: "John Doe",
		RollNo:        "AB1234",
		ClassSelected: "12",
		Year:          "2024",
		Email:         "hr@acme.example",
		Mobile:        "9123456780",
		Purpose:       "Employment",
		Status:        models.VerificationStatusPending,
		SubmittedAt:   time.Now().UTC(),
	}))
}

func TestAdminServiceDashboardCachesAndInvalidates(t *testing.T) {
	_, client := newTestRedis(t)
	fixture := newAdminFixture(t, newServiceDB(t), client)
	ctx := context.Background()

	seedForm(t, fixture.forms, "FORM-1", "Asha")
	seedVerification(t, fixture.verifications, "VER-1")

	first, err := fixture.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(1), first.Counts.FormsTotal)
	require.Equal(t, int64(1), first.Counts.Forms[models.FormStatusPending])
	require.Equal(t, int64(1), first.Counts.VerificationsTotal)
	require.Contains(t, first.Counts.LastImports, "results")
	require.Nil(t, first.Counts.LastImports["results"])

	second, err := fixture.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.True(t, second.CacheHit)

	_, err = fixture.svc.UpdateFormStatus(ctx, ActivityActor{Email: "admin@dsbe.example", Role: "admin"}, "FORM-1", "approved")
	require.NoError(t, err)

	third, err := fixture.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, int64(1), third.Counts.Forms[models.FormStatusApproved])
}

func TestAdminServiceFormStatusLifecycle(t *testing.T) {
	db := newServiceDB(t)
	fixture := newAdminFixture(t, db, nil)
	ctx := context.Background()
	actor := ActivityActor{Email: "admin@dsbe.example", Role: "admin"}

	seedForm(t, fixture.forms, "FORM-1", "Asha")

	updated, err := fixture.svc.UpdateFormStatus(ctx, actor, "FORM-1", "REJECTED")
	require.NoError(t, err)
	require.Equal(t, models.FormStatusRejected, updated.Status)

	_, err = fixture.svc.UpdateFormStatus(ctx, actor, "FORM-1", "Verified")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = fixture.svc.UpdateFormStatus(ctx, actor, "FORM-404", "Approved")
	require.ErrorIs(t, err, ErrFormNotFound)

	require.NoError(t, fixture.svc.DeleteForm(ctx, actor, "FORM-1"))
	require.ErrorIs(t, fixture.svc.DeleteForm(ctx, actor, "FORM-1"), ErrFormNotFound)

	entries, total, err := fixture.activity.List(ctx, repository.ActivityLogFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	actions := []string{entries[0].Action, entries[1].Action}
	require.ElementsMatch(t, []string{"form.status_updated", "form.deleted"}, actions)

	require.Len(t, fixture.events.events, 2)
	require.Equal(t, EventStatusChanged, fixture.events.events[0].Type)
	require.Equal(t, EventRecordDeleted, fixture.events.events[1].Type)
}

func TestAdminServiceVerificationStatusUsesOwnEnum(t *testing.T) {
	fixture := newAdminFixture(t, newServiceDB(t), nil)
	ctx := context.Background()
	actor := ActivityActor{Email: "admin@dsbe.example", Role: "admin"}

	seedVerification(t, fixture.verifications, "VER-1")

	_, err := fixture.svc.UpdateVerificationStatus(ctx, actor, "VER-1", "Approved")
	require.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := fixture.svc.UpdateVerificationStatus(ctx, actor, "VER-1", "verified")
	require.NoError(t, err)
	require.Equal(t, models.VerificationStatusVerified, updated.Status)

	require.ErrorIs(t, fixture.svc.DeleteVerification(ctx, actor, "VER-404"), ErrVerificationNotFound)
	require.NoError(t, fixture.svc.DeleteVerification(ctx, actor, "VER-1"))
}

func TestAdminServiceListFormsFiltersAndPaginates(t *testing.T) {
	fixture := newAdminFixture(t, newServiceDB(t), nil)
	ctx := context.Background()

	seedForm(t, fixture.forms, "FORM-1", "Asha")
	seedForm(t, fixture.forms, "FORM-2", "Ravi")
	seedForm(t, fixture.forms, "FORM-3", "Meera")

	page, err := fixture.svc.ListForms(ctx, dto.AdminListRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(3), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	search, err := fixture.svc.ListForms(ctx, dto.AdminListRequest{Search: "ravi"})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	require.Equal(t, "FORM-2", search.Items[0].ID)

	pending, err := fixture.svc.ListForms(ctx, dto.AdminListRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 3)
}

func TestAdminServiceExports(t *testing.T) {
	fixture := newAdminFixture(t, newServiceDB(t), nil)
	ctx := context.Background()

	_, err := fixture.svc.ExportForms(ctx)
	require.ErrorIs(t, err, ErrNothingToExport)
	_, err = fixture.svc.ExportVerifications(ctx)
	require.ErrorIs(t, err, ErrNothingToExport)

	seedForm(t, fixture.forms, "FORM-1", "Asha")
	seedVerification(t, fixture.verifications, "VER-1")

	forms, err := fixture.svc.ExportForms(ctx)
	require.NoError(t, err)
	require.Equal(t, "form_submissions.csv", forms.FileName)
	require.Contains(t, string(forms.Content), "FORM-1")

	verifications, err := fixture.svc.ExportVerifications(ctx)
	require.NoError(t, err)
	require.Contains(t, string(verifications.Content), "VER-1")
}
