package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

func TestActivityServiceRecordMasksContactDetails(t *testing.T) {
	repo := repository.NewActivityLogRepository(newServiceDB(t))
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		Actor:      ActivityActor{Email: "Admin@DSBE.example", Role: "Admin"},
		Action:     "Form.Status_Updated",
		EntityType: "form_submission",
		EntityRef:  "FORM-1",
		Metadata: map[string]interface{}{
			"email":  "student@example.com",
			"mobile": "9876543210",
			"to":     "Approved",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "admin@dsbe.example", entry.Actor)
	require.Equal(t, "admin", entry.ActorRole)
	require.Equal(t, "form.status_updated", entry.Action)
	require.NotEqual(t, "student@example.com", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["mobile"])
	require.Equal(t, "Approved", entry.Metadata["to"])
}

func TestActivityServiceRequiresActionAndEntity(t *testing.T) {
	svc := NewActivityService(repository.NewActivityLogRepository(newServiceDB(t)), testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "form_submission"})
	require.Error(t, err)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "form.deleted"})
	require.Error(t, err)
}

func TestActivityServiceListFilters(t *testing.T) {
	svc := NewActivityService(repository.NewActivityLogRepository(newServiceDB(t)), testLogger())
	ctx := context.Background()

	for _, action := range []string{"form.deleted", "dataset.imported", "form.deleted"} {
		_, err := svc.Record(ctx, ActivityEntry{Actor: ActivityActor{Email: "admin@dsbe.example", Role: "admin"}, Action: action, EntityType: "form_submission"})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	require.Equal(t, 20, all.Pagination.PageSize)

	deleted, err := svc.List(ctx, dto.ActivityListRequest{Action: "FORM.DELETED"})
	require.NoError(t, err)
	require.Len(t, deleted.Items, 2)
	require.Equal(t, "system", normalizeRole(""))
}

func TestActivityServiceRecordStampsCorrelationID(t *testing.T) {
	svc := NewActivityService(repository.NewActivityLogRepository(newServiceDB(t)), testLogger())
	ctx := middleware.ContextWithCorrelation(context.Background(), "req-123")

	entry, err := svc.Record(ctx, ActivityEntry{Action: "form.deleted", EntityType: "form_submission", EntityRef: "FORM-9"})
	require.NoError(t, err)
	require.Equal(t, "req-123", entry.Metadata["correlation_id"])
	require.Equal(t, "system", entry.Actor)
}
