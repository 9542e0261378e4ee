package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

type memoryArchive struct {
	stored map[string]string
	err    error
}

func (m *memoryArchive) Store(_ context.Context, kind, name string, reader io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if m.stored == nil {
		m.stored = map[string]string{}
	}
	m.stored[kind+"/"+name] = string(payload)
	return "https://archive.example/" + kind + "/" + name, nil
}

type datasetFixture struct {
	svc     DatasetService
	results repository.StudentResultRepository
	apps    repository.ApplicationStatusRepository
	imports repository.ImportRepository
	archive *memoryArchive
	events  *capturePublisher
}

func newDatasetFixture(t *testing.T, db *gorm.DB, cache *redis.Client) datasetFixture {
	t.Helper()
	fixture := datasetFixture{
		results: repository.NewStudentResultRepository(db),
		apps:    repository.NewApplicationStatusRepository(db),
		imports: repository.NewImportRepository(db),
		archive: &memoryArchive{},
		events:  &capturePublisher{},
	}
	fixture.svc = NewDatasetService(DatasetDependencies{
		Applications:     fixture.apps,
		Results:          fixture.results,
		VerificationData: repository.NewVerificationDataRepository(db),
		Imports:          fixture.imports,
		Archive:          fixture.archive,
		Cache:            cache,
		Activity:         NewActivityService(repository.NewActivityLogRepository(db), testLogger()),
		Events:           fixture.events,
		MaxSizeMB:        1,
	}, testLogger())
	return fixture
}

func csvUpload(name, content string) dto.ImportUpload {
	return dto.ImportUpload{FileName: name, Size: int64(len(content)), Content: []byte(content), Actor: "admin@dsbe.example"}
}

var adminActor = ActivityActor{Email: "admin@dsbe.example", Role: "admin"}

func TestDatasetServiceImportReplacesCollection(t *testing.T) {
	mini, client := newTestRedis(t)
	fixture := newDatasetFixture(t, newServiceDB(t), client)
	ctx := context.Background()

	require.NoError(t, mini.Set("results:merit:v1:5", "stale"))
	require.NoError(t, mini.Set(dashboardCacheKey, "stale"))

	resp, err := fixture.svc.Import(ctx, adminActor, csvimport.KindResult, csvUpload("Results 2024.csv", csvimport.Sample(csvimport.KindResult)))
	require.NoError(t, err)
	require.Equal(t, 3, resp.RowCount)
	require.Equal(t, "results", resp.Kind)
	require.Equal(t, "3 results uploaded", resp.Message)
	require.Equal(t, "results-2024.csv", resp.FileName)
	require.Equal(t, "https://archive.example/results/results-2024.csv", resp.ArchiveURL)
	require.NotEmpty(t, resp.Checksum)

	require.False(t, mini.Exists("results:merit:v1:5"))
	require.False(t, mini.Exists(dashboardCacheKey))

	total, err := fixture.results.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	replacement := "rollNo,studentName,dob,classSelected,year,totalMarks,percentage,result,division\n" +
		"ZZ0001,Solo,2006-01-01,Class 12,2025,400,80,Pass,First Division\n"
	_, err = fixture.svc.Import(ctx, adminActor, csvimport.KindResult, csvUpload("new.csv", replacement))
	require.NoError(t, err)

	total, err = fixture.results.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	require.Len(t, fixture.events.events, 2)
	require.Equal(t, EventDatasetImported, fixture.events.events[0].Type)
}

func TestDatasetServiceRejectedUploadKeepsData(t *testing.T) {
	fixture := newDatasetFixture(t, newServiceDB(t), nil)
	ctx := context.Background()

	_, err := fixture.svc.Import(ctx, adminActor, csvimport.KindApplication, csvUpload("apps.csv", csvimport.Sample(csvimport.KindApplication)))
	require.NoError(t, err)

	bad := "applicationId,studentName,dob,classApplied,status,remarks\n" +
		"APP-9,,15-05-2006,Class 12,Maybe,\n"
	_, err = fixture.svc.Import(ctx, adminActor, csvimport.KindApplication, csvUpload("bad.csv", bad))
	require.Error(t, err)

	var importErr *ImportValidationError
	require.ErrorAs(t, err, &importErr)
	require.Len(t, importErr.Errors, 1)
	require.Equal(t, 2, importErr.Errors[0].Row)
	require.Equal(t, []string{
		"Student name is required",
		"DOB must be in YYYY-MM-DD format",
		"Status must be Pending, Accepted, or Rejected",
	}, importErr.Errors[0].Errors)
	require.True(t, strings.HasPrefix(importErr.Error(), "Row 2: Student name is required"))

	total, err := fixture.apps.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	history, err := fixture.svc.History(ctx, dto.ImportHistoryRequest{Kind: "applications"})
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	statuses := []string{history.Items[0].Status, history.Items[1].Status}
	require.ElementsMatch(t, []string{models.ImportStatusApplied, models.ImportStatusRejected}, statuses)
}

func TestDatasetServiceEmptyFileReportsEmptyCSV(t *testing.T) {
	fixture := newDatasetFixture(t, newServiceDB(t), nil)

	_, err := fixture.svc.Import(context.Background(), adminActor, csvimport.KindVerification, dto.ImportUpload{FileName: "empty.csv", Content: []byte{}})
	var importErr *ImportValidationError
	require.ErrorAs(t, err, &importErr)
	require.Equal(t, "CSV file is empty", importErr.Error())
}

func TestDatasetServiceRejectsBinaryAndOversizedUploads(t *testing.T) {
	fixture := newDatasetFixture(t, newServiceDB(t), nil)
	ctx := context.Background()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err := fixture.svc.Import(ctx, adminActor, csvimport.KindResult, dto.ImportUpload{FileName: "photo.csv", Size: int64(len(png)), Content: png})
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = fixture.svc.Import(ctx, adminActor, csvimport.KindResult, dto.ImportUpload{FileName: "big.csv", Size: 2 * 1024 * 1024, Content: []byte("a")})
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestDatasetServiceStripsByteOrderMark(t *testing.T) {
	fixture := newDatasetFixture(t, newServiceDB(t), nil)

	content := "\xEF\xBB\xBF" + csvimport.Sample(csvimport.KindVerification)
	resp, err := fixture.svc.Import(context.Background(), adminActor, csvimport.KindVerification, csvUpload("verify.csv", content))
	require.NoError(t, err)
	require.Equal(t, "3 verification records uploaded", resp.Message)
}

func TestDatasetServiceListExportAndSample(t *testing.T) {
	fixture := newDatasetFixture(t, newServiceDB(t), nil)
	ctx := context.Background()

	_, err := fixture.svc.Export(ctx, csvimport.KindApplication)
	require.ErrorIs(t, err, ErrNothingToExport)

	empty, err := fixture.svc.List(ctx, csvimport.KindApplication, dto.DatasetListRequest{})
	require.NoError(t, err)
	require.Equal(t, []models.ApplicationStatus{}, empty.Items)

	_, err = fixture.svc.Import(ctx, adminActor, csvimport.KindApplication, csvUpload("apps.csv", csvimport.Sample(csvimport.KindApplication)))
	require.NoError(t, err)

	page, err := fixture.svc.List(ctx, csvimport.KindApplication, dto.DatasetListRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, "applications", page.Kind)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(3), page.Pagination.TotalItems)

	export, err := fixture.svc.Export(ctx, csvimport.KindApplication)
	require.NoError(t, err)
	require.Equal(t, "applications.csv", export.FileName)

	reimport := csvimport.NewImporter(nil).Applications(string(export.Content))
	require.True(t, reimport.Valid)
	require.Len(t, reimport.Data, 3)

	sample := fixture.svc.Sample(csvimport.KindResult)
	require.Equal(t, "result_sample.csv", sample.FileName)
	require.Equal(t, csvimport.Sample(csvimport.KindResult), string(sample.Content))
}

func TestDatasetServiceArchiveFailureDoesNotBlockImport(t *testing.T) {
	fixture := newDatasetFixture(t, newServiceDB(t), nil)
	fixture.archive.err = io.ErrUnexpectedEOF

	resp, err := fixture.svc.Import(context.Background(), adminActor, csvimport.KindResult, csvUpload("r.csv", csvimport.Sample(csvimport.KindResult)))
	require.NoError(t, err)
	require.Empty(t, resp.ArchiveURL)
}
