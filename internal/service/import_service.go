package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/observability"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

var (
	// ErrFileRequired indicates the upload carried no file part.
	ErrFileRequired = errors.New("file is required")
	// ErrUploadTooLarge indicates file exceeds configured size.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file is not a plain text sheet.
	ErrUploadTypeNotAllowed = errors.New("only CSV files are allowed")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportValidationError carries the full row report of a rejected upload.
type ImportValidationError struct {
	Kind    csvimport.Kind
	Message string
	Errors  []csvimport.RowError
}

func (e *ImportValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Invalid CSV format"
}

// FileArchive keeps a copy of every applied upload.
type FileArchive interface {
	Store(ctx context.Context, kind, name string, reader io.Reader) (string, error)
}

// DatasetDependencies groups the collaborators of the dataset service.
type DatasetDependencies struct {
	Applications     repository.ApplicationStatusRepository
	Results          repository.StudentResultRepository
	VerificationData repository.VerificationDataRepository
	Imports          repository.ImportRepository
	Importer         *csvimport.Importer
	Archive          FileArchive
	Cache            *redis.Client
	Activity         ActivityRecorder
	Events           EventPublisher
	MaxSizeMB        int
}

// DatasetService ingests, lists and exports the CSV-sourced collections.
type DatasetService interface {
	Import(ctx context.Context, actor ActivityActor, kind csvimport.Kind, upload dto.ImportUpload) (dto.ImportResponse, error)
	List(ctx context.Context, kind csvimport.Kind, req dto.DatasetListRequest) (dto.DatasetListResponse, error)
	Export(ctx context.Context, kind csvimport.Kind) (dto.ExportFile, error)
	Sample(kind csvimport.Kind) dto.ExportFile
	History(ctx context.Context, req dto.ImportHistoryRequest) (dto.ImportHistoryResponse, error)
}

type datasetService struct {
	deps    DatasetDependencies
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewDatasetService constructs the dataset ingestion service. Archive and cache are optional.
func NewDatasetService(deps DatasetDependencies, logger zerolog.Logger) DatasetService {
	if deps.MaxSizeMB <= 0 {
		deps.MaxSizeMB = 5
	}
	if deps.Importer == nil {
		deps.Importer = csvimport.NewImporter(nil)
	}
	deps.Activity = recorderOrNoop(deps.Activity)
	deps.Events = publisherOrNoop(deps.Events)

	return &datasetService{
		deps:    deps,
		maxSize: int64(deps.MaxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "dataset_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/datasets"),
	}
}

func (s *datasetService) Import(ctx context.Context, actor ActivityActor, kind csvimport.Kind, upload dto.ImportUpload) (dto.ImportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "datasets.import")
	defer span.End()

	span.SetAttributes(
		attribute.String("import.kind", string(kind)),
		attribute.Int64("import.max_bytes", s.maxSize),
	)

	if upload.Content == nil && upload.FileName == "" {
		span.RecordError(ErrFileRequired)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ImportResponse{}, ErrFileRequired
	}

	if upload.Size > s.maxSize || int64(len(upload.Content)) > s.maxSize {
		observability.CSVImports().WithLabelValues(string(kind), "too_large").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.ImportResponse{}, ErrUploadTooLarge
	}

	if len(upload.Content) > 0 {
		detected := normalizeMime(mimetype.Detect(upload.Content).String())
		span.SetAttributes(attribute.String("import.detected_mime", detected))
		if !isAllowedType(detected) {
			observability.CSVImports().WithLabelValues(string(kind), "bad_type").Inc()
			span.SetStatus(codes.Error, "type not allowed")
			return dto.ImportResponse{}, ErrUploadTypeNotAllowed
		}
	}

	text := string(bytes.TrimPrefix(upload.Content, utf8BOM))
	checksum := sha256.Sum256(upload.Content)
	record := models.ImportRecord{
		Kind:      string(kind),
		FileName:  sanitizeFileName(upload.FileName),
		SizeBytes: int64(len(upload.Content)),
		Checksum:  hex.EncodeToString(checksum[:]),
		Actor:     strings.ToLower(strings.TrimSpace(actor.Email)),
	}

	rows, rowErrors, summary, err := s.apply(ctx, kind, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ImportResponse{}, err
	}

	if len(rowErrors) > 0 {
		record.Status = models.ImportStatusRejected
		record.ErrorCount = len(rowErrors)
		if err := s.deps.Imports.Create(ctx, &record); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record rejected import")
		}
		observability.CSVImports().WithLabelValues(string(kind), "rejected").Inc()
		span.SetStatus(codes.Error, "validation failed")
		return dto.ImportResponse{}, &ImportValidationError{Kind: kind, Message: summary, Errors: rowErrors}
	}

	if s.deps.Archive != nil {
		url, err := s.deps.Archive.Store(ctx, kind.Slug(), record.FileName, bytes.NewReader(upload.Content))
		if err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to archive upload")
		} else {
			record.ArchiveURL = url
		}
	}

	record.Status = models.ImportStatusApplied
	record.RowCount = rows
	if err := s.deps.Imports.Create(ctx, &record); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record applied import")
	}

	s.invalidate(ctx, kind)

	message := importMessage(kind, rows)
	if _, err := s.deps.Activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "dataset.imported",
		EntityType: kind.Slug(),
		EntityRef:  record.FileName,
		Metadata:   map[string]interface{}{"rows": rows, "checksum": record.Checksum},
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record activity")
	}
	s.deps.Events.Publish(ctx, EventDatasetImported, kind.Slug(), message, map[string]interface{}{"rows": rows, "file_name": record.FileName})

	observability.CSVImports().WithLabelValues(string(kind), "applied").Inc()
	observability.CSVRows().WithLabelValues(string(kind)).Add(float64(rows))
	span.SetAttributes(attribute.Int("import.rows", rows))
	span.SetStatus(codes.Ok, "applied")

	s.logger.Info().
		Str("kind", string(kind)).
		Int("rows", rows).
		Str("file", record.FileName).
		Msg("dataset replaced")

	return dto.ImportResponse{
		ImportID:   record.ID,
		Kind:       kind.Slug(),
		FileName:   record.FileName,
		RowCount:   rows,
		Checksum:   record.Checksum,
		ArchiveURL: record.ArchiveURL,
		Message:    message,
	}, nil
}

// apply validates the sheet and replaces the collection only when every row passed.
func (s *datasetService) apply(ctx context.Context, kind csvimport.Kind, text string) (int, []csvimport.RowError, string, error) {
	switch kind {
	case csvimport.KindApplication:
		report := s.deps.Importer.Applications(text)
		if !report.Valid {
			return 0, report.Errors, report.Summary(), nil
		}
		return len(report.Data), nil, "", s.deps.Applications.ReplaceAll(ctx, report.Data)
	case csvimport.KindResult:
		report := s.deps.Importer.Results(text)
		if !report.Valid {
			return 0, report.Errors, report.Summary(), nil
		}
		return len(report.Data), nil, "", s.deps.Results.ReplaceAll(ctx, report.Data)
	case csvimport.KindVerification:
		report := s.deps.Importer.Verification(text)
		if !report.Valid {
			return 0, report.Errors, report.Summary(), nil
		}
		return len(report.Data), nil, "", s.deps.VerificationData.ReplaceAll(ctx, report.Data)
	default:
		return 0, nil, "", csvimport.ErrUnknownKind
	}
}

func (s *datasetService) invalidate(ctx context.Context, kind csvimport.Kind) {
	prefixes := []string{dashboardCachePrefix}
	if kind == csvimport.KindResult {
		prefixes = append(prefixes, meritCachePrefix)
	}
	for _, prefix := range prefixes {
		if err := invalidatePrefix(ctx, s.deps.Cache, prefix); err != nil {
			s.logger.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache")
		}
	}
}

func (s *datasetService) List(ctx context.Context, kind csvimport.Kind, req dto.DatasetListRequest) (dto.DatasetListResponse, error) {
	filter := repository.DatasetFilter{
		Search:   strings.TrimSpace(req.Search),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}

	var (
		items interface{}
		total int64
		err   error
	)
	switch kind {
	case csvimport.KindApplication:
		var rows []models.ApplicationStatus
		rows, total, err = s.deps.Applications.List(ctx, filter)
		items = nonNil(rows)
	case csvimport.KindResult:
		var rows []models.StudentResult
		rows, total, err = s.deps.Results.List(ctx, filter)
		items = nonNil(rows)
	case csvimport.KindVerification:
		var rows []models.VerificationData
		rows, total, err = s.deps.VerificationData.List(ctx, filter)
		items = nonNil(rows)
	default:
		return dto.DatasetListResponse{}, csvimport.ErrUnknownKind
	}
	if err != nil {
		return dto.DatasetListResponse{}, err
	}

	return dto.DatasetListResponse{
		Kind:       kind.Slug(),
		Items:      items,
		Pagination: paginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *datasetService) Export(ctx context.Context, kind csvimport.Kind) (dto.ExportFile, error) {
	var (
		buf   bytes.Buffer
		count int
		err   error
	)

	switch kind {
	case csvimport.KindApplication:
		var rows []models.ApplicationStatus
		if rows, _, err = s.deps.Applications.List(ctx, repository.DatasetFilter{}); err == nil && len(rows) > 0 {
			count = len(rows)
			err = csvimport.WriteApplications(&buf, rows)
		}
	case csvimport.KindResult:
		var rows []models.StudentResult
		if rows, _, err = s.deps.Results.List(ctx, repository.DatasetFilter{}); err == nil && len(rows) > 0 {
			count = len(rows)
			err = csvimport.WriteResults(&buf, rows)
		}
	case csvimport.KindVerification:
		var rows []models.VerificationData
		if rows, _, err = s.deps.VerificationData.List(ctx, repository.DatasetFilter{}); err == nil && len(rows) > 0 {
			count = len(rows)
			err = csvimport.WriteVerificationData(&buf, rows)
		}
	default:
		return dto.ExportFile{}, csvimport.ErrUnknownKind
	}
	if err != nil {
		return dto.ExportFile{}, fmt.Errorf("export %s: %w", kind, err)
	}
	if count == 0 {
		return dto.ExportFile{}, ErrNothingToExport
	}

	return dto.ExportFile{FileName: kind.Slug() + ".csv", Content: buf.Bytes()}, nil
}

func (s *datasetService) Sample(kind csvimport.Kind) dto.ExportFile {
	return dto.ExportFile{FileName: kind.SampleFileName(), Content: []byte(csvimport.Sample(kind))}
}

func (s *datasetService) History(ctx context.Context, req dto.ImportHistoryRequest) (dto.ImportHistoryResponse, error) {
	filter := repository.ImportFilter{
		Status:   strings.ToLower(strings.TrimSpace(req.Status)),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	if strings.TrimSpace(req.Kind) != "" {
		kind, err := csvimport.ParseKind(req.Kind)
		if err != nil {
			return dto.ImportHistoryResponse{}, err
		}
		filter.Kind = string(kind)
	}

	records, total, err := s.deps.Imports.List(ctx, filter)
	if err != nil {
		return dto.ImportHistoryResponse{}, err
	}

	items := make([]dto.ImportRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.ImportRecordResponse{
			ID:         record.ID,
			Kind:       csvimport.Kind(record.Kind).Slug(),
			FileName:   record.FileName,
			SizeBytes:  record.SizeBytes,
			Checksum:   record.Checksum,
			RowCount:   record.RowCount,
			ErrorCount: record.ErrorCount,
			ArchiveURL: record.ArchiveURL,
			Status:     record.Status,
			Actor:      record.Actor,
			CreatedAt:  record.CreatedAt,
		})
	}

	return dto.ImportHistoryResponse{Items: items, Pagination: paginationMeta(filter.Page, filter.PageSize, total)}, nil
}

func importMessage(kind csvimport.Kind, rows int) string {
	switch kind {
	case csvimport.KindApplication:
		return fmt.Sprintf("%d applications uploaded", rows)
	case csvimport.KindResult:
		return fmt.Sprintf("%d results uploaded", rows)
	default:
		return fmt.Sprintf("%d verification records uploaded", rows)
	}
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".csv"
	}
	return base + ext
}

func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	return lower
}

func isAllowedType(m string) bool {
	switch m {
	case "text/plain", "text/csv":
		return true
	default:
		return false
	}
}
