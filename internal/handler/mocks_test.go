package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

type mockFormService struct {
	last    dto.ApplicationFormRequest
	receipt dto.SubmissionReceipt
	err     error
}

func (m *mockFormService) Submit(_ context.Context, req dto.ApplicationFormRequest) (dto.SubmissionReceipt, error) {
	m.last = req
	return m.receipt, m.err
}

type mockVerificationService struct {
	lastRequest dto.VerificationRequestPayload
	lastVerify  dto.InstantVerifyRequest
	receipt     dto.SubmissionReceipt
	verify      dto.InstantVerifyResponse
	err         error
}

func (m *mockVerificationService) Request(_ context.Context, req dto.VerificationRequestPayload) (dto.SubmissionReceipt, error) {
	m.lastRequest = req
	return m.receipt, m.err
}

func (m *mockVerificationService) Verify(_ context.Context, req dto.InstantVerifyRequest) (dto.InstantVerifyResponse, error) {
	m.lastVerify = req
	return m.verify, m.err
}

type mockApplicationService struct {
	last     dto.ApplicationTrackRequest
	response dto.ApplicationStatusResponse
	err      error
}

func (m *mockApplicationService) Track(_ context.Context, req dto.ApplicationTrackRequest) (dto.ApplicationStatusResponse, error) {
	m.last = req
	return m.response, m.err
}

type mockResultService struct {
	last   dto.ResultLookupRequest
	result dto.ResultResponse
	merit  dto.MeritListResponse
	err    error
}

func (m *mockResultService) Lookup(_ context.Context, req dto.ResultLookupRequest) (dto.ResultResponse, error) {
	m.last = req
	return m.result, m.err
}

func (m *mockResultService) MeritList(context.Context) (dto.MeritListResponse, error) {
	return m.merit, m.err
}

type mockAuthService struct {
	lastRegister dto.RegisterRequest
	lastLogin    dto.LoginRequest
	meEmail      string
	meRole       string
	response     dto.AuthResponse
	user         dto.UserResponse
	err          error
}

func (m *mockAuthService) Register(_ context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	m.lastRegister = req
	return m.response, m.err
}

func (m *mockAuthService) Login(_ context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	m.lastLogin = req
	return m.response, m.err
}

func (m *mockAuthService) Me(_ context.Context, email, role string) (dto.UserResponse, error) {
	m.meEmail = email
	m.meRole = role
	return m.user, m.err
}

type mockContentService struct {
	response dto.AboutResponse
	err      error
}

func (m *mockContentService) About(context.Context) (dto.AboutResponse, error) {
	return m.response, m.err
}

type mockAdminService struct {
	dashboard     dto.DashboardResponse
	forms         dto.AdminFormListResponse
	verifications dto.AdminVerificationListResponse
	form          dto.FormSubmissionResponse
	verification  dto.VerificationRequestResponse
	export        dto.ExportFile
	err           error

	lastList   dto.AdminListRequest
	lastActor  service.ActivityActor
	lastRef    string
	lastStatus string
}

func (m *mockAdminService) Dashboard(context.Context) (dto.DashboardResponse, error) {
	return m.dashboard, m.err
}

func (m *mockAdminService) ListForms(_ context.Context, req dto.AdminListRequest) (dto.AdminFormListResponse, error) {
	m.lastList = req
	return m.forms, m.err
}

func (m *mockAdminService) UpdateFormStatus(_ context.Context, actor service.ActivityActor, reference, status string) (dto.FormSubmissionResponse, error) {
	m.lastActor, m.lastRef, m.lastStatus = actor, reference, status
	return m.form, m.err
}

func (m *mockAdminService) DeleteForm(_ context.Context, actor service.ActivityActor, reference string) error {
	m.lastActor, m.lastRef = actor, reference
	return m.err
}

func (m *mockAdminService) ExportForms(context.Context) (dto.ExportFile, error) {
	return m.export, m.err
}

func (m *mockAdminService) ListVerifications(_ context.Context, req dto.AdminListRequest) (dto.AdminVerificationListResponse, error) {
	m.lastList = req
	return m.verifications, m.err
}

func (m *mockAdminService) UpdateVerificationStatus(_ context.Context, actor service.ActivityActor, reference, status string) (dto.VerificationRequestResponse, error) {
	m.lastActor, m.lastRef, m.lastStatus = actor, reference, status
	return m.verification, m.err
}

func (m *mockAdminService) DeleteVerification(_ context.Context, actor service.ActivityActor, reference string) error {
	m.lastActor, m.lastRef = actor, reference
	return m.err
}

func (m *mockAdminService) ExportVerifications(context.Context) (dto.ExportFile, error) {
	return m.export, m.err
}

type mockActivityService struct {
	last     dto.ActivityListRequest
	response dto.ActivityListResponse
	err      error
}

func (m *mockActivityService) Record(_ context.Context, entry service.ActivityEntry) (dto.ActivityResponse, error) {
	return dto.ActivityResponse{Action: entry.Action}, nil
}

func (m *mockActivityService) List(_ context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	m.last = req
	return m.response, m.err
}

type mockDatasetService struct {
	lastKind   csvimport.Kind
	lastUpload dto.ImportUpload
	lastActor  service.ActivityActor
	lastList   dto.DatasetListRequest
	lastQuery  dto.ImportHistoryRequest
	imported   dto.ImportResponse
	list       dto.DatasetListResponse
	history    dto.ImportHistoryResponse
	export     dto.ExportFile
	err        error
}

func (m *mockDatasetService) Import(_ context.Context, actor service.ActivityActor, kind csvimport.Kind, upload dto.ImportUpload) (dto.ImportResponse, error) {
	m.lastActor, m.lastKind, m.lastUpload = actor, kind, upload
	return m.imported, m.err
}

func (m *mockDatasetService) List(_ context.Context, kind csvimport.Kind, req dto.DatasetListRequest) (dto.DatasetListResponse, error) {
	m.lastKind, m.lastList = kind, req
	return m.list, m.err
}

func (m *mockDatasetService) Export(_ context.Context, kind csvimport.Kind) (dto.ExportFile, error) {
	m.lastKind = kind
	return m.export, m.err
}

func (m *mockDatasetService) Sample(kind csvimport.Kind) dto.ExportFile {
	m.lastKind = kind
	return dto.ExportFile{FileName: kind.SampleFileName(), Content: []byte(csvimport.Sample(kind))}
}

func (m *mockDatasetService) History(_ context.Context, req dto.ImportHistoryRequest) (dto.ImportHistoryResponse, error) {
	m.lastQuery = req
	return m.history, m.err
}

type stubEventService struct {
	mu          sync.Mutex
	subscribers []chan dto.FeedEvent
	subscribed  chan struct{}
}

func newStubEventService() *stubEventService {
	return &stubEventService{subscribed: make(chan struct{}, 4)}
}

func (s *stubEventService) Publish(_ context.Context, eventType, entityRef, summary string, data map[string]interface{}) dto.FeedEvent {
	event := dto.FeedEvent{ID: entityRef, Type: eventType, EntityRef: entityRef, Summary: summary, Data: data}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		ch <- event
	}
	return event
}

func (s *stubEventService) Subscribe() (<-chan dto.FeedEvent, func()) {
	ch := make(chan dto.FeedEvent, 8)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	s.subscribed <- struct{}{}
	return ch, func() {}
}

func (s *stubEventService) Start(context.Context) {}
