package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmoney/golang_services/internal/core_domain"
	adapter_http "github.com/mmoney/golang_services/internal/notification_service/adapters/http"
	"github.com/mmoney/golang_services/internal/notification_service/adapters/infobip"
	"github.com/mmoney/golang_services/internal/notification_service/domain"
)

var testSecret = []byte("test-jwt-secret")

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(ctx context.Context, client core_domain.Client, templateID int64, params map[string]string) (domain.Message, error) {
	args := m.Called(ctx, client, templateID, params)
	return args.Get(0).(domain.Message), args.Error(1)
}

func (m *MockComposer) ComposeMany(ctx context.Context, reqs []domain.ComposeRequest) ([]domain.Message, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

type MockClientDirectory struct {
	mock.Mock
}

func (m *MockClientDirectory) GetClient(ctx context.Context, id int64) (*core_domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core_domain.Client), args.Error(1)
}

type MockLocalizationStore struct {
	mock.Mock
}

func (m *MockLocalizationStore) Ancestry(ctx context.Context, districtID int64) (*domain.Ancestry, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ancestry), args.Error(1)
}

func (m *MockLocalizationStore) Setting(ctx context.Context, scope domain.Scope, entityID int64, field string) (string, error) {
	args := m.Called(ctx, scope, entityID, field)
	return args.String(0), args.Error(1)
}

type fixture struct {
	composer *MockComposer
	clients  *MockClientDirectory
	store    *MockLocalizationStore
	router   http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		composer: new(MockComposer),
		clients:  new(MockClientDirectory),
		store:    new(MockLocalizationStore),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := adapter_http.NewComposeHandler(f.composer, f.clients, f.store, validator.New(), logger)
	r := chi.NewRouter()
	h.RegisterRoutes(r, adapter_http.JWTMiddleware(testSecret, logger))
	f.router = r
	return f
}

func signedToken(t *testing.T, secret []byte, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops-console",
		"exp": exp.Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

var beatrice = &core_domain.Client{ID: 10, DistrictID: 1404, MainPhone: "254706822219", Status: core_domain.ClientStatusActive}

func TestComposeHandler_Compose(t *testing.T) {
	f := newFixture()
	token := signedToken(t, testSecret, time.Now().Add(time.Hour))
	params := map[string]string{"firstName": "beatrice"}
	msg := domain.Message{Text: "Jambo beatrice.", SenderID: "65778", Recipients: []string{"254706822219"}, Language: "sw"}

	f.clients.On("GetClient", mock.Anything, int64(10)).Return(beatrice, nil)
	f.composer.On("Compose", mock.Anything, *beatrice, int64(1), params).Return(msg, nil)

	rr := f.do(t, "/v1/messages/compose", adapter_http.ComposeRequestDTO{ClientID: 10, TemplateID: 1, Parameters: params}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got domain.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, msg, got)
	f.composer.AssertExpectations(t)
}

func TestComposeHandler_Compose_InfobipFormat(t *testing.T) {
	token := signedToken(t, testSecret, time.Now().Add(time.Hour))
	msg := domain.Message{Text: "Hello", SenderID: "65778", Recipients: []string{"254706822219"}}

	t.Run("AccountConfigured", func(t *testing.T) {
		f := newFixture()
		f.clients.On("GetClient", mock.Anything, int64(10)).Return(beatrice, nil)
		f.composer.On("Compose", mock.Anything, *beatrice, int64(1), mock.Anything).Return(msg, nil)
		f.store.On("Ancestry", mock.Anything, int64(1404)).Return(&domain.Ancestry{DistrictID: 1404, RegionID: 14, CountryID: 404}, nil)
		f.store.On("Setting", mock.Anything, domain.ScopeCountry, int64(404), infobip.APIKeyField).Return("ke-key", nil)

		rr := f.do(t, "/v1/messages/compose?format=infobip", adapter_http.ComposeRequestDTO{ClientID: 10, TemplateID: 1}, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"from":"65778","to":["254706822219"],"text":"Hello"}`, rr.Body.String())
	})

	t.Run("NoAccountForCountry", func(t *testing.T) {
		f := newFixture()
		f.clients.On("GetClient", mock.Anything, int64(10)).Return(beatrice, nil)
		f.composer.On("Compose", mock.Anything, *beatrice, int64(1), mock.Anything).Return(msg, nil)
		f.store.On("Ancestry", mock.Anything, int64(1404)).Return(&domain.Ancestry{DistrictID: 1404, RegionID: 14, CountryID: 404}, nil)
		f.store.On("Setting", mock.Anything, domain.ScopeCountry, int64(404), infobip.APIKeyField).Return("", nil)

		rr := f.do(t, "/v1/messages/compose?format=infobip", adapter_http.ComposeRequestDTO{ClientID: 10, TemplateID: 1}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestComposeHandler_Compose_Errors(t *testing.T) {
	token := signedToken(t, testSecret, time.Now().Add(time.Hour))

	t.Run("ClientNotFound", func(t *testing.T) {
		f := newFixture()
		f.clients.On("GetClient", mock.Anything, int64(99)).Return(nil, fmt.Errorf("client 99: %w", domain.ErrClientNotFound))
		rr := f.do(t, "/v1/messages/compose", adapter_http.ComposeRequestDTO{ClientID: 99, TemplateID: 1}, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("MissingTemplate", func(t *testing.T) {
		f := newFixture()
		f.clients.On("GetClient", mock.Anything, int64(10)).Return(beatrice, nil)
		f.composer.On("Compose", mock.Anything, *beatrice, int64(42), mock.Anything).
			Return(domain.Message{}, fmt.Errorf("%w: template 42", domain.ErrMissingTemplate))
		rr := f.do(t, "/v1/messages/compose", adapter_http.ComposeRequestDTO{ClientID: 10, TemplateID: 42}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("NoSender", func(t *testing.T) {
		f := newFixture()
		f.clients.On("GetClient", mock.Anything, int64(10)).Return(beatrice, nil)
		f.composer.On("Compose", mock.Anything, *beatrice, int64(1), mock.Anything).
			Return(domain.Message{}, fmt.Errorf("channel %q: %w", "whatsapp", domain.ErrNoSender))
		rr := f.do(t, "/v1/messages/compose", adapter_http.ComposeRequestDTO{ClientID: 10, TemplateID: 1}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		f := newFixture()
		rr := f.do(t, "/v1/messages/compose", adapter_http.ComposeRequestDTO{ClientID: 10}, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		f.clients.AssertNotCalled(t, "GetClient", mock.Anything, mock.Anything)
	})
}

func TestComposeHandler_ComposeBatch(t *testing.T) {
	f := newFixture()
	token := signedToken(t, testSecret, time.Now().Add(time.Hour))
	barnabas := &core_domain.Client{ID: 20, DistrictID: 5404, MainPhone: "254711000111", Status: core_domain.ClientStatusActive}

	f.clients.On("GetClient", mock.Anything, int64(10)).Return(beatrice, nil)
	f.clients.On("GetClient", mock.Anything, int64(20)).Return(barnabas, nil)
	expectedReqs := []domain.ComposeRequest{
		{Client: *beatrice, TemplateID: 1, Parameters: map[string]string{"firstName": "beatrice"}},
		{Client: *barnabas, TemplateID: 1, Parameters: map[string]string{"firstName": "barnabas"}},
	}
	msgs := []domain.Message{{Text: "Jambo beatrice."}, {Text: "Hello barnabas."}}
	f.composer.On("ComposeMany", mock.Anything, expectedReqs).Return(msgs, nil)

	rr := f.do(t, "/v1/messages/compose/batch", adapter_http.ComposeBatchRequestDTO{Items: []adapter_http.ComposeRequestDTO{
		{ClientID: 10, TemplateID: 1, Parameters: map[string]string{"firstName": "beatrice"}},
		{ClientID: 20, TemplateID: 1, Parameters: map[string]string{"firstName": "barnabas"}},
	}}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp adapter_http.ComposeBatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "Jambo beatrice.", resp.Messages[0].Text)
	assert.Equal(t, "Hello barnabas.", resp.Messages[1].Text)
}

func TestComposeHandler_ComposeBatch_Empty(t *testing.T) {
	f := newFixture()
	token := signedToken(t, testSecret, time.Now().Add(time.Hour))
	rr := f.do(t, "/v1/messages/compose/batch", adapter_http.ComposeBatchRequestDTO{}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJWTMiddleware(t *testing.T) {
	f := newFixture()
	body := adapter_http.ComposeRequestDTO{ClientID: 10, TemplateID: 1}

	assert.Equal(t, http.StatusUnauthorized, f.do(t, "/v1/messages/compose", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, "/v1/messages/compose", body, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized,
		f.do(t, "/v1/messages/compose", body, signedToken(t, []byte("other-secret"), time.Now().Add(time.Hour))).Code)
	assert.Equal(t, http.StatusUnauthorized,
		f.do(t, "/v1/messages/compose", body, signedToken(t, testSecret, time.Now().Add(-time.Hour))).Code)
	f.clients.AssertNotCalled(t, "GetClient", mock.Anything, mock.Anything)
}
