package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/internal/client"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

const testToken = "test-token"

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) warnings() []map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	var warnings []map[string]interface{}

	for _, entry := range l.logs {
		if entry["level"] == "warn" {
			warnings = append(warnings, entry)
		}
	}

	return warnings
}

// testCatalog points every service at a prefix of baseURL. Compute and
// volume URLs carry their version, network and image URLs do not, as in
// typical deployments.
func testCatalog(baseURL string) openstack.ServiceCatalog {
	entry := func(serviceType, path string) openstack.ServiceCatalogEntry {
		return openstack.ServiceCatalogEntry{
			Type: serviceType,
			Endpoints: []openstack.Endpoint{
				{Interface: openstack.InterfaceInternal, Region: "RegionOne", URL: "http://unreachable.invalid" + path},
				{Interface: openstack.InterfacePublic, Region: "RegionOne", URL: baseURL + path + "/"},
			},
		}
	}

	return openstack.ServiceCatalog{
		entry(openstack.ServiceCompute, "/compute/v2.1"),
		entry(openstack.ServiceVolumeV3, "/volume/v3/proj-1"),
		entry(openstack.ServiceNetwork, "/network"),
		entry(openstack.ServiceImage, "/image"),
	}
}

// newTestGateway serves handler behind a full catalog and returns a client
// and session wired to it.
func newTestGateway(t *testing.T, handler http.HandlerFunc) (*client.Client, *openstack.Session, *MockLogger) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, testToken, request.Header.Get("X-Auth-Token"))
		handler(writer, request)
	}))
	t.Cleanup(server.Close)

	logger := &MockLogger{}

	gateway, err := client.New(&openstack.Config{Logger: logger, Region: "RegionOne"})
	require.NoError(t, err)

	session := &openstack.Session{
		Token:     testToken,
		Catalog:   testCatalog(server.URL),
		ProjectID: "proj-1",
	}

	return gateway, session, logger
}

// routes dispatches on "METHOD /path"; unknown routes fail the test.
func routes(t *testing.T, handlers map[string]http.HandlerFunc) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		handler, ok := handlers[request.Method+" "+request.URL.Path]
		if !ok {
			t.Errorf("unexpected request %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		handler(writer, request)
	}
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, body)
	}
}

func decodeBody(t *testing.T, request *http.Request) map[string]any {
	t.Helper()

	var body map[string]any

	err := json.NewDecoder(request.Body).Decode(&body)
	assert.NoError(t, err)

	return body
}

func mustJSON(t *testing.T, raw string) map[string]any {
	t.Helper()

	var decoded map[string]any

	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	return decoded
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// missingIDCase is an adapter call made with one required id left empty.
type missingIDCase struct {
	name  string
	field string
	call  func(ctx context.Context, gateway *client.Client, session *openstack.Session) error
}

// assertRejectedLocally runs each case against an upstream that counts
// requests and checks the call failed validation without reaching it.
func assertRejectedLocally(t *testing.T, cases []missingIDCase) {
	t.Helper()

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var requests atomic.Int32

			gateway, session, _ := newTestGateway(t, func(writer http.ResponseWriter, _ *http.Request) {
				requests.Add(1)
				writer.WriteHeader(http.StatusNoContent)
			})

			err := tt.call(context.Background(), gateway, session)
			require.ErrorIs(t, err, openstack.ErrInvalidRequest)

			var validationErr *openstack.ValidationError

			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Zero(t, requests.Load(), "no request may reach the upstream")
		})
	}
}
