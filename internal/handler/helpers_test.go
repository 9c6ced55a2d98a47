package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/triangletax/taxsite/internal/config"
	"github.com/triangletax/taxsite/internal/handler"
	"github.com/triangletax/taxsite/internal/metrics"
	"github.com/triangletax/taxsite/internal/router"
	"github.com/triangletax/taxsite/internal/server"
	"github.com/triangletax/taxsite/internal/service"
)

// fakeProvider stands in for the Resend or Stripe API.
type fakeProvider struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

type recordedRequest struct {
	Path   string
	Header http.Header
	Body   []byte
}

func newFakeProvider(t *testing.T, status int, response string) *fakeProvider {
	t.Helper()

	f := &fakeProvider{status: status, response: response}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		status, response := f.status, f.response
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeProvider) last(t *testing.T) recordedRequest {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("provider was not called")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeProvider) lastForm(t *testing.T) url.Values {
	t.Helper()

	form, err := url.ParseQuery(string(f.last(t).Body))
	if err != nil {
		t.Fatalf("provider body is not a form: %v", err)
	}
	return form
}

func newResend(t *testing.T) *fakeProvider {
	return newFakeProvider(t, http.StatusOK, `{"id":"email_123"}`)
}

func newStripe(t *testing.T) *fakeProvider {
	return newFakeProvider(t, http.StatusOK,
		`{"id":"cs_test_123","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_123"}`)
}

func newTestServer(src config.IntegrationSource, mutate ...func(*config.Config)) *server.Server {
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:              "0",
			CORSAllowedOrigin: "*",
		},
		Observability: config.DefaultObservabilityConfig(),
	}
	for _, m := range mutate {
		m(cfg)
	}

	logger := zerolog.Nop()

	return &server.Server{
		Config:       cfg,
		Logger:       &logger,
		Integrations: src,
		Metrics:      metrics.New(),
		HTTPClient:   http.DefaultClient,
	}
}

func newTestRouter(s *server.Server) *echo.Echo {
	return router.NewRouter(s, handler.NewHandlers(s, service.NewServices(s)))
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowMethods); got != "POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowHeaders); got != "Content-Type" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}
