package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triangletax/taxsite/internal/config"
)

const validContact = `{"name":"Jane Doe","email":"jane@example.com","phone":"919-555-0142","message":"Hello there"}`

func contactIntegration(resend *fakeProvider) config.StaticIntegrationSource {
	return config.StaticIntegrationSource{Config: config.IntegrationConfig{
		ResendAPIKey:  "re_test",
		ResendBaseURL: resend.URL,
		ContactEmail:  "owner@example.com",
		BusinessName:  "Triangle Tax & Advisory",
	}}
}

func TestContactSuccess(t *testing.T) {
	resend := newResend(t)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	rec := serve(e, http.MethodPost, "/api/contact", validContact)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message sent successfully!"}`, rec.Body.String())
	assertCORS(t, rec)

	require.Equal(t, 1, resend.calls())
	sent := resend.last(t)
	assert.Equal(t, "/emails", sent.Path)
	assert.Equal(t, "Bearer re_test", sent.Header.Get("Authorization"))

	var email map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &email))
	assert.Equal(t, "Triangle Tax & Advisory Website <noreply@resend.dev>", email["from"])
	assert.Equal(t, []any{"owner@example.com"}, email["to"])
	assert.Equal(t, "jane@example.com", email["reply_to"])
	assert.Equal(t, "New Contact Form Submission from Jane Doe", email["subject"])
	assert.Contains(t, email["html"], "Hello there")
	assert.Contains(t, email["text"], "Phone: 919-555-0142")
}

func TestContactDefaultBusinessName(t *testing.T) {
	resend := newResend(t)
	src := contactIntegration(resend)
	src.Config.BusinessName = ""
	e := newTestRouter(newTestServer(src))

	rec := serve(e, http.MethodPost, "/api/contact", validContact)
	require.Equal(t, http.StatusOK, rec.Code)

	var email map[string]any
	require.NoError(t, json.Unmarshal(resend.last(t).Body, &email))
	assert.Equal(t, "Your Business Website <noreply@resend.dev>", email["from"])
}

func TestContactEscapesHTMLBody(t *testing.T) {
	resend := newResend(t)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	rec := serve(e, http.MethodPost, "/api/contact",
		`{"name":"<b>Eve</b>","email":"eve@example.com","message":"<script>alert(1)</script>\nbye"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var email struct {
		Subject string `json:"subject"`
		HTML    string `json:"html"`
		Text    string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(resend.last(t).Body, &email))
	assert.NotContains(t, email.HTML, "<script>")
	assert.NotContains(t, email.HTML, "<b>Eve</b>")
	assert.Contains(t, email.HTML, "&lt;script&gt;alert(1)&lt;/script&gt;<br />bye")
	assert.Contains(t, email.Text, "<script>alert(1)</script>")
	assert.Equal(t, "New Contact Form Submission from <b>Eve</b>", email.Subject)
}

func TestContactValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"jane@example.com","message":"hi"}`, "Missing required fields"},
		{"missing email", `{"name":"Jane","message":"hi"}`, "Missing required fields"},
		{"missing message", `{"name":"Jane","email":"jane@example.com"}`, "Missing required fields"},
		{"empty strings", `{"name":"","email":"","message":""}`, "Missing required fields"},
		{"missing beats bad email", `{"name":"","email":"abc","message":"hi"}`, "Missing required fields"},
		{"no at sign", `{"name":"Jane","email":"abc","message":"hi"}`, "Invalid email format"},
		{"no dot", `{"name":"Jane","email":"a@b","message":"hi"}`, "Invalid email format"},
		{"whitespace", `{"name":"Jane","email":"a b@c.co","message":"hi"}`, "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resend := newResend(t)
			e := newTestRouter(newTestServer(contactIntegration(resend)))

			rec := serve(e, http.MethodPost, "/api/contact", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"`+tt.want+`"}`, rec.Body.String())
			assertCORS(t, rec)
			assert.Zero(t, resend.calls())
		})
	}
}

func TestContactValidationRunsBeforeConfigCheck(t *testing.T) {
	e := newTestRouter(newTestServer(config.StaticIntegrationSource{}))

	rec := serve(e, http.MethodPost, "/api/contact", `{"name":"Jane"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Missing required fields"}`, rec.Body.String())
}

func TestContactNotConfigured(t *testing.T) {
	resend := newResend(t)

	for name, cfg := range map[string]config.IntegrationConfig{
		"no api key":       {ContactEmail: "owner@example.com", ResendBaseURL: resend.URL},
		"no contact email": {ResendAPIKey: "re_test", ResendBaseURL: resend.URL},
	} {
		t.Run(name, func(t *testing.T) {
			e := newTestRouter(newTestServer(config.StaticIntegrationSource{Config: cfg}))

			rec := serve(e, http.MethodPost, "/api/contact", validContact)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"Contact form not configured"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "resend_api_key")
			assertCORS(t, rec)
		})
	}

	assert.Zero(t, resend.calls())
}

func TestContactUpstreamFailure(t *testing.T) {
	resend := newFakeProvider(t, http.StatusUnprocessableEntity,
		`{"statusCode":422,"name":"validation_error","message":"domain example.com is not verified"}`)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	rec := serve(e, http.MethodPost, "/api/contact", validContact)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to send message"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "not verified")
	assert.Equal(t, 1, resend.calls())
	assertCORS(t, rec)
}

func TestContactMalformedBody(t *testing.T) {
	resend := newResend(t)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	for _, body := range []string{
		"",
		"{not json",
		`{"name":42}`,
		"null",
		`{"name":"a","email":"a@b.co","message":"x"} trailing`,
	} {
		rec := serve(e, http.MethodPost, "/api/contact", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		assert.JSONEq(t, `{"success":false,"error":"An unexpected error occurred"}`, rec.Body.String(), body)
		assertCORS(t, rec)
	}

	assert.Zero(t, resend.calls())
}

func TestContactRejectsUnicodeWhitespaceInEmail(t *testing.T) {
	resend := newResend(t)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	for _, addr := range []string{
		"jane\u00a0doe@example.com",
		"jane\vdoe@example.com",
		"jane@exa\u2003mple.com",
		"\ufeffjane@example.com",
	} {
		body, err := json.Marshal(map[string]string{
			"name":    "Jane",
			"email":   addr,
			"message": "Hello",
		})
		require.NoError(t, err)

		rec := serve(e, http.MethodPost, "/api/contact", string(body))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "%q", addr)
		assert.JSONEq(t, `{"success":false,"error":"Invalid email format"}`, rec.Body.String(), "%q", addr)
	}

	assert.Zero(t, resend.calls())
}

func TestContactDuplicatesAreSentTwice(t *testing.T) {
	resend := newResend(t)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	serve(e, http.MethodPost, "/api/contact", validContact)
	serve(e, http.MethodPost, "/api/contact", validContact)

	assert.Equal(t, 2, resend.calls())
}

func TestContactCountsOutcomes(t *testing.T) {
	resend := newResend(t)
	e := newTestRouter(newTestServer(contactIntegration(resend)))

	serve(e, http.MethodPost, "/api/contact", validContact)
	serve(e, http.MethodPost, "/api/contact", `{"name":"Jane"}`)

	rec := serve(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taxsite_form_submissions_total{form="contact",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `taxsite_form_submissions_total{form="contact",outcome="validation_error"} 1`)
	assert.Contains(t, rec.Body.String(), `taxsite_upstream_request_duration_seconds_count{provider="resend",result="ok"} 1`)
}
