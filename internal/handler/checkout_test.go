package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triangletax/taxsite/internal/config"
)

func checkoutIntegration(stripe *fakeProvider) config.StaticIntegrationSource {
	return config.StaticIntegrationSource{Config: config.IntegrationConfig{
		StripeSecretKey: "sk_test_123",
		StripeBaseURL:   stripe.URL,
		BusinessName:    "Triangle Tax & Advisory",
	}}
}

func TestCheckoutSuccess(t *testing.T) {
	stripe := newStripe(t)
	e := newTestRouter(newTestServer(checkoutIntegration(stripe)))

	rec := serve(e, http.MethodPost, "/api/create-checkout", `{"amount":15000}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/pay/cs_test_123","sessionId":"cs_test_123"}`, rec.Body.String())
	assertCORS(t, rec)

	require.Equal(t, 1, stripe.calls())
	assert.Equal(t, "/v1/checkout/sessions", stripe.last(t).Path)

	form := stripe.lastForm(t)
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "http://example.com/thank-you?payment=success", form.Get("success_url"))
	assert.Equal(t, "http://example.com?payment=cancelled", form.Get("cancel_url"))
	assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "15000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "Service from Triangle Tax & Advisory", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
	assert.False(t, form.Has("customer_email"))
}

func TestCheckoutDescriptionAndCustomerEmail(t *testing.T) {
	stripe := newStripe(t)
	e := newTestRouter(newTestServer(checkoutIntegration(stripe)))

	rec := serve(e, http.MethodPost, "/api/create-checkout",
		`{"amount":5000,"description":"Consultation deposit","customerEmail":"payer@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	form := stripe.lastForm(t)
	assert.Equal(t, "Consultation deposit", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "payer@example.com", form.Get("customer_email"))
}

func TestCheckoutCustomerEmailIsNotValidated(t *testing.T) {
	stripe := newStripe(t)
	e := newTestRouter(newTestServer(checkoutIntegration(stripe)))

	rec := serve(e, http.MethodPost, "/api/create-checkout", `{"amount":5000,"customerEmail":"not-an-email"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "not-an-email", stripe.lastForm(t).Get("customer_email"))
}

func TestCheckoutRedirectOverrides(t *testing.T) {
	stripe := newStripe(t)
	src := checkoutIntegration(stripe)
	src.Config.StripeSuccessURL = "https://triangletaxadvisory.com/paid"
	src.Config.StripeCancelURL = "https://triangletaxadvisory.com/pricing"
	src.Config.BusinessName = ""
	e := newTestRouter(newTestServer(src))

	rec := serve(e, http.MethodPost, "/api/create-checkout", `{"amount":50}`)
	require.Equal(t, http.StatusOK, rec.Code)

	form := stripe.lastForm(t)
	assert.Equal(t, "https://triangletaxadvisory.com/paid", form.Get("success_url"))
	assert.Equal(t, "https://triangletaxadvisory.com/pricing", form.Get("cancel_url"))
	assert.Equal(t, "Service from Business", form.Get("line_items[0][price_data][product_data][name]"))
}

func TestCheckoutInvalidAmount(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"amount":0}`,
		`{"amount":49}`,
		`{"amount":-5000}`,
		`{"amount":50.5}`,
		`{"amount":null}`,
	} {
		t.Run(body, func(t *testing.T) {
			stripe := newStripe(t)
			e := newTestRouter(newTestServer(checkoutIntegration(stripe)))

			rec := serve(e, http.MethodPost, "/api/create-checkout", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid amount"}`, rec.Body.String())
			assertCORS(t, rec)
			assert.Zero(t, stripe.calls())
		})
	}
}

func TestCheckoutConfigCheckedBeforeBody(t *testing.T) {
	e := newTestRouter(newTestServer(config.StaticIntegrationSource{}))

	for _, body := range []string{`{"amount":5000}`, `{"amount":1}`, "not json", ""} {
		rec := serve(e, http.MethodPost, "/api/create-checkout", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		assert.JSONEq(t, `{"error":"Payment system not configured"}`, rec.Body.String(), body)
		assertCORS(t, rec)
	}
}

func TestCheckoutMalformedBody(t *testing.T) {
	stripe := newStripe(t)
	e := newTestRouter(newTestServer(checkoutIntegration(stripe)))

	for _, body := range []string{"", "{", `{"amount":"5000"}`, "null", `{"amount":5000} trailing`} {
		rec := serve(e, http.MethodPost, "/api/create-checkout", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		assert.JSONEq(t, `{"error":"An unexpected error occurred"}`, rec.Body.String(), body)
	}

	assert.Zero(t, stripe.calls())
}

func TestCheckoutUpstreamFailure(t *testing.T) {
	stripe := newFakeProvider(t, http.StatusBadRequest,
		`{"error":{"type":"invalid_request_error","message":"No such price: sk_live_leak"}}`)
	e := newTestRouter(newTestServer(checkoutIntegration(stripe)))

	rec := serve(e, http.MethodPost, "/api/create-checkout", `{"amount":5000}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create checkout session"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "sk_live_leak")
	assert.Equal(t, 1, stripe.calls())
}

func TestCheckoutRereadsConfigPerRequest(t *testing.T) {
	stripe := newStripe(t)
	e := newTestRouter(newTestServer(config.NewEnvIntegrationSource()))

	rec := serve(e, http.MethodPost, "/api/create-checkout", `{"amount":5000}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Payment system not configured"}`, rec.Body.String())

	t.Setenv("TAXSITE_INTEGRATION__STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("TAXSITE_INTEGRATION__STRIPE_BASE_URL", stripe.URL)

	rec = serve(e, http.MethodPost, "/api/create-checkout", `{"amount":5000}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stripe.calls())
}
