package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorFromJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"session not found"}`))
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL+"/", time.Second).Result(context.Background(), "nope")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "session not found", apiErr.Message)
}

func TestAPIErrorFromPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, time.Second).PaymentStatus(context.Background(), "s1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestAPIAgainstServer(t *testing.T) {
	st := newStack(t)
	api := NewAPI(st.url, 5*time.Second)
	ctx := context.Background()

	qs, err := api.Questionnaire(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, qs)

	id, err := api.CreateSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, api.Answer(ctx, id, qs[0].ID, qs[0].Options[len(qs[0].Options)-1]))

	res, err := api.Result(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Paid())
	assert.Equal(t, "pending", res.PaymentStatus)

	st2, err := api.PaymentStatus(ctx, id)
	require.NoError(t, err)
	assert.False(t, st2.Paid)

	code, err := api.Checkout(ctx, id, "cliente@exemplo.com")
	require.NoError(t, err)
	assert.NotEmpty(t, code.QRCode)

	_, err = st.svc.ConfirmPayment(ctx, id, "", "approved")
	require.NoError(t, err)

	st2, err = api.PaymentStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, st2.Paid)
	assert.Equal(t, "approved", st2.Status, "status is the provider's, not a paid label")

	_, err = api.Checkout(ctx, id, "cliente@exemplo.com")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}
