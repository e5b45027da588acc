package masto_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"storsim/pkg/masto"
)

func TestPostStatus(t *testing.T) {
	t.Parallel()

	var (
		gotAuth string
		gotIdem string
		gotBody masto.PostStatusRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/statuses", r.URL.Path)

		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(masto.Status{ //nolint:errcheck
			ID:         "42",
			Content:    gotBody.Status,
			Visibility: gotBody.Visibility,
		})
	}))
	defer srv.Close()

	client := masto.NewClient(srv.URL, nil)
	defer client.Close()

	status, err := client.PostStatus(t.Context(), "secret", masto.PostStatusRequest{
		Status:     "Hello Storhampton! 🎉",
		Visibility: "public",
	})
	require.NoError(t, err)
	require.Equal(t, "42", status.ID)
	require.Equal(t, "Hello Storhampton! 🎉", status.Content)

	require.Equal(t, "Bearer secret", gotAuth)
	require.NotEmpty(t, gotIdem)
}

func TestResponseMiddlewares(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]")) //nolint:errcheck
	}))
	defer srv.Close()

	var calls atomic.Int32
	client := masto.NewClient(srv.URL, &masto.ClientConfig{
		TransportSettings: masto.DefaultConfig.TransportSettings,
		ResponseMiddlewares: []resty.ResponseMiddleware{
			masto.MetricMiddleware,
			func(_ *resty.Client, _ *resty.Response) error {
				calls.Add(1)
				return nil
			},
		},
	})
	defer client.Close()

	_, err := client.HomeTimeline(t.Context(), "secret", 5)
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx becomes a typed error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"Record not found"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		client := masto.NewClient(srv.URL, nil)
		defer client.Close()

		_, err := client.Favourite(t.Context(), "secret", "999")
		require.Error(t, err)

		var apiErr *masto.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		require.False(t, apiErr.Transient())
	})

	t.Run("rate limits and server errors are transient", func(t *testing.T) {
		t.Parallel()

		for _, code := range []int{429, 500, 503} {
			err := &masto.APIError{StatusCode: code}
			require.True(t, err.Transient(), "status %d", code)
		}
		require.False(t, (&masto.APIError{StatusCode: 403}).Transient())
	})
}
