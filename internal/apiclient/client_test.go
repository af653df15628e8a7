package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oc-ticketing/internal/session"
)

func TestDo_AttachesBearerAndDefaultContentType(t *testing.T) {
	var gotAuth, gotType, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Trace")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryStore("tok-123"))
	resp, err := c.Do(context.Background(), "/api/matches", Request{Headers: map[string]string{"X-Trace": "t1"}})

	require.NoError(t, err)
	assert.True(t, resp.IsJSON())
	assert.JSONEq(t, `[{"id":1}]`, string(resp.JSON))
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "t1", gotCustom)
}

func TestDo_NoTokenNoAuthorizationHeader(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryStore(""))
	resp, err := c.Do(context.Background(), "/x", Request{Method: http.MethodDelete})

	require.NoError(t, err)
	assert.False(t, hadAuth)
	assert.Equal(t, http.StatusNoContent, resp.Status)
}

func TestDo_CallerContentTypeWins(t *testing.T) {
	var gotType string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Do(context.Background(), "/upload", Request{
		Method:  http.MethodPost,
		Body:    "a=b",
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	})

	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, "a=b", gotBody)
}

func TestDo_JSONFailureIsStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Sin cupo en la grada"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Do(context.Background(), "/api/purchases", Request{Method: http.MethodPost, Body: map[string]int{"matchId": 1}})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindHTTPStatus, apiErr.Kind)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Sin cupo en la grada", apiErr.Message("fallback"))
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "Sin cupo en la grada", UserMessage(err, "fallback"))
}

func TestDo_BinaryReturnedRegardlessOfStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<h1>boom</h1>"))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	resp, err := c.Do(context.Background(), "/broken", Request{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "<h1>boom</h1>", string(resp.Binary))
}

func TestSend_NonJSONFailureIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.Send(context.Background(), http.MethodDelete, "/api/matches/1", nil, nil, nil)

	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, "Error eliminando partido", UserMessage(err, "Error eliminando partido"))
}

func TestSend_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"not-a-number"}`))
	}))
	defer srv.Close()

	var out struct {
		ID int `json:"id"`
	}
	err := New(srv.URL, nil).GetJSON(context.Background(), "/x", &out)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestDo_InvalidJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{oops`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Do(context.Background(), "/x", Request{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Do(context.Background(), "/api/matches", Request{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, "Error de conexión", UserMessage(err, "Error de conexión"))
}

func TestDownload_AbsoluteURLAndStatusCheck(t *testing.T) {
	receipts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer receipts.Close()

	c := New("http://backend.invalid", session.NewMemoryStore("tok"))
	data, err := c.Download(context.Background(), receipts.URL+"/receipts/p-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	anon := New("http://backend.invalid", session.NewMemoryStore(""))
	_, err = anon.Download(context.Background(), receipts.URL+"/receipts/p-1.pdf")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestMetrics_CountOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(srv.URL, nil, WithMetrics(m))

	_, _ = c.Do(context.Background(), "/ok", Request{})
	_, _ = c.Do(context.Background(), "/bad", Request{})
	_, _ = c.Do(context.Background(), "/ok", Request{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "http_status")))
}

func TestErrorMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "fb", (&Error{}).Message("fb"))
	assert.Equal(t, "fb", (&Error{Body: []byte(`not json`)}).Message("fb"))
	assert.Equal(t, "msg", (&Error{Body: []byte(`{"message":"msg"}`)}).Message("fb"))
	assert.Equal(t, "fb", UserMessage(errors.New("plain"), "fb"))
}
