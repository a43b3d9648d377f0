package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_AuthStatus_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"logged_in": true, "username": "alice", "full_name": "Alice A", "csrf_token": "tok123"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	rec, err := c.AuthStatus(context.Background())
	require.NoError(t, err)
	require.True(t, rec.LoggedIn)
	require.Equal(t, "alice", rec.Username)
	require.Equal(t, "tok123", rec.CSRFToken)
}

func TestClient_Login_PostsActionAndCSRFHeader(t *testing.T) {
	var gotBody map[string]any
	var gotCSRF string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotCSRF = r.Header.Get("X-CSRFToken")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"logged_in": true, "username": "alice", "csrf_token": "fresh"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetCSRFToken("stale")

	rec, err := c.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "fresh", rec.CSRFToken)
	require.Equal(t, "stale", gotCSRF)
	require.Equal(t, "login", gotBody["action"])
	require.Equal(t, "alice", gotBody["username"])
	require.Equal(t, "hunter2", gotBody["password"])
}

func TestClient_ServerError_Normalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "Resource not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ClientByID(context.Background(), "nope")
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok, "want *Error, got %T", err)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "Resource not found", apiErr.Message)
}

func TestClient_ConnectionError_Normalized(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.Clients(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok, "want *Error, got %T", err)
	require.Equal(t, 0, apiErr.StatusCode)
	require.Equal(t, "connection error", apiErr.Message)
}

func TestClient_SessionExpiry_TriggersCallbackOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "Session expired, please log in again"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	expiries := 0
	c.OnSessionExpired(func() { expiries++ })

	_, err := c.Clients(context.Background())
	require.Error(t, err)
	require.True(t, IsSessionExpired(err))
	require.Equal(t, 1, expiries)
}

func TestClient_Forbidden_WithoutExpiredMessage_NoCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "CSRF verification failed"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	expiries := 0
	c.OnSessionExpired(func() { expiries++ })

	_, err := c.Clients(context.Background())
	require.Error(t, err)
	require.False(t, IsSessionExpired(err))
	require.Equal(t, 0, expiries)
}

func TestClient_OpenByClient_FieldsParam(t *testing.T) {
	var gotFields string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients/c1/open/", r.URL.Path)
		gotFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"client_id": "c1", "open_list": [
			{"priority": 2, "date_tgt": "2024-06-01", "opened_at": "2024-01-01 00:00:00", "opened_by": "alice",
			 "req": {"id": "r1", "title": "First", "prod_area": "Billing"}},
			{"priority": null, "date_tgt": "", "opened_at": "2024-01-02 00:00:00", "opened_by": "bob",
			 "req": {"id": "r2", "title": "Second", "prod_area": "Claims"}}
		]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.OpenByClient(context.Background(), "c1", []string{"id", "title", "prod_area"})
	require.NoError(t, err)
	require.Equal(t, "id,title,prod_area", gotFields)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Priority)
	require.Equal(t, 2, *list[0].Priority)
	require.Nil(t, list[1].Priority)
	require.Equal(t, "r2", list[1].Req.ID)
}

func TestClient_OpenAction_PostsEnvelope(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/requests/r1/all/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"open_list": [], "closed_list": [
			{"client_id": "c1", "opened_at": "2024-01-01 00:00:00", "opened_by": "alice",
			 "closed_at": "2024-02-01 00:00:00", "closed_by": "bob", "status": "C", "reason": "done",
			 "req": {"id": "r1", "title": "First", "prod_area": "Billing"}}
		]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	open, closed, err := c.OpenAction(context.Background(), "r1", "close", map[string]any{
		"client_id": "c1",
		"status":    "C",
		"reason":    "done",
	})
	require.NoError(t, err)
	require.Equal(t, "close", gotBody["action"])
	require.Equal(t, "c1", gotBody["client_id"])
	require.Empty(t, open)
	require.Len(t, closed, 1)
	require.Equal(t, "C", closed[0].Status)
}

func TestClient_ExplicitNullField_Marshalled(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"open_list": [], "closed_list": []}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, _, err := c.OpenAction(context.Background(), "r1", "update", map[string]any{
		"client_id": "c1",
		"priority":  nil,
	})
	require.NoError(t, err)

	val, present := raw["priority"]
	require.True(t, present, "explicit null key must be present in the payload")
	require.Equal(t, "null", string(val))
	_, present = raw["date_tgt"]
	require.False(t, present, "unset key must be omitted")
}
