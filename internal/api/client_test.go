package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestClient_Get_attachesBearerAndRequestID(t *testing.T) {
	t.Parallel()

	var gotAuth, gotReqID, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newClient(srv.Client(), srv.URL+"/", staticToken("tok-1"))

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Get(context.Background(), "/listings", url.Values{"category": {"SHOES"}}, &out)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "category=SHOES", gotQuery)
}

func TestClient_Get_withoutTokenSendsNoAuthorization(t *testing.T) {
	t.Parallel()

	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClient(srv.Client(), srv.URL, staticToken(""))
	require.NoError(t, c.Get(context.Background(), "/listings", nil, nil))
	assert.False(t, hasAuth)
}

func TestClient_errorNormalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "message wins", status: http.StatusBadRequest, body: `{"message":"bad price","detail":"ignored"}`, wantMsg: "bad price"},
		{name: "detail fallback", status: http.StatusNotFound, body: `{"detail":"listing not found"}`, wantMsg: "listing not found"},
		{name: "transport text", status: http.StatusInternalServerError, body: `oops`, wantMsg: "Request failed with status code 500"},
		{name: "empty message skipped", status: http.StatusConflict, body: `{"message":""}`, wantMsg: "Request failed with status code 409"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := newClient(srv.Client(), srv.URL, nil)
			err := c.Get(context.Background(), "/x", nil, nil)
			require.Error(t, err)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, tc.wantMsg, e.Message)
		})
	}
}

func TestClient_networkFailureHasZeroStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := newClient(&http.Client{}, base, nil)
	err := c.Get(context.Background(), "/listings", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetworkFailure(err))
	assert.NotEmpty(t, err.(*Error).Message)
}

func TestClient_PatchSendsJSON(t *testing.T) {
	t.Parallel()

	var gotCT string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newClient(srv.Client(), srv.URL, nil)
	require.NoError(t, c.Patch(context.Background(), "/listings/1/status", map[string]string{"status": "SOLD"}, nil))

	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "SOLD", gotBody["status"])
}

func TestClient_PostMultipart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "Jacket", r.FormValue("title"))
		files := r.MultipartForm.File["images"]
		if assert.Len(t, files, 2) {
			assert.Equal(t, "a.png", files[0].Filename)
			assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newClient(srv.Client(), srv.URL, nil)
	form := NewForm().
		Field("title", "Jacket").
		File("images", "a.png", "image/png", []byte("png-bytes")).
		File("images", "b.jpg", "image/jpeg", []byte("jpg-bytes"))

	require.NoError(t, c.PostMultipart(context.Background(), "/listings", form, nil))
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(&Error{Status: http.StatusNotFound}))
	assert.True(t, IsUnauthorized(&Error{Status: http.StatusUnauthorized}))
	assert.False(t, IsNetworkFailure(&Error{Status: http.StatusBadGateway}))
	assert.True(t, IsValidation(&ValidationError{Field: "title", Msg: "too short"}))
	assert.Equal(t, "title: too short", (&ValidationError{Field: "title", Msg: "too short"}).Error())
	assert.Equal(t, 0, StatusOf(nil))
}
