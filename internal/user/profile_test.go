package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/querycache"
)

func strp(s string) *string { return &s }

func newProfiles(t *testing.T, h http.HandlerFunc) *Profiles {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewProfiles(api.NewClient(srv.URL, 0, nil), querycache.New(querycache.Options{}))
}

func TestPatchRequest_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		req   PatchRequest
		field string
	}{
		{name: "empty patch", req: PatchRequest{}},
		{name: "empty strings clear fields", req: PatchRequest{DisplayName: strp(""), Username: strp(""), Bio: strp(""), Socials: &Socials{}}},
		{name: "valid", req: PatchRequest{Username: strp("thread_queen"), Socials: &Socials{Website: "https://example.com"}}},
		{name: "long display name", req: PatchRequest{DisplayName: strp(strings.Repeat("d", 51))}, field: "displayName"},
		{name: "short username", req: PatchRequest{Username: strp("ab")}, field: "username"},
		{name: "username charset", req: PatchRequest{Username: strp("no spaces")}, field: "username"},
		{name: "long bio", req: PatchRequest{Bio: strp(strings.Repeat("b", 301))}, field: "bio"},
		{name: "long instagram", req: PatchRequest{Socials: &Socials{Instagram: strings.Repeat("i", 31)}}, field: "socials.instagram"},
		{name: "bad website", req: PatchRequest{Socials: &Socials{Website: "not a url"}}, field: "socials.website"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.req.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *api.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestProfiles_GetIsCachedAndUpdateInvalidates(t *testing.T) {
	t.Parallel()

	var gets atomic.Int32
	name := "Ada"
	p := newProfiles(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
		case http.MethodPatch:
			var req PatchRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.DisplayName != nil {
				name = *req.DisplayName
			}
		}
		_ = json.NewEncoder(w).Encode(profileResponse{OK: true, Profile: Profile{ID: "u1", DisplayName: &name}})
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		prof, err := p.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", *prof.DisplayName)
	}
	assert.EqualValues(t, 1, gets.Load())

	_, err := p.Update(ctx, "u1", PatchRequest{DisplayName: strp("Grace")})
	require.NoError(t, err)

	prof, err := p.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Grace", *prof.DisplayName)
	assert.EqualValues(t, 2, gets.Load())
}

func TestProfiles_UploadAvatar_rejectsNonImages(t *testing.T) {
	t.Parallel()

	var called atomic.Bool
	p := newProfiles(t, func(w http.ResponseWriter, r *http.Request) { called.Store(true) })

	_, err := p.UploadAvatar(context.Background(), "u1", "me.png", []byte("%PDF-1.4 not an image"))
	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "avatar", verr.Field)
	assert.False(t, called.Load())
}

func TestProfile_AvatarURL(t *testing.T) {
	t.Parallel()

	_, ok := Profile{}.AvatarURL("")
	assert.False(t, ok)

	u, ok := Profile{Avatar: &Avatar{Key: "avatars/u1.webp"}}.AvatarURL("")
	assert.True(t, ok)
	assert.Equal(t, api.DefaultAssetBaseURL+"/avatars/u1.webp", u)
}

func TestUpdateProfile_onlyOwnProfile(t *testing.T) {
	t.Parallel()

	p := newProfiles(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s %s", r.Method, r.URL.Path)
	})
	h := NewHandler(p, "")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/users/u2", strings.NewReader(`{"bio":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	c.Set("user_id", "u1")

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
