package user

import (
	"context"
	"net/url"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/querycache"
	"github.com/threadswap/storefront/internal/upload"
)

const KindProfile querycache.Kind = "profile-detail"

func ProfileKey(id string) querycache.Key {
	return querycache.NewKey(KindProfile, id, nil)
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || usernamePattern.MatchString(s)
	})
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		u, err := url.ParseRequestURI(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	})
	return v
}

var fieldMessages = map[string]string{
	"DisplayName": "display name must be 50 characters or less",
	"Username":    "username must be 3-30 letters, numbers, or underscores",
	"Bio":         "bio must be 300 characters or less",
	"Instagram":   "instagram handle must be 30 characters or less",
	"Website":     "must be a valid URL",
}

var fieldNames = map[string]string{
	"DisplayName": "displayName",
	"Username":    "username",
	"Bio":         "bio",
	"Instagram":   "socials.instagram",
	"Website":     "socials.website",
}

func (r PatchRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &api.ValidationError{Msg: err.Error()}
	}
	f := verrs[0].StructField()
	return &api.ValidationError{Field: fieldNames[f], Msg: fieldMessages[f]}
}

// Backend is the part of *api.Client the profile endpoints use.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	PostMultipart(ctx context.Context, path string, form *api.Form, out any) error
}

// Profiles reads profiles through the cache and invalidates them after
// edits.
type Profiles struct {
	b     Backend
	cache *querycache.Orchestrator
}

func NewProfiles(b Backend, cache *querycache.Orchestrator) *Profiles {
	return &Profiles{b: b, cache: cache}
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}

// Get calls GET /users/:id, served from the cache while fresh.
func (p *Profiles) Get(ctx context.Context, id string) (Profile, error) {
	if id == "" {
		return Profile{}, &api.ValidationError{Field: "id", Msg: "is required"}
	}
	return querycache.Query(ctx, p.cache, ProfileKey(id), func(ctx context.Context) (Profile, error) {
		var res profileResponse
		if err := p.b.Get(ctx, userPath(id), nil, &res); err != nil {
			return Profile{}, err
		}
		return res.Profile, nil
	})
}

// Update calls PATCH /users/:id.
func (p *Profiles) Update(ctx context.Context, id string, req PatchRequest) (Profile, error) {
	if err := req.Validate(); err != nil {
		return Profile{}, err
	}
	var res profileResponse
	if err := p.b.Patch(ctx, userPath(id), req, &res); err != nil {
		return Profile{}, err
	}
	p.cache.Invalidate(ProfileKey(id))
	return res.Profile, nil
}

// UploadAvatar calls POST /users/:id/avatar with the image as "avatar".
func (p *Profiles) UploadAvatar(ctx context.Context, id, fileName string, data []byte) (Avatar, error) {
	ct, err := upload.DetectImage(data)
	if err != nil {
		return Avatar{}, &api.ValidationError{Field: "avatar", Msg: err.Error()}
	}
	form := api.NewForm().File("avatar", fileName, ct, data)

	var res avatarResponse
	if err := p.b.PostMultipart(ctx, userPath(id)+"/avatar", form, &res); err != nil {
		return Avatar{}, err
	}
	p.cache.Invalidate(ProfileKey(id))
	return res.Avatar, nil
}
