package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/taqnia-dev/adminctl/internal/httpclient"
)

const (
	SocialLinksPath = "/social-links"
	SettingsPath    = "/settings"
)

// SocialLinksService reads and replaces the public contact links.
type SocialLinksService struct {
	client *httpclient.Client
}

func (s *SocialLinksService) Get(ctx context.Context) (*SocialLinks, error) {
	res, err := httpclient.Send[SocialLinks](ctx, s.client, httpclient.Request{
		Method: http.MethodGet,
		Path:   SocialLinksPath,
	})
	if err != nil {
		return nil, err
	}
	return &res.Value, nil
}

// Set replaces all links. Empty fields clear the corresponding link.
func (s *SocialLinksService) Set(ctx context.Context, links SocialLinks) (*SocialLinks, error) {
	if err := validateInput(links); err != nil {
		return nil, err
	}
	res, err := httpclient.Send[SocialLinks](ctx, s.client, httpclient.Request{
		Method: http.MethodPut,
		Path:   SocialLinksPath,
		Body:   links,
	})
	if err != nil {
		return nil, err
	}
	if res.NoContent {
		return &links, nil
	}
	return &res.Value, nil
}

// Upload is a file sent along with a multipart update.
type Upload struct {
	Filename string
	Content  io.Reader
}

// SettingsUpdate carries the settings fields being changed and optional
// branding files.
type SettingsUpdate struct {
	SiteName     *string `json:"site_name" validate:"omitempty,max=120"`
	Description  *string `json:"description"`
	DefaultLang  *string `json:"default_lang" validate:"omitempty,oneof=ar en"`
	DefaultTheme *string `json:"default_theme" validate:"omitempty,oneof=system light dark"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=32"`
	MetaKeywords *string `json:"meta_keywords"`
	MetaAuthor   *string `json:"meta_author"`

	Logo    *Upload `json:"-" validate:"-"`
	Favicon *Upload `json:"-" validate:"-"`
}

// Empty reports whether the update changes nothing.
func (u SettingsUpdate) Empty() bool {
	return len(u.fields()) == 0 && u.Logo == nil && u.Favicon == nil
}

func (u SettingsUpdate) fields() [][2]string {
	var out [][2]string
	add := func(name string, v *string) {
		if v != nil {
			out = append(out, [2]string{name, *v})
		}
	}
	add("site_name", u.SiteName)
	add("description", u.Description)
	add("default_lang", u.DefaultLang)
	add("default_theme", u.DefaultTheme)
	add("contact_email", u.ContactEmail)
	add("contact_phone", u.ContactPhone)
	add("meta_keywords", u.MetaKeywords)
	add("meta_author", u.MetaAuthor)
	return out
}

// SettingsService reads and updates the site settings.
type SettingsService struct {
	client *httpclient.Client
}

func (s *SettingsService) Get(ctx context.Context) (*SiteSettings, error) {
	res, err := httpclient.Send[SiteSettings](ctx, s.client, httpclient.Request{
		Method: http.MethodGet,
		Path:   SettingsPath,
	})
	if err != nil {
		return nil, err
	}
	return &res.Value, nil
}

// Update sends the changed fields and files as multipart form data.
func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (*SiteSettings, error) {
	if u.Empty() {
		return nil, fmt.Errorf("nothing to update")
	}
	if err := validateInput(u); err != nil {
		return nil, err
	}

	form := httpclient.NewForm()
	for _, kv := range u.fields() {
		form.Field(kv[0], kv[1])
	}
	if u.Logo != nil {
		form.File("logo", u.Logo.Filename, u.Logo.Content)
	}
	if u.Favicon != nil {
		form.File("favicon", u.Favicon.Filename, u.Favicon.Content)
	}

	res, err := httpclient.Send[SiteSettings](ctx, s.client, httpclient.Request{
		Method:    http.MethodPut,
		Path:      SettingsPath,
		Body:      form,
		Multipart: true,
	})
	if err != nil {
		return nil, err
	}
	if res.NoContent {
		return s.Get(ctx)
	}
	return &res.Value, nil
}
