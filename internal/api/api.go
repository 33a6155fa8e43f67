// Package api exposes the admin backend as typed services on top of the
// request client.
package api

import (
	"context"
	"fmt"

	"github.com/taqnia-dev/adminctl/internal/httpclient"
)

// API groups every backend service.
type API struct {
	Auth        *AuthService
	Projects    *Resource[Project, ProjectInput, ProjectPatch]
	Reviews     *Resource[Review, ReviewInput, ReviewPatch]
	Clients     *Resource[Customer, CustomerInput, CustomerPatch]
	Articles    *Resource[Article, ArticleInput, ArticlePatch]
	Users       *Reader[User]
	SocialLinks *SocialLinksService
	Settings    *SettingsService
}

// New wires every service to the given client.
func New(c *httpclient.Client) *API {
	return &API{
		Auth:        &AuthService{client: c},
		Projects:    newResource[Project, ProjectInput, ProjectPatch](c, "/projects", false),
		Reviews:     newResource[Review, ReviewInput, ReviewPatch](c, "/reviews", false),
		Clients:     newResource[Customer, CustomerInput, CustomerPatch](c, "/customers", true),
		Articles:    newResource[Article, ArticleInput, ArticlePatch](c, "/articles", false),
		Users:       &Reader[User]{client: c, prefix: "/users"},
		SocialLinks: &SocialLinksService{client: c},
		Settings:    &SettingsService{client: c},
	}
}

// Stats counts the records of the main resources, one listing at a time.
func (a *API) Stats(ctx context.Context) (*Stats, error) {
	projects, err := a.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	reviews, err := a.Reviews.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	articles, err := a.Articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	clients, err := a.Clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	return &Stats{
		Projects: len(projects),
		Reviews:  len(reviews),
		Articles: len(articles),
		Clients:  len(clients),
	}, nil
}
