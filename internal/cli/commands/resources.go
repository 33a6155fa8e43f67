package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taqnia-dev/adminctl/internal/api"
	"github.com/taqnia-dev/adminctl/internal/cli/output"
	"github.com/taqnia-dev/adminctl/internal/listing"
)

func byCreated[T any](field func(T) string) listing.Compare[T] {
	// RFC 3339 timestamps in UTC order lexically
	return func(a, b T) int {
		return strings.Compare(field(a), field(b))
	}
}

func day(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

var projectsDef = resourceDef[api.Project]{
	name:     "projects",
	singular: "project",
	id:       func(p api.Project) string { return p.ID },
	headers:  []string{"ID", "NAME", "STATUS", "TECHNOLOGIES", "CREATED"},
	row: func(p api.Project) []string {
		return []string{p.ID, output.Truncate(p.Name, 40), p.Status, strings.Join(p.Technologies, ", "), day(p.CreatedAt)}
	},
	search: func(p api.Project) []string {
		return append([]string{p.Name, p.Description, p.Status}, p.Technologies...)
	},
	sorts: map[string]listing.Compare[api.Project]{
		"name":       listing.ByText(func(p api.Project) string { return p.Name }),
		"status":     listing.ByText(func(p api.Project) string { return p.Status }),
		"created_at": byCreated(func(p api.Project) string { return p.CreatedAt }),
	},
	defaultSort: "created_at",
	defaultDir:  listing.Descending,
}

var reviewsDef = resourceDef[api.Review]{
	name:     "reviews",
	singular: "review",
	id:       func(r api.Review) string { return r.ID },
	headers:  []string{"ID", "CUSTOMER", "RATING", "COUNTRY", "COMMENT", "CREATED"},
	row: func(r api.Review) []string {
		country := r.CountryName
		if country == "" {
			country = r.CountryCode
		}
		return []string{r.ID, r.CustomerName, stars(r.Rating), country, output.Truncate(r.Comment, 40), day(r.CreatedAt)}
	},
	search: func(r api.Review) []string {
		return []string{r.CustomerName, r.Comment, r.CountryName, r.CountryCode}
	},
	sorts: map[string]listing.Compare[api.Review]{
		"customer_name": listing.ByText(func(r api.Review) string { return r.CustomerName }),
		"rating":        listing.ByInt(func(r api.Review) int { return r.Rating }),
		"created_at":    byCreated(func(r api.Review) string { return r.CreatedAt }),
	},
	defaultSort: "created_at",
	defaultDir:  listing.Descending,
}

func stars(rating int) string {
	if rating < 0 || rating > 5 {
		return strconv.Itoa(rating)
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

var clientsDef = resourceDef[api.Customer]{
	name:     "clients",
	singular: "client",
	aliases:  []string{"customers"},
	id:       func(c api.Customer) string { return c.ID },
	headers:  []string{"ID", "NAME", "CUSTOMER STATUS", "PROJECT STATUS", "REQUIREMENTS"},
	row: func(c api.Customer) []string {
		return []string{c.ID, c.Name, c.CustomerStatus, c.ProjectStatus, output.Truncate(c.ProjectRequirements, 40)}
	},
	search: func(c api.Customer) []string {
		return []string{c.Name, c.CustomerStatus, c.ProjectStatus, c.ProjectRequirements}
	},
	sorts: map[string]listing.Compare[api.Customer]{
		"name":            listing.ByText(func(c api.Customer) string { return c.Name }),
		"customer_status": listing.ByText(func(c api.Customer) string { return c.CustomerStatus }),
		"project_status":  listing.ByText(func(c api.Customer) string { return c.ProjectStatus }),
	},
	defaultSort: "name",
}

var articlesDef = resourceDef[api.Article]{
	name:     "articles",
	singular: "article",
	aliases:  []string{"blog"},
	id:       func(a api.Article) string { return a.ID },
	headers:  []string{"ID", "TITLE", "AUTHOR", "CATEGORY", "CREATED"},
	row: func(a api.Article) []string {
		return []string{a.ID, output.Truncate(a.Title, 50), a.AuthorName, a.Category, day(a.CreatedAt)}
	},
	search: func(a api.Article) []string {
		return []string{a.Title, a.AuthorName, a.Category, a.Description}
	},
	sorts: map[string]listing.Compare[api.Article]{
		"title":       listing.ByText(func(a api.Article) string { return a.Title }),
		"author_name": listing.ByText(func(a api.Article) string { return a.AuthorName }),
		"category":    listing.ByText(func(a api.Article) string { return a.Category }),
		"created_at":  byCreated(func(a api.Article) string { return a.CreatedAt }),
	},
	defaultSort: "created_at",
	defaultDir:  listing.Descending,
}

var usersDef = resourceDef[api.User]{
	name:     "users",
	singular: "user",
	id:       func(u api.User) string { return u.ID },
	headers:  []string{"ID", "NAME", "EMAIL", "ROLE"},
	row: func(u api.User) []string {
		return []string{u.ID, u.FullName, u.Email, u.Role}
	},
	search: func(u api.User) []string {
		return []string{u.FullName, u.Email, u.Role}
	},
	sorts: map[string]listing.Compare[api.User]{
		"name":  listing.ByText(func(u api.User) string { return u.DisplayName() }),
		"email": listing.ByText(func(u api.User) string { return u.Email }),
		"role":  listing.ByText(func(u api.User) string { return u.Role }),
	},
	defaultSort: "name",
}

// NewProjectsCmd creates the projects command group
func NewProjectsCmd(load AppLoader) *cobra.Command {
	return newResourceCmd(load, projectsDef, func(a *api.API) *api.Resource[api.Project, api.ProjectInput, api.ProjectPatch] {
		return a.Projects
	})
}

// NewReviewsCmd creates the reviews command group
func NewReviewsCmd(load AppLoader) *cobra.Command {
	return newResourceCmd(load, reviewsDef, func(a *api.API) *api.Resource[api.Review, api.ReviewInput, api.ReviewPatch] {
		return a.Reviews
	})
}

// NewClientsCmd creates the clients command group
func NewClientsCmd(load AppLoader) *cobra.Command {
	return newResourceCmd(load, clientsDef, func(a *api.API) *api.Resource[api.Customer, api.CustomerInput, api.CustomerPatch] {
		return a.Clients
	})
}

// NewArticlesCmd creates the articles command group
func NewArticlesCmd(load AppLoader) *cobra.Command {
	return newResourceCmd(load, articlesDef, func(a *api.API) *api.Resource[api.Article, api.ArticleInput, api.ArticlePatch] {
		return a.Articles
	})
}

// NewUsersCmd creates the read-only users command group
func NewUsersCmd(load AppLoader) *cobra.Command {
	return newReaderCmd(load, usersDef, func(a *api.API) *api.Reader[api.User] {
		return a.Users
	})
}
