package api

// User is the account returned by the auth endpoints and the users listing.
type User struct {
	ID        string `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	FullName  string `json:"fullName,omitempty" yaml:"full_name,omitempty"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// DisplayName returns the full name, falling back to the email.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Project statuses accepted by the backend.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectOnHold     = "on_hold"
)

type Project struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Status       string   `json:"status,omitempty" yaml:"status,omitempty"`
	Technologies []string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	CreatedAt    string   `json:"created_at" yaml:"created_at"`
	UpdatedAt    string   `json:"updated_at" yaml:"updated_at"`
}

type ProjectInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=planning in_progress completed on_hold"`
	Technologies []string `json:"technologies,omitempty" validate:"omitempty,dive,required"`
}

// ProjectPatch carries only the fields being changed.
type ProjectPatch struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Status       *string   `json:"status,omitempty" validate:"omitempty,oneof=planning in_progress completed on_hold"`
	Technologies *[]string `json:"technologies,omitempty"`
}

type Review struct {
	ID           string `json:"id" yaml:"id"`
	CustomerName string `json:"customer_name" yaml:"customer_name"`
	Rating       int    `json:"rating" yaml:"rating"`
	Comment      string `json:"comment,omitempty" yaml:"comment,omitempty"`
	CountryCode  string `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	CountryName  string `json:"country_name,omitempty" yaml:"country_name,omitempty"`
	CreatedAt    string `json:"created_at" yaml:"created_at"`
	UpdatedAt    string `json:"updated_at" yaml:"updated_at"`
}

type ReviewInput struct {
	CustomerName string `json:"customer_name" validate:"required"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
	Comment      string `json:"comment,omitempty"`
	CountryCode  string `json:"country_code,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	CountryName  string `json:"country_name,omitempty"`
}

type ReviewPatch struct {
	CustomerName *string `json:"customer_name,omitempty" validate:"omitempty,min=1"`
	Rating       *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Comment      *string `json:"comment,omitempty"`
	CountryCode  *string `json:"country_code,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	CountryName  *string `json:"country_name,omitempty"`
}

// Customer is a client of the company. The backend calls them customers.
type Customer struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name,omitempty" yaml:"name,omitempty"`
	CustomerStatus      string `json:"customer_status" yaml:"customer_status"`
	ProjectStatus       string `json:"project_status" yaml:"project_status"`
	ProjectRequirements string `json:"project_requirements,omitempty" yaml:"project_requirements,omitempty"`
}

type CustomerInput struct {
	Name                string `json:"name,omitempty"`
	CustomerStatus      string `json:"customer_status" validate:"required"`
	ProjectStatus       string `json:"project_status" validate:"required"`
	ProjectRequirements string `json:"project_requirements,omitempty"`
}

type CustomerPatch struct {
	Name                *string `json:"name,omitempty"`
	CustomerStatus      *string `json:"customer_status,omitempty" validate:"omitempty,min=1"`
	ProjectStatus       *string `json:"project_status,omitempty" validate:"omitempty,min=1"`
	ProjectRequirements *string `json:"project_requirements,omitempty"`
}

type Article struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	AuthorName  string `json:"author_name" yaml:"author_name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Content     string `json:"content,omitempty" yaml:"content,omitempty"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
	UpdatedAt   string `json:"updated_at" yaml:"updated_at"`
}

type ArticleInput struct {
	Title       string `json:"title" validate:"required,max=300"`
	AuthorName  string `json:"author_name" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type ArticlePatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	AuthorName  *string `json:"author_name,omitempty" validate:"omitempty,min=1"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// SocialLinks is the singleton set of public contact links.
type SocialLinks struct {
	Twitter   string `json:"twitter" yaml:"twitter" validate:"omitempty,url"`
	Facebook  string `json:"facebook" yaml:"facebook" validate:"omitempty,url"`
	Instagram string `json:"instagram" yaml:"instagram" validate:"omitempty,url"`
	Email     string `json:"email" yaml:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" yaml:"phone" validate:"omitempty,max=32"`
}

// SiteSettings is the singleton site configuration.
type SiteSettings struct {
	SiteName     string `json:"site_name" yaml:"site_name"`
	Description  string `json:"description" yaml:"description"`
	DefaultLang  string `json:"default_lang" yaml:"default_lang"`
	DefaultTheme string `json:"default_theme" yaml:"default_theme"`
	ContactEmail string `json:"contact_email" yaml:"contact_email"`
	ContactPhone string `json:"contact_phone" yaml:"contact_phone"`
	MetaKeywords string `json:"meta_keywords" yaml:"meta_keywords"`
	MetaAuthor   string `json:"meta_author" yaml:"meta_author"`
	LogoURL      string `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
	FaviconURL   string `json:"favicon_url,omitempty" yaml:"favicon_url,omitempty"`
}

// Stats summarizes resource counts for the dashboard.
type Stats struct {
	Projects int `json:"projects" yaml:"projects"`
	Reviews  int `json:"reviews" yaml:"reviews"`
	Articles int `json:"articles" yaml:"articles"`
	Clients  int `json:"clients" yaml:"clients"`
}
