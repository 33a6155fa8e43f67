// Package apitest runs an in-memory admin backend for tests. It speaks the
// same routes, payloads and error bodies as the real backend.
package apitest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

// DashboardOrigin is the browser origin allowed to call the backend.
const DashboardOrigin = "http://localhost:5173"

const bearerPrefix = "Bearer "

// Account is a user able to sign in.
type Account struct {
	ID       string
	Email    string
	Password string
	FullName string
	Role     string

	passwordHash []byte
}

// Claims are the JWT claims of issued tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type fault struct {
	status int
	body   string
	drop   bool
}

// Server is a fake backend listening on a local port.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	secret     []byte
	tokenTTL   time.Duration
	accounts   map[string]Account
	revoked    map[string]bool
	resources  map[string]*collection
	socials    map[string]any
	settings   map[string]any
	uploads    map[string][]byte
	calls      map[string]int
	lastAuth   map[string]string
	faults     map[string]fault
	cookieName string
}

// New starts a server and stops it when the test finishes.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("apitest-secret"),
		tokenTTL: time.Hour,
		accounts: make(map[string]Account),
		revoked:  make(map[string]bool),
		resources: map[string]*collection{
			"projects":  newCollection("name"),
			"reviews":   newCollection("customer_name", "rating"),
			"articles":  newCollection("title", "author_name", "category"),
			"customers": newCollection("customer_status", "project_status"),
			"users":     newCollection("email"),
		},
		socials:    map[string]any{"twitter": "", "facebook": "", "instagram": "", "email": "", "phone": ""},
		settings:   map[string]any{"site_name": "", "default_lang": "ar", "default_theme": "system"},
		uploads:    make(map[string][]byte),
		calls:      make(map[string]int),
		lastAuth:   make(map[string]string),
		faults:     make(map[string]fault),
		cookieName: "sessionid",
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// AddAccount registers a user able to sign in and returns its id.
func (s *Server) AddAccount(a Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: failed to hash password: %v", err))
	}
	a.Password = ""
	a.passwordHash = hash
	s.accounts[a.Email] = a
	s.resources["users"].put(a.ID, map[string]any{
		"id":       a.ID,
		"email":    a.Email,
		"fullName": a.FullName,
		"role":     a.Role,
	})
	return a.ID
}

// IssueToken returns a signed token for the account, valid for ttl. A
// negative ttl yields an already expired token.
func (s *Server) IssueToken(email string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown account %s", email)
	}

	now := time.Now()
	claims := Claims{
		UserID: acc.ID,
		Email:  acc.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Revoke invalidates a token as if it had been logged out elsewhere.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// Seed stores a record in a collection ("projects", "reviews", "articles",
// "customers", "users") and returns its id.
func (s *Server) Seed(resource string, fields map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := fields["id"].(string)
	if id == "" {
		id = ulid.Make().String()
	}
	s.resources[resource].put(id, withTimestamps(id, fields))
	return id
}

// Records returns a copy of a collection in insertion order.
func (s *Server) Records(resource string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resources[resource].list()
}

// Upload returns the bytes of a file uploaded under field.
func (s *Server) Upload(field string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[field]
}

// Calls returns how many times "METHOD /path" was requested.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// LastAuthorization returns the Authorization header of the last request to
// "METHOD /path", or "" when it had none.
func (s *Server) LastAuthorization(method, path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth[method+" "+path]
}

// Fail makes every request to "METHOD /path" answer with status and body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = fault{status: status, body: body}
}

// Drop makes every request to "METHOD /path" lose its connection.
func (s *Server) Drop(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = fault{drop: true}
}

// Heal removes a fault installed with Fail or Drop.
func (s *Server) Heal(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, method+" "+path)
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{DashboardOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(s.recordCalls(), s.injectFaults())

	r.POST("/api/login/", s.handleLogin)

	authed := r.Group("/", s.requireAuth())
	authed.GET("/api/me/", s.handleMe)
	authed.POST("/api/logout", s.handleLogout)

	s.mountCollection(authed, "projects", "/projects", false)
	s.mountCollection(authed, "reviews", "/reviews", false)
	s.mountCollection(authed, "articles", "/articles", false)
	s.mountCollection(authed, "customers", "/customers", true)

	authed.GET("/users", s.listHandler("users"))
	authed.GET("/users/:id", s.getHandler("users"))

	authed.GET("/social-links", s.handleGetSocials)
	authed.PUT("/social-links", s.handlePutSocials)
	authed.GET("/settings", s.handleGetSettings)
	authed.PUT("/settings", s.handlePutSettings)

	return r
}

func (s *Server) recordCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path
		s.mu.Lock()
		s.calls[key]++
		s.lastAuth[key] = c.GetHeader("Authorization")
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		f, ok := s.faults[c.Request.Method+" "+c.Request.URL.Path]
		s.mu.Unlock()
		if !ok {
			c.Next()
			return
		}

		if f.drop {
			conn, _, err := c.Writer.Hijack()
			if err == nil {
				conn.Close()
			}
			c.Abort()
			return
		}

		c.Data(f.status, "application/json", []byte(f.body))
		c.Abort()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(header, bearerPrefix)

		claims, err := s.parseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("token", token)
		c.Set("claims", claims)
		c.Next()
	}
}

func (s *Server) parseToken(token string) (*Claims, error) {
	s.mu.Lock()
	revoked := s.revoked[token]
	s.mu.Unlock()
	if revoked {
		return nil, errors.New("token revoked")
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.IssueToken(acc.Email, s.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.SetCookie(s.cookieName, ulid.Make().String(), 3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  accountUser(acc),
	})
}

func (s *Server) handleMe(c *gin.Context) {
	claims := c.MustGet("claims").(*Claims)

	s.mu.Lock()
	acc, ok := s.accounts[claims.Email]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, accountUser(acc))
}

func (s *Server) handleLogout(c *gin.Context) {
	s.Revoke(c.GetString("token"))
	c.Status(http.StatusNoContent)
}

func accountUser(acc Account) gin.H {
	return gin.H{
		"id":       acc.ID,
		"email":    acc.Email,
		"fullName": acc.FullName,
		"role":     acc.Role,
	}
}

func (s *Server) handleGetSocials(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.socials)
}

func (s *Server) handlePutSocials(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range body {
		s.socials[k] = v
	}
	c.JSON(http.StatusOK, s.socials)
}

func (s *Server) handleGetSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.settings)
}

func (s *Server) handlePutSettings(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "expected multipart form data"})
		return
	}

	uploads := make(map[string][]byte)
	for _, field := range []string{"logo", "favicon"} {
		files := form.File[field]
		if len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable " + field})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable " + field})
			return
		}
		uploads[field] = data
		uploads[field+"_name"] = []byte(files[0].Filename)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range form.Value {
		if len(v) > 0 {
			s.settings[k] = v[0]
		}
	}
	for field, data := range uploads {
		if strings.HasSuffix(field, "_name") {
			continue
		}
		s.uploads[field] = data
		s.settings[field+"_url"] = "/uploads/" + string(uploads[field+"_name"])
	}
	c.JSON(http.StatusOK, s.settings)
}
