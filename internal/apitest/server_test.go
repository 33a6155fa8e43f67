package apitest

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_ChecksHashedPassword(t *testing.T) {
	srv := New(t)
	srv.AddAccount(Account{Email: "admin@taqnia.dev", Password: "s3cret"})

	post := func(body string) int {
		resp, err := http.Post(srv.URL+"/api/login/", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post(`{"email":"admin@taqnia.dev","password":"s3cret"}`))
	assert.Equal(t, http.StatusUnauthorized, post(`{"email":"admin@taqnia.dev","password":"S3CRET"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"email":"admin@taqnia.dev"}`))
}

func TestCORSPreflight(t *testing.T) {
	srv := New(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", DashboardOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, DashboardOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestRequireAuth(t *testing.T) {
	srv := New(t)
	srv.AddAccount(Account{Email: "admin@taqnia.dev", Password: "s3cret"})

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/me/", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	token, err := srv.IssueToken("admin@taqnia.dev", time.Hour)
	require.NoError(t, err)
	expired, err := srv.IssueToken("admin@taqnia.dev", -time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(token))
	assert.Equal(t, http.StatusUnauthorized, get(""))
	assert.Equal(t, http.StatusUnauthorized, get(expired))

	srv.Revoke(token)
	assert.Equal(t, http.StatusUnauthorized, get(token))
	assert.Equal(t, 4, srv.Calls(http.MethodGet, "/api/me/"))
}
