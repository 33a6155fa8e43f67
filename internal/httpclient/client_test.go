package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func staticToken(token string) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) (string, error) {
		return token, nil
	})
}

func TestDo_NoTokenSendsNoAuthorizationHeader(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	for _, c := range []*Client{
		New(srv.URL),
		New(srv.URL, WithTokenSource(staticToken(""))),
	} {
		_, err := Send[[]item](context.Background(), c, Request{Path: "/projects"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.Header.Values("Authorization"))
	}
}

func TestDo_TokenSendsBearerHeader(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Values("Authorization")
		w.Write([]byte(`{"id":"1","name":"a"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("tok-123")))
	res, err := Send[item](context.Background(), c, Request{Path: "/projects/1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok-123"}, auth)
	assert.Equal(t, item{ID: "1", Name: "a"}, res.Value)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, res.NoContent)
}

func TestDo_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"id":"","name":"site"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"9","name":"site"}`))
	}))
	defer srv.Close()

	res, err := Send[item](context.Background(), New(srv.URL+"/"), Request{
		Method: http.MethodPost,
		Path:   "/projects",
		Body:   item{Name: "site"},
	})
	require.NoError(t, err)
	assert.Equal(t, "9", res.Value.ID)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestDo_HeaderOverridesApplyLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer override", r.Header.Get("Authorization"))
		assert.Equal(t, "fr", r.Header.Get("Accept-Language"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("stored")))
	_, err := c.Do(context.Background(), Request{
		Path: "/me",
		Header: http.Header{
			"Authorization":   {"Bearer override"},
			"accept-language": {"fr"},
		},
	}, nil)
	require.NoError(t, err)
}

func TestDo_NoContentSkipsDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res, err := Send[item](context.Background(), New(srv.URL), Request{Method: http.MethodDelete, Path: "/projects/1"})
	require.NoError(t, err)
	assert.True(t, res.NoContent)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, item{}, res.Value)
}

func TestDo_EmptySuccessBodyIsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := Send[item](context.Background(), New(srv.URL), Request{Method: http.MethodPost, Path: "/api/logout"})
	require.NoError(t, err)
	assert.True(t, res.NoContent)
}

func TestDo_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"name is required"}`, "name is required"},
		{"error field", http.StatusConflict, `{"error":"already exists"}`, "already exists"},
		{"message wins over error", http.StatusBadRequest, `{"error":"e","message":"m"}`, "m"},
		{"detail field", http.StatusForbidden, `{"detail":"not allowed"}`, "not allowed"},
		{"unparsable body", http.StatusInternalServerError, `<html>oops</html>`, "Request failed with status 500"},
		{"empty body", http.StatusNotFound, ``, "Request failed with status 404"},
		{"empty message", http.StatusBadRequest, `{"message":""}`, "Request failed with status 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Do(context.Background(), Request{Path: "/x"}, nil)
			require.Error(t, err)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.message, reqErr.Error())
			assert.False(t, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestDo_UnauthorizedNotifiesHandlersOncePerCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer srv.Close()

	var first, second atomic.Int32
	c := New(srv.URL, WithUnauthorizedHandler(UnauthorizedHandlerFunc(func(ctx context.Context, err *RequestError) {
		first.Add(1)
		assert.Equal(t, "/projects", err.Path)
	})))
	c.OnUnauthorized(UnauthorizedHandlerFunc(func(ctx context.Context, err *RequestError) {
		second.Add(1)
	}))

	_, err := c.Do(context.Background(), Request{Path: "/projects"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "token expired", err.Error())

	_, err = c.Do(context.Background(), Request{Path: "/projects"}, nil)
	require.Error(t, err)

	assert.Equal(t, int32(2), first.Load())
	assert.Equal(t, int32(2), second.Load())
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var called bool
	c := New(url, WithUnauthorizedHandler(UnauthorizedHandlerFunc(func(ctx context.Context, err *RequestError) {
		called = true
	})))

	_, err := c.Do(context.Background(), Request{Path: "/projects"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, called)

	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestDo_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).Do(ctx, Request{Path: "/slow"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDo_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Taqnia", r.FormValue("site_name"))

		f, hdr, err := r.FormFile("logo")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "logo.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(content))

		w.Write([]byte(`{"id":"settings","name":"Taqnia"}`))
	}))
	defer srv.Close()

	form := NewForm().
		Field("site_name", "Taqnia").
		File("logo", "logo.png", strings.NewReader("PNGDATA"))
	assert.Equal(t, 2, form.Len())

	c := New(srv.URL, WithTokenSource(staticToken("t")))
	res, err := Send[item](context.Background(), c, Request{
		Method:    http.MethodPut,
		Path:      "/settings",
		Body:      form,
		Multipart: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Taqnia", res.Value.Name)
}

func TestDo_MultipartRejectsNonForm(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Do(context.Background(), Request{
		Method:    http.MethodPut,
		Path:      "/settings",
		Body:      map[string]string{"a": "b"},
		Multipart: true,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multipart body must be *httpclient.Form")
}

func TestDo_RejectsUnknownMethod(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Do(context.Background(), Request{Method: "TRACE", Path: "/"}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestDo_TokenSourceError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(TokenSourceFunc(func(ctx context.Context) (string, error) {
		return "", errors.New("keychain locked")
	})))

	_, err := c.Do(context.Background(), Request{Path: "/projects"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keychain locked")
	assert.Equal(t, int32(0), hits.Load())
}

func TestDo_KeepsCookiesAcrossCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login/":
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc", Path: "/"})
			w.Write([]byte(`{}`))
		default:
			c, err := r.Cookie("sessionid")
			if assert.NoError(t, err) {
				assert.Equal(t, "abc", c.Value)
			}
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/login/"}, nil)
	require.NoError(t, err)
	_, err = c.Do(context.Background(), Request{Path: "/api/me/"}, nil)
	require.NoError(t, err)
}

func TestDo_CredentialsRejectionSkipsHandlers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	var calls atomic.Int32
	c := New(srv.URL, WithUnauthorizedHandler(UnauthorizedHandlerFunc(func(ctx context.Context, err *RequestError) {
		calls.Add(1)
	})))

	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/login/", Credentials: true}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "invalid credentials", err.Error())
	assert.Equal(t, int32(0), calls.Load())
}

func TestDo_TokenClearedMidFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var slowAuth, laterAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			slowAuth.Store(r.Header.Get("Authorization"))
			close(entered)
			<-release
			w.Write([]byte(`{"id":"1","name":"a"}`))
			return
		}
		laterAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var mu sync.Mutex
	token := "tok-123"
	c := New(srv.URL, WithTokenSource(TokenSourceFunc(func(ctx context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		return token, nil
	})))

	type outcome struct {
		res Result[item]
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := Send[item](context.Background(), c, Request{Path: "/slow"})
		done <- outcome{res, err}
	}()
	<-entered

	mu.Lock()
	token = ""
	mu.Unlock()

	// Calls started after the token is gone go out unauthenticated
	_, err := Send[[]item](context.Background(), c, Request{Path: "/projects"})
	require.NoError(t, err)
	assert.Equal(t, "", laterAuth.Load())

	close(release)
	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, item{ID: "1", Name: "a"}, out.res.Value)
	assert.Equal(t, "Bearer tok-123", slowAuth.Load())
}
