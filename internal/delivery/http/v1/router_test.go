package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-intake-backend/config"
	v1 "go-intake-backend/internal/delivery/http/v1"
	"go-intake-backend/internal/domain"
	"go-intake-backend/internal/usecase"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unimplemented methods panic through the nil embedded interface
type fakeIdentityUC struct {
	domain.IdentityUsecase
	registerErr       error
	authenticateCalls int
}

func (f *fakeIdentityUC) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	f.authenticateCalls++
	return nil, apperror.Unauthorized("Invalid email or password")
}

func (f *fakeIdentityUC) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Identity, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.Identity{ID: uuid.NewString(), Email: req.Email, IsActive: true}, nil
}

func (f *fakeIdentityUC) GetCurrentIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	return domain.IdentityFromContext(ctx), nil
}

type fakePostUC struct {
	created []domain.Post
}

func (f *fakePostUC) CreatePost(ctx context.Context, input domain.PostInput) (*domain.Post, error) {
	author := domain.IdentityFromContext(ctx)
	post := domain.Post{AuthorID: author.ID, Title: input.Title, Description: input.Description}
	f.created = append(f.created, post)
	return &post, nil
}

func (f *fakePostUC) ListPosts(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	return f.created, nil
}

type fakeCandidateUC struct {
	domain.CandidateUsecase
	attachErr error
}

func (f *fakeCandidateUC) GetCandidate(ctx context.Context, identityID string) (*domain.CandidateDetail, error) {
	return nil, apperror.NotFound("Candidate record not found")
}

func (f *fakeCandidateUC) AttachPersonalInformation(ctx context.Context, identityID string, input domain.PersonalInformationInput) (*domain.CandidateDetail, error) {
	return nil, f.attachErr
}

type identityMap map[string]*domain.Identity

func (m identityMap) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	if identity, ok := m[id]; ok {
		return identity, nil
	}
	return nil, apperror.NotFound("Identity not found")
}

type testServer struct {
	router     *gin.Engine
	tokens     *auth.TokenManager
	identities identityMap
	identityUC *fakeIdentityUC
	posts      *fakePostUC
	candidates *fakeCandidateUC
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		tokens:     auth.NewTokenManager("test-secret-test-secret-test-secret", time.Hour),
		identities: identityMap{},
		identityUC: &fakeIdentityUC{},
		posts:      &fakePostUC{},
		candidates: &fakeCandidateUC{},
	}
	s.router = v1.NewRouter(v1.RouterDeps{
		IdentityUC:  s.identityUC,
		CandidateUC: s.candidates,
		PostUC:      s.posts,
		HealthUC:    usecase.NewHealthUsecase(nil, nil),
		Identities:  s.identities,
		Tokens:      s.tokens,
		Config: &config.Config{
			GinMode:                  gin.TestMode,
			RateLimitWindowSeconds:   60,
			RateLimitGlobalThreshold: 100000,
			RateLimitLoginThreshold:  100000,
			MaxUploadBytes:           1 << 20,
		},
	})
	return s
}

func (s *testServer) login(t *testing.T, identity *domain.Identity) string {
	t.Helper()
	s.identities[identity.ID] = identity
	token, err := s.tokens.Issue(uuid.MustParse(identity.ID), identity.Email)
	require.NoError(t, err)
	return token
}

// do sends a request carrying the session cookie and a matching CSRF pair
func (s *testServer) do(method, path, token string, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "csrf-test"})
	req.Header.Set("X-CSRF-Token", "csrf-test")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

const formType = "application/x-www-form-urlencoded"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPostPages(t *testing.T) {
	form := url.Values{"title": {"Hello"}, "description": {"First"}}.Encode()

	t.Run("Anonymous visitors are redirected to login and nothing is created", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(http.MethodGet, "/posts/new", "", "", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next=%2Fposts%2Fnew", w.Header().Get("Location"))

		w = s.do(http.MethodPost, "/posts/new", "", form, formType)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Empty(t, s.posts.created)
	})

	t.Run("Identities without the capability get 403", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, &domain.Identity{ID: uuid.NewString(), IsActive: true})

		w := s.do(http.MethodPost, "/posts/new", token, form, formType)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, s.posts.created)
	})

	t.Run("Capable identities create posts as themselves", func(t *testing.T) {
		s := newTestServer(t)
		author := &domain.Identity{ID: uuid.NewString(), IsActive: true, Capabilities: []domain.Capability{domain.CapabilityCreatePost}}
		token := s.login(t, author)

		w := s.do(http.MethodPost, "/posts/new", token, form+"&author_id=someone-else", formType)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/home", w.Header().Get("Location"))
		require.Len(t, s.posts.created, 1)
		assert.Equal(t, author.ID, s.posts.created[0].AuthorID)
	})

	t.Run("Mutations without the CSRF token are refused", func(t *testing.T) {
		s := newTestServer(t)
		author := &domain.Identity{ID: uuid.NewString(), IsActive: true, IsSuperuser: true}
		token := s.login(t, author)

		req := httptest.NewRequest(http.MethodPost, "/posts/new", strings.NewReader(form))
		req.Header.Set("Content-Type", formType)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, s.posts.created)
	})
}

func TestLoginPage(t *testing.T) {
	t.Run("Wrong credentials redisplay the form with 401", func(t *testing.T) {
		s := newTestServer(t)
		form := url.Values{"email": {"a@example.com"}, "password": {"nope-nope"}}.Encode()

		w := s.do(http.MethodPost, "/login", "", form, formType)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 1, s.identityUC.authenticateCalls)
	})

	t.Run("Unparseable submissions are refused before authenticating", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(http.MethodPost, "/login", "", "{not json", "application/json")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, 0, s.identityUC.authenticateCalls)

		var page struct {
			Data struct {
				Errors map[string]string `json:"errors"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, "Invalid form submission", page.Data.Errors["form"])
	})
}

func TestSignupPage(t *testing.T) {
	form := url.Values{"email": {"a@example.com"}, "password1": {"long-password"}, "password2": {"long-password"}}.Encode()

	t.Run("Success sets the session cookie and redirects home", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/signup", "", form, formType)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/home", w.Header().Get("Location"))
		assert.Contains(t, strings.Join(w.Header().Values("Set-Cookie"), ";"), auth.CookieName+"=")
	})

	t.Run("Validation failures redisplay the form with field errors", func(t *testing.T) {
		s := newTestServer(t)
		s.identityUC.registerErr = apperror.Conflict("email", "An account with this email already exists")

		w := s.do(http.MethodPost, "/signup", "", form, formType)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var page struct {
			Data struct {
				Name   string            `json:"name"`
				Values map[string]string `json:"values"`
				Errors map[string]string `json:"errors"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, "signup", page.Data.Name)
		assert.Equal(t, "a@example.com", page.Data.Values["email"])
		assert.Equal(t, "An account with this email already exists", page.Data.Errors["email"])
	})
}

func TestAPIAuth(t *testing.T) {
	t.Run("Anonymous API calls get 401 JSON", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodGet, "/v1/me", "", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, decode(t, w).Success)
	})

	t.Run("Forged tokens are treated as anonymous", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodGet, "/v1/me", "not-a-token", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Temporary passwords only reach the allowed routes", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, &domain.Identity{ID: uuid.NewString(), IsActive: true, MustResetPassword: true})

		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/me", token, "", "").Code)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/home", token, "", "").Code)
	})
}

func TestErrorEnvelopeCarriesFields(t *testing.T) {
	s := newTestServer(t)
	s.candidates.attachErr = apperror.Validation("Please correct the highlighted fields", map[string]string{
		"present_address.postal_code": "Postal code must be exactly 5 digits",
	})
	token := s.login(t, &domain.Identity{ID: uuid.NewString(), IsActive: true})

	w := s.do(http.MethodPut, "/v1/candidates/me/personal-information", token, `{"name":"x"}`, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Postal code must be exactly 5 digits", decode(t, w).Error.Fields["present_address.postal_code"])

	w = s.do(http.MethodPut, "/v1/candidates/me/personal-information", token, `{not json`, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
