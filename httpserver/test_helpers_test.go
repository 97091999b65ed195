package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"mowitajm/auth"
	"mowitajm/httpserver"
	"mowitajm/movie"
	"mowitajm/pkg/config"
	"mowitajm/pkg/jwt"
	"mowitajm/review"
	"mowitajm/user"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testJWTSecret
	cfg.Auth.TokenTTL = 60
	cfg.Auth.RefreshTTL = 120
	return cfg
}

func signTestToken(t testing.TB, u user.User) string {
	t.Helper()
	token, err := jwt.NewJWTProvider(testJWTSecret, time.Hour, time.Hour).GenerateAccessToken(u)
	require.NoError(t, err)
	return token
}

type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) GetMovieDetails(ctx context.Context, imdbID string) (movie.Details, error) {
	args := m.Called(ctx, imdbID)
	return args.Get(0).(movie.Details), args.Error(1)
}

func (m *MockMovieService) Search(ctx context.Context, query string, page int) (movie.SearchResult, error) {
	args := m.Called(ctx, query, page)
	return args.Get(0).(movie.SearchResult), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) AddReview(ctx context.Context, r review.Review) (review.Review, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(review.Review), args.Error(1)
}

func (m *MockReviewService) ListByMovie(ctx context.Context, imdbID string) ([]review.Review, error) {
	args := m.Called(ctx, imdbID)
	return args.Get(0).([]review.Review), args.Error(1)
}

func (m *MockReviewService) ListByUser(ctx context.Context, userID string) ([]review.Review, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]review.Review), args.Error(1)
}

func (m *MockReviewService) ListForModeration(ctx context.Context, rating int) ([]review.Review, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).([]review.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, actor review.Actor, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, displayName, email, password string) (user.User, error) {
	args := m.Called(ctx, displayName, email, password)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) SetRole(ctx context.Context, email string, role user.Role) error {
	args := m.Called(ctx, email, role)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, displayName, email, password string) (auth.TokenPair, error) {
	args := m.Called(ctx, displayName, email, password)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) GoogleAuthURL(state string) (string, error) {
	args := m.Called(state)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, code string) (auth.TokenPair, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

// stubResolver knows a fixed set of users by id.
type stubResolver map[string]user.Context

func (r stubResolver) Resolve(_ context.Context, p user.Principal) user.Context {
	return r[p.UserID]
}

var (
	arvid = user.User{ID: "u-1", DisplayName: "Arvid", Email: "arvid@mail.com", Role: user.RoleUser}
	admin = user.User{ID: "u-admin", DisplayName: "Admin", Email: "admin@mail.com", Role: user.RoleAdmin}
)

type testServer struct {
	*httpserver.Server
	Movies  *MockMovieService
	Reviews *MockReviewService
	Users   *MockUserService
	Auth    *MockAuthService
}

func newTestServer(t testing.TB) *testServer {
	t.Helper()
	ts := &testServer{
		Server:  httpserver.Default(testConfig()),
		Movies:  new(MockMovieService),
		Reviews: new(MockReviewService),
		Users:   new(MockUserService),
		Auth:    new(MockAuthService),
	}
	ts.MovieService = ts.Movies
	ts.ReviewService = ts.Reviews
	ts.UserService = ts.Users
	ts.AuthService = ts.Auth
	ts.Identity = stubResolver{
		arvid.ID: {DisplayName: arvid.DisplayName},
		admin.ID: {DisplayName: admin.DisplayName, IsAdmin: true},
	}
	return ts
}

type requestOption func(*http.Request)

func asUser(t testing.TB, u user.User) requestOption {
	token := signTestToken(t, u)
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: httpserver.SessionCookie, Value: token})
	}
}

func withBearer(t testing.TB, u user.User) requestOption {
	token := signTestToken(t, u)
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func (ts *testServer) do(method, target string, body io.Reader, opts ...requestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	return ts.do(method, target, strings.NewReader(body), append(opts, func(r *http.Request) {
		r.Header.Set("Content-Type", "application/json")
	})...)
}

func (ts *testServer) postForm(target string, form url.Values, opts ...requestOption) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, target, strings.NewReader(form.Encode()), append(opts, func(r *http.Request) {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	})...)
}

func decodeAPIResponse(t testing.TB, rec *httptest.ResponseRecorder) httpserver.APIResponse {
	t.Helper()
	var resp httpserver.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
