package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/middleware"
	"github.com/yourusername/mindquest/internal/repository/memory"
	"github.com/yourusername/mindquest/internal/seed"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/internal/web"
	"github.com/yourusername/mindquest/pkg/auth"
	"github.com/yourusername/mindquest/pkg/auth/manager"
)

const testSecret = "test-session-secret-that-is-long-enough-123"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	store  *memory.Store
	health map[string]HealthCheck
}

func newTestApp(t *testing.T, authLimit int) *testApp {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	_, err := service.NewSeedService(store, seed.Fixtures).ResetAndPopulate(ctx)
	require.NoError(t, err)

	cache := memory.NewCacheRepo()
	jwtService, err := auth.NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)
	sessions, err := manager.NewSessionManager(jwtService, cache)
	require.NoError(t, err)

	authService, err := service.NewAuthService(memory.NewUserRepo(), nil, bcrypt.MinCost)
	require.NoError(t, err)
	quizService := service.NewQuizService(store)

	health := map[string]HealthCheck{"cache": cache.Ping}

	tmpl, err := web.Templates()
	require.NoError(t, err)
	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	RegisterRoutes(router, RouterDeps{
		Quiz:        NewQuizHandler(quizService, sessions),
		Auth:        NewAuthHandler(authService, sessions),
		API:         NewAPIHandler(quizService, health),
		Middleware:  middleware.NewAuthMiddleware(sessions),
		RateLimiter: middleware.NewRateLimiter(cache),
		AuthLimit:   middleware.StrictAuthRateLimitConfig(authLimit, time.Minute),
	})

	return &testApp{router: router, store: store, health: health}
}

// browser хранит cookie между запросами, как это делает браузер
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrfToken возвращает токен для текущего CSRF-секрета, при необходимости открыв страницу
func (b *browser) csrfToken() string {
	if _, ok := b.cookies[manager.CSRFSecretCookie]; !ok {
		b.get("/")
	}
	secret, ok := b.cookies[manager.CSRFSecretCookie]
	require.True(b.t, ok, "csrf cookie not set")
	return manager.HashCSRFSecret(secret.Value)
}

func (b *browser) post(path string, values url.Values) *httptest.ResponseRecorder {
	if values == nil {
		values = url.Values{}
	}
	if values.Get(manager.CSRFFormField) == "" {
		values.Set(manager.CSRFFormField, b.csrfToken())
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) register(username, password string) *httptest.ResponseRecorder {
	return b.post("/accounts/register/", url.Values{
		"username":  {username},
		"password1": {password},
		"password2": {password},
	})
}

func (a *testApp) generalKnowledge(t *testing.T) *entity.Quiz {
	t.Helper()
	quiz, err := a.store.Quizzes().GetWithQuestions(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "General Knowledge", quiz.Title)
	return quiz
}

func correctAnswerID(t *testing.T, q entity.Question) string {
	t.Helper()
	for _, a := range q.Answers {
		if a.IsCorrect {
			return strconv.FormatUint(uint64(a.ID), 10)
		}
	}
	t.Fatalf("question %d has no correct answer", q.ID)
	return ""
}

func TestQuizList_Anonymous(t *testing.T) {
	app := newTestApp(t, 100)
	rec := app.browser(t).get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "General Knowledge")
	assert.Contains(t, rec.Body.String(), "Science")
	assert.Contains(t, rec.Body.String(), `href="/accounts/login/"`)
}

func TestQuizDetail_RequiresLogin(t *testing.T) {
	app := newTestApp(t, 100)
	rec := app.browser(t).get("/quiz/1/")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/accounts/login/?next=%2Fquiz%2F1%2F", rec.Header().Get("Location"))
}

func TestSubmitQuiz_AnonymousIsRedirectedWithoutScoring(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	quiz := app.generalKnowledge(t)

	rec := b.post("/quiz/1/", url.Values{
		quiz.Questions[0].FieldName(): {correctAnswerID(t, quiz.Questions[0])},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/accounts/login/?next="))
	_, hasSession := b.cookies[manager.SessionCookie]
	assert.False(t, hasSession)
}

func TestSubmitQuiz_ThreeOfFiveWithTwoOmitted(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	quiz := app.generalKnowledge(t)

	rec := b.register("alice", "s3cret-pass")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	page := b.get("/quiz/1/")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "What is the capital of France?")
	assert.Contains(t, page.Body.String(), `name="`+quiz.Questions[0].FieldName()+`"`)
	assert.Contains(t, page.Body.String(), "Hello, alice")

	values := url.Values{}
	for _, q := range quiz.Questions[:3] {
		values.Set(q.FieldName(), correctAnswerID(t, q))
	}
	rec = b.post("/quiz/1/", values)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/quiz/1/", rec.Header().Get("Location"))

	page = b.get("/quiz/1/")
	assert.Contains(t, page.Body.String(), "You scored 3 out of 5 (60.00%)")

	// Уведомление показывается только один раз
	page = b.get("/quiz/1/")
	assert.NotContains(t, page.Body.String(), "You scored")
}

func TestSubmitQuiz_ResubmissionIsIndependent(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	quiz := app.generalKnowledge(t)
	require.Equal(t, http.StatusFound, b.register("alice", "s3cret-pass").Code)

	all := url.Values{}
	for _, q := range quiz.Questions {
		all.Set(q.FieldName(), correctAnswerID(t, q))
	}
	require.Equal(t, http.StatusSeeOther, b.post("/quiz/1/", all).Code)
	assert.Contains(t, b.get("/quiz/1/").Body.String(), "You scored 5 out of 5 (100.00%)")

	require.Equal(t, http.StatusSeeOther, b.post("/quiz/1/", url.Values{}).Code)
	assert.Contains(t, b.get("/quiz/1/").Body.String(), "You scored 0 out of 5 (0.00%)")
}

func TestSubmitQuiz_NotFound(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	quiz := app.generalKnowledge(t)
	require.Equal(t, http.StatusFound, b.register("alice", "s3cret-pass").Code)

	tests := []struct {
		name   string
		path   string
		values url.Values
	}{
		{name: "unknown answer", path: "/quiz/1/", values: url.Values{quiz.Questions[0].FieldName(): {"99999"}}},
		{name: "non numeric answer", path: "/quiz/1/", values: url.Values{quiz.Questions[0].FieldName(): {"paris"}}},
		{name: "unknown quiz", path: "/quiz/999/"},
		{name: "non numeric quiz id", path: "/quiz/abc/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.post(tt.path, tt.values)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}

	assert.Equal(t, http.StatusNotFound, b.get("/quiz/999/").Code)
	assert.NotContains(t, b.get("/quiz/1/").Body.String(), "You scored")
}

func TestSubmitQuiz_RejectsMissingCSRF(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	require.Equal(t, http.StatusFound, b.register("alice", "s3cret-pass").Code)

	rec := b.post("/quiz/1/", url.Values{manager.CSRFFormField: {"forged"}})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)

	rec := b.post("/accounts/register/", url.Values{
		"username":  {"alice"},
		"password1": {"12345678"},
		"password2": {"12345678"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This password is entirely numeric.")
	_, hasSession := b.cookies[manager.SessionCookie]
	assert.False(t, hasSession)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	password := strings.Repeat("p", 80)

	rec := b.post("/accounts/register/", url.Values{
		"username":  {"alice"},
		"password1": {password},
		"password2": {password},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This password is too long. It must contain at most 72 bytes.")
	_, hasSession := b.cookies[manager.SessionCookie]
	assert.False(t, hasSession)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	app := newTestApp(t, 100)
	require.Equal(t, http.StatusFound, app.browser(t).register("alice", "s3cret-pass").Code)

	rec := app.browser(t).register("alice", "another-pass")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, 100)
	require.Equal(t, http.StatusFound, app.browser(t).register("alice", "s3cret-pass").Code)

	tests := []struct {
		name         string
		username     string
		password     string
		next         string
		wantCode     int
		wantLocation string
	}{
		{name: "success", username: "alice", password: "s3cret-pass", wantCode: http.StatusFound, wantLocation: "/"},
		{name: "local next", username: "alice", password: "s3cret-pass", next: "/quiz/2/", wantCode: http.StatusFound, wantLocation: "/quiz/2/"},
		{name: "external next", username: "alice", password: "s3cret-pass", next: "https://evil.example/", wantCode: http.StatusFound, wantLocation: "/"},
		{name: "protocol relative next", username: "alice", password: "s3cret-pass", next: "//evil.example/", wantCode: http.StatusFound, wantLocation: "/"},
		{name: "wrong password", username: "alice", password: "wrong-pass", wantCode: http.StatusOK},
		{name: "unknown user", username: "bob", password: "s3cret-pass", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := app.browser(t)
			rec := b.post("/accounts/login/", url.Values{
				"username": {tt.username},
				"password": {tt.password},
				"next":     {tt.next},
			})

			assert.Equal(t, tt.wantCode, rec.Code)
			_, hasSession := b.cookies[manager.SessionCookie]
			if tt.wantCode == http.StatusFound {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				assert.True(t, hasSession)
			} else {
				assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")
				assert.False(t, hasSession)
			}
		})
	}
}

func TestLoginPage_KeepsNext(t *testing.T) {
	app := newTestApp(t, 100)
	rec := app.browser(t).get("/accounts/login/?next=%2Fquiz%2F1%2F")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/quiz/1/"`)
}

func TestLogout_RevokesSession(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	require.Equal(t, http.StatusFound, b.register("alice", "s3cret-pass").Code)
	oldSession := b.cookies[manager.SessionCookie]
	require.NotNil(t, oldSession)

	rec := b.post("/accounts/logout/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	_, hasSession := b.cookies[manager.SessionCookie]
	assert.False(t, hasSession)

	// Старый токен больше не принимается, даже если клиент сохранил cookie
	b.cookies[manager.SessionCookie] = oldSession
	assert.Equal(t, http.StatusFound, b.get("/quiz/1/").Code)
}

func TestLogin_RateLimited(t *testing.T) {
	app := newTestApp(t, 2)
	b := app.browser(t)
	values := func() url.Values {
		return url.Values{"username": {"bob"}, "password": {"wrong-pass"}}
	}

	assert.Equal(t, http.StatusOK, b.post("/accounts/login/", values()).Code)
	assert.Equal(t, http.StatusOK, b.post("/accounts/login/", values()).Code)
	assert.Equal(t, http.StatusTooManyRequests, b.post("/accounts/login/", values()).Code)
}

func TestAPI_Quizzes(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	quiz := app.generalKnowledge(t)

	rec := b.get("/api/quizzes")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Quizzes []struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
		} `json:"quizzes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Quizzes, 2)
	assert.Equal(t, "General Knowledge", list.Quizzes[0].Title)

	assert.Equal(t, http.StatusUnauthorized, b.get("/api/quizzes/1").Code)

	require.Equal(t, http.StatusFound, b.register("alice", "s3cret-pass").Code)
	rec = b.get("/api/quizzes/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct")
	assert.Contains(t, rec.Body.String(), `"field":"`+quiz.Questions[0].FieldName()+`"`)

	assert.Equal(t, http.StatusNotFound, b.get("/api/quizzes/999").Code)
}

func TestAPI_Submit(t *testing.T) {
	app := newTestApp(t, 100)
	b := app.browser(t)
	quiz := app.generalKnowledge(t)
	require.Equal(t, http.StatusFound, b.register("alice", "s3cret-pass").Code)

	tokenRec := b.get("/api/csrf")
	require.Equal(t, http.StatusOK, tokenRec.Code)
	var token struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &token))

	answers := map[string]uint{}
	for _, q := range quiz.Questions[:3] {
		id, err := strconv.ParseUint(correctAnswerID(t, q), 10, 64)
		require.NoError(t, err)
		answers[strconv.FormatUint(uint64(q.ID), 10)] = uint(id)
	}
	body, err := json.Marshal(map[string]interface{}{"answers": answers})
	require.NoError(t, err)

	submit := func(token string, payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/quizzes/1/submit", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(manager.CSRFHeader, token)
		return b.do(req)
	}

	rec := submit(token.CSRFToken, string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Score      int     `json:"score"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"`
		Message    string  `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 5, result.Total)
	assert.InDelta(t, 60.0, result.Percentage, 0.001)
	assert.Equal(t, "You scored 3 out of 5 (60.00%)", result.Message)

	assert.Equal(t, http.StatusForbidden, submit("", string(body)).Code)
	assert.Equal(t, http.StatusBadRequest, submit(token.CSRFToken, "{not json").Code)
	assert.Equal(t, http.StatusNotFound, submit(token.CSRFToken, `{"answers":{"1":99999}}`).Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, 100)
	rec := app.browser(t).get("/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"cache":"ok"}}`, rec.Body.String())
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/quiz/1/":             "/quiz/1/",
		"/?page=2":             "/?page=2",
		"quiz/1/":              "/",
		"//evil.example":       "/",
		`/\evil.example`:       "/",
		"https://evil.example": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirect(in), in)
	}
}
