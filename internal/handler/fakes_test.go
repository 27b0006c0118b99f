package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/console"
	"github.com/noah-isme/campus-admin-console/internal/models"
	"github.com/noah-isme/campus-admin-console/internal/realtime"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/storage"
)

const testAdmin = "admin@campus.test"

type memStore[T console.Record, D any] struct {
	mu     sync.Mutex
	build  func(id string, d D) T
	rows   []T
	nextID int
	fail   map[string]error
}

func newMemStore[T console.Record, D any](build func(id string, d D) T) *memStore[T, D] {
	return &memStore[T, D]{build: build, fail: map[string]error{}}
}

func (m *memStore[T, D]) failOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

func (m *memStore[T, D]) List(context.Context, models.Order) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["list"]; err != nil {
		return nil, err
	}
	return append([]T(nil), m.rows...), nil
}

func (m *memStore[T, D]) Get(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.RecordID() == id {
			return r, nil
		}
	}
	var zero T
	return zero, sql.ErrNoRows
}

func (m *memStore[T, D]) Insert(_ context.Context, d D) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row := m.build(fmt.Sprintf("id-%d", m.nextID), d)
	m.rows = append([]T{row}, m.rows...)
	return row, nil
}

func (m *memStore[T, D]) InsertMany(ctx context.Context, drafts []D) ([]T, error) {
	out := make([]T, 0, len(drafts))
	for _, d := range drafts {
		row, _ := m.Insert(ctx, d)
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore[T, D]) Update(_ context.Context, id string, d D) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.RecordID() == id {
			m.rows[i] = m.build(id, d)
			return m.rows[i], nil
		}
	}
	var zero T
	return zero, sql.ErrNoRows
}

func (m *memStore[T, D]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.RecordID() == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore[T, D]) DeleteWhere(_ context.Context, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if !matchesColumn(r, column, value) {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func matchesColumn(row interface{}, column, value string) bool {
	switch r := row.(type) {
	case models.Participant:
		return column == "function_id" && r.FunctionID == value
	case models.ServiceMedia:
		return column == "service_id" && r.ServiceID == value
	}
	return false
}

func base(id string) models.Base { return models.Base{ID: id} }

// fakeAuth is both the identity provider and the token parser; tokens are "tok-<session id>".
type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]models.UserInfo
	passwords map[string]string
	next      int
	listeners []func(models.AuthEvent)
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users: map[string]models.UserInfo{
			testAdmin:             {ID: "u-admin", Email: testAdmin, FullName: "Admin"},
			"teacher@campus.test": {ID: "u-teacher", Email: "teacher@campus.test"},
		},
		passwords: map[string]string{testAdmin: "secret1", "teacher@campus.test": "pw"},
	}
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	if f.passwords[email] != password {
		f.mu.Unlock()
		return nil, appErrors.ErrInvalidCredentials
	}
	f.next++
	id := fmt.Sprintf("s%d", f.next)
	session := &models.Session{ID: id, AccessToken: "tok-" + id, User: f.users[email]}
	f.mu.Unlock()
	return session, nil
}

func (f *fakeAuth) SignOut(context.Context, string) error { return nil }
func (f *fakeAuth) GetSession(context.Context) (*models.Session, error) {
	return nil, nil
}

func (f *fakeAuth) OnAuthStateChange(listener func(models.AuthEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, listener)
	return func() {}
}

func (f *fakeAuth) UpdateUser(_ context.Context, _ string, update models.UserUpdate) (*models.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.users[testAdmin]
	if update.FullName != nil {
		info.FullName = *update.FullName
		info.NameChanged = true
	}
	f.users[testAdmin] = info
	return &info, nil
}

func (f *fakeAuth) ParseToken(token string) (*models.JWTClaims, error) {
	id, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "u-admin", RegisteredClaims: jwt.RegisteredClaims{ID: id}}, nil
}

type fakeSecurity struct {
	rows    map[string]models.SecuritySettings
	failErr error
}

func (f *fakeSecurity) GetSecurity(_ context.Context, userID string) (*models.SecuritySettings, error) {
	s, ok := f.rows[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSecurity) UpsertSecurity(_ context.Context, s *models.SecuritySettings) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.rows[s.UserID] = *s
	return nil
}

type fakeStats struct {
	stats models.DashboardStats
	err   error
}

func (f *fakeStats) DashboardStats(context.Context) (models.DashboardStats, error) {
	return f.stats, f.err
}

type fakeProber map[string]int

func (f fakeProber) Probe(_ context.Context, table string) (int, error) {
	n, ok := f[table]
	if !ok {
		return 0, errors.New(`relation "` + table + `" does not exist`)
	}
	return n, nil
}

type harness struct {
	router   *gin.Engine
	console  *console.Console
	hub      *realtime.Hub
	auth     *fakeAuth
	security *fakeSecurity
	stores   console.Stores
	mediaDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mediaDir := t.TempDir()
	objects, err := storage.NewLocalStorage(mediaDir, "http://console.test/media")
	require.NoError(t, err)

	auth := newFakeAuth()
	security := &fakeSecurity{rows: map[string]models.SecuritySettings{}}
	stores := console.Stores{
		Students: newMemStore(func(id string, d models.StudentDraft) models.Student {
			return models.Student{Base: base(id), Name: d.Name, Email: d.Email, StudentCode: d.StudentCode, Status: d.Status, EnrolledDate: d.EnrolledDate}
		}),
		Instructors: newMemStore(func(id string, d models.InstructorDraft) models.Instructor {
			return models.Instructor{Base: base(id), Name: d.Name, Email: d.Email}
		}),
		Staff: newMemStore(func(id string, d models.StaffDraft) models.Staff {
			return models.Staff{Base: base(id), Name: d.Name}
		}),
		Courses: newMemStore(func(id string, d models.CourseDraft) models.Course {
			return models.Course{Base: base(id), Title: d.Title, Status: d.Status, ImageURL: d.ImageURL}
		}),
		Classes: newMemStore(func(id string, d models.ClassDraft) models.Class {
			return models.Class{Base: base(id), Name: d.Name}
		}),
		Gallery: newMemStore(func(id string, d models.GalleryDraft) models.GalleryItem {
			return models.GalleryItem{Base: base(id), Title: d.Title, Type: d.Type, URL: d.URL}
		}),
		Announcements: newMemStore(func(id string, d models.AnnouncementDraft) models.Announcement {
			return models.Announcement{Base: base(id), Title: d.Title, Content: d.Content}
		}),
		KidsCamp: newMemStore(func(id string, d models.KidsCampDraft) models.KidsCamp {
			return models.KidsCamp{Base: base(id), Name: d.Name, Date: d.Date, Participants: d.Participants}
		}),
		Settings: newMemStore(func(id string, d models.SettingDraft) models.Setting {
			return models.Setting{Base: base(id), Key: d.Key, Value: d.Value}
		}),
		Functions: newMemStore(func(id string, d models.FunctionDraft) models.Function {
			return models.Function{Base: base(id), Name: d.Name, Date: d.Date}
		}),
		Participants: newMemStore(func(id string, d models.ParticipantDraft) models.Participant {
			return models.Participant{Base: base(id), FunctionID: d.FunctionID, Name: d.Name, Phone: d.Phone, Attended: d.Attended, PaidForPost: d.PaidForPost}
		}),
		SocialService: newMemStore(func(id string, d models.SocialServiceDraft) models.SocialService {
			return models.SocialService{Base: base(id), Name: d.Name, Date: d.Date}
		}),
		ServiceMedia: newMemStore(func(id string, d models.ServiceMediaDraft) models.ServiceMedia {
			return models.ServiceMedia{Base: base(id), ServiceID: d.ServiceID, URL: d.URL, Type: d.Type}
		}),
		Security: security,
		Stats:    &fakeStats{stats: models.DashboardStats{TotalStudents: 3, TotalCourses: 2}},
		Prober:   fakeProber{"students": 3, "courses": 2},
	}

	c, err := console.New(console.Options{
		Auth:       auth,
		AdminEmail: testAdmin,
		Stores:     stores,
		Objects:    objects,
	})
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(c.Close)

	hub := realtime.NewHub(realtime.HubConfig{})
	hub.Start(context.Background())
	t.Cleanup(hub.Stop)

	router := NewRouter(RouterConfig{
		Console:   c,
		Tokens:    auth,
		Events:    hub,
		APIPrefix: "/api/v1",
		MediaDir:  mediaDir,
	})
	return &harness{router: router, console: c, hub: hub, auth: auth, security: security, stores: stores, mediaDir: mediaDir}
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.serve(t, req)
}

func (h *harness) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (h *harness) login(t *testing.T) string {
	t.Helper()
	rec, env := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": testAdmin, "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session models.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.AccessToken
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
