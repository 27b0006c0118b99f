package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

const adminEmail = "thuvask001@gmail.com"

type fakeProvider struct {
	mu        sync.Mutex
	passwords map[string]string
	users     map[string]models.UserInfo
	current   *models.Session
	getErr    error
	signedOut []string
	updates   []models.UserUpdate
	listeners map[int]func(models.AuthEvent)
	nextID    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		passwords: map[string]string{adminEmail: "secret1", "intruder@example.com": "pw"},
		users: map[string]models.UserInfo{
			adminEmail:             {ID: "u-admin", Email: adminEmail, FullName: "Admin"},
			"intruder@example.com": {ID: "u-other", Email: "intruder@example.com"},
		},
		listeners: map[int]func(models.AuthEvent){},
	}
}

func (f *fakeProvider) emit(ev models.AuthEvent) {
	f.mu.Lock()
	ls := make([]func(models.AuthEvent), 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	key := strings.ToLower(email)
	if f.passwords[key] != password {
		f.mu.Unlock()
		return nil, errors.New("invalid login credentials")
	}
	f.nextID++
	s := &models.Session{
		ID:          "sess-" + string(rune('0'+f.nextID)),
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        f.users[key],
	}
	f.mu.Unlock()
	f.emit(models.AuthEvent{Type: models.AuthSignedIn, Session: s})
	return s, nil
}

func (f *fakeProvider) SignOut(_ context.Context, sessionID string) error {
	f.mu.Lock()
	f.signedOut = append(f.signedOut, sessionID)
	f.mu.Unlock()
	f.emit(models.AuthEvent{Type: models.AuthSignedOut, Session: &models.Session{ID: sessionID}})
	return nil
}

func (f *fakeProvider) GetSession(context.Context) (*models.Session, error) {
	return f.current, f.getErr
}

func (f *fakeProvider) OnAuthStateChange(l func(models.AuthEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := len(f.listeners) + 1
	f.listeners[id] = l
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeProvider) UpdateUser(_ context.Context, _ string, u models.UserUpdate) (*models.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	info := f.users[adminEmail]
	if u.FullName != nil {
		info.FullName = *u.FullName
		info.NameChanged = true
	}
	if u.Password != nil {
		f.passwords[adminEmail] = *u.Password
	}
	f.users[adminEmail] = info
	return &info, nil
}

func TestLoginAdmitsAdminCaseInsensitive(t *testing.T) {
	provider := newFakeProvider()
	gate := NewSessionGate(provider, adminEmail, nil)
	gate.Load(context.Background())
	defer gate.Close()

	session, err := gate.Login(context.Background(), "THUVASK001@gmail.com", "secret1")
	require.NoError(t, err)
	assert.True(t, gate.IsAuthenticated())
	assert.True(t, gate.Authorize(session.ID))
	assert.False(t, gate.Authorize("someone-else"))
	assert.Equal(t, "u-admin", gate.User().ID)
}

func TestLoginRejectsNonAdminAndSignsOut(t *testing.T) {
	provider := newFakeProvider()
	gate := NewSessionGate(provider, adminEmail, nil)
	gate.Load(context.Background())

	session, err := gate.Login(context.Background(), "intruder@example.com", "pw")
	assert.Nil(t, session)
	assert.ErrorIs(t, err, appErrors.ErrNotAdmin)
	assert.Equal(t, "Only the admin can log in.", err.(*appErrors.Error).Message)
	assert.Len(t, provider.signedOut, 1)
	assert.False(t, gate.IsAuthenticated())
	assert.Nil(t, gate.Session())
}

func TestLoginBadPasswordHidesDetail(t *testing.T) {
	gate := NewSessionGate(newFakeProvider(), adminEmail, nil)
	_, err := gate.Login(context.Background(), adminEmail, "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.NotContains(t, err.Error(), "credentials")
	assert.False(t, gate.IsAuthenticated())
}

func TestLoadRestoresOnlyAdminSession(t *testing.T) {
	provider := newFakeProvider()
	provider.current = &models.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour), User: provider.users["intruder@example.com"]}
	gate := NewSessionGate(provider, adminEmail, nil)
	gate.Load(context.Background())
	assert.False(t, gate.IsAuthenticated())

	provider.current = nil
	provider.getErr = errors.New("network down")
	gate.Load(context.Background())
	assert.False(t, gate.IsAuthenticated())

	provider.getErr = nil
	provider.current = &models.Session{ID: "s2", ExpiresAt: time.Now().Add(time.Hour), User: provider.users[adminEmail]}
	gate.Load(context.Background())
	assert.True(t, gate.Authorize("s2"))
}

func TestExpiredSessionIsNotAuthenticated(t *testing.T) {
	provider := newFakeProvider()
	provider.current = &models.Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Minute), User: provider.users[adminEmail]}
	gate := NewSessionGate(provider, adminEmail, nil)
	gate.Load(context.Background())
	assert.False(t, gate.IsAuthenticated())
}

func TestSignedOutEventClearsMatchingSessionOnly(t *testing.T) {
	provider := newFakeProvider()
	gate := NewSessionGate(provider, adminEmail, nil)
	gate.Load(context.Background())
	session, err := gate.Login(context.Background(), adminEmail, "secret1")
	require.NoError(t, err)

	provider.emit(models.AuthEvent{Type: models.AuthSignedOut, Session: &models.Session{ID: "other"}})
	assert.True(t, gate.IsAuthenticated())

	provider.emit(models.AuthEvent{Type: models.AuthSignedOut, Session: &models.Session{ID: session.ID}})
	assert.False(t, gate.IsAuthenticated())

	gate.Close()
	assert.Empty(t, provider.listeners)
}

func TestLogoutClearsSession(t *testing.T) {
	provider := newFakeProvider()
	gate := NewSessionGate(provider, adminEmail, nil)
	_, err := gate.Login(context.Background(), adminEmail, "secret1")
	require.NoError(t, err)

	require.NoError(t, gate.Logout(context.Background()))
	assert.False(t, gate.IsAuthenticated())
	assert.Len(t, provider.signedOut, 1)
	require.NoError(t, gate.Logout(context.Background()))
	assert.Len(t, provider.signedOut, 1)
}

func TestUpdateProfileRules(t *testing.T) {
	provider := newFakeProvider()
	gate := NewSessionGate(provider, adminEmail, nil)
	gate.Load(context.Background())
	ctx := context.Background()

	_, err := gate.UpdateProfile(ctx, models.ProfileUpdate{FullName: "New"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = gate.Login(ctx, adminEmail, "secret1")
	require.NoError(t, err)

	_, err = gate.UpdateProfile(ctx, models.ProfileUpdate{FullName: "A"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = gate.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: "abc"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = gate.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: "longer-secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Current password is required")

	_, err = gate.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: "longer-secret", CurrentPassword: "nope"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = gate.UpdateProfile(ctx, models.ProfileUpdate{Email: "someone@example.com", CurrentPassword: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	info, err := gate.UpdateProfile(ctx, models.ProfileUpdate{FullName: "Thuvarakan", NewPassword: "longer-secret", CurrentPassword: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Thuvarakan", info.FullName)
	assert.True(t, info.NameChanged)
	assert.True(t, gate.IsAuthenticated())
	assert.Equal(t, "Thuvarakan", gate.User().FullName)

	_, err = gate.UpdateProfile(ctx, models.ProfileUpdate{FullName: "Another Name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only be changed once")
}
