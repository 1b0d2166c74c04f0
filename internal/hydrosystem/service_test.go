// ABOUTME: Tests for system registration, the link flow, and unregistration
// ABOUTME: Uses a deterministic random source to pin part numbers and codes

package hydrosystem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
	"github.com/hydroponics-system/hydro-api-microservice/internal/store"
	"github.com/hydroponics-system/hydro-api-microservice/internal/subscription"
)

type fakeDirectory struct {
	systems map[int]*dictionary.HydroSystem
	hashes  map[int]string
	nextID  int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		systems: make(map[int]*dictionary.HydroSystem),
		hashes:  make(map[int]string),
		nextID:  1,
	}
}

func (f *fakeDirectory) CreateSystem(_ context.Context, system *dictionary.HydroSystem, hash string) error {
	system.ID = f.nextID
	f.nextID++
	f.systems[system.ID] = system
	f.hashes[system.ID] = hash
	return nil
}

func (f *fakeDirectory) GetSystemByID(_ context.Context, id int) (*dictionary.HydroSystem, error) {
	if s, ok := f.systems[id]; ok {
		return s, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeDirectory) GetSystemByUUID(_ context.Context, uuid string) (*dictionary.HydroSystem, error) {
	for _, s := range f.systems {
		if s.UUID == uuid {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeDirectory) NextSystemID(_ context.Context) (int, error) {
	return f.nextID, nil
}

func (f *fakeDirectory) AssignUserToSystem(_ context.Context, userID, systemID int) error {
	s, ok := f.systems[systemID]
	if !ok {
		return store.ErrNotFound
	}
	s.OwnerUserID = userID
	return nil
}

func (f *fakeDirectory) UnregisterSystem(_ context.Context, id int) error {
	if _, ok := f.systems[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.systems, id)
	return nil
}

type fakeNotifier struct {
	sent    []subscription.Body
	targets []subscription.Target
}

func (f *fakeNotifier) Send(body subscription.Body, _ subscription.NotificationAction, target subscription.Target) error {
	f.sent = append(f.sent, body)
	f.targets = append(f.targets, target)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeDirectory, *fakeNotifier) {
	t.Helper()
	dir := newFakeDirectory()
	notifier := &fakeNotifier{}
	svc := NewService(dir, notifier, dictionary.EnvironmentTest, nil)
	svc.randInt = func(n int) int { return 42 }
	return svc, dir, notifier
}

func userCtx(id int, role dictionary.WebRole) context.Context {
	return auth.WithPrincipal(context.Background(),
		auth.UserPrincipal{User: dictionary.User{ID: id, WebRole: role}})
}

func systemCtx(system dictionary.HydroSystem) context.Context {
	return auth.WithPrincipal(context.Background(),
		auth.SystemPrincipal{System: system})
}

func TestRegister(t *testing.T) {
	svc, dir, _ := newTestService(t)

	system, err := svc.Register(context.Background(), "greenhouse-1", "device secret")
	require.NoError(t, err)

	assert.Equal(t, 1, system.ID)
	assert.NotEmpty(t, system.UUID)
	assert.Equal(t, dictionary.PartNumber("000042TEST000001"), system.PartNumber)
	assert.Equal(t, "greenhouse-1", system.Name)
	assert.Zero(t, system.OwnerUserID, "fresh systems have no owner")

	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(dir.hashes[system.ID]), []byte("device secret")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "", "pw")
	require.Error(t, err)

	_, err = svc.Register(context.Background(), "name", "")
	require.Error(t, err)
}

func TestUnregisterPolicy(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func(owned *dictionary.HydroSystem) context.Context
		wantErr bool
	}{
		{"owner can unregister", func(s *dictionary.HydroSystem) context.Context {
			return userCtx(s.OwnerUserID, dictionary.WebRoleUser)
		}, false},
		{"admin can unregister", func(s *dictionary.HydroSystem) context.Context {
			return userCtx(999, dictionary.WebRoleAdmin)
		}, false},
		{"other user rejected", func(s *dictionary.HydroSystem) context.Context {
			return userCtx(999, dictionary.WebRoleUser)
		}, true},
		{"developer rejected", func(s *dictionary.HydroSystem) context.Context {
			return userCtx(999, dictionary.WebRoleDeveloper)
		}, true},
		{"unauthenticated rejected", func(s *dictionary.HydroSystem) context.Context {
			return context.Background()
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir, _ := newTestService(t)
			system, err := svc.Register(context.Background(), "greenhouse-1", "pw")
			require.NoError(t, err)
			require.NoError(t, dir.AssignUserToSystem(context.Background(), 10, system.ID))

			err = svc.Unregister(tt.ctx(system), system.ID)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
				_, stillThere := dir.systems[system.ID]
				assert.True(t, stillThere)
			} else {
				assert.NoError(t, err)
				_, stillThere := dir.systems[system.ID]
				assert.False(t, stillThere)
			}
		})
	}
}

func TestRequestLink(t *testing.T) {
	svc, _, notifier := newTestService(t)
	system, err := svc.Register(context.Background(), "greenhouse-1", "pw")
	require.NoError(t, err)

	code, err := svc.RequestLink(userCtx(10, dictionary.WebRoleUser), system.UUID)
	require.NoError(t, err)
	assert.Equal(t, "000042", code)

	require.Len(t, notifier.sent, 1)
	body, ok := notifier.sent[0].(subscription.SystemLinkNotification)
	require.True(t, ok)
	assert.Equal(t, system.UUID, body.UUID)
	assert.Equal(t, code, body.Code)
	assert.Equal(t, 10, body.UserID)
}

func TestRequestLinkRequiresUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	system, err := svc.Register(context.Background(), "greenhouse-1", "pw")
	require.NoError(t, err)

	_, err = svc.RequestLink(context.Background(), system.UUID)
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)

	_, err = svc.RequestLink(systemCtx(*system), system.UUID)
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}

func TestRequestLinkUnknownSystem(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RequestLink(userCtx(10, dictionary.WebRoleUser), "no-such-uuid")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAcknowledgeLink(t *testing.T) {
	svc, dir, _ := newTestService(t)
	system, err := svc.Register(context.Background(), "greenhouse-1", "pw")
	require.NoError(t, err)

	err = svc.AcknowledgeLink(systemCtx(*system), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, dir.systems[system.ID].OwnerUserID)

	err = svc.AcknowledgeLink(userCtx(10, dictionary.WebRoleUser), 10)
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}

func TestReportFailure(t *testing.T) {
	svc, _, notifier := newTestService(t)
	system, err := svc.Register(context.Background(), "greenhouse-1", "pw")
	require.NoError(t, err)

	err = svc.ReportFailure(systemCtx(*system), "pump offline")
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	body, ok := notifier.sent[0].(subscription.SystemFailureNotification)
	require.True(t, ok)
	assert.Equal(t, "pump offline", body.Message)

	err = svc.ReportFailure(userCtx(1, dictionary.WebRoleUser), "nope")
	assert.ErrorIs(t, err, auth.ErrInsufficientPermissions)
}
