package usersvc

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/hash"
)

type mockRepo struct {
	insertFn func(ctx context.Context, u *model.User) error
	byIDFn   func(ctx context.Context, id int64) (*model.User, error)
	updateFn func(ctx context.Context, u *model.User) error
	updated  *model.User
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Insert(ctx context.Context, u *model.User) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, u)
	}
	u.ID = 11
	return nil
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn != nil {
		return m.byIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }
func (m *mockRepo) Update(ctx context.Context, u *model.User) error {
	m.updated = u
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return nil
}
func (m *mockRepo) Delete(ctx context.Context, id int64) error { return nil }

type notification struct{ email, login, password string }

type mockNotifier struct{ sent chan notification }

func newMockNotifier() *mockNotifier {
	return &mockNotifier{sent: make(chan notification, 1)}
}

func (n *mockNotifier) AccountCreated(ctx context.Context, email, login, password string) error {
	n.sent <- notification{email, login, password}
	return nil
}

func testLogger() *slog.Logger { return slog.Default() }

func TestCreate_HashesAndNotifies(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{}
	n := newMockNotifier()
	svc := New(m, n, testLogger())

	u, err := svc.Create(ctx, NewUser{
		Email: "reader@example.com", Login: "reader", Password: "supersecret", Role: model.RoleUser,
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), u.ID)
	require.True(t, u.Active)
	require.NotEqual(t, "supersecret", u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))

	select {
	case got := <-n.sent:
		require.Equal(t, "reader@example.com", got.email)
		require.Equal(t, "reader", got.login)
		require.Equal(t, "supersecret", got.password)
	case <-time.After(time.Second):
		t.Fatal("account-creation mail was never sent")
	}
}

func TestCreate_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, newMockNotifier(), testLogger())

	_, err := svc.Create(context.Background(), NewUser{Login: "x", Password: "y", Role: model.RoleUser})
	require.ErrorIs(t, err, ErrBadInput)

	_, err = svc.Create(context.Background(), NewUser{
		Email: "a@b.c", Login: "x", Password: "y", Role: model.Role("superuser"),
	})
	require.ErrorIs(t, err, ErrBadInput)
}

func TestUpdate_PartialMergeAndRehash(t *testing.T) {
	ctx := context.Background()
	oldHash, err := hash.HashPassword("old")
	require.NoError(t, err)
	cur := &model.User{ID: 4, Email: "old@example.com", Login: "reader", PasswordHash: oldHash, Role: model.RoleUser, Active: true}

	m := &mockRepo{byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
		cp := *cur
		return &cp, nil
	}}
	svc := New(m, newMockNotifier(), testLogger())

	email := "new@example.com"
	password := "brand-new"
	require.NoError(t, svc.Update(ctx, model.UserPatch{ID: 4, Email: &email, Password: &password}))

	require.Equal(t, "new@example.com", m.updated.Email)
	require.Equal(t, "reader", m.updated.Login, "nil patch fields keep current values")
	require.True(t, hash.Check(m.updated.PasswordHash, "brand-new"))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, newMockNotifier(), testLogger())
	email := "x@y.z"
	require.ErrorIs(t, svc.Update(context.Background(), model.UserPatch{ID: 404, Email: &email}), ErrUserNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, newMockNotifier(), testLogger())
	require.ErrorIs(t, svc.Delete(context.Background(), 404), ErrUserNotFound)
}
