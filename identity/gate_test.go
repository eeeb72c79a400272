package identity

import (
	"context"
	"strings"
	"testing"

	"budget/apperr"
	"budget/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) NotifyPasswordChanged(email, _ string) error {
	n.sent = append(n.sent, email)
	return n.err
}

func newTestGate(allowForgot bool, notifier Notifier) (*Gate, *MemoryUserStore) {
	users := NewMemoryUserStore()
	return NewGate(users, NewBcryptHasher(bcrypt.MinCost), Config{
		AllowForgotPassword: allowForgot,
		Notifier:            notifier,
	}), users
}

func TestGate_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	g, users := newTestGate(true, nil)

	u, err := g.Register(ctx, "ricky", "secret123", "")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "secret123", u.Password)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Password, "secret123")

	got, err := g.Authenticate(ctx, "ricky", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = g.Authenticate(ctx, "ricky", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrAuth))

	_, err = g.Authenticate(ctx, "nobody", "secret123")
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestGate_RegisterConflict(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(true, nil)

	_, err := g.Register(ctx, "ricky", "a", "")
	require.NoError(t, err)

	_, err = g.Register(ctx, " ricky ", "b", "")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestGate_RegisterValidation(t *testing.T) {
	g, _ := newTestGate(true, nil)

	_, err := g.Register(context.Background(), "", "pw", "")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = g.Register(context.Background(), "user", "", "")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = g.Register(context.Background(), "user", strings.Repeat("a", 73), "")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	u, err := g.Register(context.Background(), "user", strings.Repeat("a", 72), "")
	require.NoError(t, err)

	err = g.ResetPassword(context.Background(), u.ID, strings.Repeat("ü", 37))
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = g.ForgotPassword(context.Background(), "user", strings.Repeat("b", 73))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestGate_ResetPassword(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	g, _ := newTestGate(true, notifier)

	u, err := g.Register(ctx, "ricky", "old", "ricky@example.com")
	require.NoError(t, err)

	require.NoError(t, g.ResetPassword(ctx, u.ID, "new"))

	_, err = g.Authenticate(ctx, "ricky", "old")
	assert.True(t, errors.Is(err, apperr.ErrAuth))
	_, err = g.Authenticate(ctx, "ricky", "new")
	assert.NoError(t, err)
	assert.Equal(t, []string{"ricky@example.com"}, notifier.sent)

	err = g.ResetPassword(ctx, 999, "x")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGate_ForgotPassword(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	g, _ := newTestGate(true, notifier)

	_, err := g.Register(ctx, "ricky", "old", "")
	require.NoError(t, err)

	require.NoError(t, g.ForgotPassword(ctx, "ricky", "fresh"))
	_, err = g.Authenticate(ctx, "ricky", "fresh")
	assert.NoError(t, err)
	assert.Empty(t, notifier.sent)

	err = g.ForgotPassword(ctx, "ghost", "fresh")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGate_ForgotPasswordDisabled(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(false, nil)

	_, err := g.Register(ctx, "ricky", "old", "")
	require.NoError(t, err)

	err = g.ForgotPassword(ctx, "ricky", "fresh")
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = g.Authenticate(ctx, "ricky", "old")
	assert.NoError(t, err)
}

func TestGate_NotifierFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	g, _ := newTestGate(true, notifier)

	u, err := g.Register(ctx, "ricky", "old", "ricky@example.com")
	require.NoError(t, err)

	assert.NoError(t, g.ResetPassword(ctx, u.ID, "new"))
	assert.Len(t, notifier.sent, 1)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	d1, err := h.Hash("pw")
	require.NoError(t, err)
	d2, err := h.Hash("pw")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.True(t, h.Verify("pw", d1))
	assert.False(t, h.Verify("nope", d1))
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	u := &models.User{Username: "alice", Password: "d1"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, uint(1), u.ID)
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice"}), apperr.ErrConflict)

	require.NoError(t, s.UpdatePassword(ctx, u.ID, "d2"))
	got, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "d2", got.Password)

	_, err = s.FindByID(ctx, 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePassword(ctx, 9, "x"), apperr.ErrNotFound)
}
