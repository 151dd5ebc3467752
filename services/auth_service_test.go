package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	service := NewAuthService(users, clockwork.NewFakeClockAt(date(2024, time.March, 15)))
	return service, users
}

func TestRegister(t *testing.T) {
	service, users := newAuthFixture(t)

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := service.Register(context.Background(), RegisterInput{
			Name:     "abbie",
			Email:    "abbie@example.com",
			Password: "short",
		})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("hashes the password and stamps the join date", func(t *testing.T) {
		user, err := service.Register(context.Background(), RegisterInput{
			Name:     "abbie",
			Email:    "abbie@example.com",
			Password: "correct horse battery staple",
		})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, date(2024, time.March, 15), user.JoinDate)

		stored, err := users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse battery staple", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery staple")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := service.Register(context.Background(), RegisterInput{
			Name:     "abbie2",
			Email:    "abbie@example.com",
			Password: "another password",
		})
		assert.ErrorIs(t, err, ErrUserEmailConflict)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := service.Register(context.Background(), RegisterInput{
			Name:     "abbie",
			Email:    "abbie2@example.com",
			Password: "another password",
		})
		assert.ErrorIs(t, err, ErrUserNameConflict)
	})
}

func TestLogin(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "abbie",
		Email:    "abbie@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(context.Background(), LoginInput{
			Email:    "nobody@example.com",
			Password: "whatever password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(context.Background(), LoginInput{
			Email:    "abbie@example.com",
			Password: "not the password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success clears the hash", func(t *testing.T) {
		user, err := service.Login(context.Background(), LoginInput{
			Email:    "abbie@example.com",
			Password: "correct horse battery staple",
		})
		require.NoError(t, err)
		assert.Equal(t, "abbie", user.Name)
		assert.Empty(t, user.PasswordHash)
	})
}
