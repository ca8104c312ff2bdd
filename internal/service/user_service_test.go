package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(db *gorm.DB, allowBootstrap bool) UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		[]byte("test-secret"),
		allowBootstrap,
	)
}

func TestUserRegister(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db, false)
	ctx := context.Background()

	authRes, err := svc.Register(ctx, RegisterRequest{
		Username: "newrep",
		Email:    "newrep@test.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// New accounts get the SALES role and are logged in immediately
	assert.Equal(t, model.RoleSales, authRes.Role)
	assert.Equal(t, "newrep", authRes.Username)
	assert.NotEmpty(t, authRes.Token)
	assert.NotEmpty(t, authRes.RefreshToken)

	var stored model.User
	require.NoError(t, db.First(&stored, "username = ?", "newrep").Error)
	assert.Equal(t, model.RoleSales, stored.Role)
	assert.NotEqual(t, "secret123", stored.Password)
}

func TestUserRegisterConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "rep", Email: "rep@test.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "rep", Email: "other@test.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, RegisterRequest{Username: "other", Email: "rep@test.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "rep", Email: "rep@test.com", Password: "secret123"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		authRes, err := svc.Login(ctx, LoginRequest{Username: "rep", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleSales, authRes.Role)
		assert.NotEmpty(t, authRes.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "rep", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "ghost", Password: "secret123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserRefreshTokenRotates(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db, false)
	ctx := context.Background()

	authRes, err := svc.Register(ctx, RegisterRequest{Username: "rep", Email: "rep@test.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: authRes.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, authRes.RefreshToken, refreshed.RefreshToken)

	// The old token is single-use
	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: authRes.RefreshToken})
	assert.Error(t, err)
}

func TestUserLogout(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db, false)
	ctx := context.Background()

	authRes, err := svc.Register(ctx, RegisterRequest{Username: "rep", Email: "rep@test.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, authRes.RefreshToken))

	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: authRes.RefreshToken})
	assert.Error(t, err)
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db, false)
	ctx := context.Background()

	admin := createTestUser(t, db, "boss", model.RoleAdmin)

	user, err := svc.GetUserByID(ctx, admin.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "boss", user.Username)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.ElementsMatch(t, []string{"commercial", "pricing", "costs", "financial"}, user.EditableCategories)

	_, err = svc.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBootstrapDefaultUsers(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestUserService(db, false)

		_, err := svc.BootstrapDefaultUsers(context.Background())
		assert.ErrorIs(t, err, ErrSetupDisabled)
	})

	t.Run("seeds once", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestUserService(db, true)
		ctx := context.Background()

		created, err := svc.BootstrapDefaultUsers(ctx)
		require.NoError(t, err)
		assert.True(t, created)

		var count int64
		require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
		assert.EqualValues(t, 3, count)

		var admin model.User
		require.NoError(t, db.First(&admin, "username = ?", "admin").Error)
		assert.Equal(t, model.RoleAdmin, admin.Role)

		// The seeded credentials work
		authRes, err := svc.Login(ctx, LoginRequest{Username: "finance", Password: "financepass"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleFinance, authRes.Role)

		// Second call is a no-op
		created, err = svc.BootstrapDefaultUsers(ctx)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("no-op when any user exists", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestUserService(db, true)

		createTestUser(t, db, "existing", model.RoleSales)

		created, err := svc.BootstrapDefaultUsers(context.Background())
		require.NoError(t, err)
		assert.False(t, created)
	})
}
