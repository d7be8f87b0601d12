package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/security"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "service_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Credential{},
		&domain.ResetToken{},
		&domain.University{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db          *gorm.DB
	users       repository.UserRepository
	credentials repository.CredentialRepository
	resetTokens repository.ResetTokenRepository
	auth        *AuthService
	userSvc     *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	creds := repository.NewCredentialRepository(db)
	tokens := repository.NewResetTokenRepository(db)
	jwtManager := security.NewJWTManager("universities-api-test", "0123456789abcdef0123456789abcdef", time.Hour)
	return &testEnv{
		db:          db,
		users:       users,
		credentials: creds,
		resetTokens: tokens,
		auth:        NewAuthService(users, creds, tokens, jwtManager, time.Hour, 5*time.Minute, testLogger()),
		userSvc:     NewUserService(users, creds, testLogger()),
	}
}

func (e *testEnv) registerUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u, err := e.userSvc.Create(context.Background(), CreateUserInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("register %q: %v", email, err)
	}
	return u
}
