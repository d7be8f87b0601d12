package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/http/router"
	"github.com/univdir/universities-api/internal/mail"
	"github.com/univdir/universities-api/internal/queue"
	"github.com/univdir/universities-api/internal/repository"
	"github.com/univdir/universities-api/internal/security"
	"github.com/univdir/universities-api/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	handler http.Handler
	jwt     *security.JWTManager
	userSvc *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "handler_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Credential{}, &domain.ResetToken{}, &domain.University{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := repository.NewUserRepository(db)
	creds := repository.NewCredentialRepository(db)
	tokens := repository.NewResetTokenRepository(db)
	universities := repository.NewUniversityRepository(db)

	jwtManager := security.NewJWTManager("universities-api-test", testJWTSecret, time.Hour)
	authSvc := service.NewAuthService(users, creds, tokens, jwtManager, time.Hour, 5*time.Minute, log)
	userSvc := service.NewUserService(users, creds, log)
	universitySvc := service.NewUniversityService(universities, nil, log)

	q := queue.New(16, 5*time.Second, log)
	q.Start(context.Background())
	t.Cleanup(q.Close)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:       NewAuthHandler(authSvc, mail.NewLogNotifier(log)),
		UserHandler:       NewUserHandler(userSvc),
		UniversityHandler: NewUniversityHandler(universitySvc, q),
		JWTManager:        jwtManager,
		CORSOrigins:       []string{"*"},
		AuthRateLimitRPM:  1000,
		APIRateLimitRPM:   1000,
	})

	return &testServer{handler: h, jwt: jwtManager, userSvc: userSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	_, err := s.userSvc.Create(context.Background(), service.CreateUserInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("register %q: %v", email, err)
	}
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	tok, err := s.jwt.Sign("authed@example.com", "Authed", "User")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}
