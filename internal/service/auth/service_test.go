package auth

import (
	"context"
	"testing"
	"time"

	"github.com/abdxl-cloud/RuqyaHub/internal/config"
	"github.com/abdxl-cloud/RuqyaHub/internal/model"
	"github.com/abdxl-cloud/RuqyaHub/internal/repository"
	"github.com/abdxl-cloud/RuqyaHub/internal/testutil"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewService(repository.NewRepositories(db), testutil.TestAuthConfig()), db
}

func TestLoginAndValidateToken(t *testing.T) {
	s, db := newTestService(t)
	admin := testutil.CreateUser(t, db, "admin@ruqyahub.com", "s3cret", model.RoleAdmin)

	resp, err := s.Login(context.Background(), &LoginRequest{
		Email:    admin.Email,
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Login() returned empty token")
	}
	if resp.User.ID != admin.ID {
		t.Errorf("Login() user = %s, want %s", resp.User.ID, admin.ID)
	}

	user, err := s.ValidateToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if user.ID != admin.ID || !user.IsAdmin() {
		t.Errorf("ValidateToken() = %+v, want the admin account", user)
	}
}

func TestLogin_Rejections(t *testing.T) {
	s, db := newTestService(t)
	testutil.CreateUser(t, db, "admin@ruqyahub.com", "s3cret", model.RoleAdmin)

	disabled := testutil.CreateUser(t, db, "gone@ruqyahub.com", "s3cret", model.RoleAdmin)
	if err := db.Model(disabled).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@ruqyahub.com", "s3cret"},
		{"wrong password", "admin@ruqyahub.com", "guess"},
		{"disabled account", "gone@ruqyahub.com", "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(context.Background(), &LoginRequest{Email: tt.email, Password: tt.password})
			if err != ErrInvalidCredentials {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	s, db := newTestService(t)
	admin := testutil.CreateUser(t, db, "admin@ruqyahub.com", "s3cret", model.RoleAdmin)

	resp, err := s.Login(context.Background(), &LoginRequest{Email: admin.Email, Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// A token signed with a different secret must not resolve.
	other := NewService(repository.NewRepositories(db), &config.AuthConfig{
		JWTSecret:     "another-secret",
		TokenTTLHours: 1,
	})
	foreign, err := other.generateToken(admin)
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}

	// An expired token must not resolve either.
	expiredSvc := NewService(repository.NewRepositories(db), testutil.TestAuthConfig())
	expiredSvc.tokenTTL = -time.Hour
	expired, err := expiredSvc.generateToken(admin)
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.ValidateToken(context.Background(), tt.token); err != ErrInvalidToken {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}

	// Tokens stop working once the account is deactivated.
	if err := db.Model(admin).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}
	if _, err := s.ValidateToken(context.Background(), resp.Token); err != ErrInvalidToken {
		t.Errorf("ValidateToken() on disabled account error = %v, want ErrInvalidToken", err)
	}
}
