package service

import (
	"errors"
	"testing"

	"plc_alarm_monitor/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	users  map[string]*models.User
	nextID int
	err    error
}

func (f *fakeAuthRepo) Create(username, passwordHash string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.users == nil {
		f.users = make(map[string]*models.User)
	}
	f.nextID++
	f.users[username] = &models.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	return f.nextID, nil
}

func (f *fakeAuthRepo) GetByUsername(username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func TestAuth_SignUpAndToken(t *testing.T) {
	t.Parallel()

	repo := &fakeAuthRepo{}
	auth := NewAuthService(repo, "test-signing-key")

	id, err := auth.SignUp("operator", "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("id: %d", id)
	}
	// The password must never be stored in clear.
	stored := repo.users["operator"].PasswordHash
	if stored == "secret" {
		t.Fatal("password stored unhashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	token, err := auth.GenerateToken("operator", "secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	gotID, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if gotID != id {
		t.Fatalf("token user id: got %d, want %d", gotID, id)
	}
}

func TestAuth_SignUpEmptyPassword(t *testing.T) {
	t.Parallel()

	auth := NewAuthService(&fakeAuthRepo{}, "k")
	if _, err := auth.SignUp("operator", "   "); err == nil {
		t.Fatal("blank password must be rejected")
	}
}

func TestAuth_GenerateTokenFailures(t *testing.T) {
	t.Parallel()

	repo := &fakeAuthRepo{}
	auth := NewAuthService(repo, "k")
	if _, err := auth.SignUp("operator", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := auth.GenerateToken("nobody", "secret"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if _, err := auth.GenerateToken("operator", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword, got %v", err)
	}

	repo.err = errors.New("db down")
	if _, err := auth.GenerateToken("operator", "secret"); !errors.Is(err, repo.err) {
		t.Fatalf("want repo error, got %v", err)
	}
}

func TestAuth_ParseTokenRejectsForeignKey(t *testing.T) {
	t.Parallel()

	repo := &fakeAuthRepo{}
	issuer := NewAuthService(repo, "key-a")
	if _, err := issuer.SignUp("operator", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := issuer.GenerateToken("operator", "secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	verifier := NewAuthService(repo, "key-b")
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("token signed with a different key must be rejected")
	}
	if _, err := issuer.ParseToken("not.a.token"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}
