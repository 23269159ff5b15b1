package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/gabrielbaute/octopus-photos/utils"
)

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo, *fakeStorageRepo) {
	t.Helper()
	basePath := setupTestConfig(t)
	users := newFakeUserRepo()
	storages := newFakeStorageRepo()
	storage := NewStorageService(&fakeTxManager{}, storages, newFakePhotoRepo(), basePath)
	return NewAuthService(users, storage), users, storages
}

func TestRegisterCreatesUserAndStorage(t *testing.T) {
	svc, users, storages := newTestAuthService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("user not assigned an ID")
	}
	if user.Password == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if !utils.CheckPassword("hunter22", users.users[user.ID].Password) {
		t.Fatal("stored hash does not match password")
	}
	if _, ok := storages.records[user.ID]; !ok {
		t.Fatal("storage not initialized on registration")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Password: "hunter22"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := svc.Register(ctx, RegisterInput{Username: "ada", Password: "different"})
	if appErrCode(t, err) != http.StatusConflict {
		t.Fatal("duplicate username must conflict")
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "ada", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(ctx, "ada", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatal("login returned wrong user")
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Fatal("token carries wrong user ID")
	}

	if _, _, err := svc.Login(ctx, "ada", "wrong"); appErrCode(t, err) != http.StatusUnauthorized {
		t.Fatal("wrong password must be unauthorized")
	}
	if _, _, err := svc.Login(ctx, "nobody", "hunter22"); appErrCode(t, err) != http.StatusUnauthorized {
		t.Fatal("unknown user must be unauthorized")
	}
}
