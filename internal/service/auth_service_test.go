package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/identity"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newLocalAuth() (*AuthService, *fakeUsers, *fakeCache, *identity.HMACProvider) {
	users, cache := newFakeUsers(), newFakeCache()
	p := identity.NewHMACProvider("test-secret", "yazili-test", time.Hour)
	return NewAuthService(users, p, p, cache, bcrypt.MinCost, nopLog), users, cache, p
}

func TestLocalRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, users, _, p := newLocalAuth()

	reg, err := svc.Register(ctx, &model.RegisterRequest{
		Email: " Ayse@Example.com ", Password: "secret1", Name: "Ayşe", Role: model.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Token == "" || reg.ExpiresAt == nil {
		t.Fatal("local registration must return a token")
	}
	if reg.User.Email != "ayse@example.com" {
		t.Fatalf("email not normalized: %q", reg.User.Email)
	}

	stored := users.byID[reg.User.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == "secret1" {
		t.Fatal("password must be stored hashed")
	}

	login, err := svc.Login(ctx, &model.LoginRequest{Email: "ayse@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	id, err := p.Verify(ctx, login.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.Subject != stored.ExternalID || id.Role != model.RoleTeacher {
		t.Fatalf("identity = %+v", id)
	}
	if users.byID[reg.User.ID].LastLogin == nil {
		t.Fatal("last_login not stamped")
	}
}

func TestLocalLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newLocalAuth()
	if _, err := svc.Register(ctx, &model.RegisterRequest{
		Email: "a@b.co", Password: "secret1", Name: "Ali", Role: model.RoleStudent,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "a@b.co", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@b.co", Password: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: err = %v", err)
	}
	if _, err := svc.Login(ctx, &model.LoginRequest{IDToken: "x"}); !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("id_token on local provider: err = %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newLocalAuth()
	req := &model.RegisterRequest{Email: "dup@b.co", Password: "secret1", Name: "Ali", Role: model.RoleStudent}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

type stubVerifier struct {
	subject string
	err     error
}

func (v stubVerifier) Verify(context.Context, string) (*identity.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &identity.Identity{Subject: v.subject, Role: model.RoleStudent}, nil
}

func TestExternalRegisterBindsSubject(t *testing.T) {
	ctx := context.Background()
	users, cache := newFakeUsers(), newFakeCache()
	svc := NewAuthService(users, stubVerifier{subject: "firebase|42"}, nil, cache, bcrypt.MinCost, nopLog)

	reg, err := svc.Register(ctx, &model.RegisterRequest{
		IDToken: "tok", Email: "e@x.co", Name: "Ece", Role: model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Token != "" {
		t.Fatal("external provider must not mint tokens")
	}
	if users.byID[reg.User.ID].ExternalID != "firebase|42" {
		t.Fatal("profile not bound to the token subject")
	}

	login, err := svc.Login(ctx, &model.LoginRequest{IDToken: "tok"})
	if err != nil || login.User.ID != reg.User.ID {
		t.Fatalf("login: %+v, %v", login, err)
	}

	bad := NewAuthService(users, stubVerifier{err: identity.ErrInvalidToken}, nil, cache, bcrypt.MinCost, nopLog)
	if _, err := bad.Login(ctx, &model.LoginRequest{IDToken: "tok"}); !errors.Is(err, identity.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, cache, _ := newLocalAuth()
	cache.profiles["sub"] = &model.User{}
	exp := time.Now().Add(time.Hour)

	svc.Logout(context.Background(), "sub", "jti-1", exp)

	if _, ok := cache.revoked["jti-1"]; !ok {
		t.Fatal("token id not revoked")
	}
	if _, ok := cache.profiles["sub"]; ok {
		t.Fatal("cached profile not dropped")
	}
}

func TestResolveReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	users, cache := newFakeUsers(), newFakeCache()
	u := &model.User{Email: "r@x.co", Name: "Rıza", Role: model.RoleStudent}
	if err := users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	svc := NewUserService(users, cache, nopLog)

	got, err := svc.Resolve(ctx, u.ExternalID)
	if err != nil || got.ID != u.ID {
		t.Fatalf("resolve: %+v, %v", got, err)
	}
	if cache.profiles[u.ExternalID] == nil {
		t.Fatal("profile not cached")
	}
	if _, err := svc.Resolve(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateProfileInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	users, cache := newFakeUsers(), newFakeCache()
	a := &model.User{Email: "a@x.co", Name: "A", Role: model.RoleStudent}
	b := &model.User{Email: "b@x.co", Name: "B", Role: model.RoleStudent}
	_ = users.Create(ctx, a)
	_ = users.Create(ctx, b)
	cache.profiles[a.ExternalID] = a
	svc := NewUserService(users, cache, nopLog)
	actor := Actor{UserID: a.ID, Subject: a.ExternalID, Role: a.Role}

	name := "Yeni Ad"
	u, err := svc.UpdateProfile(ctx, actor, &model.UpdateProfileRequest{Name: &name})
	if err != nil || u.Name != name {
		t.Fatalf("update: %+v, %v", u, err)
	}
	if _, ok := cache.profiles[a.ExternalID]; ok {
		t.Fatal("profile cache not invalidated")
	}

	taken := "B@x.co"
	if _, err := svc.UpdateProfile(ctx, actor, &model.UpdateProfileRequest{Email: &taken}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}
