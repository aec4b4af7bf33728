package admin

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/facexem/backend/core"
)

type fakeRepo struct {
	byToken map[string]Admin
	byEmail map[string]Admin
}

func (r *fakeRepo) GetAdminByToken(_ context.Context, token string) (Admin, error) {
	adm, ok := r.byToken[token]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return adm, nil
}

func (r *fakeRepo) GetAdminByEmail(_ context.Context, email string) (Admin, error) {
	adm, ok := r.byEmail[email]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return adm, nil
}

func (r *fakeRepo) CreateAdmin(_ context.Context, adm Admin) (Admin, error) {
	adm.ID = len(r.byEmail) + 1
	r.byEmail[adm.Email] = adm
	r.byToken[adm.Token] = adm
	return adm, nil
}

type fakeSession struct {
	token string
}

func (s *fakeSession) Token() string             { return s.token }
func (s *fakeSession) SetToken(token string) error { s.token = token; return nil }

func newTestService(t *testing.T) (*Service, Admin, *fakeRepo) {
	t.Helper()
	adm := Admin{ID: 1, Email: "admin@test.cd", Token: "admtok"}
	if err := adm.SetPassword("passwd"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	repo := &fakeRepo{
		byToken: map[string]Admin{adm.Token: adm},
		byEmail: map[string]Admin{adm.Email: adm},
	}
	svc := NewService(repo, &core.Config{AdminKey: "sharedsecret"})
	return svc, adm, repo
}

func TestService_Verify(t *testing.T) {
	svc, adm, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		creds   Credentials
		sess    Session
		wantErr error
	}{
		{name: "missing token", creds: Credentials{Code: "sharedsecret"}, wantErr: ErrNotAdmin},
		{name: "missing code", creds: Credentials{Token: adm.Token}, wantErr: ErrNotAdmin},
		{name: "unknown token", creds: Credentials{Token: "nope", Code: "sharedsecret"}, wantErr: ErrNotAdmin},
		{name: "known token, bad code, no session", creds: Credentials{Token: adm.Token, Code: "nope"}, wantErr: ErrNotAdmin},
		{name: "known token, good code", creds: Credentials{Token: adm.Token, Code: "sharedsecret"}},
		{name: "session fast path", creds: Credentials{Token: adm.Token, Code: "nope"}, sess: &fakeSession{token: adm.Token}},
		{name: "stale session, bad code", creds: Credentials{Token: adm.Token, Code: "nope"}, sess: &fakeSession{token: "other"}, wantErr: ErrNotAdmin},
		// the code stage is never reached when the token lookup fails, even
		// when the session holds a valid token
		{name: "unknown token, good code and session", creds: Credentials{Token: "nope", Code: "sharedsecret"}, sess: &fakeSession{token: adm.Token}, wantErr: ErrNotAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(ctx, tt.creds, tt.sess)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != adm.ID {
				t.Errorf("Verify() = %+v, want admin %d", got, adm.ID)
			}
		})
	}
}

func TestService_Verify_emptyAdminKey(t *testing.T) {
	// an unset shared secret must not make empty codes valid
	adm := Admin{ID: 1, Email: "admin@test.cd", Token: "admtok"}
	repo := &fakeRepo{byToken: map[string]Admin{adm.Token: adm}, byEmail: map[string]Admin{}}
	svc := NewService(repo, &core.Config{AdminKey: ""})

	if _, err := svc.Verify(context.Background(), Credentials{Token: adm.Token, Code: "anything"}, nil); errors.Cause(err) != ErrNotAdmin {
		t.Errorf("Verify() error = %v, want ErrNotAdmin", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, adm, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name             string
		email, pwd, key  string
		wantErr          error
	}{
		{name: "unknown email", email: "nope@test.cd", pwd: "passwd", key: "sharedsecret", wantErr: ErrNotAdmin},
		{name: "bad password", email: adm.Email, pwd: "nope", key: "sharedsecret", wantErr: ErrNotAdmin},
		{name: "bad key", email: adm.Email, pwd: "passwd", key: "nope", wantErr: ErrNotAdmin},
		{name: "ok", email: adm.Email, pwd: "passwd", key: "sharedsecret"},
		{name: "email is cleaned", email: " Admin@Test.CD ", pwd: "passwd", key: "sharedsecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{}
			token, err := svc.Login(ctx, tt.email, tt.pwd, tt.key, sess)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if sess.token != "" {
					t.Error("session token set on failed login")
				}
				return
			}
			if token != adm.Token {
				t.Errorf("Login() = %s, want %s", token, adm.Token)
			}
			if sess.token != adm.Token {
				t.Errorf("session token = %s, want %s", sess.token, adm.Token)
			}
		})
	}
}

func TestService_Register(t *testing.T) {
	svc, adm, repo := newTestService(t)
	ctx := context.Background()

	newAdm, err := svc.Register(ctx, " New@Test.CD ", "passwd")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if newAdm.Email != "new@test.cd" {
		t.Errorf("email = %s, want cleaned lowercase", newAdm.Email)
	}
	if newAdm.Token == "" || newAdm.Token == adm.Token {
		t.Errorf("token = %q, want a fresh token", newAdm.Token)
	}
	if err = newAdm.CheckPassword("passwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if _, ok := repo.byToken[newAdm.Token]; !ok {
		t.Error("admin not persisted")
	}

	if _, err = svc.Register(ctx, adm.Email, "passwd"); errors.Cause(err) != ErrAdminExists {
		t.Errorf("Register() error = %v, want ErrAdminExists", err)
	}
}
