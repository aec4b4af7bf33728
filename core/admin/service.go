package admin

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("admin not found")
	ErrNotAdmin    = errors.New("not an admin")
	ErrAdminExists = errors.New("an admin with this email already exists")
)

type (
	// Session is the per-request session handle the gate reads the bearer
	// token from. The transport layer owns its persistence.
	Session interface {
		Token() string
		SetToken(token string) error
	}

	Repository interface {
		GetAdminByToken(ctx context.Context, token string) (Admin, error)
		GetAdminByEmail(ctx context.Context, email string) (Admin, error)
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
	}

	Service struct {
		repo     Repository
		adminKey string
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, adminKey: conf.AdminKey}
}

// Register creates an admin account with a fresh bearer token.
func (svc *Service) Register(ctx context.Context, email, pwd string) (Admin, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := svc.repo.GetAdminByEmail(ctx, email); err == nil {
		return Admin{}, ErrAdminExists
	} else if errors.Cause(err) != ErrNotFound {
		return Admin{}, errors.Wrap(err, "checking admin email")
	}

	adm := Admin{Email: email, Token: uuid.New().String()}
	if err := adm.SetPassword(pwd); err != nil {
		return Admin{}, err
	}
	return svc.repo.CreateAdmin(ctx, adm)
}

// Verify authenticates the claimed admin identity. The check is a strict
// two-stage AND: the bearer token must match an Admin row, then either the
// session already holds that token or the shared secret code matches.
// A missing credential field or an unknown token always rejects; the
// session/code stage is never reached on a failed lookup.
func (svc *Service) Verify(ctx context.Context, creds Credentials, sess Session) (Admin, error) {
	if creds.Token == "" || creds.Code == "" {
		return Admin{}, ErrNotAdmin
	}

	adm, err := svc.repo.GetAdminByToken(ctx, creds.Token)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Admin{}, ErrNotAdmin
		}
		return Admin{}, errors.Wrap(err, "finding admin by token")
	}

	// "already logged in" fast path
	if sess != nil && sess.Token() == adm.Token {
		return adm, nil
	}
	if svc.adminKey != "" && subtle.ConstantTimeCompare([]byte(creds.Code), []byte(svc.adminKey)) == 1 {
		return adm, nil
	}
	return Admin{}, ErrNotAdmin
}

// Login authenticates an admin with email + password AND the shared secret,
// then stores the bearer token in the session. It fails closed when no admin
// matches the email.
func (svc *Service) Login(ctx context.Context, email, pwd, key string, sess Session) (string, error) {
	adm, err := svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return "", ErrNotAdmin
		}
		return "", errors.Wrap(err, "finding admin by email")
	}
	if err = adm.CheckPassword(pwd); err != nil {
		return "", ErrNotAdmin
	}
	if svc.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(svc.adminKey)) != 1 {
		return "", ErrNotAdmin
	}
	if sess != nil {
		if err = sess.SetToken(adm.Token); err != nil {
			return "", errors.Wrap(err, "saving session token")
		}
	}
	return adm.Token, nil
}
