package author

import (
	"context"

	"github.com/pkg/errors"

	"github.com/facexem/backend/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("author not found")
	ErrAuthorExists = errors.New("this user is already an author")
)

type (
	Repository interface {
		GetAuthorByUserID(ctx context.Context, userID int) (Author, error)
		CreateAuthor(ctx context.Context, a Author) (Author, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, usrRepo: usrRepo}
}

// Create grants authoring rights to the user identified by their public key.
// Not idempotent: a user already holding an Author record is an error.
func (svc *Service) Create(ctx context.Context, publicKey, password string, subjects []string) (Author, error) {
	usr, err := svc.usrRepo.GetUserByPublicKey(ctx, publicKey)
	if err != nil {
		return Author{}, err
	}

	if _, err = svc.repo.GetAuthorByUserID(ctx, usr.ID); err == nil {
		return Author{}, ErrAuthorExists
	} else if errors.Cause(err) != ErrNotFound {
		return Author{}, errors.Wrap(err, "checking existing author")
	}

	a := Author{UserID: usr.ID, Subjects: subjects}
	if err = a.SetPassword(password); err != nil {
		return Author{}, err
	}
	return svc.repo.CreateAuthor(ctx, a)
}
