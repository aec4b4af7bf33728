package catalog

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrSubjectExists   = errors.New("a subject with this codename already exists")
)

type (
	Repository interface {
		GetTaskByID(ctx context.Context, id int) (Task, error)
		GetSubjectByCodename(ctx context.Context, codename string) (Subject, error)
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		// UpdateSubjectAccess sets the Access flag of one subject and leaves
		// every other field unchanged.
		UpdateSubjectAccess(ctx context.Context, codename string, access int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetTask(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

// DefineAccess sets the access flag of the subject with the given codename.
func (svc *Service) DefineAccess(ctx context.Context, codename string, access int) error {
	if _, err := svc.repo.GetSubjectByCodename(ctx, codename); err != nil {
		return err
	}
	return svc.repo.UpdateSubjectAccess(ctx, codename, access)
}

// CreateSubject inserts a new closed subject. Not idempotent: a taken codename
// is an error, never an update.
func (svc *Service) CreateSubject(ctx context.Context, codename, name string) (Subject, error) {
	if _, err := svc.repo.GetSubjectByCodename(ctx, codename); err == nil {
		return Subject{}, ErrSubjectExists
	} else if errors.Cause(err) != ErrSubjectNotFound {
		return Subject{}, errors.Wrap(err, "checking subject codename")
	}
	return svc.repo.CreateSubject(ctx, Subject{Codename: codename, Name: name, Access: 0})
}
