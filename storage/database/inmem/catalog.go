package inmemdb

import (
	"context"

	"github.com/facexem/backend/core/catalog"
)

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) GetTaskByID(_ context.Context, id int) (catalog.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if task, ok := repo.db.tasks[id]; ok {
		return *task, nil
	}
	return catalog.Task{}, catalog.ErrTaskNotFound
}

// CreateTask is not part of catalog.Repository; fixtures use it directly.
func (repo *catalogRepository) CreateTask(_ context.Context, task catalog.Task) (catalog.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	task.ID = repo.db.nextPK()
	repo.db.tasks[task.ID] = &task
	return task, nil
}

func (repo *catalogRepository) GetSubjectByCodename(_ context.Context, codename string) (catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.subjects {
		if sub.Codename == codename {
			return *sub, nil
		}
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) CreateSubject(_ context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = repo.db.nextPK()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *catalogRepository) UpdateSubjectAccess(_ context.Context, codename string, access int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, sub := range repo.db.subjects {
		if sub.Codename == codename {
			sub.Access = access
			return nil
		}
	}
	return catalog.ErrSubjectNotFound
}
