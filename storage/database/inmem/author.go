package inmemdb

import (
	"context"

	"github.com/facexem/backend/core/author"
)

var _ author.Repository = (*authorRepository)(nil) // interface compliance check

type authorRepository struct {
	db *DB
}

func NewAuthorRepository(db *DB) *authorRepository {
	return &authorRepository{db: db}
}

func (repo *authorRepository) GetAuthorByUserID(_ context.Context, userID int) (author.Author, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.authors {
		if a.UserID == userID {
			return *a, nil
		}
	}
	return author.Author{}, author.ErrNotFound
}

func (repo *authorRepository) CreateAuthor(_ context.Context, a author.Author) (author.Author, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = repo.db.nextPK()
	repo.db.authors[a.ID] = &a
	return a, nil
}
