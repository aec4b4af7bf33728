package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core/author"
)

type AuthorRepository struct {
	db *sqlx.DB
}

var _ author.Repository = (*AuthorRepository)(nil) // interface compliance check

func NewAuthorRepository(db *sqlx.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

type authorRow struct {
	ID       int    `db:"id"`
	UserID   int    `db:"user_id"`
	PwHash   string `db:"pw_hash"`
	Subjects string `db:"subjects"`
}

func (repo *AuthorRepository) GetAuthorByUserID(ctx context.Context, userID int) (author.Author, error) {
	var r authorRow
	q := `SELECT id, user_id, pw_hash, subjects FROM authors WHERE user_id = $1`
	if err := repo.db.GetContext(ctx, &r, q, userID); err != nil {
		return author.Author{}, trapNoRowsErr(err, author.ErrNotFound, "finding author by user id")
	}
	a := author.Author{ID: r.ID, UserID: r.UserID, PasswordHash: []byte(r.PwHash)}
	if err := unmarshalText(r.Subjects, &a.Subjects); err != nil {
		return author.Author{}, err
	}
	return a, nil
}

func (repo *AuthorRepository) CreateAuthor(ctx context.Context, a author.Author) (author.Author, error) {
	subjects, err := marshalText(a.Subjects)
	if err != nil {
		return author.Author{}, err
	}
	q := `INSERT INTO authors (user_id, pw_hash, subjects) VALUES ($1, $2, $3) RETURNING id`
	if err = repo.db.QueryRowxContext(ctx, q, a.UserID, string(a.PasswordHash), subjects).Scan(&a.ID); err != nil {
		return author.Author{}, errors.Wrap(err, "inserting author")
	}
	return a, nil
}
