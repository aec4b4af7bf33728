package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core/catalog"
)

type CatalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*CatalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type taskRow struct {
	ID          int    `db:"id"`
	UserID      int    `db:"user_id"`
	Content     string `db:"content"`
	Answer      string `db:"answer"`
	Description string `db:"description"`
}

func (repo *CatalogRepository) GetTaskByID(ctx context.Context, id int) (catalog.Task, error) {
	var r taskRow
	q := `SELECT id, COALESCE(user_id, 0) AS user_id, content, answer, description FROM tasks WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return catalog.Task{}, trapNoRowsErr(err, catalog.ErrTaskNotFound, "finding task by id")
	}
	return catalog.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Content:     r.Content,
		Answer:      r.Answer,
		Description: r.Description,
	}, nil
}

func (repo *CatalogRepository) GetSubjectByCodename(ctx context.Context, codename string) (catalog.Subject, error) {
	var sub catalog.Subject
	q := `SELECT id, codename, name, access FROM subjects WHERE codename = $1`
	if err := repo.db.GetContext(ctx, &sub, q, codename); err != nil {
		return catalog.Subject{}, trapNoRowsErr(err, catalog.ErrSubjectNotFound, "finding subject by codename")
	}
	return sub, nil
}

func (repo *CatalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	q := `INSERT INTO subjects (codename, name, access) VALUES ($1, $2, $3) RETURNING id`
	if err := repo.db.QueryRowxContext(ctx, q, sub.Codename, sub.Name, sub.Access).Scan(&sub.ID); err != nil {
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *CatalogRepository) UpdateSubjectAccess(ctx context.Context, codename string, access int) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE subjects SET access = $1 WHERE codename = $2", access, codename)
	if err != nil {
		return errors.Wrap(err, "updating subject access")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.ErrSubjectNotFound
	}
	return nil
}
