package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core/admin"
)

type AdminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*AdminRepository)(nil) // interface compliance check

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type adminRow struct {
	ID     int    `db:"id"`
	Email  string `db:"email"`
	PwHash string `db:"pw_hash"`
	Token  string `db:"token"`
}

func (r adminRow) toAdmin() admin.Admin {
	return admin.Admin{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: []byte(r.PwHash),
		Token:        r.Token,
	}
}

func (repo *AdminRepository) getAdminBy(ctx context.Context, column, value string) (admin.Admin, error) {
	var r adminRow
	q := "SELECT id, email, pw_hash, token FROM admins WHERE " + column + " = $1"
	if err := repo.db.GetContext(ctx, &r, q, value); err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound, "finding admin by "+column)
	}
	return r.toAdmin(), nil
}

func (repo *AdminRepository) GetAdminByToken(ctx context.Context, token string) (admin.Admin, error) {
	return repo.getAdminBy(ctx, "token", token)
}

func (repo *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error) {
	return repo.getAdminBy(ctx, "email", email)
}

func (repo *AdminRepository) CreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	q := `INSERT INTO admins (email, pw_hash, token) VALUES ($1, $2, $3) RETURNING id`
	if err := repo.db.QueryRowxContext(ctx, q, adm.Email, string(adm.PasswordHash), adm.Token).Scan(&adm.ID); err != nil {
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}
