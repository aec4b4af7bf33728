package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core/user"
)

type UserRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*UserRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID          int            `db:"id"`
	Email       sql.NullString `db:"email"`
	Name        string         `db:"name"`
	VkID        sql.NullString `db:"vk_id"`
	GoogleID    sql.NullString `db:"google_id"`
	PublicKey   sql.NullString `db:"public_key"`
	Token       sql.NullString `db:"token"`
	PwHash      sql.NullString `db:"pw_hash"`
	ProfileDone bool           `db:"profile_done"`
	Role        int            `db:"role"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email.String,
		Name:         r.Name,
		VkID:         r.VkID.String,
		GoogleID:     r.GoogleID.String,
		PublicKey:    r.PublicKey.String,
		Token:        r.Token.String,
		PasswordHash: []byte(r.PwHash.String),
		ProfileDone:  r.ProfileDone,
		Role:         r.Role,
	}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// trapNoRowsErr maps psql "no rows" to the given domain error.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

const userColumns = "id, email, name, vk_id, google_id, public_key, token, pw_hash, profile_done, role"

func (repo *UserRepository) CheckUserUniqueness(ctx context.Context, email, vkID, googleID string) error {
	checks := []struct {
		column string
		value  string
		err    error
	}{
		{"email", email, user.ErrEmailExists},
		{"vk_id", vkID, user.ErrVkIDExists},
		{"google_id", googleID, user.ErrGoogleIDExists},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		var exists bool
		q := "SELECT EXISTS (SELECT 1 FROM users WHERE " + c.column + " = $1)"
		if err := repo.db.GetContext(ctx, &exists, q, c.value); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if exists {
			return c.err
		}
	}
	return nil
}

func (repo *UserRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (email, name, vk_id, google_id, public_key, token, pw_hash, profile_done, role)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		nullStr(usr.Email), usr.Name, nullStr(usr.VkID), nullStr(usr.GoogleID), nullStr(usr.PublicKey),
		nullStr(usr.Token), nullStr(string(usr.PasswordHash)), usr.ProfileDone, usr.Role,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *UserRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *UserRepository) getUserBy(ctx context.Context, column, value string) (user.User, error) {
	var r userRow
	q := "SELECT " + userColumns + " FROM users WHERE " + column + " = $1"
	if err := repo.db.GetContext(ctx, &r, q, value); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by "+column)
	}
	return r.toUser(), nil
}

func (repo *UserRepository) GetUserByToken(ctx context.Context, token string) (user.User, error) {
	return repo.getUserBy(ctx, "token", token)
}

func (repo *UserRepository) GetUserByPublicKey(ctx context.Context, key string) (user.User, error) {
	return repo.getUserBy(ctx, "public_key", key)
}

func (repo *UserRepository) CheckTestUserUniqueness(ctx context.Context, email string) error {
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM test_users WHERE email = $1)"
	if err := repo.db.GetContext(ctx, &exists, q, email); err != nil {
		return errors.Wrap(err, "checking test user uniqueness")
	}
	if exists {
		return user.ErrTestUserExists
	}
	return nil
}

func (repo *UserRepository) CreateTestUser(ctx context.Context, tu user.TestUser) (user.TestUser, error) {
	q := `INSERT INTO test_users (email, key) VALUES ($1, $2) RETURNING id`
	if err := repo.db.QueryRowxContext(ctx, q, tu.Email, tu.Key).Scan(&tu.ID); err != nil {
		return user.TestUser{}, errors.Wrap(err, "inserting test user")
	}
	return tu, nil
}

func (repo *UserRepository) QueryAllTestUsers(ctx context.Context) ([]user.TestUser, error) {
	var tus []user.TestUser
	q := `SELECT id, email, key FROM test_users ORDER BY id`
	if err := repo.db.SelectContext(ctx, &tus, q); err != nil {
		return nil, errors.Wrap(err, "querying test users")
	}
	return tus, nil
}

type userSubjectRow struct {
	ID              int    `db:"id"`
	UserID          int    `db:"user_id"`
	SubjectCodename string `db:"subject_codename"`
	PassedLections  string `db:"passed_lections"`
	PassedTests     string `db:"passed_tests"`
	PointsOfTests   int    `db:"points_of_tests"`
	Tasks           int    `db:"tasks"`
	Experience      int    `db:"experience"`
	Activity        string `db:"activity"`
	NowChallenge    string `db:"now_challenge"`
}

func (r userSubjectRow) toUserSubjects() (user.UserSubjects, error) {
	sub := user.UserSubjects{
		ID:              r.ID,
		UserID:          r.UserID,
		SubjectCodename: r.SubjectCodename,
		PointsOfTests:   r.PointsOfTests,
		Tasks:           r.Tasks,
		Experience:      r.Experience,
		Activity:        map[string]int{},
	}
	if err := unmarshalText(r.PassedLections, &sub.PassedLections); err != nil {
		return user.UserSubjects{}, err
	}
	if err := unmarshalText(r.PassedTests, &sub.PassedTests); err != nil {
		return user.UserSubjects{}, err
	}
	if err := unmarshalText(r.Activity, &sub.Activity); err != nil {
		return user.UserSubjects{}, err
	}
	if err := unmarshalText(r.NowChallenge, &sub.NowChallenge); err != nil {
		return user.UserSubjects{}, err
	}
	return sub, nil
}

func (repo *UserRepository) CreateUserSubject(ctx context.Context, sub user.UserSubjects) (user.UserSubjects, error) {
	lections, err := marshalText(sub.PassedLections)
	if err != nil {
		return user.UserSubjects{}, err
	}
	tests, err := marshalText(sub.PassedTests)
	if err != nil {
		return user.UserSubjects{}, err
	}
	activity, err := marshalText(sub.Activity)
	if err != nil {
		return user.UserSubjects{}, err
	}
	challenge, err := marshalText(sub.NowChallenge)
	if err != nil {
		return user.UserSubjects{}, err
	}

	q := `INSERT INTO user_subjects
	      (user_id, subject_codename, passed_lections, passed_tests, points_of_tests, tasks, experience, activity, now_challenge)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err = repo.db.QueryRowxContext(ctx, q,
		sub.UserID, sub.SubjectCodename, lections, tests, sub.PointsOfTests, sub.Tasks, sub.Experience, activity, challenge,
	).Scan(&sub.ID)
	if err != nil {
		return user.UserSubjects{}, errors.Wrap(err, "inserting enrollment")
	}
	return sub, nil
}

func (repo *UserRepository) GetUserSubjects(ctx context.Context, userID int) ([]user.UserSubjects, error) {
	var rows []userSubjectRow
	q := `SELECT id, user_id, subject_codename, passed_lections, passed_tests, points_of_tests, tasks, experience, activity, now_challenge
	      FROM user_subjects WHERE user_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	subs := make([]user.UserSubjects, 0, len(rows))
	for _, r := range rows {
		sub, err := r.toUserSubjects()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (repo *UserRepository) UpdateUserSubjectActivity(ctx context.Context, enrollmentID int, activity map[string]int) error {
	data, err := marshalText(activity)
	if err != nil {
		return err
	}
	res, err := repo.db.ExecContext(ctx, "UPDATE user_subjects SET activity = $1 WHERE id = $2", data, enrollmentID)
	if err != nil {
		return errors.Wrap(err, "updating enrollment activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrEnrollmentNotFound
	}
	return nil
}
