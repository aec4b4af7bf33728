package inmemdb

import (
	"context"
	"sort"

	"github.com/facexem/backend/core/user"
)

var _ user.Repository = (*userRepository)(nil) // interface compliance check

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckUserUniqueness(_ context.Context, email, vkID, googleID string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
		if vkID != "" && usr.VkID == vkID {
			return user.ErrVkIDExists
		}
		if googleID != "" && usr.GoogleID == googleID {
			return user.ErrGoogleIDExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = repo.db.nextPK()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByToken(_ context.Context, token string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Token != "" && usr.Token == token {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByPublicKey(_ context.Context, key string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.PublicKey != "" && usr.PublicKey == key {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) CheckTestUserUniqueness(_ context.Context, email string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tu := range repo.db.testUsers {
		if tu.Email == email {
			return user.ErrTestUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateTestUser(_ context.Context, tu user.TestUser) (user.TestUser, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tu.ID = repo.db.nextPK()
	repo.db.testUsers[tu.ID] = &tu
	return tu, nil
}

func (repo *userRepository) QueryAllTestUsers(_ context.Context) ([]user.TestUser, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tus := make([]user.TestUser, 0, len(repo.db.testUsers))
	for _, tu := range repo.db.testUsers {
		tus = append(tus, *tu)
	}
	sort.Slice(tus, func(i, j int) bool { return tus[i].ID < tus[j].ID })
	return tus, nil
}

func (repo *userRepository) CreateUserSubject(_ context.Context, sub user.UserSubjects) (user.UserSubjects, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = repo.db.nextPK()
	repo.db.userSubjects[sub.ID] = &sub
	return sub, nil
}

func (repo *userRepository) GetUserSubjects(_ context.Context, userID int) ([]user.UserSubjects, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]user.UserSubjects, 0)
	for _, sub := range repo.db.userSubjects {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (repo *userRepository) UpdateUserSubjectActivity(_ context.Context, enrollmentID int, activity map[string]int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub, ok := repo.db.userSubjects[enrollmentID]
	if !ok {
		return user.ErrEnrollmentNotFound
	}
	sub.Activity = activity
	return nil
}
