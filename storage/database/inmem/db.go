// Package inmemdb provides mutex-guarded in-memory repositories, used by
// tests and local development.
package inmemdb

import (
	"sync"

	"github.com/facexem/backend/core/admin"
	"github.com/facexem/backend/core/author"
	"github.com/facexem/backend/core/catalog"
	"github.com/facexem/backend/core/user"
)

type DB struct {
	mutex sync.RWMutex

	admins       map[int]*admin.Admin
	users        map[int]*user.User
	testUsers    map[int]*user.TestUser
	userSubjects map[int]*user.UserSubjects
	authors      map[int]*author.Author
	subjects     map[int]*catalog.Subject
	tasks        map[int]*catalog.Task

	pkCount int
}

func NewDB() *DB {
	return &DB{
		admins:       make(map[int]*admin.Admin),
		users:        make(map[int]*user.User),
		testUsers:    make(map[int]*user.TestUser),
		userSubjects: make(map[int]*user.UserSubjects),
		authors:      make(map[int]*author.Author),
		subjects:     make(map[int]*catalog.Subject),
		tasks:        make(map[int]*catalog.Task),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}
