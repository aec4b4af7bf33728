package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/facexem/backend/core"
)

// Roles
const (
	RoleUser   = 1
	RoleAuthor = 2
	RoleAdmin  = 3
)

type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	VkID         string `json:"vk_id"`
	GoogleID     string `json:"google_id"`
	PublicKey    string `json:"public_key"`
	Token        string `json:"token"`
	PasswordHash []byte `json:"-"`
	ProfileDone  bool   `json:"profile_done"`
	Role         int    `json:"role"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAuthor() bool { return u.Role >= RoleAuthor }
func (u *User) IsAdmin() bool  { return u.Role >= RoleAdmin }

// NewUser contains information needed to create a new User. Exactly one of
// Password, Email, VkID or GoogleID must be set: it establishes how the
// account authenticates and, for the latter three, seeds the provenance token.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password"`
	Email    string `json:"email" validate:"omitempty,email"`
	VkID     string `json:"vk_id"`
	GoogleID string `json:"google_id"`
	Role     int    `json:"role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.VkID = core.CleanString(nu.VkID)
	nu.GoogleID = core.CleanString(nu.GoogleID)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if n := countSet(nu.Password, nu.Email, nu.VkID, nu.GoogleID); n != 1 {
		return core.NewValidationError(errProvenance)
	}
	return nil
}

// provenanceID returns the external id the provenance token derives from,
// or "" for password accounts.
func (nu *NewUser) provenanceID() string {
	switch {
	case nu.VkID != "":
		return nu.VkID
	case nu.GoogleID != "":
		return nu.GoogleID
	case nu.Email != "":
		return nu.Email
	}
	return ""
}

func countSet(vals ...string) int {
	var n int
	for _, v := range vals {
		if v != "" {
			n++
		}
	}
	return n
}

// TestUser is an invited tester: an email plus a short derived access key.
// Key uniqueness is probabilistic; only the column constraint enforces it.
type TestUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Key   string `json:"key"`
}

// UserPage is the one-to-one profile projection of a User.
type UserPage struct {
	ID                 int      `json:"id"`
	UserID             int      `json:"-"`
	Photo              string   `json:"photo"`
	About              string   `json:"about"`
	City               string   `json:"city"`
	Experience         int      `json:"experience"`
	Lections           int      `json:"lections"`
	Tasks              int      `json:"tasks"`
	Tests              int      `json:"tests"`
	LastActions        []string `json:"last_actions"`
	ActiveAchievements []string `json:"active_achievements"`
	Achievements       []string `json:"achievements"`
	ActiveBackground   string   `json:"active_background"`
}

// Challenge is the enrollment's current challenge state.
type Challenge struct {
	ID     int  `json:"id"`
	Result int  `json:"result"`
	Closed bool `json:"closed"`
}

// UserSubjects is a per-user, per-subject enrollment record. Activity maps a
// calendar date ("2006-01-02") to a score.
type UserSubjects struct {
	ID              int            `json:"id"`
	UserID          int            `json:"-"`
	SubjectCodename string         `json:"subject_codename"`
	PassedLections  []string       `json:"passed_lections"`
	PassedTests     []string       `json:"passed_tests"`
	PointsOfTests   int            `json:"points_of_tests"`
	Tasks           int            `json:"tasks"`
	Experience      int            `json:"experience"`
	Activity        map[string]int `json:"activity"`
	NowChallenge    Challenge      `json:"now_challenge"`
}

// UserActivity is a per-user, per-date counter record.
type UserActivity struct {
	ID       int    `json:"id"`
	UserID   int    `json:"-"`
	Date     string `json:"date"` // 2006-01-02
	Lections int    `json:"lections"`
	Tasks    int    `json:"tasks"`
}
