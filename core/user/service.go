package user

import (
	"context"
	"fmt"
	"math/rand"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/facexem/backend/core"
)

const activityDateFormat = "2006-01-02"

var (
	randIntn = rand.Intn // mockable

	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrVkIDExists         = errors.New("a user with this vk id already exists")
	ErrGoogleIDExists     = errors.New("a user with this google id already exists")
	ErrTestUserExists     = errors.New("a test user with this email already exists")
	ErrEnrollmentNotFound = errors.New("user is not enrolled in this subject")

	errProvenance = errors.New("exactly one of password, email, vk_id or google_id is required")
)

type (
	Repository interface {
		CheckUserUniqueness(ctx context.Context, email, vkID, googleID string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByToken(ctx context.Context, token string) (User, error)
		GetUserByPublicKey(ctx context.Context, key string) (User, error)

		CheckTestUserUniqueness(ctx context.Context, email string) error
		CreateTestUser(ctx context.Context, tu TestUser) (TestUser, error)
		QueryAllTestUsers(ctx context.Context) ([]TestUser, error)

		CreateUserSubject(ctx context.Context, sub UserSubjects) (UserSubjects, error)
		GetUserSubjects(ctx context.Context, userID int) ([]UserSubjects, error)
		// UpdateUserSubjectActivity overwrites the Activity map of one
		// enrollment and leaves every other field unchanged.
		UpdateUserSubjectActivity(ctx context.Context, enrollmentID int, activity map[string]int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		secret  string
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, secret: conf.SecretKey}
}

func (svc *Service) checkUniqueness(ctx context.Context, nu NewUser) error {
	if err := svc.repo.CheckUserUniqueness(ctx, nu.Email, nu.VkID, nu.GoogleID); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrEmailExists:
			field = "email"
		case ErrVkIDExists:
			field = "vk_id"
		case ErrGoogleIDExists:
			field = "google_id"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.checkUniqueness(ctx, nu); err != nil {
		return User{}, err
	}

	usr := User{
		Name:     nu.Name,
		Email:    nu.Email,
		VkID:     nu.VkID,
		GoogleID: nu.GoogleID,
		Role:     nu.Role,
	}
	if usr.Role == 0 {
		usr.Role = RoleUser
	}
	if nu.Password != "" {
		if err := usr.SetPassword(nu.Password); err != nil {
			return User{}, err
		}
		usr.PublicKey = MakePublicKey(MakeAuthToken(nu.Name, svc.secret))
	} else {
		usr.Token = MakeAuthToken(nu.provenanceID(), svc.secret)
		usr.PublicKey = MakePublicKey(usr.Token)
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByToken(ctx context.Context, token string) (User, error) {
	return svc.repo.GetUserByToken(ctx, token)
}

func (svc *Service) GetByPublicKey(ctx context.Context, key string) (User, error) {
	return svc.repo.GetUserByPublicKey(ctx, key)
}

// CreateTestUser invites a tester: derives the short access key from the email
// and mails it to them.
func (svc *Service) CreateTestUser(ctx context.Context, email string) (TestUser, error) {
	email = core.CleanString(email, true /* lower */)
	if err := svc.repo.CheckTestUserUniqueness(ctx, email); err != nil {
		if errors.Cause(err) == ErrTestUserExists {
			return TestUser{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return TestUser{}, err
	}

	tu, err := svc.repo.CreateTestUser(ctx, TestUser{Email: email, Key: MakeTestKey(email)})
	if err != nil {
		return TestUser{}, errors.Wrap(err, "creating test user")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: tu.Email}},
		Subject: "Your test access key",
		BodyStr: fmt.Sprintf("Welcome! Your access key is: %s", tu.Key),
	})
	return tu, nil
}

func (svc *Service) QueryAllTestUsers(ctx context.Context) ([]TestUser, error) {
	return svc.repo.QueryAllTestUsers(ctx)
}

// EnrollSubject creates an empty enrollment record for the subject.
func (svc *Service) EnrollSubject(ctx context.Context, userID int, codename string) (UserSubjects, error) {
	return svc.repo.CreateUserSubject(ctx, UserSubjects{
		UserID:          userID,
		SubjectCodename: codename,
		Activity:        map[string]int{},
	})
}

// PlaceholderSnapshot overwrites the activity map of the user's enrollment in
// the given subject with placeholder data: the 7 consecutive calendar dates
// ending today, each mapped to an independent random score in [0, 100].
// The values are NOT derived from real activity.
func (svc *Service) PlaceholderSnapshot(ctx context.Context, token, codename string) error {
	usr, err := svc.repo.GetUserByToken(ctx, token)
	if err != nil {
		return err
	}

	subs, err := svc.repo.GetUserSubjects(ctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	var enrollment *UserSubjects
	for i := range subs {
		if subs[i].SubjectCodename == codename {
			enrollment = &subs[i]
			break
		}
	}
	if enrollment == nil {
		return ErrEnrollmentNotFound
	}

	return svc.repo.UpdateUserSubjectActivity(ctx, enrollment.ID, placeholderActivity(NowFunc()))
}

// placeholderActivity maps the last 7 calendar dates (ending on `now`'s date,
// inclusive) to random ints in [0, 100].
func placeholderActivity(now time.Time) map[string]int {
	activity := make(map[string]int, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		activity[date.Format(activityDateFormat)] = randIntn(101)
	}
	return activity
}
