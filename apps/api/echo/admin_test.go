package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/facexem/backend/core"
	"github.com/facexem/backend/core/admin"
	"github.com/facexem/backend/core/author"
	"github.com/facexem/backend/core/catalog"
	"github.com/facexem/backend/core/user"
	emailsvc "github.com/facexem/backend/services/email"
	inmemdb "github.com/facexem/backend/storage/database/inmem"
)

type quietLogger struct{}

func (quietLogger) Debug(string, ...interface{}) {}
func (quietLogger) Info(string, ...interface{})  {}
func (quietLogger) Warn(string, ...interface{})  {}
func (quietLogger) Error(string, ...interface{}) {}
func (quietLogger) Fatal(string, ...interface{}) {}

// catalogFixtureRepo adds the task fixture helper of the in-memory repository
// to the catalog interface.
type catalogFixtureRepo interface {
	catalog.Repository
	CreateTask(ctx context.Context, task catalog.Task) (catalog.Task, error)
}

type testEnv struct {
	server Server

	adminRepo admin.Repository
	usrRepo   user.Repository
	catRepo   catalogFixtureRepo

	adm admin.Admin
}

const (
	testAdminKey = "sharedsecret"
	testAdminPwd = "passwd"
)

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Facexem",
		SecretKey: "test-secret",
		AdminKey:  testAdminKey,
		FromEmail: "noreply@test.cd",
	}

	db := inmemdb.NewDB()
	adminRepo := inmemdb.NewAdminRepository(db)
	usrRepo := inmemdb.NewUserRepository(db)
	catRepo := inmemdb.NewCatalogRepository(db)
	authorRepo := inmemdb.NewAuthorRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	adm := admin.Admin{Email: "admin@test.cd", Token: "admtok"}
	if err := adm.SetPassword(testAdminPwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	adm, err := adminRepo.CreateAdmin(context.Background(), adm)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     quietLogger{},
		AdminSvc:   admin.NewService(adminRepo, conf),
		UserSvc:    user.NewService(usrRepo, mailSvc, conf),
		CatalogSvc: catalog.NewService(catRepo),
		AuthorSvc:  author.NewService(authorRepo, usrRepo),
		Validate:   validate,
		Translator: translator,
	})

	return &testEnv{
		server:    server,
		adminRepo: adminRepo,
		usrRepo:   usrRepo,
		catRepo:   catRepo,
		adm:       adm,
	}
}

func (env *testEnv) do(t *testing.T, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) creds() map[string]interface{} {
	return map[string]interface{}{"token": env.adm.Token, "code": testAdminKey}
}

func checkEnvelope(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
	var resp resultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling %q failed: %v", rec.Body.String(), err)
	}
	if resp.Result != want {
		t.Errorf("result = %q, want %q", resp.Result, want)
	}
}

func jsonEqual(t *testing.T, b []byte, want interface{}) {
	t.Helper()
	wantBytes, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	var j1, j2 interface{}
	if err := json.Unmarshal(b, &j1); err != nil {
		t.Fatalf("unmarshalling %q failed: %v", b, err)
	}
	if err := json.Unmarshal(wantBytes, &j2); err != nil {
		t.Fatalf("unmarshalling %q failed: %v", wantBytes, err)
	}
	if !reflect.DeepEqual(j1, j2) {
		t.Errorf("data = %s, want %s", b, wantBytes)
	}
}

func Test_adminAPI_login(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name string
		body map[string]interface{}
		want string // "" means success: the bare token string
	}{
		{name: "empty body", body: map[string]interface{}{}, want: "Error"},
		{name: "missing key", body: map[string]interface{}{"email": "admin@test.cd", "pass": testAdminPwd}, want: "Error"},
		{name: "unknown email", body: map[string]interface{}{"email": "nope@test.cd", "pass": testAdminPwd, "key": testAdminKey}, want: "Error"},
		{name: "bad password", body: map[string]interface{}{"email": "admin@test.cd", "pass": "nope", "key": testAdminKey}, want: "Error"},
		{name: "bad key", body: map[string]interface{}{"email": "admin@test.cd", "pass": testAdminPwd, "key": "nope"}, want: "Error"},
		{name: "ok", body: map[string]interface{}{"email": "admin@test.cd", "pass": testAdminPwd, "key": testAdminKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "/api/admin/login", tt.body)
			if tt.want != "" {
				checkEnvelope(t, rec, tt.want)
				return
			}
			if rec.Code != http.StatusOK {
				t.Errorf("code = %d, want 200", rec.Code)
			}
			if token := rec.Body.String(); token != env.adm.Token {
				t.Errorf("token = %q, want %q", token, env.adm.Token)
			}
			if len(rec.Result().Cookies()) == 0 {
				t.Error("no session cookie set")
			}
		})
	}
}

func Test_adminAPI_gate(t *testing.T) {
	env := setup(t)

	t.Run("missing credentials", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/info", map[string]interface{}{}), "Error")
	})
	t.Run("unknown token", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/info", map[string]interface{}{"token": "nope", "code": testAdminKey}), "Error")
	})
	t.Run("bad code without session", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/info", map[string]interface{}{"token": env.adm.Token, "code": "nope"}), "Error")
	})
	t.Run("good code", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/info", env.creds()), "Success")
	})

	t.Run("session path after login", func(t *testing.T) {
		rec := env.do(t, "/api/admin/login", map[string]interface{}{
			"email": "admin@test.cd", "pass": testAdminPwd, "key": testAdminKey,
		})
		cookies := rec.Result().Cookies()
		if len(cookies) == 0 {
			t.Fatal("login did not set a session cookie")
		}
		// a bad code passes once the session holds the bearer token
		body := map[string]interface{}{"token": env.adm.Token, "code": "nope"}
		checkEnvelope(t, env.do(t, "/api/admin/info", body, cookies...), "Success")

		// but a foreign token still fails even with a live session
		body = map[string]interface{}{"token": "nope", "code": "nope"}
		checkEnvelope(t, env.do(t, "/api/admin/info", body, cookies...), "Error")
	})
}

func Test_adminAPI_lists(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	t.Run("empty DB yields empty arrays", func(t *testing.T) {
		jsonEqual(t, env.do(t, "/api/admin/get_all", env.creds()).Body.Bytes(), []interface{}{})
		jsonEqual(t, env.do(t, "/api/admin/get_all_improved_email", env.creds()).Body.Bytes(), []interface{}{})
	})

	usr, err := env.usrRepo.CreateUser(ctx, user.User{
		Name: "Awe", Email: "awe@test.cd", Token: "usrtok", PublicKey: "pubkey1", Role: user.RoleUser,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	tu, err := env.usrRepo.CreateTestUser(ctx, user.TestUser{Email: "tester@test.cd", Key: "abc123"})
	if err != nil {
		t.Fatalf("CreateTestUser() failed: %v", err)
	}

	t.Run("get_all", func(t *testing.T) {
		rec := env.do(t, "/api/admin/get_all", env.creds())
		jsonEqual(t, rec.Body.Bytes(), []userListItem{{
			ID: usr.ID, Name: usr.Name, Email: usr.Email, Token: usr.Token, Role: usr.Role,
		}})
	})
	t.Run("get_all_improved_email", func(t *testing.T) {
		rec := env.do(t, "/api/admin/get_all_improved_email", env.creds())
		jsonEqual(t, rec.Body.Bytes(), []user.TestUser{tu})
	})
	t.Run("rejected without credentials", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/get_all", map[string]interface{}{}), "Error")
	})
}

func Test_adminAPI_task(t *testing.T) {
	env := setup(t)

	task, err := env.catRepo.CreateTask(context.Background(), catalog.Task{
		Content: "2+2", Answer: "4", Description: "arithmetic",
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}

	t.Run("missing task_id", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/get_task", env.creds()), "Error: need task_id")
	})
	t.Run("unknown task", func(t *testing.T) {
		body := env.creds()
		body["task_id"] = task.ID + 100
		checkEnvelope(t, env.do(t, "/api/admin/get_task", body), "Error: task is not exist")
	})
	t.Run("found", func(t *testing.T) {
		body := env.creds()
		body["task_id"] = task.ID
		rec := env.do(t, "/api/admin/get_task", body)
		jsonEqual(t, rec.Body.Bytes(), task)
	})
	t.Run("rejected before task_id check", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/get_task", map[string]interface{}{"token": "nope", "code": "nope"}), "Error")
	})
}

func Test_adminAPI_activitySnapshot(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	defer func(orig func() time.Time) { user.NowFunc = orig }(user.NowFunc)
	now := time.Date(2021, 3, 14, 12, 0, 0, 0, time.UTC)
	user.NowFunc = func() time.Time { return now }

	// the snapshot target is looked up by the same token the gate checks, so
	// the fixture user carries the admin's bearer token
	usr, err := env.usrRepo.CreateUser(ctx, user.User{Name: "Awe", Token: env.adm.Token, PublicKey: "pubkey"})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	enr, err := env.usrRepo.CreateUserSubject(ctx, user.UserSubjects{
		UserID: usr.ID, SubjectCodename: "math", Activity: map[string]int{},
	})
	if err != nil {
		t.Fatalf("CreateUserSubject() failed: %v", err)
	}

	t.Run("missing subject", func(t *testing.T) {
		checkEnvelope(t, env.do(t, "/api/admin/smth", env.creds()), "Error")
	})
	t.Run("not enrolled", func(t *testing.T) {
		body := env.creds()
		body["subject"] = "hist"
		checkEnvelope(t, env.do(t, "/api/admin/smth", body), "Error")
	})
	t.Run("ok", func(t *testing.T) {
		body := env.creds()
		body["subject"] = "math"
		checkEnvelope(t, env.do(t, "/api/admin/smth", body), "Success")

		subs, err := env.usrRepo.GetUserSubjects(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetUserSubjects() failed: %v", err)
		}
		if len(subs) != 1 || subs[0].ID != enr.ID {
			t.Fatalf("enrollments = %+v, want the single fixture", subs)
		}
		activity := subs[0].Activity
		if len(activity) != 7 {
			t.Fatalf("len(activity) = %d, want 7", len(activity))
		}
		for i := 0; i < 7; i++ {
			date := now.AddDate(0, 0, -i).Format("2006-01-02")
			val, ok := activity[date]
			if !ok {
				t.Errorf("missing date %s", date)
				continue
			}
			if val < 0 || val > 100 {
				t.Errorf("activity[%s] = %d, want within [0, 100]", date, val)
			}
		}
	})
}

func Test_adminAPI_defineSubject(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	sub, err := env.catRepo.CreateSubject(ctx, catalog.Subject{Codename: "math", Name: "Mathematics", Access: 0})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}

	t.Run("not admin", func(t *testing.T) {
		body := map[string]interface{}{"token": "nope", "code": "nope", "codename": "math", "define": 1}
		checkEnvelope(t, env.do(t, "/api/admin/define-subject", body), "Error: you aren't admin")
	})
	t.Run("missing fields", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "math"
		checkEnvelope(t, env.do(t, "/api/admin/define-subject", body), "Error: required subject's codename and defined value")
	})
	t.Run("unknown subject", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "hist"
		body["define"] = 1
		checkEnvelope(t, env.do(t, "/api/admin/define-subject", body), "Error: subject is not exist")
	})
	t.Run("ok", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "math"
		body["define"] = 1
		checkEnvelope(t, env.do(t, "/api/admin/define-subject", body), "Success")

		got, err := env.catRepo.GetSubjectByCodename(ctx, "math")
		if err != nil {
			t.Fatalf("GetSubjectByCodename() failed: %v", err)
		}
		if got.Access != 1 {
			t.Errorf("access = %d, want 1", got.Access)
		}
		// only the access flag moves
		if got.Name != sub.Name || got.ID != sub.ID {
			t.Errorf("subject mutated beyond access: %+v", got)
		}
	})
	t.Run("define zero closes again", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "math"
		body["define"] = 0
		checkEnvelope(t, env.do(t, "/api/admin/define-subject", body), "Success")

		got, _ := env.catRepo.GetSubjectByCodename(ctx, "math")
		if got.Access != 0 {
			t.Errorf("access = %d, want 0", got.Access)
		}
	})
}

func Test_adminAPI_createSubject(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	t.Run("missing name", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "math"
		checkEnvelope(t, env.do(t, "/api/admin/create-subject", body), "Error")
	})
	t.Run("codename format", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "Math!"
		body["name"] = "Mathematics"
		checkEnvelope(t, env.do(t, "/api/admin/create-subject", body), "Error")
	})
	t.Run("ok", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "math"
		body["name"] = "Mathematics"
		checkEnvelope(t, env.do(t, "/api/admin/create-subject", body), "Success")

		got, err := env.catRepo.GetSubjectByCodename(ctx, "math")
		if err != nil {
			t.Fatalf("GetSubjectByCodename() failed: %v", err)
		}
		if got.Name != "Mathematics" || got.Access != 0 {
			t.Errorf("subject = %+v, want closed Mathematics", got)
		}
	})
	t.Run("duplicate codename", func(t *testing.T) {
		body := env.creds()
		body["codename"] = "math"
		body["name"] = "Mathematics again"
		checkEnvelope(t, env.do(t, "/api/admin/create-subject", body), "Error")
	})
}

func Test_adminAPI_createAuthor(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	if _, err := env.usrRepo.CreateUser(ctx, user.User{Name: "Awe", Token: "usrtok", PublicKey: "pubkey"}); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	t.Run("missing pass", func(t *testing.T) {
		body := env.creds()
		body["key"] = "pubkey"
		checkEnvelope(t, env.do(t, "/api/admin/create-author", body), "Error")
	})
	t.Run("unknown public key", func(t *testing.T) {
		body := env.creds()
		body["key"] = "nope"
		body["pass"] = "passwd"
		checkEnvelope(t, env.do(t, "/api/admin/create-author", body), "Error")
	})
	t.Run("ok", func(t *testing.T) {
		body := env.creds()
		body["key"] = "pubkey"
		body["pass"] = "passwd"
		body["subjects"] = []string{"math", "rus"}
		checkEnvelope(t, env.do(t, "/api/admin/create-author", body), "Success")
	})
	t.Run("already an author", func(t *testing.T) {
		body := env.creds()
		body["key"] = "pubkey"
		body["pass"] = "other"
		checkEnvelope(t, env.do(t, "/api/admin/create-author", body), "Error")
	})
}

func Test_adminAPI_createTestUser(t *testing.T) {
	env := setup(t)

	t.Run("invalid email", func(t *testing.T) {
		body := env.creds()
		body["email"] = "not-an-email"
		checkEnvelope(t, env.do(t, "/api/admin/create-test-user", body), "Error")
	})
	t.Run("ok", func(t *testing.T) {
		body := env.creds()
		body["email"] = "tester@test.cd"
		rec := env.do(t, "/api/admin/create-test-user", body)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d, want 200", rec.Code)
		}
		var tu user.TestUser
		if err := json.Unmarshal(rec.Body.Bytes(), &tu); err != nil {
			t.Fatalf("unmarshalling %q failed: %v", rec.Body.String(), err)
		}
		if tu.Email != "tester@test.cd" || tu.Key == "" {
			t.Errorf("test user = %+v, want the invited email with a derived key", tu)
		}

		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages))
		}
		msg := emailsvc.SentMessages[0]
		if len(msg.To) != 1 || msg.To[0].Address != tu.Email {
			t.Errorf("To = %v, want the invited email", msg.To)
		}
	})
	t.Run("duplicate email", func(t *testing.T) {
		body := env.creds()
		body["email"] = "tester@test.cd"
		checkEnvelope(t, env.do(t, "/api/admin/create-test-user", body), "Error")
	})
}
