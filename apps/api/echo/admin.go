package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/facexem/backend/core"
	"github.com/facexem/backend/core/admin"
	"github.com/facexem/backend/core/author"
	"github.com/facexem/backend/core/catalog"
	"github.com/facexem/backend/core/user"
)

// Every admin route is a POST carrying JSON credentials in the body, and every
// reply goes out with HTTP 200; the envelope's "result" field carries the
// outcome. Clients of the legacy console depend on both.
type adminAPI struct {
	adminSvc   *admin.Service
	userSvc    *user.Service
	catalogSvc *catalog.Service
	authorSvc  *author.Service
	validate   *validator.Validate
}

func registerAdminAPI(g *echo.Group, api adminAPI) {
	g.POST("/login", api.login)
	g.POST("/info", api.info)
	g.POST("/get_all_improved_email", api.allTestUsers)
	g.POST("/get_all", api.allUsers)
	g.POST("/get_task", api.task)
	g.POST("/smth", api.activitySnapshot)
	g.POST("/define-subject", api.defineSubject)
	g.POST("/create-subject", api.createSubject)
	g.POST("/create-author", api.createAuthor)
	g.POST("/create-test-user", api.createTestUser)
}

type (
	resultResponse struct {
		Result string `json:"result"`
	}

	loginRequest struct {
		Email string `json:"email" validate:"required"`
		Pass  string `json:"pass" validate:"required"`
		Key   string `json:"key" validate:"required"`
	}
	taskRequest struct {
		admin.Credentials
		TaskID *int `json:"task_id"`
	}
	snapshotRequest struct {
		// Token doubles as the gate credential and the target user's auth
		// token, as the legacy console sends it.
		admin.Credentials
		Subject string `json:"subject"`
	}
	defineSubjectRequest struct {
		admin.Credentials
		Codename string `json:"codename"`
		Define   *int   `json:"define"`
	}
	createSubjectRequest struct {
		admin.Credentials
		Codename string `json:"codename" validate:"required,codename"`
		Name     string `json:"name" validate:"required"`
	}
	createAuthorRequest struct {
		admin.Credentials
		Key      string   `json:"key" validate:"required"`
		Pass     string   `json:"pass" validate:"required"`
		Subjects []string `json:"subjects"`
	}
	createTestUserRequest struct {
		admin.Credentials
		Email string `json:"email" validate:"required,email"`
	}

	// userListItem is the /get_all projection; it leaves out the password
	// hash and oauth ids.
	userListItem struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Token string `json:"token"`
		Role  int    `json:"role"`
	}
)

var (
	successResult = resultResponse{Result: "Success"}
	errorResult   = resultResponse{Result: "Error"}
)

// verify runs the admin gate for the request's credentials against its cookie
// session. Callers translate ErrNotAdmin into their route's error envelope.
func (api *adminAPI) verify(ctx echo.Context, creds admin.Credentials) error {
	_, err := api.adminSvc.Verify(ctx.Request().Context(), creds, getSession(ctx))
	return err
}

func isNotAdmin(err error) bool { return errors.Cause(err) == admin.ErrNotAdmin }

func (api *adminAPI) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.validate.Struct(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}

	token, err := api.adminSvc.Login(ctx.Request().Context(), data.Email, data.Pass, data.Key, getSession(ctx))
	if err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return errors.Wrap(err, "admin login")
	}
	// the console expects the bare token string, not a JSON document
	return ctx.String(http.StatusOK, token)
}

func (api *adminAPI) info(ctx echo.Context) error {
	var creds admin.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, creds); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}
	return ctx.JSON(http.StatusOK, successResult)
}

func (api *adminAPI) allTestUsers(ctx echo.Context) error {
	var creds admin.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, creds); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}

	tus, err := api.userSvc.QueryAllTestUsers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying test users")
	}
	if tus == nil {
		tus = []user.TestUser{}
	}
	return ctx.JSON(http.StatusOK, tus)
}

func (api *adminAPI) allUsers(ctx echo.Context) error {
	var creds admin.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, creds); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}

	usrs, err := api.userSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	items := make([]userListItem, 0, len(usrs))
	for _, usr := range usrs {
		items = append(items, userListItem{
			ID:    usr.ID,
			Name:  usr.Name,
			Email: usr.Email,
			Token: usr.Token,
			Role:  usr.Role,
		})
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *adminAPI) task(ctx echo.Context) error {
	var data taskRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, data.Credentials); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}
	if data.TaskID == nil {
		return ctx.JSON(http.StatusOK, resultResponse{Result: "Error: need task_id"})
	}

	task, err := api.catalogSvc.GetTask(ctx.Request().Context(), *data.TaskID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrTaskNotFound {
			return ctx.JSON(http.StatusOK, resultResponse{Result: "Error: task is not exist"})
		}
		return errors.Wrap(err, "getting task")
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *adminAPI) activitySnapshot(ctx echo.Context) error {
	var data snapshotRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, data.Credentials); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}
	if data.Subject == "" {
		return ctx.JSON(http.StatusOK, errorResult)
	}

	err := api.userSvc.PlaceholderSnapshot(ctx.Request().Context(), data.Token, data.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, user.ErrEnrollmentNotFound:
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return errors.Wrap(err, "writing activity snapshot")
	}
	return ctx.JSON(http.StatusOK, successResult)
}

func (api *adminAPI) defineSubject(ctx echo.Context) error {
	var data defineSubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, data.Credentials); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, resultResponse{Result: "Error: you aren't admin"})
		}
		return err
	}
	if data.Codename == "" || data.Define == nil {
		return ctx.JSON(http.StatusOK, resultResponse{Result: "Error: required subject's codename and defined value"})
	}

	err := api.catalogSvc.DefineAccess(ctx.Request().Context(), data.Codename, *data.Define)
	if err != nil {
		if errors.Cause(err) == catalog.ErrSubjectNotFound {
			return ctx.JSON(http.StatusOK, resultResponse{Result: "Error: subject is not exist"})
		}
		return errors.Wrap(err, "defining subject access")
	}
	return ctx.JSON(http.StatusOK, successResult)
}

func (api *adminAPI) createSubject(ctx echo.Context) error {
	var data createSubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, data.Credentials); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}
	if err := api.validate.StructPartial(&data, "Codename", "Name"); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}

	_, err := api.catalogSvc.CreateSubject(ctx.Request().Context(), data.Codename, data.Name)
	if err != nil {
		if errors.Cause(err) == catalog.ErrSubjectExists {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusOK, successResult)
}

func (api *adminAPI) createAuthor(ctx echo.Context) error {
	var data createAuthorRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, data.Credentials); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}
	if data.Key == "" || data.Pass == "" {
		return ctx.JSON(http.StatusOK, errorResult)
	}

	_, err := api.authorSvc.Create(ctx.Request().Context(), data.Key, data.Pass, data.Subjects)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, author.ErrAuthorExists:
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return errors.Wrap(err, "creating author")
	}
	return ctx.JSON(http.StatusOK, successResult)
}

func (api *adminAPI) createTestUser(ctx echo.Context) error {
	var data createTestUserRequest
	if err := ctx.Bind(&data); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}
	if err := api.verify(ctx, data.Credentials); err != nil {
		if isNotAdmin(err) {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return err
	}
	if err := api.validate.StructPartial(&data, "Email"); err != nil {
		return ctx.JSON(http.StatusOK, errorResult)
	}

	tu, err := api.userSvc.CreateTestUser(ctx.Request().Context(), data.Email)
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return ctx.JSON(http.StatusOK, errorResult)
		}
		return errors.Wrap(err, "creating test user")
	}
	return ctx.JSON(http.StatusOK, tu)
}
