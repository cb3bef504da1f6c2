package session

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// SessionController exposes the session actions over HTTP for the client
// app's own route handlers. Every request gets an isolated store wired to a
// request-scoped cookie jar, so two requests never share mutable session
// state and the cookie mirror follows the same reconciliation rules as any
// other embedding.
type SessionController struct {
	Debug  bool
	Client AuthClient
	Config Config
	Logger Logger
}

type SessionControllerOption func(*SessionController) *SessionController

func WithControllerLogger(logger Logger) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Logger = logger
		return c
	}
}

func WithControllerConfig(cfg Config) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Config = cfg
		return c
	}
}

func WithControllerDebug(debug bool) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Debug = debug
		return c
	}
}

func NewSessionController(client AuthClient, opts ...SessionControllerOption) *SessionController {
	c := &SessionController{
		Client: client,
		Config: DefaultConfig(),
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Client == nil {
		panic("Missing AuthClient in session controller...")
	}

	return c
}

// RegisterSessionRoutes mounts the session endpoints on the given router.
func RegisterSessionRoutes[T any](app router.Router[T], controller *SessionController) {
	app.Post("/login", controller.LoginPost).SetName("session.login")
	app.Post("/register", controller.RegisterPost).SetName("session.register")
	app.Post("/activate", controller.ActivatePost).SetName("session.activate")
	app.Post("/logout", controller.Logout).SetName("session.logout")
	app.Get("/me", controller.Me).SetName("session.me")
}

// session builds the per-request store/synchronizer pair. The synchronizer
// immediately adopts whatever the request cookie holds, which is the HTTP
// equivalent of the startup reconciliation pass.
func (a *SessionController) session(ctx router.Context) (*Store, *Synchronizer, *recordingNavigator) {
	store := NewStore(a.Client).WithLogger(a.Logger)
	nav := &recordingNavigator{path: ctx.Path()}
	sync := NewSynchronizer(store, NewContextCookieJar(ctx), a.Config).
		WithLogger(a.Logger).
		WithNavigator(nav).
		WithContext(ctx.Context())
	return store, sync, nav
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

// ActivateRequest payload
type ActivateRequest struct {
	Key string `form:"key" json:"key"`
}

// Validate will run validation rules
func (r ActivateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
	)
}

func (a *SessionController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.validationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("login payload", "payload", print.MaybePrettyJSON(payload))
	}

	store, _, _ := a.session(ctx)

	if err := store.Login(ctx.Context(), payload.Email, payload.Password); err != nil {
		return a.actionError(ctx, err)
	}

	redirect := ctx.Query(a.Config.GetReturnToParam(), "")
	if redirect == "" {
		redirect = a.Config.GetProfilePath()
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"user":     store.CurrentUser(),
		"redirect": redirect,
	})
}

func (a *SessionController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.validationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	store, _, _ := a.session(ctx)

	if err := store.Register(ctx.Context(), payload.Name, payload.Email, payload.Password); err != nil {
		return a.actionError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, router.ViewContext{
		"user": store.CurrentUser(),
	})
}

func (a *SessionController) ActivatePost(ctx router.Context) error {
	payload := new(ActivateRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.validationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	store, sync, _ := a.session(ctx)
	sync.OnStartup(ctx.Context())

	if sync.IsActivated() {
		// already activated, nothing to do
		return ctx.JSON(fiber.StatusOK, router.ViewContext{
			"user": store.CurrentUser(),
		})
	}

	if err := store.ActivateAccount(ctx.Context(), payload.Key); err != nil {
		return a.actionError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"user": store.CurrentUser(),
	})
}

func (a *SessionController) Logout(ctx router.Context) error {
	_, sync, _ := a.session(ctx)
	sync.Logout()

	return ctx.Redirect("/", http.StatusSeeOther)
}

// Me rehydrates the session from the request cookie and returns the current
// identity and profile. A rejected token produces the same teardown and
// redirect the client runtime performs on load.
func (a *SessionController) Me(ctx router.Context) error {
	store, sync, nav := a.session(ctx)
	sync.OnStartup(ctx.Context())

	if target := nav.target(); target != "" {
		return ctx.Redirect(target, http.StatusFound)
	}

	user := store.CurrentUser()
	if user == nil {
		return a.actionError(ctx, ErrNoSessionToken)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"user":    user,
		"profile": store.Profile(),
	})
}

func (a *SessionController) validationError(ctx router.Context, err error) error {
	return ctx.JSON(fiber.StatusUnprocessableEntity, router.ViewContext{
		"error": err.Error(),
	})
}

func (a *SessionController) actionError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Info(
		"session action error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", ctx.Path(),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return ctx.JSON(status, router.ViewContext{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// recordingNavigator captures the redirect requested by the synchronizer's
// recovery path so the handler can turn it into an HTTP response.
type recordingNavigator struct {
	path       string
	redirectTo string
}

func (n *recordingNavigator) Path() string { return n.path }

func (n *recordingNavigator) Redirect(path string) { n.redirectTo = path }

func (n *recordingNavigator) target() string { return n.redirectTo }
