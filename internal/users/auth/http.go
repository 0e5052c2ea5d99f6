// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/platform/middleware"
	requestutil "github.com/HacMan137/BackSite/internal/platform/request"
	"github.com/HacMan137/BackSite/internal/platform/respond"
	"github.com/HacMan137/BackSite/internal/platform/validate"
	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

// # Definitions & Constructors

// Handler implements the /api/user endpoints.
type Handler struct {
	service      *Service
	sessions     middleware.SessionValidator
	resolver     middleware.PermissionResolver
	cookieMaxAge time.Duration
	cookieSecure bool
}

/*
NewHandler constructs a new [Handler].

Parameters:
  - service: *Service
  - sessions: middleware.SessionValidator (usually the same *session.Manager the service uses)
  - resolver: middleware.PermissionResolver
  - cookieMaxAge: time.Duration (session cookie lifetime, matches the session TTL)
  - cookieSecure: bool (sets the Secure attribute; enable behind TLS)
*/
func NewHandler(
	service *Service,
	sessions middleware.SessionValidator,
	resolver middleware.PermissionResolver,
	cookieMaxAge time.Duration,
	cookieSecure bool,
) *Handler {
	return &Handler{
		service:      service,
		sessions:     sessions,
		resolver:     resolver,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
	}
}

// # Request Schemas

var (
	usernameRule = validate.All(validate.MinLen(3), validate.MaxLen(64))
	passwordRule = validate.MinLen(8)

	registerSchema = validate.Schema{
		validate.Require(account.FieldUsername, validate.TypeString).With(usernameRule),
		validate.Require(account.FieldEmail, validate.TypeString).
			Matching(validate.EmailPattern, "email must be a valid email address"),
		validate.Require(account.FieldPassword, validate.TypeString).With(passwordRule),
	}

	loginSchema = validate.Schema{
		validate.Require(account.FieldUsername, validate.TypeString),
		validate.Require(account.FieldPassword, validate.TypeString),
	}

	verifySchema = validate.Schema{
		validate.Require(account.FieldUsername, validate.TypeString),
		validate.Require(account.FieldPassword, validate.TypeString),
		validate.Require(account.FieldSecret, validate.TypeString),
	}

	changePasswordSchema = validate.Schema{
		validate.Require(account.FieldOldPassword, validate.TypeString),
		validate.Require(account.FieldNewPassword, validate.TypeString).With(passwordRule),
	}

	grantSchema = validate.Schema{
		validate.Require(fieldPermission, validate.TypeString),
	}

	joinSchema = validate.Schema{
		validate.Require(fieldGroup, validate.TypeString),
	}
)

const (
	fieldPermission  = "permission"
	fieldGroup       = "group"
	fieldPermissions = "permissions"
	fieldGroups      = "groups"
	paramUsername    = "username"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Secret   string `json:"secret"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Routes returns a [chi.Router] mounted at /api/user.
//
// # Endpoints
//   - POST   /                      : Register
//   - POST   /session               : Login
//   - DELETE /session               : Logout
//   - POST   /verify                : Verify email and sign in
//   - POST   /verification          : Re-send the verification email
//   - GET    /                      : Current user and effective permissions
//   - PUT    /password              : Change password
//   - POST   /{username}/permissions : Grant a permission (ModifyUserPermissions)
//   - POST   /{username}/groups      : Join a group (ModifyUserPermissions)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.With(validate.Body(registerSchema)).Post("/", handler.register)
	router.With(validate.Body(loginSchema)).Post("/session", handler.login)
	router.Delete("/session", handler.logout)
	router.With(validate.Body(verifySchema)).Post("/verify", handler.verify)
	router.With(validate.Body(loginSchema)).Post("/verification", handler.resendVerification)

	// Any valid session
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(handler.sessions, handler.resolver))
		r.Get("/", handler.me)
		r.With(validate.Body(changePasswordSchema)).Put("/password", handler.changePassword)
	})

	// Administration
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermissions(handler.sessions, handler.resolver, permission.ModifyUserPermissions))
		r.With(validate.Body(grantSchema)).Post("/{username}/permissions", handler.grant)
		r.With(validate.Body(joinSchema)).Post("/{username}/groups", handler.join)
	})

	return router
}

/*
Register creates a new account and queues its verification email.

POST /api/user

Response:
  - 201: {user}
  - 400: VALIDATION_ERROR
  - 409: CONFLICT (email or username in use)
  - 503: BACKEND_UNAVAILABLE (account created, email not queued)
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Payload{account.FieldUser: user.View()})
}

/*
Login authenticates a verified user and sets the session cookie.

POST /api/user/session

Response:
  - 200: {user}
  - 401: UNAUTHORIZED
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, issued, err := handler.service.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, issued)
	respond.OK(writer, respond.Payload{account.FieldUser: user.View()})
}

/*
Logout deletes the current session and clears the cookie.

DELETE /api/user/session

Response:
  - 200: {}
  - 404: "Couldn't find a session"
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Logout(request.Context(), requestutil.SessionToken(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.Success(writer)
}

/*
Verify marks the account verified and signs the user in.

POST /api/user/verify

Response:
  - 200: {user}
  - 401: UNAUTHORIZED (wrong password or secret)
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, issued, err := handler.service.Verify(request.Context(), input.Username, input.Password, input.Secret)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, issued)
	respond.OK(writer, respond.Payload{account.FieldUser: user.View()})
}

// me answers GET /api/user with the profile of the session's user.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.Me(request.Context(), principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{
		account.FieldUser: profile.User,
		fieldPermissions:  profile.Permissions,
		fieldGroups:       profile.Groups,
	})
}

/*
ChangePassword replaces the password and revokes every session of the user,
including the current one.

PUT /api/user/password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangePassword(request.Context(), principal.UserID, input.OldPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.Success(writer)
}

/*
ResendVerification queues the verification email again.

POST /api/user/verification

Response:
  - 200: {success}
  - 401: UNAUTHORIZED
  - 409: CONFLICT (already verified)
  - 503: BACKEND_UNAVAILABLE
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ResendVerification(request.Context(), input.Username, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer)
}

func (handler *Handler) grant(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Permission string `json:"permission"`
	}
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.GrantPermission(request.Context(), requestutil.Param(request, paramUsername), input.Permission); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer)
}

func (handler *Handler) join(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Group string `json:"group"`
	}
	if err := validate.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.JoinGroup(request.Context(), requestutil.Param(request, paramUsername), input.Group); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer)
}

// # Cookies

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, issued *session.Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    issued.Token,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(handler.cookieMaxAge / time.Second),
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
