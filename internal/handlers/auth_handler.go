// Package handlers implements the HTTP endpoints of the dashboard API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/badili/odk-dashboard3/internal/config"
	"github.com/badili/odk-dashboard3/internal/managers"
	"github.com/badili/odk-dashboard3/internal/schemas"
	"github.com/badili/odk-dashboard3/internal/utils"
)

// AuthHdl covers the account lifecycle: registration, activation, login,
// logout, token refresh and the two password flows.
type AuthHdl interface {
	RegisterUser(c *gin.Context)
	ActivateUser(c *gin.Context)
	ResendActivation(c *gin.Context)
	LoginUser(c *gin.Context)
	LogoutUser(c *gin.Context)
	RefreshToken(c *gin.Context)
	RecoverPassword(c *gin.Context)
	CheckNewPasswordLink(c *gin.Context)
	CompleteNewPassword(c *gin.Context)
	ChangePassword(c *gin.Context)
}

type AuthHandler struct {
	DatabaseManager managers.DatabaseMgr
	JWTManager      managers.JWTMgr
	MailManager     managers.MailMgr
	TokenManager    managers.TokenMgr
	Config          *config.Config
}

func NewAuthHandler(databaseManager managers.DatabaseMgr, jwtManager managers.JWTMgr,
	mailManager managers.MailMgr, tokenManager managers.TokenMgr, cfg *config.Config) AuthHdl {
	return &AuthHandler{
		DatabaseManager: databaseManager,
		JWTManager:      jwtManager,
		MailManager:     mailManager,
		TokenManager:    tokenManager,
		Config:          cfg,
	}
}

const userColumns = "user_id, username, first_name, last_name, email, password, created_at, activated_at, last_login"

// rowQuerier is satisfied by both the pool and an open transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// RegisterUser creates a new, inactive account and mails the activation link.
func (handler *AuthHandler) RegisterUser(c *gin.Context) {
	registrationRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.RegistrationRequest)

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	if err = checkUsernameEmailTaken(c, tx, registrationRequest.Username, registrationRequest.Email); err != nil {
		return
	}

	if !utils.GetValidator().VerifyEmail(registrationRequest.Email) {
		err = errors.New("email did not verify")
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	var hashedPassword []byte
	hashedPassword, err = bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	userId := uuid.New()
	createdAt := time.Now()

	queryString := "INSERT INTO dashboard.users (user_id, username, first_name, last_name, email, password, created_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7)"
	if _, err = tx.Exec(c.Request.Context(), queryString, userId, registrationRequest.Username,
		registrationRequest.FirstName, registrationRequest.LastName, registrationRequest.Email,
		hashedPassword, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = "INSERT INTO dashboard.user_profiles (user_id, salutation, photo_url, created_at) VALUES ($1, $2, $3, $4)"
	if _, err = tx.Exec(c.Request.Context(), queryString, userId, "", "", createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	user := &schemas.User{
		ID:       &userId,
		Username: registrationRequest.Username,
		Email:    registrationRequest.Email,
		Password: string(hashedPassword),
	}
	handler.sendActivationLink(c, user)

	userDto := &schemas.UserDTO{
		Username:  registrationRequest.Username,
		FirstName: registrationRequest.FirstName,
		LastName:  registrationRequest.LastName,
		Email:     registrationRequest.Email,
	}
	utils.WriteAndLogResponse(c, userDto, http.StatusCreated)
}

// ActivateUser consumes an activation link. A link for an already activated
// account is rejected even when the token itself would still verify.
func (handler *AuthHandler) ActivateUser(c *gin.Context) {
	user := handler.loadUserFromLink(c)
	if user == nil {
		return
	}

	if user.ActivatedAt != nil {
		utils.WriteAndLogError(c, schemas.UserAlreadyActivated, http.StatusConflict, errors.New("activation link replayed"))
		return
	}

	if !handler.TokenManager.Validate(user, c.Param(utils.TokenKey)) {
		utils.WriteAndLogError(c, schemas.InvalidLink, http.StatusForbidden, errors.New("activation token rejected"))
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	queryString := "UPDATE dashboard.users SET activated_at = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c.Request.Context(), queryString, time.Now(), user.ID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if mailErr := handler.MailManager.SendConfirmationMail(user.Email, user.Username,
		"Your account has been activated. You can now set your password and sign in."); mailErr != nil {
		utils.LogMessageWithFields(c, "warn", "Confirmation mail not sent: "+mailErr.Error())
	}

	// The state snapshot is unchanged by activation, so a fresh token lets the
	// user continue straight into the set-password step.
	nextStep := fmt.Sprintf("/api/users/new-password/%s/%s",
		handler.TokenManager.EncodeUID(*user.ID), handler.TokenManager.Issue(user))
	utils.WriteAndLogResponse(c, &schemas.ActivationDTO{Username: user.Username, NextStep: nextStep}, http.StatusOK)
}

// ResendActivation issues a fresh activation link for a not yet activated
// account. Unlike the other mails this one is the whole point of the request,
// so a mail failure is reported to the caller.
func (handler *AuthHandler) ResendActivation(c *gin.Context) {
	pool := handler.DatabaseManager.GetPool()

	user, err := fetchUser(c.Request.Context(), pool, "username", c.Param(utils.UsernameKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if user.ActivatedAt != nil {
		utils.WriteAndLogError(c, schemas.UserAlreadyActivated, http.StatusConflict, errors.New("account already activated"))
		return
	}

	link := handler.activationLink(user)
	if err = handler.MailManager.SendActivationMail(user.Email, user.Username, link); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "A new activation link has been sent."}, http.StatusOK)
}

// LoginUser authenticates the user and opens a server-side session. An
// unknown username and a wrong password produce the identical response.
func (handler *AuthHandler) LoginUser(c *gin.Context) {
	loginRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.LoginRequest)
	pool := handler.DatabaseManager.GetPool()

	user, err := fetchUser(c.Request.Context(), pool, "username", loginRequest.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if user.ActivatedAt == nil {
		utils.WriteAndLogError(c, schemas.UserNotActivated, http.StatusForbidden, errors.New("account not activated"))
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	tx := utils.BeginTransaction(c, pool)
	if tx == nil {
		return
	}
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	if err = handler.repairMissingProfile(c, tx, user); err != nil {
		return
	}

	queryString := "UPDATE dashboard.users SET last_login = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c.Request.Context(), queryString, time.Now(), user.ID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	sessionId := uuid.New()
	createdAt := time.Now()
	queryString = "INSERT INTO dashboard.sessions (session_id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)"
	if _, err = tx.Exec(c.Request.Context(), queryString, sessionId, user.ID, createdAt,
		createdAt.Add(handler.Config.SessionTTL())); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	handler.sendTokenPair(c, user, sessionId.String())
}

// LogoutUser deletes the session behind the presented token, which
// invalidates the whole token pair at once.
func (handler *AuthHandler) LogoutUser(c *gin.Context) {
	claims := c.MustGet(utils.ClaimsKey).(jwt.MapClaims)
	sessionId, _ := claims["sid"].(string)

	queryString := "DELETE FROM dashboard.sessions WHERE session_id = $1"
	if _, err := handler.DatabaseManager.GetPool().Exec(c.Request.Context(), queryString, sessionId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "You have been logged out."}, http.StatusOK)
}

// RefreshToken exchanges a refresh token for a fresh token pair, provided the
// session it belongs to still exists.
func (handler *AuthHandler) RefreshToken(c *gin.Context) {
	refreshRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.RefreshTokenRequest)

	claims, err := handler.JWTManager.ValidateJWT(refreshRequest.RefreshToken)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InvalidToken, http.StatusUnauthorized, err)
		return
	}

	mapClaims := claims.(jwt.MapClaims)
	if refresh, _ := mapClaims["refresh"].(string); refresh != "true" {
		utils.WriteAndLogError(c, schemas.InvalidToken, http.StatusUnauthorized, errors.New("access token used for refresh"))
		return
	}

	sessionId, _ := mapClaims["sid"].(string)
	queryString := "SELECT expires_at FROM dashboard.sessions WHERE session_id = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c.Request.Context(), queryString, sessionId)

	var expiresAt time.Time
	if err = row.Scan(&expiresAt); err != nil {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("session not found"))
		return
	}
	if time.Now().After(expiresAt) {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("session expired"))
		return
	}

	userId, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["username"].(string)

	token, err := handler.JWTManager.GenerateJWT(userId, username, sessionId, false)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}
	refreshToken, err := handler.JWTManager.GenerateJWT(userId, username, sessionId, true)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.TokenPairDTO{Token: token, RefreshToken: refreshToken}, http.StatusOK)
}

// RecoverPassword mails a password reset link. The response is identical
// whether or not the address belongs to an account, so the endpoint cannot be
// used to probe for registered emails.
func (handler *AuthHandler) RecoverPassword(c *gin.Context) {
	recoverRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.RecoverPasswordRequest)

	user, err := fetchUser(c.Request.Context(), handler.DatabaseManager.GetPool(), "email", recoverRequest.Email)
	if err == nil && user.ActivatedAt != nil {
		link := fmt.Sprintf("%s/api/users/new-password/%s/%s", handler.Config.BaseURL,
			handler.TokenManager.EncodeUID(*user.ID), handler.TokenManager.Issue(user))
		if mailErr := handler.MailManager.SendPasswordResetMail(user.Email, user.Username, link); mailErr != nil {
			utils.LogMessageWithFields(c, "warn", "Password reset mail not sent: "+mailErr.Error())
		}
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		utils.LogMessageWithFields(c, "error", "Password reset lookup failed: "+err.Error())
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{
		Message: "If the email belongs to an account, a reset link has been sent.",
	}, http.StatusOK)
}

// CheckNewPasswordLink verifies a reset link without consuming it, so the
// client can show the form only for a link that will actually be accepted.
func (handler *AuthHandler) CheckNewPasswordLink(c *gin.Context) {
	user := handler.loadUserFromLink(c)
	if user == nil {
		return
	}

	if !handler.TokenManager.Validate(user, c.Param(utils.TokenKey)) {
		utils.WriteAndLogError(c, schemas.InvalidLink, http.StatusForbidden, errors.New("reset token rejected"))
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "The link is valid."}, http.StatusOK)
}

// CompleteNewPassword sets a new password through a reset link. Updating the
// hash changes the token input, so the link cannot be replayed afterwards.
func (handler *AuthHandler) CompleteNewPassword(c *gin.Context) {
	passwordRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.NewPasswordRequest)

	if passwordRequest.NewPassword != passwordRequest.RepeatPassword {
		utils.WriteAndLogError(c, schemas.PasswordMismatch, http.StatusBadRequest, errors.New("password repetition differs"))
		return
	}

	user := handler.loadUserFromLink(c)
	if user == nil {
		return
	}

	if !handler.TokenManager.Validate(user, c.Param(utils.TokenKey)) {
		utils.WriteAndLogError(c, schemas.InvalidLink, http.StatusForbidden, errors.New("reset token rejected"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(passwordRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	queryString := "UPDATE dashboard.users SET password = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c.Request.Context(), queryString, hashedPassword, user.ID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if mailErr := handler.MailManager.SendConfirmationMail(user.Email, user.Username,
		"Your password has been changed."); mailErr != nil {
		utils.LogMessageWithFields(c, "warn", "Confirmation mail not sent: "+mailErr.Error())
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Your password has been updated. You can now sign in."}, http.StatusOK)
}

// ChangePassword lets a signed-in user change their password after confirming
// the current one.
func (handler *AuthHandler) ChangePassword(c *gin.Context) {
	changeRequest := c.MustGet(utils.SanitizedPayloadKey).(*schemas.ChangePasswordRequest)
	claims := c.MustGet(utils.ClaimsKey).(jwt.MapClaims)
	userId, _ := claims["sub"].(string)

	pool := handler.DatabaseManager.GetPool()
	user, err := fetchUser(c.Request.Context(), pool, "user_id", userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(changeRequest.OldPassword)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusForbidden, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(changeRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	tx := utils.BeginTransaction(c, pool)
	if tx == nil {
		return
	}
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	queryString := "UPDATE dashboard.users SET password = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c.Request.Context(), queryString, hashedPassword, user.ID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Your password has been changed."}, http.StatusOK)
}

// loadUserFromLink resolves the uid path segment to a user. Every failure
// mode collapses into the same invalid-link response.
func (handler *AuthHandler) loadUserFromLink(c *gin.Context) *schemas.User {
	userId, err := handler.TokenManager.DecodeUID(c.Param(utils.UidKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.InvalidLink, http.StatusForbidden, err)
		return nil
	}

	user, err := fetchUser(c.Request.Context(), handler.DatabaseManager.GetPool(), "user_id", userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InvalidLink, http.StatusForbidden, err)
		return nil
	}

	return user
}

// sendActivationLink mails the activation link after the account committed.
// A mail failure is logged but does not undo the registration.
func (handler *AuthHandler) sendActivationLink(c *gin.Context, user *schemas.User) {
	if err := handler.MailManager.SendActivationMail(user.Email, user.Username, handler.activationLink(user)); err != nil {
		utils.LogMessageWithFields(c, "warn", "Activation mail not sent: "+err.Error())
	}
}

func (handler *AuthHandler) activationLink(user *schemas.User) string {
	return fmt.Sprintf("%s/api/users/activate/%s/%s", handler.Config.BaseURL,
		handler.TokenManager.EncodeUID(*user.ID), handler.TokenManager.Issue(user))
}

// sendTokenPair responds with a fresh access and refresh token for the session.
func (handler *AuthHandler) sendTokenPair(c *gin.Context, user *schemas.User, sessionId string) {
	token, err := handler.JWTManager.GenerateJWT(user.ID.String(), user.Username, sessionId, false)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	refreshToken, err := handler.JWTManager.GenerateJWT(user.ID.String(), user.Username, sessionId, true)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.TokenPairDTO{Token: token, RefreshToken: refreshToken}, http.StatusOK)
}

// repairMissingProfile inserts a minimal profile row for accounts that
// predate the profile table or lost their row.
func (handler *AuthHandler) repairMissingProfile(c *gin.Context, tx pgx.Tx, user *schemas.User) error {
	queryString := "SELECT user_id FROM dashboard.user_profiles WHERE user_id = $1"
	row := tx.QueryRow(c.Request.Context(), queryString, user.ID)

	var profileId uuid.UUID
	err := row.Scan(&profileId)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	utils.LogMessageWithFields(c, "info", "Repairing missing profile for user "+user.Username)
	queryString = "INSERT INTO dashboard.user_profiles (user_id, salutation, photo_url, created_at) VALUES ($1, $2, $3, $4)"
	if _, err = tx.Exec(c.Request.Context(), queryString, user.ID, "", "", time.Now()); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	return nil
}

// fetchUser loads one user by the given column. The column name is always one
// of the fixed identifiers above, never caller input.
func fetchUser(ctx context.Context, q rowQuerier, column string, value interface{}) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM dashboard.users WHERE " + column + " = $1"
	row := q.QueryRow(ctx, queryString, value)

	user := &schemas.User{}
	var userId uuid.UUID
	if err := row.Scan(&userId, &user.Username, &user.FirstName, &user.LastName, &user.Email,
		&user.Password, &user.CreatedAt, &user.ActivatedAt, &user.LastLogin); err != nil {
		return nil, err
	}

	user.ID = &userId
	return user, nil
}

// checkUsernameEmailTaken reports a conflict when the username or email is
// already registered.
func checkUsernameEmailTaken(c *gin.Context, tx pgx.Tx, username, email string) error {
	queryString := "SELECT username, email FROM dashboard.users WHERE username = $1 OR email = $2"
	rows, err := tx.Query(c.Request.Context(), queryString, username, email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var foundUsername, foundEmail string
		if err = rows.Scan(&foundUsername, &foundEmail); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		if foundUsername == username {
			err = errors.New("username taken")
			utils.WriteAndLogError(c, schemas.UsernameTaken, http.StatusConflict, err)
			return err
		}

		err = errors.New("email taken")
		utils.WriteAndLogError(c, schemas.EmailTaken, http.StatusConflict, err)
		return err
	}

	return nil
}
