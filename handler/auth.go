package handler

import (
	"context"
	"net/mail"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mailgun/mailgun-go/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/jwt"
	"hackreg-backend/log"
)

const resetTokenTTL = time.Hour

type authHandler struct {
	key     []byte
	cUsers  *mongo.Collection
	cResets *mongo.Collection

	mg           mailgun.Mailgun
	mailFrom     string
	resetURLBase string
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *authHandler) Register(c *gin.Context) {
	req := &credentialsRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, errs.ErrEmailRequired)
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		fail(c, errs.ErrEmailAddressFormat)
		return
	}

	if req.Password == "" {
		fail(c, errs.ErrPasswordRequired)
		return
	}

	if len(req.Password) < 8 {
		fail(c, errs.ErrPasswordTooShort)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		log.Logger.Error("failed to generate bcrypt hash", zap.Error(err))
		fail(c, errs.ErrCryptographic)
		return
	}

	u := &entity.User{
		ID:       primitive.NewObjectID(),
		Email:    req.Email,
		Password: string(hash),
	}

	_, err = h.cUsers.InsertOne(c.Request.Context(), u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Logger.Debug("already has account", zap.String("email", req.Email), zap.Error(err))
			fail(c, errs.ErrAlreadyExists)
			return
		}

		log.Logger.Error("failed inserting new user", zap.Error(err))
		fail(c, errs.ErrDatabase)
		return
	}

	tokens, err := h.issueTokens(u)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, "registered", tokens)
}

func (h *authHandler) Login(c *gin.Context) {
	req := &credentialsRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, errs.ErrEmailRequired)
		return
	}

	if req.Email == "" {
		fail(c, errs.ErrEmailRequired)
		return
	}

	if req.Password == "" {
		fail(c, errs.ErrPasswordRequired)
		return
	}

	u := &entity.User{}
	err := h.cUsers.FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, errs.ErrInvalidEmailOrPassword)
			return
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("email", req.Email))
		fail(c, errs.ErrDatabase)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			log.Logger.Debug("invalid password", zap.Error(err))
			fail(c, errs.ErrInvalidEmailOrPassword)
			return
		}

		fail(c, errs.ErrCryptographic)
		return
	}

	tokens, err := h.issueTokens(u)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, "logged in", tokens)
}

func (h *authHandler) Refresh(c *gin.Context) {
	req := &struct {
		Token string `json:"token"`
	}{}
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, errs.ErrJWT)
		return
	}

	claims, err := jwt.ValidateRefreshToken(req.Token, h.key)
	if err != nil {
		if err == jwt.ErrExpired {
			fail(c, errs.ErrTokenExpired)
			return
		}

		fail(c, errs.ErrJWT)
		return
	}

	u := &entity.User{}
	err = h.cUsers.FindOne(c.Request.Context(), bson.M{"email": claims.Email}).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, errs.ErrJWT)
			return
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("email", claims.Email))
		fail(c, errs.ErrDatabase)
		return
	}

	token, err := jwt.NewAccessToken(u, h.key)
	if err != nil {
		log.Logger.Error("jwt failure", zap.Error(err))
		fail(c, errs.ErrJWT)
		return
	}

	ok(c, "refreshed", gin.H{"accessToken": token})
}

func (h *authHandler) ForgotPassword(c *gin.Context) {
	req := &struct {
		Email string `json:"email"`
	}{}
	if err := c.ShouldBindJSON(req); err != nil || req.Email == "" {
		fail(c, errs.ErrEmailRequired)
		return
	}

	const sent = "password reset email sent"

	u := &entity.User{}
	err := h.cUsers.FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// do not reveal whether the address is registered
			log.Logger.Debug("reset requested for unknown email", zap.String("email", req.Email))
			ok(c, sent, nil)
			return
		}

		log.Logger.Error("database error", zap.Error(err), zap.String("email", req.Email))
		fail(c, errs.ErrDatabase)
		return
	}

	reset := &entity.PasswordReset{
		ID:     primitive.NewObjectID(),
		UserID: u.ID,
		Token:  uuid.NewString(),
		TTL:    time.Now().Add(resetTokenTTL),
	}

	_, err = h.cResets.InsertOne(c.Request.Context(), reset)
	if err != nil {
		log.Logger.Error("failed inserting password reset", zap.Error(err))
		fail(c, errs.ErrDatabase)
		return
	}

	m := h.mg.NewMessage(
		h.mailFrom,
		"Password reset",
		"Reset your password here: "+h.resetURLBase+"?token="+reset.Token,
		u.Email,
	)
	_, _, err = h.mg.Send(c.Request.Context(), m)
	if err != nil {
		log.Logger.Error("failed sending reset email", zap.Error(err), zap.String("email", u.Email))
		fail(c, errs.ErrMail)
		return
	}

	ok(c, sent, nil)
}

func (h *authHandler) ResetPassword(c *gin.Context) {
	req := &struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}{}
	if err := c.ShouldBindJSON(req); err != nil || req.Token == "" {
		fail(c, errs.ErrInvalidResetToken)
		return
	}

	if len(req.Password) < 8 {
		fail(c, errs.ErrPasswordTooShort)
		return
	}

	reset := &entity.PasswordReset{}
	err := h.cResets.FindOne(c.Request.Context(), bson.M{"token": req.Token}).Decode(reset)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, errs.ErrInvalidResetToken)
			return
		}

		log.Logger.Error("database error", zap.Error(err))
		fail(c, errs.ErrDatabase)
		return
	}

	if time.Now().After(reset.TTL) {
		fail(c, errs.ErrInvalidResetToken)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		log.Logger.Error("failed to generate bcrypt hash", zap.Error(err))
		fail(c, errs.ErrCryptographic)
		return
	}

	_, err = h.cUsers.UpdateOne(c.Request.Context(),
		bson.M{"_id": reset.UserID},
		bson.M{"$set": bson.M{"password": string(hash)}})
	if err != nil {
		log.Logger.Error("failed updating password", zap.Error(err))
		fail(c, errs.ErrDatabase)
		return
	}

	if _, err := h.cResets.DeleteOne(c.Request.Context(), bson.M{"_id": reset.ID}); err != nil {
		log.Logger.Error("failed deleting reset token", zap.Error(err))
	}

	ok(c, "password updated", nil)
}

func (h *authHandler) issueTokens(u *entity.User) (*tokenPair, error) {
	refresh, err := jwt.NewRefreshToken(u, h.key)
	if err != nil {
		log.Logger.Error("jwt failure", zap.Error(err))
		return nil, errs.ErrJWT
	}

	access, err := jwt.NewAccessToken(u, h.key)
	if err != nil {
		log.Logger.Error("jwt failure", zap.Error(err))
		return nil, errs.ErrJWT
	}

	return &tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func NewAuthHandler(client *mongo.Client, key []byte, mg mailgun.Mailgun, mailFrom, resetURLBase string) *authHandler {
	_, err := client.Database("hackreg").Collection("users").Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		log.Logger.Fatal("unable to create index", zap.Error(err))
	}

	return &authHandler{
		key:          key,
		cUsers:       client.Database("hackreg").Collection("users"),
		cResets:      client.Database("hackreg").Collection("password_resets"),
		mg:           mg,
		mailFrom:     mailFrom,
		resetURLBase: resetURLBase,
	}
}
