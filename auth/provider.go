// Package auth implements the authentication provider: credentials live in
// their own collection, separate from the user documents the sync core
// manages, and sessions are stateless JWTs carrying the user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"kafs-api/models"
	"kafs-api/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid verification token")
)

// Credential is the stored login record for one user. It points at the user
// document by id but never contains profile data.
type Credential struct {
	Email             string `bson:"_id"`
	UserID            string `bson:"user_id"`
	PasswordHash      string `bson:"password_hash"`
	Role              string `bson:"role"` // "user" or "admin"
	IsVerified        bool   `bson:"is_verified"`
	VerificationToken string `bson:"verification_token"`
}

// UserCreator writes the initial user document for a fresh signup.
type UserCreator interface {
	Set(ctx context.Context, user models.User) error
}

// Mailer delivers the signup verification email.
type Mailer interface {
	SendVerificationEmail(toEmail, token string) error
}

// Provider issues sessions and owns the credential records.
type Provider struct {
	collection *mongo.Collection
	users      UserCreator
	mailer     Mailer
}

// NewProvider creates a new Provider. mailer may be a typed nil, in which
// case accounts are created pre-verified.
func NewProvider(client *mongo.Client, users UserCreator, mailer *utils.EmailService) *Provider {
	p := &Provider{
		collection: client.Database("kafs").Collection("credentials"),
		users:      users,
	}
	if mailer != nil {
		p.mailer = mailer
	}
	return p
}

// SignUp registers a new account: hashes the password, stores the credential,
// creates the initial user document in the remote store and sends the
// verification email.
func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) (models.User, error) {
	count, err := p.collection.CountDocuments(ctx, bson.M{"_id": email})
	if err != nil {
		return models.User{}, fmt.Errorf("check existing account: %w", err)
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	userID := uuid.NewString()
	cred := Credential{
		Email:        email,
		UserID:       userID,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if p.mailer != nil {
		token, err := utils.GenerateJWT(userID, email, cred.Role)
		if err != nil {
			return models.User{}, fmt.Errorf("generate verification token: %w", err)
		}
		cred.VerificationToken = token
	} else {
		cred.IsVerified = true
	}

	if _, err := p.collection.InsertOne(ctx, cred); err != nil {
		return models.User{}, fmt.Errorf("create credential: %w", err)
	}

	user := models.User{
		ID:        userID,
		Email:     email,
		FullName:  fullName,
		FavList:   []models.Coffee{},
		Cart:      []models.CartItem{},
		CreatedAt: time.Now(),
	}
	if err := p.users.Set(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("create user document: %w", err)
	}

	if p.mailer != nil {
		if err := p.mailer.SendVerificationEmail(email, cred.VerificationToken); err != nil {
			return models.User{}, fmt.Errorf("send verification email: %w", err)
		}
	}
	return user, nil
}

// SignIn checks the credentials and returns the user id plus a signed session
// token. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, string, error) {
	var cred Credential
	err := p.collection.FindOne(ctx, bson.M{"_id": email}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("look up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}
	if !cred.IsVerified {
		return "", "", ErrNotVerified
	}

	token, err := utils.GenerateJWT(cred.UserID, cred.Email, cred.Role)
	if err != nil {
		return "", "", fmt.Errorf("generate session token: %w", err)
	}
	return cred.UserID, token, nil
}

// VerifyEmail marks the account behind the verification token as verified.
func (p *Provider) VerifyEmail(ctx context.Context, token string) error {
	claims := &utils.Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	}); err != nil {
		return ErrInvalidToken
	}

	result, err := p.collection.UpdateOne(ctx, bson.M{"verification_token": token}, bson.M{
		"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		},
	})
	if err != nil {
		return fmt.Errorf("update verification status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInvalidToken
	}
	return nil
}

// SignOut ends the session. Tokens are stateless, so there is nothing to
// revoke server-side; the sync core clears its published state instead.
func (p *Provider) SignOut(userID string) {}
