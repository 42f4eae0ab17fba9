package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/anonto42/socialshop/backend/internal/models"
)

// UserLookup resolves a Firebase UID to a local user.
type UserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseVerifier accepts Firebase ID tokens for users that already logged
// in through /auth/firebase-login.
type FirebaseVerifier struct {
	client *auth.Client
	users  UserLookup
}

func NewFirebaseVerifier(client *auth.Client, users UserLookup) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*models.JwtCustomClaims, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired ID token: %w", err)
	}
	user, err := v.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("no local user for firebase uid: %w", err)
	}
	return &models.JwtCustomClaims{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}
