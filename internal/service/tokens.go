package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

const tokenTTL = time.Hour

var ErrTokenExpired = errors.New("token expired")

// TokenService issues and verifies access credentials. A credential is a
// signed JWT whose id is also kept as a store record; the JWT proves the
// claims, the record makes logout an actual revocation.
type TokenService struct {
	store  store.Store
	secret string
}

func NewTokenService(st store.Store, secret string) *TokenService {
	return &TokenService{store: st, secret: secret}
}

// Issue creates a token for an authenticated user and returns the signed
// JWT together with the stored record.
func (s *TokenService) Issue(ctx context.Context, user *model.User) (string, *model.Token, error) {
	tok := model.Token{
		ID:      uuid.NewString(),
		Email:   user.Email,
		Admin:   user.Admin,
		Expires: time.Now().UTC().Add(tokenTTL),
	}

	if err := s.store.Create(ctx, store.CollectionTokens, tok.ID, tok); err != nil {
		return "", nil, fmt.Errorf("create token: %w", err)
	}

	signed, err := s.sign(&tok)
	if err != nil {
		return "", nil, err
	}

	return signed, &tok, nil
}

func (s *TokenService) sign(tok *model.Token) (string, error) {
	claims := jwt.MapClaims{
		"jti":   tok.ID,
		"email": tok.Email,
		"admin": tok.Admin,
		"exp":   jwt.NewNumericDate(tok.Expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Get(ctx context.Context, id string) (*model.Token, error) {
	var tok model.Token
	if err := s.store.Read(ctx, store.CollectionTokens, id, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Extend pushes an unexpired token's expiry another TTL from now and
// re-signs the JWT, since the old JWT's exp claim still gates the
// middleware. The client must switch to the returned credential.
func (s *TokenService) Extend(ctx context.Context, id string) (string, *model.Token, error) {
	tok, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if tok.Expired(time.Now().UTC()) {
		return "", nil, ErrTokenExpired
	}

	tok.Expires = time.Now().UTC().Add(tokenTTL)
	if err := s.store.Update(ctx, store.CollectionTokens, id, tok); err != nil {
		return "", nil, err
	}

	signed, err := s.sign(tok)
	if err != nil {
		return "", nil, err
	}
	return signed, tok, nil
}

func (s *TokenService) Revoke(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.CollectionTokens, id)
}

// Verify reports whether the credential grants access to ownerEmail's
// resources: the token must exist, be unexpired, and either be bound to
// that email or carry the admin role.
func (s *TokenService) Verify(ctx context.Context, tokenID, ownerEmail string) bool {
	tok, err := s.Get(ctx, tokenID)
	if err != nil {
		return false
	}
	if tok.Expired(time.Now().UTC()) {
		return false
	}
	return tok.Admin || tok.Email == ownerEmail
}
