package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

var ErrUserExists = errors.New("user already exists")

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

type UserParams struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

func (s *UserService) Register(ctx context.Context, p UserParams) (*model.User, error) {
	if !validEmail(p.Email) || p.Name == "" || p.Address == "" || p.Password == "" {
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Email:        p.Email,
		Name:         p.Name,
		Address:      p.Address,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, store.CollectionUsers, user.Email, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	if err := s.store.Read(ctx, store.CollectionUsers, email, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("read user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	return &user, nil
}

func (s *UserService) Get(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.store.Read(ctx, store.CollectionUsers, email, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update changes name, address and/or password. The email is the record key
// and cannot change; order history is owned by the fulfillment pipeline and
// is never touched here.
func (s *UserService) Update(ctx context.Context, email string, p UserParams) (*model.User, error) {
	if p.Name == "" && p.Address == "" && p.Password == "" {
		return nil, ErrValidation
	}

	var user model.User
	if err := s.store.Read(ctx, store.CollectionUsers, email, &user); err != nil {
		return nil, err
	}

	if p.Name != "" {
		user.Name = p.Name
	}
	if p.Address != "" {
		user.Address = p.Address
	}
	if p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.Update(ctx, store.CollectionUsers, email, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Delete(ctx context.Context, email string) error {
	return s.store.Delete(ctx, store.CollectionUsers, email)
}
