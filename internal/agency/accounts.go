package agency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eleven-am/spycat/internal/auth"
	"github.com/eleven-am/spycat/internal/breeds"
	"github.com/eleven-am/spycat/internal/models"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/eleven-am/spycat/internal/repository"
)

const TokenTypeBearer = "bearer"

// SignupInput is a new cat's registration.
type SignupInput struct {
	Name              string `json:"name"`
	YearsOfExperience int    `json:"years_of_experience"`
	Breed             string `json:"breed"`
	Password          string `json:"password"`
	Salary            int    `json:"salary"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (in *SignupInput) normalize() error {
	var v validator
	in.Name = v.text("name", in.Name, 1, MaxCatNameLength)
	in.Breed = v.text("breed", in.Breed, 2, MaxBreedLength)
	v.password("password", in.Password)
	v.nonNegative("years_of_experience", in.YearsOfExperience)
	v.nonNegative("salary", in.Salary)
	return v.err()
}

// Signup registers a cat after checking its breed against the registry.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.Cat, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	if err := s.breeds.Validate(ctx, in.Breed); err != nil {
		if errors.Is(err, breeds.ErrUnknownBreed) {
			return nil, Invalid("Invalid breed: %s", in.Breed)
		}
		return nil, Unavailable(err, "Breed registry is unavailable")
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var cat *models.Cat
	err = s.tx(ctx, func(store *repository.Store) error {
		existing, err := store.Cats.FindByName(ctx, in.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return Conflict("Account already exists")
		}

		cat, err = store.Cats.Create(ctx, repository.NewCat{
			Name:              in.Name,
			Password:          hash,
			YearsOfExperience: in.YearsOfExperience,
			Breed:             in.Breed,
			Salary:            in.Salary,
		})
		if errors.Is(err, orm.ErrDuplicateKey) {
			return Conflict("Account already exists")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cat signed up", "cat", cat.UUID, "name", cat.Name)
	return cat, nil
}

// Login checks the credentials and issues a new token pair. The refresh token
// is stored on the cat; only the stored one can be redeemed.
func (s *Service) Login(ctx context.Context, name, password string) (*TokenPair, error) {
	name = strings.TrimSpace(name)

	var pair *TokenPair
	err := s.tx(ctx, func(store *repository.Store) error {
		cat, err := store.Cats.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if cat == nil {
			return Unauthorized("Invalid name or password")
		}
		if !s.auth.VerifyPassword(password, cat.Password) {
			return Unauthorized("Invalid password")
		}

		pair, err = s.issueTokens(ctx, store, cat)
		return err
	})
	if err != nil {
		s.log.Warn("login failed", "name", name, "err", err)
		return nil, err
	}
	return pair, nil
}

func (s *Service) issueTokens(ctx context.Context, store *repository.Store, cat *models.Cat) (*TokenPair, error) {
	access, err := s.auth.CreateAccessToken(cat.Name)
	if err != nil {
		return nil, err
	}
	refresh, err := s.auth.CreateRefreshToken(cat.Name)
	if err != nil {
		return nil, err
	}
	if err := store.Cats.UpdateRefreshToken(ctx, cat.UUID, &refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: TokenTypeBearer}, nil
}

// Refresh redeems a refresh token for a new pair. Presenting a valid token
// that is not the stored one revokes the stored token.
func (s *Service) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	name, err := s.auth.DecodeRefreshToken(token)
	if err != nil {
		return nil, Unauthorized("%s", auth.ErrUnauthorized.Error())
	}

	var (
		pair    *TokenPair
		revoked bool
	)
	err = s.tx(ctx, func(store *repository.Store) error {
		cat, err := store.Cats.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if cat == nil {
			return Unauthorized("Invalid user")
		}

		if !cat.HasRefreshToken(token) {
			revoked = true
			return store.Cats.UpdateRefreshToken(ctx, cat.UUID, nil)
		}

		pair, err = s.issueTokens(ctx, store, cat)
		return err
	})
	if err != nil {
		return nil, err
	}
	if revoked {
		s.log.Warn("refresh token mismatch, stored token revoked", "name", name)
		return nil, Unauthorized("Invalid refresh token")
	}
	return pair, nil
}

// Logout forgets the cat's refresh token.
func (s *Service) Logout(ctx context.Context, cat *models.Cat) error {
	return s.tx(ctx, func(store *repository.Store) error {
		return store.Cats.UpdateRefreshToken(ctx, cat.UUID, nil)
	})
}

// ForgotPassword issues and stores a reset token for the named cat.
func (s *Service) ForgotPassword(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)

	var token string
	err := s.tx(ctx, func(store *repository.Store) error {
		cat, err := store.Cats.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if cat == nil {
			return NotFound("Cat not found")
		}

		token, err = s.auth.CreateResetToken(cat.Name)
		if err != nil {
			return err
		}
		return store.Cats.UpdateResetToken(ctx, cat.UUID, &token)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword sets a new password when token is the cat's stored, unexpired
// reset token. Both the reset and refresh tokens are revoked.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	var v validator
	v.password("new_password", newPassword)
	if err := v.err(); err != nil {
		return err
	}

	name, err := s.auth.NameFromResetToken(token)
	if err != nil {
		return Invalid("Invalid token for verification")
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.tx(ctx, func(store *repository.Store) error {
		// A redeemed or superseded token is no longer stored on any cat.
		cat, err := store.Cats.FindByResetToken(ctx, token)
		if err != nil {
			return err
		}
		if cat == nil || cat.Name != name {
			return Invalid("Invalid or expired token")
		}
		return store.Cats.UpdatePassword(ctx, cat.UUID, hash)
	})
}

// CurrentCat resolves the cat named by an access token.
func (s *Service) CurrentCat(ctx context.Context, token string) (*models.Cat, error) {
	name, err := s.auth.DecodeAccessToken(token)
	if err != nil {
		return nil, Unauthorized("%s", auth.ErrUnauthorized.Error())
	}

	cat, err := s.store().Cats.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, Unauthorized("%s", auth.ErrUnauthorized.Error())
	}
	return cat, nil
}

// RequireAdmin fails unless cat is staff.
func RequireAdmin(cat *models.Cat) error {
	if cat == nil || !cat.IsStaff {
		return Forbidden("The user doesn't have enough privileges")
	}
	return nil
}
