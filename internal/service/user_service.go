package service

import (
	"context"
	"log/slog"

	"snapgram/internal/media"
	"snapgram/internal/middleware"
	"snapgram/internal/models"
	"snapgram/internal/repository"
	"snapgram/internal/validation"
)

// Login failure messages.
const (
	MsgUnknownEmail  = "No user found with this email address!"
	MsgWrongPassword = "The password you entered is incorrect!"
)

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	hasher   PasswordHasher
	uploader media.Uploader
}

type CreateUserInput struct {
	Email          string
	Password       string
	Name           string
	Username       string
	ProfilePicture *Upload
}

// UpdateUserInput carries only the fields the caller sent. A nil pointer
// keeps the stored value.
type UpdateUserInput struct {
	ActorID        string
	UserID         string
	Email          *string
	Password       *string
	Name           *string
	Username       *string
	ProfilePicture *Upload
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	hasher PasswordHasher,
	uploader media.Uploader,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		postRepo: postRepo,
		hasher:   hasher,
		uploader: uploader,
	}
}

// CreateUser registers a new account. The password is hashed here and
// nowhere else.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if err := validation.RequiredFields("Email", email, "Password", in.Password, "Name", in.Name); err != nil {
		return nil, err
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(repository.MsgEmailTaken)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		Username:     in.Username,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if in.ProfilePicture != nil {
		if err := s.setProfilePicture(ctx, user, in.ProfilePicture); err != nil {
			return nil, err
		}
	}

	middleware.Logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID))
	return user, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if err := validation.RequiredFields("Email", email, "Password", password); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: MsgUnknownEmail}
	}
	if !s.hasher.Compare(password, user.PasswordHash) {
		return nil, models.NewUnauthorizedError(MsgWrongPassword)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) SearchUsers(ctx context.Context, name string) ([]*models.User, error) {
	return s.userRepo.SearchByName(ctx, name)
}

// UpdateUser applies the fields present in in. Replaced profile pictures are
// destroyed only after the new URL is stored.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	if in.ActorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own account")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := models.NormalizeEmail(*in.Email)
		if err := validation.Required("Email", email); err != nil {
			return nil, err
		}
		if email != user.Email {
			taken, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken != nil && taken.ID != user.ID {
				return nil, models.NewConflictError(repository.MsgEmailTaken)
			}
			user.Email = email
		}
	}
	if in.Name != nil {
		if err := validation.Required("Name", *in.Name); err != nil {
			return nil, err
		}
		user.Name = *in.Name
	}
	user.Username = derefOr(in.Username, user.Username)
	if in.Password != nil {
		if err := validation.Password(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if in.ProfilePicture != nil {
		if err := s.setProfilePicture(ctx, user, in.ProfilePicture); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *UserService) setProfilePicture(ctx context.Context, user *models.User, file *Upload) error {
	oldKey := user.ProfilePictureKey
	key := media.ProfilePictureKey(user.ID, file.ContentType)

	url, err := uploadObject(ctx, s.uploader, key, file)
	if err != nil {
		return err
	}
	user.ProfilePictureURL = url
	user.ProfilePictureKey = key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if oldKey != key {
		destroyQuietly(ctx, s.uploader, oldKey)
	}
	return nil
}

// DeleteUser removes the account, every post it owns with their media, and
// finally its profile picture.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID != userID {
		return models.NewForbiddenError("You can only delete your own account")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range posts {
		destroyQuietly(ctx, s.uploader, p.MediaKey)
		if err := s.postRepo.Delete(ctx, p.ID); err != nil && !models.IsNotFound(err) {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	destroyQuietly(ctx, s.uploader, user.ProfilePictureKey)

	middleware.Logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", userID),
		slog.Int("posts", len(posts)),
	)
	return nil
}
