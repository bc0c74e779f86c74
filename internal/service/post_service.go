package service

import (
	"context"

	"snapgram/internal/media"
	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"
	"snapgram/internal/validation"
)

// Like toggle actions.
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	uploader media.Uploader
}

type CreatePostInput struct {
	UserID      string
	Title       string
	Description string
	Tags        []string
	Comments    []string
	Media       *Upload
}

// UpdatePostInput carries only the fields the caller sent. Likes are not
// editable.
type UpdatePostInput struct {
	ActorID     string
	PostID      string
	Title       *string
	Description *string
	Tags        *[]string
	Comments    *[]string
	Media       *Upload
}

type ToggleLikeInput struct {
	PostID string
	UserID string
	Action string
}

// LikeResult is the like state after a toggle.
type LikeResult struct {
	Count int
	Users []string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	uploader media.Uploader,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		uploader: uploader,
	}
}

// CreatePost stores the post, then uploads its media and records the URL.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.RequiredFields("Title", in.Title, "Description", in.Description); err != nil {
		return nil, err
	}
	if err := validation.Comments(in.Comments); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		UserID:      in.UserID,
		Tags:        in.Tags,
		Comments:    in.Comments,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if in.Media != nil {
		key := media.PostMediaKey(in.UserID, post.ID, in.Media.ContentType)
		url, err := uploadObject(ctx, s.uploader, key, in.Media)
		if err != nil {
			return nil, err
		}
		post.MediaURL, post.MediaKey = url, key
		if err := s.postRepo.Update(ctx, post); err != nil {
			return nil, err
		}
	}
	post.Normalize()
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns every post, or only those tagged tag when it is set.
func (s *PostService) ListPosts(ctx context.Context, tag string) ([]*models.Post, error) {
	if tag != "" {
		return s.postRepo.ListByTag(ctx, tag)
	}
	return s.postRepo.List(ctx)
}

// ListUserPosts returns the posts of an existing user.
func (s *PostService) ListUserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByUser(ctx, userID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.ActorID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != nil {
		if err := validation.Required("Title", *in.Title); err != nil {
			return nil, err
		}
		post.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.Required("Description", *in.Description); err != nil {
			return nil, err
		}
		post.Description = *in.Description
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}
	if in.Comments != nil {
		if err := validation.Comments(*in.Comments); err != nil {
			return nil, err
		}
		post.Comments = *in.Comments
	}

	oldKey := post.MediaKey
	if in.Media != nil {
		key := media.PostMediaKey(post.UserID, post.ID, in.Media.ContentType)
		url, err := uploadObject(ctx, s.uploader, key, in.Media)
		if err != nil {
			return nil, err
		}
		post.MediaURL, post.MediaKey = url, key
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if oldKey != post.MediaKey {
		destroyQuietly(ctx, s.uploader, oldKey)
	}
	post.Normalize()
	return post, nil
}

// DeletePost destroys the post's media, then the post.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	destroyQuietly(ctx, s.uploader, post.MediaKey)
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike likes or unlikes a post for a user. The count comes from the
// atomic store update; the member list is read afterwards.
func (s *PostService) ToggleLike(ctx context.Context, in ToggleLikeInput) (*LikeResult, error) {
	if err := validation.Required("postId", in.PostID); err != nil {
		return nil, err
	}

	ctx, end := observability.StartSpan(ctx, "posts", in.Action)
	var (
		count int
		err   error
	)
	switch in.Action {
	case ActionLike:
		count, err = s.postRepo.Like(ctx, in.PostID, in.UserID)
	case ActionUnlike:
		count, err = s.postRepo.Unlike(ctx, in.PostID, in.UserID)
	default:
		end(nil)
		return nil, models.NewValidationError(`action must be "like" or "unlike"`)
	}
	end(err)
	observability.RecordLikeToggle(in.Action, toggleResult(err))
	if err != nil {
		return nil, err
	}

	res := &LikeResult{Count: count, Users: []string{}}
	if post, err := s.postRepo.GetByID(ctx, in.PostID); err == nil {
		res.Users = post.Likes.Users
	} else if !models.IsNotFound(err) {
		return nil, err
	}
	return res, nil
}

func toggleResult(err error) string {
	switch {
	case err == nil:
		return observability.ResultOK
	case models.HasCode(err, models.CodeConflict):
		return observability.ResultConflict
	case models.IsNotFound(err):
		return observability.ResultNotFound
	default:
		return observability.ResultError
	}
}
