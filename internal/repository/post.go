package repository

import (
	"context"
	"errors"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	post.Tags = models.NormalizeTags(post.Tags)
	post.Likes = models.Likes{Users: []string{}}
	post.Normalize()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return writeTags(tx, post.ID, post.Tags)
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	db := r.db.WithContext(ctx)
	if err := db.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := hydrate(db, []*models.Post{&post}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

func (r *postRepository) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	db := r.db.WithContext(ctx)
	sub := db.Model(&models.PostTag{}).Select("post_id").Where("tag = ?", tag)
	return r.find(ctx, db.Where("id IN (?)", sub))
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *postRepository) find(ctx context.Context, q *gorm.DB) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := q.Order("created_at DESC, id").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := hydrate(r.db.WithContext(ctx), posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	post.Tags = models.NormalizeTags(post.Tags)
	post.Normalize()
	post.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(post).
			Select("title", "description", "media_url", "media_key", "comments", "updated_at").
			Updates(post)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return writeTags(tx, post.ID, post.Tags)
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": post.ID})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

// Like inserts the membership row and bumps the counter in one transaction.
// The insert is the conditional step: ON CONFLICT DO NOTHING affects no rows
// when the user already likes the post.
func (r *postRepository) Like(ctx context.Context, postID, userID string) (int, error) {
	defer observability.TrackQuery("like", "posts")()

	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := &models.PostLike{PostID: postID, UserID: userID, CreatedAt: time.Now()}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Likes are removed with their post, so an existing row means the
			// post exists and the user already likes it.
			return models.NewConflictError(MsgAlreadyLiked)
		}
		return bumpLikes(tx, postID, 1, &count)
	})
	return count, r.toggleErr(ctx, err, "like")
}

// Unlike deletes the membership row and decrements the counter in one transaction.
func (r *postRepository) Unlike(ctx context.Context, postID, userID string) (int, error) {
	defer observability.TrackQuery("unlike", "posts")()

	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewConflictError(MsgNotLiked)
		}
		return bumpLikes(tx, postID, -1, &count)
	})
	return count, r.toggleErr(ctx, err, "unlike")
}

func (r *postRepository) toggleErr(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	r.log.LogError(ctx, err, op)
	return models.NewInternalError(err)
}

// bumpLikes applies delta to likes_count and reads the result back. A missing
// post rolls the transaction back as NotFound.
func bumpLikes(tx *gorm.DB, postID string, delta int, count *int) error {
	result := tx.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return tx.Model(&models.Post{}).Select("likes_count").Where("id = ?", postID).Scan(count).Error
}

func writeTags(tx *gorm.DB, postID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.PostTag, 0, len(tags))
	for i, tag := range tags {
		rows = append(rows, models.PostTag{PostID: postID, Tag: tag, Position: i})
	}
	return tx.Create(&rows).Error
}

// hydrate loads the tag and like sets of posts in two queries.
func hydrate(db *gorm.DB, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	byID := make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		p.Tags = []string{}
		p.Likes.Users = []string{}
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	var tags []models.PostTag
	if err := db.Where("post_id IN ?", ids).Order("position").Find(&tags).Error; err != nil {
		return err
	}
	for _, t := range tags {
		byID[t.PostID].Tags = append(byID[t.PostID].Tags, t.Tag)
	}

	var likes []models.PostLike
	if err := db.Where("post_id IN ?", ids).Order("created_at, user_id").Find(&likes).Error; err != nil {
		return err
	}
	for _, l := range likes {
		byID[l.PostID].Likes.Users = append(byID[l.PostID].Likes.Users, l.UserID)
	}

	for _, p := range posts {
		p.Normalize()
	}
	return nil
}
