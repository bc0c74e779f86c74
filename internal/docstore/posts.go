package docstore

import (
	"context"
	"errors"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.PostRepository = (*PostStore)(nil)

// PostStore keeps posts, with their tags and like sets embedded, in the
// posts collection.
type PostStore struct {
	coll *mongo.Collection
}

var postSort = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", postsCollection)()

	post.EnsureID()
	post.Tags = models.NormalizeTags(post.Tags)
	post.Likes = models.Likes{Users: []string{}}
	post.Normalize()
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	post.Normalize()
	return &post, nil
}

func (s *PostStore) List(ctx context.Context) ([]*models.Post, error) {
	return s.find(ctx, bson.M{})
}

func (s *PostStore) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	return s.find(ctx, bson.M{"tags": tag})
}

func (s *PostStore) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *PostStore) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	cur, err := s.coll.Find(ctx, filter, postSort)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (s *PostStore) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", postsCollection)()

	post.Tags = models.NormalizeTags(post.Tags)
	post.Normalize()
	post.UpdatedAt = time.Now().UTC()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"title":       post.Title,
		"description": post.Description,
		"mediaUrl":    post.MediaURL,
		"mediaKey":    post.MediaKey,
		"tags":        post.Tags,
		"comments":    post.Comments,
		"updatedAt":   post.UpdatedAt,
	}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", postsCollection)()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// likeFilter matches the post only while userID is absent from its like set.
func likeFilter(postID, userID string) bson.M {
	return bson.M{"_id": postID, "likes.users": bson.M{"$ne": userID}}
}

func likeUpdate(userID string) bson.M {
	return bson.M{
		"$addToSet": bson.M{"likes.users": userID},
		"$inc":      bson.M{"likes.count": 1},
	}
}

// unlikeFilter matches the post only while userID is in its like set.
func unlikeFilter(postID, userID string) bson.M {
	return bson.M{"_id": postID, "likes.users": userID}
}

func unlikeUpdate(userID string) bson.M {
	return bson.M{
		"$pull": bson.M{"likes.users": userID},
		"$inc":  bson.M{"likes.count": -1},
	}
}

type likeCount struct {
	Likes struct {
		Count int `bson:"count"`
	} `bson:"likes"`
}

// Like applies the membership test and both mutations in a single
// conditional document update.
func (s *PostStore) Like(ctx context.Context, postID, userID string) (int, error) {
	defer observability.TrackQuery("like", postsCollection)()
	return s.toggle(ctx, postID, likeFilter(postID, userID), likeUpdate(userID), repository.MsgAlreadyLiked)
}

// Unlike is the inverse of Like.
func (s *PostStore) Unlike(ctx context.Context, postID, userID string) (int, error) {
	defer observability.TrackQuery("unlike", postsCollection)()
	return s.toggle(ctx, postID, unlikeFilter(postID, userID), unlikeUpdate(userID), repository.MsgNotLiked)
}

func (s *PostStore) toggle(ctx context.Context, postID string, filter, update bson.M, conflictMsg string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes.count": 1})

	var out likeCount
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return out.Likes.Count, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, models.NewInternalError(err)
	}

	// Nothing matched: either the post is gone or the membership test failed.
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if n == 0 {
		return 0, models.NewNotFoundError("Post", postID)
	}
	return 0, models.NewConflictError(conflictMsg)
}
