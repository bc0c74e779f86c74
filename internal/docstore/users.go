package docstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore keeps users in the users collection.
type UserStore struct {
	store *Store
	coll  *mongo.Collection
}

var userSort = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", usersCollection)()

	user.EnsureID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError(repository.MsgEmailTaken)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	return s.find(ctx, bson.M{})
}

func (s *UserStore) SearchByName(ctx context.Context, fragment string) ([]*models.User, error) {
	return s.find(ctx, nameFilter(fragment))
}

// nameFilter matches fragment anywhere in the name, ignoring case.
func nameFilter(fragment string) bson.M {
	return bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(fragment), Options: "i"}}
}

func (s *UserStore) find(ctx context.Context, filter bson.M) ([]*models.User, error) {
	cur, err := s.coll.Find(ctx, filter, userSort)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users := []*models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", usersCollection)()

	user.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"email":             user.Email,
		"password":          user.PasswordHash,
		"name":              user.Name,
		"username":          user.Username,
		"profilePicture":    user.ProfilePictureURL,
		"profilePictureKey": user.ProfilePictureKey,
		"updatedAt":         user.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError(repository.MsgEmailTaken)
		}
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", usersCollection)()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (s *UserStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
