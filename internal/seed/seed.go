// Package seed populates a store with demo users, posts and likes. It is
// intended for development and testing only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"snapgram/internal/models"
	"snapgram/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

var tagPool = []string{
	"sunset", "travel", "food", "city", "nature", "friends", "music",
	"art", "coffee", "pets", "beach", "mountains", "nightlife", "books",
}

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Result summarizes what a run created.
type Result struct {
	Users []*models.User
	Posts []*models.Post
	Likes int
}

// Seeder writes demo data through the services so the same rules apply as
// for API traffic.
type Seeder struct {
	users *service.UserService
	posts *service.PostService
	faker *gofakeit.Faker
}

// NewSeeder returns a seeder writing through users and posts.
func NewSeeder(users *service.UserService, posts *service.PostService, seed int64) *Seeder {
	return &Seeder{users: users, posts: posts, faker: gofakeit.New(seed)}
}

// Run seeds according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return nil, err
	}
	posts, err := s.SeedPosts(ctx, users, opts.NumPosts)
	if err != nil {
		return nil, err
	}
	likes, err := s.SeedLikes(ctx, users, posts)
	if err != nil {
		return nil, err
	}
	return &Result{Users: users, Posts: posts, Likes: likes}, nil
}

// ClearAll deletes every user, and with them their posts and media.
func (s *Seeder) ClearAll(ctx context.Context) error {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if err := s.users.DeleteUser(ctx, u.ID, u.ID); err != nil && !models.IsNotFound(err) {
			return fmt.Errorf("delete user %s: %w", u.ID, err)
		}
	}
	slog.Info("cleared existing data", slog.Int("users", len(users)))
	return nil
}

// SeedUsers creates n users with unique addresses.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		user, err := s.users.CreateUser(ctx, service.CreateUserInput{
			Email:    fmt.Sprintf("%s.%s.%d@snapgram.dev", strings.ToLower(first), strings.ToLower(last), i),
			Password: DemoPassword,
			Name:     first + " " + last,
			Username: s.faker.Username(),
		})
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	slog.Info("seeded users", slog.Int("count", len(users)))
	return users, nil
}

// SeedPosts spreads n posts across users.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		if n > 0 {
			return nil, errors.New("cannot seed posts without users")
		}
		return nil, nil
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:      author.ID,
			Title:       s.faker.Sentence(4),
			Description: s.faker.Paragraph(1, 2, 12, " "),
			Tags:        s.pickTags(),
			Comments:    s.comments(),
		})
		if err != nil {
			return nil, fmt.Errorf("create post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	slog.Info("seeded posts", slog.Int("count", len(posts)))
	return posts, nil
}

// SeedLikes has each user like roughly a third of the posts.
func (s *Seeder) SeedLikes(ctx context.Context, users []*models.User, posts []*models.Post) (int, error) {
	likes := 0
	for _, p := range posts {
		for _, u := range users {
			if s.faker.Number(0, 2) != 0 {
				continue
			}
			_, err := s.posts.ToggleLike(ctx, service.ToggleLikeInput{
				PostID: p.ID,
				UserID: u.ID,
				Action: service.ActionLike,
			})
			if err != nil && !models.HasCode(err, models.CodeConflict) {
				return likes, fmt.Errorf("like post %s: %w", p.ID, err)
			}
			if err == nil {
				likes++
			}
		}
	}
	slog.Info("seeded likes", slog.Int("count", likes))
	return likes, nil
}

func (s *Seeder) pickTags() []string {
	n := s.faker.Number(0, 3)
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tags = append(tags, tagPool[s.faker.Number(0, len(tagPool)-1)])
	}
	return tags
}

func (s *Seeder) comments() []string {
	n := s.faker.Number(0, 3)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := s.faker.Phrase()
		if r := []rune(c); len(r) > models.MaxCommentLength {
			c = string(r[:models.MaxCommentLength])
		}
		out = append(out, c)
	}
	return out
}
