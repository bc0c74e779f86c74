// Command main runs the demo data seeder for Snapgram.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"snapgram/internal/auth"
	"snapgram/internal/bootstrap"
	"snapgram/internal/config"
	"snapgram/internal/middleware"
	"snapgram/internal/seed"
	"snapgram/internal/service"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	shouldClean := flag.Bool("clean", false, "Delete all users and posts before seeding")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	flag.Parse()

	log.Println("🌱 Snapgram Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.SetupLogger(cfg.Env, os.Stdout)

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	res, err := seedAndClose(ctx, rt, cfg.BcryptCost, *randSeed, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Printf("❌ Seeding failed: %v", err)
		os.Exit(1)
	}

	log.Printf("✨ Created %d users, %d posts and %d likes.", len(res.Users), len(res.Posts), res.Likes)
	log.Printf("📧 All seeded users have the password: %s", seed.DemoPassword)
}

// seedAndClose runs the seeder against rt and closes rt whatever the outcome.
func seedAndClose(ctx context.Context, rt *bootstrap.Runtime, bcryptCost int, randSeed int64, opts seed.Options) (*seed.Result, error) {
	users := service.NewUserService(rt.Users, rt.Posts, auth.NewPasswordHasher(bcryptCost), rt.Uploader)
	posts := service.NewPostService(rt.Posts, rt.Users, rt.Uploader)

	res, err := seed.NewSeeder(users, posts, randSeed).Run(ctx, opts)
	if closeErr := rt.Close(ctx); closeErr != nil {
		log.Printf("Failed to close runtime: %v", closeErr)
	}
	return res, err
}
