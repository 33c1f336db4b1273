// Command main loads demo or fixture posts into the blog database.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ajayblog/internal/config"
	"ajayblog/internal/database"
	"ajayblog/internal/seed"
)

func main() {
	count := flag.Int("count", 25, "Number of random posts to create")
	file := flag.String("file", "", "YAML fixture file to import instead of random posts")
	clean := flag.Bool("clean", false, "Delete existing posts before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db)

	if *clean {
		if err := s.ClearPosts(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var written int
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open fixture file: %v", err)
		}
		posts, err := seed.LoadFixtures(f, cfg.DefaultAuthor)
		_ = f.Close()
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		written, err = s.Insert(ctx, posts)
		if err != nil {
			log.Fatalf("Import failed after %d posts: %v", written, err)
		}
	} else {
		written, err = s.SeedRandom(ctx, seed.NewFactory(*seedValue, cfg.DefaultAuthor), *count)
		if err != nil {
			log.Fatalf("Seeding failed after %d posts: %v", written, err)
		}
	}

	log.Printf("Done: %d posts written", written)
}
