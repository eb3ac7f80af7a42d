// Command main runs the database seeder for StackIt.
package main

import (
	"context"
	"flag"
	"log"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/seed"
)

func main() {
	tagsOnly := flag.Bool("tags-only", false, "Only ensure the predefined tag directory exists")
	numUsers := flag.Int("users", 10, "Number of users to create")
	numQuestions := flag.Int("questions", 30, "Number of questions to create")
	answersPer := flag.Int("answers", 3, "Answers per question")
	shouldClean := flag.Bool("clean", false, "Remove users and content before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt for generated users (local use only)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	ctx := context.Background()

	if *tagsOnly {
		created, err := seed.Tags(ctx, db)
		if err != nil {
			log.Fatalf("Tag seeding failed: %v", err)
		}
		log.Printf("Tag directory ready (%d created, %d predefined)", created, len(seed.PredefinedTags))
		return
	}

	log.Printf("Target: %d users, %d questions, %d answers each, clean=%v",
		*numUsers, *numQuestions, *answersPer, *shouldClean)

	err = seed.Demo(ctx, db, seed.Options{
		NumUsers:           *numUsers,
		NumQuestions:       *numQuestions,
		AnswersPerQuestion: *answersPer,
		ShouldClean:        *shouldClean,
		Factory: seed.SeedOptions{
			SkipBcrypt: *fast,
			Seed:       *randSeed,
		},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done. Generated users share the password: %s", seed.DemoPassword)
}
