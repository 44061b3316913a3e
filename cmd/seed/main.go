// Command seed fills a database with demo profiles, books and reviews. All
// writes go through the services, so seeded data passes the same policy
// checks as API traffic.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"bookreview/internal/apperror"
	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/platform/config"
	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logger"
	"bookreview/internal/policy"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"

	"github.com/rs/zerolog/log"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "Bookworm#2024"

type demoUser struct {
	Email string
	Name  string
}

type demoBook struct {
	Owner int
	Input book.Input
	// Ratings maps a user index to the rating that user gives the book.
	Ratings map[int]int
}

var users = []demoUser{
	{Email: "ada@example.com", Name: "Ada"},
	{Email: "grace@example.com", Name: "Grace"},
	{Email: "linus@example.com", Name: ""},
}

var books = []demoBook{
	{Owner: 0, Input: book.Input{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937,
		Description: "Bilbo Baggins is swept into a quest for a dragon's hoard."},
		Ratings: map[int]int{1: 5, 2: 4}},
	{Owner: 0, Input: book.Input{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", PublishedYear: 1965},
		Ratings: map[int]int{1: 5, 2: 3}},
	{Owner: 1, Input: book.Input{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: "Science Fiction", PublishedYear: 1969},
		Ratings: map[int]int{0: 4}},
	{Owner: 1, Input: book.Input{Title: "Middlemarch", Author: "George Eliot", Genre: "Classics", PublishedYear: 1871}},
	{Owner: 2, Input: book.Input{Title: "The Silmarillion", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1977},
		Ratings: map[int]int{0: 3, 1: 4}},
	{Owner: 2, Input: book.Input{Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson", Genre: "Computing", PublishedYear: 1985}},
	{Owner: 0, Input: book.Input{Title: "Neuromancer", Author: "William Gibson", Genre: "Science Fiction", PublishedYear: 1984}},
}

func main() {
	dryRun := flag.Bool("dry-run", false, "print what would be seeded and exit")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if *dryRun {
		log.Info().Int("users", len(users)).Int("books", len(books)).Msg("dry run")
		os.Exit(0)
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", database.RedactDSN(cfg.DB.DSN)).Msg("cannot open database")
	}
	defer pool.Close()

	timeout := cfg.DB.Timeout
	engine := policy.NewEngine()
	sessions := session.NewService(session.NewPostgresRepo(pool, timeout), session.NewBlacklistPostgresRepo(pool, timeout))
	identities := auth.NewPostgresRepo(pool, timeout)
	s := seeder{
		auth:       auth.NewService(identities, sessions, cfg.Auth.Secret, cfg.Auth.AccessTTL),
		identities: identities,
		books:      book.NewService(book.NewPostgresRepo(pool, timeout), engine),
		reviews:    review.NewService(review.NewPostgresRepo(pool, timeout), engine),
	}

	if err := s.run(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed complete")
}

type seeder struct {
	auth       *auth.Service
	identities auth.Repository
	books      *book.Service
	reviews    *review.Service
}

func (s seeder) run(ctx context.Context) error {
	actors := make([]policy.Actor, len(users))
	for i, u := range users {
		actor, created, err := s.ensureUser(ctx, u)
		if err != nil {
			return err
		}
		actors[i] = actor
		if !created {
			log.Info().Str("email", u.Email).Msg("user exists, skipping seed")
			return nil
		}
	}

	for _, db := range books {
		b, err := s.books.Create(ctx, actors[db.Owner], db.Input)
		if err != nil {
			return err
		}
		for reviewer, rating := range db.Ratings {
			_, err := s.reviews.Create(ctx, actors[reviewer], b.ID, review.Input{Rating: rating})
			if err != nil {
				return err
			}
		}
		log.Info().Str("book_id", b.ID).Str("title", b.Title).Int("reviews", len(db.Ratings)).Msg("seeded book")
	}
	return nil
}

// ensureUser registers u unless an identity with its email exists.
func (s seeder) ensureUser(ctx context.Context, u demoUser) (policy.Actor, bool, error) {
	ident, err := s.identities.GetByEmail(ctx, profile.NormalizeEmail(u.Email))
	switch {
	case err == nil:
		return policy.Actor{ID: ident.ID}, false, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return policy.Actor{}, false, err
	}

	p, err := s.auth.Register(ctx, auth.RegisterInput{Email: u.Email, Password: DemoPassword, DisplayName: u.Name})
	if err != nil {
		return policy.Actor{}, false, err
	}
	log.Info().Str("user_id", p.ID).Str("name", p.DisplayName).Msg("seeded user")
	return policy.Actor{ID: p.ID}, true, nil
}
