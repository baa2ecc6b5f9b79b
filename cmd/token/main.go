package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/auth"
	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

// token mints an access token for an existing account. The identity provider
// is out of scope for this service; the CLI stands in for it in development.
func main() {
	email := flag.String("email", "", "account email")
	id := flag.String("id", "", "account id")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "token"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	user, err := lookup(ctx, users.NewRepository(dbClient.DB()), *id, *email)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		ShopID: user.ShopID,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

func lookup(ctx context.Context, repo userFinder, rawID, email string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case strings.TrimSpace(rawID) != "":
		id, parseErr := uuid.Parse(strings.TrimSpace(rawID))
		if parseErr != nil {
			return nil, fmt.Errorf("invalid -id: %w", parseErr)
		}
		user, err = repo.FindByID(ctx, id)
	case strings.TrimSpace(email) != "":
		user, err = repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	default:
		return nil, errors.New("one of -id or -email is required")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
