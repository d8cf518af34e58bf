package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/rsharma/storeapi/internal/config"
	"github.com/rsharma/storeapi/internal/database"
	"github.com/rsharma/storeapi/internal/models"
	"github.com/rsharma/storeapi/internal/repositories"
	"github.com/shopspring/decimal"
)

var (
	adjectives = []string{"Classic", "Modern", "Compact", "Deluxe", "Portable", "Wireless", "Premium", "Eco", "Smart", "Vintage"}
	nouns      = []string{"Lamp", "Speaker", "Backpack", "Mug", "Notebook", "Charger", "Keyboard", "Bottle", "Chair", "Headphones"}
)

// Seeds the catalog with randomly generated products for local development.
func main() {
	count := flag.Int("count", 50, "number of products to create")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	productRepo := repositories.NewProductRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	created := 0
	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("%s %s %d",
			adjectives[rand.Intn(len(adjectives))],
			nouns[rand.Intn(len(nouns))],
			rand.Intn(1000))

		// Price between 1.00 and 500.99
		price := decimal.NewFromInt(int64(1 + rand.Intn(500))).
			Add(decimal.NewFromInt(int64(rand.Intn(100))).Div(decimal.NewFromInt(100)))

		_, err := productRepo.Create(ctx, &models.Product{
			Name:        name,
			Description: fmt.Sprintf("Auto-generated listing for %s.", name),
			Price:       price,
		})
		if err != nil {
			logger.Error("failed to create product", slog.String("name", name), slog.Any("error", err))
			continue
		}
		created++
	}

	logger.Info("seeding complete", slog.Int("created", created), slog.Int("requested", *count))
}
