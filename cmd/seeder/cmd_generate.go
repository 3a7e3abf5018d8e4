package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spacesedan/reviewseed/config"
	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/db"
	"github.com/spacesedan/reviewseed/internal/models"
	"github.com/spacesedan/reviewseed/internal/reviewgen"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	productID          string
	productName        string
	productDescription string
	quantity           int
	distribution       string
	hint               string
	seed               uint64
}

// usageError marks bad command-line input.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	var ce *reviewgen.ClassifiedError
	if errors.As(err, &ce) && ce.Kind == reviewgen.KindValidation {
		return exitUsage
	}
	return exitError
}

func newGenerateCmd() *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of reviews for one product and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.productID, "product-id", "", "product identifier (required)")
	cmd.Flags().StringVar(&f.productName, "product-name", "", "product name; when empty the product is loaded from the product store")
	cmd.Flags().StringVar(&f.productDescription, "product-description", "", "product description used in the prompt")
	cmd.Flags().IntVarP(&f.quantity, "quantity", "n", 10, "number of reviews to generate (1-50)")
	cmd.Flags().StringVar(&f.distribution, "distribution", "45,35,15,4,1", "percentages for 5,4,3,2,1 stars")
	cmd.Flags().StringVar(&f.hint, "hint", "", "extra instruction appended to every prompt")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for reproducible sampling (0 picks a random seed)")
	_ = cmd.MarkFlagRequired("product-id")

	return cmd
}

func runGenerate(cmd *cobra.Command, f *generateFlags) error {
	dist, err := parseDistribution(f.distribution)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings := config.Load()
	provider, err := clients.NewProviderClient(settings)
	if err != nil {
		return err
	}

	product, err := resolveProduct(ctx, settings, f)
	if err != nil {
		return err
	}

	opts := reviewgen.OptionsFromSettings(settings)
	if f.seed != 0 {
		opts.Rand = reviewgen.NewRand(f.seed)
	}
	orchestrator := reviewgen.NewOrchestrator(provider, opts)

	result, genErr := orchestrator.Generate(ctx, models.GenerationRequest{
		ProductID:          f.productID,
		Quantity:           f.quantity,
		RatingDistribution: &dist,
		CustomPrompt:       f.hint,
	}, product)
	if result != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	return genErr
}

// resolveProduct uses the flags when a name is given and the configured store otherwise. A missing product
// yields nil so the orchestrator reports it.
func resolveProduct(ctx context.Context, settings config.Settings, f *generateFlags) (*models.Product, error) {
	if f.productName != "" {
		return &models.Product{
			ID:          f.productID,
			Name:        f.productName,
			Description: f.productDescription,
		}, nil
	}

	store, closeStore, err := db.OpenProductStore(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	product, err := store.GetProduct(ctx, f.productID)
	if errors.Is(err, db.ErrProductNotFound) {
		slog.Warn("[Seeder] Product not found in store", slog.String("product_id", f.productID))
		return nil, nil
	}
	return product, err
}

func parseDistribution(raw string) (models.RatingDistribution, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 5 {
		return models.RatingDistribution{}, usageError{msg: fmt.Sprintf("distribution needs 5 comma separated values, got %d", len(parts))}
	}

	var values [5]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
			return models.RatingDistribution{}, usageError{msg: fmt.Sprintf("invalid distribution value %q", p)}
		}
		values[i] = v
	}

	return models.RatingDistribution{
		Star5: values[0],
		Star4: values[1],
		Star3: values[2],
		Star2: values[3],
		Star1: values[4],
	}, nil
}
