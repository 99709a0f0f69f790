package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gitea.kood.tech/petrkubec/matchrelay/store"
)

type cfg struct {
	DSN         string
	Count       int
	Seed        int64
	Truncate    bool
	ConnectRate float64 // probability that any given pair is connected
}

var c cfg

var rootCmd = &cobra.Command{
	Use:   "db-seeder",
	Short: "Fill the matchrelay database with random profiles and connections",
	Long: "Generates deterministic random profiles and connections and writes them in one " +
		"transaction. The first two generated users are always connected so chat can be tried at once.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := c.validate(); err != nil {
			return err
		}
		return run(cmd.Context(), c)
	},
}

func init() {
	rootCmd.Flags().StringVar(&c.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres DSN [env: DATABASE_URL]")
	rootCmd.Flags().IntVar(&c.Count, "count", 300, "Number of profiles to create")
	rootCmd.Flags().Int64Var(&c.Seed, "seed", 42, "RNG seed (deterministic)")
	rootCmd.Flags().BoolVar(&c.Truncate, "truncate", false, "Remove existing profiles and connections first")
	rootCmd.Flags().Float64Var(&c.ConnectRate, "connect-rate", 0.05, "Probability that two profiles are connected (0..1)")
}

func (c cfg) validate() error {
	if c.DSN == "" {
		return fmt.Errorf("missing DSN: provide --dsn or set DATABASE_URL")
	}
	if c.Count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	if c.ConnectRate < 0 || c.ConnectRate > 1 {
		return fmt.Errorf("--connect-rate must be in range 0..1")
	}
	return nil
}

func run(ctx context.Context, c cfg) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, c.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}
	if c.Truncate {
		if err := st.Truncate(ctx); err != nil {
			return err
		}
	}

	r := rand.New(rand.NewSource(c.Seed))
	profiles := generateProfiles(r, c.Count)
	edges := generateConnections(r, profiles, c.ConnectRate)

	if err := st.Import(ctx, profiles, edges); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Printf("Seeded %d profiles and %d connections (seed %d)\n", len(profiles), len(edges), c.Seed)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
