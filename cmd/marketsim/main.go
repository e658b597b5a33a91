// Command marketsim runs the three-firm oligopoly market simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/talgya/marketsim/internal/api"
	"github.com/talgya/marketsim/internal/market"
	"github.com/talgya/marketsim/internal/persistence"
	"github.com/talgya/marketsim/internal/runner"
	"github.com/talgya/marketsim/internal/strategy"
)

var (
	flagSeed       int64
	flagEpisodes   int
	flagDBPath     string
	flagStrategies string
	flagPort       int
	flagIntervalMS int
)

func main() {
	// Local .env is optional; environment variables win if both are set.
	godotenv.Load(".env")

	level := slog.LevelInfo
	if os.Getenv("MARKETSIM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "marketsim",
		Short: "Three-firm oligopoly market simulator: price and R&D competition under macro shocks.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run headless episodes with baseline strategies",
		RunE:  runEpisodes,
	}
	runCmd.Flags().Int64Var(&flagSeed, "seed", 42, "seed of the first episode; later episodes increment it")
	runCmd.Flags().IntVar(&flagEpisodes, "episodes", 1, "number of episodes to run")
	runCmd.Flags().StringVar(&flagDBPath, "db", "data/marketsim.db", "trajectory database path (empty disables recording)")
	runCmd.Flags().StringVar(&flagStrategies, "strategies", "markup,random,sweep", "comma-separated strategy per firm")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run paced episodes with the HTTP observation API",
		RunE:  serve,
	}
	serveCmd.Flags().Int64Var(&flagSeed, "seed", 42, "seed of the first episode")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "data/marketsim.db", "trajectory database path")
	serveCmd.Flags().StringVar(&flagStrategies, "strategies", "markup,random,sweep", "comma-separated strategy per firm")
	serveCmd.Flags().IntVar(&flagPort, "port", 8080, "HTTP API port")
	serveCmd.Flags().IntVar(&flagIntervalMS, "interval", 250, "milliseconds per market period")

	rootCmd.AddCommand(runCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRunner() (*runner.Runner, *persistence.DB, error) {
	params := market.DefaultParams()

	names := strings.Split(flagStrategies, ",")
	if len(names) != market.NumFirms {
		return nil, nil, fmt.Errorf("need %d strategies, got %d", market.NumFirms, len(names))
	}
	var strategies [market.NumFirms]strategy.Strategy
	for i, name := range names {
		s, err := strategy.New(strings.TrimSpace(name), params, flagSeed+int64(100+i))
		if err != nil {
			return nil, nil, err
		}
		strategies[i] = s
	}

	var db *persistence.DB
	if flagDBPath != "" {
		if dir := filepath.Dir(flagDBPath); dir != "." && dir != "" {
			os.MkdirAll(dir, 0755)
		}
		var err error
		db, err = persistence.Open(flagDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open trajectory store: %w", err)
		}
		slog.Info("trajectory store opened", "path", flagDBPath)
	}

	r := runner.New(market.NewEpisode(params), strategies)
	r.DB = db
	return r, db, nil
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	r, db, err := buildRunner()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	for i := 0; i < flagEpisodes; i++ {
		seed := flagSeed + int64(i)
		sum, err := r.RunEpisode(seed)
		if err != nil {
			return fmt.Errorf("episode %d (seed %d): %w", i, seed, err)
		}
		fmt.Printf("episode %d: seed=%d steps=%d profits=[%.0f %.0f %.0f]\n",
			i, seed, sum.Steps,
			sum.CumulativeProfits[0], sum.CumulativeProfits[1], sum.CumulativeProfits[2])
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	r, db, err := buildRunner()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	r.Interval = time.Duration(flagIntervalMS) * time.Millisecond

	adminKey := os.Getenv("MARKETSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("MARKETSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	server := &api.Server{
		Runner:   r,
		DB:       db,
		Port:     flagPort,
		AdminKey: adminKey,
	}
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		r.Shutdown()
	}()

	fmt.Printf("Market is open: %d firms, %d periods per episode.\n",
		market.NumFirms, market.DefaultParams().MaxSteps)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", flagPort)

	// Run episodes back to back until shut down (signal or admin API),
	// advancing the seed.
	for seed := flagSeed; !r.ShuttingDown(); seed++ {
		if _, err := r.RunEpisode(seed); err != nil {
			return fmt.Errorf("episode with seed %d: %w", seed, err)
		}
	}

	fmt.Println("Simulation stopped.")
	return nil
}
