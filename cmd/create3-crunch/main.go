package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mejiasd3v/lifi-create3-crunch/internal/config"
	"github.com/mejiasd3v/lifi-create3-crunch/internal/crypto"
	"github.com/mejiasd3v/lifi-create3-crunch/internal/logger"
	"github.com/mejiasd3v/lifi-create3-crunch/pkg/miner"
	"github.com/mejiasd3v/lifi-create3-crunch/pkg/types"
)

var (
	cfg     = config.NewConfig()
	verbose bool
	log     *zap.SugaredLogger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "create3-crunch",
		Short: "Vanity salt cruncher for CREATE3 deployments",
		Long: `Searches for a salt that makes the CREATE3-deployed contract address match
a hex prefix and/or suffix (case-insensitive). The printed salt is the value
to submit to the factory, which derives the effective CREATE2 salt as
keccak256(sender || salt) on-chain.`,
		SilenceUsage: true,
		RunE:         runCrunch,
	}

	rootCmd.Flags().StringVarP(&cfg.Creator, "creator", "c", "", "Creator (deployer) address (hex, 0x optional) (required)")
	rootCmd.Flags().StringVarP(&cfg.StartsWith, "starts-with", "s", "", "Hex fragment the address must start with (after 0x)")
	rootCmd.Flags().StringVarP(&cfg.EndsWith, "ends-with", "e", "", "Hex fragment the address must end with")
	rootCmd.Flags().Uint64VarP(&cfg.MaxAttempts, "max-attempts", "m", math.MaxUint64, "Maximum number of attempts before giving up")
	rootCmd.Flags().BoolVar(&cfg.Silent, "silent", false, "Suppress progress and result printing")
	rootCmd.Flags().BoolVarP(&cfg.Parallel, "parallel", "p", false, "Search on all CPUs in parallel")
	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of parallel workers")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCrunch(cmd *cobra.Command, args []string) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	log = logger.New(level)
	defer func() { _ = log.Sync() }()

	identity := crypto.DefaultIdentity()
	m, err := miner.New(cfg, identity, log, os.Stdout)
	if err != nil {
		log.Errorw("invalid configuration", "err", err)
		return err
	}

	if !cfg.Silent {
		log.Infow("starting salt search",
			"creator", cfg.CreatorAddress(),
			"target", cfg.TargetDescription(),
			"factory", identity.Factory,
			"parallel", cfg.Parallel,
			"workers", cfg.WorkerCount(),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := m.Search(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println()
		log.Infow("search interrupted", "attempts", m.Attempts())
		return nil
	case err != nil:
		log.Errorw("search failed", "err", err)
		return err
	}

	if res == nil {
		if !cfg.Silent {
			fmt.Printf("\nNo matching address found after %d attempts\n", m.Attempts())
		}
		return nil
	}
	printResult(res)
	return nil
}

func printResult(res *types.Result) {
	if cfg.Silent {
		fmt.Printf("Found result - Salt: %s, Address: %s\n", res.Salt, res.Address)
		return
	}

	rate := 0.0
	if res.Duration.Seconds() > 0 {
		rate = float64(res.Attempts) / res.Duration.Seconds()
	}

	fmt.Println()
	color.New(color.FgGreen, color.Bold).Println("Found matching address!")
	fmt.Printf("Salt:     %s\n", color.YellowString(res.Salt))
	fmt.Printf("Address:  %s\n", color.CyanString(res.Address))
	fmt.Printf("Attempts: %d\n", res.Attempts)
	fmt.Printf("Duration: %v\n", res.Duration.Round(time.Millisecond))
	fmt.Printf("Rate:     %.2f hashes/sec\n", rate)
}
