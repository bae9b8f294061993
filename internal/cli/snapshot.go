package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/oas2types/internal/config"
	"github.com/mark3labs/oas2types/internal/snapshot"
	"github.com/spf13/cobra"
)

// SnapshotConfig captures the options for the snapshot command.
type SnapshotConfig struct {
	Input      string
	Snapshot   string
	Timeout    time.Duration
	Retries    int
	ConfigPath string
	Verbose    bool
	Env        config.Env
}

var snapshotRunner = runSnapshot

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Download a contract and persist a key-sorted snapshot",
		Long: "Download the contract from a URL or path, convert Swagger 2.0 to OpenAPI 3 when needed, " +
			"and write it as key-sorted YAML to a local path or s3://bucket/key.",
		Example: strings.TrimSpace(`  oas2types snapshot --input https://api.example.com/openapi.json --to ./snapshots/openapi.yaml
  oas2types --config oas2types.yaml snapshot --to s3://contracts/platform.yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSnapshotConfig(cmd)
			if err != nil {
				return err
			}
			return snapshotRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("to", "", "Snapshot location (path or s3://bucket/key)")
	flags.Duration("timeout", snapshot.DefaultSettings().HTTPTimeout, "Timeout of each HTTP request")
	flags.Int("retries", snapshot.DefaultSettings().MaxRetries, "Attempts for transient HTTP failures")

	return cmd
}

func resolveSnapshotConfig(cmd *cobra.Command) (*SnapshotConfig, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("environment: %v", err))
	}
	cfg := SnapshotConfig{Input: env.Input, Env: env}

	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		cfg.ConfigPath = configPath
		f, err := config.Load(configPath)
		if err != nil {
			return nil, newUsageError(err.Error())
		}
		if f.Input != "" {
			cfg.Input = f.Input
		}
		cfg.Snapshot = f.Snapshot
	}

	if flags.Changed("input") {
		if cfg.Input, err = flags.GetString("input"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("to") {
		if cfg.Snapshot, err = flags.GetString("to"); err != nil {
			return nil, err
		}
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Retries, err = flags.GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}

	cfg.Input = strings.TrimSpace(cfg.Input)
	cfg.Snapshot = strings.TrimSpace(cfg.Snapshot)
	if cfg.Input == "" {
		return nil, newUsageError("snapshot: --input is required (set via flag, config file or OAS2TYPES_INPUT)")
	}
	if cfg.Snapshot == "" {
		return nil, newUsageError("snapshot: --to is required (or set snapshot in the config file)")
	}
	if cfg.Retries < 1 {
		return nil, newUsageError(fmt.Sprintf("snapshot: --retries must be at least 1, got %d", cfg.Retries))
	}
	return &cfg, nil
}

func runSnapshot(ctx context.Context, cfg *SnapshotConfig) error {
	log, err := newLogger("snapshot", cfg.Verbose, cfg.Env)
	if err != nil {
		return newUsageError(fmt.Sprintf("logging: %v", err))
	}
	defer func() { _ = log.Sync() }()

	store, err := snapshot.OpenStore(cfg.Snapshot, s3Config(cfg.Env))
	if err != nil {
		return newUsageError(fmt.Sprintf("snapshot: %v", err))
	}
	m := snapshot.New(store, "", log,
		snapshot.WithHTTPTimeout(cfg.Timeout),
		snapshot.WithMaxRetries(cfg.Retries))

	doc, err := m.Download(ctx, cfg.Input)
	if err != nil {
		return contractError(err, cfg.Input)
	}
	if err := m.Write(ctx, doc); err != nil {
		return wrapOutputError(err, store.Location())
	}
	fmt.Fprintf(os.Stdout, "Wrote snapshot of %s (version %s) to %s\n", cfg.Input, doc.Contract.Version(), store.Location())
	return nil
}
