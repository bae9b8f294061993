package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mark3labs/oas2types/internal/config"
	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/emitter"
	"github.com/mark3labs/oas2types/internal/emitter/cmdemitter"
	"github.com/mark3labs/oas2types/internal/emitter/goemitter"
	"github.com/mark3labs/oas2types/internal/generate"
	"github.com/mark3labs/oas2types/internal/normalize"
	"github.com/mark3labs/oas2types/internal/pathfilter"
	"github.com/mark3labs/oas2types/internal/prune"
	"github.com/mark3labs/oas2types/internal/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input    string
	Snapshot string
	Prefix   string
	Out      string
	Manifest string
	Services []generate.Service
	// Only restricts the run to these service names.
	Only               []string
	EmitterCommand     []string
	Concurrency        int
	NameInlineRequests bool
	Normalize          normalize.Options
	Denylist           prune.Denylist
	ConfigPath         string
	DryRun             bool
	Force              bool
	Verbose            bool
	Env                config.Env
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Prefix:      pathfilter.DefaultPrefix,
		Out:         "gen",
		Concurrency: 4,
		Normalize:   normalize.DefaultOptions(),
		Denylist:    prune.DefaultDenylist(),
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go types for every configured service",
		Long: "Generate one Go types file per service from an OpenAPI contract. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  oas2types generate --input openapi.yaml --service billing --out ./gen
  oas2types --config oas2types.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("snapshot", "", "Read the contract from this snapshot (path or s3://bucket/key) when no input is given")
	flags.String("prefix", "", "Path prefix in front of every service name (default /api/v1)")
	flags.String("out", "", "Root directory of the generated files (default gen)")
	flags.String("manifest", "", "Export manifest path (default <out>/exports.yaml)")
	flags.StringSlice("service", nil, "Generate only these services (all configured services when omitted)")
	flags.String("emitter-cmd", "", "External emitter command; {input} and {package} are substituted")
	flags.Int("concurrency", 0, "Services generated at once (default 4)")
	flags.Bool("name-inline-requests", false, "Name inline request bodies after their operationId")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing files that were not generated")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	env, err := config.LoadEnv()
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("environment: %v", err))
	}
	cfg.Env = env
	cfg.Input = env.Input

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	f, err := config.Load(path)
	if err != nil {
		return newUsageError(err.Error())
	}
	if f.Input != "" {
		cfg.Input = f.Input
	}
	cfg.Snapshot = f.Snapshot
	if f.Prefix != "" {
		cfg.Prefix = f.Prefix
	}
	if f.Out != "" {
		cfg.Out = f.Out
	}
	cfg.Manifest = f.Manifest
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	cfg.NameInlineRequests = f.NameInlineRequests
	cfg.EmitterCommand = f.EmitterCommand
	if s := f.Suffixes; s != nil {
		if s.Response != "" {
			cfg.Normalize.ResponseSuffix = s.Response
		}
		if s.QueryParam != "" {
			cfg.Normalize.QueryParamSuffix = s.QueryParam
		}
		if s.Request != "" {
			cfg.Normalize.RequestSuffix = s.Request
		}
	}
	if d := f.Denylist; d != nil {
		cfg.Denylist = prune.Denylist{Names: d.Names, Suffixes: d.Suffixes}
	}
	cfg.Services = cfg.Services[:0]
	for _, s := range f.Services {
		cfg.Services = append(cfg.Services, generate.Service{
			Name:    s.Name,
			Include: s.Include,
			Exclude: s.Exclude,
			Types:   s.Types,
			Package: s.Package,
			Output:  s.Output,
		})
	}
	return nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":    &cfg.Input,
		"snapshot": &cfg.Snapshot,
		"prefix":   &cfg.Prefix,
		"out":      &cfg.Out,
		"manifest": &cfg.Manifest,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	if flags.Changed("service") {
		value, err := flags.GetStringSlice("service")
		if err != nil {
			return err
		}
		cfg.Only = sanitizeNames(value)
	}
	if flags.Changed("emitter-cmd") {
		value, err := flags.GetString("emitter-cmd")
		if err != nil {
			return err
		}
		cfg.EmitterCommand = strings.Fields(value)
	}
	if flags.Changed("concurrency") {
		value, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = value
	}
	bools := map[string]*bool{
		"name-inline-requests": &cfg.NameInlineRequests,
		"dry-run":              &cfg.DryRun,
		"force":                &cfg.Force,
		"verbose":              &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Snapshot = strings.TrimSpace(c.Snapshot)
	c.Prefix = strings.TrimRight(strings.TrimSpace(c.Prefix), "/")
	c.Out = strings.TrimSpace(c.Out)
	c.Manifest = strings.TrimSpace(c.Manifest)
	c.Normalize.NameInlineRequests = c.NameInlineRequests
	for i := range c.Services {
		c.Services[i].Name = strings.Trim(strings.TrimSpace(c.Services[i].Name), "/")
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" && c.Snapshot == "" {
		return newUsageError("generate: --input or --snapshot is required (set via flag, config file or OAS2TYPES_INPUT)")
	}
	if c.Concurrency < 1 {
		return newUsageError(fmt.Sprintf("generate: --concurrency must be at least 1, got %d", c.Concurrency))
	}

	seen := map[string]bool{}
	for _, s := range c.Services {
		if s.Name == "" {
			return newUsageError("generate: every service needs a name")
		}
		if seen[s.Name] {
			return newUsageError(fmt.Sprintf("generate: service %q configured twice", s.Name))
		}
		seen[s.Name] = true
	}

	if len(c.Only) > 0 {
		if len(c.Services) == 0 {
			for _, name := range c.Only {
				c.Services = append(c.Services, generate.Service{Name: strings.Trim(name, "/")})
			}
		} else {
			var selected []generate.Service
			for _, name := range c.Only {
				i := slices.IndexFunc(c.Services, func(s generate.Service) bool { return s.Name == name })
				if i < 0 {
					return newUsageError(fmt.Sprintf("generate: unknown service %q (configured: %s)", name, strings.Join(serviceNames(c.Services), ", ")))
				}
				selected = append(selected, c.Services[i])
			}
			c.Services = selected
		}
	}
	if len(c.Services) == 0 {
		return newUsageError("generate: no services to generate (list them under services in the config file or pass --service)")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log, err := newLogger("generate", cfg.Verbose, cfg.Env)
	if err != nil {
		return newUsageError(fmt.Sprintf("logging: %v", err))
	}
	defer func() { _ = log.Sync() }()

	// 1) Load the contract fresh from its source.
	c, source, err := loadContract(ctx, cfg, log)
	if err != nil {
		return contractError(err, source)
	}

	// 2) Pick the emission engine.
	var e emitter.Emitter = goemitter.New(log)
	if len(cfg.EmitterCommand) > 0 {
		e = cmdemitter.New(cfg.EmitterCommand, log)
	}

	// 3) Run every service.
	base := generate.DefaultOptions()
	base.Normalize = cfg.Normalize
	base.Denylist = cfg.Denylist
	base.DryRun = cfg.DryRun
	base.Force = cfg.Force

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	m, batchErr := generate.New(e, log).Batch(ctx, c, cfg.Services, generate.BatchOptions{
		Base:        base,
		Prefix:      cfg.Prefix,
		OutDir:      cfg.Out,
		Concurrency: cfg.Concurrency,
		Manifest:    cfg.Manifest,
	})

	if cfg.DryRun {
		var rels []string
		for _, s := range m.Services {
			if s.Error == "" {
				rels = append(rels, relativeTo(absOut, s.Output))
			}
		}
		printPlan(absOut, len(rels), rels)
	} else {
		for _, s := range m.Services {
			if s.Error == "" {
				fmt.Fprintf(os.Stdout, "%s: %d types -> %s\n", s.Name, len(s.Types), s.Output)
			}
		}
	}
	if len(m.Unused) > 0 {
		log.Info("schemas not generated by any service", zap.Strings("schemas", m.Unused))
	}

	if batchErr != nil {
		return wrapOutputError(batchErr, absOut)
	}
	return nil
}

func loadContract(ctx context.Context, cfg *GenerateConfig, log *zap.Logger) (*contract.Contract, string, error) {
	if cfg.Input != "" {
		doc, err := snapshot.New(nil, "", log).Download(ctx, cfg.Input)
		if err != nil {
			return nil, cfg.Input, err
		}
		return doc.Contract, cfg.Input, nil
	}
	store, err := snapshot.OpenStore(cfg.Snapshot, s3Config(cfg.Env))
	if err != nil {
		return nil, cfg.Snapshot, newUsageError(fmt.Sprintf("snapshot: %v", err))
	}
	doc, err := snapshot.New(store, "", log).Read(ctx)
	if err != nil {
		return nil, cfg.Snapshot, err
	}
	return doc.Contract, cfg.Snapshot, nil
}

func s3Config(env config.Env) snapshot.S3Config {
	return snapshot.S3Config{
		Endpoint:  env.S3Endpoint,
		Region:    env.S3Region,
		AccessKey: env.S3AccessKey,
		SecretKey: env.S3SecretKey,
		UseSSL:    env.S3UseSSL,
	}
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func relativeTo(root, p string) string {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

func serviceNames(services []generate.Service) []string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	return names
}

func sanitizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
