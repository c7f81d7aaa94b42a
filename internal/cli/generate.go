package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/discovery2py/internal/discovery"
	"github.com/mark3labs/discovery2py/internal/emitter/pyemitter"
	"github.com/mark3labs/discovery2py/internal/model"
	"github.com/mark3labs/discovery2py/internal/pycheck"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Inputs     []string
	Out        string
	ConfigPath string
	DryRun     bool
	Force      bool
	Check      bool
	DumpModel  bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: "generated"}
}

var (
	generateRunner = runGenerate
	newChecker     = func() pycheck.Checker { return pycheck.New() }
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Python class skeletons from discovery documents",
		Long: "Generate Python class skeletons from one or more API discovery documents. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  discovery2py generate --input blogger_v3.json --out ./generated
  discovery2py --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("input", nil, "Path or URL to a discovery document (repeatable)")
	flags.String("out", "", "Output directory (defaults to ./generated)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output files when set")
	flags.Bool("check", false, "Run the external syntax checker on each written unit")
	flags.Bool("dump-model", false, "Write a JSON dump of the built model next to each unit")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

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

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetStringSlice("input")
		if err != nil {
			return err
		}
		cfg.Inputs = sanitizeInputs(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("check") {
		value, err := flags.GetBool("check")
		if err != nil {
			return err
		}
		cfg.Check = value
	}
	if flags.Changed("dump-model") {
		value, err := flags.GetBool("dump-model")
		if err != nil {
			return err
		}
		cfg.DumpModel = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Inputs = sanitizeInputs(c.Inputs)
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = "generated"
	}
}

func (c *GenerateConfig) validate() error {
	if len(c.Inputs) == 0 {
		return newUsageError("generate: at least one --input is required (set via flag or config file)")
	}
	return nil
}

// runGenerate processes every input document independently: a failure in one
// document is reported and the remaining documents still generate.
func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	var checker pycheck.Checker
	if cfg.Check {
		checker = newChecker()
	}

	var failed []string
	for _, input := range cfg.Inputs {
		if err := generateOne(ctx, cfg, checker, input, absOut); err != nil {
			failed = append(failed, input)
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", input, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("generation failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func generateOne(ctx context.Context, cfg *GenerateConfig, checker pycheck.Checker, input, absOut string) error {
	doc, err := discovery.Load(ctx, input)
	if err != nil {
		var de *discovery.DocError
		if errors.As(err, &de) && de.Location != "" {
			return fmt.Errorf("%s (location: %s)", de.Message, de.Location)
		}
		return err
	}

	file, err := model.Build(doc)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	for _, w := range file.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	res, err := pyemitter.Emit(ctx, file, pyemitter.Options{
		OutDir:    cfg.Out,
		Force:     cfg.Force,
		DryRun:    cfg.DryRun,
		DumpModel: cfg.DumpModel,
		Verbose:   cfg.Verbose,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		printPlan(absOut, res.Planned)
		return nil
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Wrote %s to %s\n", res.UnitName+".py", absOut)
	}

	if checker != nil {
		unit := filepath.Join(absOut, res.UnitName+".py")
		if err := checker.Check(ctx, unit); err != nil {
			// Syntax invalidity is diagnostic, not fatal.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

func printPlan(outDir string, planned []pyemitter.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s\n", p.RelPath)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeInputs(inputs []string) []string {
	if len(inputs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(inputs))
	result := make([]string, 0, len(inputs))
	for _, in := range inputs {
		trimmed := strings.TrimSpace(in)
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

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		switch normalizeKey(key) {
		case "input", "inputs":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Inputs = sanitizeInputs(list)
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "check":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Check = val
		case "dumpmodel":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DumpModel = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
