package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/codec"
	"github.com/reoring/gonormalizr/config"
	"github.com/reoring/gonormalizr/schemafile"
)

// app carries state shared by subcommands once flags are parsed.
type app struct {
	schemaPath string
	logLevel   string
	logFormat  string
	indent     bool
	safe       bool

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "normalizr",
		Short: "Normalize nested JSON into flat entity stores and back",
		Long: `normalizr flattens nested JSON into a type-partitioned entity store
plus a result reference, driven by a schema document, and rebuilds the
nested value from that store.

Examples:
  normalizr normalize -s schema.yaml input.json
  cat input.json | normalizr normalize -s schema.yaml --safe
  normalizr denormalize -s schema.yaml normalized.json
  normalizr validate -s schema.yaml
  normalizr jsonschema -s schema.yaml

Environment:
  NORMALIZR_LOG_LEVEL, NORMALIZR_LOG_FORMAT, NORMALIZR_LOCK_BACKEND,
  NORMALIZR_REDIS_ADDR, NORMALIZR_LOCK_PREFIX, NORMALIZR_LOCK_TTL,
  NORMALIZR_LOCK_RETRY, NORMALIZR_VALIDATOR_MAX_DEPTH`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.schemaPath, "schema", "s", "", "schema document (YAML or JSON)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (overrides NORMALIZR_LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "console or json (overrides NORMALIZR_LOG_FORMAT)")
	pf.BoolVar(&a.indent, "indent", false, "indent JSON output")

	root.AddCommand(
		a.normalizeCmd(),
		a.denormalizeCmd(),
		a.validateCmd(),
		a.jsonSchemaCmd(),
		metaSchemaCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())
	cmd.SetContext(a.log.WithContext(contextOf(cmd)))
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) loadSchema() (normalizr.Schema, error) {
	if a.schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	return schemafile.Load(a.schemaPath)
}

func (a *app) options() normalizr.Options {
	return normalizr.Options{
		Validator: a.cfg.Validator(),
		Logger:    &a.log,
	}
}

// readInput reads the single positional file argument, or stdin when it is absent or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}

func (a *app) write(cmd *cobra.Command, v any) error {
	return codec.Encode(cmd.OutOrStdout(), v, a.indent)
}
