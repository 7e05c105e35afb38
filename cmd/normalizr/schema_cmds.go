package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/gonormalizr/codec"
	"github.com/reoring/gonormalizr/schemafile"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a schema document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			if err := a.cfg.Validator().Validate(s); err != nil {
				return err
			}
			root, _ := s.Root()
			fmt.Fprintf(cmd.OutOrStdout(), "schema valid: %d declarations, root %q\n", len(s), root.Key)
			return nil
		},
	}
}

func (a *app) jsonSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema of the denormalized shape of the root declaration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			if err := a.cfg.Validator().Validate(s); err != nil {
				return err
			}
			root, err := s.Root()
			if err != nil {
				return err
			}
			js, err := root.Entity.JSONSchema()
			if err != nil {
				return err
			}
			return a.write(cmd, js)
		},
	}
}

func metaSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meta-schema",
		Short: "Print the JSON Schema of schema documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return codec.Encode(cmd.OutOrStdout(), schemafile.MetaSchema(), true)
		},
	}
}
