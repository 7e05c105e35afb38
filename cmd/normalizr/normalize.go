package main

import (
	"bytes"

	"github.com/spf13/cobra"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/codec"
)

func (a *app) normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [input.json|-]",
		Short: "Flatten a nested JSON value into {entities, result}",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			b, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			data, err := codec.DecodeReader(bytes.NewReader(b))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var nd normalizr.NormalizedData
			if a.safe {
				gate, closeFn, err := a.gate(cmd)
				if err != nil {
					return err
				}
				defer closeFn()
				nd, err = gate.SafeNormalize(ctx, data, s, a.options())
				if err != nil {
					return err
				}
			} else if nd, err = normalizr.Normalize(ctx, data, s, a.options()); err != nil {
				return err
			}
			return a.write(cmd, nd)
		},
	}
	cmd.Flags().BoolVar(&a.safe, "safe", false, "serialize identical inputs through the configured lock backend")
	return cmd
}

func (a *app) denormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "denormalize [normalized.json|-]",
		Short: "Rebuild the nested value from {entities, result}",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			b, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			nd, err := codec.Unmarshal(b)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var out any
			if a.safe {
				gate, closeFn, err := a.gate(cmd)
				if err != nil {
					return err
				}
				defer closeFn()
				out, err = gate.SafeDenormalize(ctx, nd, s, a.options())
				if err != nil {
					return err
				}
			} else if out, err = normalizr.Denormalize(ctx, nd, s, a.options()); err != nil {
				return err
			}
			return a.write(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&a.safe, "safe", false, "serialize identical inputs through the configured lock backend")
	return cmd
}

func (a *app) gate(cmd *cobra.Command) (*normalizr.Gate, func(), error) {
	l, closeFn, err := a.cfg.Locker(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return normalizr.NewGate(l), func() {
		if err := closeFn(); err != nil {
			a.log.Warn().Err(err).Msg("close lock backend")
		}
	}, nil
}
