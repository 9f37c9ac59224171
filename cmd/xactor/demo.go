package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/GopherJ/xactor/core/app"
	"github.com/GopherJ/xactor/core/service"
	"github.com/GopherJ/xactor/internal/counter"
)

func newDemoCmd(root *rootOptions) *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Resolve the counter service repeatedly and print its totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return demo(cmd.Context(), cmd.OutOrStdout(), root.cfg, root.log, rounds)
		},
	}
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 3, "number of resolve-and-increment rounds")
	return cmd
}

// demo resolves the process-wide counter once per round and increments it,
// then does the same on every execution context of an app.
func demo(ctx context.Context, out io.Writer, cfg *Config, log *slog.Logger, rounds int) error {
	fmt.Fprintln(out, "shared:")
	for i := range rounds {
		addr, err := service.FromRegistry[counter.Counter](ctx)
		if err != nil {
			return err
		}
		v, err := counter.Add(ctx, addr, 1)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  round %d: %s total=%d\n", i+1, addr, v)
	}

	appCfg := cfg.AppConfig()
	appCfg.Context = ctx
	appCfg.Log = log
	a, err := app.Run(appCfg)
	if err != nil {
		return err
	}
	defer a.Stop()

	fmt.Fprintln(out, "local:")
	for _, name := range a.Local().Names() {
		for i := range rounds {
			err := a.Local().RunOn(ctx, name, func(ctx context.Context) error {
				addr, err := service.FromLocalRegistry[counter.Counter](ctx)
				if err != nil {
					return err
				}
				v, err := counter.Add(ctx, addr, 1)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s round %d: %s total=%d\n", name, i+1, addr, v)
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
