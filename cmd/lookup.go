package main

import (
	"contactfinder/internal/api/handler/v1handler"
	"contactfinder/internal/config"
	"contactfinder/internal/contact"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	errLookupFailed   = errors.New("lookup failed")
	errMissingCompany = errors.New("a company name is required: pass --company or a positional argument")
)

// runLookup prints the bundle, or the classified error, as JSON to out.
func runLookup(ctx context.Context, finder contact.Finder, company string, out io.Writer) error {
	bundle, err := finder.Find(ctx, company)
	if err != nil {
		res := v1handler.New(v1handler.Deps{}).NewError(ctx, err)
		_, _ = fmt.Fprintln(out, string(v1handler.EncodeError(res.Response)))

		return fmt.Errorf("%w: %s", errLookupFailed, res.Response.Code)
	}

	_, err = fmt.Fprintln(out, string(v1handler.EncodeBundle(bundle)))

	return err
}

func lookupCommand(cfg *config.Config) *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "lookup [company name]",
		Short: "Runs one lookup and prints the contact bundle as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if company == "" {
				company = strings.Join(args, " ")
			}
			if strings.TrimSpace(company) == "" {
				return errMissingCompany
			}
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			if cfg.HTTP.RequestTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.HTTP.RequestTimeout)
				defer cancel()
			}

			tp, stopTracer := newTracerProvider(ctx, cfg)
			defer stopTracer()

			finder, err := newFinder(cfg, nil, tp)
			if err != nil {
				return err
			}

			return runLookup(ctx, finder, company, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "Company name to look up")

	return cmd
}
