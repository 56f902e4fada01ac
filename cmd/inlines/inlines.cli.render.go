package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/itsatony/go-inlines"
)

// renderFlags holds parsed render command configuration
type renderFlags struct {
	media   string
	verbose bool
	jobs    int
	output  string
}

// renderResult is the outcome of rendering one source.
type renderResult struct {
	out  string
	errs []*inlines.LineError
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:     CmdNameRender + " [files|-]",
		Short:   HelpRenderShort,
		Long:    HelpRenderLong,
		Example: HelpRenderExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, g, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.media, FlagMedia, FlagMediaShort, "", HelpFlagMedia)
	fl.BoolVarP(&f.verbose, FlagVerbose, FlagVerboseShort, true, HelpFlagVerbose)
	fl.IntVarP(&f.jobs, FlagJobs, FlagJobsShort, FlagDefaultJobs, HelpFlagJobs)
	fl.StringVarP(&f.output, FlagOutput, FlagOutputShort, FlagDefaultOutput, HelpFlagOutput)
	return cmd
}

func runRender(cmd *cobra.Command, g *globalFlags, f *renderFlags, args []string) error {
	if f.jobs < 1 {
		return fail(ExitCodeUsageError, ErrMsgInvalidJobs, fmt.Errorf("%d", f.jobs))
	}

	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	sources, err := readSources(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := env.config.RenderOptions()
	if f.media != "" {
		opts = append(opts, inlines.WithMedia(f.media))
	}
	opts = append(opts, inlines.WithRaiseErrors(true), inlines.WithVerboseErrors(f.verbose))

	results, err := renderAll(cmd.Context(), env.renderer, sources, f.jobs, opts)
	if err != nil {
		return fail(ExitCodeError, ErrMsgRenderFailed, err)
	}

	failed := false
	var out strings.Builder
	for i, res := range results {
		if len(res.errs) > 0 {
			failed = true
			for _, le := range res.errs {
				msg := le.Message
				if f.verbose {
					msg = le.Verbose()
				}
				fmt.Fprintf(cmd.ErrOrStderr(), FmtFileError, sources[i].name, msg)
			}
			continue
		}
		out.WriteString(res.out)
	}
	if failed {
		return fail(ExitCodeValidationError, ErrMsgInlineErrors, nil)
	}

	if err := writeOutput(f.output, []byte(out.String()), cmd.OutOrStdout()); err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}

// renderAll renders sources concurrently, at most jobs at a time. Inline
// errors land in the results; any other failure cancels the rest.
func renderAll(ctx context.Context, r *inlines.Renderer, sources []source, jobs int, opts []inlines.RenderOption) ([]renderResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]renderResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(sources), 1)))

	for i, src := range sources {
		g.Go(func() error {
			out, err := r.Render(gctx, src.text, opts...)
			var renderErr *inlines.RenderError
			switch {
			case err == nil:
				results[i] = renderResult{out: out}
			case errors.As(err, &renderErr):
				results[i] = renderResult{errs: renderErr.Errors()}
			default:
				return fmt.Errorf("%s: %w", src.name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
