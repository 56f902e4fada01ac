package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsatony/go-inlines"
)

// listFlags holds parsed list command configuration
type listFlags struct {
	format string
}

// inlineOutput describes one registered name.
type inlineOutput struct {
	Name       string            `json:"name"`
	Definition string            `json:"definition"`
	Variants   []string          `json:"variants,omitempty"`
	Media      map[string]string `json:"media,omitempty"`
	Arguments  []argumentOutput  `json:"arguments,omitempty"`
}

type argumentOutput struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Keyword  bool   `json:"keyword"`
	Default  any    `json:"default,omitempty"`
	HelpText string `json:"help_text,omitempty"`
}

func newListCmd(g *globalFlags) *cobra.Command {
	f := &listFlags{}

	cmd := &cobra.Command{
		Use:   CmdNameList,
		Short: HelpListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, g, f)
		},
	}
	cmd.Flags().StringVarP(&f.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, HelpFlagFormatBasic)
	return cmd
}

func runList(cmd *cobra.Command, g *globalFlags, f *listFlags) error {
	if f.format != OutputFormatText && f.format != OutputFormatJSON {
		return fail(ExitCodeUsageError, ErrMsgInvalidFormat, fmt.Errorf("%s", f.format))
	}

	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	entries := env.registry.Entries()
	out := make([]inlineOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, describeEntry(e))
	}

	stdout := cmd.OutOrStdout()
	if f.format == OutputFormatJSON {
		jsonBytes, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fail(ExitCodeError, ErrMsgEncodeFailed, err)
		}
		fmt.Fprintln(stdout, string(jsonBytes))
		return nil
	}
	writeListText(stdout, out)
	return nil
}

func describeEntry(e inlines.RegistryEntry) inlineOutput {
	def := e.Definition
	out := inlineOutput{
		Name:       e.Name,
		Definition: def.Name(),
		Variants:   def.Variants(),
	}
	if len(e.Media) > 0 {
		out.Media = make(map[string]string, len(e.Media))
		for media, md := range e.Media {
			out.Media[media] = md.Name()
		}
	}
	for _, na := range def.Arguments() {
		out.Arguments = append(out.Arguments, argumentOutput{
			Name:     na.Name,
			Kind:     string(na.Argument.Kind()),
			Keyword:  na.Argument.IsKeyword(),
			Default:  na.Argument.DefaultValue(),
			HelpText: na.Argument.HelpText(),
		})
	}
	return out
}

func writeListText(w io.Writer, entries []inlineOutput) {
	if len(entries) == 0 {
		fmt.Fprintln(w, ListTextEmpty)
		return
	}

	for _, e := range entries {
		fmt.Fprintf(w, ListTextEntry+FmtNewline, e.Name, e.Definition)
		if len(e.Variants) > 0 {
			fmt.Fprintf(w, ListTextVariants+FmtNewline, strings.Join(e.Variants, StrListSep))
		}
		if len(e.Media) > 0 {
			pairs := make([]string, 0, len(e.Media))
			for media, def := range e.Media {
				pairs = append(pairs, fmt.Sprintf(StrMediaPair, media, def))
			}
			sort.Strings(pairs)
			fmt.Fprintf(w, ListTextMedia+FmtNewline, strings.Join(pairs, StrListSep))
		}
		for _, a := range e.Arguments {
			name := a.Name
			if a.Keyword {
				name = fmt.Sprintf(ListKeywordMarker, a.Name)
			}
			line := fmt.Sprintf(ListTextArgument, name, a.Kind)
			switch {
			case a.Default != nil:
				line += fmt.Sprintf(ListDefaultMarker, a.Default)
			case !a.Keyword:
				line += ListRequiredMarker
			}
			if a.HelpText != "" {
				line += fmt.Sprintf(ListTextHelp, a.HelpText)
			}
			fmt.Fprintln(w, line)
		}
	}
}
