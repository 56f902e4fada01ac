package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/itsatony/go-inlines"
	"github.com/itsatony/go-inlines/internal"
)

// validateFlags holds parsed validate command configuration
type validateFlags struct {
	media  string
	format string
	jobs   int
}

// validationOutput is the structured validation report.
type validationOutput struct {
	Valid bool               `json:"valid" yaml:"valid" msgpack:"valid"`
	Files []fileReportOutput `json:"files" yaml:"files" msgpack:"files"`
}

type fileReportOutput struct {
	Path   string        `json:"path" yaml:"path" msgpack:"path"`
	Issues []issueOutput `json:"issues,omitempty" yaml:"issues,omitempty" msgpack:"issues,omitempty"`
}

type issueOutput struct {
	Line        int      `json:"line" yaml:"line" msgpack:"line"`
	Category    string   `json:"category" yaml:"category" msgpack:"category"`
	Message     string   `json:"message" yaml:"message" msgpack:"message"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty" msgpack:"suggestions,omitempty"`
}

var (
	syntaxColor     = color.New(color.FgRed, color.Bold)
	validationColor = color.New(color.FgYellow, color.Bold)
	suggestColor    = color.New(color.FgCyan)
)

func newValidateCmd(g *globalFlags) *cobra.Command {
	f := &validateFlags{}

	cmd := &cobra.Command{
		Use:     CmdNameValidate + " [files|-]",
		Short:   HelpValidateShort,
		Long:    HelpValidateLong,
		Example: HelpValidateExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.media, FlagMedia, FlagMediaShort, "", HelpFlagMedia)
	fl.StringVarP(&f.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, HelpFlagFormat)
	fl.IntVarP(&f.jobs, FlagJobs, FlagJobsShort, FlagDefaultJobs, HelpFlagJobs)
	return cmd
}

func runValidate(cmd *cobra.Command, g *globalFlags, f *validateFlags, args []string) error {
	switch f.format {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatMsgpack:
	default:
		return fail(ExitCodeUsageError, ErrMsgInvalidFormat, fmt.Errorf("%s", f.format))
	}
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
	opts = append(opts,
		inlines.WithRaiseErrors(true),
		inlines.WithVerboseErrors(false),
		inlines.WithLogErrors(false),
	)

	results, err := renderAll(cmd.Context(), env.renderer, sources, f.jobs, opts)
	if err != nil {
		return fail(ExitCodeError, ErrMsgRenderFailed, err)
	}

	report := buildReport(sources, results)
	stdout := cmd.OutOrStdout()
	if f.format == OutputFormatText {
		writeValidationText(stdout, report)
	} else if err := encodeReport(stdout, f.format, report); err != nil {
		return fail(ExitCodeError, ErrMsgEncodeFailed, err)
	}

	if !report.Valid {
		return fail(ExitCodeValidationError, ErrMsgInlineErrors, nil)
	}
	return nil
}

func buildReport(sources []source, results []renderResult) validationOutput {
	report := validationOutput{Valid: true, Files: make([]fileReportOutput, 0, len(sources))}
	for i, res := range results {
		file := fileReportOutput{Path: sources[i].name}
		for _, le := range res.errs {
			file.Issues = append(file.Issues, issueOutput{
				Line:        le.Line,
				Category:    le.Category.String(),
				Message:     le.Message,
				Suggestions: le.Suggestions,
			})
		}
		if len(file.Issues) > 0 {
			report.Valid = false
		}
		report.Files = append(report.Files, file)
	}
	return report
}

func writeValidationText(w io.Writer, report validationOutput) {
	if report.Valid {
		fmt.Fprintln(w, ValidationTextSuccess)
		return
	}

	total, files := 0, 0
	for _, file := range report.Files {
		if len(file.Issues) > 0 {
			files++
		}
		for _, issue := range file.Issues {
			total++
			line := fmt.Sprintf(ValidationTextIssue, file.Path, issue.Line, categoryColor(issue.Category).Sprint(issue.Category), issue.Message)
			if hint := internal.FormatSuggestions(issue.Suggestions); hint != "" {
				line += ValidationSuggestSep + suggestColor.Sprint(hint)
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintf(w, ValidationTextSummary+FmtNewline, total, files)
}

func categoryColor(category string) *color.Color {
	if category == inlines.CategorySyntax.String() {
		return syntaxColor
	}
	return validationColor
}

func encodeReport(w io.Writer, format string, report validationOutput) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case OutputFormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case OutputFormatMsgpack:
		return msgpack.NewEncoder(w).Encode(report)
	default:
		return fmt.Errorf("%s: %s", ErrMsgInvalidFormat, strings.TrimSpace(format))
	}
}
