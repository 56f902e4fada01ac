package main

// Command names
const (
	CmdNameRoot     = "inlines"
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameList     = "list"
	CmdNameVersion  = "version"
)

// Flag names - long form
const (
	FlagConfig      = "config"
	FlagDefinitions = "definitions"
	FlagTemplateDir = "template-dir"
	FlagColor       = "color"
	FlagLog         = "log"
	FlagMedia       = "media"
	FlagVerbose     = "verbose"
	FlagJobs        = "jobs"
	FlagOutput      = "output"
	FlagFormat      = "format"
)

// Flag names - short form
const (
	FlagConfigShort      = "c"
	FlagDefinitionsShort = "d"
	FlagMediaShort       = "m"
	FlagVerboseShort     = "v"
	FlagJobsShort        = "j"
	FlagOutputShort      = "o"
	FlagFormatShort      = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = OutputFormatText
	FlagDefaultColor  = ColorAuto
	FlagDefaultJobs   = 4
)

// Color modes
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// Output formats
const (
	OutputFormatText    = "text"
	OutputFormatJSON    = "json"
	OutputFormatYAML    = "yaml"
	OutputFormatMsgpack = "msgpack"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUsage             = "invalid usage"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgInvalidColor      = "invalid color mode"
	ErrMsgInvalidJobs       = "jobs must be at least 1"
	ErrMsgLoadConfig        = "failed to load config"
	ErrMsgLoadDefinitions   = "failed to load definitions"
	ErrMsgRegister          = "failed to register definitions"
	ErrMsgObjectStore       = "failed to open object store"
	ErrMsgCreateRenderer    = "failed to create renderer"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgRenderFailed      = "render failed"
	ErrMsgInlineErrors      = "inline errors found"
	ErrMsgEncodeFailed      = "failed to encode output"
)

// Help text
const (
	CLIShort = "Render text with embedded inlines"
	CLILong  = `inlines expands {{ name:variant args key=value }} calls in text using
inlines declared in a definitions file (YAML or TOML).`

	HelpRenderShort = "Render files (use \"-\" or no file for stdin)"
	HelpRenderLong  = `Render expands every inline of each file. Files are rendered concurrently
and written to the output in the order given. Any syntax or validation
error fails the command with exit code 3.`
	HelpRenderExample = `  inlines render -d inlines.yaml page.txt
  inlines render -d inlines.yaml -m print -j 8 a.txt b.txt -o out.txt
  cat page.txt | inlines render -d inlines.yaml -`

	HelpValidateShort = "Report every inline error of the given files"
	HelpValidateLong  = `Validate renders each file and reports all syntax and validation errors
with their line, category and name suggestions. Exit code 3 means errors
were found.`
	HelpValidateExample = `  inlines validate -d inlines.yaml page.txt
  inlines validate -d inlines.yaml -F json *.txt`

	HelpListShort    = "List registered inlines"
	HelpVersionShort = "Show version information"

	HelpFlagConfig      = "config file (.yaml, .yml or .toml)"
	HelpFlagDefinitions = "definitions file (.yaml, .yml or .toml)"
	HelpFlagTemplateDir = "directory holding inline templates"
	HelpFlagColor       = "colorize output (auto|on|off)"
	HelpFlagLog         = "write debug logs to stderr"
	HelpFlagMedia       = "output media"
	HelpFlagVerbose     = "prefix errors with line and category"
	HelpFlagJobs        = "maximum files rendered at once"
	HelpFlagOutput      = "output file"
	HelpFlagFormat      = "output format (text|json|yaml|msgpack)"
	HelpFlagFormatBasic = "output format (text|json)"
)

// Validation output
const (
	ValidationTextSuccess = "No inline errors found"
	ValidationTextIssue   = "%s:%d: [%s] %s"
	ValidationTextSummary = "%d error(s) in %d file(s)"
	ValidationSuggestSep  = " "
	StdinDisplayName      = "<stdin>"
)

// List output
const (
	ListTextEntry      = "%s (%s)"
	ListTextVariants   = "  variants: %s"
	ListTextMedia      = "  media: %s"
	ListTextArgument   = "  %s %s"
	ListTextHelp       = " - %s"
	ListTextEmpty      = "No inlines registered"
	ListKeywordMarker  = "%s="
	ListDefaultMarker  = " [default %v]"
	ListRequiredMarker = " [required]"
)

// Version output
const (
	VersionTextTemplate = "go-inlines version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
	VersionsFileName    = "versions.yaml"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithCause = "%s: %v\n"
	FmtFileError      = "%s: %s\n"
	FmtNewline        = "\n"
	StrListSep        = ", "
	StrMediaPair      = "%s=%s"
)
