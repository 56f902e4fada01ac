package main

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itsatony/go-inlines"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	config      string
	definitions string
	templateDir string
	color       string
	log         bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           CmdNameRoot,
		Short:         CLIShort,
		Long:          CLILong,
		Version:       getVersionInfo().Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.config, FlagConfig, FlagConfigShort, "", HelpFlagConfig)
	pf.StringVarP(&g.definitions, FlagDefinitions, FlagDefinitionsShort, "", HelpFlagDefinitions)
	pf.StringVar(&g.templateDir, FlagTemplateDir, "", HelpFlagTemplateDir)
	pf.StringVar(&g.color, FlagColor, FlagDefaultColor, HelpFlagColor)
	pf.BoolVar(&g.log, FlagLog, false, HelpFlagLog)

	root.AddCommand(
		newRenderCmd(g),
		newValidateCmd(g),
		newListCmd(g),
		newVersionCmd(),
	)
	return root
}

// environment is what a command needs to render: the loaded config and a
// renderer over the registered definitions.
type environment struct {
	config   *inlines.Config
	registry *inlines.Registry
	renderer *inlines.Renderer
	logger   *zap.Logger
	closers  []func() error
}

func (e *environment) Close() {
	for _, c := range e.closers {
		_ = c()
	}
	_ = e.logger.Sync()
}

// setup loads config and definitions. Flags override config values.
func (g *globalFlags) setup(cmd *cobra.Command) (*environment, error) {
	if err := g.applyColor(); err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if g.log {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(cmd.ErrOrStderr()),
			zap.DebugLevel,
		)
		logger = zap.New(core)
	}

	cfg := &inlines.Config{}
	if g.config != "" {
		loaded, err := inlines.LoadConfig(g.config)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgLoadConfig, err)
		}
		cfg = loaded
	}
	if g.definitions != "" {
		cfg.Definitions = g.definitions
	}
	if g.templateDir != "" {
		cfg.TemplateDir = g.templateDir
	}

	env := &environment{config: cfg, registry: inlines.NewRegistry(logger), logger: logger}

	if cfg.Definitions != "" {
		set, err := inlines.LoadDefinitions(cfg.Definitions, logger)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgLoadDefinitions, err)
		}
		if err := set.Register(env.registry); err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgRegister, err)
		}
	}

	opts := append(cfg.Options(), inlines.WithRegistry(env.registry), inlines.WithLogger(logger))
	if cfg.TemplateDir != "" {
		templates := inlines.NewFSTemplateRenderer(os.DirFS(cfg.TemplateDir), inlines.WithTemplateLogger(logger))
		opts = append(opts, inlines.WithTemplateRenderer(templates))
	}
	if cfg.Postgres.DSN != "" {
		store, err := inlines.NewPostgresObjectStore(inlines.PostgresConfig{
			ConnectionString: cfg.Postgres.DSN,
			DefaultTable:     cfg.Postgres.Table,
		}, logger)
		if err != nil {
			return nil, fail(ExitCodeError, ErrMsgObjectStore, err)
		}
		env.closers = append(env.closers, store.Close)
		opts = append(opts, inlines.WithObjectStore(store))
	}

	r, err := inlines.New(opts...)
	if err != nil {
		env.Close()
		return nil, fail(ExitCodeError, ErrMsgCreateRenderer, err)
	}
	env.renderer = r
	return env, nil
}

func (g *globalFlags) applyColor() error {
	switch g.color {
	case ColorAuto:
		// fatih/color already disables itself off a terminal.
	case ColorOn:
		color.NoColor = false
	case ColorOff:
		color.NoColor = true
	default:
		return fail(ExitCodeUsageError, ErrMsgInvalidColor, errors.New(g.color))
	}
	return nil
}
