package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms"
	"github.com/goliatone/go-biforms/internal/config"
	"github.com/goliatone/go-biforms/internal/logging"
	"github.com/goliatone/go-biforms/pkg/form"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/renderers/tui"
)

const (
	flagConfig  = "config"
	flagEnvFile = "env-file"
	flagVerbose = "verbose"
	flagAddress = "address"
	flagCommand = "command"
	flagURL     = "url"
	flagForm    = "form"
	flagErrors  = "errors"
)

type connectFunc func(ctx context.Context, svc biforms.ServiceConfig, logger *zap.Logger) (lsclient.Client, error)

// app holds the state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	envFile    string
	verbose    bool
	address    string
	command    string
	url        string

	cfg     config.Config
	logger  *zap.Logger
	connect connectFunc
	driver  tui.PromptDriver
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		logger:  zap.NewNop(),
		connect: dialService,
	}
}

func dialService(ctx context.Context, svc biforms.ServiceConfig, logger *zap.Logger) (lsclient.Client, error) {
	conn, err := biforms.Connect(ctx, svc, lsclient.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "biforms",
		Short: "Edit and validate expression forms against a language service",
		Long: `biforms loads a form document (the node properties of a diagram node),
connects to the language service and offers completions, diagnostics and
rendering for its expression fields.

  biforms complete --form node.yaml --field expression --text 'htt'
  biforms diagnose --form node.yaml
  biforms render --form node.yaml --renderer html
  biforms fill --form node.yaml
  biforms contract openapi.yaml --operation listPets`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, flagConfig, "c", "", "config file (.yaml, .yml or .toml)")
	flags.StringVar(&a.envFile, flagEnvFile, ".env", "dotenv file with BIFORMS_* overrides")
	flags.BoolVarP(&a.verbose, flagVerbose, "v", false, "enable debug logging")
	flags.StringVar(&a.address, flagAddress, "", "language service address (host:port)")
	flags.StringVar(&a.command, flagCommand, "", "language service command started over stdio")
	flags.StringVar(&a.url, flagURL, "", "language service WebSocket URL")

	root.AddCommand(
		newCompleteCmd(a),
		newDiagnoseCmd(a),
		newRenderCmd(a),
		newFillCmd(a),
		newContractCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed(flagAddress) {
		cfg.Service.Address = a.address
	}
	if flags.Changed(flagCommand) {
		cfg.Service.Command = a.command
	}
	if flags.Changed(flagURL) {
		cfg.Service.URL = a.url
	}
	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) serviceConfig() biforms.ServiceConfig {
	return biforms.ServiceConfig{
		Network:     a.cfg.Service.Network,
		Address:     a.cfg.Service.Address,
		Command:     a.cfg.Service.Command,
		Args:        a.cfg.Service.Args,
		URL:         a.cfg.Service.URL,
		DialTimeout: a.cfg.Service.Timeout.Std(),
	}
}

// loadForm reads and builds the form document at path.
func (a *app) loadForm(path string) (model.Form, error) {
	if path == "" {
		return model.Form{}, fmt.Errorf("--%s is required", flagForm)
	}
	doc, err := biforms.LoadFormDocument(path)
	if err != nil {
		return model.Form{}, err
	}
	if doc.FilePath == "" {
		doc.FilePath = a.cfg.FilePath
	}
	return biforms.BuildForm(doc)
}

// session is an open form bound to a live service connection.
type session struct {
	inst   *form.Instance
	client lsclient.Client
}

func (s *session) close(ctx context.Context) error {
	cerr := s.inst.Close(ctx)
	if err := s.client.Close(); err != nil {
		return err
	}
	return cerr
}

// openSession connects to the service and opens f on it. The connection lives
// as long as ctx; the configured service timeout only bounds the dial.
func (a *app) openSession(ctx context.Context, f model.Form, options ...form.Option) (*session, error) {
	client, err := a.connect(ctx, a.serviceConfig(), a.logger)
	if err != nil {
		return nil, err
	}

	opts := []form.Option{
		form.WithLogger(a.logger),
		form.WithDelay(a.cfg.Delay.Std()),
		form.WithTypesCacheSize(a.cfg.TypesCacheSize),
	}
	if a.cfg.DataMapper {
		opts = append(opts, form.WithDataMapper())
	}
	opts = append(opts, options...)

	inst, err := biforms.OpenForm(ctx, client, f, opts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	a.logger.Debug("form session opened",
		zap.String("file", f.FilePath),
		zap.Int("fields", len(f.Fields)),
		zap.Duration("delay", a.cfg.Delay.Std()),
	)
	return &session{inst: inst, client: client}, nil
}
