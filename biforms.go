// Package biforms is the entry point to the expression editing layer: it
// connects to the language service, builds forms from node properties and
// renders them.
package biforms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/form"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/render"
	"github.com/goliatone/go-biforms/pkg/renderers/html"
	"github.com/goliatone/go-biforms/pkg/renderers/tui"
)

// ErrNoService is returned by Connect when no service location is set.
var ErrNoService = errors.New("biforms: no language service configured")

// RenderOptions aliases render.RenderOptions for callers that only import the
// root package.
type RenderOptions = render.RenderOptions

// ServiceConfig locates the language service. Address wins over Command,
// which wins over URL. DialTimeout bounds connecting to Address or URL.
type ServiceConfig struct {
	Network     string
	Address     string
	Command     string
	Args        []string
	URL         string
	Header      http.Header
	DialTimeout time.Duration
}

// Connect opens a JSON-RPC connection to the configured service. The
// connection, and a spawned service process, live until ctx is done or the
// connection is closed.
func Connect(ctx context.Context, cfg ServiceConfig, options ...lsclient.Option) (*lsclient.Conn, error) {
	dialer := lsclient.Dialer{Timeout: cfg.DialTimeout, Options: options}
	switch {
	case cfg.Address != "":
		network := cfg.Network
		if network == "" {
			network = "tcp"
		}
		return dialer.Dial(ctx, network, cfg.Address)
	case cfg.Command != "":
		return lsclient.Spawn(ctx, cfg.Command, cfg.Args, options...)
	case cfg.URL != "":
		return dialer.DialWebSocket(ctx, cfg.URL, cfg.Header)
	default:
		return nil, ErrNoService
	}
}

// BuildForm turns a form document into a model form.
func BuildForm(doc FormDocument, options ...model.BuilderOption) (model.Form, error) {
	if len(doc.Order) > 0 {
		options = append([]model.BuilderOption{model.WithFieldOrder(doc.Order...)}, options...)
	}
	f, err := model.NewBuilder(options...).Build(doc.Properties)
	if err != nil {
		return model.Form{}, err
	}
	f.FilePath = doc.FilePath
	f.TargetLineRange = doc.TargetLineRange
	return f, nil
}

// OpenForm creates a form instance and announces it to the service.
func OpenForm(ctx context.Context, client lsclient.Client, f model.Form, options ...form.Option) (*form.Instance, error) {
	inst, err := form.New(client, f.FilePath, f, options...)
	if err != nil {
		return nil, err
	}
	if err := inst.Open(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// NewRegistry returns a registry holding the html and tui renderers.
func NewRegistry(logger *zap.Logger, tuiOptions ...tui.Option) (*render.Registry, error) {
	htmlRenderer, err := html.New(html.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	tuiRenderer, err := tui.New(tuiOptions...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(htmlRenderer, tuiRenderer)
}
