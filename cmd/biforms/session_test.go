package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/lsclient"
)

// languageService is a TCP JSON-RPC server answering the calls a form
// session makes.
type languageService struct {
	addr string

	mu      sync.Mutex
	methods []string
	delay   time.Duration
}

func startLanguageService(t *testing.T, delay time.Duration) *languageService {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	svc := &languageService{addr: ln.Addr().String(), delay: delay}
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		conns []jsonrpc2.Conn
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			conn := jsonrpc2.NewConn(jsonrpc2.NewStream(nc))
			conn.Go(context.Background(), svc.handle)
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		wg.Wait()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			_ = conn.Close()
			<-conn.Done()
		}
	})
	return svc
}

func (s *languageService) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.mu.Lock()
	s.methods = append(s.methods, req.Method())
	s.mu.Unlock()

	switch req.Method() {
	case lsclient.MethodFormDidOpen, lsclient.MethodFormDidClose:
		return reply(ctx, nil, nil)
	case lsclient.MethodExpressionCompletions:
		time.Sleep(s.delay)
		return reply(ctx, []protocol.CompletionItem{
			{Label: "http", Detail: "module", Kind: protocol.CompletionItemKindModule},
			{Label: "io", Detail: "module", Kind: protocol.CompletionItemKindModule},
		}, nil)
	case lsclient.MethodExpressionDiagnostics:
		time.Sleep(s.delay)
		return reply(ctx, lsclient.DiagnosticsResponse{Diagnostics: []protocol.Diagnostic{
			{Message: "undefined symbol 'htt'", Severity: protocol.DiagnosticSeverityError},
		}}, nil)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (s *languageService) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

func runConnected(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	return &stdout, run(t, a, args...)
}

func TestCompleteCommand_LanguageServiceOverTCP(t *testing.T) {
	svc := startLanguageService(t, 0)

	stdout, err := runConnected(t, "--address", svc.addr,
		"complete", "--form", formPath, "--field", "expression", "--text", "htt", "--plain")
	require.NoError(t, err)
	require.Equal(t, "http\n", stdout.String())

	require.Eventually(t, func() bool {
		calls := svc.calls()
		return len(calls) == 3 && calls[2] == lsclient.MethodFormDidClose
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []string{
		lsclient.MethodFormDidOpen,
		lsclient.MethodExpressionCompletions,
		lsclient.MethodFormDidClose,
	}, svc.calls())
}

func TestDiagnoseCommand_ConnectionOutlivesDialTimeout(t *testing.T) {
	t.Setenv("BIFORMS_SERVICE_TIMEOUT", "20ms")
	svc := startLanguageService(t, 80*time.Millisecond)

	stdout, err := runConnected(t, "--address", svc.addr, "diagnose", "--form", formPath)
	require.NoError(t, err)

	var got map[string][]protocol.Diagnostic
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got["expression"], 1)
	require.Equal(t, "undefined symbol 'htt'", got["expression"][0].Message)
}

func TestDiagnoseCommand_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = runConnected(t, "--address", addr, "diagnose", "--form", formPath)
	require.Error(t, err)
	var opErr *net.OpError
	require.True(t, errors.As(err, &opErr), "got %v", err)
}
