// Package lsp serves abbreviation completion to any LSP client over stdio.
package lsp

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bastiangx/mathserve/internal/logger"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const (
	serverName   = "mathserve"
	completionID = "mathserve-completion"
)

// Handler implements the LSP handlers backed by a completer.
type Handler struct {
	completer suggest.ICompleter
	store     suggest.ConfigStore
	version   string
	limit     int
	logger    *log.Logger
	documents map[string]string // URI -> document content
	mu        sync.RWMutex

	// dynamic is set when the client lets completion be registered at
	// runtime; the trigger character then follows the start key.
	dynamic    bool
	registered []string
	regMu      sync.Mutex
}

// NewHandler returns a handler serving completions from completer. Candidate
// lists are cut at limit when limit > 0.
func NewHandler(completer suggest.ICompleter, store suggest.ConfigStore, version string, limit int) *Handler {
	return &Handler{
		completer: completer,
		store:     store,
		version:   version,
		limit:     limit,
		logger:    logger.New("lsp"),
		documents: make(map[string]string),
	}
}

// Server wraps the handler in a glsp server.
func (h *Handler) Server(debug bool) *glspserver.Server {
	protocolHandler := protocol.Handler{
		Initialize:             h.Initialize,
		Initialized:            h.Initialized,
		Shutdown:               h.Shutdown,
		SetTrace:               h.SetTrace,
		TextDocumentDidOpen:    h.TextDocumentDidOpen,
		TextDocumentDidChange:  h.TextDocumentDidChange,
		TextDocumentDidClose:   h.TextDocumentDidClose,
		TextDocumentCompletion: h.TextDocumentCompletion,
	}
	return glspserver.NewServer(&protocolHandler, serverName, debug)
}

// RunStdio serves LSP on stdin/stdout until the client exits.
func (h *Handler) RunStdio(debug bool) error {
	h.logger.Debug("Serving LSP over stdio")
	return h.Server(debug).RunStdio()
}

// Initialize handles LSP initialize request
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.logger.Info("LSP client initializing", "client", clientName(params))

	h.dynamic = supportsDynamicCompletion(params)

	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &openClose,
			Change:    &syncKind,
		},
	}
	if !h.dynamic {
		capabilities.CompletionProvider = &protocol.CompletionOptions{
			TriggerCharacters: h.triggerCharacters(),
		}
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &h.version,
		},
	}, nil
}

// triggerCharacters asks the client to request completions right after
// the start marker is typed. Later letters re-query on their own because
// results are marked incomplete.
func (h *Handler) triggerCharacters() []string {
	marker := h.store.Snapshot().StartMarker
	if marker == "" {
		return nil
	}
	r, _ := utf8.DecodeLastRuneInString(marker)
	return []string{string(r)}
}

func supportsDynamicCompletion(params *protocol.InitializeParams) bool {
	if params == nil || params.Capabilities.TextDocument == nil {
		return false
	}
	completion := params.Capabilities.TextDocument.Completion
	return completion != nil && completion.DynamicRegistration != nil && *completion.DynamicRegistration
}

// syncTriggerCharacters registers completion with the trigger character of
// the current start key, replacing an earlier registration when the key
// changed. It does nothing for clients without dynamic registration.
func (h *Handler) syncTriggerCharacters(ctx *glsp.Context) {
	if !h.dynamic || ctx == nil || ctx.Call == nil {
		return
	}
	chars := h.triggerCharacters()

	h.regMu.Lock()
	defer h.regMu.Unlock()
	if h.registered != nil && slices.Equal(h.registered, chars) {
		return
	}
	replace := h.registered != nil
	h.registered = append([]string{}, chars...)

	h.logger.Debug("Registering completion", "triggerCharacters", chars)
	// the client answers on the connection this handler is serving
	go func() {
		if replace {
			ctx.Call(protocol.ServerClientUnregisterCapability, protocol.UnregistrationParams{
				Unregisterations: []protocol.Unregistration{{ID: completionID, Method: protocol.MethodTextDocumentCompletion}},
			}, nil)
		}
		ctx.Call(protocol.ServerClientRegisterCapability, protocol.RegistrationParams{
			Registrations: []protocol.Registration{{
				ID:              completionID,
				Method:          protocol.MethodTextDocumentCompletion,
				RegisterOptions: protocol.CompletionOptions{TriggerCharacters: chars},
			}},
		}, nil)
	}()
}

func clientName(params *protocol.InitializeParams) string {
	if params == nil || params.ClientInfo == nil {
		return "unknown"
	}
	return params.ClientInfo.Name
}

// Initialized is called after client receives InitializeResult
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	h.logger.Debug("LSP client initialized")
	h.syncTriggerCharacters(ctx)
	return nil
}

// Shutdown handles LSP shutdown request
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	h.logger.Info("LSP client shutting down")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// SetTrace follows the client's trace setting
func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen caches the opened document
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)
	h.documents[uri] = params.TextDocument.Text
	h.logger.Debug("Document opened", "uri", uri, "length", len(params.TextDocument.Text))
	return nil
}

// TextDocumentDidChange replaces the cached document (full sync)
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	h.syncTriggerCharacters(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			h.documents[uri] = whole.Text
		}
	}
	return nil
}

// TextDocumentDidClose drops the cached document
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)
	delete(h.documents, uri)
	h.logger.Debug("Document closed", "uri", uri)
	return nil
}

// TextDocumentCompletion returns expansions for the abbreviation before the
// cursor. Each item replaces the whole trigger span, marker included.
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in completion handler", "panic", r, "uri", params.TextDocument.URI)
			result = emptyList()
			err = nil
		}
	}()

	h.mu.RLock()
	text, ok := h.documents[string(params.TextDocument.URI)]
	h.mu.RUnlock()
	if !ok {
		return emptyList(), nil
	}

	line, ok := lineAt(text, int(params.Position.Line))
	if !ok {
		return emptyList(), nil
	}
	cursor := utf16ToRunes(line, int(params.Position.Character))

	trigger, ok := h.completer.Trigger(line, cursor)
	if !ok {
		return emptyList(), nil
	}
	candidates := h.completer.Suggest(trigger.Query, h.limit)

	editRange := protocol.Range{
		Start: protocol.Position{Line: params.Position.Line, Character: protocol.UInteger(runesToUTF16(line, trigger.Span.Start))},
		End:   protocol.Position{Line: params.Position.Line, Character: protocol.UInteger(runesToUTF16(line, trigger.Span.End))},
	}
	typed := string([]rune(line)[trigger.Span.Start:trigger.Span.End])
	kind := protocol.CompletionItemKindSnippet

	items := make([]protocol.CompletionItem, len(candidates))
	for i, expansion := range candidates {
		edit := h.completer.Insert(expansion, line, trigger.Span)
		sortText := sortKey(i)
		items[i] = protocol.CompletionItem{
			Label:      expansion,
			Kind:       &kind,
			FilterText: &typed,
			SortText:   &sortText,
			TextEdit:   protocol.TextEdit{Range: editRange, NewText: edit.Text},
			Documentation: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: "$$" + expansion + "$$",
			},
		}
	}

	h.logger.Debug("LSP completion", "query", trigger.Query, "count", len(items))
	return protocol.CompletionList{IsIncomplete: true, Items: items}, nil
}

func emptyList() protocol.CompletionList {
	return protocol.CompletionList{IsIncomplete: true, Items: []protocol.CompletionItem{}}
}

// sortKey keeps the client's list in table order.
func sortKey(i int) string {
	return fmt.Sprintf("%05d", i)
}

// lineAt returns line n of text without its line ending.
func lineAt(text string, n int) (string, bool) {
	if n < 0 {
		return "", false
	}
	for i := 0; i < n; i++ {
		next := strings.IndexByte(text, '\n')
		if next < 0 {
			return "", false
		}
		text = text[next+1:]
	}
	if end := strings.IndexByte(text, '\n'); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSuffix(text, "\r"), true
}

// utf16ToRunes converts an LSP character offset into a rune offset.
func utf16ToRunes(line string, units int) int {
	runes, seen := 0, 0
	for _, r := range line {
		if seen >= units {
			break
		}
		seen += utf16Len(r)
		runes++
	}
	return runes
}

// runesToUTF16 converts a rune offset into an LSP character offset.
func runesToUTF16(line string, runes int) int {
	units, n := 0, 0
	for _, r := range line {
		if n >= runes {
			break
		}
		units += utf16Len(r)
		n++
	}
	return units
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
