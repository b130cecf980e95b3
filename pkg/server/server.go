package server

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/bastiangx/mathserve/internal/logger"
	"github.com/bastiangx/mathserve/internal/utils"
	"github.com/bastiangx/mathserve/pkg/config"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the msgpack IPC for abbreviation completions
type Server struct {
	completer suggest.ICompleter
	store     *config.Store
	input     *inputReader
	decoder   *msgpack.Decoder
	writer    *bufio.Writer
	encoder   *msgpack.Encoder
	logger    *log.Logger
}

// NewServer creates a new completion server using stdin/stdout for IPC
func NewServer(completer suggest.ICompleter, store *config.Store) *Server {
	return NewServerWithIO(completer, store, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w
func NewServerWithIO(completer suggest.ICompleter, store *config.Store, r io.Reader, w io.Writer) *Server {
	bw := bufio.NewWriter(w)
	in := &inputReader{r: r}
	return &Server{
		completer: completer,
		store:     store,
		input:     in,
		decoder:   msgpack.NewDecoder(bufio.NewReader(in)),
		writer:    bw,
		encoder:   msgpack.NewEncoder(bw),
		logger:    logger.New("ipc"),
	}
}

// Start begins listening for IPC requests. It returns nil when the input
// ends between two messages and an error when reading the input fails.
// Malformed messages are answered with a 400 and skipped.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Client closed input")
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return errors.Wrap(err, "reading request")
			}
			if s.input.err != nil {
				return errors.Wrap(s.input.err, "reading request")
			}
			s.logger.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(raw)
	}
}

// inputReader remembers the first read error of the underlying reader, so
// a broken input can be told apart from a malformed message.
type inputReader struct {
	r   io.Reader
	err error
}

func (ir *inputReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if err != nil && err != io.EOF && ir.err == nil {
		ir.err = err
	}
	return n, err
}

// handleRequest routes a raw message by its action
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	var env Envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		s.logger.Errorf("Unmarshaling envelope: %v", err)
		s.sendError("", "Invalid request envelope", 400)
		return
	}

	switch env.Action {
	case ActionTrigger:
		var req TriggerRequest
		if s.decode(raw, env.ID, &req) {
			s.handleTrigger(req)
		}
	case ActionSuggest:
		var req SuggestRequest
		if s.decode(raw, env.ID, &req) {
			s.handleSuggest(req)
		}
	case ActionInsert:
		var req InsertRequest
		if s.decode(raw, env.ID, &req) {
			s.handleInsert(req)
		}
	case ActionConfig:
		var req ConfigRequest
		if s.decode(raw, env.ID, &req) {
			s.handleConfig(req)
		}
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: env.ID, Status: "ok"})
	default:
		s.sendError(env.ID, "Unknown action: "+env.Action, 400)
	}
}

func (s *Server) decode(raw msgpack.RawMessage, id string, v any) bool {
	if err := msgpack.Unmarshal(raw, v); err != nil {
		s.logger.Errorf("Unmarshaling request %s: %v", id, err)
		s.sendError(id, "Malformed request fields", 400)
		return false
	}
	return true
}

func (s *Server) handleTrigger(req TriggerRequest) {
	trigger, ok := s.completer.Trigger(req.Line, req.Cursor)
	if !ok {
		s.sendResponse(TriggerResponse{ID: req.ID})
		return
	}
	s.sendResponse(TriggerResponse{
		ID:    req.ID,
		OK:    true,
		Query: trigger.Query,
		Start: trigger.Span.Start,
		End:   trigger.Span.End,
	})
}

func (s *Server) handleSuggest(req SuggestRequest) {
	limit := s.resolveLimit(req.Limit)

	start := time.Now()
	candidates := s.completer.Suggest(req.Query, limit)
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(candidates))
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = Candidate{Expansion: c, Rank: ranks[i]}
	}
	s.logger.Debugf("Took [ %v ] for query '%s' (%d candidates)", elapsed, req.Query, len(out))

	s.sendResponse(SuggestResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// resolveLimit applies the configured default and maximum
func (s *Server) resolveLimit(requested int) int {
	cfg := config.DefaultConfig().Server
	if s.store != nil {
		cfg = s.store.Config().Server
	}
	if requested < 1 {
		return cfg.DefaultLimit
	}
	if requested > cfg.MaxLimit {
		return cfg.MaxLimit
	}
	return requested
}

func (s *Server) handleInsert(req InsertRequest) {
	if req.Expansion == "" {
		s.sendError(req.ID, "Missing 'x' parameter", 400)
		return
	}
	span := suggest.Span{Start: req.Start, End: req.End}
	edit := s.completer.Insert(req.Expansion, req.Line, span)
	s.sendResponse(InsertResponse{
		ID:   req.ID,
		Text: edit.Text,
		Line: edit.Apply(req.Line),
	})
}

func (s *Server) handleConfig(req ConfigRequest) {
	if s.store == nil {
		s.sendError(req.ID, "Config store not available", 500)
		return
	}

	var err error
	switch req.Op {
	case OpGet, "":
	case OpSetStartKey:
		err = s.store.SetStartMarker(req.StartKey)
	case OpSetMapping:
		err = s.store.SetMapping(req.Abbr, req.Expansion)
	case OpDeleteMapping:
		var existed bool
		existed, err = s.store.DeleteMapping(req.Abbr)
		if err == nil && !existed {
			s.sendError(req.ID, "No mapping for abbr: "+req.Abbr, 404)
			return
		}
	default:
		s.sendError(req.ID, "Unknown config op: "+req.Op, 400)
		return
	}

	resp := ConfigResponse{ID: req.ID, Status: "ok"}
	if err != nil {
		s.logger.Warnf("Config op %s failed: %v", req.Op, err)
		resp.Status = "error"
		resp.Error = err.Error()
	}
	cfg := s.store.Config()
	resp.StartKey = cfg.Trigger.StartKey
	resp.Mappings = cfg.Mappings
	s.sendResponse(resp)
}

// sendResponse encodes the response and flushes it to the client
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(CompletionError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
