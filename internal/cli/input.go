// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/mathserve/internal/logger"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

var (
	expansionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	lineStyle      = lipgloss.NewStyle().Bold(true)
	hintStyle      = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
)

// InputHandler reads editor lines from stdin and plays one completion cycle
// per line, with the cursor at the end of it. Candidates are listed with a
// number and the user picks one, or presses Enter to dismiss the list.
//
// Lines starting with ':' are commands:
//
//	:key <marker>          change the start key
//	:map <abbr> <latex>    add or replace a mapping
//	:unmap <abbr>          remove a mapping
//	:stats                 show table stats
type InputHandler struct {
	completer    suggest.ICompleter
	store        suggest.ConfigStore
	suggestLimit int
	reader       *bufio.Reader
	logger       *log.Logger
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, store suggest.ConfigStore, limit int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		completer:    completer,
		store:        store,
		suggestLimit: limit,
		reader:       bufio.NewReader(in),
		logger:       logger.Console(out, ""),
	}
}

// Start begins the interface loop.
// It returns nil once the input is exhausted.
func (h *InputHandler) Start() error {
	h.logger.Print("MathServe CLI [BETA]")
	h.logger.Printf("type a line ending in %s<abbr> and press Enter (Ctrl+C to exit):",
		h.store.Snapshot().StartMarker)

	for {
		h.logger.Print("> ")
		line, err := h.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) readLine() (string, error) {
	line, err := h.reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// handleInput runs one completion cycle for line.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	start := time.Now()
	cursor := utf8.RuneCountInString(line)

	edit, ok := h.completer.Complete(line, cursor, h)
	log.Debugf("Took [ %v ] for request %d", time.Since(start), h.requestCount)
	if !ok {
		return
	}
	h.logger.Print("=> " + lineStyle.Render(edit.Apply(line)))
}

// Select lists candidates and reads the user's choice.
func (h *InputHandler) Select(trigger suggest.Trigger, candidates []string) (string, bool) {
	if h.suggestLimit > 0 && len(candidates) > h.suggestLimit {
		candidates = candidates[:h.suggestLimit]
	}

	h.logger.Printf("Found %d expansions for '%s':", len(candidates), trigger.Query)
	for i, c := range candidates {
		h.logger.Printf("%2d. %s", i+1, expansionStyle.Render(c))
	}
	h.logger.Print(hintStyle.Render("pick a number, Enter to dismiss"))

	for {
		choice, err := h.readLine()
		if err != nil {
			return "", false
		}
		choice = strings.TrimSpace(choice)
		if choice == "" {
			return "", false
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(candidates) {
			h.logger.Errorf("Invalid choice: %s", choice)
			continue
		}
		return candidates[n-1], true
	}
}

// handleCommand applies a ':' command to the config store.
func (h *InputHandler) handleCommand(line string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch name {
	case "key":
		if arg == "" {
			err = errors.New("start key cannot be empty")
			break
		}
		err = h.store.SetStartMarker(arg)
		if err == nil {
			h.logger.Infof("Start key set to %q", arg)
		}
	case "map":
		abbr, expansion, found := strings.Cut(arg, " ")
		expansion = strings.TrimSpace(expansion)
		if !found || abbr == "" || expansion == "" {
			err = errors.New("usage: :map <abbr> <latex>")
			break
		}
		err = h.setMapping(abbr, expansion)
		if err == nil {
			h.logger.Infof("Mapped %s => %s", abbr, expansionStyle.Render(expansion))
		}
	case "unmap":
		var existed bool
		existed, err = h.deleteMapping(arg)
		if err == nil && !existed {
			err = errors.Newf("no mapping for %q", arg)
		}
		if err == nil {
			h.logger.Infof("Removed %s", arg)
		}
	case "stats":
		stats := h.completer.Stats()
		h.logger.Print("", "mappings", stats["mappings"], "markerLength", stats["markerLength"],
			"minQueryLength", stats["minQueryLength"])
	default:
		err = errors.Newf("unknown command %q", name)
	}
	if err != nil {
		h.logger.Errorf("Command failed: %v", err)
	}
}

// mappingEditor is implemented by stores that change one mapping under
// their own lock, so a concurrent reload is not overwritten.
type mappingEditor interface {
	SetMapping(abbr, expansion string) error
	DeleteMapping(abbr string) (bool, error)
}

func (h *InputHandler) setMapping(abbr, expansion string) error {
	if editor, ok := h.store.(mappingEditor); ok {
		return editor.SetMapping(abbr, expansion)
	}
	return h.store.SetMappings(h.store.Snapshot().Table.With(abbr, expansion))
}

func (h *InputHandler) deleteMapping(abbr string) (bool, error) {
	if editor, ok := h.store.(mappingEditor); ok {
		return editor.DeleteMapping(abbr)
	}
	table := h.store.Snapshot().Table
	if _, ok := table.Lookup(abbr); !ok {
		return false, nil
	}
	return true, h.store.SetMappings(table.Without(abbr))
}
