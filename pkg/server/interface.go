/*
Package server implements msgpack IPC for LaTeX abbreviation completion.

The server reads a stream of msgpack maps from stdin and answers each one with
a single msgpack map on stdout. Every request carries an ID and an action; the
response echoes the ID.

# IPC

An editor plugin drives one completion cycle with three requests. On every
keystroke it asks whether the word before the cursor opens a lookup:

	{"id": "t1", "action": "trigger", "line": "solve ^frac", "cursor": 11}
	{"id": "t1", "ok": true, "q": "frac", "s": 6, "e": 11}

While the list is open it asks for candidates for the current query:

	{"id": "s1", "action": "suggest", "q": "frac", "l": 20}
	{"id": "s1", "s": [{"x": "\\frac{numerator}{denominator}", "r": 1}], "c": 1, "t": 12}

When the user picks one it asks what to insert:

	{"id": "i1", "action": "insert", "x": "\\frac{numerator}{denominator}", "line": "solve ^frac", "s": 6, "e": 11}
	{"id": "i1", "text": "$\\frac{numerator}{denominator}$", "line": "solve $\\frac{numerator}{denominator}$"}

Config messages read and change the start key and the custom mappings. Changes
are saved to the config file at once and apply from the next request:

	{"id": "c1", "action": "config", "op": "set_start_key", "start_key": ";"}
	{"id": "c2", "action": "config", "op": "set_mapping", "abbr": "zeta", "x": "\\zeta"}

Failed requests get a CompletionError with a status code instead.
*/
package server

import "github.com/bastiangx/mathserve/pkg/suggest"

// Actions understood by the server.
const (
	ActionTrigger = "trigger"
	ActionSuggest = "suggest"
	ActionInsert  = "insert"
	ActionConfig  = "config"
	ActionHealth  = "health"
)

// Config operations.
const (
	OpGet           = "get"
	OpSetStartKey   = "set_start_key"
	OpSetMapping    = "set_mapping"
	OpDeleteMapping = "delete_mapping"
)

// Envelope is decoded first to route a message by its action.
type Envelope struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
}

// TriggerRequest - is the word before the cursor an abbreviation
type TriggerRequest struct {
	ID     string `msgpack:"id"`
	Line   string `msgpack:"line"`
	Cursor int    `msgpack:"cursor"`
}

// TriggerResponse - lookup key and replacement span, only set when ok
type TriggerResponse struct {
	ID    string `msgpack:"id"`
	OK    bool   `msgpack:"ok"`
	Query string `msgpack:"q,omitempty"`
	Start int    `msgpack:"s"`
	End   int    `msgpack:"e"`
}

// SuggestRequest - minimal suggestion request
type SuggestRequest struct {
	ID    string `msgpack:"id"`
	Query string `msgpack:"q"`
	Limit int    `msgpack:"l,omitempty"`
}

// Candidate - one expansion and its position in the list
type Candidate struct {
	Expansion string `msgpack:"x"`
	Rank      uint16 `msgpack:"r"`
}

// SuggestResponse - suggestions in table order
type SuggestResponse struct {
	ID          string      `msgpack:"id"`
	Suggestions []Candidate `msgpack:"s"`
	Count       int         `msgpack:"c"`
	TimeTaken   int64       `msgpack:"t"`
}

// InsertRequest - chosen expansion and the line it goes into
type InsertRequest struct {
	ID        string `msgpack:"id"`
	Expansion string `msgpack:"x"`
	Line      string `msgpack:"line"`
	Start     int    `msgpack:"s"`
	End       int    `msgpack:"e"`
}

// InsertResponse - text to put over the span, and the resulting line
type InsertResponse struct {
	ID   string `msgpack:"id"`
	Text string `msgpack:"text"`
	Line string `msgpack:"line"`
}

// ConfigRequest - read or change the start key and mappings
type ConfigRequest struct {
	ID        string `msgpack:"id"`
	Op        string `msgpack:"op"`
	StartKey  string `msgpack:"start_key,omitempty"`
	Abbr      string `msgpack:"abbr,omitempty"`
	Expansion string `msgpack:"x,omitempty"`
}

// ConfigResponse - config operation response
type ConfigResponse struct {
	ID       string          `msgpack:"id"`
	Status   string          `msgpack:"status"`
	Error    string          `msgpack:"error,omitempty"`
	StartKey string          `msgpack:"start_key,omitempty"`
	Mappings []suggest.Entry `msgpack:"mappings,omitempty"`
}

// StatusResponse - ready and health messages
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
