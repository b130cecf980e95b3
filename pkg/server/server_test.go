package server

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/mathserve/pkg/config"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const frac = `\frac{numerator}{denominator}`

func init() {
	log.SetLevel(log.FatalLevel)
}

// session runs the server over the given requests and returns a decoder
// positioned after the ready message.
func session(t *testing.T, store *config.Store, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	var out bytes.Buffer
	srv := NewServerWithIO(suggest.NewCompleter(store), store, &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func testStore(t *testing.T) *config.Store {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Mappings = []suggest.Entry{
		{Abbr: "fraction", Expansion: frac},
		{Abbr: "sum", Expansion: `\sum_{i=1}^{n}`},
		{Abbr: "summation", Expansion: `\sum`},
	}
	cfg.Server.MaxLimit = 2
	cfg.Server.DefaultLimit = 1
	return config.NewStore(cfg, filepath.Join(t.TempDir(), "config.toml"))
}

type msg map[string]any

func TestTriggerSuggestInsertCycle(t *testing.T) {
	dec := session(t, testStore(t),
		msg{"id": "t1", "action": "trigger", "line": "solve ^frac", "cursor": 11},
		msg{"id": "t2", "action": "trigger", "line": "^a", "cursor": 2},
		msg{"id": "s1", "action": "suggest", "q": "frac", "l": 10},
		msg{"id": "i1", "action": "insert", "x": frac, "line": "solve ^frac", "s": 6, "e": 11},
		msg{"id": "i2", "action": "insert", "x": frac, "line": "$solve ^frac", "s": 7, "e": 12},
	)

	var trig TriggerResponse
	require.NoError(t, dec.Decode(&trig))
	assert.Equal(t, TriggerResponse{ID: "t1", OK: true, Query: "frac", Start: 6, End: 11}, trig)

	require.NoError(t, dec.Decode(&trig))
	assert.Equal(t, "t2", trig.ID)
	assert.False(t, trig.OK)

	var sug SuggestResponse
	require.NoError(t, dec.Decode(&sug))
	assert.Equal(t, "s1", sug.ID)
	assert.Equal(t, 1, sug.Count)
	assert.Equal(t, []Candidate{{Expansion: frac, Rank: 1}}, sug.Suggestions)

	var ins InsertResponse
	require.NoError(t, dec.Decode(&ins))
	assert.Equal(t, "$"+frac+"$", ins.Text)
	assert.Equal(t, "solve $"+frac+"$", ins.Line)

	require.NoError(t, dec.Decode(&ins))
	assert.Equal(t, frac, ins.Text)
	assert.Equal(t, "$solve "+frac, ins.Line)
}

func TestSuggestLimits(t *testing.T) {
	dec := session(t, testStore(t),
		msg{"id": "default", "action": "suggest", "q": "sum"},
		msg{"id": "clamped", "action": "suggest", "q": "sum", "l": 50},
		msg{"id": "none", "action": "suggest", "q": "zzz", "l": 5},
	)

	var sug SuggestResponse
	require.NoError(t, dec.Decode(&sug))
	assert.Equal(t, 1, sug.Count)

	require.NoError(t, dec.Decode(&sug))
	assert.Equal(t, 2, sug.Count)
	assert.Equal(t, `\sum_{i=1}^{n}`, sug.Suggestions[0].Expansion)
	assert.Equal(t, uint16(2), sug.Suggestions[1].Rank)

	require.NoError(t, dec.Decode(&sug))
	assert.Equal(t, "none", sug.ID)
	assert.Equal(t, 0, sug.Count)
}

func TestConfigOps(t *testing.T) {
	store := testStore(t)
	dec := session(t, store,
		msg{"id": "c1", "action": "config", "op": "set_start_key", "start_key": ";"},
		msg{"id": "t1", "action": "trigger", "line": ";sum", "cursor": 4},
		msg{"id": "c2", "action": "config", "op": "set_mapping", "abbr": "zeta", "x": `\zeta`},
		msg{"id": "c3", "action": "config", "op": "delete_mapping", "abbr": "nope"},
		msg{"id": "c4", "action": "config", "op": "set_start_key", "start_key": ""},
		msg{"id": "c5", "action": "config", "op": "explode"},
	)

	var cfg ConfigResponse
	require.NoError(t, dec.Decode(&cfg))
	assert.Equal(t, "ok", cfg.Status)
	assert.Equal(t, ";", cfg.StartKey)
	assert.Len(t, cfg.Mappings, 3)

	var trig TriggerResponse
	require.NoError(t, dec.Decode(&trig))
	assert.True(t, trig.OK)
	assert.Equal(t, "sum", trig.Query)

	require.NoError(t, dec.Decode(&cfg))
	assert.Equal(t, "ok", cfg.Status)
	require.Len(t, cfg.Mappings, 4)
	assert.Equal(t, suggest.Entry{Abbr: "zeta", Expansion: `\zeta`}, cfg.Mappings[3])

	var cerr CompletionError
	require.NoError(t, dec.Decode(&cerr))
	assert.Equal(t, CompletionError{ID: "c3", Error: "No mapping for abbr: nope", Code: 404}, cerr)

	require.NoError(t, dec.Decode(&cfg))
	assert.Equal(t, "error", cfg.Status)
	assert.Equal(t, ";", cfg.StartKey)

	require.NoError(t, dec.Decode(&cerr))
	assert.Equal(t, 400, cerr.Code)

	onDisk, err := config.LoadConfig(store.Path())
	require.NoError(t, err)
	assert.Equal(t, ";", onDisk.Trigger.StartKey)
}

func TestUnknownAndMalformedRequests(t *testing.T) {
	dec := session(t, testStore(t),
		msg{"id": "u1", "action": "dance"},
		msg{"id": "m1", "action": "trigger", "cursor": "eleven"},
		msg{"id": "i1", "action": "insert", "line": "x"},
		msg{"id": "h1", "action": "health"},
	)

	var cerr CompletionError
	require.NoError(t, dec.Decode(&cerr))
	assert.Equal(t, CompletionError{ID: "u1", Error: "Unknown action: dance", Code: 400}, cerr)

	require.NoError(t, dec.Decode(&cerr))
	assert.Equal(t, "m1", cerr.ID)
	assert.Equal(t, 400, cerr.Code)

	require.NoError(t, dec.Decode(&cerr))
	assert.Equal(t, "i1", cerr.ID)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "h1", Status: "ok"}, health)
}

func TestTruncatedInput(t *testing.T) {
	full, err := msgpack.Marshal(msg{"id": "t1", "action": "health"})
	require.NoError(t, err)

	in := bytes.NewReader(full[:len(full)-3])
	var out bytes.Buffer
	store := testStore(t)
	srv := NewServerWithIO(suggest.NewCompleter(store), store, in, &out)
	assert.Error(t, srv.Start())
}

type brokenReader struct {
	reads int
}

func (r *brokenReader) Read([]byte) (int, error) {
	r.reads++
	return 0, errors.New("input/output error")
}

func TestBrokenInputStopsServer(t *testing.T) {
	in := &brokenReader{}
	var out bytes.Buffer
	store := testStore(t)
	srv := NewServerWithIO(suggest.NewCompleter(store), store, in, &out)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input/output error")
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept running on a failing input")
	}
	assert.Less(t, in.reads, 10)

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Zero(t, out.Len())
}

func TestMalformedMessageIsSkipped(t *testing.T) {
	health, err := msgpack.Marshal(msg{"id": "h1", "action": "health"})
	require.NoError(t, err)

	// 0xc1 is never used by msgpack
	in := bytes.NewReader(append([]byte{0xc1}, health...))
	var out bytes.Buffer
	store := testStore(t)
	srv := NewServerWithIO(suggest.NewCompleter(store), store, in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))

	var cerr CompletionError
	require.NoError(t, dec.Decode(&cerr))
	assert.Equal(t, 400, cerr.Code)

	var status StatusResponse
	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, StatusResponse{ID: "h1", Status: "ok"}, status)
}
