package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/wordlens/pkg/config"
	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newManager(t *testing.T) *dictionary.Manager {
	t.Helper()
	m := dictionary.NewManager(dictionary.WithCacheSize(4))
	m.LoadDictionaries([]dictionary.Source{
		dictionary.NewSource("no_words", domain.Word, map[string]map[string]any{
			"springer_verb": {"translation": "runs", "partOfSpeech": "verb", "baseForm": "springe"},
			"morgen":        {"translation": "morning", "partOfSpeech": "noun", "baseForm": "morgen"},
		}),
		dictionary.NewSource("no_phrases", domain.Phrase, map[string]map[string]any{
			"god morgen": {"translation": "good morning", "partOfSpeech": "phrase", "baseForm": "god morgen"},
		}),
	})
	return m
}

// runJSON feeds one request per line and returns the decoded response lines,
// skipping the ready message.
func runJSON(t *testing.T, m *dictionary.Manager, cfg *config.Config, requests ...string) []map[string]any {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Server.Codec = "json"

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	srv, err := NewServerWithIO(m, dictionary.NewLoader("", 1), cfg, "", in, &out)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))

	var responses []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.NotEmpty(t, responses)
	assert.Equal(t, "ready", responses[0]["status"])
	return responses[1:]
}

func TestFind(t *testing.T) {
	resps := runJSON(t, newManager(t), nil, `{"id":"r1","cmd":"find","text":"God morgen! Han springer."}`)
	require.Len(t, resps, 1)
	resp := resps[0]
	assert.Equal(t, "r1", resp["id"])
	assert.EqualValues(t, 2, resp["count"])

	anns := resp["annotations"].([]any)
	first := anns[0].(map[string]any)
	assert.Equal(t, "god morgen", first["pattern"])
	assert.Equal(t, "phrase", first["kind"])
	assert.Equal(t, "God morgen", first["matchedText"])
	related := first["related"].([]any)
	require.Len(t, related, 1)
	assert.Equal(t, "morgen", related[0].(map[string]any)["pattern"])

	second := anns[1].(map[string]any)
	assert.Equal(t, "springer", second["pattern"])
	assert.EqualValues(t, 16, second["start"])
	assert.EqualValues(t, 24, second["end"])
}

func TestFindErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxTextLength = 5
	resps := runJSON(t, newManager(t), cfg,
		`{"id":"big","cmd":"find","text":"far too long"}`,
		`{"id":"ok","cmd":"find","text":"hei"}`,
	)
	require.Len(t, resps, 2)
	assert.EqualValues(t, CodeTooLarge, resps[0]["c"])
	assert.EqualValues(t, 0, resps[1]["count"])
	assert.Equal(t, []any{}, resps[1]["annotations"])

	resps = runJSON(t, dictionary.NewManager(), nil, `{"id":"nb","cmd":"find","text":"hei"}`)
	assert.EqualValues(t, CodeUnavailable, resps[0]["c"])
}

func TestBadRequests(t *testing.T) {
	resps := runJSON(t, newManager(t), nil,
		`{not json`,
		`{"id":"x"}`,
		`{"id":"y","cmd":"dance"}`,
		``,
		`{"id":"z","cmd":"health"}`,
	)
	require.Len(t, resps, 4)
	assert.EqualValues(t, CodeBadRequest, resps[0]["c"])
	assert.EqualValues(t, CodeBadRequest, resps[1]["c"])
	assert.Contains(t, resps[2]["e"], "Unknown command")
	assert.Equal(t, "ok", resps[3]["status"])
	assert.Equal(t, true, resps[3]["ready"])
	assert.Contains(t, resps[3]["formats"], ".json")
	assert.Contains(t, resps[3]["formats"], ".msgpack")
}

func TestCompleteAndLookup(t *testing.T) {
	resps := runJSON(t, newManager(t), nil,
		`{"id":"c","cmd":"complete","prefix":"spr","limit":3}`,
		`{"id":"l","cmd":"lookup","pattern":"Springer"}`,
		`{"id":"m","cmd":"lookup","pattern":"katt"}`,
	)
	require.Len(t, resps, 3)
	sugg := resps[0]["suggestions"].([]any)
	require.Len(t, sugg, 1)
	assert.Equal(t, "springer", sugg[0].(map[string]any)["pattern"])
	assert.EqualValues(t, 1, sugg[0].(map[string]any)["rank"])

	assert.Equal(t, "springer", resps[1]["pattern"])
	meanings := resps[1]["meanings"].([]any)
	assert.Equal(t, "runs", meanings[0].(map[string]any)["translation"])
	assert.Equal(t, "no_words", meanings[0].(map[string]any)["source"])

	assert.EqualValues(t, CodeNotFound, resps[2]["c"])
}

func TestLoadRemoveList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sv_words.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hej": {"translation": "hi", "partOfSpeech": "interjection", "baseForm": "hej"}}`), 0o644))

	m := newManager(t)
	req, _ := json.Marshal(Request{ID: "load", Command: "load", Path: path})
	resps := runJSON(t, m, nil,
		string(req),
		`{"id":"find","cmd":"find","text":"hej"}`,
		`{"id":"rm","cmd":"remove","dict":"no_words"}`,
		`{"id":"rm2","cmd":"remove","dict":"no_words"}`,
		`{"id":"list","cmd":"list"}`,
		`{"id":"missing","cmd":"load","path":"/nope/x.json"}`,
	)
	require.Len(t, resps, 6)
	assert.Equal(t, "loaded", resps[0]["status"])
	assert.Len(t, resps[0]["dictionaries"], 3)
	assert.EqualValues(t, 1, resps[1]["count"])
	assert.Equal(t, "removed", resps[2]["status"])
	assert.EqualValues(t, CodeNotFound, resps[3]["c"])

	dicts := resps[4]["dictionaries"].([]any)
	require.Len(t, dicts, 2)
	assert.Equal(t, "no_phrases", dicts[0].(map[string]any)["id"])
	assert.Equal(t, "phrase", dicts[0].(map[string]any)["kind"])
	assert.Equal(t, "sv_words", dicts[1].(map[string]any)["id"])
	assert.EqualValues(t, CodeNotFound, resps[5]["c"])
}

func TestConfigAndStats(t *testing.T) {
	m := newManager(t)
	resps := runJSON(t, m, nil,
		`{"id":"get","cmd":"config"}`,
		`{"id":"set","cmd":"config","max_text_length":3,"cache_size":0}`,
		`{"id":"bad","cmd":"config","max_text_length":0}`,
		`{"id":"find","cmd":"find","text":"morgen"}`,
		`{"id":"stats","cmd":"stats"}`,
	)
	require.Len(t, resps, 5)
	assert.Equal(t, "ok", resps[0]["status"])
	assert.Equal(t, "json", resps[0]["codec"])
	assert.Equal(t, "updated", resps[1]["status"])
	assert.EqualValues(t, 3, resps[1]["max_text_length"])
	assert.EqualValues(t, CodeBadRequest, resps[2]["c"])
	assert.EqualValues(t, CodeTooLarge, resps[3]["c"])

	stats := resps[4]["stats"].(map[string]any)
	assert.Equal(t, true, stats["ready"])
	assert.EqualValues(t, 3, stats["patterns"])
}

func TestMsgpackCodec(t *testing.T) {
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	require.NoError(t, enc.Encode(Request{ID: "r1", Command: "find", Text: "Han springer."}))
	require.NoError(t, enc.Encode(Request{ID: "r2", Command: "health"}))

	var out bytes.Buffer
	srv, err := NewServerWithIO(newManager(t), dictionary.NewLoader("", 1), config.DefaultConfig(), "", &in, &out)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	assert.EqualValues(t, 2, srv.Requests())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)

	var found FindResponse
	require.NoError(t, dec.Decode(&found))
	assert.Equal(t, "r1", found.ID)
	require.Len(t, found.Annotations, 1)
	assert.Equal(t, "springer", found.Annotations[0].Pattern)
	assert.Equal(t, "word", found.Annotations[0].Kind)
	assert.Equal(t, 4, found.Annotations[0].Start)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "r2", health.ID)
	assert.True(t, health.Ready)
	assert.Equal(t, dictionary.SupportedExtensions(), health.Formats)
}

func TestNewCodecUnknown(t *testing.T) {
	_, err := NewCodec("xml", nil, nil)
	assert.Error(t, err)
}
