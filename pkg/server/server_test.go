package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/strokecheck/pkg/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func testDict(t *testing.T, pairs ...string) *dictionary.Dictionary {
	t.Helper()
	d := dictionary.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		require.NoError(t, d.Set(pairs[i], pairs[i+1]))
	}
	return d
}

func aheadDict(t *testing.T) *dictionary.Dictionary {
	return testDict(t, "A", "a", "HED", "head", "A/HED", "ahead", "HED/KWAR", "header", "HED/-S", "heads")
}

// run feeds requests to a server and returns a decoder positioned after the ready message.
func run(t *testing.T, s func(in, out *bytes.Buffer) *Server, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, s(&in, &out).Start())

	dec := msgpack.NewDecoder(&out)
	var ready map[string]string
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready["status"])
	return dec
}

func TestServerCheck(t *testing.T) {
	newServer := func(in, out *bytes.Buffer) *Server {
		return NewServerWithIO(aheadDict(t), in, out)
	}
	dec := run(t, newServer,
		CheckRequest{ID: "1", Strokes: "A/HED", Trivial: true},
		CheckRequest{ID: "2", Strokes: "A/HED"},
		CheckRequest{ID: "3", Strokes: "A/HED", Trivial: true, Translate: true},
		CheckRequest{ID: "4", Strokes: "KAT"},
	)

	var r CheckResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, []CheckMatch{{"A HED/<open>", 2}, {"A HED", 1}}, r.Matches)
	assert.Equal(t, 2, r.Count)

	r = CheckResponse{}
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "2", r.ID)
	assert.Equal(t, []CheckMatch{{"A HED/<open>", 2}}, r.Matches)

	r = CheckResponse{}
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, []CheckMatch{{"A: a HED/<open>", 2}, {"A: a HED: head", 1}}, r.Matches)

	r = CheckResponse{}
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "4", r.ID)
	assert.Empty(t, r.Matches)
	assert.Equal(t, 0, r.Count)
}

func TestServerErrors(t *testing.T) {
	newServer := func(in, out *bytes.Buffer) *Server {
		return NewServerWithIO(aheadDict(t), in, out)
	}
	dec := run(t, newServer,
		CheckRequest{ID: "bad", Strokes: "A//HED"},
		CheckRequest{ID: "empty"},
		"not a request",
		CheckRequest{ID: "unknown", Action: "set_size"},
		CheckRequest{ID: "after", Strokes: "A/HED", Trivial: true},
	)

	for _, want := range []string{"bad", "empty", "", "unknown"} {
		var e CheckError
		require.NoError(t, dec.Decode(&e))
		assert.Equal(t, want, e.ID)
		assert.Equal(t, 400, e.Code)
		assert.NotEmpty(t, e.Error)
	}

	var r CheckResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, "after", r.ID, "server keeps answering after errors")
	assert.Equal(t, 2, r.Count)
}

func TestServerSetDictionary(t *testing.T) {
	var srv *Server
	newServer := func(in, out *bytes.Buffer) *Server {
		srv = NewServerWithIO(aheadDict(t), in, out)
		srv.SetDictionary(testDict(t, "A", "a", "B", "b", "A/B", "ab"))
		return srv
	}
	dec := run(t, newServer,
		CheckRequest{ID: "info", Action: "get_info"},
		CheckRequest{ID: "check", Strokes: "A/B", Trivial: true},
	)

	var info DictionaryResponse
	require.NoError(t, dec.Decode(&info))
	assert.Equal(t, "ok", info.Status)
	assert.Equal(t, 3, info.Entries)
	assert.Equal(t, 1, info.Reloads)

	var r CheckResponse
	require.NoError(t, dec.Decode(&r))
	assert.Equal(t, []CheckMatch{{"A B", 1}}, r.Matches)
}
