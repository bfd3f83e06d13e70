/*
Package server implements msgpack IPC for boundary error queries.

The server reads a stream of msgpack messages from stdin and writes one msgpack response
per request to stdout. Logs go to stderr. On start it sends:

	{"status": "ready"}

A check request names a stroke sequence. "t" includes exact retilings (A/HED read as A HED),
"a" annotates explanations with translations:

	{"id": "req_001", "s": "A/HED", "t": true}

The response lists explanations most frequent first, with the time taken in microseconds:

	{"id": "req_001", "m": [{"x": "A HED/<open>", "c": 2}, {"x": "A HED", "c": 1}], "c": 2, "t": 31}

Invalid sequences get an error with code 400:

	{"id": "req_002", "e": "invalid stroke sequence \"A//B\": empty stroke in sequence", "c": 400}

Dictionary requests carry an action instead of strokes:

	{"id": "dict_001", "action": "get_info"}

One matcher is kept for the lifetime of the server, so repeated queries over shared
suffixes are answered from its cache until the dictionary is replaced.
*/
package server

// CheckRequest asks for the boundary errors of one stroke sequence.
type CheckRequest struct {
	ID        string `msgpack:"id"`
	Action    string `msgpack:"action,omitempty"`
	Strokes   string `msgpack:"s"`
	Trivial   bool   `msgpack:"t,omitempty"`
	Translate bool   `msgpack:"a,omitempty"`
}

// CheckMatch is one explanation and its multiplicity.
type CheckMatch struct {
	Explanation string `msgpack:"x"`
	Count       int    `msgpack:"c"`
}

// CheckResponse answers a CheckRequest.
type CheckResponse struct {
	ID        string       `msgpack:"id"`
	Matches   []CheckMatch `msgpack:"m"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
}

// DictionaryResponse answers a dictionary action.
type DictionaryResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Entries   int    `msgpack:"entries"`
	CacheSize int    `msgpack:"cache_size"`
	Reloads   int    `msgpack:"reloads"`
}

// CheckError holds basic error information for failed requests
type CheckError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
