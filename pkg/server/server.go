package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/strokecheck/pkg/boundary"
	"github.com/bastiangx/strokecheck/pkg/dictionary"
	"github.com/bastiangx/strokecheck/pkg/strokes"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers boundary error queries over msgpack IPC.
type Server struct {
	mu      sync.Mutex
	dict    *dictionary.Dictionary
	matcher *boundary.Matcher
	reloads int

	dec *msgpack.Decoder
	enc *msgpack.Encoder
	out *bufio.Writer
}

// NewServer creates a server over dict using stdin/stdout for IPC.
func NewServer(dict *dictionary.Dictionary) *Server {
	return NewServerWithIO(dict, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w.
func NewServerWithIO(dict *dictionary.Dictionary, r io.Reader, w io.Writer) *Server {
	out := bufio.NewWriter(w)
	s := &Server{
		dec: msgpack.NewDecoder(bufio.NewReader(r)),
		enc: msgpack.NewEncoder(out),
		out: out,
	}
	s.setDictionary(dict)
	return s
}

// SetDictionary replaces the dictionary between requests and drops the matcher cache.
// It is safe to call while Start is running.
func (s *Server) SetDictionary(dict *dictionary.Dictionary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDictionary(dict)
	s.reloads++
	log.Debugf("Server dictionary replaced, %d entries", dict.Len())
}

func (s *Server) setDictionary(dict *dictionary.Dictionary) {
	s.dict = dict
	s.matcher = boundary.NewMatcher(dict.Trie(), false)
}

// Start sends the ready message and answers requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.sendResponse(map[string]string{"status": "ready"})

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading from stdin: %v", err)
			return err
		}

		var request CheckRequest
		if err := msgpack.Unmarshal(raw, &request); err != nil {
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(request)
	}
}

func (s *Server) handleRequest(request CheckRequest) {
	switch request.Action {
	case "", "check":
		s.handleCheck(request)
	case "get_info":
		s.mu.Lock()
		response := DictionaryResponse{
			ID:        request.ID,
			Status:    "ok",
			Entries:   s.dict.Len(),
			CacheSize: s.matcher.CacheSize(),
			Reloads:   s.reloads,
		}
		s.mu.Unlock()
		s.sendResponse(response)
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), 400)
	}
}

func (s *Server) handleCheck(request CheckRequest) {
	if request.Strokes == "" {
		s.sendError(request.ID, "Missing 's' parameter", 400)
		log.Debug("Strokes are empty in request")
		return
	}
	seq, err := strokes.Parse(request.Strokes)
	if err != nil {
		s.sendError(request.ID, fmt.Sprintf("invalid stroke sequence %q: %v", request.Strokes, err), 400)
		return
	}

	s.mu.Lock()
	start := time.Now()
	set := boundary.EntryErrors(s.matcher, seq, !request.Trivial)
	elapsed := time.Since(start)

	matches := make([]CheckMatch, 0, set.Len())
	for _, m := range set.Sorted() {
		key := m.Explanation.String()
		if request.Translate {
			key = boundary.Annotate(key, s.dict)
		}
		matches = append(matches, CheckMatch{Explanation: key, Count: m.Count})
	}
	s.mu.Unlock()

	log.Debugf("Took [ %v ] for %s", elapsed, seq)
	s.sendResponse(CheckResponse{
		ID:        request.ID,
		Matches:   matches,
		Count:     len(matches),
		TimeTaken: elapsed.Microseconds(),
	})
}

// sendResponse encodes response and flushes it so the client sees it immediately.
func (s *Server) sendResponse(response any) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(CheckError{ID: id, Error: message, Code: code})
}
