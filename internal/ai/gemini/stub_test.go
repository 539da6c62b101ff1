package gemini

import (
	"context"
	"sync"
)

type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	requests []Request
}

func (s *stubGenerator) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func (s *stubGenerator) last() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}
