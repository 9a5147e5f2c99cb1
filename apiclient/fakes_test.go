package apiclient

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeSession struct {
	mu      sync.Mutex
	token   string
	refresh string

	refreshFn    func(ctx context.Context) (string, error)
	refreshCalls atomic.Int32
	clearCalls   atomic.Int32
}

func (s *fakeSession) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) HasRefreshToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh != ""
}

func (s *fakeSession) RefreshAccessToken(ctx context.Context) (string, error) {
	s.refreshCalls.Add(1)
	token, err := s.refreshFn(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

func (s *fakeSession) Clear(context.Context) {
	s.clearCalls.Add(1)
	s.mu.Lock()
	s.token, s.refresh = "", ""
	s.mu.Unlock()
}

type fakeNavigator struct {
	redirects atomic.Int32
	prompts   atomic.Int32
}

func (n *fakeNavigator) RedirectToLogin()        { n.redirects.Add(1) }
func (n *fakeNavigator) PromptReauthentication() { n.prompts.Add(1) }
