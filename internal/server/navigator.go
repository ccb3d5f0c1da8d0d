package server

import "sync"

// redirectNavigator records the path the form navigated to so the handler
// can answer with a redirect once the submission settles.
type redirectNavigator struct {
	mu   sync.Mutex
	path string
}

func (n *redirectNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}

func (n *redirectNavigator) target() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path, n.path != ""
}
