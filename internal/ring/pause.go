package ring

// The pause gate is cooperative and advisory. Setting it does not take the
// device mutex and does not block anyone; it only makes subsequent Append
// calls fail fast with ErrPaused until Resume. A long bulk reader brackets
// its scan with Pause/Resume so the ring stops advancing under it, but the
// guarantee holds only because the reader and the producer both cooperate
// and share the same device instance for raw access. A direct writer that
// ignores the gate can still race the reader.

// Pause makes subsequent Append calls fail fast with ErrPaused.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Resume re-enables appends.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
}

// Paused reports whether the pause gate is set.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}
