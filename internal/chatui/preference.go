package chatui

import "sync"

// DisplayPreference is the host's light/dark signal.
type DisplayPreference interface {
	IsDark() bool
	// Subscribe registers fn for changes and returns a function that
	// removes it.
	Subscribe(fn func(dark bool)) (cancel func())
}

// SettablePreference is a DisplayPreference whose value is set by its owner.
type SettablePreference struct {
	mu     sync.Mutex
	dark   bool
	nextID int
	subs   map[int]func(bool)
}

func NewSettablePreference(dark bool) *SettablePreference {
	return &SettablePreference{
		dark: dark,
		subs: make(map[int]func(bool)),
	}
}

func (p *SettablePreference) IsDark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dark
}

func (p *SettablePreference) Subscribe(fn func(dark bool)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Set changes the preference and notifies subscribers when it differs.
func (p *SettablePreference) Set(dark bool) {
	p.mu.Lock()
	if p.dark == dark {
		p.mu.Unlock()
		return
	}
	p.dark = dark
	subs := make([]func(bool), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(dark)
	}
}

// Subscribers returns the number of live subscriptions.
func (p *SettablePreference) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
