package diagnostics

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/ontomerge/pkg/logging"
)

// Collector accumulates diagnostics from concurrent workers.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records d and logs it through the context logger.
func (c *Collector) Add(ctx context.Context, d Diagnostic) {
	if d.Severity == "" {
		d.Severity = d.Code.Severity()
	}
	log(logging.FromContext(ctx), d)

	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// AddAll records several diagnostics.
func (c *Collector) AddAll(ctx context.Context, ds []Diagnostic) {
	for _, d := range ds {
		c.Add(ctx, d)
	}
}

// Diagnostics returns a sorted copy of everything collected.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	out := slices.Clone(c.items)
	c.mu.Unlock()
	Sort(out)
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count returns how many diagnostics carry code.
func (c *Collector) Count(code Code) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Counts returns the number of diagnostics per code.
func Counts(ds []Diagnostic) map[Code]int {
	out := make(map[Code]int)
	for _, d := range ds {
		out[d.Code]++
	}
	return out
}

// Filter returns the diagnostics carrying code.
func Filter(ds []Diagnostic, code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func log(logger *zerolog.Logger, d Diagnostic) {
	event := logger.Warn()
	if d.Severity == SeverityNote {
		event = logger.Info()
	}
	event = event.Str("code", string(d.Code)).Str("stage", string(d.Stage))
	if d.Class != "" {
		event = event.Str("class", d.Class)
	}
	if d.IRI != "" {
		event = event.Str("iri", d.IRI)
	}
	if len(d.Related) > 0 {
		event = event.Strs("related", d.Related)
	}
	event.Msg(d.Message)
}
