package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkordes/eldplan/internal/domain"
)

// Defaults for Options fields left at zero.
const (
	DefaultDebounce = 400 * time.Millisecond
	DefaultMinChars = 3
	DefaultTimeout  = 5 * time.Second
)

// Options configures an Autocompleter.
type Options struct {
	Filters  Filters
	Debounce time.Duration
	MinChars int
	// Timeout bounds each forward query.
	Timeout time.Duration
	Logger  *slog.Logger

	// OnChange fires on every edit with a nil coordinate, and on selection
	// with the chosen candidate's coordinate. It runs without internal locks
	// held.
	OnChange func(text string, c *domain.Coordinates)

	// OnSuggestions fires whenever the suggestion list is replaced.
	OnSuggestions func(s []Candidate)
}

// InputState is a snapshot of one location input.
type InputState struct {
	Text        string      `json:"text"`
	Suggestions []Candidate `json:"suggestions"`
	Open        bool        `json:"open"`
	Selected    bool        `json:"selected"`
	Valid       bool        `json:"valid"`
	Seq         uint64      `json:"seq"`
	// Pending is true while the query for Seq is debouncing or in flight.
	Pending bool `json:"pending"`
}

// Autocompleter models a text field bound to debounced forward geocoding.
//
// Every edit bumps a sequence number. A query result is applied only while
// its sequence number is still the latest; older in-flight queries have their
// context cancelled and their results dropped.
type Autocompleter struct {
	geo  Geocoder
	opts Options
	log  *slog.Logger

	mu          sync.Mutex
	seq         uint64
	timer       *time.Timer
	cancel      context.CancelFunc
	text        string
	suggestions []Candidate
	open        bool
	selected    bool
	pending     bool
	closed      bool
}

// NewAutocompleter returns an Autocompleter querying geo.
func NewAutocompleter(geo Geocoder, opts Options) *Autocompleter {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Filters.Limit <= 0 {
		opts.Filters.Limit = DefaultLimit
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Autocompleter{geo: geo, opts: opts, log: log}
}

// SetText records an edit. Short input clears the suggestions at once;
// anything else schedules a query after the debounce interval.
func (a *Autocompleter) SetText(text string) {
	q := strings.TrimSpace(text)
	short := utf8.RuneCountInString(q) < a.opts.MinChars

	a.mu.Lock()
	seq := a.supersedeLocked()
	a.text = text
	a.selected = false
	hadSuggestions := len(a.suggestions) > 0
	if short {
		a.suggestions = nil
		a.open = false
	} else if !a.closed {
		a.timer = time.AfterFunc(a.opts.Debounce, func() { a.run(seq, q) })
		a.pending = true
	}
	a.mu.Unlock()

	if short && hadSuggestions {
		a.emitSuggestions(nil)
	}
	if a.opts.OnChange != nil {
		a.opts.OnChange(text, nil)
	}
}

// Select picks suggestion i: the text becomes the candidate's address, the
// list closes and OnChange receives the coordinate.
// Returns domain.ErrValidation when i is out of range.
func (a *Autocompleter) Select(i int) (Candidate, error) {
	a.mu.Lock()
	if i < 0 || i >= len(a.suggestions) {
		n := len(a.suggestions)
		a.mu.Unlock()
		return Candidate{}, fmt.Errorf("geocode.Autocompleter.Select: %w: suggestion %d out of range (have %d)", domain.ErrValidation, i, n)
	}
	c := a.suggestions[i]
	a.supersedeLocked()
	a.text = c.Address
	a.selected = true
	a.suggestions = nil
	a.open = false
	a.mu.Unlock()

	a.emitSuggestions(nil)
	if a.opts.OnChange != nil {
		coords := c.Coordinates
		a.opts.OnChange(c.Address, &coords)
	}
	return c, nil
}

// Fill sets the text as if a location had been chosen elsewhere (e.g. a map
// click). Pending queries are dropped and OnChange does not fire.
func (a *Autocompleter) Fill(text string) {
	a.mu.Lock()
	a.supersedeLocked()
	a.text = text
	a.selected = true
	a.suggestions = nil
	a.open = false
	a.mu.Unlock()
}

// Clear empties the field and resets its validity. It does not fire OnChange;
// the owner that clears the field already knows.
func (a *Autocompleter) Clear() {
	a.mu.Lock()
	a.supersedeLocked()
	a.text = ""
	a.suggestions = nil
	a.open = false
	a.selected = false
	a.mu.Unlock()
}

// Close stops pending timers and cancels in-flight queries. Later edits are
// still recorded but never queried.
func (a *Autocompleter) Close() {
	a.mu.Lock()
	a.closed = true
	a.supersedeLocked()
	a.mu.Unlock()
}

// Valid is a length heuristic only. It does not mean the text was geocoded.
func (a *Autocompleter) Valid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validLocked()
}

// State returns a snapshot of the input.
func (a *Autocompleter) State() InputState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return InputState{
		Text:        a.text,
		Suggestions: cloneCandidates(a.suggestions),
		Open:        a.open,
		Selected:    a.selected,
		Valid:       a.validLocked(),
		Seq:         a.seq,
		Pending:     a.pending,
	}
}

// Suggestions returns the current suggestion list. Never nil.
func (a *Autocompleter) Suggestions() []Candidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneCandidates(a.suggestions)
}

func (a *Autocompleter) validLocked() bool {
	return utf8.RuneCountInString(strings.TrimSpace(a.text)) >= a.opts.MinChars
}

// supersedeLocked invalidates every pending or in-flight query and returns
// the new sequence number.
func (a *Autocompleter) supersedeLocked() uint64 {
	a.seq++
	a.pending = false
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	return a.seq
}

func (a *Autocompleter) run(seq uint64, q string) {
	a.mu.Lock()
	if seq != a.seq || a.closed {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.Timeout)
	a.cancel = cancel
	a.timer = nil
	a.mu.Unlock()
	defer cancel()

	results, err := a.geo.Forward(ctx, q, a.opts.Filters)

	a.mu.Lock()
	if seq != a.seq {
		a.mu.Unlock()
		a.log.Debug("discarding stale suggestions", "query", q, "seq", seq)
		return
	}
	a.cancel = nil
	a.pending = false
	if err != nil {
		a.log.Warn("forward geocoding failed", "query", q, "error", err)
		results = nil
	}
	a.suggestions = results
	a.open = len(results) > 0
	out := cloneCandidates(results)
	a.mu.Unlock()

	a.emitSuggestions(out)
}

func (a *Autocompleter) emitSuggestions(s []Candidate) {
	if a.opts.OnSuggestions != nil {
		a.opts.OnSuggestions(s)
	}
}

func cloneCandidates(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	copy(out, in)
	return out
}
