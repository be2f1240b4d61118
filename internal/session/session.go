// Package session holds the per-visitor selection state. State lives only
// in process memory and starts over on every restart.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/metrics"
	"github.com/lox/vicenergy/internal/models"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Selection is a snapshot of one session's control values. ClickedMonth is
// zero until a box in the box plot is clicked.
type Selection struct {
	LineVariable    models.Variable `json:"line_variable"`
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	ScatterVariable models.Variable `json:"scatter_variable"`
	YearFrom        int             `json:"year_from"`
	YearTo          int             `json:"year_to"`
	ClickedMonth    int             `json:"clicked_month,omitempty"`
}

// State is the mutable selection of one session.
type State struct {
	mu       sync.Mutex
	sel      Selection
	minYear  int
	maxYear  int
	lastSeen time.Time
}

// Defaults returns the initial selection for ds: every control at the
// value the page first renders with.
func Defaults(ds *dataset.Dataset) Selection {
	return Selection{
		LineVariable:    models.VarDemand,
		Start:           ds.MinDate,
		End:             ds.MaxDate,
		ScatterVariable: models.VarMaxTemperature,
		YearFrom:        ds.MinYear,
		YearTo:          ds.MaxYear,
	}
}

func newState(ds *dataset.Dataset, now time.Time) *State {
	return &State{
		sel:      Defaults(ds),
		minYear:  ds.MinYear,
		maxYear:  ds.MaxYear,
		lastSeen: now,
	}
}

// Snapshot returns a copy of the current selection.
func (s *State) Snapshot() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetLine records the time series controls.
func (s *State) SetLine(v models.Variable, start, end time.Time) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.LineVariable = v
	s.sel.Start = start
	s.sel.End = end
	return s.sel
}

// SetScatter records the correlation variable.
func (s *State) SetScatter(v models.Variable) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ScatterVariable = v
	return s.sel
}

// SetYears records the year slider, clamped to the dataset's years and
// ordered so YearFrom <= YearTo.
func (s *State) SetYears(from, to int) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from > to {
		from, to = to, from
	}
	s.sel.YearFrom = clamp(from, s.minYear, s.maxYear)
	s.sel.YearTo = clamp(to, s.minYear, s.maxYear)
	return s.sel
}

// Click replaces the drill-down month.
func (s *State) Click(month int) (Selection, error) {
	if month < 1 || month > 12 {
		return s.Snapshot(), fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ClickedMonth = month
	return s.sel, nil
}

// ClearClick returns the drill-down chart to its overview.
func (s *State) ClearClick() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ClickedMonth = 0
	return s.sel
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Manager maps session ids to their state. Sessions unused for longer than
// the TTL are dropped on the next lookup.
type Manager struct {
	mu       sync.Mutex
	ds       *dataset.Dataset
	ttl      time.Duration
	sessions map[string]*State
	now      func() time.Time
}

func NewManager(ds *dataset.Dataset, ttl time.Duration) *Manager {
	return &Manager{
		ds:       ds,
		ttl:      ttl,
		sessions: make(map[string]*State),
		now:      time.Now,
	}
}

// Get returns the state for id, creating a fresh session (with a new id)
// when id is empty or unknown. The returned id is the one to hand back to
// the client.
func (m *Manager) Get(id string) (string, *State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	if st, ok := m.sessions[id]; ok && id != "" {
		st.mu.Lock()
		st.lastSeen = now
		st.mu.Unlock()
		return id, st
	}

	id = uuid.NewString()
	st := newState(m.ds, now)
	m.sessions[id] = st
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return id, st
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweep(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, st := range m.sessions {
		st.mu.Lock()
		idle := now.Sub(st.lastSeen)
		st.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
}
