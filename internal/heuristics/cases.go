package heuristics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
	"github.com/google/uuid"
)

// Case File Manager
//
// An analyst:
//   1. Opens a case for one or more wallets
//   2. Moves it open → investigating → closed
//   3. Attaches wallets, notes and evidence as the work progresses
//
// Cases live in memory and are written through to a CaseStore when one is
// configured, so a restart can warm-start from the database.

// ErrCaseNotFound is returned for an unknown case ID.
var ErrCaseNotFound = errors.New("case not found")

// ErrInvalidCase is returned when required case input is missing.
var ErrInvalidCase = errors.New("invalid case")

// CaseStore persists case files.
//
//go:generate mockgen -destination=mocks/mock_case_store.go -package=mock_heuristics . CaseStore
type CaseStore interface {
	SaveCase(ctx context.Context, c models.CaseFile) error
	ListCases(ctx context.Context) ([]models.CaseFile, error)
}

// CaseEvent is one entry in a case timeline.
type CaseEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"eventType"` // created/status/evidence/wallet/notes/assignee/priority
	Description string    `json:"description"`
}

// NewCase is the input for CaseManager.Create.
type NewCase struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Priority    models.Severity `json:"priority"`
	Wallets     []string        `json:"wallets"`
	Assignee    string          `json:"assignee"`
	Notes       string          `json:"notes"`
	Evidence    []string        `json:"evidence"`
}

// CaseUpdate changes selected fields of a case. Nil fields are left alone;
// AttachWallets is appended, skipping wallets already attached.
type CaseUpdate struct {
	Status        *models.CaseStatus `json:"status"`
	Priority      *models.Severity   `json:"priority"`
	Assignee      *string            `json:"assignee"`
	Notes         *string            `json:"notes"`
	AttachWallets []string           `json:"attachWallets"`
}

// CaseManager handles CRUD for case files
type CaseManager struct {
	mu       sync.RWMutex
	cases    map[string]models.CaseFile
	timeline map[string][]CaseEvent
	store    CaseStore
	now      func() time.Time
}

// NewCaseManager creates a manager. store may be nil.
func NewCaseManager(store CaseStore) *CaseManager {
	return &CaseManager{
		cases:    make(map[string]models.CaseFile),
		timeline: make(map[string][]CaseEvent),
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed loads cases without persisting them.
func (m *CaseManager) Seed(cases []models.CaseFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cases {
		m.cases[c.ID] = cloneCase(c)
		m.timeline[c.ID] = append(m.timeline[c.ID], CaseEvent{
			Timestamp:   c.CreatedAt,
			EventType:   "created",
			Description: "Case opened: " + c.Name,
		})
	}
}

// Load warm-starts the manager from the store.
func (m *CaseManager) Load(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	cases, err := m.store.ListCases(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cases: %w", err)
	}
	m.Seed(cases)
	log.Printf("[Cases] Loaded %d case files from store", len(cases))
	return len(cases), nil
}

// Create opens a new case.
func (m *CaseManager) Create(ctx context.Context, in NewCase) (models.CaseFile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.CaseFile{}, fmt.Errorf("%w: name is required", ErrInvalidCase)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.SeverityMedium
	}
	if !priority.Valid() {
		return models.CaseFile{}, fmt.Errorf("%w: priority %q", models.ErrUnknownValue, priority)
	}

	now := m.now()
	c := models.CaseFile{
		ID:          "CASE-" + uuid.NewString(),
		Name:        name,
		Description: in.Description,
		Status:      models.CaseOpen,
		Priority:    priority,
		Wallets:     dedupe(in.Wallets),
		CreatedAt:   now,
		UpdatedAt:   now,
		Assignee:    in.Assignee,
		Notes:       in.Notes,
		Evidence:    append([]string{}, in.Evidence...),
	}
	if err := m.persist(ctx, c); err != nil {
		return models.CaseFile{}, err
	}

	m.mu.Lock()
	m.cases[c.ID] = c
	m.timeline[c.ID] = []CaseEvent{{Timestamp: now, EventType: "created", Description: "Case opened: " + name}}
	m.mu.Unlock()
	return cloneCase(c), nil
}

// Get retrieves a case by ID
func (m *CaseManager) Get(id string) (models.CaseFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return models.CaseFile{}, ErrCaseNotFound
	}
	return cloneCase(c), nil
}

// List returns cases, most recently updated first. An empty status lists all.
func (m *CaseManager) List(status models.CaseStatus) []models.CaseFile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.CaseFile, 0, len(m.cases))
	for _, c := range m.cases {
		if status != "" && c.Status != status {
			continue
		}
		list = append(list, cloneCase(c))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Update applies a partial update.
func (m *CaseManager) Update(ctx context.Context, id string, u CaseUpdate) (models.CaseFile, error) {
	return m.mutate(ctx, id, func(c *models.CaseFile) ([]CaseEvent, error) {
		var events []CaseEvent
		if u.Status != nil {
			if !u.Status.Valid() {
				return nil, fmt.Errorf("%w: status %q", models.ErrUnknownValue, *u.Status)
			}
			if *u.Status != c.Status {
				events = append(events, CaseEvent{EventType: "status", Description: fmt.Sprintf("Status %s → %s", c.Status, *u.Status)})
				c.Status = *u.Status
			}
		}
		if u.Priority != nil {
			if !u.Priority.Valid() {
				return nil, fmt.Errorf("%w: priority %q", models.ErrUnknownValue, *u.Priority)
			}
			if *u.Priority != c.Priority {
				events = append(events, CaseEvent{EventType: "priority", Description: "Priority set to " + string(*u.Priority)})
				c.Priority = *u.Priority
			}
		}
		if u.Assignee != nil && *u.Assignee != c.Assignee {
			c.Assignee = *u.Assignee
			events = append(events, CaseEvent{EventType: "assignee", Description: "Assigned to " + c.Assignee})
		}
		if u.Notes != nil && *u.Notes != c.Notes {
			c.Notes = *u.Notes
			events = append(events, CaseEvent{EventType: "notes", Description: "Notes updated"})
		}
		for _, w := range u.AttachWallets {
			if w == "" || contains(c.Wallets, w) {
				continue
			}
			c.Wallets = append(c.Wallets, w)
			events = append(events, CaseEvent{EventType: "wallet", Description: "Wallet attached: " + w})
		}
		return events, nil
	})
}

// AddEvidence appends an evidence item.
func (m *CaseManager) AddEvidence(ctx context.Context, id, item string) (models.CaseFile, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return models.CaseFile{}, fmt.Errorf("%w: evidence item is required", ErrInvalidCase)
	}
	return m.mutate(ctx, id, func(c *models.CaseFile) ([]CaseEvent, error) {
		c.Evidence = append(c.Evidence, item)
		return []CaseEvent{{EventType: "evidence", Description: "Evidence added: " + item}}, nil
	})
}

// Timeline returns a case's events in chronological order.
func (m *CaseManager) Timeline(id string) ([]CaseEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.cases[id]; !ok {
		return nil, ErrCaseNotFound
	}
	return append([]CaseEvent(nil), m.timeline[id]...), nil
}

// mutate applies fn to a copy, persists it, then commits. The manager lock
// is held throughout so concurrent updates to one case serialize.
func (m *CaseManager) mutate(ctx context.Context, id string, fn func(c *models.CaseFile) ([]CaseEvent, error)) (models.CaseFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.cases[id]
	if !ok {
		return models.CaseFile{}, ErrCaseNotFound
	}
	updated := cloneCase(current)
	events, err := fn(&updated)
	if err != nil {
		return models.CaseFile{}, err
	}
	if len(events) == 0 {
		return cloneCase(current), nil
	}

	now := m.now()
	updated.UpdatedAt = now
	if err := m.persist(ctx, updated); err != nil {
		return models.CaseFile{}, err
	}
	for i := range events {
		events[i].Timestamp = now
	}
	m.cases[id] = updated
	m.timeline[id] = append(m.timeline[id], events...)
	return cloneCase(updated), nil
}

func (m *CaseManager) persist(ctx context.Context, c models.CaseFile) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveCase(ctx, c); err != nil {
		return fmt.Errorf("save case %s: %w", c.ID, err)
	}
	return nil
}

func cloneCase(c models.CaseFile) models.CaseFile {
	c.Wallets = append([]string{}, c.Wallets...)
	c.Evidence = append([]string{}, c.Evidence...)
	return c
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
