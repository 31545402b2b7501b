package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/csvcodec"
	"github.com/secmon-lab/riskregister/pkg/service/filterengine"
	"github.com/secmon-lab/riskregister/pkg/service/sanitize"
	"github.com/secmon-lab/riskregister/pkg/service/scoring"
	"github.com/secmon-lab/riskregister/pkg/service/stats"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// DefaultCategories is the category list a fresh store starts with. The
// first entry doubles as the fallback category for imports and inputs
// that carry none.
var DefaultCategories = []string{
	"Security",
	"Operational",
	"Financial",
	"Compliance",
	"Strategic",
}

// RiskStore owns the risk collection and its derived views. All methods
// are safe for concurrent use; mutations recompute the filtered view and
// stats synchronously before returning, so readers never observe a risk
// without its derived state.
type RiskStore struct {
	mu sync.RWMutex

	risks      []*model.Risk
	categories []string
	filters    model.Filters
	filtered   []*model.Risk
	aggregate  model.Stats

	codec *csvcodec.Codec

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

type Option func(*RiskStore)

// WithCategories replaces the default category list
func WithCategories(categories []string) Option {
	return func(x *RiskStore) {
		x.categories = append([]string{}, categories...)
	}
}

func New(opts ...Option) *RiskStore {
	x := &RiskStore{
		filters:     model.DefaultFilters(),
		subscribers: make(map[int]func()),
	}

	for _, opt := range opts {
		opt(x)
	}

	if len(x.categories) == 0 {
		x.categories = append([]string{}, DefaultCategories...)
	}
	x.codec = csvcodec.New(x.categories[0])

	x.mu.Lock()
	x.recalc()
	x.mu.Unlock()

	return x
}

// recalc rebuilds the filtered view and stats from the risk collection.
// Callers must hold the write lock.
func (x *RiskStore) recalc() {
	x.filtered = filterengine.Apply(x.risks, x.filters)
	x.aggregate = stats.Compute(x.risks)
}

// notify fires every subscriber. Called after the write lock is released
// so a subscriber can read back from the store without deadlocking.
func (x *RiskStore) notify() {
	x.subMu.Lock()
	fns := make([]func(), 0, len(x.subscribers))
	for _, fn := range x.subscribers {
		fns = append(fns, fn)
	}
	x.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers fn to run synchronously after every mutation, once
// derived state is fresh. The returned function removes the subscription.
func (x *RiskStore) Subscribe(fn func()) func() {
	x.subMu.Lock()
	defer x.subMu.Unlock()

	id := x.nextSubID
	x.nextSubID++
	x.subscribers[id] = fn

	return func() {
		x.subMu.Lock()
		defer x.subMu.Unlock()
		delete(x.subscribers, id)
	}
}

// AddRisk sanitizes the input, derives score and timestamps, and prepends
// the new record so the collection stays newest-first.
func (x *RiskStore) AddRisk(ctx context.Context, input model.RiskInput) (*model.Risk, error) {
	input = sanitize.RiskInput(ctx, input)
	if input.Title == "" {
		return nil, goerr.Wrap(ErrEmptyTitle, "cannot add risk")
	}
	if input.Description == "" {
		return nil, goerr.Wrap(ErrEmptyDescription, "cannot add risk", goerr.V("title", input.Title))
	}

	now := time.Now().UTC()
	risk := &model.Risk{
		ID:             types.NewRiskID(),
		Title:          input.Title,
		Description:    input.Description,
		Probability:    scoring.Clamp(input.Probability),
		Impact:         scoring.Clamp(input.Impact),
		RiskScore:      scoring.Score(input.Probability, input.Impact),
		Category:       input.Category,
		Status:         input.Status.Normalize(),
		MitigationPlan: input.MitigationPlan,
		CreationDate:   now,
		LastModified:   now,
	}
	if risk.Category == "" {
		risk.Category = x.defaultCategory()
	}

	x.mu.Lock()
	x.risks = append([]*model.Risk{risk}, x.risks...)
	x.recalc()
	x.mu.Unlock()

	x.notify()
	return risk.Clone(), nil
}

// UpdateRisk applies the non-nil fields of the update to the identified
// risk. An unknown id returns (nil, nil) and mutates nothing. The score
// is recomputed whenever probability or impact changes.
func (x *RiskStore) UpdateRisk(ctx context.Context, id types.RiskID, update model.RiskUpdate) (*model.Risk, error) {
	update = sanitize.RiskUpdate(ctx, update)

	x.mu.Lock()
	risk := x.findLocked(id)
	if risk == nil {
		x.mu.Unlock()
		logging.From(ctx).Warn("update for unknown risk", "id", id)
		return nil, nil
	}

	if update.Title != nil && *update.Title != "" {
		risk.Title = *update.Title
	}
	if update.Description != nil && *update.Description != "" {
		risk.Description = *update.Description
	}
	if update.Probability != nil {
		risk.Probability = scoring.Clamp(*update.Probability)
	}
	if update.Impact != nil {
		risk.Impact = scoring.Clamp(*update.Impact)
	}
	if update.Category != nil && *update.Category != "" {
		risk.Category = *update.Category
	}
	if update.Status != nil {
		risk.Status = update.Status.Normalize()
	}
	if update.MitigationPlan != nil {
		risk.MitigationPlan = *update.MitigationPlan
	}

	risk.RiskScore = scoring.Score(risk.Probability, risk.Impact)
	risk.LastModified = time.Now().UTC()

	x.recalc()
	result := risk.Clone()
	x.mu.Unlock()

	x.notify()
	return result, nil
}

// DeleteRisk removes the identified risk. Deleting an absent id is a
// silent no-op and still leaves derived state consistent.
func (x *RiskStore) DeleteRisk(ctx context.Context, id types.RiskID) {
	x.mu.Lock()
	removed := false
	for i, r := range x.risks {
		if r.ID == id {
			x.risks = append(x.risks[:i], x.risks[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		x.recalc()
	}
	x.mu.Unlock()

	if removed {
		x.notify()
	}
}

// SetFilters merges the update into the current filters and refreshes the
// filtered view. The risk collection and stats are untouched.
func (x *RiskStore) SetFilters(ctx context.Context, update model.FiltersUpdate) model.Filters {
	x.mu.Lock()
	x.filters = x.filters.Merge(update)
	x.filtered = filterengine.Apply(x.risks, x.filters)
	result := x.filters
	x.mu.Unlock()

	x.notify()
	return result
}

// AddCategory appends a sanitized category name. Blank names error;
// duplicates (case-insensitive) are silent no-ops.
func (x *RiskStore) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = sanitize.Category(ctx, name)
	if name == "" {
		return x.Categories(), goerr.Wrap(ErrEmptyCategory, "cannot add category")
	}

	x.mu.Lock()
	exists := false
	for _, c := range x.categories {
		if strings.EqualFold(c, name) {
			exists = true
			break
		}
	}
	if !exists {
		x.categories = append(x.categories, name)
	}
	result := append([]string{}, x.categories...)
	x.mu.Unlock()

	if !exists {
		x.notify()
	}
	return result, nil
}

// ExportCSV serializes the full collection, newest first
func (x *RiskStore) ExportCSV() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.codec.Export(x.risks)
}

// ImportCSV parses the payload and prepends the imported records. On a
// failed injection guard nothing is imported and the count is 0.
func (x *RiskStore) ImportCSV(ctx context.Context, payload string) (int, error) {
	imported, err := x.codec.Import(ctx, payload)
	if err != nil {
		return 0, err
	}
	if len(imported) == 0 {
		return 0, nil
	}

	x.mu.Lock()
	x.risks = append(imported, x.risks...)
	x.recalc()
	x.mu.Unlock()

	x.notify()
	return len(imported), nil
}

func (x *RiskStore) findLocked(id types.RiskID) *model.Risk {
	for _, r := range x.risks {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (x *RiskStore) defaultCategory() string {
	if len(x.categories) == 0 {
		return DefaultCategories[0]
	}
	return x.categories[0]
}

// Risks returns the whole collection, newest first, as defensive copies
func (x *RiskStore) Risks() []*model.Risk {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return cloneRisks(x.risks)
}

// FilteredRisks returns the current filtered view as defensive copies
func (x *RiskStore) FilteredRisks() []*model.Risk {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return cloneRisks(x.filtered)
}

func (x *RiskStore) Filters() model.Filters {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.filters
}

func (x *RiskStore) Categories() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string{}, x.categories...)
}

func (x *RiskStore) Stats() model.Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	s := x.aggregate
	s.ByStatus = make(map[types.RiskStatus]int, len(x.aggregate.ByStatus))
	for k, v := range x.aggregate.ByStatus {
		s.ByStatus[k] = v
	}
	s.BySeverity = make(map[types.Severity]int, len(x.aggregate.BySeverity))
	for k, v := range x.aggregate.BySeverity {
		s.BySeverity[k] = v
	}
	return s
}

// Snapshot captures the persistable state: risks, categories and filters.
// Derived views are excluded and rebuilt on restore.
func (x *RiskStore) Snapshot() *model.Snapshot {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return &model.Snapshot{
		Version:    model.SnapshotVersion,
		Risks:      cloneRisks(x.risks),
		Categories: append([]string{}, x.categories...),
		Filters:    x.filters,
	}
}

// Restore replaces the store state with a migrated snapshot and rebuilds
// derived state from scratch. Subscribers are not notified; restore runs
// during hydration before anyone subscribes.
func (x *RiskStore) Restore(ctx context.Context, snapshot *model.Snapshot) {
	snapshot.Migrate()

	x.mu.Lock()
	defer x.mu.Unlock()

	x.risks = cloneRisks(snapshot.Risks)
	if len(snapshot.Categories) > 0 {
		x.categories = append([]string{}, snapshot.Categories...)
	}
	x.filters = snapshot.Filters.Normalize()
	x.recalc()
}

func cloneRisks(risks []*model.Risk) []*model.Risk {
	out := make([]*model.Risk, 0, len(risks))
	for _, r := range risks {
		out = append(out, r.Clone())
	}
	return out
}
