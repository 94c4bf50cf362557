package platform

import (
	"sort"
	"strings"
	"sync"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/logger"
)

// Registry is the process-wide catalog of platform modules, indexed by
// platform id and by category. It is built once at startup; lookups are
// safe for concurrent use.
//
// Invariant: every id present in a category set exists in the primary
// map with that exact category, and no category key maps to an empty set.
type Registry struct {
	mu         sync.RWMutex
	platforms  map[string]Platform
	categories map[Category]map[string]struct{}
	logger     logger.Logger
}

// NewRegistry creates an empty registry. Tests construct their own
// isolated instance rather than sharing process state.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard
	}
	return &Registry{
		platforms:  make(map[string]Platform),
		categories: make(map[Category]map[string]struct{}),
		logger:     log,
	}
}

// Register adds a platform module to both indices. Registering a second
// module under an existing id overwrites the first and moves the id to
// the new module's category. The module is never partially registered.
func (r *Registry) Register(p Platform) {
	meta := p.Metadata()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.platforms[meta.ID]; ok {
		oldCategory := existing.Metadata().Category
		if oldCategory != meta.Category {
			r.removeFromCategoryLocked(oldCategory, meta.ID)
		}
	}

	r.platforms[meta.ID] = p
	if r.categories[meta.Category] == nil {
		r.categories[meta.Category] = make(map[string]struct{})
	}
	r.categories[meta.Category][meta.ID] = struct{}{}

	r.logger.Info("platform registered", "platform", meta.ID, "category", meta.Category)
}

// Unregister removes a platform module from both indices. When the
// module's category set becomes empty the category key is removed.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.platforms[id]
	if !ok {
		return errors.Newf(errors.ErrPlatformNotFound, "platform %s is not registered", id)
	}

	delete(r.platforms, id)
	r.removeFromCategoryLocked(p.Metadata().Category, id)
	r.logger.Info("platform unregistered", "platform", id)
	return nil
}

func (r *Registry) removeFromCategoryLocked(category Category, id string) {
	set, ok := r.categories[category]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.categories, category)
	}
}

// Get returns the platform module registered under an id.
func (r *Registry) Get(id string) (Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.platforms[id]
	if !ok {
		return nil, errors.Newf(errors.ErrPlatformNotFound, "platform %s is not registered", id)
	}
	return p, nil
}

// GetAll returns all registered platform modules keyed by id.
func (r *Registry) GetAll() map[string]Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[string]Platform, len(r.platforms))
	for id, p := range r.platforms {
		all[id] = p
	}
	return all
}

// IDs returns all registered platform ids, sorted for stable output.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.platforms))
	for id := range r.platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetByCategory returns the ids registered under a category, sorted.
// An unknown category yields an empty slice.
func (r *Registry) GetByCategory(category Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.categories[category]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Categories returns the categories that currently have registered
// modules, sorted.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cats := make([]Category, 0, len(r.categories))
	for c := range r.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Search returns ids of platforms whose name, display name, description
// or feature list contains the query, case-insensitively. Results are
// sorted.
func (r *Registry) Search(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, p := range r.platforms {
		if metadataMatches(p.Metadata(), query) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func metadataMatches(meta Metadata, query string) bool {
	if strings.Contains(strings.ToLower(meta.Name), query) ||
		strings.Contains(strings.ToLower(meta.DisplayName), query) ||
		strings.Contains(strings.ToLower(meta.Description), query) {
		return true
	}
	for _, feature := range meta.Features {
		if strings.Contains(strings.ToLower(feature), query) {
			return true
		}
	}
	return false
}

// PlatformCount returns the number of registered platform modules.
func (r *Registry) PlatformCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.platforms)
}

// Clear removes all registered modules. Intended for test isolation.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms = make(map[string]Platform)
	r.categories = make(map[Category]map[string]struct{})
}

// Close closes every registered platform module and returns the last
// error encountered.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lastErr error
	for id, p := range r.platforms {
		if err := p.Close(); err != nil {
			r.logger.Error("failed to close platform", "platform", id, "error", err)
			lastErr = err
		}
	}
	return lastErr
}
