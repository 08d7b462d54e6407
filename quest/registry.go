package quest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Registry is the in-memory index of loaded quest definitions. Load swaps
// the whole index atomically, so readers always see a consistent set.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*QuestDefinition
	logger *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byID:   make(map[string]*QuestDefinition),
		logger: logger,
	}
}

// Load walks root recursively, parses every *.yaml/*.yml quest file and
// replaces the index. A file that fails to parse is skipped and logged;
// it never aborts the whole load. Duplicate ids are last-writer-wins with
// a warning.
func (r *Registry) Load(root string) error {
	fresh := make(map[string]*QuestDefinition)
	var files, skipped int

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			return nil
		}
		files++
		def, perr := ParseFile(path)
		if perr != nil {
			skipped++
			r.logger.Warn("quest file skipped",
				zap.String("path", path), zap.Error(perr))
			return nil
		}
		if prev, ok := fresh[def.ID]; ok {
			r.logger.Warn("duplicate quest id, overwriting",
				zap.String("quest_id", def.ID),
				zap.String("path", path),
				zap.String("previous_title", prev.Title))
		}
		fresh[def.ID] = def
		return nil
	})
	if err != nil {
		return fmt.Errorf("load quests from %s: %w", root, err)
	}

	r.mu.Lock()
	r.byID = fresh
	r.mu.Unlock()

	r.logger.Info("quest definitions loaded",
		zap.String("root", root),
		zap.Int("files", files),
		zap.Int("skipped", skipped),
		zap.Int("quests", len(fresh)))
	return nil
}

// Put registers a single definition, replacing any existing one with the
// same id. Intended for composition roots and tests.
func (r *Registry) Put(def *QuestDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[def.ID] = def
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*QuestDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byID[id]
	return def, ok
}

// ByType returns all definitions of the given type, sorted by
// (sort order, id).
func (r *Registry) ByType(questType string) []*QuestDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var defs []*QuestDefinition
	for _, def := range r.byID {
		if def.Type == questType {
			defs = append(defs, def)
		}
	}
	sortDefs(defs)
	return defs
}

// All returns every loaded definition, sorted by (sort order, id).
func (r *Registry) All() []*QuestDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]*QuestDefinition, 0, len(r.byID))
	for _, def := range r.byID {
		defs = append(defs, def)
	}
	sortDefs(defs)
	return defs
}

// Len returns the number of loaded definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func sortDefs(defs []*QuestDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].UI.SortOrder != defs[j].UI.SortOrder {
			return defs[i].UI.SortOrder < defs[j].UI.SortOrder
		}
		return defs[i].ID < defs[j].ID
	})
}
