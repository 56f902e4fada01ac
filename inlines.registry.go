package inlines

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/itsatony/go-inlines/internal"
)

// registryEntry holds the default definition of a name and its media
// overrides.
type registryEntry struct {
	def   *Definition
	media map[string]*Definition
}

// RegistryEntry describes one registered name.
type RegistryEntry struct {
	Name       string
	Definition *Definition
	Media      map[string]*Definition
}

// Registry maps inline names to definitions. Every operation holds one
// mutex, so lookups never observe a partial registration.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	logger  *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		entries: make(map[string]*registryEntry),
		logger:  logger,
	}
}

var defaultRegistry = NewRegistry(nil)

// DefaultRegistry returns the process-wide registry used by renderers
// created without WithRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds def under every name, with optional media overrides.
// Registration is all-or-nothing: if any name is taken, nothing is added.
func (r *Registry) Register(names []string, def *Definition, media map[string]*Definition) error {
	if def == nil {
		return NewDefinitionError(ErrMsgNilDefinition, StringEmpty)
	}
	if def.abstract {
		return NewDefinitionError(ErrMsgAbstractRegistered, def.name)
	}
	for _, override := range media {
		if override == nil {
			return NewDefinitionError(ErrMsgNilDefinition, def.name)
		}
		if override.abstract {
			return NewDefinitionError(ErrMsgAbstractRegistered, override.name)
		}
	}

	entry := &registryEntry{def: def, media: make(map[string]*Definition, len(media))}
	for k, v := range media {
		entry.media[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == StringEmpty {
			return NewDefinitionError(ErrMsgEmptyInlineName, def.name)
		}
		if _, exists := r.entries[name]; exists || seen[name] {
			r.logger.Warn(LogMsgRegistryCollision, zap.String(LogFieldInline, name))
			return NewAlreadyRegisteredError(name)
		}
		seen[name] = true
	}

	for _, name := range names {
		r.entries[name] = entry
	}
	r.logger.Debug(LogMsgInlineRegistered,
		zap.Strings(LogFieldNames, names),
		zap.String(LogFieldDefinition, def.name),
	)
	return nil
}

// RegisterOne adds def under a single name.
func (r *Registry) RegisterOne(name string, def *Definition) error {
	return r.Register([]string{name}, def, nil)
}

// MustRegister registers and panics on error.
func (r *Registry) MustRegister(names []string, def *Definition, media map[string]*Definition) {
	if err := r.Register(names, def, media); err != nil {
		panic(err)
	}
}

// Unregister removes every given name that is registered and returns a
// NotRegistered error for each one that is not.
func (r *Registry) Unregister(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range names {
		if _, ok := r.entries[name]; !ok {
			errs = append(errs, NewNotRegisteredError(name))
			continue
		}
		delete(r.entries, name)
		r.logger.Debug(LogMsgInlineUnregistered, zap.String(LogFieldInline, name))
	}
	return errors.Join(errs...)
}

// Lookup resolves name for variant and media. A media override is used
// when one exists for media and supports the variant; otherwise the
// default definition is used. The variant must be supported by the
// chosen definition.
func (r *Registry) Lookup(name, variant, media string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, NewNotRegisteredError(name)
	}

	def := entry.def
	if media != StringEmpty {
		if override, ok := entry.media[media]; ok && override.SupportsVariant(variant) {
			def = override
		}
	}
	if !def.SupportsVariant(variant) {
		return nil, NewInvalidVariantError(name, variant, media)
	}
	return def, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns registered names similar to name, closest first.
func (r *Registry) Suggest(name string) []string {
	return internal.SimilarNames(name, r.Names(), SuggestionLimit)
}

// Entries returns a snapshot of every registration, sorted by name.
func (r *Registry) Entries() []RegistryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]RegistryEntry, 0, len(r.entries))
	for name, e := range r.entries {
		media := make(map[string]*Definition, len(e.media))
		for k, v := range e.media {
			media[k] = v
		}
		entries = append(entries, RegistryEntry{Name: name, Definition: e.def, Media: media})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Count returns the number of registered names.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Clear removes every registration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]*registryEntry)
	r.logger.Debug(LogMsgRegistryCleared)
}
