package inlines

import (
	"context"
	"errors"
)

// QueryField is one equality constraint of an object lookup.
type QueryField struct {
	Field string
	Value any
}

// ObjectQuery asks a store for the single record of Source matching
// every field constraint.
type ObjectQuery struct {
	Source string
	Fields []QueryField
}

// ObjectStore fetches single records. Get returns an error wrapping
// ErrObjectNotFound when nothing matches and ErrMultipleObjects when
// more than one record matches.
type ObjectStore interface {
	Get(ctx context.Context, query ObjectQuery) (any, error)
}

type objectCapability struct {
	source string
	store  ObjectStore
}

// ObjectBacked makes instances look up one record from store after
// error-free processing. Query arguments supply the constraints. An empty
// source or nil store is inherited from the extended definition; a nil
// store may also be supplied by the renderer.
func ObjectBacked(source string, store ObjectStore) DefinitionOption {
	return func(b *definitionBuilder) {
		b.object = &objectCapability{source: source, store: store}
	}
}

func (oc *objectCapability) inherit(base *objectCapability) *objectCapability {
	if base == nil {
		return oc
	}
	merged := *oc
	if merged.source == StringEmpty {
		merged.source = base.source
	}
	if merged.store == nil {
		merged.store = base.store
	}
	return &merged
}

// ObjectSource returns the record source of an object-backed definition.
func (d *Definition) ObjectSource() string {
	if d.object == nil {
		return StringEmpty
	}
	return d.object.source
}

func (i *Instance) objectStore() ObjectStore {
	if i.def.object != nil && i.def.object.store != nil {
		return i.def.object.store
	}
	return i.fallbackStore
}

// ObjectQuery returns the lookup built from the typed query arguments.
func (i *Instance) ObjectQuery() ObjectQuery {
	q := ObjectQuery{Source: i.def.ObjectSource()}
	for _, na := range i.def.args {
		if !na.Argument.query {
			continue
		}
		q.Fields = append(q.Fields, QueryField{
			Field: na.Argument.QueryField(),
			Value: i.data[na.Name],
		})
	}
	return q
}

func (i *Instance) lookupObject(ctx context.Context) error {
	obj, err := i.objectStore().Get(ctx, i.ObjectQuery())
	switch {
	case err == nil:
		i.object = obj
		return nil
	case errors.Is(err, ErrObjectNotFound):
		i.AddError(NonFieldErrors, NewValidationError(MsgObjectNotFound))
		return nil
	case errors.Is(err, ErrMultipleObjects):
		i.AddError(NonFieldErrors, NewValidationError(MsgMultipleObjects))
		return nil
	default:
		return NewObjectLookupError(i.name, err)
	}
}
