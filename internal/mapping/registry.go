package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"legacy-bridge/internal/diagnostic"
	"legacy-bridge/internal/loader"
	"legacy-bridge/internal/logging"
	"legacy-bridge/internal/match"
)

const maxSuggestions = 3

// Registry maps foreign instances into their registered legacy types.
type Registry struct {
	local    loader.Resolver
	foreign  loader.Resolver
	backRef  string
	excluded string
	policy   Policy
	log      *zap.Logger

	mu        sync.RWMutex
	byName    map[string]*FieldMapping
	byType    map[reflect.Type]*FieldMapping
	byForeign map[reflect.Type]*FieldMapping
}

// Option configures a Registry.
type Option func(*Registry)

// WithBackRef sets the default back-reference field name.
func WithBackRef(name string) Option {
	return func(r *Registry) { r.backRef = name }
}

// WithExcludedField sets the default native buffer field name.
func WithExcludedField(name string) Option {
	return func(r *Registry) { r.excluded = name }
}

// WithForeign checks every registration against the same-named class of res.
func WithForeign(res loader.Resolver) Option {
	return func(r *Registry) { r.foreign = res }
}

// WithPolicy sets the unresolved type policy.
func WithPolicy(p Policy) Option {
	return func(r *Registry) { r.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates a registry resolving class names through local.
func NewRegistry(local loader.Resolver, opts ...Option) *Registry {
	r := &Registry{
		local:     local,
		backRef:   DefaultBackRef,
		excluded:  DefaultExcluded,
		byName:    make(map[string]*FieldMapping),
		byType:    make(map[reflect.Type]*FieldMapping),
		byForeign: make(map[reflect.Type]*FieldMapping),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.log = logging.OrNop(r.log).Named("mapping")

	return r
}

// RegisterOption adjusts one registration.
type RegisterOption func(*registration)

type registration struct {
	backRef  string
	excluded []string
	newFn    func() (any, error)
}

// UsingBackRef overrides the back-reference field of one type.
func UsingBackRef(name string) RegisterOption {
	return func(r *registration) { r.backRef = name }
}

// Excluding adds fields that are never copied.
func Excluding(names ...string) RegisterOption {
	return func(r *registration) { r.excluded = append(r.excluded, names...) }
}

// UsingConstructor allocates target instances with fn instead of reflect.New.
func UsingConstructor(fn func() (any, error)) RegisterOption {
	return func(r *registration) { r.newFn = fn }
}

// Register builds and stores the schema of t. Registering a name again
// replaces its entry; foreign types already resolved keep the old mapping.
func (r *Registry) Register(t reflect.Type, opts ...RegisterOption) (*FieldMapping, error) {
	if t == nil {
		return nil, errors.New("register: nil type")
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := loader.NameOf(t)
	if t.Kind() != reflect.Struct {
		return nil, &MappingError{Type: name, Err: fmt.Errorf("%w: %s is not a struct", ErrIncompatible, t)}
	}

	reg := registration{backRef: r.backRef, excluded: []string{r.excluded}}
	for _, opt := range opts {
		opt(&reg)
	}

	rl := rules{backRef: reg.backRef, excluded: make(map[string]bool, len(reg.excluded))}
	for _, n := range reg.excluded {
		if n != "" {
			rl.excluded[n] = true
		}
	}

	fields, backRef := buildSchema(t, rl)

	m := &FieldMapping{
		name:    name,
		target:  t,
		newFn:   reg.newFn,
		fields:  fields,
		backRef: backRef,
		rules:   rl,
		foreign: make(map[reflect.Type][][]int),
	}

	if err := r.checkForeign(m, rl); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.byName[name] = m
	r.byType[t] = m
	r.mu.Unlock()

	r.log.Debug("registered mapping", zap.String("type", name), zap.Int("fields", len(fields)))

	return m, nil
}

// RegisterClass registers a class of the local loader, allocating through
// its constructor.
func (r *Registry) RegisterClass(c *loader.Class, opts ...RegisterOption) (*FieldMapping, error) {
	if c == nil {
		return nil, errors.New("register: nil class")
	}

	return r.Register(c.Type(), append([]RegisterOption{UsingConstructor(c.New)}, opts...)...)
}

func (r *Registry) checkForeign(m *FieldMapping, rl rules) error {
	if r.foreign == nil {
		return nil
	}

	fc, err := r.foreign.LoadClass(m.name)
	if errors.Is(err, loader.ErrClassNotFound) {
		return nil
	}

	if err != nil {
		return &MappingError{Type: m.name, Err: err}
	}

	if d := r.compareClass(m, fc, rl); d.HasErrors() {
		return &MappingError{Type: m.name, Err: fmt.Errorf("%w: %w", ErrStructure, d.Err())}
	}

	return nil
}

func (r *Registry) compareClass(m *FieldMapping, fc *loader.Class, rl rules) diagnostic.Diagnostics {
	ft := fc.Type()
	for ft != nil && ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}

	if ft == nil || ft.Kind() != reflect.Struct {
		var d diagnostic.Diagnostics
		d.AddError(diagnostic.CodeNotStruct, fmt.Sprintf("host definition is %v", ft), m.name, "")

		return d
	}

	foreign, _ := buildSchema(ft, rl)

	return compareSchemas(m.name, m.fields, foreign)
}

// Verify compares every registered mapping with the same-named class of
// foreign. Names foreign does not define are reported as infos.
func (r *Registry) Verify(foreign loader.Resolver) diagnostic.Diagnostics {
	var d diagnostic.Diagnostics

	for _, name := range r.Names() {
		m, _ := r.Lookup(name)

		fc, err := foreign.LoadClass(name)
		if err != nil {
			d.AddInfo(diagnostic.CodeMissingType, "not defined on the host side", name, "")
			continue
		}

		d.Merge(r.compareClass(m, fc, m.rules))
	}

	return d
}

// Lookup returns the mapping registered under name.
func (r *Registry) Lookup(name string) (*FieldMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byName[name]

	return m, ok
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Resolve finds the mapping of a class name: the name is loaded through the
// local loader and the resulting type looked up.
func (r *Registry) Resolve(name string) (*FieldMapping, error) {
	c, err := r.local.LoadClass(name)
	if err != nil {
		return nil, &MappingError{Type: name, Err: fmt.Errorf("%w: %w", ErrUnresolvedType, err), Suggestions: r.suggest(name)}
	}

	t := c.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	m, ok := r.byType[t]
	r.mu.RUnlock()

	if !ok {
		return nil, &MappingError{Type: name, Err: ErrUnresolvedType, Suggestions: r.suggest(name)}
	}

	return m, nil
}

func (r *Registry) suggest(name string) []string {
	return match.RankNames(name, r.Names()).AboveThreshold(match.DefaultMinScore).Top(maxSuggestions).Names()
}

// mappingFor returns the mapping for instances of the struct type t, which
// may be a registered legacy type or a foreign type of the same name.
func (r *Registry) mappingFor(t reflect.Type) (*FieldMapping, error) {
	r.mu.RLock()
	m, ok := r.byForeign[t]
	if !ok {
		m, ok = r.byType[t]
	}
	r.mu.RUnlock()

	if ok {
		return m, nil
	}

	m, err := r.Resolve(loader.NameOf(t))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.byForeign[t] = m
	r.mu.Unlock()

	return m, nil
}

// Map returns a new instance of the registered legacy type named like
// instance's type, with every schema field copied from instance and the
// back-reference set to instance. Map(nil) is nil. Within one call every
// foreign struct is mapped at most once, so cycles and shared pointers in
// instance's graph are kept.
func (r *Registry) Map(instance any) (any, error) {
	if instance == nil {
		return nil, nil
	}

	return r.mapValue(reflect.ValueOf(instance), make(map[visit]reflect.Value))
}

// visit identifies a foreign struct already mapped during one Map call.
type visit struct {
	addr uintptr
	typ  reflect.Type
}

func (r *Registry) mapValue(orig reflect.Value, seen map[visit]reflect.Value) (any, error) {
	src := orig
	for src.Kind() == reflect.Pointer {
		if src.IsNil() {
			return nil, nil
		}

		src = src.Elem()
	}

	if src.Kind() != reflect.Struct {
		return nil, &MappingError{Type: loader.NameOf(src.Type()), Err: fmt.Errorf("%w: %s is not a struct", ErrIncompatible, orig.Type())}
	}

	var key visit

	if src.CanAddr() {
		key = visit{addr: src.UnsafeAddr(), typ: src.Type()}
		if dst, ok := seen[key]; ok {
			return dst.Interface(), nil
		}
	} else {
		tmp := reflect.New(src.Type()).Elem()
		tmp.Set(src)
		src = tmp
	}

	m, err := r.mappingFor(src.Type())
	if err != nil {
		if r.policy == SkipUnresolved && errors.Is(err, ErrUnresolvedType) {
			r.log.Debug("skipping unmapped instance", zap.String("type", loader.NameOf(src.Type())), zap.Error(err))
			return nil, nil
		}

		return nil, err
	}

	return r.copyValue(m, orig, src, key, seen)
}

func (r *Registry) copyValue(m *FieldMapping, orig, src reflect.Value, key visit, seen map[visit]reflect.Value) (any, error) {
	idx, err := m.foreignIndex(src.Type())
	if err != nil {
		return nil, err
	}

	dst, err := m.instantiate()
	if err != nil {
		return nil, err
	}

	if key.typ != nil {
		seen[key] = dst
	}

	d := dst.Elem()

	if m.backRef != nil {
		b := fieldAt(d, m.backRef)
		if !orig.Type().AssignableTo(b.Type()) {
			return nil, &MappingError{Type: m.name, Field: m.target.FieldByIndex(m.backRef).Name,
				Err: fmt.Errorf("%w: cannot hold %s", ErrField, orig.Type())}
		}

		b.Set(orig)
	}

	for i, f := range m.fields {
		if err := r.assign(fieldAt(d, f.index), fieldAt(src, idx[i]), seen); err != nil {
			return nil, &MappingError{Type: m.name, Field: f.Name, Err: err}
		}
	}

	return dst.Interface(), nil
}

// assign stores v into dst. Pointers to a foreign struct type are mapped
// through the registry; under SkipUnresolved an unmapped one leaves dst zero.
func (r *Registry) assign(dst, v reflect.Value, seen map[visit]reflect.Value) error {
	if c := match.ScoreKindCompatibility(v.Type(), dst.Type()); c.Compatibility.CanCopy() {
		if c.Compatibility == match.TypeConvertible {
			v = v.Convert(dst.Type())
		}

		dst.Set(v)

		return nil
	}

	if v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Struct {
		if v.IsNil() {
			dst.SetZero()
			return nil
		}

		mapped, err := r.mapValue(v, seen)
		if err != nil {
			return err
		}

		if mapped == nil {
			dst.SetZero()
			return nil
		}

		mv := reflect.ValueOf(mapped)
		if mv.Type().AssignableTo(dst.Type()) {
			dst.Set(mv)
			return nil
		}
	}

	return fmt.Errorf("%w: cannot store %s into %s", ErrIncompatible, v.Type(), dst.Type())
}
