package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrPackageRegistered is returned when a package registers twice
	ErrPackageRegistered = errors.New("package is already registered")
	// ErrFieldRegistered is returned when a field name is already taken
	ErrFieldRegistered = errors.New("field is already registered")
	// ErrAliasCycle is returned when aliases would forward to each other
	ErrAliasCycle = errors.New("alias cycle")
	// ErrInvalidDescriptor is returned for descriptors that cannot be registered
	ErrInvalidDescriptor = errors.New("invalid field descriptor")
)

type entry struct {
	pkg  string
	desc *Descriptor
}

// Registry holds the field descriptors of every registered package.
// Packages are registered during initialization; after that the registry is
// only read
type Registry struct {
	packages map[string][]string
	entries  map[string]entry
	resolved map[string]*Descriptor
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used to report registrations
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a new, empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		packages: make(map[string][]string),
		entries:  make(map[string]entry),
		resolved: make(map[string]*Descriptor),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterPackage registers the fields of package pkg. It fails when pkg was
// registered before, when a field name is already registered by any package
// or when an alias would close a cycle; on failure nothing is changed.
//
// An alias may name a field that is not registered yet. Such an alias stays
// unresolved, and invisible to lookups, until a later package registers the
// target
func (r *Registry) RegisterPackage(pkg string, fields map[string]*Descriptor) error {
	if pkg == "" {
		return fmt.Errorf("%w: empty package name", ErrInvalidDescriptor)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.packages[pkg]; exists {
		return fmt.Errorf("%w: %s", ErrPackageRegistered, pkg)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	staged := make(map[string]entry, len(r.entries)+len(fields))
	for name, e := range r.entries {
		staged[name] = e
	}

	for _, name := range names {
		desc := fields[name]
		if err := checkDescriptor(name, desc); err != nil {
			return err
		}
		if existing, exists := staged[name]; exists {
			return fmt.Errorf("%w: %s (by package %s)", ErrFieldRegistered, name, existing.pkg)
		}
		staged[name] = entry{pkg: pkg, desc: desc.Clone()}
	}

	resolved, err := resolve(staged)
	if err != nil {
		return fmt.Errorf("package %s: %w", pkg, err)
	}

	for name := range resolved {
		if _, before := r.resolved[name]; !before && staged[name].pkg != pkg {
			r.logger.Debug("forward alias resolved",
				zap.String("field", name),
				zap.String("alias", staged[name].desc.Alias),
				zap.String("package", pkg))
		}
	}

	r.entries = staged
	r.resolved = resolved
	r.packages[pkg] = names

	r.logger.Debug("package registered",
		zap.String("package", pkg),
		zap.Int("fields", len(names)),
		zap.Int("pending", len(staged)-len(resolved)))

	return nil
}

func checkDescriptor(name string, desc *Descriptor) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty field name", ErrInvalidDescriptor)
	case desc == nil:
		return fmt.Errorf("%w: %s has no descriptor", ErrInvalidDescriptor, name)
	case desc.IsAlias():
		if desc.hasAttributes() {
			return fmt.Errorf("%w: alias %s must not carry other attributes", ErrInvalidDescriptor, name)
		}
		if desc.Alias == name {
			return fmt.Errorf("%w: %s forwards to itself", ErrAliasCycle, name)
		}
	case desc.Class == ClassNone:
		return fmt.Errorf("%w: %s has no class", ErrInvalidDescriptor, name)
	}
	return nil
}

// resolve follows every alias to its final descriptor. Aliases whose chain
// ends at an unregistered name are left out
func resolve(entries map[string]entry) (map[string]*Descriptor, error) {
	resolved := make(map[string]*Descriptor, len(entries))
	for name := range entries {
		seen := map[string]bool{name: true}
		current := name
		for {
			e, ok := entries[current]
			if !ok {
				break
			}
			if !e.desc.IsAlias() {
				resolved[name] = e.desc
				break
			}
			current = e.desc.Alias
			if seen[current] {
				return nil, fmt.Errorf("%w: %s", ErrAliasCycle, name)
			}
			seen[current] = true
		}
	}
	return resolved, nil
}

// Get returns the descriptor of name merged with override. The override
// may describe a field that is not registered at all; when it is itself an
// alias, its target is looked up instead
func (r *Registry) Get(name string, override *Descriptor) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if override.IsAlias() {
		base, ok := r.resolved[override.Alias]
		if !ok {
			return nil, false
		}
		return Merge(base, nil), true
	}

	base, ok := r.resolved[name]
	if !ok && override == nil {
		return nil, false
	}
	return Merge(base, override), true
}

// Param returns one attribute of the merged descriptor of name
func (r *Registry) Param(name string, key ParamKey, override *Descriptor) (any, bool) {
	d, ok := r.Get(name, override)
	if !ok {
		return nil, false
	}
	return d.Param(key)
}

// Label returns the label of the given kind, or "" for unknown fields
func (r *Registry) Label(name string, kind LabelKind, override *Descriptor) string {
	d, _ := r.Get(name, override)
	return d.LabelFor(kind)
}

// List returns the option list of the given kind, or nil when undefined
func (r *Registry) List(name string, kind ItemsKind, override *Descriptor) Items {
	d, _ := r.Get(name, override)
	return d.ItemsFor(kind)
}

// Class returns the class of name, ClassNone for unknown fields
func (r *Registry) Class(name string, override *Descriptor) Class {
	d, ok := r.Get(name, override)
	if !ok {
		return ClassNone
	}
	return d.Class
}

// IsArithmetical reports whether name holds numbers
func (r *Registry) IsArithmetical(name string, override *Descriptor) bool {
	return r.Class(name, override).IsArithmetical()
}

// IsDate reports whether name holds dates
func (r *Registry) IsDate(name string, override *Descriptor) bool {
	return r.Class(name, override).IsDate()
}

// IsTextual reports whether name holds free text
func (r *Registry) IsTextual(name string, override *Descriptor) bool {
	return r.Class(name, override).IsTextual()
}

// Exists checks if name resolves to a descriptor
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.resolved[name]
	return exists
}

// Names returns the resolvable field names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.resolved))
	for name := range r.resolved {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Packages returns the registered package names, sorted
func (r *Registry) Packages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pkgs := make([]string, 0, len(r.packages))
	for pkg := range r.packages {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}

// Pending returns the aliases that do not resolve yet, sorted
func (r *Registry) Pending() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]string, 0)
	for name := range r.entries {
		if _, ok := r.resolved[name]; !ok {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending
}

// Verify reports every alias still waiting for its target. Applications
// call it once all packages are registered
func (r *Registry) Verify() error {
	pending := r.Pending()
	if len(pending) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]string, len(pending))
	for i, name := range pending {
		lines[i] = fmt.Sprintf("  - %s -> %s", name, r.entries[name].desc.Alias)
	}
	return fmt.Errorf("unresolved aliases:\n%s", strings.Join(lines, "\n"))
}

// Count returns the number of resolvable fields
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.resolved)
}
