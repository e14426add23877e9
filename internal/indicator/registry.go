package indicator

import (
	"fmt"
	"sync"

	"github.com/rxtech-lab/argo-dma/pkg/errors"
)

// TransformRegistry owns the transforms of one backtest run.
type TransformRegistry interface {
	RegisterTransform(transform Transform) error
	GetTransform(name string) (Transform, error)
	ListTransforms() []string
	// Update feeds price to every registered transform.
	Update(price float64) error
	// Values returns the current value of every transform keyed by name.
	Values() map[string]float64
	// Ready reports whether every transform has a full window.
	Ready() bool
	Reset()
}

// TransformRegistryV1 keeps transforms in registration order.
type TransformRegistryV1 struct {
	transforms map[string]Transform
	order      []string
	mu         sync.RWMutex
}

// NewTransformRegistry creates a new, empty registry.
func NewTransformRegistry() TransformRegistry {
	return &TransformRegistryV1{
		transforms: make(map[string]Transform),
		order:      nil,
		mu:         sync.RWMutex{},
	}
}

// NewTransformRegistryFromSpecs builds and registers a transform for each spec.
func NewTransformRegistryFromSpecs(specs []Spec, mode WarmUpMode) (TransformRegistry, error) {
	registry := NewTransformRegistry()

	for _, spec := range specs {
		transform, err := NewTransform(spec, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to create transform %s: %w", spec.Name, err)
		}

		if err := registry.RegisterTransform(transform); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// RegisterTransform adds a transform to the registry.
func (r *TransformRegistryV1) RegisterTransform(transform Transform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := transform.Name()
	if _, exists := r.transforms[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterTransform: transform with name %s already registered", name)
	}

	r.transforms[name] = transform
	r.order = append(r.order, name)

	return nil
}

// GetTransform retrieves a transform by name.
func (r *TransformRegistryV1) GetTransform(name string) (Transform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transform, exists := r.transforms[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetTransform: transform with name %s not found", name)
	}

	return transform, nil
}

// ListTransforms returns the registered names in registration order.
func (r *TransformRegistryV1) ListTransforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Update implements TransformRegistry.
func (r *TransformRegistryV1) Update(price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if err := r.transforms[name].Update(price); err != nil {
			return err
		}
	}

	return nil
}

// Values implements TransformRegistry.
func (r *TransformRegistryV1) Values() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make(map[string]float64, len(r.order))
	for _, name := range r.order {
		values[name] = r.transforms[name].Value()
	}

	return values
}

// Ready implements TransformRegistry.
func (r *TransformRegistryV1) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if !r.transforms[name].Ready() {
			return false
		}
	}

	return true
}

// Reset implements TransformRegistry.
func (r *TransformRegistryV1) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		r.transforms[name].Reset()
	}
}
