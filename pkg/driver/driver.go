package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// DefaultWeight is the weight of a provider that has no reason to be preferred.
const DefaultWeight = 50

var (
	// ErrIncompatible marks a provider as not applicable in the current environment.
	ErrIncompatible = errors.New("driver is incompatible")
	// ErrNotFound is returned when no provider is registered for a driver type or ID.
	ErrNotFound = errors.New("driver not found")
)

// Provider builds a driver of type T.
type Provider[T any] interface {
	ID() string
	Name() string
	DefaultWeight() int
	CheckCompatibility(ctx context.Context) error
	New(ctx context.Context) (T, error)
}

type entry struct {
	id       string
	name     string
	weight   func() int
	check    func(ctx context.Context) error
	build    func(ctx context.Context) (any, error)
	instance any
}

var (
	mu        sync.Mutex
	providers = map[reflect.Type][]*entry{}
	weights   = map[string]int{}
)

// Register adds a provider for the driver type T. It is meant to be called from init().
func Register[T any](p Provider[T]) {
	mu.Lock()
	defer mu.Unlock()
	key := reflect.TypeFor[T]()
	providers[key] = append(providers[key], &entry{
		id:     p.ID(),
		name:   p.Name(),
		weight: p.DefaultWeight,
		check:  p.CheckCompatibility,
		build: func(ctx context.Context) (any, error) {
			return p.New(ctx)
		},
	})
}

// SetWeight overrides the weight of the provider with the given ID.
func SetWeight(id string, weight int) {
	mu.Lock()
	defer mu.Unlock()
	weights[id] = weight
}

func (e *entry) effectiveWeight() int {
	if w, ok := weights[e.id]; ok {
		return w
	}
	return e.weight()
}

// Get returns the compatible driver of type T with the highest weight.
// Instances are built once and reused for the lifetime of the process.
func Get[T any](ctx context.Context) (T, error) {
	var zero T
	key := reflect.TypeFor[T]()

	mu.Lock()
	candidates := append([]*entry(nil), providers[key]...)
	mu.Unlock()

	if len(candidates) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].effectiveWeight() > candidates[j].effectiveWeight()
	})

	var reasons []string
	for _, e := range candidates {
		if e.effectiveWeight() <= 0 {
			reasons = append(reasons, e.id+": disabled")
			continue
		}
		d, err := instantiate[T](ctx, e)
		if err != nil {
			slog.Debug("driver skipped", "driver", e.id, "error", err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", e.id, err))
			continue
		}
		return d, nil
	}
	return zero, fmt.Errorf("%w: no usable %s (%s)", ErrIncompatible, key, strings.Join(reasons, "; "))
}

// GetByID returns the driver of type T built by the provider with the given ID.
func GetByID[T any](ctx context.Context, id string) (T, error) {
	var zero T
	key := reflect.TypeFor[T]()

	mu.Lock()
	var found *entry
	for _, e := range providers[key] {
		if e.id == id {
			found = e
			break
		}
	}
	mu.Unlock()

	if found == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return instantiate[T](ctx, found)
}

func instantiate[T any](ctx context.Context, e *entry) (T, error) {
	var zero T

	mu.Lock()
	if e.instance != nil {
		d := e.instance.(T)
		mu.Unlock()
		return d, nil
	}
	mu.Unlock()

	if err := e.check(ctx); err != nil {
		return zero, err
	}
	built, err := e.build(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to create driver %s: %w", e.id, err)
	}
	slog.Debug("driver selected", "driver", e.id, "name", e.name)

	mu.Lock()
	defer mu.Unlock()
	if e.instance == nil {
		e.instance = built
	}
	return e.instance.(T), nil
}

// Reset drops cached driver instances and weight overrides.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	for _, list := range providers {
		for _, e := range list {
			e.instance = nil
		}
	}
	weights = map[string]int{}
}

// Info describes a registered provider.
type Info struct {
	Type   string
	ID     string
	Name   string
	Weight int
	Active bool
}

// List returns every registered provider ordered by driver type and weight.
// Active marks providers whose instance has been built.
func List() []Info {
	mu.Lock()
	defer mu.Unlock()

	var out []Info
	for key, list := range providers {
		for _, e := range list {
			out = append(out, Info{
				Type:   key.String(),
				ID:     e.id,
				Name:   e.name,
				Weight: e.effectiveWeight(),
				Active: e.instance != nil,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out
}
