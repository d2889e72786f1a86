package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Driver() string { return "memory" }

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = newMemoryCollection(name, nil)
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) EnsureCollections(_ context.Context, specs []CollectionSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, spec := range specs {
		if c, ok := s.collections[spec.Name]; ok {
			c.setUnique(spec.UniqueFields)
			continue
		}
		s.collections[spec.Name] = newMemoryCollection(spec.Name, spec.UniqueFields)
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

type memoryCollection struct {
	name   string
	mu     sync.RWMutex
	unique []string
	order  []string
	docs   map[string]map[string]any
}

func newMemoryCollection(name string, unique []string) *memoryCollection {
	return &memoryCollection{
		name:   name,
		unique: unique,
		docs:   make(map[string]map[string]any),
	}
}

func (c *memoryCollection) setUnique(fields []string) {
	c.mu.Lock()
	c.unique = fields
	c.mu.Unlock()
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Get(ctx context.Context, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	c.mu.RLock()
	doc, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return decode(doc, out)
}

func (c *memoryCollection) Create(ctx context.Context, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	fields, err := toFields(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; exists {
		return ErrConflict
	}
	if err := c.checkUnique(id, fields); err != nil {
		return err
	}
	c.docs[id] = fields
	c.order = append(c.order, id)
	return nil
}

func (c *memoryCollection) Replace(ctx context.Context, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	fields, err := toFields(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; !exists {
		return ErrNotFound
	}
	if err := c.checkUnique(id, fields); err != nil {
		return err
	}
	c.docs[id] = fields
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; !exists {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	want, err := toFields(filter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	matches := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if matchesFilter(doc, want) {
			matches = append(matches, doc)
		}
	}
	c.mu.RUnlock()

	return decode(matches, out)
}

func (c *memoryCollection) checkUnique(id string, fields map[string]any) error {
	for _, field := range c.unique {
		value, ok := fields[field]
		if !ok {
			continue
		}
		for otherID, other := range c.docs {
			if otherID != id && reflect.DeepEqual(other[field], value) {
				return ErrConflict
			}
		}
	}
	return nil
}

func matchesFilter(doc, filter map[string]any) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

// toFields normalizes a record through its JSON encoding so stored documents
// never alias caller memory.
func toFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode document: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("docstore: document must be a JSON object: %w", err)
	}
	return fields, nil
}

func decode(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode document: %w", err)
	}
	return nil
}
