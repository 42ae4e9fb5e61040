package avro

import (
	"fmt"
	"sync"
)

// SchemaContext is the symbol table a schema parse binds named schemas
// into. It plays the role of an arena keyed by fullname: a record is
// registered here before its fields are parsed so that a field may
// reference the record's own fullname (self-reference), and every other
// named schema is registered as soon as it is fully parsed so that later
// siblings in a depth-first, left-to-right traversal can reference it.
//
// A SchemaContext is only mutated during a single Parse call, but is
// guarded by a mutex so a schema tree can safely be validated concurrently
// with another parse in progress.
type SchemaContext struct {
	mu    sync.Mutex
	byFQN map[string]*Schema
}

func newSchemaContext() *SchemaContext {
	return &SchemaContext{byFQN: make(map[string]*Schema)}
}

// lookup resolves a fullname to a previously bound named schema.
func (c *SchemaContext) lookup(fqn string) (*Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.byFQN[fqn]
	return s, ok
}

// register binds fqn to s, failing if fqn is already bound to a different
// schema. s's aliases are bound separately by registerAliases.
func (c *SchemaContext) register(fqn string, s *Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byFQN[fqn]; ok && existing != s {
		return fmt.Errorf("name %q is already defined", fqn)
	}
	c.byFQN[fqn] = s
	return nil
}

// registerAliases binds each of s's alias fullnames, failing on collision
// with any previously declared fullname or alias.
func (c *SchemaContext) registerAliases(s *Schema) error {
	for _, full := range s.FullAliases() {
		c.mu.Lock()
		existing, ok := c.byFQN[full]
		if ok && existing != s {
			c.mu.Unlock()
			return fmt.Errorf("alias %q collides with an existing schema name", full)
		}
		c.byFQN[full] = s
		c.mu.Unlock()
	}
	return nil
}
