package identity

import (
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mapper remembers the physical identifier generated for each logical key so
// that every seeder referencing "user_3" points at the same record. It is
// created per run and passed explicitly to whoever needs it.
type Mapper struct {
	mu            sync.Mutex
	objectIDs     map[string]primitive.ObjectID
	uuids         map[string]uuid.UUID
	relationships map[string][]string
}

type Stats struct {
	ObjectIDCount     int `json:"object_id_count" yaml:"object_id_count"`
	UUIDCount         int `json:"uuid_count" yaml:"uuid_count"`
	RelationshipCount int `json:"relationship_count" yaml:"relationship_count"`
}

func New() *Mapper {
	m := &Mapper{}
	m.init()
	return m
}

func (m *Mapper) init() {
	m.objectIDs = make(map[string]primitive.ObjectID)
	m.uuids = make(map[string]uuid.UUID)
	m.relationships = make(map[string][]string)
}

// GetOrCreateObjectID returns the object id for key, generating it on first use.
func (m *Mapper) GetOrCreateObjectID(key string) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.objectIDs[key]; ok {
		return id
	}
	id := primitive.NewObjectID()
	m.objectIDs[key] = id
	return id
}

// GetOrCreateUUID returns the UUID for key, generating it on first use.
func (m *Mapper) GetOrCreateUUID(key string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.uuids[key]; ok {
		return id
	}
	id := uuid.New()
	m.uuids[key] = id
	return id
}

func (m *Mapper) SetObjectID(key string, id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objectIDs[key] = id
}

func (m *Mapper) SetUUID(key string, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uuids[key] = id
}

// LookupObjectID reports the object id for key without creating one.
func (m *Mapper) LookupObjectID(key string) (primitive.ObjectID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.objectIDs[key]
	return id, ok
}

// AddRelationship records child under parent. Duplicates are ignored.
func (m *Mapper) AddRelationship(parent, child string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.relationships[parent] {
		if existing == child {
			return
		}
	}
	m.relationships[parent] = append(m.relationships[parent], child)
}

// Children returns a copy of the children recorded for parent in insertion order.
func (m *Mapper) Children(parent string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	children := m.relationships[parent]
	out := make([]string, len(children))
	copy(out, children)
	return out
}

func (m *Mapper) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	relCount := 0
	for _, children := range m.relationships {
		relCount += len(children)
	}
	return Stats{
		ObjectIDCount:     len(m.objectIDs),
		UUIDCount:         len(m.uuids),
		RelationshipCount: relCount,
	}
}

// Reset drops every mapping. Only used between independent runs.
func (m *Mapper) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
}

// Export returns a serializable copy of the current mappings.
func (m *Mapper) Export() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		ObjectIDs:     make(map[string]string, len(m.objectIDs)),
		UUIDs:         make(map[string]string, len(m.uuids)),
		Relationships: make(map[string][]string, len(m.relationships)),
	}
	for k, v := range m.objectIDs {
		snap.ObjectIDs[k] = v.Hex()
	}
	for k, v := range m.uuids {
		snap.UUIDs[k] = v.String()
	}
	for k, v := range m.relationships {
		children := make([]string, len(v))
		copy(children, v)
		snap.Relationships[k] = children
	}
	return snap
}

// Keys returns every key known to either id map, ordered by SortKeys.
func (s Snapshot) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for k := range s.ObjectIDs {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range s.UUIDs {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	SortKeys(keys)
	return keys
}
