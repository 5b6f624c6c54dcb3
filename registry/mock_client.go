package registry

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// MockSitePackage is the package id used for the types of mock site objects.
const MockSitePackage = "0xf99aee9f21493e1590e7e5a9aea6f343a1f381031a04a732724871fc294be799"

// MockResource describes one resource of a mock site.
type MockResource struct {
	Path string

	// BlobID and BlobHash are decimal u256 strings as stored on chain.
	BlobID   string
	BlobHash string

	Headers map[string]string
	Range   *interfaces.Range
}

// MockRegistryClient provides a simple in-memory implementation of the
// RegistryClient interface for testing purposes without requiring a network.
type MockRegistryClient struct {
	mutex       sync.RWMutex
	objects     map[interfaces.ObjectID]*interfaces.ObjectRecord
	children    map[interfaces.ObjectID][]interfaces.DynamicFieldEntry
	names       map[string]interfaces.ObjectID
	calls       map[string]int
	pageSize    int
	unavailable bool
}

// NewMockRegistryClient creates a new mock registry client with empty initial state.
func NewMockRegistryClient() *MockRegistryClient {
	return &MockRegistryClient{
		objects:  make(map[interfaces.ObjectID]*interfaces.ObjectRecord),
		children: make(map[interfaces.ObjectID][]interfaces.DynamicFieldEntry),
		names:    make(map[string]interfaces.ObjectID),
		calls:    make(map[string]int),
		pageSize: DefaultBatchSize,
	}
}

// SetPageSize sets the number of dynamic fields returned per page.
func (m *MockRegistryClient) SetPageSize(size int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pageSize = size
}

// SetUnavailable makes every subsequent call fail as if the network was unreachable.
func (m *MockRegistryClient) SetUnavailable(unavailable bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.unavailable = unavailable
}

// CallCount returns how many times method was called.
func (m *MockRegistryClient) CallCount(method string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[method]
}

// AddObject stores record under its object id.
func (m *MockRegistryClient) AddObject(record *interfaces.ObjectRecord) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.objects[record.ObjectID] = record
}

// AddDynamicField attaches entry to parent.
func (m *MockRegistryClient) AddDynamicField(parent interfaces.ObjectID, entry interfaces.DynamicFieldEntry) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.children[parent] = append(m.children[parent], entry)
}

// RegisterName makes the name service resolve name to id.
func (m *MockRegistryClient) RegisterName(name string, id interfaces.ObjectID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.names[name] = id
}

// MockResourceID is the object id AddSite assigns to the resource at path.
func MockResourceID(siteID interfaces.ObjectID, path string) interfaces.ObjectID {
	return sha256.Sum256(append(siteID.Bytes(), path...))
}

// AddSite lays out a site object and its resources the way the site package
// stores them: resources are dynamic fields of the site object's UID.
func (m *MockRegistryClient) AddSite(siteID interfaces.ObjectID, resources ...MockResource) {
	siteFields, _ := json.Marshal(map[string]any{
		"id":   uidField(siteID),
		"name": "mock site",
	})
	m.AddObject(&interfaces.ObjectRecord{
		ObjectID: siteID,
		Version:  "1",
		Type:     MockSitePackage + "::site::Site",
		Fields:   siteFields,
	})

	fieldType := "0x2::dynamic_field::Field<" + MockSitePackage + "::site::ResourcePath, " + MockSitePackage + "::site::Resource>"
	for _, resource := range resources {
		resourceID := MockResourceID(siteID, resource.Path)
		name, _ := json.Marshal(map[string]any{
			"type":  MockSitePackage + "::site::ResourcePath",
			"value": map[string]any{"path": resource.Path},
		})

		m.AddDynamicField(siteID, interfaces.DynamicFieldEntry{
			Name:       name,
			ObjectType: fieldType,
			ObjectID:   resourceID,
		})
		m.AddObject(&interfaces.ObjectRecord{
			ObjectID: resourceID,
			Version:  "7",
			Type:     fieldType,
			Fields:   resourceFields(resourceID, resource),
		})
	}
}

func uidField(id interfaces.ObjectID) map[string]any {
	return map[string]any{"id": id.Hex()}
}

func resourceFields(id interfaces.ObjectID, resource MockResource) json.RawMessage {
	keys := make([]string, 0, len(resource.Headers))
	for key := range resource.Headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	contents := make([]any, 0, len(keys))
	for _, key := range keys {
		contents = append(contents, map[string]any{
			"type":   "0x2::vec_map::Entry<0x1::string::String, 0x1::string::String>",
			"fields": map[string]any{"key": key, "value": resource.Headers[key]},
		})
	}

	value := map[string]any{
		"path":    resource.Path,
		"blob_id": resource.BlobID,
		"headers": map[string]any{
			"type":   "0x2::vec_map::VecMap<0x1::string::String, 0x1::string::String>",
			"fields": map[string]any{"contents": contents},
		},
		"range": nil,
	}
	if resource.BlobHash != "" {
		value["blob_hash"] = resource.BlobHash
	}
	if r := resource.Range; r != nil {
		value["range"] = map[string]any{
			"type": MockSitePackage + "::site::Range",
			"fields": map[string]any{
				"start": optionalU64(r.Start),
				"end":   optionalU64(r.End),
			},
		}
	}

	fields, _ := json.Marshal(map[string]any{
		"id": uidField(id),
		"name": map[string]any{
			"type":   MockSitePackage + "::site::ResourcePath",
			"fields": map[string]any{"path": resource.Path},
		},
		"value": map[string]any{
			"type":   MockSitePackage + "::site::Resource",
			"fields": value,
		},
	})
	return fields
}

func optionalU64(v *uint64) any {
	if v == nil {
		return nil
	}
	return strconv.FormatUint(*v, 10)
}

func (m *MockRegistryClient) record(method string) error {
	m.calls[method]++
	if m.unavailable {
		return fmt.Errorf("%w: %s: mock network down", interfaces.ErrUpstreamUnavailable, method)
	}
	return nil
}

// GetObject returns the stored object or ErrNotFound.
func (m *MockRegistryClient) GetObject(_ context.Context, id interfaces.ObjectID) (*interfaces.ObjectRecord, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("GetObject"); err != nil {
		return nil, err
	}

	record, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: object %s", interfaces.ErrNotFound, id)
	}
	return record, nil
}

// GetDynamicFields pages over parentID's children. Cursors are offsets.
func (m *MockRegistryClient) GetDynamicFields(_ context.Context, parentID interfaces.ObjectID, cursor *string) (*interfaces.DynamicFieldPage, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("GetDynamicFields"); err != nil {
		return nil, err
	}

	entries := m.children[parentID]
	start := 0
	if cursor != nil {
		var err error
		start, err = strconv.Atoi(*cursor)
		if err != nil || start < 0 || start > len(entries) {
			return nil, fmt.Errorf("invalid cursor %q", *cursor)
		}
	}
	end := min(start+m.pageSize, len(entries))

	page := &interfaces.DynamicFieldPage{
		Entries:     append([]interfaces.DynamicFieldEntry(nil), entries[start:end]...),
		HasNextPage: end < len(entries),
	}
	if page.HasNextPage {
		next := strconv.Itoa(end)
		page.NextCursor = &next
	}
	return page, nil
}

// MultiGetObjects looks up every id, reporting missing ones per element.
func (m *MockRegistryClient) MultiGetObjects(_ context.Context, ids []interfaces.ObjectID) ([]interfaces.ObjectResult, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("MultiGetObjects"); err != nil {
		return nil, err
	}

	results := make([]interfaces.ObjectResult, len(ids))
	for i, id := range ids {
		results[i].ObjectID = id
		if record, ok := m.objects[id]; ok {
			results[i].Record = record
		} else {
			results[i].Err = fmt.Errorf("%w: object %s", interfaces.ErrNotFound, id)
		}
	}
	return results, nil
}

// ResolveName returns the registered id, or nil when the name is unknown.
func (m *MockRegistryClient) ResolveName(_ context.Context, name string) (*interfaces.ObjectID, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("ResolveName"); err != nil {
		return nil, err
	}

	id, ok := m.names[name]
	if !ok {
		return nil, nil
	}
	return &id, nil
}
