// Package nm implements the naming server: storage-server and client
// registries, the access-control store, the file index, and the per-role
// request dispatcher.
package nm

import (
	"fmt"
	"sync"
)

// StorageServer is a registered storage-server process. Registered once
// per process lifetime and never removed; there is no failure detection.
type StorageServer struct {
	ID         string
	IP         string
	NMPort     int32
	ClientPort int32
	Active     bool

	mu    sync.RWMutex
	Files map[string]bool
}

func (s *StorageServer) hasFile(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Files[name]
}

func (s *StorageServer) addFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[name] = true
}

func (s *StorageServer) removeFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, name)
}

func (s *StorageServer) fileList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.Files))
	for name := range s.Files {
		out = append(out, name)
	}
	return out
}

// Client is a registered client. The client table is append-only.
type Client struct {
	Username string
	Active   bool
}

// Registry holds every storage server and client the naming server knows
// about. Safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	storeServers map[string]*StorageServer
	ssOrder      []string // registration order, for "first active SS" selection
	clients      map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		storeServers: make(map[string]*StorageServer),
		clients:      make(map[string]*Client),
	}
}

// RegisterStorageServer adds a new SS, or returns the existing one if this
// id was already registered: a restarting SS process reconnects with the
// same id.
func (r *Registry) RegisterStorageServer(id, ip string, nmPort, clientPort int32) *StorageServer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.storeServers[id]; ok {
		existing.mu.Lock()
		existing.IP = ip
		existing.NMPort = nmPort
		existing.ClientPort = clientPort
		existing.Active = true
		existing.mu.Unlock()
		return existing
	}

	ss := &StorageServer{
		ID:         id,
		IP:         ip,
		NMPort:     nmPort,
		ClientPort: clientPort,
		Active:     true,
		Files:      make(map[string]bool),
	}
	r.storeServers[id] = ss
	r.ssOrder = append(r.ssOrder, id)
	return ss
}

// GetStorageServer returns the SS record for id, if any.
func (r *Registry) GetStorageServer(id string) (*StorageServer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ss, ok := r.storeServers[id]
	return ss, ok
}

// FirstActiveStorageServer returns the first-registered active SS, used by
// CREATE/CREATE_FOLDER/VIEW_FOLDER placement.
func (r *Registry) FirstActiveStorageServer() (*StorageServer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.ssOrder {
		if ss := r.storeServers[id]; ss.Active {
			return ss, true
		}
	}
	return nil, false
}

// ListStorageServers returns a snapshot of all registered SSes.
func (r *Registry) ListStorageServers() []*StorageServer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*StorageServer, 0, len(r.ssOrder))
	for _, id := range r.ssOrder {
		out = append(out, r.storeServers[id])
	}
	return out
}

// FindFileOwnerSS is the authoritative linear-scan fallback: it walks
// every active SS's file list looking for name.
func (r *Registry) FindFileOwnerSS(name string) (*StorageServer, bool) {
	r.mu.RLock()
	servers := make([]*StorageServer, 0, len(r.ssOrder))
	for _, id := range r.ssOrder {
		servers = append(servers, r.storeServers[id])
	}
	r.mu.RUnlock()

	for _, ss := range servers {
		if ss.Active && ss.hasFile(name) {
			return ss, true
		}
	}
	return nil, false
}

// RegisterClient appends a client record if this username hasn't been
// seen. The table is append-only; disconnected clients stay listed.
func (r *Registry) RegisterClient(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[username]; ok {
		return
	}
	r.clients[username] = &Client{Username: username, Active: true}
}

// ListClientUsernames returns every username ever registered, in no
// particular order.
func (r *Registry) ListClientUsernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.clients))
	for name := range r.clients {
		out = append(out, name)
	}
	return out
}

func (ss *StorageServer) String() string {
	return fmt.Sprintf("ss(%s %s:%d/%d)", ss.ID, ss.IP, ss.NMPort, ss.ClientPort)
}
