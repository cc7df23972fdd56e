// Package session holds per-conversation state: the currently selected
// network and small name-to-MAC lookup caches populated lazily on first
// miss. Each Conversation owns its own State, so concurrent conversations
// never share caches or cross-talk.
package session

import (
	"context"
	"sync"
)

// LinkEndpoints is the MAC pair of a link's two endpoints.
type LinkEndpoints struct {
	ANodeMAC string
	ZNodeMAC string
}

// Inventory loads the cache contents for one network. The cnmaestro client
// satisfies it through a small adapter that requests only the name and MAC
// fields to keep payloads small.
type Inventory interface {
	NodeMACs(ctx context.Context, networkID string) (map[string]string, error)
	LinkMACs(ctx context.Context, networkID string) (map[string]LinkEndpoints, error)
}

type State struct {
	inventory Inventory

	mu              sync.Mutex
	selectedNetwork string
	nodes           map[string]map[string]string        // network id -> node name -> mac
	links           map[string]map[string]LinkEndpoints // network id -> link name -> endpoint macs
}

func NewState(inventory Inventory) *State {
	return &State{
		inventory: inventory,
		nodes:     make(map[string]map[string]string),
		links:     make(map[string]map[string]LinkEndpoints),
	}
}

func (s *State) SelectNetwork(networkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedNetwork = networkID
}

func (s *State) SelectedNetwork() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectedNetwork
}

// NodeMAC returns the MAC for a node name, hydrating the network's node
// cache on a miss and retrying once.
func (s *State) NodeMAC(ctx context.Context, networkID, nodeName string) (string, bool) {
	s.mu.Lock()
	mac, ok := s.nodes[networkID][nodeName]
	s.mu.Unlock()
	if ok {
		return mac, true
	}

	loaded, err := s.inventory.NodeMACs(ctx, networkID)
	if err != nil {
		return "", false
	}

	s.mu.Lock()
	s.nodes[networkID] = loaded
	mac, ok = loaded[nodeName]
	s.mu.Unlock()

	return mac, ok
}

// LinkMACs returns both endpoint MACs for a link name, hydrating the
// network's link cache on a miss and retrying once.
func (s *State) LinkMACs(ctx context.Context, networkID, linkName string) (LinkEndpoints, bool) {
	s.mu.Lock()
	endpoints, ok := s.links[networkID][linkName]
	s.mu.Unlock()
	if ok {
		return endpoints, true
	}

	loaded, err := s.inventory.LinkMACs(ctx, networkID)
	if err != nil {
		return LinkEndpoints{}, false
	}

	s.mu.Lock()
	s.links[networkID] = loaded
	endpoints, ok = loaded[linkName]
	s.mu.Unlock()

	return endpoints, ok
}

// Reset clears the caches and the selected network.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedNetwork = ""
	s.nodes = make(map[string]map[string]string)
	s.links = make(map[string]map[string]LinkEndpoints)
}
