// ABOUTME: In-memory tracker for dynamic synchronized playback groups
// ABOUTME: Pure data: upsert/remove/query, no I/O
package group

import "sync"

// Group is a dynamic synchronized playback group.
type Group struct {
	ExternalID string
	Leader     int
	Members    map[int]struct{}
	Backend    string
	Source     string // "manual" or "backend"
}

// MemberList returns the group's members as a sorted-by-insertion-irrelevant
// slice (order is not significant).
func (g Group) MemberList() []int {
	out := make([]int, 0, len(g.Members))
	for id := range g.Members {
		out = append(out, id)
	}
	return out
}

func (g Group) hasMember(id int) bool {
	_, ok := g.Members[id]
	return ok
}

func sameMembers(a map[int]struct{}, ids []int) bool {
	if len(a) != len(ids) {
		return false
	}
	for _, id := range ids {
		if _, ok := a[id]; !ok {
			return false
		}
	}
	return true
}

// Tracker owns the set of groups, keyed by leader PlayerId. A PlayerId
// belongs to at most one group at a time: adding a
// player to a new group's membership removes it from any group it
// previously belonged to.
type Tracker struct {
	mu       sync.RWMutex
	byLeader map[int]*Group
}

// NewTracker creates an empty group tracker.
func NewTracker() *Tracker {
	return &Tracker{byLeader: make(map[int]*Group)}
}

// UpsertResult reports whether upsertGroup actually changed anything.
type UpsertResult struct {
	Changed bool
	Group   Group
}

// UpsertGroup creates or replaces the group led by leader. changed is true
// whenever leader, member set, backend tag, or external id differs from the
// prior record. Members not explicitly including the leader
// get the leader added automatically (invariant: members always includes
// leader).
func (t *Tracker) UpsertGroup(leader int, members []int, backend, externalID, source string) UpsertResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	memberSet := make(map[int]struct{}, len(members)+1)
	memberSet[leader] = struct{}{}
	for _, m := range members {
		memberSet[m] = struct{}{}
	}

	// A PlayerId belongs to at most one group: drop any member (including
	// the new leader) from whatever group it previously led or belonged to.
	for id := range memberSet {
		t.removePlayerUnsafe(id, leader)
	}

	prior, existed := t.byLeader[leader]
	changed := !existed ||
		prior.Backend != backend ||
		prior.ExternalID != externalID ||
		!sameMembers(prior.Members, memberList(memberSet))

	g := &Group{
		ExternalID: externalID,
		Leader:     leader,
		Members:    memberSet,
		Backend:    backend,
		Source:     source,
	}
	t.byLeader[leader] = g

	return UpsertResult{Changed: changed, Group: *g}
}

func memberList(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// removePlayerUnsafe removes id from whichever group (other than
// keepLeader's own in-progress upsert) currently contains it. Caller holds
// t.mu.
func (t *Tracker) removePlayerUnsafe(id int, keepLeader int) {
	for leaderID, g := range t.byLeader {
		if leaderID == keepLeader {
			continue
		}
		if leaderID == id {
			delete(t.byLeader, leaderID)
			continue
		}
		if g.hasMember(id) {
			delete(g.Members, id)
			if len(g.Members) == 0 {
				delete(t.byLeader, leaderID)
			}
		}
	}
}

// RemoveGroupByLeader removes the whole group led by leader, if any.
// Removing the leader removes the whole group.
func (t *Tracker) RemoveGroupByLeader(leader int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byLeader[leader]; !ok {
		return false
	}
	delete(t.byLeader, leader)
	return true
}

// GetGroupByLeader returns the group led by leader, if any.
func (t *Tracker) GetGroupByLeader(leader int) (Group, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.byLeader[leader]
	if !ok {
		return Group{}, false
	}
	return *g, true
}

// GetGroupByExternalID scans for a group with the given external id.
func (t *Tracker) GetGroupByExternalID(externalID string) (Group, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, g := range t.byLeader {
		if g.ExternalID == externalID {
			return *g, true
		}
	}
	return Group{}, false
}

// GetGroupByZone returns the group (if any) that zone belongs to, whether
// as leader or member.
func (t *Tracker) GetGroupByZone(zone int) (Group, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if g, ok := t.byLeader[zone]; ok {
		return *g, true
	}
	for _, g := range t.byLeader {
		if g.hasMember(zone) {
			return *g, true
		}
	}
	return Group{}, false
}

// All returns a snapshot of every tracked group.
func (t *Tracker) All() []Group {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Group, 0, len(t.byLeader))
	for _, g := range t.byLeader {
		out = append(out, *g)
	}
	return out
}
