package group

import "testing"

func TestUpsertGroupCreatesAndReportsChanged(t *testing.T) {
	tr := NewTracker()

	res := tr.UpsertGroup(3, []int{4, 5}, "musicassistant", "grp-3-1", "manual")
	if !res.Changed {
		t.Fatal("expected first upsert to report changed")
	}
	if len(res.Group.Members) != 3 {
		t.Fatalf("expected leader+2 members, got %d", len(res.Group.Members))
	}

	res2 := tr.UpsertGroup(3, []int{4, 5}, "musicassistant", "grp-3-1", "manual")
	if res2.Changed {
		t.Fatal("expected identical upsert to report unchanged")
	}

	res3 := tr.UpsertGroup(3, []int{4}, "musicassistant", "grp-3-1", "manual")
	if !res3.Changed {
		t.Fatal("expected member-set change to report changed")
	}
}

func TestPlayerBelongsToAtMostOneGroup(t *testing.T) {
	tr := NewTracker()
	tr.UpsertGroup(1, []int{2, 3}, "sonos", "grp-1", "manual")
	tr.UpsertGroup(5, []int{3, 6}, "sonos", "grp-5", "manual")

	g1, ok := tr.GetGroupByLeader(1)
	if !ok {
		t.Fatal("group 1 missing")
	}
	if _, stillMember := g1.Members[3]; stillMember {
		t.Fatal("player 3 should have been pulled out of group 1 when it joined group 5")
	}

	g5, ok := tr.GetGroupByLeader(5)
	if !ok {
		t.Fatal("group 5 missing")
	}
	if _, isMember := g5.Members[3]; !isMember {
		t.Fatal("player 3 should be a member of group 5")
	}
}

func TestRemoveGroupByLeaderRemovesWhole(t *testing.T) {
	tr := NewTracker()
	tr.UpsertGroup(1, []int{2, 3}, "sonos", "grp-1", "manual")

	if !tr.RemoveGroupByLeader(1) {
		t.Fatal("expected removal to report true")
	}
	if _, ok := tr.GetGroupByLeader(1); ok {
		t.Fatal("group should be gone")
	}
	if tr.RemoveGroupByLeader(1) {
		t.Fatal("second removal should report false")
	}
}

func TestGetGroupByZoneFindsMember(t *testing.T) {
	tr := NewTracker()
	tr.UpsertGroup(1, []int{2, 3}, "sonos", "grp-1", "manual")

	g, ok := tr.GetGroupByZone(3)
	if !ok || g.Leader != 1 {
		t.Fatalf("expected to find group led by 1, got %+v ok=%v", g, ok)
	}
}

func TestChangingLeaderReplacesPriorRecordAtomically(t *testing.T) {
	tr := NewTracker()
	tr.UpsertGroup(1, []int{2}, "sonos", "grp-1", "manual")

	// Leader 2 becomes its own new group's leader; it must be removed from
	// group 1 atomically.
	tr.UpsertGroup(2, []int{9}, "sonos", "grp-2", "manual")

	g1, ok := tr.GetGroupByLeader(1)
	if !ok {
		t.Fatal("group 1 should still exist")
	}
	if _, member := g1.Members[2]; member {
		t.Fatal("player 2 should no longer be a member of group 1")
	}
}
