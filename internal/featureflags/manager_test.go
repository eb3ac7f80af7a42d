package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", 1) || !m.Enabled("c", 1) || !m.Enabled("e", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", 1) || m.Enabled("d", 1) || m.Enabled("f", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("missing", 1) {
		t.Fatal("unknown flags must be off")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) || m.Enabled("junk", 1) {
		t.Fatal("0% and malformed rollouts should be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}
	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestDefaultsAndOverrides(t *testing.T) {
	m := NewManager("")
	if !m.Enabled(LikeNotices, 7) || !m.Enabled(RealtimeNotices, 7) {
		t.Fatal("forum flags should default to on")
	}

	m = NewManager(" LIKE_NOTICES = off , bad ")
	if m.Enabled(LikeNotices, 7) {
		t.Fatal("configured value must override the default")
	}
	if !m.Enabled(RealtimeNotices, 7) {
		t.Fatal("unrelated defaults must survive an override")
	}

	names := m.Names()
	if len(names) != 2 || names[0] != LikeNotices || names[1] != RealtimeNotices {
		t.Fatalf("unexpected names %v", names)
	}
	if m.Raw()[LikeNotices] != "off" {
		t.Fatalf("raw value not normalized: %v", m.Raw())
	}
	if snap := m.Snapshot(7); snap[LikeNotices] || !snap[RealtimeNotices] {
		t.Fatalf("unexpected snapshot %v", snap)
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.Enabled(LikeNotices, 1) {
		t.Fatal("nil manager must report every flag off")
	}
}
