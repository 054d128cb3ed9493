package schema

import "testing"

func TestVersionGroups(t *testing.T) {
	cases := []struct {
		version int
		group   AdapterGroup
	}{
		{19, GroupUnknown},
		{20, GroupCamelCase},
		{21, GroupCamelCase},
		{22, GroupCamelCase},
		{23, GroupCamelCase},
		{24, GroupSnakeCaseV10},
		{25, GroupSnakeCaseV10},
		{26, GroupSnakeCaseV11},
		{27, GroupSnakeCaseV11},
		{28, GroupUnknown},
	}
	for _, c := range cases {
		if got := Version(c.version).Group(); got != c.group {
			t.Errorf("version %d: got group %q want %q", c.version, got, c.group)
		}
	}
}

func TestVersionSupported(t *testing.T) {
	if Version(19).Supported() {
		t.Error("version 19 should not be supported")
	}
	if Version(28).Supported() {
		t.Error("version 28 should not be supported")
	}
	for v := 20; v <= 27; v++ {
		if !Version(v).Supported() {
			t.Errorf("version %d should be supported", v)
		}
	}
}

func TestIsValidSchemaName(t *testing.T) {
	valid := []string{"pgboss", "pg_boss", "_private", "boss2", "app$queue"}
	for _, name := range valid {
		if !IsValidSchemaName(name) {
			t.Errorf("%q should be valid", name)
		}
	}
	invalid := []string{"", "PgBoss", "1boss", "pg-boss", "pg boss", "pg.boss", `pg"boss`, "pgboss; DROP TABLE job"}
	for _, name := range invalid {
		if IsValidSchemaName(name) {
			t.Errorf("%q should be invalid", name)
		}
	}
}

func TestNewAdapterUnknownFallsBackToNewest(t *testing.T) {
	adapter := NewAdapter(GroupUnknown, "pgboss")
	if adapter.Group() != GroupSnakeCaseV11 {
		t.Fatalf("unknown group should map to newest adapter, got %q", adapter.Group())
	}
}
