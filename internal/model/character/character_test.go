package character

import "testing"

func TestSeedPassesValidation(t *testing.T) {
	if err := Validate(Seed()); err != nil {
		t.Fatalf("seed roster failed validation: %v", err)
	}
}

func TestParseIDRejectsUnknown(t *testing.T) {
	if _, ok := ParseID("moriarty"); ok {
		t.Fatal("expected unknown identifier to be rejected")
	}
	if _, ok := ParseID(""); ok {
		t.Fatal("expected empty identifier to be rejected")
	}

	for _, raw := range []string{"sherlock", "jarvis", "harvey"} {
		id, ok := ParseID(raw)
		if !ok {
			t.Fatalf("expected %q to parse", raw)
		}
		if string(id) != raw {
			t.Fatalf("expected %q, got %q", raw, id)
		}
	}
}

func TestValidateRejectsMissingDefault(t *testing.T) {
	items := []Character{{
		ID:        Sherlock,
		Name:      "Sherlock Holmes",
		Responses: map[Category][]string{CategoryGreeting: {"hello"}},
	}}
	if err := Validate(items); err == nil {
		t.Fatal("expected validation error for missing default list")
	}
}

func TestValidateRejectsEmptyEntry(t *testing.T) {
	items := []Character{{
		ID:        Jarvis,
		Name:      "Jarvis",
		Responses: map[Category][]string{CategoryDefault: {"fine", ""}},
	}}
	if err := Validate(items); err == nil {
		t.Fatal("expected validation error for empty response entry")
	}
}

func TestValidateRejectsForeignID(t *testing.T) {
	items := []Character{{
		ID:        ID("moriarty"),
		Name:      "Moriarty",
		Responses: map[Category][]string{CategoryDefault: {"never"}},
	}}
	if err := Validate(items); err == nil {
		t.Fatal("expected validation error for identifier outside the fixed set")
	}
}

func TestMemoryStoreLookup(t *testing.T) {
	store, err := NewMemoryStore(Seed())
	if err != nil {
		t.Fatalf("NewMemoryStore err: %v", err)
	}

	if got := len(store.List()); got != 3 {
		t.Fatalf("expected 3 characters, got %d", got)
	}

	c, ok := store.FindByID(Harvey)
	if !ok {
		t.Fatal("expected to find harvey")
	}
	if c.Specialty != CategoryWork {
		t.Fatalf("expected harvey specialty work, got %s", c.Specialty)
	}

	if _, ok := store.FindByID(ID("nobody")); ok {
		t.Fatal("expected lookup miss for unknown id")
	}
}
