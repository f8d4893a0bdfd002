package classify

import (
	"testing"

	"github.com/google/uuid"

	"github.com/solobooks/solobooks/internal/entity"
)

func cats(names ...string) []entity.Category {
	out := make([]entity.Category, len(names))
	for i, n := range names {
		out[i] = entity.Category{ID: uuid.New(), Name: n, CategoryType: "expense"}
	}
	return out
}

func TestMatchKeyword(t *testing.T) {
	cs := cats("Software", "Travel", "Meals")

	got := Match("Adobe Systems", "Creative Cloud subscription", cs)
	if got == nil || *got != cs[0].ID {
		t.Fatalf("Adobe should classify as Software, got %v", got)
	}

	got = Match("United Airlines", "flight to client site", cs)
	if got == nil || *got != cs[1].ID {
		t.Fatalf("airline should classify as Travel, got %v", got)
	}
}

func TestMatchNameBonus(t *testing.T) {
	// Category name not in the keyword table; only the verbatim-name bonus
	// can score it.
	cs := cats("Subcontractors")
	got := Match("Jane Doe", "subcontractors invoice for March", cs)
	if got == nil || *got != cs[0].ID {
		t.Fatalf("verbatim name should score, got %v", got)
	}
}

func TestMatchNoSignalReturnsNil(t *testing.T) {
	cs := cats("Software", "Travel")
	if got := Match("Mystery Vendor", "something unclassifiable", cs); got != nil {
		t.Fatalf("want nil for all-zero scores, got %v", got)
	}
	if got := Match("", "", cs); got != nil {
		t.Fatalf("want nil for empty search text, got %v", got)
	}
	if got := Match("Adobe", "software", nil); got != nil {
		t.Fatalf("want nil for no candidates, got %v", got)
	}
}

func TestMatchTieKeepsFirstSeen(t *testing.T) {
	// Both share the keyword "internet" via Utilities; duplicate names force
	// an exact tie, first candidate must win.
	cs := []entity.Category{
		{ID: uuid.New(), Name: "Utilities"},
		{ID: uuid.New(), Name: "Utilities"},
	}
	got := Match("Comcast", "internet service", cs)
	if got == nil || *got != cs[0].ID {
		t.Fatalf("tie must keep first candidate, got %v", got)
	}
}
