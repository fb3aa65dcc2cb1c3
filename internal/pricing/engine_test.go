package pricing

import "testing"

func testCatalog() Catalog {
	return NewCatalog([]Modifier{
		{ID: "m1", Name: "加起司", Price: 15, Category: CategoryAddon},
		{ID: "m2", Name: "加皮蛋", Price: 20, Category: CategoryAddon},
		{ID: "m3", Name: "加雞蛋", Price: 15, Category: CategoryAddon},
		{ID: "m5", Name: "不加芹菜", Price: 0, Category: CategoryOption},
		{ID: "m7", Name: "加大碗", Price: 25, Category: CategoryOption},
	})
}

func TestComputeLineTotalNoModifiers(t *testing.T) {
	if got := ComputeLineTotal(90, nil, testCatalog()); got != 90 {
		t.Fatalf("expected base price 90, got %d", got)
	}
}

func TestComputeLineTotalSingleAddonFullPrice(t *testing.T) {
	cat := NewCatalog([]Modifier{
		{ID: "a", Price: 25, Category: CategoryAddon},
		{ID: "b", Price: 20, Category: CategoryAddon},
	})
	if got := ComputeLineTotal(90, Selection{"a"}, cat); got != 115 {
		t.Fatalf("expected 115, got %d", got)
	}
	// Second addon triggers one flat discount: 90+25+20-5.
	if got := ComputeLineTotal(90, Selection{"a", "b"}, cat); got != 130 {
		t.Fatalf("expected 130, got %d", got)
	}
}

func TestComputeLineTotalDiscountPerExtraAddon(t *testing.T) {
	cat := testCatalog()
	sel := Selection{"m1", "m2", "m3"}
	// 90 + 15 + 20 + 15 - (3-1)*5
	if got := ComputeLineTotal(90, sel, cat); got != 130 {
		t.Fatalf("expected 130, got %d", got)
	}
}

func TestComputeLineTotalOptionsNeverDiscounted(t *testing.T) {
	cat := testCatalog()
	sel := Selection{"m5", "m7"}
	if got := ComputeLineTotal(90, sel, cat); got != 115 {
		t.Fatalf("expected 115 (no discount for options), got %d", got)
	}
}

func TestComputeLineTotalUnknownModifierContributesZero(t *testing.T) {
	cat := testCatalog()
	sel := Selection{"deleted", "m1"}
	if got := ComputeLineTotal(90, sel, cat); got != 105 {
		t.Fatalf("expected 105, got %d", got)
	}
}

func TestComputeLineTotalDeterministic(t *testing.T) {
	cat := testCatalog()
	sel := Selection{"m1", "m5", "m2"}
	first := ComputeLineTotal(100, sel, cat)
	second := ComputeLineTotal(100, sel, cat)
	if first != second {
		t.Fatalf("pricing not deterministic: %d vs %d", first, second)
	}
}

func TestComputeLineTotalFreeOptionOnlyCanBeZero(t *testing.T) {
	cat := NewCatalog([]Modifier{{ID: "free", Price: 0, Category: CategoryOption}})
	if got := ComputeLineTotal(0, Selection{"free"}, cat); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestToggleIdempotent(t *testing.T) {
	cat := testCatalog()
	sel := Selection{"m1"}
	before := ComputeLineTotal(90, sel, cat)

	toggled := sel.Toggle("m2").Toggle("m2")
	if len(toggled) != 1 || toggled[0] != "m1" {
		t.Fatalf("double toggle did not restore selection: %v", toggled)
	}
	if got := ComputeLineTotal(90, toggled, cat); got != before {
		t.Fatalf("double toggle changed price: %d vs %d", got, before)
	}
}

func TestTogglePreservesInsertionOrder(t *testing.T) {
	sel := Selection{}.Toggle("m2").Toggle("m1").Toggle("m3")
	want := []string{"m2", "m1", "m3"}
	for i, id := range want {
		if sel[i] != id {
			t.Fatalf("expected order %v, got %v", want, sel)
		}
	}
	sel = sel.Toggle("m1")
	if sel[0] != "m2" || sel[1] != "m3" {
		t.Fatalf("removal broke relative order: %v", sel)
	}
}

func TestToggleDoesNotMutateReceiver(t *testing.T) {
	sel := Selection{"m1", "m2"}
	_ = sel.Toggle("m3")
	_ = sel.Toggle("m1")
	if len(sel) != 2 || sel[0] != "m1" || sel[1] != "m2" {
		t.Fatalf("receiver mutated: %v", sel)
	}
}

func TestDiscountPreviewFirstAddonExempt(t *testing.T) {
	cat := testCatalog()
	entries := DiscountPreview(Selection{"m5", "m2", "m1", "m3"}, cat)
	if len(entries) != 3 {
		t.Fatalf("expected 3 addon entries, got %d", len(entries))
	}
	if entries[0].ModifierID != "m2" || entries[0].Discounted {
		t.Fatalf("first-selected addon must be exempt: %+v", entries[0])
	}
	for _, e := range entries[1:] {
		if !e.Discounted {
			t.Fatalf("later addon not marked discounted: %+v", e)
		}
	}
}

func TestDiscountMonotonicity(t *testing.T) {
	cat := testCatalog()
	sel := Selection{}
	prevTotal := ComputeLineTotal(90, sel, cat)
	for i, id := range []string{"m1", "m2", "m3"} {
		sel = sel.Toggle(id)
		total := ComputeLineTotal(90, sel, cat)
		step := total - prevTotal
		if step > cat[id].Price {
			t.Fatalf("adding %s increased total by more than its price: %d", id, step)
		}
		if step < cat[id].Price-FixedAddonDiscount {
			t.Fatalf("adding %s discounted more than the flat amount: step %d", id, step)
		}
		if i == 0 && step != cat[id].Price {
			t.Fatalf("first addon must be full price, step was %d", step)
		}
		prevTotal = total
	}
}
