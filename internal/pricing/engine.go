package pricing

// Money represents a monetary value stored in whole currency units.
type Money = int64

// FixedAddonDiscount is the flat promotion applied to every add-on beyond
// the first one selected on a single line.
const FixedAddonDiscount Money = 5

// ModifierCategory distinguishes purchasable add-ons from free-form options.
type ModifierCategory string

const (
	// CategoryOption is a customization such as "no celery". Never discounted.
	CategoryOption ModifierCategory = "option"
	// CategoryAddon is a supplementary purchased item, eligible for the
	// volume discount.
	CategoryAddon ModifierCategory = "addon"
)

// Modifier is immutable reference data describing one customization.
type Modifier struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	NameAlt  string           `json:"nameAlt,omitempty"`
	Price    Money            `json:"price"`
	Category ModifierCategory `json:"category"`
}

// Catalog provides modifier lookup by id. Selections may reference ids that
// were deleted from the menu after the cart line was built; those resolve to
// a zero contribution rather than an error.
type Catalog map[string]Modifier

// NewCatalog builds a lookup table from a modifier list.
func NewCatalog(mods []Modifier) Catalog {
	c := make(Catalog, len(mods))
	for _, m := range mods {
		c[m.ID] = m
	}
	return c
}

// ComputeLineTotal calculates the price of a single cart line: base price
// plus all selected modifier prices, minus the add-on volume discount.
// Pure and total; safe to call on every toggle event.
func ComputeLineTotal(base Money, sel Selection, cat Catalog) Money {
	var modifiersTotal Money
	addons := 0
	for _, id := range sel {
		mod, ok := cat[id]
		if !ok {
			continue
		}
		modifiersTotal += mod.Price
		if mod.Category == CategoryAddon {
			addons++
		}
	}
	return base + modifiersTotal - volumeDiscount(addons)
}

// volumeDiscount returns the flat discount for n selected add-ons on one
// line: the first is full price, every further one is discounted once.
func volumeDiscount(n int) Money {
	if n <= 1 {
		return 0
	}
	return Money(n-1) * FixedAddonDiscount
}

// PreviewEntry describes how one selected add-on is priced in the selection
// UI: later add-ons show a struck-through original price.
type PreviewEntry struct {
	ModifierID string `json:"modifierId"`
	Price      Money  `json:"price"`
	Discounted bool   `json:"discounted"`
}

// DiscountPreview reports, in selection order, which selected add-ons
// receive the volume discount. The first-selected add-on is always exempt.
func DiscountPreview(sel Selection, cat Catalog) []PreviewEntry {
	var entries []PreviewEntry
	for _, id := range sel {
		mod, ok := cat[id]
		if !ok || mod.Category != CategoryAddon {
			continue
		}
		entry := PreviewEntry{ModifierID: id, Price: mod.Price}
		if len(entries) > 0 {
			entry.Discounted = true
		}
		entries = append(entries, entry)
	}
	return entries
}
