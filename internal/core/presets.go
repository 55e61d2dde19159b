package core

import (
	"slices"
	"sort"
	"strings"
)

// Presets maps an expense category to its ordered subcategories.
type Presets map[string][]string

// DefaultPresets returns the category table a new ledger starts with.
func DefaultPresets() Presets {
	return Presets{
		"Їжа":      {"Продукти", "Кафе/Ресторани", "Доставка", OtherCategory},
		"Авто":     {"Пальне", "Ремонт", "Страхування", OtherCategory},
		"Дім":      {"Комуналка", "Оренда", "Ремонт", OtherCategory},
		"Здоровʼя": {"Аптека", "Лікарі", OtherCategory},
		"Розваги":  {"Кіно", "Підписки", OtherCategory},
		"Одяг":     {"Одяг", "Взуття", OtherCategory},
		GoalCategory:  {GoalContributionSubcategory},
		OtherCategory: {OtherCategory},
	}
}

// NormalizeName trims and collapses inner whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsLocked reports whether a category may not be removed.
func IsLocked(category string) bool {
	return category == GoalCategory
}

// EnsureReserved injects the reserved categories and replaces empty
// subcategory lists. It reports whether anything changed.
func (p Presets) EnsureReserved() bool {
	changed := false
	if _, ok := p[GoalCategory]; !ok {
		p[GoalCategory] = []string{GoalContributionSubcategory}
		changed = true
	}
	if _, ok := p[OtherCategory]; !ok {
		p[OtherCategory] = []string{OtherCategory}
		changed = true
	}
	for cat, subs := range p {
		if len(subs) == 0 {
			p[cat] = []string{OtherCategory}
			changed = true
		}
	}
	return changed
}

// Categories returns category names sorted, reserved ones last.
func (p Presets) Categories() []string {
	out := make([]string, 0, len(p))
	for cat := range p {
		if cat == GoalCategory || cat == OtherCategory {
			continue
		}
		out = append(out, cat)
	}
	sort.Strings(out)
	for _, cat := range []string{GoalCategory, OtherCategory} {
		if _, ok := p[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

func (p Presets) Clone() Presets {
	out := make(Presets, len(p))
	for k, v := range p {
		out[k] = slices.Clone(v)
	}
	return out
}

func (p Presets) AddCategory(name string) error {
	name = NormalizeName(name)
	if name == "" {
		return ErrEmptyCategory
	}
	if _, ok := p[name]; ok {
		return ErrCategoryExists
	}
	p[name] = []string{OtherCategory}
	return nil
}

func (p Presets) DeleteCategory(name string) error {
	if IsLocked(name) {
		return ErrLockedCategory
	}
	if _, ok := p[name]; !ok {
		return ErrNotFound
	}
	delete(p, name)
	p.EnsureReserved()
	return nil
}

// AddSubcategory appends sub to category; an existing entry is a no-op.
func (p Presets) AddSubcategory(category, sub string) error {
	subs, ok := p[category]
	if !ok {
		return ErrNotFound
	}
	sub = NormalizeName(sub)
	if sub == "" {
		return ErrEmptyName
	}
	if slices.Contains(subs, sub) {
		return nil
	}
	p[category] = append(subs, sub)
	return nil
}

// DeleteSubcategory removes sub; the list falls back to the catch-all
// entry so that it is never empty.
func (p Presets) DeleteSubcategory(category, sub string) error {
	subs, ok := p[category]
	if !ok {
		return ErrNotFound
	}
	idx := slices.Index(subs, sub)
	if idx < 0 {
		return ErrNotFound
	}
	subs = slices.Delete(slices.Clone(subs), idx, idx+1)
	if len(subs) == 0 {
		subs = []string{OtherCategory}
	}
	p[category] = subs
	return nil
}
