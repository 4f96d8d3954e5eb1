package diag

import (
	"sort"
)

// Bag collects diagnostics of one invocation. max == 0 means no limit.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Full reports whether the limit is reached.
func (b *Bag) Full() bool {
	return b.max > 0 && len(b.items) >= b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// CountErrors returns the number of error and fatal diagnostics.
func (b *Bag) CountErrors() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if b.max > 0 && newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
}

// Sort упорядочивает диагностики по file, start. Сортировка стабильная:
// при равном старте сохраняется порядок эмиссии.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i].Primary, b.items[j].Primary
		if di.File != dj.File {
			return di.File < dj.File
		}
		return di.Start < dj.Start
	})
}

// Dedup удаляет повторы по Code+Primary+Message, оставляя первое вхождение.
func (b *Bag) Dedup() {
	seen := make(map[identity]struct{}, len(b.items))
	newitems := b.items[:0]
	for _, d := range b.items {
		key := identityOf(d.Code, d.Primary, d.Message)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		newitems = append(newitems, d)
	}
	b.items = newitems
}

// Finalize sorts and deduplicates; returns a copy safe to hand out.
func (b *Bag) Finalize() []Diagnostic {
	b.Sort()
	b.Dedup()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}
