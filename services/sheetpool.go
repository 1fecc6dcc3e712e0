package services

import (
	"errors"
	"fmt"
)

// ErrPoolExhausted is returned when a project needs more satellite sheets
// of a kind than the template workbook carries. This is a hard error: the
// workbook would silently truncate otherwise.
var ErrPoolExhausted = errors.New("template sheet pool exhausted")

// poolSizes fixes how many pre-built sheets of each kind the template
// workbook holds, sized for the largest supported project.
var poolSizes = map[EquipmentKind]int{
	KindCanopy:          10,
	KindFireSuppression: 10,
	KindRecoAir:         6,
	KindSDU:             10,
	KindUVC:             6,
}

// MaxItemsPerSheet is how many unit blocks one satellite sheet holds.
const MaxItemsPerSheet = 6

// SheetPool is an explicit freelist of template sheet slots indexed by
// equipment kind. Slots are popped in a fixed order so the same project
// always yields the same structural placement.
type SheetPool struct {
	free map[EquipmentKind][]string
}

// NewSheetPool builds the freelist for a fresh template workbook. Slot
// names match the hidden pool sheets created by BuildTemplateWorkbook.
func NewSheetPool() *SheetPool {
	p := &SheetPool{free: map[EquipmentKind][]string{}}
	for kind, size := range poolSizes {
		names := make([]string, 0, size)
		for i := 1; i <= size; i++ {
			names = append(names, PoolSheetName(kind, i))
		}
		p.free[kind] = names
	}
	return p
}

// PoolSheetName is the name of the i-th (1-based) pool sheet of a kind,
// e.g. "CANOPY 3".
func PoolSheetName(kind EquipmentKind, i int) string {
	return fmt.Sprintf("%s %d", kind, i)
}

// Pop takes the next free slot of a kind.
func (p *SheetPool) Pop(kind EquipmentKind) (string, error) {
	free := p.free[kind]
	if len(free) == 0 {
		return "", fmt.Errorf("%w: kind %s", ErrPoolExhausted, kind)
	}
	name := free[0]
	p.free[kind] = free[1:]
	return name, nil
}

// Unused returns the slots never popped, in deterministic order. The
// synthesizer deletes these from the finished workbook.
func (p *SheetPool) Unused() []string {
	var out []string
	for _, kind := range []EquipmentKind{KindCanopy, KindFireSuppression, KindRecoAir, KindSDU, KindUVC} {
		out = append(out, p.free[kind]...)
	}
	return out
}
