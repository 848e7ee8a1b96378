package index

import "github.com/arloliu/mgindex/section"

// geometry maps (sequence, class, AU, descriptor) positions onto the flat
// entry and offset arenas.
//
// Entries of sequence s occupy [seqEntryBase[s], seqEntryBase[s+1]), grouped
// by indexed class, each group holding NumBlocks(s) entries. Descriptor
// offsets follow the same order with NumDescriptors(class) slots per entry.
type geometry struct {
	classOrd     []int // class position -> indexed ordinal, -1 when the class has no aligned entries
	classes      []int // indexed ordinal -> class position
	descPrefix   []int // indexed ordinal -> descriptor slots of earlier indexed classes per AU
	descPerAU    int
	blocks       []int
	seqEntryBase []int
	seqDescBase  []int
	numEntries   int
	numOffsets   int
	numUnaligned int
	numUnmapped  int // descriptors of class U
	unmappedPos  int // class position of U, -1 without class U
}

func newGeometry(l *section.Layout) geometry {
	g := geometry{
		classOrd:     make([]int, len(l.Classes)),
		blocks:       make([]int, len(l.Sequences)),
		seqEntryBase: make([]int, len(l.Sequences)+1),
		seqDescBase:  make([]int, len(l.Sequences)+1),
		numUnaligned: int(l.NumUnalignedAUs),
		numUnmapped:  l.NumUnmappedDescriptors(),
		unmappedPos:  -1,
	}
	if ci, ok := l.UnmappedClassIndex(); ok {
		g.unmappedPos = ci
	}

	for ci := range l.Classes {
		if !l.IndexesClass(ci) {
			g.classOrd[ci] = -1
			continue
		}
		g.classOrd[ci] = len(g.classes)
		g.classes = append(g.classes, ci)
		g.descPrefix = append(g.descPrefix, g.descPerAU)
		g.descPerAU += l.Classes[ci].NumDescriptors
	}

	for si := range l.Sequences {
		g.blocks[si] = l.NumBlocks(si)
		g.seqEntryBase[si+1] = g.seqEntryBase[si] + g.blocks[si]*len(g.classes)
		g.seqDescBase[si+1] = g.seqDescBase[si] + g.blocks[si]*g.descPerAU
	}
	g.numEntries = g.seqEntryBase[len(l.Sequences)]
	g.numOffsets = g.seqDescBase[len(l.Sequences)]

	return g
}

// entryIndex returns the arena slot of (seq, class, au).
func (g *geometry) entryIndex(seq, class, au int) (int, bool) {
	if seq < 0 || seq >= len(g.blocks) || class < 0 || class >= len(g.classOrd) {
		return 0, false
	}
	ord := g.classOrd[class]
	if ord < 0 || au < 0 || au >= g.blocks[seq] {
		return 0, false
	}

	return g.seqEntryBase[seq] + ord*g.blocks[seq] + au, true
}

// offsetIndex returns the arena slot of descriptor desc of (seq, class, au).
func (g *geometry) offsetIndex(seq, class, au, desc, numDesc int) (int, bool) {
	if _, ok := g.entryIndex(seq, class, au); !ok {
		return 0, false
	}
	if desc < 0 || desc >= numDesc {
		return 0, false
	}
	ord := g.classOrd[class]

	return g.seqDescBase[seq] + g.blocks[seq]*g.descPrefix[ord] + au*numDesc + desc, true
}

// unalignedOffsetIndex returns the arena slot of descriptor desc of unaligned AU uau.
func (g *geometry) unalignedOffsetIndex(uau, desc int) (int, bool) {
	if uau < 0 || uau >= g.numUnaligned || desc < 0 || desc >= g.numUnmapped {
		return 0, false
	}

	return uau*g.numUnmapped + desc, true
}
