package jitspeak

import "unsafe"

// KindObject is the RValue kind of an object reference.
const KindObject = 6

// RValue is the runner's tagged value.
type RValue struct {
	Val   unsafe.Pointer
	Flags uint32
	Kind  uint32
}

// MapElement is one slot of a VarMap. Hash is zero if the slot has never
// been used.
type MapElement struct {
	Val  *RValue
	K    int32
	Hash int32
}

// VarMap is the runner's open addressing hash map of instance variables.
// It holds Mask+1 elements.
type VarMap struct {
	Size      int32
	Used      int32
	Mask      int32
	Threshold int32

	Elements *MapElement
}

// ObjectBase mirrors the start of the runner's YYObjectBase. Only the fields
// used here are named.
type ObjectBase struct {
	vtable unsafe.Pointer
	Vars   *VarMap

	_ [112]byte
}

// Path tells which lookup found an element.
type Path int

const (
	PathMiss Path = iota
	PathFast
	PathScan
)

func (p Path) String() string {
	switch p {
	case PathFast:
		return "fast"
	case PathScan:
		return "scan"
	}
	return "miss"
}

// SlotIndex returns the slot the runner would place id in for a map with
// the given mask.
func SlotIndex(id int32, mask int32) uint32 {
	return (uint32(id+1) &^ 0x80000000) & uint32(mask)
}

// elements returns the element array.
func (m *VarMap) elements() []MapElement {
	if m.Elements == nil {
		return nil
	}
	return unsafe.Slice(m.Elements, int(uint32(m.Mask))+1)
}

// Find returns the element holding id and how it was found.
//
// The predicted slot is trusted on a key match alone, the same as the
// runner's own lookup. Otherwise every slot that has ever been used is
// compared.
func (m *VarMap) Find(id int32) (*MapElement, Path) {
	elements := m.elements()
	if elements == nil {
		return nil, PathMiss
	}

	index := SlotIndex(id, m.Mask)
	if int64(index) < int64(m.Size) && elements[index].K == id {
		return &elements[index], PathFast
	}

	for i := range elements {
		if elements[i].Hash != 0 && elements[i].K == id {
			return &elements[i], PathScan
		}
	}

	return nil, PathMiss
}
