package types

import (
	"fmt"
	"sort"
)

const (
	UnassignedLabelName = "???"
)

type Label struct {
	Key  int32
	Name string
}

// LabelTable maps integer label keys to names. A table always holds an
// unassigned label, key 0 unless replaced.
type LabelTable struct {
	names      map[int32]string
	unassigned int32
}

func NewLabelTable() (lt *LabelTable) {
	lt = &LabelTable{
		names: map[int32]string{0: UnassignedLabelName},
	}
	return
}

// Insert adds or renames a label.
func (lt *LabelTable) Insert(key int32, name string) {
	lt.names[key] = name
}

// SetUnassigned makes key the unassigned label, adding it if missing.
func (lt *LabelTable) SetUnassigned(key int32) {
	if _, ok := lt.names[key]; !ok {
		lt.names[key] = UnassignedLabelName
	}
	lt.unassigned = key
}

func (lt *LabelTable) UnassignedKey() int32 { return lt.unassigned }

func (lt *LabelTable) Len() int { return len(lt.names) }

func (lt *LabelTable) Name(key int32) (name string, ok bool) {
	name, ok = lt.names[key]
	return
}

func (lt *LabelTable) Contains(key int32) bool {
	_, ok := lt.names[key]
	return ok
}

// KeyForName returns the lowest key carrying name.
func (lt *LabelTable) KeyForName(name string) (key int32, ok bool) {
	for _, k := range lt.Keys() {
		if lt.names[k] == name {
			return k, true
		}
	}
	return
}

// Keys returns the label keys in ascending order.
func (lt *LabelTable) Keys() (keys []int32) {
	keys = make([]int32, 0, len(lt.names))
	for k := range lt.names {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return
}

func (lt *LabelTable) Labels() (labels []Label) {
	for _, k := range lt.Keys() {
		labels = append(labels, Label{k, lt.names[k]})
	}
	return
}

func (lt *LabelTable) Copy() (R *LabelTable) {
	R = &LabelTable{
		names:      make(map[int32]string, len(lt.names)),
		unassigned: lt.unassigned,
	}
	for k, v := range lt.names {
		R.names[k] = v
	}
	return
}

func (lt *LabelTable) String() string {
	return fmt.Sprintf("LabelTable%v", lt.Labels())
}
