package types

import (
	"fmt"
	"strings"
)

// StructureTag names the anatomical structure a surface or volume represents.
type StructureTag uint8

const (
	STRUCTURE_INVALID StructureTag = iota
	STRUCTURE_CORTEX_LEFT
	STRUCTURE_CORTEX_RIGHT
	STRUCTURE_CEREBELLUM
	STRUCTURE_CORTEX
	STRUCTURE_OTHER
)

var StructureNameMap = map[string]StructureTag{
	"cortex_left":  STRUCTURE_CORTEX_LEFT,
	"left":         STRUCTURE_CORTEX_LEFT,
	"cortex_right": STRUCTURE_CORTEX_RIGHT,
	"right":        STRUCTURE_CORTEX_RIGHT,
	"cerebellum":   STRUCTURE_CEREBELLUM,
	"cortex":       STRUCTURE_CORTEX,
	"other":        STRUCTURE_OTHER,
}

var structurePrintNames = []string{
	"INVALID",
	"CORTEX_LEFT",
	"CORTEX_RIGHT",
	"CEREBELLUM",
	"CORTEX",
	"OTHER",
}

func (st StructureTag) String() string {
	if int(st) < len(structurePrintNames) {
		return structurePrintNames[st]
	}
	return fmt.Sprintf("StructureTag(%d)", st)
}

// NewStructureTag parses a structure name, an empty name maps to STRUCTURE_INVALID.
func NewStructureTag(label string) (st StructureTag, err error) {
	label = strings.TrimSpace(strings.ToLower(label))
	if len(label) == 0 {
		return STRUCTURE_INVALID, nil
	}
	var ok bool
	if st, ok = StructureNameMap[label]; !ok {
		err = fmt.Errorf("unknown structure name: %q", label)
	}
	return
}
