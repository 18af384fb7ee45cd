package resample

import (
	"fmt"
	"strings"

	"github.com/notargets/goresample/utils"
)

type Method uint8

const (
	BARYCENTRIC Method = iota
	ADAP_BARY_AREA
)

var MethodNameMap = map[string]Method{
	"barycentric":    BARYCENTRIC,
	"adap_bary_area": ADAP_BARY_AREA,
}

func (m Method) String() string {
	switch m {
	case BARYCENTRIC:
		return "BARYCENTRIC"
	case ADAP_BARY_AREA:
		return "ADAP_BARY_AREA"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// NeedsAreas is true for methods that correct weights by vertex area
func (m Method) NeedsAreas() bool { return m == ADAP_BARY_AREA }

func NewMethod(label string) (m Method, err error) {
	var ok bool
	if m, ok = MethodNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: unknown surface resampling method %q", utils.ErrInvalidInput, label)
	}
	return
}
