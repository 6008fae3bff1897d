package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrNonNumericStem is returned when a clip's stem is not a non-negative
	// base-10 integer.
	ErrNonNumericStem = errors.New("clip name is not numeric")
	// ErrWrongExtension is returned when a name does not carry the clip extension.
	ErrWrongExtension = errors.New("clip has the wrong extension")
)

// HasExtension reports whether name ends in ext, ignoring case.
// ext must include the leading dot.
func HasExtension(name, ext string) bool {
	return ext != "" && strings.EqualFold(filepath.Ext(name), ext)
}

// ParseClipIndex returns the integer index encoded in a clip's file name,
// e.g. "12.mov" -> 12 and "007.MOV" -> 7. The stem must consist only of
// ASCII digits: no sign, no spaces, no fractional part.
func ParseClipIndex(name, ext string) (int, error) {
	base := filepath.Base(name)
	if !HasExtension(base, ext) {
		return 0, fmt.Errorf("%w: %q (want %s)", ErrWrongExtension, base, ext)
	}
	stem := base[:len(base)-len(filepath.Ext(base))]
	if stem == "" {
		return 0, fmt.Errorf("%w: %q", ErrNonNumericStem, base)
	}
	for i := 0; i < len(stem); i++ {
		if stem[i] < '0' || stem[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrNonNumericStem, base)
		}
	}
	n, err := strconv.ParseUint(stem, 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is out of range", ErrNonNumericStem, base)
	}
	return int(n), nil
}
