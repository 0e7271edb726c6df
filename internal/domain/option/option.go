// Package option defines the closed sets of string values CodeMirror accepts
// for its enumerated configuration options, and the features some of those
// values need loaded.
package option

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidValue is returned when a string is not a member of an option set.
var ErrInvalidValue = errors.New("invalid option value")

// InputStyle selects how CodeMirror captures input.
type InputStyle string

const (
	InputStyleTextarea        InputStyle = "textarea"
	InputStyleContentEditable InputStyle = "contenteditable"
)

// ReadOnly controls editing. NoCursor also hides the cursor.
type ReadOnly string

const (
	ReadOnlyFalse    ReadOnly = "false"
	ReadOnlyTrue     ReadOnly = "true"
	ReadOnlyNoCursor ReadOnly = "nocursor"
)

// Direction is the base text direction.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// ScrollbarStyle picks the scrollbar implementation.
type ScrollbarStyle string

const (
	ScrollbarNative  ScrollbarStyle = "native"
	ScrollbarNull    ScrollbarStyle = "null"
	ScrollbarSimple  ScrollbarStyle = "simple"
	ScrollbarOverlay ScrollbarStyle = "overlay"
)

// LineSeparator is the separator used when splitting and joining lines.
// LineSeparatorAny splits on \n, \r\n and \r and joins with \n.
type LineSeparator string

const (
	LineSeparatorAny  LineSeparator = "null"
	LineSeparatorLF   LineSeparator = "\n"
	LineSeparatorCRLF LineSeparator = "\r\n"
	LineSeparatorCR   LineSeparator = "\r"
)

// Values returns every member in declaration order.
func (InputStyle) Values() []InputStyle {
	return []InputStyle{InputStyleTextarea, InputStyleContentEditable}
}

func (ReadOnly) Values() []ReadOnly {
	return []ReadOnly{ReadOnlyFalse, ReadOnlyTrue, ReadOnlyNoCursor}
}

func (Direction) Values() []Direction {
	return []Direction{DirectionLTR, DirectionRTL}
}

func (ScrollbarStyle) Values() []ScrollbarStyle {
	return []ScrollbarStyle{ScrollbarNative, ScrollbarNull, ScrollbarSimple, ScrollbarOverlay}
}

func (LineSeparator) Values() []LineSeparator {
	return []LineSeparator{LineSeparatorAny, LineSeparatorLF, LineSeparatorCRLF, LineSeparatorCR}
}

func (v InputStyle) String() string     { return string(v) }
func (v ReadOnly) String() string       { return string(v) }
func (v Direction) String() string      { return string(v) }
func (v ScrollbarStyle) String() string { return string(v) }

// String returns a printable form; the raw control characters are escaped.
func (v LineSeparator) String() string {
	switch v {
	case LineSeparatorLF:
		return `\n`
	case LineSeparatorCRLF:
		return `\r\n`
	case LineSeparatorCR:
		return `\r`
	default:
		return string(v)
	}
}

func parse[T ~string](option, s string, values []T) (T, error) {
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q (want one of %v)", ErrInvalidValue, option, s, values)
}

// ParseInputStyle parses an inputStyle value. Empty means textarea.
func ParseInputStyle(s string) (InputStyle, error) {
	if s == "" {
		return InputStyleTextarea, nil
	}
	return parse("inputStyle", s, InputStyle("").Values())
}

// ParseReadOnly parses a readOnly value. Empty means false.
func ParseReadOnly(s string) (ReadOnly, error) {
	if s == "" {
		return ReadOnlyFalse, nil
	}
	return parse("readOnly", s, ReadOnly("").Values())
}

// ParseDirection parses a direction value. Empty means ltr.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return DirectionLTR, nil
	}
	return parse("direction", s, Direction("").Values())
}

// ParseScrollbarStyle parses a scrollbarStyle value. Empty means native.
func ParseScrollbarStyle(s string) (ScrollbarStyle, error) {
	if s == "" {
		return ScrollbarNative, nil
	}
	return parse("scrollbarStyle", s, ScrollbarStyle("").Values())
}

// ParseLineSeparator accepts the raw separators as well as their escaped
// forms, since config files rarely carry literal carriage returns.
func ParseLineSeparator(s string) (LineSeparator, error) {
	switch s {
	case "", "null":
		return LineSeparatorAny, nil
	case `\n`:
		return LineSeparatorLF, nil
	case `\r\n`:
		return LineSeparatorCRLF, nil
	case `\r`:
		return LineSeparatorCR, nil
	}
	return parse("lineSeparator", s, LineSeparator("").Values())
}

// Contains reports whether name is one of values.
func Contains[T ~string](values []T, v T) bool {
	return slices.Contains(values, v)
}
