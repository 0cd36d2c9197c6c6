package aggregate

import (
	"bytes"
	"fmt"
	"math"
)

// PrintIndec renders a value held in tenths, e.g. -123 as "-12.3".
func PrintIndec(i int) string {
	var sign string
	if i < 0 {
		sign = "-"
		i = -i
	}
	return fmt.Sprint(sign, i/10, ".", i%10)
}

// ToIndec rounds v to tenths, halves toward positive infinity.
func ToIndec(v float64) int {
	return int(math.Floor(v*10 + 0.5))
}

// IsIndec reports whether bs is a plain decimal with exactly one fraction
// digit, which ParseIndec can read without strconv.
func IsIndec(bs []byte) bool {
	dotIndex := bytes.IndexByte(bs, '.')
	if dotIndex < 0 || dotIndex != len(bs)-2 {
		return false
	}
	start := 0
	if bs[0] == '-' {
		start = 1
	}
	if start == dotIndex {
		return false
	}
	for i, c := range bs[start:] {
		if start+i == dotIndex {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseIndec reads a value with one fraction digit as tenths. bs must
// satisfy IsIndec.
func ParseIndec(bs []byte) int {
	var result, startValIndex int
	dotIndex := bytes.IndexByte(bs, '.')
	neg := bs[0] == '-'
	if neg {
		startValIndex++
	}

	for i := startValIndex; i < dotIndex; i++ {
		result = result*10 + int(bs[i]-'0')
	}

	if dotIndex+1 < len(bs) {
		result = result*10 + int(bs[dotIndex+1]-'0')
	}

	if neg {
		result = -result
	}

	return result
}
