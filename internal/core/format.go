package core

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/funvibe/hug/internal/value"
)

func isAllowedFormatSpec(spec string) bool {
	switch spec {
	case "", "?", "x", "X", "o", "b", "e", "E":
		return true
	default:
		return false
	}
}

// countPlaceholders counts the {} placeholders in fmtStr, ignoring the
// escaped "{{" and "}}". Returns an error for invalid or unterminated ones.
func countPlaceholders(fmtStr string) (int, error) {
	count := 0
	err := scan(fmtStr, func(string) {}, func(index int, spec string) error {
		count++
		return nil
	})
	return count, err
}

// Format substitutes args into fmtStr. A placeholder is {[index][:spec]}
// where spec is one of ? x X o b e E.
func Format(fmtStr string, args []value.Value) (string, error) {
	var sb strings.Builder
	next := 0
	err := scan(fmtStr, func(text string) { sb.WriteString(text) }, func(index int, spec string) error {
		if index < 0 {
			index = next
			next++
		}
		if index >= len(args) {
			return fmt.Errorf("placeholder %d has no argument (%d given)", index, len(args))
		}
		s, err := formatValue(args[index], spec)
		if err != nil {
			return err
		}
		sb.WriteString(s)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// scan walks fmtStr, handing literal text to text and each placeholder to
// field. index is -1 for implicit positions.
func scan(fmtStr string, text func(string), field func(index int, spec string) error) error {
	for i := 0; i < len(fmtStr); i++ {
		ch := fmtStr[i]
		switch {
		case ch == '{' && i+1 < len(fmtStr) && fmtStr[i+1] == '{':
			text("{")
			i++
		case ch == '}' && i+1 < len(fmtStr) && fmtStr[i+1] == '}':
			text("}")
			i++
		case ch == '}':
			return fmt.Errorf("unmatched '}' at offset %d", i)
		case ch == '{':
			end := strings.IndexByte(fmtStr[i:], '}')
			if end < 0 {
				return fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			body := fmtStr[i+1 : i+end]
			pos, spec, _ := strings.Cut(body, ":")
			index := -1
			if pos != "" {
				n, err := strconv.Atoi(pos)
				if err != nil || n < 0 {
					return fmt.Errorf("invalid placeholder position %q", pos)
				}
				index = n
			}
			if !isAllowedFormatSpec(spec) {
				return fmt.Errorf("invalid format spec {:%s}", spec)
			}
			if err := field(index, spec); err != nil {
				return err
			}
			i += end
		default:
			start := i
			for i+1 < len(fmtStr) && fmtStr[i+1] != '{' && fmtStr[i+1] != '}' {
				i++
			}
			text(fmtStr[start : i+1])
		}
	}
	return nil
}

func formatValue(v value.Value, spec string) (string, error) {
	switch spec {
	case "":
		return v.String(), nil
	case "?":
		return value.Debug(v), nil
	case "x", "X", "o", "b":
		n, ok := twosComplement(v)
		if !ok {
			return "", fmt.Errorf("{:%s} does not apply to %s", spec, v.Kind())
		}
		base := map[string]int{"x": 16, "X": 16, "o": 8, "b": 2}[spec]
		s := n.Text(base)
		if spec == "X" {
			s = strings.ToUpper(s)
		}
		return s, nil
	case "e", "E":
		s, ok := exponent(v)
		if !ok {
			return "", fmt.Errorf("{:%s} does not apply to %s", spec, v.Kind())
		}
		if spec == "E" {
			s = strings.ToUpper(s)
		}
		return s, nil
	}
	return "", fmt.Errorf("invalid format spec {:%s}", spec)
}

// twosComplement reinterprets an integer as unsigned at its own width, so
// negative numbers print the way hardware stores them.
func twosComplement(v value.Value) (*big.Int, bool) {
	var n *big.Int
	bits := 0
	switch v := v.(type) {
	case value.Int8:
		n, bits = big.NewInt(int64(v)), 8
	case value.Int16:
		n, bits = big.NewInt(int64(v)), 16
	case value.Int32:
		n, bits = big.NewInt(int64(v)), 32
	case value.Int64:
		n, bits = big.NewInt(int64(v)), 64
	case value.Int128:
		n, bits = v.Big(), 128
	case value.UInt8:
		return new(big.Int).SetUint64(uint64(v)), true
	case value.UInt16:
		return new(big.Int).SetUint64(uint64(v)), true
	case value.UInt32:
		return new(big.Int).SetUint64(uint64(v)), true
	case value.UInt64:
		return new(big.Int).SetUint64(uint64(v)), true
	case value.UInt128:
		return v.Big(), true
	default:
		return nil, false
	}
	if n.Sign() < 0 {
		n.Add(n, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	return n, true
}

// exponent renders v in scientific notation without exponent padding:
// 1234 prints as 1.234e3.
func exponent(v value.Value) (string, bool) {
	switch v := v.(type) {
	case value.Float32:
		return trimExponent(strconv.FormatFloat(float64(v), 'e', -1, 32)), true
	case value.Float64:
		return trimExponent(strconv.FormatFloat(float64(v), 'e', -1, 64)), true
	}
	if !v.Kind().IsInteger() {
		return "", false
	}
	digits := v.String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	mantissa := digits[:1]
	if rest := strings.TrimRight(digits[1:], "0"); rest != "" {
		mantissa += "." + rest
	}
	return sign + mantissa + "e" + strconv.Itoa(len(digits)-1), true
}

func trimExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := ""
	switch {
	case strings.HasPrefix(exp, "-"):
		sign, exp = "-", exp[1:]
	case strings.HasPrefix(exp, "+"):
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}
