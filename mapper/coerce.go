package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/poiesic/mediakg/core"
)

var (
	errNegative    = errors.New("value must be non-negative")
	errNotFinite   = errors.New("value must be finite")
	errFractional  = errors.New("value must be integral")
	errNotNumeric  = errors.New("value is not numeric")
	errUnsupported = errors.New("unsupported value type")
)

// absent reports whether v counts as a missing field: nil, or a nil
// pointer, interface, map or slice.
func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// deref follows non-nil pointers to their value.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Interface()
}

// lexicalFor coerces v to the canonical lexical form of datatype.
func lexicalFor(v any, datatype string) (string, error) {
	v = deref(v)
	switch datatype {
	case core.XSDInteger:
		return toInteger(v)
	case core.XSDDecimal:
		return toDecimal(v)
	case core.XSDAnyURI:
		s := toString(v)
		if err := core.ValidateURIRef(s); err != nil {
			return "", err
		}
		return s, nil
	default:
		return toString(v), nil
	}
}

func toInteger(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return signedInteger(int64(n))
	case int8:
		return signedInteger(int64(n))
	case int16:
		return signedInteger(int64(n))
	case int32:
		return signedInteger(int64(n))
	case int64:
		return signedInteger(n)
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return floatInteger(float64(n))
	case float64:
		return floatInteger(n)
	case json.Number:
		return stringInteger(string(n))
	case string:
		return stringInteger(n)
	}
	return "", errUnsupported
}

func signedInteger(n int64) (string, error) {
	if n < 0 {
		return "", errNegative
	}
	return strconv.FormatInt(n, 10), nil
}

func floatInteger(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errNotFinite
	}
	if f < 0 {
		return "", errNegative
	}
	if f != math.Trunc(f) {
		return "", errFractional
	}
	return big.NewFloat(f).Text('f', 0), nil
}

func stringInteger(s string) (string, error) {
	s = strings.TrimSpace(s)
	var n big.Int
	if _, ok := n.SetString(strings.TrimPrefix(s, "+"), 10); ok {
		if n.Sign() < 0 {
			return "", errNegative
		}
		return n.String(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", errNotNumeric
	}
	return floatInteger(f)
}

func toDecimal(v any) (string, error) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64:
		i := reflect.ValueOf(n).Int()
		if i < 0 {
			return "", errNegative
		}
		return strconv.FormatInt(i, 10) + ".0", nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(n).Uint(), 10) + ".0", nil
	case float32:
		return floatDecimal(float64(n))
	case float64:
		return floatDecimal(n)
	case json.Number:
		return stringDecimal(string(n))
	case string:
		return stringDecimal(n)
	}
	return "", errUnsupported
}

func floatDecimal(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errNotFinite
	}
	if f < 0 {
		return "", errNegative
	}
	return core.FormatDecimal(f), nil
}

func stringDecimal(s string) (string, error) {
	if d, ok := core.DecimalLexical(s); ok {
		if strings.HasPrefix(d, "-") {
			return "", errNegative
		}
		return d, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return "", errNotFinite
		}
		return "", errNotNumeric
	}
	return floatDecimal(f)
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
