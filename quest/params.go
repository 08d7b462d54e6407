package quest

import "strconv"

// Params is an untyped key→value parameter map attached to condition and
// action leaves. Accessors coerce with a safe fallback instead of panicking
// on wrong types.
type Params map[string]interface{}

// Str returns the string value for key.
func (p Params) Str(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StrOr returns the string value for key, or def when missing.
func (p Params) StrOr(key, def string) string {
	if s, ok := p.Str(key); ok {
		return s
	}
	return def
}

// Int returns the int value for key, coercing numeric types and numeric
// strings (YAML and JSON decode numbers inconsistently).
func (p Params) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// IntOr returns the int value for key, or def when missing.
func (p Params) IntOr(key string, def int) int {
	if n, ok := p.Int(key); ok {
		return n
	}
	return def
}

// Float returns the float64 value for key.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// FloatOr returns the float64 value for key, or def when missing.
func (p Params) FloatOr(key string, def float64) float64 {
	if f, ok := p.Float(key); ok {
		return f
	}
	return def
}

// Bool returns the bool value for key.
func (p Params) Bool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// BoolOr returns the bool value for key, or def when missing.
func (p Params) BoolOr(key string, def bool) bool {
	if b, ok := p.Bool(key); ok {
		return b
	}
	return def
}

// Has reports whether key is present at all.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}
