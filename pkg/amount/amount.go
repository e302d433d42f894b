package amount

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Amount is an exact, non-negative rational quantity.
// The zero value is zero. Amounts are immutable: every operation returns a new value.
type Amount struct {
	r *big.Rat
}

// Zero is the additive identity.
var Zero = Amount{}

// FromInt returns n as an Amount. Negative values are rejected.
func FromInt(n int64) (Amount, error) {
	if n < 0 {
		return Zero, fmt.Errorf("amount %d is negative", n)
	}
	return Amount{r: new(big.Rat).SetInt64(n)}, nil
}

// FromFloat converts f using its shortest decimal representation, so 0.1 becomes
// exactly 1/10 instead of the nearest binary fraction.
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, fmt.Errorf("amount %v is not finite", f)
	}
	return Parse(strconv.FormatFloat(f, 'g', -1, 64))
}

// MustFloat is FromFloat for constants and tests. It panics on invalid input.
func MustFloat(f float64) Amount {
	a, err := FromFloat(f)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse reads a decimal ("0.05"), integer ("3"), exponent ("5e-2") or fraction ("1/3").
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("empty amount")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Zero, fmt.Errorf("invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return Zero, fmt.Errorf("amount %q is negative", s)
	}
	return Amount{r: r}, nil
}

func (a Amount) rat() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{r: new(big.Rat).Add(a.rat(), b.rat())}
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) Amount {
	return Amount{r: new(big.Rat).Mul(a.rat(), b.rat())}
}

// MulInt returns a * n for n >= 0.
func (a Amount) MulInt(n int64) Amount {
	if n < 0 {
		n = 0
	}
	return Amount{r: new(big.Rat).Mul(a.rat(), new(big.Rat).SetInt64(n))}
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.r == nil || a.r.Sign() == 0
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.rat().Cmp(b.rat())
}

// Ceil rounds a toward positive infinity.
// It fails if the result does not fit in an int64.
func (a Amount) Ceil() (int64, error) {
	r := a.rat()
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return 0, fmt.Errorf("amount %s overflows int64", r.RatString())
	}
	return q.Int64(), nil
}

// Float64 returns the nearest float64 value; for display only.
func (a Amount) Float64() float64 {
	f, _ := a.rat().Float64()
	return f
}

// String returns the exact value, as an integer or a fraction ("3", "3/5").
func (a Amount) String() string {
	return a.rat().RatString()
}

// Decimal returns a with the given number of decimal places, for display.
func (a Amount) Decimal(prec int) string {
	return a.rat().FloatString(prec)
}

// UnmarshalYAML accepts any scalar Parse understands.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number, got %s", node.Line, kindName(node.Kind))
	}
	v, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = v
	return nil
}

// MarshalYAML writes the exact value.
func (a Amount) MarshalYAML() (interface{}, error) {
	if a.rat().IsInt() {
		return a.rat().Num().String(), nil
	}
	return a.String(), nil
}

// MarshalJSON writes the value as a JSON number when it has a finite decimal
// expansion, and as a fraction string otherwise.
func (a Amount) MarshalJSON() ([]byte, error) {
	r := a.rat()
	if r.IsInt() {
		return []byte(r.Num().String()), nil
	}
	if prec, exact := r.FloatPrec(); exact {
		return []byte(r.FloatString(prec)), nil
	}
	return []byte(strconv.Quote(r.RatString())), nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
