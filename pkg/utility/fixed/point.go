package fixed

import (
	"strconv"

	"github.com/govalues/decimal"
)

// Point is a decimal used to render statistics at a fixed number of digits.
// Construction from a NaN or infinite float panics.
type Point struct {
	v decimal.Decimal
}

func FromFloat64(value float64) Point {
	return Point{must(decimal.NewFromFloat64(value))}
}

// TryFromFloat64 reports false for values a decimal cannot hold: NaN, the
// infinities and anything with more than 19 integer digits.
func TryFromFloat64(value float64) (Point, bool) {
	d, err := decimal.NewFromFloat64(value)
	if err != nil {
		return Point{}, false
	}
	return Point{d}, true
}

// Format renders value rounded to digits places after the decimal point.
// Values out of decimal range fall back to digits significant figures.
func Format(value float64, digits int) string {
	p, ok := TryFromFloat64(value)
	if !ok {
		return strconv.FormatFloat(value, 'g', digits, 64)
	}
	return p.Rescale(digits).String()
}

func (p Point) String() string           { return p.v.String() }
func (p Point) Float64() (float64, bool) { return p.v.Float64() }

func (p Point) Rescale(scale int) Point { return Point{p.v.Rescale(scale)} }
func (p Point) Scale() int              { return p.v.Scale() }

func (p Point) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func must(v decimal.Decimal, err error) decimal.Decimal {
	if err == nil {
		return v
	}
	panic(err)
}
