// Package counter converts the human readable counters shown on channel
// pages ("3.4M", "67Un", "872") into integers.
package counter

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/oops"
)

// Suffix maps a magnitude abbreviation to its power of ten.
type Suffix struct {
	Symbol   string
	Exponent int64
}

// Suffixes is scanned in order and the first symbol contained in the input
// wins, so a symbol must come before every shorter symbol it contains.
var Suffixes = []Suffix{
	{"CE", 303},  // centillion
	{"GO", 100},  // googol
	{"VG", 63},   // vigintillion
	{"NOD", 60},  // novemdecillion
	{"OCD", 57},  // octodecillion
	{"SPD", 54},  // septendecillion
	{"SXD", 51},  // sexdecillion
	{"QIT", 48},  // quindecillion
	{"QAT", 45},  // quattuordecillion
	{"TE", 42},   // tredecillion
	{"DU", 39},   // duodecillion
	{"UN", 36},   // undecillion
	{"DC", 33},   // decillion
	{"NO", 30},   // nonillion
	{"OC", 27},   // octillion
	{"SP", 24},   // septillion
	{"SX", 21},   // sextillion
	{"QI", 18},   // quintillion
	{"QA", 15},   // quadrillion
	{"T", 12},
	{"B", 9},
	{"M", 6},
	{"K", 3},
}

var decimalPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// Parse returns the integer magnitude of a counter string. Fractional
// results are truncated toward zero.
func Parse(value string) (*big.Int, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))

	for _, suffix := range Suffixes {
		if !strings.Contains(upper, suffix.Symbol) {
			continue
		}

		number := strings.TrimSpace(strings.Replace(upper, suffix.Symbol, "", 1))
		if !decimalPattern.MatchString(number) {
			return nil, oops.In("counter").
				With("value", value, "suffix", suffix.Symbol).
				Wrapf(errors.ErrParse, "%q is not a decimal number", number)
		}

		rat, ok := new(big.Rat).SetString(number)
		if !ok {
			return nil, oops.In("counter").With("value", value).Wrapf(errors.ErrParse, "%q is not a decimal number", number)
		}

		multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(suffix.Exponent), nil)
		rat.Mul(rat, new(big.Rat).SetInt(multiplier))

		return new(big.Int).Quo(rat.Num(), rat.Denom()), nil
	}

	result, ok := new(big.Int).SetString(upper, 10)
	if !ok {
		return nil, oops.In("counter").With("value", value).Wrapf(errors.ErrParse, "%q is not an integer", value)
	}

	return result, nil
}

// ParseInt64 is Parse for counters that must fit into an int64.
func ParseInt64(value string) (int64, error) {
	result, err := Parse(value)
	if err != nil {
		return 0, err
	}

	if !result.IsInt64() {
		return 0, oops.In("counter").With("value", value).Wrapf(errors.ErrParse, "%q overflows int64", value)
	}

	return result.Int64(), nil
}
