package quote

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// currencySymbols are stripped from the start of a price cell, longest first.
var currencySymbols = []string{"R$", "US$", "$", "€", "£"}

// priceParser is one strategy for turning a price cell into a number.
type priceParser struct {
	name  string
	parse func(string) (float64, bool)
}

// priceParsers are tried in order until one succeeds.
var priceParsers = []priceParser{
	{name: "locale_decimal", parse: parseLocaleDecimal},
	{name: "first_number", parse: parseFirstNumber},
}

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParsePrice normalises a price cell and runs the parser strategies over it.
// It returns false when no strategy yields a positive finite value.
func ParsePrice(cell string) (float64, bool) {
	s := stripCurrency(cell)
	if s == "" {
		return 0, false
	}
	for _, p := range priceParsers {
		if v, ok := p.parse(s); ok && validPrice(v) {
			return v, true
		}
	}
	return 0, false
}

func stripCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, sym := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			return strings.TrimSpace(strings.TrimPrefix(s, sym))
		}
	}
	return s
}

// Shapes accepted by parseLocaleDecimal. Anything else, including
// exponents and hex, is left to the next strategy.
var (
	brGrouped    = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d+)?$`) // 1.760 or 1.234,56
	usGrouped    = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+\.\d+$`)      // 1,234.56
	commaDecimal = regexp.MustCompile(`^\d+(?:,\d+)?$`)                 // 17 or 17,50
	dotDecimal   = regexp.MustCompile(`^\d+\.\d+$`)                     // 23.20
)

// parseLocaleDecimal reads a cell that is a single number in pt-BR or
// en-US notation. A dot followed by exactly three digits groups thousands.
func parseLocaleDecimal(s string) (float64, bool) {
	switch {
	case brGrouped.MatchString(s):
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case usGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case commaDecimal.MatchString(s):
		s = strings.ReplaceAll(s, ",", ".")
	case dotDecimal.MatchString(s):
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseFirstNumber takes the first float-shaped token, so a range such as
// "17.50 - 18.00" resolves to its lower bound.
func parseFirstNumber(s string) (float64, bool) {
	tok := numberPattern.FindString(s)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
