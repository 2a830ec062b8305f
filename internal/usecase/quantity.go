package usecase

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yourusername/quote-bot/internal/domain/constants"
)

var numberWords = map[string]int{
	"un": 1, "una": 1, "uno": 1, "unos": 1, "unas": 1,
	"el": 1, "la": 1, "los": 1, "las": 1,
	"dos":       2,
	"tres":      3,
	"cuatro":    4,
	"cinco":     5,
	"seis":      6,
	"siete":     7,
	"ocho":      8,
	"nueve":     9,
	"diez":      10,
	"once":      11,
	"doce":      12,
	"trece":     13,
	"catorce":   14,
	"quince":    15,
	"veinte":    20,
	"treinta":   30,
	"cuarenta":  40,
	"cincuenta": 50,
}

// Unit words that sit between a quantity and the product ("3 pares de zapatos").
var quantityFillers = map[string]struct{}{
	"par": {}, "pares": {},
	"unidad": {}, "unidades": {},
	"pieza": {}, "piezas": {},
	"caja": {}, "cajas": {},
	"paquete": {}, "paquetes": {},
	"botella": {}, "botellas": {},
	"kilo": {}, "kilos": {},
	"gramo": {}, "gramos": {},
	"litro": {}, "litros": {},
	"de": {}, "del": {},
}

// ResolveQuantity returns the quantity written right before matchStart
// (a rune offset into normalized text), or 1.
func ResolveQuantity(text string, matchStart int) int {
	return resolveQuantity([]rune(text), nil, matchStart)
}

// resolveQuantity never looks past a rune already claimed by another mention.
func resolveQuantity(text []rune, claimed []bool, matchStart int) int {
	if matchStart > len(text) {
		matchStart = len(text)
	}
	start := matchStart - constants.QuantityLookbehind
	if start < 0 {
		start = 0
	}
	for i := matchStart - 1; i >= start && claimed != nil; i-- {
		if claimed[i] {
			start = i + 1
			break
		}
	}
	if start >= matchStart {
		return 1
	}

	tokens := strings.Fields(string(text[start:matchStart]))
	// Drop a word cut in half by the window edge.
	if start > 0 && len(tokens) > 0 && isWordRune(text[start-1]) && isWordRune(text[start]) {
		tokens = tokens[1:]
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		tok := strings.TrimFunc(tokens[i], func(r rune) bool { return !isWordRune(r) })
		if tok == "" {
			continue
		}
		if qty, ok := parseQuantityToken(tok); ok {
			return qty
		}
		if _, filler := quantityFillers[tok]; filler {
			continue
		}
		break
	}
	return 1
}

func parseQuantityToken(tok string) (int, bool) {
	if qty, ok := numberWords[tok]; ok {
		return qty, true
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(tok, "x"), "x")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > constants.MaxQuantity {
		return 0, false
	}
	return n, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
