package dice

import (
	"regexp"
	"strconv"
	"strings"
)

// Term is one "+"-separated portion of an expression: either a Constant or a DiceRoll.
type Term interface {
	isTerm()
}

// Constant is a literal integer term.
type Constant struct {
	Value int
}

// DiceRoll is an "MdN" term: roll Sides-sided die Count times and sum.
type DiceRoll struct {
	Count int
	Sides int
}

func (Constant) isTerm() {}
func (DiceRoll) isTerm() {}

// Expression represents a parsed dice expression ready to be rolled.
type Expression struct {
	Raw   string // original input string
	Terms []Term // one term per "+"-separated portion, in input order
}

// String returns the original expression text.
func (e Expression) String() string {
	return e.Raw
}

var rollRE = regexp.MustCompile(`(\d+)d(\d+)`)

// Bounds on a single dice group. Larger groups parse as Constant{0}, which
// keeps the audit trail bounded and every total within int range.
const (
	MaxDice  = 1000
	MaxSides = 1_000_000_000
)

// Parse splits expr on "+" and parses every trimmed portion with ParseTerm.
//
// Parse is total: malformed portions become Constant{0} and no error is returned.
// Postcondition: len(result.Terms) == strings.Count(expr, "+") + 1.
func Parse(expr string) Expression {
	portions := Portions(expr)
	terms := make([]Term, 0, len(portions))
	for _, p := range portions {
		terms = append(terms, ParseTerm(p))
	}
	return Expression{Raw: expr, Terms: terms}
}

// Portions splits expr on "+" and trims whitespace from every portion.
//
// Postcondition: len(result) >= 1; empty portions are kept.
func Portions(expr string) []string {
	parts := strings.Split(expr, "+")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ParseTerm parses a single trimmed portion.
//
// A portion containing "d" is matched against the first "<count>d<sides>"
// occurrence anywhere in it; no match, an Atoi overflow, or a group beyond
// MaxDice or MaxSides yields Constant{0}. Any other portion is
// coerced to an integer; a failed or zero coercion yields Constant{0}.
func ParseTerm(portion string) Term {
	if strings.Contains(portion, "d") {
		m := rollRE.FindStringSubmatch(portion)
		if m == nil {
			return Constant{}
		}
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return Constant{}
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil {
			return Constant{}
		}
		if count > MaxDice || sides > MaxSides {
			return Constant{}
		}
		return DiceRoll{Count: count, Sides: sides}
	}
	v, err := strconv.Atoi(portion)
	if err != nil {
		return Constant{}
	}
	return Constant{Value: v}
}
