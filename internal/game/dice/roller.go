package dice

// RollDie returns a uniformly distributed integer in [1, sides].
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, sides] when sides >= 1, otherwise 0.
func RollDie(src Source, sides int) int {
	if sides < 1 {
		return 0
	}
	return src.Intn(sides) + 1
}

// RollDieMTimes sums count independent RollDie(sides) draws.
//
// Postcondition: Returns a value in [count, count*sides] when sides >= 1;
// returns 0 when count <= 0, sides <= 0, or the group exceeds MaxDice or MaxSides.
func RollDieMTimes(src Source, count, sides int) int {
	if !rollable(count, sides) {
		return 0
	}
	sum := 0
	for range count {
		sum += RollDie(src, sides)
	}
	return sum
}

func rollable(count, sides int) bool {
	return count > 0 && count <= MaxDice && sides >= 1 && sides <= MaxSides
}

func rollDice(src Source, count, sides int) []int {
	if !rollable(count, sides) {
		return nil
	}
	rolled := make([]int, count)
	for i := range rolled {
		rolled[i] = RollDie(src, sides)
	}
	return rolled
}

// EvalTerm returns the value of a single term, drawing fresh dice for a DiceRoll.
//
// Postcondition: Constant terms return their Value with no draws.
func EvalTerm(t Term, src Source) int {
	switch t := t.(type) {
	case Constant:
		return t.Value
	case DiceRoll:
		return RollDieMTimes(src, t.Count, t.Sides)
	}
	return 0
}

// Roll evaluates every term of expr with fresh random draws.
//
// Precondition: src must be non-nil.
// Postcondition: result.Total() == sum of the evaluated value of every term.
func Roll(expr Expression, src Source) RollResult {
	result := RollResult{Expression: expr.Raw}
	for _, t := range expr.Terms {
		switch t := t.(type) {
		case Constant:
			result.Modifier += t.Value
		case DiceRoll:
			result.Dice = append(result.Dice, rollDice(src, t.Count, t.Sides)...)
		}
	}
	return result
}

// RollExpr parses expr and rolls it using src in a single call.
func RollExpr(expr string, src Source) RollResult {
	return Roll(Parse(expr), src)
}

// RollExpression parses and rolls expr, returning only the total.
// It is never memoized: every call draws fresh dice.
func RollExpression(src Source, expr string) int {
	return RollExpr(expr, src).Total()
}
