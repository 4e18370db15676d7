package dice

import "go.uber.org/zap"

// d20Sides is the die every attack roll, saving throw, ability check, and
// initiative roll is made on.
const d20Sides = 20

// Roll draws a single die of the given face count from src.
//
// Precondition: sides >= 2; src must be non-nil. A non-positive or
// single-faced die is a caller contract violation and panics immediately;
// it is never silently clamped.
func Roll(sides, modifier int, src Source) RollResult {
	if sides < 2 {
		panic("dice: Roll called with sides < 2")
	}
	return RollResult{
		Sides:    sides,
		Rolls:    []int{src.Intn(sides) + 1},
		Modifier: modifier,
		Mode:     ModeNormal,
	}
}

// RollN draws count independent dice of the given face count and sums them.
//
// Precondition: count >= 1 and sides >= 2; panics otherwise.
// Postcondition: len(result.Rolls) == count and result.NaturalTotal() equals
// the naive sum of the raw values (no hidden rounding).
func RollN(count, sides, modifier int, src Source) RollResult {
	if count < 1 {
		panic("dice: RollN called with count < 1")
	}
	if sides < 2 {
		panic("dice: RollN called with sides < 2")
	}
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = src.Intn(sides) + 1
	}
	return RollResult{
		Sides:    sides,
		Rolls:    rolls,
		Modifier: modifier,
		Mode:     ModeNormal,
	}
}

// RollAdvantage draws two independent d20 values and selects the higher.
// Both raw values are preserved in the result for audit and log display.
func RollAdvantage(modifier int, src Source) RollResult {
	return rollTwice(modifier, ModeAdvantage, src)
}

// RollDisadvantage draws two independent d20 values and selects the lower.
// Both raw values are preserved in the result for audit and log display.
func RollDisadvantage(modifier int, src Source) RollResult {
	return rollTwice(modifier, ModeDisadvantage, src)
}

// RollD20 draws one d20 under the given mode: one value for ModeNormal, two
// independent values under advantage or disadvantage.
func RollD20(modifier int, mode RollMode, src Source) RollResult {
	switch mode {
	case ModeAdvantage, ModeDisadvantage:
		return rollTwice(modifier, mode, src)
	default:
		return Roll(d20Sides, modifier, src)
	}
}

func rollTwice(modifier int, mode RollMode, src Source) RollResult {
	first := src.Intn(d20Sides) + 1
	second := src.Intn(d20Sides) + 1
	return RollResult{
		Sides:    d20Sides,
		Rolls:    []int{first, second},
		Modifier: modifier,
		Mode:     mode,
	}
}

// RollExpression parses expr and rolls it using src in a single call.
func RollExpression(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return RollN(e.Count, e.Sides, e.Modifier, src), nil
}

// Roller wraps a Source and logger so that every roll is logged at debug
// level with sides, raw values, mode, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// D20 rolls one d20 under the given mode and logs the result.
func (r *Roller) D20(modifier int, mode RollMode) RollResult {
	return r.log(RollD20(modifier, mode, r.src))
}

// N rolls count dice of the given face count and logs the result.
func (r *Roller) N(count, sides, modifier int) RollResult {
	return r.log(RollN(count, sides, modifier, r.src))
}

// Expression parses and rolls a dice expression string, logging the result.
func (r *Roller) Expression(expr string) (RollResult, error) {
	result, err := RollExpression(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	return r.log(result), nil
}

func (r *Roller) log(result RollResult) RollResult {
	r.logger.Debug("dice roll",
		zap.Int("sides", result.Sides),
		zap.Ints("rolls", result.Rolls),
		zap.String("mode", result.Mode.String()),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}
