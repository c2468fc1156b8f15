package game

import (
	"errors"
	"math/rand"
	"slices"
	"sort"

	"github.com/samber/lo"
)

// DieSizes lists the playable die types.
var DieSizes = []int{4, 6, 8, 10, 12, 20, 100}

var (
	ErrInvalidDie   = errors.New("die type must be one of d4, d6, d8, d10, d12, d20, d100")
	ErrInvalidCount = errors.New("dice count must be positive")
)

// Roll rolls count dice with the given number of sides using a uniform
// random source. Values are kept in roll order; Sum is their total.
func Roll(sides, count int) (DiceRoll, error) {
	if !slices.Contains(DieSizes, sides) {
		return DiceRoll{}, ErrInvalidDie
	}
	if count < 1 {
		return DiceRoll{}, ErrInvalidCount
	}

	values := make([]int, count)
	sum := 0
	for i := range values {
		values[i] = rand.Intn(sides) + 1
		sum += values[i]
	}
	return DiceRoll{Sides: sides, Count: count, Values: values, Sum: sum}, nil
}

// RollAbilityScores rolls six ability scores with 4d6-drop-lowest.
func RollAbilityScores() []int {
	return lo.Times(6, func(_ int) int {
		roll, err := Roll(6, 4)
		if err != nil {
			// 4d6 is always a valid spec.
			panic(err)
		}
		kept := append([]int(nil), roll.Values...)
		sort.Ints(kept)
		return lo.Sum(kept[1:])
	})
}

// StandardArrayScores returns the fixed standard array.
func StandardArrayScores() []int {
	return []int{15, 14, 13, 12, 10, 8}
}

// PointBuyScores returns the simplified 27-point point-buy spread.
func PointBuyScores() []int {
	return []int{13, 13, 13, 12, 12, 8}
}
