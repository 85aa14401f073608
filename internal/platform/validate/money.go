package validate

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hospital/hms/internal/platform/apperr"
)

// Money columns are NUMERIC(12,2): ten integer digits, rounded to cents.
var (
	moneyLimit = big.NewRat(1_999_999_999_999, 200) // 9999999999.995 rounds past the column
	halfCent   = big.NewRat(1, 200)
)

// Money checks that n is a finite, non-negative amount that fits a money
// column once rounded to cents. With positive set, amounts that round to
// 0.00 are rejected too.
func Money(field string, n pgtype.Numeric, positive bool) error {
	switch {
	case !n.Valid:
		return apperr.Invalid("%s is required", field)
	case n.NaN || n.InfinityModifier != pgtype.Finite:
		return apperr.Invalid("%s must be a finite number", field)
	}

	v := n.Int
	if v == nil {
		v = new(big.Int)
	}
	if v.Sign() < 0 {
		return apperr.Invalid("%s must not be negative", field)
	}
	if v.Sign() == 0 {
		if positive {
			return apperr.Invalid("%s must be greater than 0", field)
		}
		return nil
	}

	// The magnitude is below 10^(digits+exp); settle the far-off cases
	// before building the exact value.
	mag := len(v.String()) + int(n.Exp)
	if mag > 10 {
		return apperr.Invalid("%s must be less than 10000000000", field)
	}
	if mag < -2 {
		if positive {
			return apperr.Invalid("%s must be greater than 0", field)
		}
		return nil
	}

	r := new(big.Rat).SetInt(v)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n.Exp))), nil)
	if n.Exp >= 0 {
		r.Mul(r, new(big.Rat).SetInt(scale))
	} else {
		r.Quo(r, new(big.Rat).SetInt(scale))
	}

	if r.Cmp(moneyLimit) >= 0 {
		return apperr.Invalid("%s must be less than 10000000000", field)
	}
	if positive && r.Cmp(halfCent) < 0 {
		return apperr.Invalid("%s must be greater than 0", field)
	}
	return nil
}

func abs(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
