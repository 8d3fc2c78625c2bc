package engine

import "tritcalc/internal/trit"

func unary(f func(string) (string, error)) Func {
	return func(_ Limits, in []string) ([]string, error) {
		v, err := f(in[0])
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	}
}

func binary(f func(a, b string) (string, error)) Func {
	return func(_ Limits, in []string) ([]string, error) {
		v, err := f(in[0], in[1])
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	}
}

func builtins() []*Operation {
	return []*Operation{
		// arithmetic
		{Name: "add", Usage: "add <a> <b>", Description: "sum", Category: CategoryArithmetic, Arity: 2, Func: binary(trit.Add)},
		{Name: "sub", Usage: "sub <a> <b>", Description: "difference", Category: CategoryArithmetic, Arity: 2, Func: binary(trit.Sub)},
		{Name: "mul", Usage: "mul <a> <b>", Description: "product", Category: CategoryArithmetic, Arity: 2, Func: binary(trit.Mul)},
		{Name: "pow", Usage: "pow <a> <b>", Description: "a raised to b (b >= 0)", Category: CategoryArithmetic, Arity: 2, Func: binary(trit.Pow)},
		{
			Name: "div", Usage: "div <a> <b>", Description: "floored quotient and remainder",
			Category: CategoryArithmetic, Arity: 2,
			Func: func(_ Limits, in []string) ([]string, error) {
				q, r, err := trit.DivMod(in[0], in[1])
				if err != nil {
					return nil, err
				}
				return []string{q, r}, nil
			},
		},
		{
			Name: "fact", Usage: "fact <a>", Description: "factorial, guarded by the configured limit",
			Category: CategoryArithmetic, Arity: 1,
			Func: func(l Limits, in []string) ([]string, error) {
				v, err := trit.Factorial(in[0], l.FactorialLimit)
				if err != nil {
					return nil, err
				}
				return []string{v}, nil
			},
		},

		// scientific, results scaled by trit.Scale
		{Name: "sqrt", Usage: "sqrt <a>", Description: "square root x1000", Category: CategoryScientific, Arity: 1, Func: unary(trit.Sqrt)},
		{Name: "log3", Usage: "log3 <a>", Description: "base-3 logarithm x1000", Category: CategoryScientific, Arity: 1, Func: unary(trit.Log3)},
		{Name: "sin", Usage: "sin <a>", Description: "sine of a radians x1000", Category: CategoryScientific, Arity: 1, Func: unary(trit.Sin)},
		{Name: "cos", Usage: "cos <a>", Description: "cosine of a radians x1000", Category: CategoryScientific, Arity: 1, Func: unary(trit.Cos)},
		{Name: "tan", Usage: "tan <a>", Description: "tangent of a radians x1000", Category: CategoryScientific, Arity: 1, Func: unary(trit.Tan)},
		{
			Name: "pi", Usage: "pi", Description: "pi x1000",
			Category: CategoryScientific, Arity: 0,
			Func: func(Limits, []string) ([]string, error) { return []string{trit.Pi()}, nil },
		},

		// logic
		{Name: "and", Usage: "and <a> <b>", Description: "digit-wise minimum", Category: CategoryLogic, Arity: 2, Func: binary(trit.And)},
		{Name: "or", Usage: "or <a> <b>", Description: "digit-wise maximum", Category: CategoryLogic, Arity: 2, Func: binary(trit.Or)},
		{Name: "xor", Usage: "xor <a> <b>", Description: "digit-wise sum mod 3", Category: CategoryLogic, Arity: 2, Func: binary(trit.Xor)},
		{Name: "not", Usage: "not <a>", Description: "digit-wise 2-d", Category: CategoryLogic, Arity: 1, Func: unary(trit.Not)},

		// conversion
		{Name: "bin2tri", Usage: "bin2tri <decimal>", Description: "decimal integer to ternary", Category: CategoryConversion, Arity: 1, Func: unary(trit.FromDecimal)},
		{Name: "tri2bin", Usage: "tri2bin <a>", Description: "ternary to decimal", Category: CategoryConversion, Arity: 1, Func: unary(trit.ToDecimal)},
		{Name: "bal", Usage: "bal <a>", Description: "remap 0/1/2 to -/0/+", Category: CategoryConversion, Arity: 1, Func: unary(trit.ToBalanced)},
		{Name: "unbal", Usage: "unbal <a>", Description: "remap -/0/+ to 0/1/2", Category: CategoryConversion, Arity: 1, Func: unary(trit.ToUnbalanced)},
	}
}
