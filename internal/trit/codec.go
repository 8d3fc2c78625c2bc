// Package trit implements the ternary numeral engine: conversion between
// big integers and base-3 digit strings, the balanced/unbalanced alphabet
// mapping, and the arithmetic, scientific and digit-wise logic operators
// defined over that representation.
//
// Every function is pure and safe for concurrent use. Nothing here logs or
// performs I/O; callers decide how to surface errors.
package trit

import (
	"math/big"
	"strings"
)

var three = big.NewInt(3)

// Decode parses an unbalanced ternary string (optional leading '-') into an
// integer. Leading zeros are accepted; "-0" decodes to zero.
func Decode(s string) (*big.Int, error) {
	return decode("decode", s)
}

func decode(op, s string) (*big.Int, error) {
	neg := false
	digits := s
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	if digits == "" {
		return nil, newError(ErrInvalidDigit, op, s)
	}

	n := new(big.Int)
	d := new(big.Int)
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '2' {
			return nil, newError(ErrInvalidDigit, op, s)
		}
		n.Mul(n, three)
		n.Add(n, d.SetInt64(int64(c-'0')))
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// Encode renders n as an unbalanced ternary string with no leading zeros.
// Zero is "0"; negatives carry a single leading '-'.
func Encode(n *big.Int) string {
	switch n.Sign() {
	case 0:
		return "0"
	case -1:
		return "-" + Encode(new(big.Int).Neg(n))
	}

	q := new(big.Int).Set(n)
	r := new(big.Int)
	var digits []byte
	for q.Sign() > 0 {
		q.QuoRem(q, three, r)
		digits = append(digits, byte('0'+r.Int64()))
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// EncodeInt64 is Encode for machine integers.
func EncodeInt64(n int64) string {
	return Encode(big.NewInt(n))
}

// FromDecimal converts a base-10 integer string to ternary.
func FromDecimal(s string) (string, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return "", newError(ErrInvalidDigit, "bin2tri", s)
	}
	return Encode(n), nil
}

// ToDecimal converts a ternary string to base-10.
func ToDecimal(s string) (string, error) {
	n, err := decode("tri2bin", s)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}
