package parser

import (
	"strconv"
	"strings"
)

type cellKind int

const (
	kindString cellKind = iota
	kindInt
	kindFloat
	kindBool
)

// inferColumn picks the narrowest kind every non-empty cell in column i fits.
// A column with no non-empty cells is treated as string (all nil values).
func inferColumn(rows [][]string, i int) cellKind {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, row := range rows {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := parseFloat(cell); !ok {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(cell); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return kindString
		}
	}
	switch {
	case !seen:
		return kindString
	case isInt:
		return kindInt
	case isFloat:
		return kindFloat
	case isBool:
		return kindBool
	default:
		return kindString
	}
}

func convert(cell string, kind cellKind) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	switch kind {
	case kindInt:
		v, _ := strconv.ParseInt(trimmed, 10, 64)
		return v
	case kindFloat:
		v, _ := parseFloat(trimmed)
		return v
	case kindBool:
		v, _ := parseBool(trimmed)
		return v
	default:
		return cell
	}
}

// parseFloat accepts finite decimal numbers only; NaN and Inf would not
// survive JSON encoding.
func parseFloat(s string) (float64, bool) {
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.HasPrefix(lower, "0x") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}
