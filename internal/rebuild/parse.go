package rebuild

import "strconv"

// History rows store numbers as strings ("" = unset). Unparseable values are
// treated as unset rather than rejected; the ledger may contain imported data.

func parseWeight(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
