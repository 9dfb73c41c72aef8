package usage

import "strconv"

// QuotaPerUnit converts raw quota to display units; the gateway bills
// 500,000 quota per dollar.
const QuotaPerUnit = 500000

// QuotaWithUnit renders raw quota in display units with the given number of
// fractional digits.
func QuotaWithUnit(quota float64, digits int) string {
	return strconv.FormatFloat(quota/QuotaPerUnit, 'f', digits, 64)
}

// FormatQuota renders raw quota as a currency string for summary rows.
func FormatQuota(quota float64) string {
	return "$" + QuotaWithUnit(quota, 2)
}

// FormatNumber renders a count without a fractional part.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', 0, 64)
}
