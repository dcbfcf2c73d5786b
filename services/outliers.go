package services

import "sort"

// minSampleForIQR is the sample size below which quartiles are not
// meaningful and the input is returned untouched.
const minSampleForIQR = 4

// RemoveOutliers drops prices outside the interquartile-range fence
// [q1 - 1.5*iqr, q3 + 1.5*iqr]. Order of the surviving values is
// preserved. If the fence would discard more than 60% of the sample the
// filtering is abandoned and the original input is returned, so sparse or
// bimodal samples are never trimmed down to nothing.
func RemoveOutliers(prices []float64) []float64 {
	if len(prices) < minSampleForIQR {
		return prices
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	n := len(sorted)
	q1 := sorted[n/4]
	q3 := sorted[n*3/4]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	filtered := make([]float64, 0, n)
	for _, p := range prices {
		if p >= lower && p <= upper {
			filtered = append(filtered, p)
		}
	}

	minKeep := 2
	if k := n * 4 / 10; k > minKeep {
		minKeep = k
	}
	if len(filtered) < minKeep {
		return prices
	}

	return filtered
}

// CapAtMedianRatio drops prices greater than ratio times the sample
// median. It exists to catch bundle listings that carried no bundle
// keyword: a lone "3-pack" priced at triple the going rate slips past the
// relevance filter but not past this. Runs after RemoveOutliers.
func CapAtMedianRatio(prices []float64, ratio float64) []float64 {
	if len(prices) == 0 || ratio <= 0 {
		return prices
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	limit := median * ratio
	filtered := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p <= limit {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
