package inference

import "math"

// CombineCF は同じ仮説を支持する独立した2つの証拠の CF を MYCIN の式で合成します。
// 可換であり、CombineCF(x, 0) == x です。3つ以上の証拠は出現順に2つずつ畳み込みます。
func CombineCF(cf1, cf2 float64) float64 {
	var combined float64
	switch {
	case cf1 >= 0 && cf2 >= 0:
		// cf1 + cf2(1-cf1) を対称な形で計算し、引数の順序でビットが変わらないようにする
		combined = (cf1 + cf2) - cf1*cf2
	case cf1 <= 0 && cf2 <= 0:
		combined = (cf1 + cf2) + cf1*cf2
	default:
		denom := 1 - math.Min(math.Abs(cf1), math.Abs(cf2))
		if denom == 0 {
			// +1 と -1 の完全な矛盾。どちらにも傾かない。
			return 0
		}
		combined = (cf1 + cf2) / denom
	}
	return clampCF(combined)
}

// clampCF は浮動小数点誤差で [-1, 1] をはみ出した値を丸め込みます。
func clampCF(cf float64) float64 {
	if cf > 1 {
		return 1
	}
	if cf < -1 {
		return -1
	}
	return cf
}

// round は小数第 places 位で四捨五入します。
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
