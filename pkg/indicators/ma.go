package indicators

import "math"

// SMA over the last p points; aligned to input length with NaNs for warmup.
// A non-finite value inside the window makes that point NaN.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	for i := range x {
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if !finiteWindow(x[i-p+1 : i+1]) {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		for j := i - p + 1; j <= i; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// EMA with smoothing 2/(p+1), seeded with the first finite value (no bias
// adjustment). Non-finite inputs carry the previous average forward.
func EMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	k := 2.0 / float64(p+1)
	prev := math.NaN()
	for i, v := range x {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			out[i] = prev
			continue
		case math.IsNaN(prev):
			prev = v
		default:
			prev = v*k + prev*(1-k)
		}
		out[i] = prev
	}
	return out
}

// RSI using simple rolling means of gains and losses over p periods.
// Flat windows are NaN; windows without losses read 100. A non-finite
// close anywhere in the p+1 points a window differences makes it NaN.
func RSI(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := p; i < len(x); i++ {
		if !finiteWindow(x[i-p : i+1]) {
			continue
		}
		var gain, loss float64
		for j := i - p + 1; j <= i; j++ {
			d := x[j] - x[j-1]
			if d > 0 {
				gain += d
			} else if d < 0 {
				loss -= d
			}
		}
		gain /= float64(p)
		loss /= float64(p)
		switch {
		case gain == 0 && loss == 0:
			// undefined
		case loss == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+gain/loss)
		}
	}
	return out
}

// MACD returns the MACD line, its signal line and the histogram.
func MACD(x []float64, fast, slow, signal int) (line, sig, hist []float64) {
	ef := EMA(x, fast)
	es := EMA(x, slow)
	if ef == nil || es == nil {
		return nil, nil, nil
	}
	line = make([]float64, len(x))
	for i := range x {
		line[i] = ef[i] - es[i]
	}
	sig = EMA(line, signal)
	if sig == nil {
		return nil, nil, nil
	}
	hist = make([]float64, len(x))
	for i := range x {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

func finiteWindow(w []float64) bool {
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
