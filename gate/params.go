package gate

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseParam reads one gate parameter: a float literal or a rational multiple of pi written as
// "pi", "-pi/2", "2pi" or "3*pi/4". Case and surrounding space are ignored.
func ParseParam(s string) (float64, error) {
	expr := strings.ToLower(strings.TrimSpace(s))
	if expr == "" {
		return 0, errors.Wrap(ErrValidation, "empty parameter")
	}
	if v, err := strconv.ParseFloat(expr, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.Wrapf(ErrValidation, "parameter %q is not finite", s)
		}
		return v, nil
	}

	neg := strings.HasPrefix(expr, "-")
	coeff, rest, ok := strings.Cut(strings.TrimPrefix(expr, "-"), "pi")
	if !ok {
		return 0, errors.Wrapf(ErrValidation, "cannot parse parameter %q", s)
	}

	v := math.Pi
	if coeff = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(coeff), "*")); coeff != "" {
		c, err := strconv.ParseFloat(coeff, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrValidation, "bad coefficient in %q", s)
		}
		v *= c
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		den, ok := strings.CutPrefix(rest, "/")
		if !ok {
			return 0, errors.Wrapf(ErrValidation, "cannot parse parameter %q", s)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, errors.Wrapf(ErrValidation, "bad denominator in %q", s)
		}
		v /= d
	}
	if neg {
		v = -v
	}
	return v, nil
}

// ParseParams parses a comma separated parameter list. Empty entries are skipped.
func ParseParams(input string) ([]float64, error) {
	var params []float64
	for _, part := range strings.Split(input, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := ParseParam(part)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}
	return params, nil
}

// piDenominators are tried in order, so the first match is in lowest terms.
var piDenominators = []float64{1, 2, 3, 4, 6, 8}

// FormatParam writes v as k*pi/d when it is a small multiple of pi, otherwise as the shortest
// float literal that parses back to v.
func FormatParam(v float64) string {
	for _, d := range piDenominators {
		k := math.Round(v * d / math.Pi)
		if k == 0 || math.Abs(k) > 2*d || math.Abs(v-k*math.Pi/d) > 1e-10 {
			continue
		}
		var sb strings.Builder
		if k < 0 {
			sb.WriteByte('-')
		}
		if a := math.Abs(k); a != 1 {
			sb.WriteString(strconv.FormatFloat(a, 'f', 0, 64) + "*")
		}
		sb.WriteString("pi")
		if d != 1 {
			sb.WriteString("/" + strconv.FormatFloat(d, 'f', 0, 64))
		}
		return sb.String()
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
