package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/meenmo/swcurve/smithwilson"
	"github.com/meenmo/swcurve/utils"
)

// Modes accepted in Request.Mode.
const (
	ModePrice         = "price"
	ModeCurve         = "curve"
	ModeCurveParallel = "curve-parallel"
)

// Environment variables read by LoadDefaults.
const (
	EnvUFR     = "SWCURVE_UFR"
	EnvAlpha   = "SWCURVE_ALPHA"
	EnvWorkers = "SWCURVE_WORKERS"
)

// Request is one curve computation. Observations is the two-column
// (maturity, price) table.
type Request struct {
	TaskID       string      `json:"task_id,omitempty"`
	Mode         string      `json:"mode"`
	Observations [][]float64 `json:"observations"`
	UFR          *float64    `json:"ufr,omitempty"`
	Alpha        *float64    `json:"alpha,omitempty"`
	Tau          *float64    `json:"tau,omitempty"`
	Taus         []float64   `json:"taus,omitempty"`
	LengthMonths int         `json:"length_months,omitempty"`
	ZeroRates    bool        `json:"zero_rates,omitempty"`
	Decimals     *uint32     `json:"decimals,omitempty"`
}

type Response struct {
	TaskID    string    `json:"task_id,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	UFR       float64   `json:"ufr,omitempty"`
	Alpha     float64   `json:"alpha,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Prices    []float64 `json:"prices,omitempty"`
	Curve     []float64 `json:"curve,omitempty"`
	ZeroRates []float64 `json:"zero_rates,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Defaults fills parameters a request leaves out.
type Defaults struct {
	UFR     *float64
	Alpha   *float64
	Workers int
}

// LoadDefaults reads defaults from the process environment, falling back to
// the dotenv file at path. A missing file is not an error.
func LoadDefaults(path string) (Defaults, error) {
	file := map[string]string{}
	if path != "" {
		m, err := godotenv.Read(path)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Defaults{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(file[key])
	}

	var d Defaults
	var err error
	if d.UFR, err = parseOptionalFloat(EnvUFR, lookup(EnvUFR)); err != nil {
		return Defaults{}, err
	}
	if d.Alpha, err = parseOptionalFloat(EnvAlpha, lookup(EnvAlpha)); err != nil {
		return Defaults{}, err
	}
	if v := lookup(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Defaults{}, fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}
		d.Workers = n
	}
	return d, nil
}

func parseOptionalFloat(key, v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return &f, nil
}

// Parse accepts a single JSON object or a non-empty array of objects.
// The bool reports whether the input was an array.
func Parse(raw []byte) ([]Request, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var reqs []Request
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, true, err
		}
		if len(reqs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return reqs, true, nil
	}
	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, false, err
	}
	return []Request{req}, false, nil
}

// Process runs one request against the library.
func Process(req Request, d Defaults) (*Response, error) {
	ufr, err := pick("ufr", req.UFR, d.UFR)
	if err != nil {
		return nil, err
	}
	alpha, err := pick("alpha", req.Alpha, d.Alpha)
	if err != nil {
		return nil, err
	}
	obs, err := smithwilson.ObservationsFromMatrix(req.Observations)
	if err != nil {
		return nil, err
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModeCurve
	}
	out := &Response{TaskID: req.TaskID, Mode: mode, UFR: ufr, Alpha: alpha}

	length := req.LengthMonths
	if length == 0 {
		length = smithwilson.LegacyCurveLength
	}

	var taus []float64
	switch mode {
	case ModePrice:
		taus = req.Taus
		if req.Tau != nil {
			taus = append([]float64{*req.Tau}, taus...)
		}
		if len(taus) == 0 {
			return nil, fmt.Errorf("mode %q requires tau or taus", mode)
		}
		c, err := smithwilson.Fit(obs, ufr, alpha)
		if err != nil {
			return nil, err
		}
		prices, err := c.Prices(taus)
		if err != nil {
			return nil, err
		}
		if req.Tau != nil && len(req.Taus) == 0 {
			out.Price = &prices[0]
		} else {
			out.Prices = prices
		}
		if req.ZeroRates {
			if out.ZeroRates, err = zeroRates(c, taus); err != nil {
				return nil, err
			}
		}
	case ModeCurve, ModeCurveParallel:
		c, err := smithwilson.Fit(obs, ufr, alpha)
		if err != nil {
			return nil, err
		}
		if mode == ModeCurveParallel {
			out.Curve, err = c.GridParallel(length)
		} else {
			out.Curve, err = c.Grid(length)
		}
		if err != nil {
			return nil, err
		}
		if req.ZeroRates {
			if out.ZeroRates, err = zeroRates(c, smithwilson.GridTenors(length)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported mode %q (price, curve, curve-parallel)", req.Mode)
	}

	if req.Decimals != nil {
		round(out, *req.Decimals)
	}
	return out, nil
}

func pick(name string, v, def *float64) (float64, error) {
	if v != nil {
		return *v, nil
	}
	if def != nil {
		return *def, nil
	}
	return 0, fmt.Errorf("%s is required", name)
}

// zeroRates has no value at tau = 0, so such requests are rejected.
func zeroRates(c *smithwilson.Curve, taus []float64) ([]float64, error) {
	out := make([]float64, len(taus))
	for i, tau := range taus {
		z, err := c.ZeroRate(tau)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

func round(out *Response, decimals uint32) {
	if out.Price != nil {
		p := utils.RoundTo(*out.Price, decimals)
		out.Price = &p
	}
	for _, s := range [][]float64{out.Prices, out.Curve, out.ZeroRates} {
		for i := range s {
			s[i] = utils.RoundTo(s[i], decimals)
		}
	}
}
