package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/swcurve/cmd/swcurve/internal/request"
	"github.com/meenmo/swcurve/smithwilson"
	"github.com/meenmo/swcurve/smithwilson/config"
)

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	envPath := flag.String("env", ".env", "dotenv file with SWCURVE_UFR / SWCURVE_ALPHA / SWCURVE_WORKERS defaults")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			usage()
			os.Exit(2)
		}
	}

	defaults, err := request.LoadDefaults(strings.TrimSpace(*envPath))
	if err != nil {
		exitError(fmt.Sprintf("load defaults: %v", err))
	}
	if defaults.Workers > 0 {
		cfg := config.GetConfig()
		cfg.Workers = defaults.Workers
		config.SetConfig(cfg)
	}

	raw, err := readInput(path)
	if err != nil {
		exitError(fmt.Sprintf("read input: %v", err))
	}

	reqs, isArray, err := request.Parse(raw)
	if err != nil {
		exitError(fmt.Sprintf("parse JSON: %v", err))
	}

	hadError := false
	outputs := make([]request.Response, 0, len(reqs))
	for _, req := range reqs {
		out, err := request.Process(req, defaults)
		if err != nil {
			hadError = true
			fmt.Fprintf(os.Stderr, "swcurve: task %q: %v\n", req.TaskID, err)
			outputs = append(outputs, request.Response{TaskID: req.TaskID, Error: err.Error()})
			continue
		}
		outputs = append(outputs, *out)
	}

	if isArray {
		b, _ := json.Marshal(outputs)
		fmt.Println(string(b))
	} else {
		b, _ := json.Marshal(outputs[0])
		fmt.Println(string(b))
	}

	if hadError {
		os.Exit(1)
	}
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, `Usage: swcurve [-env .env] [-input <path>]

Fits a Smith-Wilson discount curve to observed zero-coupon prices and prints
JSON. Input is one request object or an array of them (stdin if -input is
omitted). Tenors are year fractions.

Request fields:
  task_id        echoed in the response
  mode           price | curve (default) | curve-parallel
  observations   [[maturity, price], ...], maturities > 0 and distinct
  ufr            ultimate forward rate, annual compounding (> -1)
  alpha          mean-reversion speed (> 0)
  tau | taus     price mode: one tenor or a list of tenors (>= 0)
  length_months  curve modes: grid points at tau = j/12, j = 1..n (default %d)
  zero_rates     also return -ln(P(tau))/tau; every tenor must be > 0
  decimals       round prices and rates to this many places

Environment (read from -env, overridden by the process environment):
  SWCURVE_UFR      default ufr when the request omits it
  SWCURVE_ALPHA    default alpha when the request omits it
  SWCURVE_WORKERS  goroutine limit of curve-parallel (0 = GOMAXPROCS)

Exit status: 0 on success, 1 if any request failed, 2 on usage errors.

Flags:
`, smithwilson.LegacyCurveLength)
	flag.PrintDefaults()
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func exitError(msg string) {
	b, _ := json.Marshal(request.Response{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
