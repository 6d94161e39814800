// Package dataio reads blast-monitoring observation tables.
//
// The format is the plain two-column text table the analysis is built
// around: a mandatory header row "x y" followed by one whitespace-separated
// pair of already log10-transformed values per line. Blank lines are
// skipped.
package dataio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/geoblast/ppvlaw/errs"
	"github.com/geoblast/ppvlaw/model"
)

// ReadObservations parses observations from r. Format violations fail with
// errs.ErrInvalidInput carrying the offending line number. Finiteness of
// the values is left to the Dataset, which validates all numeric input in
// one place.
func ReadObservations(r io.Reader) ([]model.Observation, error) {
	scanner := bufio.NewScanner(r)

	var obs []model.Observation
	headerSeen := false
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if !headerSeen {
			if len(fields) != 2 || !strings.EqualFold(fields[0], "x") || !strings.EqualFold(fields[1], "y") {
				return nil, fmt.Errorf(`%w: line %d: expected header "x y"`, errs.ErrInvalidInput, line)
			}
			headerSeen = true
			continue
		}

		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected 2 columns, got %d", errs.ErrInvalidInput, line, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad x value %q", errs.ErrInvalidInput, line, fields[0])
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad y value %q", errs.ErrInvalidInput, line, fields[1])
		}
		obs = append(obs, model.Observation{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !headerSeen {
		return nil, fmt.Errorf(`%w: missing header "x y"`, errs.ErrInvalidInput)
	}

	return obs, nil
}

// LoadObservations reads an observation table from path.
func LoadObservations(path string) ([]model.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	obs, err := ReadObservations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}
