package eodhd

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexFloat64 handles JSON values that may be a number, a numeric string or
// null. valid is false for null and for placeholder strings.
type flexFloat64 struct {
	value float64
	valid bool
}

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	*f = flexFloat64{}
	if string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64{value: num, valid: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		switch strings.ToUpper(s) {
		case "", "N/A", "NA", "NONE", "NULL":
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		*f = flexFloat64{value: num, valid: true}
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// nonZero returns the value, or nil when absent or zero.
func (f flexFloat64) nonZero() *float64 {
	if !f.valid || f.value == 0 || math.IsNaN(f.value) {
		return nil
	}
	v := f.value
	return &v
}

func nan() float64 {
	return math.NaN()
}
