package model

import (
	"fmt"
	"time"
)

// Timeframe is a bar interval understood by the broker.
type Timeframe string

const (
	OneMin     Timeframe = "1Min"
	FiveMin    Timeframe = "5Min"
	FifteenMin Timeframe = "15Min"
	OneHour    Timeframe = "1H"
	OneDay     Timeframe = "1D"
)

// Duration returns the wall-clock length of one bar.
func (tf Timeframe) Duration() (time.Duration, error) {
	switch tf {
	case OneMin:
		return time.Minute, nil
	case FiveMin:
		return 5 * time.Minute, nil
	case FifteenMin:
		return 15 * time.Minute, nil
	case OneHour:
		return time.Hour, nil
	case OneDay:
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unrecognized timeframe %q", string(tf))
	}
}
