package model

import "strings"

// BuyMode selects which buy condition the strategy engine applies.
type BuyMode string

const (
	BuyModeSimple    BuyMode = "simple"
	BuyModeCrossover BuyMode = "crossover"
)

// Signal is the output of the strategy engine for one symbol.
type Signal struct {
	Buy        bool
	Sell       bool
	BuyReason  string
	SellReason string
	Point      IndicatorPoint
}

// Reason joins the buy and sell reasons that are set.
func (s *Signal) Reason() string {
	var parts []string
	if s.BuyReason != "" {
		parts = append(parts, "buy: "+s.BuyReason)
	}
	if s.SellReason != "" {
		parts = append(parts, "sell: "+s.SellReason)
	}
	return strings.Join(parts, "; ")
}
