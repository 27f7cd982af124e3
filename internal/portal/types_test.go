package portal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewRoute_Defaults(t *testing.T) {
	tests := []struct {
		name       string
		route      Route
		wantRouter string
		wantCode   string
	}{
		{
			name:       "plain route",
			route:      Route{Service: "X", CountryCode: "AT", PostalCode: "1010", DestDepot: "9"},
			wantRouter: "X-AT-1010",
			wantCode:   "AT-9",
		},
		{
			name:       "with iata",
			route:      Route{Service: "X", CountryCode: "DE", PostalCode: "80331", DestDepot: "150", IATA: "MUC"},
			wantRouter: "X-DE-80331",
			wantCode:   "DE-150-MUC",
		},
		{
			name:       "with iata and grouping priority",
			route:      Route{Service: "X", CountryCode: "DE", PostalCode: "80331", DestDepot: "150", IATA: "MUC", GroupingPriority: "2"},
			wantRouter: "X-DE-80331",
			wantCode:   "DE-150-MUC-2",
		},
		{
			name:       "grouping priority without iata is ignored",
			route:      Route{Service: "X", CountryCode: "DE", PostalCode: "80331", DestDepot: "150", GroupingPriority: "2"},
			wantRouter: "X-DE-80331",
			wantCode:   "DE-150",
		},
		{
			name:       "portal supplied values are kept",
			route:      Route{Service: "X", CountryCode: "AT", PostalCode: "1010", DestDepot: "9", Router: "R1", Code: "C1"},
			wantRouter: "R1",
			wantCode:   "C1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRoute(tt.route)
			assert.Equal(t, tt.wantRouter, got.Router)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestNewRoute_Idempotent(t *testing.T) {
	first := NewRoute(Route{Service: "X", CountryCode: "AT", PostalCode: "1010", DestDepot: "9", IATA: "VIE"})
	second := NewRoute(first)
	assert.Equal(t, first, second)
}

func TestWeightClass(t *testing.T) {
	tests := []struct {
		weight string
		want   string
	}{
		{"0.5", "KP"},
		{"2.99", "KP"},
		{"3", "KP"},
		{"3.0", "KP"},
		{"3.001", "NP"},
		{"4.0", "NP"},
		{"31.5", "NP"},
	}

	for _, tt := range tests {
		t.Run(tt.weight, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightClass(decimal.RequireFromString(tt.weight)))
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Kind: KindNoRoute, Op: "find route", Message: "no route available"})

	assert.True(t, errors.Is(err, ErrNoRoute))
	assert.False(t, errors.Is(err, ErrDuplicateRecipient))
	assert.Equal(t, KindNoRoute, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "find route: no route available", errors.Unwrap(err).Error())
}
