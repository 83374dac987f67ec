package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/core/domain"
)

func TestParseStaticStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Strategy
	}{
		{"", domain.StrategyCacheFirst},
		{"cache-first", domain.StrategyCacheFirst},
		{"stale-while-revalidate", domain.StrategyStaleWhileRevalidate},
	}
	for _, tt := range tests {
		got, err := domain.ParseStaticStrategy(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"network-first", "bypass", "Cache-First"} {
		_, err := domain.ParseStaticStrategy(bad)
		require.Error(t, err, bad)
		assert.ErrorContains(t, err, domain.ErrInvalidStrategy.Error())
	}
}
