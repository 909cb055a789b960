package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

func TestReport(t *testing.T) {
	t.Parallel()
	day := caldate.MustParse("2024-01-31")

	tests := []struct {
		name string
		outs []entity.Outcome
		want subcommands.ExitStatus
	}{
		{name: "empty", outs: nil, want: subcommands.ExitSuccess},
		{name: "partial is success", outs: []entity.Outcome{
			{PortfolioID: 1, Target: day, Status: entity.StatusOK},
			{PortfolioID: 2, Target: day, Status: entity.StatusPartial, Failed: 1},
		}, want: subcommands.ExitSuccess},
		{name: "any failure", outs: []entity.Outcome{
			{PortfolioID: 1, Target: day, Status: entity.StatusOK},
			{PortfolioID: 2, Target: day, Status: entity.StatusFailed},
		}, want: subcommands.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			assert.Equal(t, tt.want, report(&buf, tt.outs))

			var got struct {
				Outcomes []struct {
					PortfolioID uint   `json:"portfolio_id"`
					Target      string `json:"target"`
					Status      string `json:"status"`
				} `json:"outcomes"`
			}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			require.Len(t, got.Outcomes, len(tt.outs))
			for i, o := range got.Outcomes {
				assert.Equal(t, tt.outs[i].PortfolioID, o.PortfolioID)
				assert.Equal(t, "2024-01-31", o.Target)
				assert.Equal(t, string(tt.outs[i].Status), o.Status)
			}
		})
	}
}
