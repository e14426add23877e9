package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeResult struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of buy trades.
	NumberOfBuys int `yaml:"number_of_buys"`
	// Count of sell trades.
	NumberOfSells int `yaml:"number_of_sells"`
	// Count of closing trades that has positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of closing trades that has negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate over closing trades.
	WinRate float64 `yaml:"win_rate"`
	// Maximum drawdown of the portfolio value, as a fraction of the running peak.
	MaxDrawdown float64 `yaml:"max_drawdown"`
}

type TradePnl struct {
	// Realized PnL. By adding all the sell trades' pnl.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// Unrealized PnL of the position still open at the end of the run.
	UnrealizedPnL float64 `yaml:"unrealized_pnl"`
	// Total PnL. By adding RealizedPnL and UnrealizedPnL.
	TotalPnL float64 `yaml:"total_pnl"`
}

// StrategyInfo contains metadata about the strategy that generated stats.
type StrategyInfo struct {
	Name        string  `yaml:"name" json:"name"`
	ShortWindow int     `yaml:"short_window" json:"short_window"`
	LongWindow  int     `yaml:"long_window" json:"long_window"`
	Quantity    float64 `yaml:"quantity" json:"quantity"`
}

// RunStats summarizes one backtest run.
type RunStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Symbol    string    `yaml:"symbol"`
	StartDate time.Time `yaml:"start_date"`
	EndDate   time.Time `yaml:"end_date"`
	// NumberOfDays is the number of bars simulated.
	NumberOfDays int `yaml:"number_of_days"`

	InitialCapital float64 `yaml:"initial_capital"`
	FinalValue     float64 `yaml:"final_value"`
	// TotalReturn is FinalValue / InitialCapital - 1.
	TotalReturn float64 `yaml:"total_return"`
	TotalFees   float64 `yaml:"total_fees"`
	// Buy and hold PnL of the configured quantity over the run.
	BuyAndHoldPnl float64 `yaml:"buy_and_hold_pnl"`

	TradeResult TradeResult  `yaml:"trade_result"`
	TradePnl    TradePnl     `yaml:"trade_pnl"`
	Strategy    StrategyInfo `yaml:"strategy" json:"strategy"`

	// Paths of the artifacts written for this run.
	ReportPath      string `yaml:"report_path" json:"report_path"`
	PerformancePath string `yaml:"performance_path" json:"performance_path"`
	DataPath        string `yaml:"data_path" json:"data_path"`
}

func WriteRunStats(path string, stats RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
