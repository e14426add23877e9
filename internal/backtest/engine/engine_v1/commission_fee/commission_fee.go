package commission_fee

import (
	"github.com/rxtech-lab/argo-dma/pkg/errors"
)

type CommissionFee interface {
	// Calculate returns the commission in USD for filling quantity units at price.
	// Quantity is signed; sells are charged like buys.
	Calculate(quantity float64, price float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
}

// ParseBroker converts a configuration value into a Broker.
func ParseBroker(value string) (Broker, error) {
	broker := Broker(value)

	switch broker {
	case BrokerInteractiveBroker, BrokerZero:
		return broker, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported broker: %s", value)
	}
}

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
