package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
)

type PurchaseType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderReasonCrossAbove string = "short_mavg_above_long_mavg"
	OrderReasonCrossBelow string = "short_mavg_below_long_mavg"
)

type Reason struct {
	Reason  string `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	Message string `yaml:"message" json:"message" csv:"message" validate:"required"`
}

// Order is a request to change the position in Symbol by Quantity units.
// A positive quantity buys and a negative quantity sells.
type Order struct {
	OrderID string `yaml:"order_id" json:"order_id" csv:"order_id" validate:"omitempty,uuid"`
	Symbol  string `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	// Quantity is signed: positive buys, negative sells.
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity" validate:"ne=0"`
	// Timestamp is the bar time the order was emitted on.
	Timestamp    time.Time `yaml:"timestamp" json:"timestamp" csv:"timestamp" validate:"required"`
	Reason       Reason    `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	StrategyName string    `yaml:"strategy_name" json:"strategy_name" csv:"strategy_name" validate:"required"`
}

// Side returns BUY for positive quantities and SELL for negative ones.
func (o Order) Side() PurchaseType {
	if o.Quantity < 0 {
		return PurchaseTypeSell
	}

	return PurchaseTypeBuy
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}
