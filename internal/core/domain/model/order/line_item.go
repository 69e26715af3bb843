package order

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// LineItem is one (product, quantity) requirement of an order.
type LineItem struct {
	productID kernel.UUID
	quantity  int
}

func NewLineItem(productID kernel.UUID, quantity int) (LineItem, error) {
	item := LineItem{productID: productID, quantity: quantity}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

func (i LineItem) ProductID() kernel.UUID { return i.productID }
func (i LineItem) Quantity() int { return i.quantity }

func (i LineItem) Validate() error {
	if err := i.productID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("product", err)
	}
	if i.quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", i.quantity))
	}
	return nil
}

// RequiredQuantities sums the quantity needed per product across items.
func RequiredQuantities(items []LineItem) map[kernel.UUID]int {
	out := make(map[kernel.UUID]int, len(items))
	for _, item := range items {
		out[item.productID] += item.quantity
	}
	return out
}
