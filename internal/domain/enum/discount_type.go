package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DiscountType represents how a discount amount is interpreted
type DiscountType int

const (
	// DiscountTypePercent is a fraction of the price, stored normalized to 0..1
	DiscountTypePercent DiscountType = 0
	// DiscountTypeFixed is an absolute amount in the base currency
	DiscountTypeFixed DiscountType = 1
	// DiscountTypeFixedAlt is an absolute amount in the display currency
	DiscountTypeFixedAlt DiscountType = 2
)

var discountTypeNames = [...]string{"PERCENT", "FIXED", "FIXED_VES"}

func (t DiscountType) String() string {
	if int(t) < 0 || int(t) >= len(discountTypeNames) {
		return discountTypeNames[DiscountTypePercent]
	}
	return discountTypeNames[t]
}

// ParseDiscountType converts a wire name into a DiscountType
func ParseDiscountType(s string) (DiscountType, error) {
	for i, name := range discountTypeNames {
		if strings.EqualFold(s, name) {
			return DiscountType(i), nil
		}
	}
	return DiscountTypePercent, fmt.Errorf("unknown discount type %q", s)
}

func (t DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if i < 0 || i >= len(discountTypeNames) {
			return fmt.Errorf("unknown discount type %d", i)
		}
		*t = DiscountType(i)
		return nil
	}
	if str == "" {
		*t = DiscountTypePercent
		return nil
	}
	parsed, err := ParseDiscountType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
