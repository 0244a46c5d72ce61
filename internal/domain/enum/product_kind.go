package enum

import (
	"encoding/json"
	"strings"
)

// ProductKind decides how stock eligibility is checked for a product
type ProductKind int

const (
	ProductKindSimple   ProductKind = 0
	ProductKindService  ProductKind = 1
	ProductKindCompound ProductKind = 2
	ProductKindKit      ProductKind = 3
)

func (k ProductKind) String() string {
	names := [...]string{"Simple", "Service", "Compound", "Kit"}
	if int(k) < 0 || int(k) >= len(names) {
		return "Simple"
	}
	return names[k]
}

// ProductKindFromCode maps the backend typeproduct code. Unknown codes are
// treated as simple stocked goods.
func ProductKindFromCode(code string) ProductKind {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "SE", "SV":
		return ProductKindService
	case "CO":
		return ProductKindCompound
	case "KI":
		return ProductKindKit
	default:
		return ProductKindSimple
	}
}

func (k ProductKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ProductKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = ProductKind(i)
		return nil
	}
	switch str {
	case "Service":
		*k = ProductKindService
	case "Compound":
		*k = ProductKindCompound
	case "Kit":
		*k = ProductKindKit
	default:
		*k = ProductKindSimple
	}
	return nil
}
