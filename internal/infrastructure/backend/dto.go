package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

// The backend is loose about scalar types: ids arrive as numbers or
// strings, prices as numbers or numeric strings and flags as booleans,
// 0/1 or "true". The flex types accept all of them.

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", str)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true", "1", "yes":
		*b = true
	case "false", "0", "no", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

type productDTO struct {
	ID          flexString `json:"id"`
	Code        flexString `json:"code"`
	Name        string     `json:"name"`
	CategoryID  flexString `json:"category_id"`
	PriceSell   flexFloat  `json:"pricesell"`
	TaxID       flexString `json:"taxid"`
	TaxRate     flexFloat  `json:"tax_rate"`
	Stock       flexFloat  `json:"stock"`
	TypeProduct string     `json:"typeproduct"`
	IsScale     flexBool   `json:"isscale"`
}

func (p productDTO) toEntity() entity.Product {
	return entity.Product{
		ID:         string(p.ID),
		Code:       string(p.Code),
		Name:       p.Name,
		CategoryID: string(p.CategoryID),
		Price:      float64(p.PriceSell),
		TaxID:      string(p.TaxID),
		TaxRate:    float64(p.TaxRate),
		Stock:      float64(p.Stock),
		Kind:       enum.ProductKindFromCode(p.TypeProduct),
		IsScale:    bool(p.IsScale),
	}
}

type categoryDTO struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

type catalogDTO struct {
	Categories []categoryDTO `json:"categories"`
	Products   []productDTO  `json:"products"`
}

type stockCheckDTO struct {
	HasStock flexBool        `json:"hasStock"`
	Message  string          `json:"message"`
	Details  json.RawMessage `json:"details"`
}

func (s stockCheckDTO) toEntity() *entity.StockCheck {
	return &entity.StockCheck{
		HasStock: bool(s.HasStock),
		Message:  s.Message,
		Details:  stockDetails(s.Details),
	}
}

// stockDetails flattens details sent either as strings or as objects
// describing the short component.
func stockDetails(raw json.RawMessage) []string {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	details := make([]string, 0, len(items))
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			if str = strings.TrimSpace(str); str != "" {
				details = append(details, str)
			}
			continue
		}
		var obj struct {
			Name      string    `json:"name"`
			Product   string    `json:"productName"`
			Message   string    `json:"message"`
			Required  flexFloat `json:"required"`
			Available flexFloat `json:"available"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		name := obj.Name
		if name == "" {
			name = obj.Product
		}
		switch {
		case obj.Message != "" && name != "":
			details = append(details, name+": "+obj.Message)
		case obj.Message != "":
			details = append(details, obj.Message)
		case name != "":
			details = append(details, fmt.Sprintf("%s: required %s, available %s",
				name, formatNumber(float64(obj.Required)), formatNumber(float64(obj.Available))))
		}
	}
	return details
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type kitComponentDTO struct {
	ProductID   flexString `json:"product_id"`
	ProductName string     `json:"product_name"`
	Name        string     `json:"name"`
	Quantity    flexFloat  `json:"quantity"`
	GroupID     flexString `json:"group_id"`
	GroupName   string     `json:"group_name"`
}

func (k kitComponentDTO) toEntity() entity.KitComponent {
	name := k.ProductName
	if name == "" {
		name = k.Name
	}
	qty := float64(k.Quantity)
	if qty <= 0 {
		qty = 1
	}
	return entity.KitComponent{
		ProductID:   string(k.ProductID),
		ProductName: name,
		Quantity:    qty,
		GroupID:     string(k.GroupID),
		GroupName:   k.GroupName,
	}
}

// kitComponentsDTO accepts a bare array or an object wrapping it
type kitComponentsDTO []kitComponentDTO

func (k *kitComponentsDTO) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*k = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []kitComponentDTO
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*k = items
		return nil
	}
	var wrapped struct {
		Components []kitComponentDTO `json:"components"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*k = wrapped.Components
	return nil
}

type discountRequestDTO struct {
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
}

type discountDTO struct {
	Quantity   flexFloat `json:"quantity"`
	Percentage flexBool  `json:"percentage"`
}

type currencyDTO struct {
	Code         string    `json:"code"`
	ExchangeRate flexFloat `json:"exchange_rate"`
	IsBase       flexBool  `json:"is_base"`
}

type saleReceiptDTO struct {
	ID     flexString `json:"id"`
	Number flexString `json:"number"`
}
