package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

func sampleSession() *entity.Session {
	s := entity.NewSession()
	ticket := s.Active()
	ticket.Notes = "table 4"
	ticket.LocationID = "main"
	ticket.SelectedCustomer = &entity.Customer{ID: "c1", Name: "Ana"}
	ticket.SetGlobalDiscount(50, enum.DiscountTypeFixedAlt)
	_, _ = ticket.AddLine(entity.LineItem{
		ProductID:    "combo",
		ProductName:  "Combo",
		Units:        1.5,
		Price:        12,
		TaxRate:      0.16,
		Discount:     0.1,
		DiscountType: enum.DiscountTypePercent,
		Kind:         enum.ProductKindKit,
		SelectedComponents: []entity.KitComponent{
			{ProductID: "cola", ProductName: "Cola", Quantity: 1, GroupID: "drink", GroupName: "Drink"},
		},
	})
	s.AddTicket(entity.MaxTickets)
	return s
}

func TestCodecsPreserveSession(t *testing.T) {
	for _, name := range []string{JSON, CBOR} {
		t.Run(name, func(t *testing.T) {
			c, err := New(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			want := sampleSession()
			data, err := c.Marshal(want)
			require.NoError(t, err)

			var got entity.Session
			require.NoError(t, c.Unmarshal(data, &got))
			// normalizes empty line slices on both sides
			want.Repair()
			got.Repair()
			assert.Equal(t, want, &got)
		})
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	c, err := New(CBOR)
	require.NoError(t, err)
	s := sampleSession()

	first, err := c.Marshal(s)
	require.NoError(t, err)
	second, err := c.Marshal(s.Clone())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestJSONUsesSnapshotFieldNames(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	data, err := c.Marshal(sampleSession())
	require.NoError(t, err)

	for _, field := range []string{`"tickets"`, `"activeTicketIndex"`, `"selectedLineIndex"`, `"globalDiscountType":"FIXED_VES"`, `"selectedComponents"`, `"taxid"`} {
		assert.Contains(t, string(data), field)
	}
}

func TestUnknownCodec(t *testing.T) {
	_, err := New("xml")
	assert.Error(t, err)
}
