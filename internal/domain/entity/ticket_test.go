package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(productID string, units float64) LineItem {
	return LineItem{ProductID: productID, ProductName: productID, Units: units, Price: 10}
}

func TestTicket_AddLineMergesSameProduct(t *testing.T) {
	ticket := NewTicket()

	_, err := ticket.AddLine(line("p1", 1.5))
	require.NoError(t, err)
	_, err = ticket.AddLine(line("p2", 1))
	require.NoError(t, err)
	idx, err := ticket.AddLine(line("p1", 2.25))
	require.NoError(t, err)

	require.Len(t, ticket.Lines, 2)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 3.75, ticket.Lines[0].Units, 1e-9)
	assert.Equal(t, 0, ticket.SelectedLineIndex)
}

func TestTicket_AddLineRejectsNonPositiveUnits(t *testing.T) {
	ticket := NewTicket()

	_, err := ticket.AddLine(line("p1", 0.00005))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.True(t, ticket.IsEmpty())
	assert.Equal(t, -1, ticket.SelectedLineIndex)
}

func TestTicket_IsEmptyOnValues(t *testing.T) {
	assert.True(t, Ticket{}.IsEmpty())
	assert.False(t, Ticket{Lines: []LineItem{line("a", 1)}}.IsEmpty())
}

func TestTicket_UpdateLineQuantityRemovesAtEpsilon(t *testing.T) {
	tests := []struct {
		name          string
		index         int
		qty           float64
		wantLines     []string
		wantSelection int
	}{
		{"zero removes last line", 2, 0, []string{"a", "b"}, 1},
		{"epsilon removes first line", 0, QuantityEpsilon, []string{"b", "c"}, 1},
		{"negative removes middle line", 1, -3, []string{"a", "c"}, 1},
		{"positive keeps line", 1, 4, []string{"a", "b", "c"}, 2},
		{"out of range is ignored", 7, 0, []string{"a", "b", "c"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := NewTicket()
			for _, id := range []string{"a", "b", "c"} {
				_, err := ticket.AddLine(line(id, 1))
				require.NoError(t, err)
			}

			ticket.UpdateLineQuantity(tt.index, tt.qty)

			var ids []string
			for _, l := range ticket.Lines {
				ids = append(ids, l.ProductID)
			}
			assert.Equal(t, tt.wantLines, ids)
			assert.Equal(t, tt.wantSelection, ticket.SelectedLineIndex)
			assert.GreaterOrEqual(t, ticket.SelectedLineIndex, -1)
			assert.Less(t, ticket.SelectedLineIndex, len(ticket.Lines))
		})
	}
}

func TestTicket_RemoveLastLineResetsSelection(t *testing.T) {
	ticket := NewTicket()
	_, err := ticket.AddLine(line("a", 1))
	require.NoError(t, err)

	assert.True(t, ticket.RemoveLine(0))
	assert.Equal(t, -1, ticket.SelectedLineIndex)
	assert.False(t, ticket.RemoveLine(0))
}

func TestTicket_ClearKeepsNotesAndGlobalDiscount(t *testing.T) {
	ticket := NewTicket()
	_, _ = ticket.AddLine(line("a", 1))
	ticket.SelectedCustomer = &Customer{ID: "c1"}
	ticket.Notes = "deliver"
	ticket.SetGlobalDiscount(5, enum.DiscountTypeFixed)

	ticket.Clear()

	assert.True(t, ticket.IsEmpty())
	assert.Nil(t, ticket.SelectedCustomer)
	assert.Equal(t, -1, ticket.SelectedLineIndex)
	assert.Equal(t, "deliver", ticket.Notes)
	assert.Equal(t, 5.0, ticket.GlobalDiscount)

	ticket.Reset()
	assert.Empty(t, ticket.Notes)
	assert.Zero(t, ticket.GlobalDiscount)
	assert.Equal(t, enum.DiscountTypePercent, ticket.GlobalDiscountType)
}

func TestTicket_CloneIsIndependent(t *testing.T) {
	ticket := NewTicket()
	_, _ = ticket.AddLine(LineItem{ProductID: "k", Units: 1, SelectedComponents: []KitComponent{{ProductID: "x"}}})
	ticket.SelectedCustomer = &Customer{ID: "c1"}

	clone := ticket.Clone()
	clone.Lines[0].Units = 9
	clone.Lines[0].SelectedComponents[0].ProductID = "y"
	clone.SelectedCustomer.ID = "c2"

	assert.Equal(t, 1.0, ticket.Lines[0].Units)
	assert.Equal(t, "x", ticket.Lines[0].SelectedComponents[0].ProductID)
	assert.Equal(t, "c1", ticket.SelectedCustomer.ID)
}

func TestSession_AddTicketIsBounded(t *testing.T) {
	s := NewSession()
	for i := 0; i < 15; i++ {
		s.AddTicket(MaxTickets)
	}
	assert.Len(t, s.Tickets, MaxTickets)
	assert.Equal(t, MaxTickets-1, s.ActiveTicketIndex)
}

func TestSession_RemoveSoleTicketClearsIt(t *testing.T) {
	s := NewSession()
	id := s.Active().ID
	_, _ = s.Active().AddLine(line("a", 2))
	s.Active().Notes = "x"

	assert.True(t, s.RemoveTicket(0))

	require.Len(t, s.Tickets, 1)
	assert.Equal(t, id, s.Tickets[0].ID)
	assert.True(t, s.Tickets[0].IsEmpty())
	assert.Empty(t, s.Tickets[0].Notes)
	assert.Equal(t, 0, s.ActiveTicketIndex)
}

func TestSession_RemoveTicketClampsActive(t *testing.T) {
	s := NewSession()
	s.AddTicket(MaxTickets)
	s.AddTicket(MaxTickets)
	require.Equal(t, 2, s.ActiveTicketIndex)

	s.RemoveTicket(2)
	assert.Equal(t, 1, s.ActiveTicketIndex)

	s.SelectTicket(1)
	active := s.Active().ID
	s.RemoveTicket(0)
	assert.Equal(t, 0, s.ActiveTicketIndex)
	assert.Equal(t, active, s.Active().ID)
}

func TestSession_RepairRestoresInvariants(t *testing.T) {
	dup := uuid.New()
	s := &Session{
		Tickets: []*Ticket{
			nil,
			{ID: dup, Lines: []LineItem{line("a", 0), line("b", 1)}, SelectedLineIndex: 5},
			{ID: dup},
		},
		ActiveTicketIndex: 9,
	}

	s.Repair()

	require.Len(t, s.Tickets, 2)
	assert.Equal(t, 1, s.ActiveTicketIndex)
	assert.Len(t, s.Tickets[0].Lines, 1)
	assert.Equal(t, 0, s.Tickets[0].SelectedLineIndex)
	assert.NotEqual(t, s.Tickets[0].ID, s.Tickets[1].ID)

	empty := &Session{}
	empty.Repair()
	assert.Len(t, empty.Tickets, 1)
}

func TestSession_ApplyLocation(t *testing.T) {
	s := NewSession()
	s.AddTicket(MaxTickets)
	s.Tickets[1].LocationID = "wh-2"

	s.ApplyLocation("wh-1")

	assert.Equal(t, "wh-1", s.Tickets[0].LocationID)
	assert.Equal(t, "wh-2", s.Tickets[1].LocationID)
}

func TestSplitKitComponents(t *testing.T) {
	fixed, groups := SplitKitComponents([]KitComponent{
		{ProductID: "base", Quantity: 1},
		{ProductID: "cola", GroupID: "g1", GroupName: "Drink"},
		{ProductID: "fries", GroupID: "g2"},
		{ProductID: "water", GroupID: "g1", GroupName: "Drink"},
	})

	require.Len(t, fixed, 1)
	require.Len(t, groups, 2)
	assert.Equal(t, "Drink", groups[0].Name)
	assert.Len(t, groups[0].Options, 2)
	assert.Equal(t, "g2", groups[1].Name)

	_, ok := groups[0].Option("water")
	assert.True(t, ok)
	_, ok = groups[0].Option("fries")
	assert.False(t, ok)
}
