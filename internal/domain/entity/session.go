package entity

import "github.com/google/uuid"

// MaxTickets is the number of tickets a session may hold at once
const MaxTickets = 10

// Session is the set of open tickets and the active pointer. It is also the
// persisted snapshot shape.
type Session struct {
	Tickets           []*Ticket `json:"tickets"`
	ActiveTicketIndex int       `json:"activeTicketIndex"`
}

// NewSession creates a session holding one empty ticket
func NewSession() *Session {
	return &Session{
		Tickets:           []*Ticket{NewTicket()},
		ActiveTicketIndex: 0,
	}
}

// Active returns the active ticket
func (s *Session) Active() *Ticket {
	if len(s.Tickets) == 0 {
		s.Tickets = []*Ticket{NewTicket()}
	}
	s.SelectTicket(s.ActiveTicketIndex)
	return s.Tickets[s.ActiveTicketIndex]
}

// TicketByID returns the ticket with id and its index, or nil and -1
func (s *Session) TicketByID(id uuid.UUID) (*Ticket, int) {
	for i, t := range s.Tickets {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

// AddTicket appends an empty ticket and activates it. It is a no-op once
// limit tickets are open.
func (s *Session) AddTicket(limit int) bool {
	if limit <= 0 || limit > MaxTickets {
		limit = MaxTickets
	}
	if len(s.Tickets) >= limit {
		return false
	}
	t := NewTicket()
	if len(s.Tickets) > 0 {
		t.LocationID = s.Tickets[s.ActiveTicketIndex].LocationID
	}
	s.Tickets = append(s.Tickets, t)
	s.ActiveTicketIndex = len(s.Tickets) - 1
	return true
}

// RemoveTicket removes the ticket at index. The sole remaining ticket is
// reset in place instead so the session is never empty.
func (s *Session) RemoveTicket(index int) bool {
	if index < 0 || index >= len(s.Tickets) {
		return false
	}
	if len(s.Tickets) == 1 {
		s.Tickets[0].Reset()
		s.ActiveTicketIndex = 0
		return true
	}
	s.Tickets = append(s.Tickets[:index], s.Tickets[index+1:]...)
	if index < s.ActiveTicketIndex {
		s.ActiveTicketIndex--
	}
	if s.ActiveTicketIndex >= len(s.Tickets) {
		s.ActiveTicketIndex = len(s.Tickets) - 1
	}
	return true
}

// SelectTicket activates the ticket at index, clamped to the valid range
func (s *Session) SelectTicket(index int) {
	if index < 0 {
		index = 0
	}
	if index >= len(s.Tickets) {
		index = len(s.Tickets) - 1
	}
	s.ActiveTicketIndex = index
}

// ApplyLocation copies locationID onto every ticket lacking one
func (s *Session) ApplyLocation(locationID string) {
	if locationID == "" {
		return
	}
	for _, t := range s.Tickets {
		if t.LocationID == "" {
			t.LocationID = locationID
		}
	}
}

// Repair restores the session invariants. Used after decoding a snapshot.
func (s *Session) Repair() {
	tickets := make([]*Ticket, 0, len(s.Tickets))
	seen := make(map[uuid.UUID]bool, len(s.Tickets))
	for _, t := range s.Tickets {
		if t == nil {
			continue
		}
		t.Repair()
		if seen[t.ID] {
			t.ID = uuid.New()
		}
		seen[t.ID] = true
		tickets = append(tickets, t)
		if len(tickets) == MaxTickets {
			break
		}
	}
	if len(tickets) == 0 {
		tickets = append(tickets, NewTicket())
	}
	s.Tickets = tickets
	if s.ActiveTicketIndex < 0 {
		s.ActiveTicketIndex = 0
	}
	if s.ActiveTicketIndex >= len(s.Tickets) {
		s.ActiveTicketIndex = len(s.Tickets) - 1
	}
}

// Clone deep copies the session
func (s *Session) Clone() *Session {
	c := &Session{
		Tickets:           make([]*Ticket, len(s.Tickets)),
		ActiveTicketIndex: s.ActiveTicketIndex,
	}
	for i, t := range s.Tickets {
		c.Tickets[i] = t.Clone()
	}
	return c
}
