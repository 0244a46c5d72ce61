package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/sangkips/investify-pos/internal/application/pricing"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

type sessionTestContext struct {
	f          *fixture
	last       *AddResult
	err        error
	selections map[string]string
}

func (c *sessionTestContext) reset() {
	c.f = newFixture(nil)
	c.last = nil
	c.err = nil
	c.selections = map[string]string{}
}

func (c *sessionTestContext) state() *SessionState {
	return c.f.svc.State(context.Background())
}

func (c *sessionTestContext) aFreshSession() error {
	c.reset()
	return nil
}

func (c *sessionTestContext) pricingRoundsToDecimals(decimals int) error {
	c.f.svc.mu.Lock()
	c.f.svc.resolver = pricing.NewResolver(decimals)
	c.f.svc.mu.Unlock()
	return nil
}

func (c *sessionTestContext) theExchangeRateIs(rate float64) error {
	_, err := c.f.svc.SetExchangeRate(context.Background(), rate)
	return err
}

func (c *sessionTestContext) iAddUnitsOf(quantity float64, productID string) error {
	c.last, c.err = c.f.svc.RequestAdd(context.Background(), productID, qty(quantity))
	return nil
}

func (c *sessionTestContext) iAdd(productID string) error {
	c.last, c.err = c.f.svc.RequestAdd(context.Background(), productID, nil)
	return nil
}

func (c *sessionTestContext) iSetAPercentDiscountOnLine(value float64, index int) error {
	c.f.svc.UpdateLineDiscount(context.Background(), index, value, enum.DiscountTypePercent)
	return nil
}

func (c *sessionTestContext) iSetAGlobalDiscountOf(value float64, typeName string) error {
	discountType, err := enum.ParseDiscountType(typeName)
	if err != nil {
		return err
	}
	c.f.svc.SetGlobalDiscount(context.Background(), value, discountType)
	return nil
}

func (c *sessionTestContext) iSetTheQuantityOfLineTo(index int, quantity float64) error {
	_, c.err = c.f.svc.UpdateLineQuantity(context.Background(), index, quantity)
	return c.err
}

func (c *sessionTestContext) iSetTheNotesTo(notes string) error {
	c.f.svc.SetNotes(context.Background(), notes)
	return nil
}

func (c *sessionTestContext) iRemoveTicket(index int) error {
	c.f.svc.RemoveTicket(context.Background(), index)
	return nil
}

func (c *sessionTestContext) iOpenNewTickets(n int) error {
	for i := 0; i < n; i++ {
		c.f.svc.AddTicket(context.Background())
	}
	return nil
}

func (c *sessionTestContext) iSelectForGroup(productID, groupID string) error {
	c.selections[groupID] = productID
	return nil
}

func (c *sessionTestContext) iCompleteTheSelection() error {
	if c.last == nil || c.last.Pending == nil {
		return errors.New("no add is waiting for a selection")
	}
	_, c.err = c.f.svc.CompleteSelection(context.Background(), c.last.Pending.ID, c.selections)
	return nil
}

func (c *sessionTestContext) theAddWaitsForASelectionOfGroups(groups int) error {
	if c.err != nil {
		return fmt.Errorf("expected a pending add but got error: %v", c.err)
	}
	if c.last.Status != DecisionNeedsSelection || c.last.Pending == nil {
		return fmt.Errorf("expected needs_selection, got %s", c.last.Status)
	}
	if len(c.last.Pending.Groups) != groups {
		return fmt.Errorf("expected %d groups, got %d", groups, len(c.last.Pending.Groups))
	}
	return nil
}

func (c *sessionTestContext) theAddIsRejectedWith(reason string) error {
	if c.err == nil {
		return errors.New("expected the add to be rejected")
	}
	if !strings.Contains(c.err.Error(), reason) {
		return fmt.Errorf("expected reason %q, got %q", reason, c.err.Error())
	}
	return nil
}

func (c *sessionTestContext) theActiveTicketHasLines(n int) error {
	if got := len(c.state().Active().Lines); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *sessionTestContext) theActiveTicketHasNoNotes() error {
	if notes := c.state().Active().Notes; notes != "" {
		return fmt.Errorf("expected no notes, got %q", notes)
	}
	return nil
}

func (c *sessionTestContext) lineHasUnits(index int, units float64) error {
	lines := c.state().Active().Lines
	if index >= len(lines) {
		return fmt.Errorf("line %d does not exist", index)
	}
	if lines[index].Units != units {
		return fmt.Errorf("expected %v units, got %v", units, lines[index].Units)
	}
	return nil
}

func (c *sessionTestContext) theSelectedLineIs(index int) error {
	if got := c.state().Active().SelectedLineIndex; got != index {
		return fmt.Errorf("expected selected line %d, got %d", index, got)
	}
	return nil
}

func (c *sessionTestContext) theSessionHasTickets(n int) error {
	if got := len(c.state().Tickets); got != n {
		return fmt.Errorf("expected %d tickets, got %d", n, got)
	}
	return nil
}

func amountIs(name string, got decimal.Decimal, want string) error {
	if !decimal.RequireFromString(want).Equal(got) {
		return fmt.Errorf("expected %s %s, got %s", name, want, got.String())
	}
	return nil
}

func (c *sessionTestContext) theTicketSubtotalIs(want string) error {
	return amountIs("subtotal", c.state().Active().Totals.Base.Subtotal, want)
}

func (c *sessionTestContext) theTicketTotalIs(want string) error {
	return amountIs("total", c.state().Active().Totals.Base.Total, want)
}

func (c *sessionTestContext) theTicketDiscountIs(want string) error {
	return amountIs("discount", c.state().Active().Totals.Base.Discount, want)
}

func (c *sessionTestContext) theDisplayTotalIs(want string) error {
	return amountIs("display total", c.state().Active().Totals.Display.Total, want)
}

func (c *sessionTestContext) theTicketTotalEqualsTheSubtotal() error {
	base := c.state().Active().Totals.Base
	return amountIs("total", base.Total, base.Subtotal.String())
}

func (c *sessionTestContext) netPlusTaxEqualsTheTotal() error {
	for _, a := range []pricing.Amounts{c.state().Active().Totals.Base, c.state().Active().Totals.Display} {
		if err := amountIs("net+tax", a.Net.Add(a.Tax), a.Total.String()); err != nil {
			return err
		}
	}
	return nil
}

func (c *sessionTestContext) subtotalMinusDiscountEqualsTheTotal() error {
	base := c.state().Active().Totals.Base
	return amountIs("subtotal-discount", base.Subtotal.Sub(base.Discount), base.Total.String())
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &sessionTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a fresh session$`, tc.aFreshSession)
	ctx.Step(`^pricing rounds to (\d+) decimals$`, tc.pricingRoundsToDecimals)
	ctx.Step(`^the exchange rate is (\d+(?:\.\d+)?)$`, tc.theExchangeRateIs)

	// When steps
	ctx.Step(`^I add (\d+(?:\.\d+)?) units? of "([^"]*)"$`, tc.iAddUnitsOf)
	ctx.Step(`^I add "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I set a (\d+(?:\.\d+)?) percent discount on line (\d+)$`, tc.iSetAPercentDiscountOnLine)
	ctx.Step(`^I set a global discount of (\d+(?:\.\d+)?) "([^"]*)"$`, tc.iSetAGlobalDiscountOf)
	ctx.Step(`^I set the quantity of line (\d+) to (\d+(?:\.\d+)?)$`, tc.iSetTheQuantityOfLineTo)
	ctx.Step(`^I set the notes to "([^"]*)"$`, tc.iSetTheNotesTo)
	ctx.Step(`^I remove ticket (\d+)$`, tc.iRemoveTicket)
	ctx.Step(`^I open (\d+) new tickets$`, tc.iOpenNewTickets)
	ctx.Step(`^I select "([^"]*)" for group "([^"]*)"$`, tc.iSelectForGroup)
	ctx.Step(`^I complete the selection$`, tc.iCompleteTheSelection)

	// Then steps
	ctx.Step(`^the add waits for a selection of (\d+) groups$`, tc.theAddWaitsForASelectionOfGroups)
	ctx.Step(`^the add is rejected with "([^"]*)"$`, tc.theAddIsRejectedWith)
	ctx.Step(`^the active ticket has (\d+) lines?$`, tc.theActiveTicketHasLines)
	ctx.Step(`^the active ticket has no notes$`, tc.theActiveTicketHasNoNotes)
	ctx.Step(`^line (\d+) has (\d+(?:\.\d+)?) units$`, tc.lineHasUnits)
	ctx.Step(`^the selected line is (-?\d+)$`, tc.theSelectedLineIs)
	ctx.Step(`^the session has (\d+) tickets?$`, tc.theSessionHasTickets)
	ctx.Step(`^the ticket subtotal is (\d+(?:\.\d+)?)$`, tc.theTicketSubtotalIs)
	ctx.Step(`^the ticket total is (\d+(?:\.\d+)?)$`, tc.theTicketTotalIs)
	ctx.Step(`^the ticket discount is (\d+(?:\.\d+)?)$`, tc.theTicketDiscountIs)
	ctx.Step(`^the display total is (\d+(?:\.\d+)?)$`, tc.theDisplayTotalIs)
	ctx.Step(`^the ticket total equals the subtotal$`, tc.theTicketTotalEqualsTheSubtotal)
	ctx.Step(`^net plus tax equals the total$`, tc.netPlusTaxEqualsTheTotal)
	ctx.Step(`^subtotal minus discount equals the total$`, tc.subtotalMinusDiscountEqualsTheTotal)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/ticket_session.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
