package payment

import (
	"context"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// TestCardNumber is the designated always-succeed card for the simulated
// processor.
const TestCardNumber = "4242424242424242"

// hotlist sizing: the filter only ever holds a handful of seeded numbers, but
// keep headroom so an operator-loaded block list stays under the target
// false-positive rate.
const (
	hotlistCapacity = 100_000
	hotlistFPR      = 0.0001
)

// SimGateway is a deterministic stand-in for a real processor.
//
// Decision order for a charge:
//  1. Malformed card data (length, expiry range, CVC shape) → InvalidCardError.
//  2. Expired card → declined.
//  3. Hot-listed number → declined.
//  4. The designated test card → succeeds.
//  5. Anything else, Luhn-valid or not → declined.
//
// Net effect: only the test card pays, matching the storefront's historical
// behaviour, while the hot-list lets operators block numbers explicitly.
type SimGateway struct {
	hotlist *bloom.BloomFilter
	now     func() time.Time
}

var _ Gateway = (*SimGateway)(nil)

// NewSimGateway creates the simulated gateway with an empty hot-list.
func NewSimGateway() *SimGateway {
	return &SimGateway{
		hotlist: bloom.NewWithEstimates(hotlistCapacity, hotlistFPR),
		now:     time.Now,
	}
}

// Hotlist adds card numbers to the block list. Lookups are probabilistic
// (bloom filter): a blocked card is always declined, an unblocked one may
// very rarely be declined too, which is an acceptable trade for a simulator.
func (g *SimGateway) Hotlist(numbers ...string) {
	for _, n := range numbers {
		g.hotlist.AddString(n)
	}
}

// Charge validates the card and authorizes the amount. No card data is
// retained beyond the call.
func (g *SimGateway) Charge(_ context.Context, card Card, amountCents int64) error {
	if err := validateCard(card); err != nil {
		return err
	}
	if amountCents <= 0 {
		return &InvalidCardError{Reason: "non-positive amount"}
	}

	now := g.now()
	if expired(card, now) {
		return ErrDeclined
	}
	if g.hotlist.TestString(card.Number) {
		return ErrDeclined
	}
	if card.Number == TestCardNumber {
		return nil
	}
	return ErrDeclined
}

func validateCard(card Card) error {
	if len(card.Number) != 16 || !allDigits(card.Number) {
		return &InvalidCardError{Reason: "card number must be 16 digits"}
	}
	if !luhnValid(card.Number) {
		return &InvalidCardError{Reason: "card number fails checksum"}
	}
	if card.ExpMonth < 1 || card.ExpMonth > 12 {
		return &InvalidCardError{Reason: "expiry month out of range"}
	}
	if card.ExpYear < 2000 || card.ExpYear > 2100 {
		return &InvalidCardError{Reason: "expiry year out of range"}
	}
	if l := len(card.CVC); l < 3 || l > 4 || !allDigits(card.CVC) {
		return &InvalidCardError{Reason: "cvc must be 3 or 4 digits"}
	}
	return nil
}

func expired(card Card, now time.Time) bool {
	if card.ExpYear < now.Year() {
		return true
	}
	return card.ExpYear == now.Year() && time.Month(card.ExpMonth) < now.Month()
}

func allDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// luhnValid implements the standard Luhn mod-10 checksum.
func luhnValid(number string) bool {
	var sum int
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
