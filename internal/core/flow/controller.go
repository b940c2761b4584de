package flow

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

// The POS modal walks a fixed sequence: search, variant selection when a
// product has more than one variant, confirmation, then the result screen.
// Every transition is driven by an explicit event; the one timer in the
// system returns the result screen to search after ResultDisplayTime.

type State string

const (
	StateSearch        State = "search"
	StateVariantSelect State = "variant_select"
	StateConfirm       State = "confirm"
	StateResult        State = "result"
)

// ResultDisplayTime is how long the result screen stays up before the flow
// returns to search on its own.
const ResultDisplayTime = 3 * time.Second

var ErrInvalidTransition = errors.New("invalid flow transition")

// Controller is the deterministic state machine behind one POS modal. It is
// safe for concurrent use; UI callbacks and the auto-return timer may race.
type Controller struct {
	mu         sync.Mutex
	state      State
	product    *domain.Product
	variant    *domain.ProductVariant
	result     *domain.TransferResult
	resetDelay time.Duration
	resetTimer *time.Timer
}

func NewController() *Controller {
	return &Controller{state: StateSearch, resetDelay: ResultDisplayTime}
}

// NewControllerWithDelay overrides the auto-return delay. Used by tests.
func NewControllerWithDelay(delay time.Duration) *Controller {
	return &Controller{state: StateSearch, resetDelay: delay}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the product and variant currently being transferred.
func (c *Controller) Selection() (*domain.Product, *domain.ProductVariant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.product, c.variant
}

func (c *Controller) Result() *domain.TransferResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// SelectProduct moves from search to confirmation, via variant selection
// when the product has more than one variant. A single-variant product
// selects its variant implicitly.
func (c *Controller) SelectProduct(p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSearch {
		return fmt.Errorf("%w: select product from %s", ErrInvalidTransition, c.state)
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("product %s has no variants", p.ID)
	}

	c.product = &p
	if len(p.Variants) == 1 {
		c.variant = &p.Variants[0]
		c.state = StateConfirm
		return nil
	}
	c.state = StateVariantSelect
	return nil
}

func (c *Controller) SelectVariant(v domain.ProductVariant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateVariantSelect {
		return fmt.Errorf("%w: select variant from %s", ErrInvalidTransition, c.state)
	}
	c.variant = &v
	c.state = StateConfirm
	return nil
}

// Complete records the transfer outcome and shows the result screen, which
// auto-returns to search unless the user navigates first.
func (c *Controller) Complete(result domain.TransferResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConfirm {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, c.state)
	}
	c.result = &result
	c.state = StateResult
	c.resetTimer = time.AfterFunc(c.resetDelay, c.autoReturn)
	return nil
}

// Back returns to search from any later screen. From the result screen this
// is the only way forward: the finished transfer is not repeatable.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) autoReturn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateResult {
		c.resetLocked()
	}
}

func (c *Controller) resetLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.state = StateSearch
	c.product = nil
	c.variant = nil
	c.result = nil
}
