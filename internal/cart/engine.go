package cart

import (
	"context"
	"log"
	"sync"

	"genwear/internal/domain"
)

// LocalStore is the device-local snapshot cache. Implementations must treat
// a missing or unreadable snapshot as absent, not as an error worth failing
// hydration over.
type LocalStore interface {
	Load() ([]domain.CartLine, error)
	Save(lines []domain.CartLine) error
}

// RemoteStore is the server-side cart document, full-list semantics on both
// directions: Fetch returns everything stored for the session's customer and
// Replace overwrites it wholesale (no merge, last write wins).
type RemoteStore interface {
	Fetch(ctx context.Context) ([]domain.CartLine, error)
	Replace(ctx context.Context, lines []domain.CartLine) error
}

// Session identifies who owns the engine's cart. It is constructed once at
// session start and replaced on login/logout rather than mutated in place.
type Session struct {
	CustomerID    string
	DeviceID      string
	Authenticated bool
}

// Engine holds the authoritative in-memory cart for one session and keeps
// the local cache and the server copy trailing behind it. Persistence
// failures never surface to callers; the in-memory state is the source of
// truth for the session regardless of sync outcome.
type Engine struct {
	mu      sync.Mutex
	session Session
	local   LocalStore
	remote  RemoteStore
	logger  *log.Logger

	lines       []domain.CartLine
	discount    string
	discountPct int64
}

// New builds an Engine for the given session. Call Hydrate before use.
func New(session Session, local LocalStore, remote RemoteStore, logger *log.Logger) *Engine {
	return &Engine{
		session: session,
		local:   local,
		remote:  remote,
		logger:  logger,
	}
}

// Hydrate loads the starting cart state once per session. Authenticated
// sessions prefer the server copy and fall back to the local cache when the
// fetch fails; unauthenticated sessions read the local cache directly.
// Hydration performs no writes, so a failed fetch never clobbers the server.
func (e *Engine) Hydrate(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Authenticated && e.remote != nil {
		lines, err := e.remote.Fetch(ctx)
		if err == nil {
			e.lines = domain.CloneLines(lines)
			return
		}
		e.logf("cart: server fetch failed, using local cache: %v", err)
	}
	e.lines = e.loadLocal()
}

// Login swaps in an authenticated session and adopts the server cart,
// discarding whatever the device had. Local-only items added before login
// are lost; that is the documented policy, not an accident.
func (e *Engine) Login(ctx context.Context, session Session, remote RemoteStore) {
	e.mu.Lock()
	e.session = session
	e.remote = remote
	e.mu.Unlock()
	e.Hydrate(ctx)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync(ctx)
}

// Logout resets the cart to empty. Cart contents are either server-bound to
// one identity or ephemeral to one device; nothing survives a logout.
func (e *Engine) Logout(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = Session{DeviceID: e.session.DeviceID}
	e.remote = nil
	e.lines = nil
	e.discount = ""
	e.discountPct = 0
	if e.local != nil {
		if err := e.local.Save(nil); err != nil {
			e.logf("cart: local save failed: %v", err)
		}
	}
}

// AddItem merges the item into the cart. An existing line with the same
// identity key gains exactly one unit and the incoming quantity is ignored;
// a fresh line is appended with quantity forced to 1.
func (e *Engine) AddItem(ctx context.Context, item domain.CartLine) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := item.Key()
	for i := range e.lines {
		if e.lines[i].Key() == key {
			e.lines[i].Quantity++
			e.sync(ctx)
			return
		}
	}
	item.Quantity = 1
	if item.Custom != nil {
		c := *item.Custom
		item.Custom = &c
	}
	e.lines = append(e.lines, item)
	e.sync(ctx)
}

// RemoveItem drops the line(s) sharing the identity key of the first line
// found with the given product id. No-op when the id is absent.
func (e *Engine) RemoveItem(ctx context.Context, productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key, ok := e.firstKey(productID)
	if !ok {
		return
	}
	kept := e.lines[:0]
	for _, l := range e.lines {
		if l.Key() != key {
			kept = append(kept, l)
		}
	}
	e.lines = kept
	e.sync(ctx)
}

// UpdateQuantity sets the matching line's quantity to exactly n. A value of
// zero or less removes the line instead. There is no upper bound.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, n int) {
	if n <= 0 {
		e.RemoveItem(ctx, productID)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	key, ok := e.firstKey(productID)
	if !ok {
		return
	}
	for i := range e.lines {
		if e.lines[i].Key() == key {
			e.lines[i].Quantity = n
		}
	}
	e.sync(ctx)
}

// Clear empties the cart unconditionally.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
	e.sync(ctx)
}

// ApplyDiscount matches code against the fixed table, case-insensitively.
// An unrecognized code returns false and leaves any prior discount intact.
func (e *Engine) ApplyDiscount(code string) bool {
	pct, canonical, ok := lookupDiscount(code)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discount = canonical
	e.discountPct = pct
	return true
}

// RemoveDiscount clears the discount back to its zero state.
func (e *Engine) RemoveDiscount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discount = ""
	e.discountPct = 0
}

// Lines returns a deep copy of the current line list, so order snapshots
// taken at checkout never observe later cart mutations.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.CloneLines(e.lines)
}

// Snapshot captures lines, discount and totals in one consistent view.
// Checkout builds its order request from this so a concurrent mutation can
// never skew the totals against the item list.
type Snapshot struct {
	Lines         []domain.CartLine
	DiscountCode  string
	TotalItems    int
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Lines:        domain.CloneLines(e.lines),
		DiscountCode: e.discount,
	}
	for _, l := range e.lines {
		snap.TotalItems += l.Quantity
	}
	snap.SubtotalCents = e.subtotal()
	snap.DiscountCents = snap.SubtotalCents * e.discountPct / 100
	snap.TotalCents = snap.SubtotalCents - snap.DiscountCents
	return snap
}

// DiscountCode returns the currently applied code, empty when none.
func (e *Engine) DiscountCode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discount
}

// TotalItems is the sum of quantities across all lines.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, l := range e.lines {
		total += l.Quantity
	}
	return total
}

// SubtotalCents is the sum of price times quantity across all lines.
func (e *Engine) SubtotalCents() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subtotal()
}

// DiscountCents is the applied percentage of the current subtotal. Because
// it is derived on read, it can never exceed the subtotal.
func (e *Engine) DiscountCents() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subtotal() * e.discountPct / 100
}

// TotalCents is subtotal minus discount.
func (e *Engine) TotalCents() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := e.subtotal()
	return sub - sub*e.discountPct/100
}

func (e *Engine) subtotal() int64 {
	var sub int64
	for _, l := range e.lines {
		sub += l.TotalCents()
	}
	return sub
}

func (e *Engine) firstKey(productID string) (string, bool) {
	for _, l := range e.lines {
		if l.ProductID == productID {
			return l.Key(), true
		}
	}
	return "", false
}

// sync writes the current line list through to both stores. Failures are
// logged and swallowed; no retry, no rollback. Callers must hold e.mu.
func (e *Engine) sync(ctx context.Context) {
	snapshot := domain.CloneLines(e.lines)
	if e.local != nil {
		if err := e.local.Save(snapshot); err != nil {
			e.logf("cart: local save failed: %v", err)
		}
	}
	if e.session.Authenticated && e.remote != nil {
		if err := e.remote.Replace(ctx, snapshot); err != nil {
			e.logf("cart: server sync failed: %v", err)
		}
	}
}

func (e *Engine) loadLocal() []domain.CartLine {
	if e.local == nil {
		return nil
	}
	lines, err := e.local.Load()
	if err != nil {
		e.logf("cart: local cache unreadable, starting empty: %v", err)
		return nil
	}
	return domain.CloneLines(lines)
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
