package volition

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDuplicateWindow suppresses exact repeats of a user's last intent.
	DefaultDuplicateWindow = 3 * time.Minute

	// DefaultCooldown is the minimum gap between distinct intents per user.
	DefaultCooldown = 20 * time.Second
)

// Messages rendered back to chat users. Rejections are normal outcomes,
// not errors, so they carry human wording rather than error codes.
const (
	msgUntrusted = "I am scoped to trusted workspaces only. Ask an admin to add this workspace to TRUSTED_WORKSPACE_IDS."
	msgDuplicate = "I already have that request on my queue."
	msgAccepted  = "Intent acknowledged. Logging it to my volition ledger now."
)

// Core is the admission engine. One instance backed by one Store serves all
// inbound messages for the process; HandleIntent runs as a single critical
// section so concurrent calls for the same user cannot both slip past the
// duplicate and cooldown gates.
type Core struct {
	mu              sync.Mutex
	store           Store
	trusted         map[string]struct{}
	duplicateWindow time.Duration
	cooldown        time.Duration
	clock           Clock
	logger          *slog.Logger
	rules           []rule
}

// evaluation carries the per-call state shared across the rule chain.
// The clock is read once at the start of a call; every comparison within
// the call reuses that instant.
type evaluation struct {
	userID     string
	teamID     string
	text       string
	now        time.Time
	last       IntentRecord
	hasLast    bool
	lastLoaded bool
}

// rejection is a matched admission rule's negative outcome.
type rejection struct {
	reason  RejectReason
	message string
}

// rule checks one admission predicate. A nil return passes the intent to
// the next rule; the first non-nil rejection short-circuits the chain.
type rule func(ev *evaluation) *rejection

// Option configures a Core.
type Option func(*Core)

// WithStore replaces the default in-memory ledger.
func WithStore(store Store) Option {
	return func(c *Core) { c.store = store }
}

// WithTrustedWorkspaces restricts admission to the given workspace ids.
// An empty set trusts every workspace.
func WithTrustedWorkspaces(ids ...string) Option {
	return func(c *Core) {
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				c.trusted[id] = struct{}{}
			}
		}
	}
}

// WithDuplicateWindow overrides the duplicate suppression window.
func WithDuplicateWindow(d time.Duration) Option {
	return func(c *Core) { c.duplicateWindow = d }
}

// WithCooldown overrides the per-user cooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *Core) { c.cooldown = d }
}

// WithClock injects a deterministic clock for tests.
func WithClock(clock Clock) Option {
	return func(c *Core) { c.clock = clock }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) { c.logger = logger }
}

// New constructs an admission engine. Every dependency has a production
// default, mirroring how little configuration the engine actually needs.
func New(opts ...Option) *Core {
	c := &Core{
		store:           NewMemoryStore(DefaultCapacity),
		trusted:         make(map[string]struct{}),
		duplicateWindow: DefaultDuplicateWindow,
		cooldown:        DefaultCooldown,
		clock:           func() time.Time { return time.Now().UTC() },
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Ordered chain: trust, then duplicate, then cooldown. The duplicate
	// rule runs first so an exact repeat inside both windows reports as a
	// duplicate rather than a cooldown.
	c.rules = []rule{c.checkTrust, c.checkDuplicate, c.checkCooldown}
	return c
}

// HandleIntent admits or rejects one intent. Rejections come back as normal
// results; the method never fails. The returned Memory snapshot reflects
// ledger state after any append performed by this call.
func (c *Core) HandleIntent(userID, teamID, text, correlationID string) IntentResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := &evaluation{userID: userID, teamID: teamID, text: text, now: c.clock()}

	for _, r := range c.rules {
		rej := r(ev)
		if rej == nil {
			continue
		}
		c.logger.Info("intent rejected",
			"reason", string(rej.reason),
			"user_id", userID,
			"team_id", teamID,
			"correlation_id", correlationID,
		)
		return IntentResult{
			Accepted: false,
			Message:  rej.message,
			Reason:   rej.reason,
			Memory:   c.store.Recent(0),
		}
	}

	record := IntentRecord{
		UserID:        userID,
		TeamID:        teamID,
		Text:          text,
		Timestamp:     ev.now,
		CorrelationID: correlationID,
	}
	c.store.Append(record)

	c.logger.Info("intent accepted",
		"user_id", userID,
		"team_id", teamID,
		"correlation_id", correlationID,
	)
	return IntentResult{
		Accepted: true,
		Message:  msgAccepted,
		Memory:   c.store.Recent(0),
	}
}

// lastFor memoizes the ledger lookup so the duplicate and cooldown rules
// share a single read.
func (c *Core) lastFor(ev *evaluation) (IntentRecord, bool) {
	if !ev.lastLoaded {
		ev.last, ev.hasLast = c.store.LastForUser(ev.userID)
		ev.lastLoaded = true
	}
	return ev.last, ev.hasLast
}

// checkTrust gates on the allow-listed workspace set.
func (c *Core) checkTrust(ev *evaluation) *rejection {
	if len(c.trusted) == 0 {
		return nil
	}
	if _, ok := c.trusted[ev.teamID]; ok {
		return nil
	}
	return &rejection{reason: ReasonUntrustedWorkspace, message: msgUntrusted}
}

// checkDuplicate rejects an exact repeat of the user's last intent inside
// the duplicate window. Texts are compared after trimming whitespace.
func (c *Core) checkDuplicate(ev *evaluation) *rejection {
	last, ok := c.lastFor(ev)
	if !ok {
		return nil
	}
	if strings.TrimSpace(last.Text) != strings.TrimSpace(ev.text) {
		return nil
	}
	if ev.now.Sub(last.Timestamp) > c.duplicateWindow {
		return nil
	}
	return &rejection{reason: ReasonDuplicate, message: msgDuplicate}
}

// checkCooldown rejects any intent arriving inside the per-user cooldown,
// reporting the remaining whole seconds truncated toward zero.
func (c *Core) checkCooldown(ev *evaluation) *rejection {
	last, ok := c.lastFor(ev)
	if !ok {
		return nil
	}
	elapsed := ev.now.Sub(last.Timestamp)
	if elapsed > c.cooldown {
		return nil
	}
	remaining := int((c.cooldown - elapsed) / time.Second)
	return &rejection{
		reason:  ReasonCooldown,
		message: fmt.Sprintf("Hold on, give me about %d more seconds before sending another instruction.", remaining),
	}
}
