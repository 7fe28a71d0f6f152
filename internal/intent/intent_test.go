package intent

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foroline.gr/foroline-web/internal/params"
)

// memStore is a test double for the session-backed slot.
type memStore struct {
	rec    Record
	filled bool
	clears int
}

func (m *memStore) Read() (Record, bool) { return m.rec, m.filled }
func (m *memStore) Write(r Record)       { m.rec, m.filled = r, true }
func (m *memStore) Clear()               { m.rec, m.filled = Record{}, false; m.clears++ }

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestPersistWritesBothRails(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	c := NewController(st, fixedClock(start))

	q := c.Persist(1000)

	it, err := params.ParseOrderIntent(q)
	require.NoError(t, err)
	assert.Equal(t, 1000, it.AmountCents)
	assert.Equal(t, start.UnixMilli(), it.CreatedAt)

	rec, ok := st.Read()
	require.True(t, ok)
	assert.Equal(t, it.AmountCents, rec.AmountCents)
	assert.Equal(t, it.CreatedAt, rec.CreatedAt)
	assert.Equal(t, it.CreatedAt+params.ConfirmWindow.Milliseconds(), rec.ExpiresAt)
}

// Scenario: the user subscribes while logged out and returns authenticated
// half a second later with the same URL parameters.
func TestResumeFreshAutoResumes(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	c := NewController(st, fixedClock(start))
	q := c.Persist(1000)

	c = NewController(st, fixedClock(start.Add(500*time.Millisecond)))
	d := c.Resume(q)

	assert.Equal(t, ActionAutoResume, d.Action)
	assert.Equal(t, 1000, d.AmountCents)
	_, ok := st.Read()
	assert.False(t, ok, "slot must be cleared on auto-resume")
}

// Scenario: the consumed URL is loaded again via refresh or back-navigation
// while still inside the fresh window. The slot was cleared on the first
// resume, so the second pass must not resume anything.
func TestResumeFreshConsumedURLDoesNotReplay(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	c := NewController(st, fixedClock(start.Add(time.Second)))
	q := c.Persist(500)

	first := c.Resume(q)
	require.Equal(t, ActionAutoResume, first.Action)

	second := c.Resume(q)
	assert.Equal(t, ActionNone, second.Action)
}

// Scenario: a fresh URL arrives without a matching slot, for example a link
// pasted into another browser. Nothing resumes.
func TestResumeFreshWithoutStoredRecord(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	it := params.OrderIntent{AmountCents: 500, CreatedAt: start.UnixMilli()}

	st := &memStore{}
	c := NewController(st, fixedClock(start.Add(time.Second)))
	d := c.Resume(it.Values())

	assert.Equal(t, ActionNone, d.Action)
}

// Scenario: the return happens five minutes later; the stored record still
// matches the URL pair, so the user is asked before the purchase replays.
func TestResumeStaleMatchingAsksConfirmation(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	c := NewController(st, fixedClock(start))
	q := c.Persist(1000)

	c = NewController(st, fixedClock(start.Add(5*time.Minute)))
	d := c.Resume(q)

	assert.Equal(t, ActionAskConfirmation, d.Action)
	assert.Equal(t, 1000, d.AmountCents)
	_, ok := st.Read()
	assert.True(t, ok, "slot survives until the dialog resolves")

	// explicit confirmation resumes order creation and consumes the slot
	d = c.Confirm(d.AmountCents)
	assert.Equal(t, ActionAutoResume, d.Action)
	assert.Equal(t, 1000, d.AmountCents)
	_, ok = st.Read()
	assert.False(t, ok)
}

// Scenario: the return happens over an hour later. Nothing resumes and all
// state is gone.
func TestResumeExpiredDiscards(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	c := NewController(st, fixedClock(start))
	q := c.Persist(500)

	c = NewController(st, fixedClock(start.Add(4000*time.Second)))
	d := c.Resume(q)

	assert.Equal(t, ActionNone, d.Action)
	_, ok := st.Read()
	assert.False(t, ok)
}

func TestResumeStaleWithoutStoredRecord(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	it := params.OrderIntent{AmountCents: 1000, CreatedAt: start.UnixMilli()}

	st := &memStore{}
	c := NewController(st, fixedClock(start.Add(5*time.Minute)))
	d := c.Resume(it.Values())

	assert.Equal(t, ActionNone, d.Action, "a shared URL alone must not replay a purchase")
}

func TestResumeStaleMismatchedRecord(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	NewController(st, fixedClock(start)).Persist(500)

	// URL carries a different amount than the slot
	it := params.OrderIntent{AmountCents: 1000, CreatedAt: start.UnixMilli()}
	c := NewController(st, fixedClock(start.Add(5*time.Minute)))
	d := c.Resume(it.Values())

	assert.Equal(t, ActionNone, d.Action)
	_, ok := st.Read()
	assert.False(t, ok, "mismatch clears the slot")
}

func TestResumeInvalidParamsClearsState(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	st := &memStore{}
	c := NewController(st, fixedClock(start))
	c.Persist(500)

	d := c.Resume(url.Values{"amount": {"750"}, "createdAt": {"oops"}})

	assert.Equal(t, ActionNone, d.Action)
	_, ok := st.Read()
	assert.False(t, ok)
}

func TestCleanupIsIdempotent(t *testing.T) {
	st := &memStore{}
	c := NewController(st, nil)
	c.Persist(500)

	c.Discard()
	c.Discard()

	assert.Equal(t, 2, st.clears)
	_, ok := st.Read()
	assert.False(t, ok)
}

func TestConfirmRejectsUnknownAmount(t *testing.T) {
	st := &memStore{}
	c := NewController(st, nil)
	d := c.Confirm(750)
	assert.Equal(t, ActionNone, d.Action)
}
