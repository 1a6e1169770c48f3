package volition

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stretchr/testify/suite"
)

type CoreSuite struct {
	suite.Suite
	store *MemoryStore
	now   time.Time
}

func TestCoreSuite(t *testing.T) {
	suite.Run(t, new(CoreSuite))
}

func (s *CoreSuite) SetupTest() {
	s.store = NewMemoryStore(0)
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// clock hands the engine the suite's controllable instant.
func (s *CoreSuite) clock() time.Time {
	return s.now
}

func (s *CoreSuite) newCore(opts ...Option) *Core {
	base := []Option{WithStore(s.store), WithClock(s.clock)}
	return New(append(base, opts...)...)
}

func (s *CoreSuite) TestAcceptance() {
	core := s.newCore()

	result := core.HandleIntent("U1", "T1", "hello", "cid1")

	s.True(result.Accepted)
	s.Equal(msgAccepted, result.Message)
	s.Empty(result.Reason)
	s.Equal(1, s.store.Size())

	s.Require().NotEmpty(result.Memory)
	s.Equal(IntentRecord{
		UserID:        "U1",
		TeamID:        "T1",
		Text:          "hello",
		Timestamp:     s.now,
		CorrelationID: "cid1",
	}, result.Memory[0])
}

func (s *CoreSuite) TestTrustedWorkspaces() {
	s.Run("untrusted workspace rejected without append", func() {
		core := s.newCore(WithTrustedWorkspaces("T1"))

		result := core.HandleIntent("U1", "T2", "hello", "cid1")

		s.False(result.Accepted)
		s.Equal(ReasonUntrustedWorkspace, result.Reason)
		s.Equal(0, s.store.Size())
	})

	s.Run("member workspace passes", func() {
		core := s.newCore(WithTrustedWorkspaces("T1", "T9"))
		result := core.HandleIntent("U1", "T9", "hello", "cid1")
		s.True(result.Accepted)
	})

	s.Run("empty set trusts any workspace", func() {
		core := s.newCore()
		result := core.HandleIntent("U1", "", "hello", "cid1")
		s.True(result.Accepted)
	})

	s.Run("blank ids do not restrict the set", func() {
		core := s.newCore(WithTrustedWorkspaces("", "  "))
		result := core.HandleIntent("U1", "T2", "hello", "cid1")
		s.True(result.Accepted)
	})
}

func (s *CoreSuite) TestDuplicateSuppression() {
	core := s.newCore(WithDuplicateWindow(5*time.Minute), WithCooldown(45*time.Second))

	first := core.HandleIntent("U1", "T1", "X", "cid1")
	s.Require().True(first.Accepted)

	s.Run("same text inside window rejected", func() {
		s.now = s.now.Add(60 * time.Second)
		result := core.HandleIntent("U1", "T1", "X", "cid2")

		s.False(result.Accepted)
		s.Equal(ReasonDuplicate, result.Reason)
		s.Equal(msgDuplicate, result.Message)
		s.Equal(1, s.store.Size())
	})

	s.Run("whitespace variants still count as duplicates", func() {
		result := core.HandleIntent("U1", "T1", "  X  ", "cid3")
		s.False(result.Accepted)
		s.Equal(ReasonDuplicate, result.Reason)
	})

	s.Run("duplicate wins the tie against cooldown", func() {
		// Inside both windows; the duplicate rule is checked first.
		s.now = s.now.Add(-50 * time.Second)
		result := core.HandleIntent("U1", "T1", "X", "cid4")
		s.Equal(ReasonDuplicate, result.Reason)
		s.now = s.now.Add(50 * time.Second)
	})

	s.Run("same text after window is a fresh intent", func() {
		s.now = s.now.Add(10 * time.Minute)
		result := core.HandleIntent("U1", "T1", "X", "cid5")
		s.True(result.Accepted)
		s.Equal(2, s.store.Size())
	})
}

func (s *CoreSuite) TestCooldown() {
	core := s.newCore(WithDuplicateWindow(5*time.Minute), WithCooldown(45*time.Second))

	first := core.HandleIntent("U1", "T1", "X", "cid1")
	s.Require().True(first.Accepted)

	s.Run("different text inside cooldown rejected with remaining seconds", func() {
		s.now = s.now.Add(20 * time.Second)
		result := core.HandleIntent("U1", "T1", "Y", "cid2")

		s.False(result.Accepted)
		s.Equal(ReasonCooldown, result.Reason)
		s.Contains(result.Message, "25 more seconds")
		s.Equal(1, s.store.Size())
	})

	s.Run("boundary instant still rejects", func() {
		s.now = s.now.Add(25 * time.Second) // exactly 45s after the accept
		result := core.HandleIntent("U1", "T1", "Y", "cid3")
		s.Equal(ReasonCooldown, result.Reason)
		s.Contains(result.Message, "0 more seconds")
	})

	s.Run("other users are unaffected", func() {
		result := core.HandleIntent("U2", "T1", "Y", "cid4")
		s.True(result.Accepted)
	})

	s.Run("cooldown expiry admits the intent", func() {
		s.now = s.now.Add(46 * time.Second)
		result := core.HandleIntent("U1", "T1", "Y", "cid5")
		s.True(result.Accepted)
	})
}

func (s *CoreSuite) TestMemorySnapshot() {
	core := s.newCore(WithTrustedWorkspaces("T1"))

	s.Run("rejection returns unchanged history", func() {
		accepted := core.HandleIntent("U1", "T1", "hello", "cid1")
		s.Require().True(accepted.Accepted)

		rejected := core.HandleIntent("U1", "T2", "other", "cid2")
		s.False(rejected.Accepted)
		s.Equal(accepted.Memory, rejected.Memory)
	})

	s.Run("acceptance shows its own record first", func() {
		s.now = s.now.Add(time.Minute)
		result := core.HandleIntent("U2", "T1", "deploy", "cid3")
		s.Require().True(result.Accepted)
		s.Require().Len(result.Memory, 2)
		s.Equal("deploy", result.Memory[0].Text)
		s.Equal("hello", result.Memory[1].Text)
	})
}

// A burst of concurrent intents for one user may admit only a single record:
// the engine serializes its read-then-append sequence.
func (s *CoreSuite) TestConcurrentAdmission() {
	core := s.newCore(WithCooldown(45 * time.Second))

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		n := i
		g.Go(func() error {
			core.HandleIntent("U1", "T1", fmt.Sprintf("intent %d", n), fmt.Sprintf("cid%d", n))
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(1, s.store.Size())
}

func (s *CoreSuite) TestDefaults() {
	core := New(WithClock(s.clock))

	first := core.HandleIntent("U1", "T1", "hello", "cid1")
	s.True(first.Accepted)

	// Inside the default 20s cooldown.
	s.now = s.now.Add(10 * time.Second)
	second := core.HandleIntent("U1", "T1", "other", "cid2")
	s.Equal(ReasonCooldown, second.Reason)

	// Past the cooldown but inside the default 3m duplicate window.
	s.now = s.now.Add(50 * time.Second)
	third := core.HandleIntent("U1", "T1", "hello", "cid3")
	s.Equal(ReasonDuplicate, third.Reason)
}
