package mining

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WorkPackage is a unit of work handed out by the pool. A zero header marks it as void
type WorkPackage struct {
	Job        string
	Header     common.Hash
	Boundary   common.Hash
	Seed       common.Hash
	Epoch      int
	Block      int
	StartNonce uint64
	ExSizeBits uint8 // nonce bits reserved by the pool extranonce, 0 if none
	Difficulty float64
}

// NewEmptyWorkPackage returns a void package which matches no epoch
func NewEmptyWorkPackage() WorkPackage {
	return WorkPackage{Epoch: -1, Block: -1}
}

func (w WorkPackage) IsEmpty() bool {
	return w.Header == (common.Hash{})
}

func (w *WorkPackage) Void() {
	w.Header = common.Hash{}
}

func (w WorkPackage) String() string {
	if w.IsEmpty() {
		return "void"
	}
	return fmt.Sprintf("job %s epoch %d header %s", w.Job, w.Epoch, w.Header.TerminalString())
}

// Solution is a nonce reported by a device for a specific package
type Solution struct {
	Nonce      uint64
	MixHash    common.Hash
	Work       WorkPackage
	Timestamp  time.Time
	MinerIndex int
}

// Result of an ethash evaluation
type Result struct {
	Value   common.Hash
	MixHash common.Hash
}

type SolutionOutcome uint8

const (
	Accepted SolutionOutcome = iota
	Rejected
	Wasted
	Failed
)

func (o SolutionOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Wasted:
		return "wasted"
	case Failed:
		return "failed"
	}
	return "unknown"
}
