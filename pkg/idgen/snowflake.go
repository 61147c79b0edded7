// Package idgen generates unique transaction numbers with a snowflake-style
// 64-bit layout: 41 bits of milliseconds since epoch, 10 bits of worker id,
// 12 bits of per-millisecond sequence.
package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	epoch          = int64(1704067200000) // 2024-01-01 00:00:00 UTC
	workerIDBits   = 10
	sequenceBits   = 12
	maxWorkerID    = -1 ^ (-1 << workerIDBits)
	maxSequence    = -1 ^ (-1 << sequenceBits)
	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

type Snowflake struct {
	mu        sync.Mutex
	timestamp int64
	workerID  int64
	sequence  int64
}

var (
	defaultGenerator *Snowflake
	once             sync.Once
)

// Init sets up the process-wide generator.
func Init(workerID int64) {
	once.Do(func() {
		if workerID < 0 || workerID > maxWorkerID {
			logrus.Fatalf("workerID must be between 0 and %d", maxWorkerID)
		}
		defaultGenerator = &Snowflake{workerID: workerID}
	})
}

// NextID returns the next unique id.
func NextID() int64 {
	if defaultGenerator == nil {
		Init(1)
	}
	return defaultGenerator.Generate()
}

func (s *Snowflake) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == s.timestamp {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// sequence exhausted for this millisecond, spin to the next
			for now <= s.timestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.timestamp = now

	return ((now - epoch) << timestampShift) |
		(s.workerID << workerIDShift) |
		s.sequence
}

// GenerateTransactionNo builds a ledger entry number like TXN20240115143052_12345678.
func GenerateTransactionNo() string {
	id := NextID()
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("TXN%s%08d", timestamp, id%100000000)
}

// GenerateDepositNo builds a deposit order number handed to payment gateways.
func GenerateDepositNo() string {
	id := NextID()
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("DEP%s%08d", timestamp, id%100000000)
}
