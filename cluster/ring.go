package cluster

import (
	"sync"

	"github.com/buraksezer/consistent"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"
)

type hasher struct{}

func (h hasher) Sum64(data []byte) uint64 {
	return murmur3.Sum64(data)
}

type RingConfig struct {
	PartitionCount int
}

type Member string

func (m Member) String() string {
	return string(m)
}

// Ring maps keys (flow node ids, invocation ids) to storage partitions and
// partitions to owning members.
type Ring struct {
	RingConfig
	hring   *consistent.Consistent
	members map[string]Member
	mu      sync.RWMutex
}

func NewRing(c RingConfig) *Ring {
	if c.PartitionCount <= 0 {
		c.PartitionCount = 1
	}
	cfg := consistent.Config{
		PartitionCount:    c.PartitionCount,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            hasher{},
	}
	return &Ring{
		RingConfig: c,
		hring:      consistent.New(nil, cfg),
		members:    make(map[string]Member),
	}
}

func (r *Ring) Join(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[name]; ok {
		return
	}
	logger.Info("adding member to ring", zap.String("member", name))
	r.members[name] = Member(name)
	r.hring.Add(Member(name))
}

func (r *Ring) Leave(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[name]; !ok {
		return
	}
	logger.Info("removing member from ring", zap.String("member", name))
	delete(r.members, name)
	r.hring.Remove(name)
}

func (r *Ring) GetPartition(key string) int {
	return r.hring.FindPartitionID([]byte(key))
}

func (r *Ring) GetPartitions() []int {
	partitions := make([]int, r.PartitionCount)
	for i := range partitions {
		partitions[i] = i
	}
	return partitions
}

// GetLocalPartitions lists the partitions owned by the member.
func (r *Ring) GetLocalPartitions(member string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	partitions := make([]int, 0)
	if len(r.members) == 0 {
		return partitions
	}
	for i := 0; i < r.PartitionCount; i++ {
		if r.hring.GetPartitionOwner(i).String() == member {
			partitions = append(partitions, i)
		}
	}
	return partitions
}
