package memory

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"github.com/patrickmn/go-cache"
)

var _ persistence.Storage = new(memoryStorage)

type memoryStorage struct {
	work       *cache.Cache
	flowNodes  *cache.Cache
	connectors *cache.Cache
}

func NewMemoryStorage(cleanupInterval time.Duration) *memoryStorage {
	return &memoryStorage{
		work:       cache.New(cache.NoExpiration, cleanupInterval),
		flowNodes:  cache.New(cache.NoExpiration, cleanupInterval),
		connectors: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (s *memoryStorage) SaveWork(rec model.WorkRecord) error {
	s.work.Set(rec.InvocationID, rec, cache.NoExpiration)
	return nil
}

func (s *memoryStorage) DeleteWork(invocationID string) error {
	s.work.Delete(invocationID)
	return nil
}

// ListPendingWork filters on the partition the scheduler recorded on each
// record.
func (s *memoryStorage) ListPendingWork(partitions []int) ([]model.WorkRecord, error) {
	var wanted map[int]struct{}
	if partitions != nil {
		wanted = make(map[int]struct{}, len(partitions))
		for _, p := range partitions {
			wanted[p] = struct{}{}
		}
	}
	items := s.work.Items()
	records := make([]model.WorkRecord, 0, len(items))
	for _, item := range items {
		rec := item.Object.(model.WorkRecord)
		if wanted != nil {
			if _, ok := wanted[rec.Partition]; !ok {
				continue
			}
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].NextAttemptAt.Before(records[j].NextAttemptAt)
	})
	return records, nil
}

func (s *memoryStorage) SaveFlowNodeInstance(fni model.FlowNodeInstance) error {
	s.flowNodes.Set(strconv.FormatInt(fni.ID, 10), fni, cache.NoExpiration)
	return nil
}

func (s *memoryStorage) GetFlowNodeInstance(id int64) (*model.FlowNodeInstance, error) {
	key := strconv.FormatInt(id, 10)
	v, ok := s.flowNodes.Get(key)
	if !ok {
		return nil, persistence.NotFoundError{Entity: persistence.ENTITY_FLOW_NODE, ID: key}
	}
	fni := v.(model.FlowNodeInstance)
	return &fni, nil
}

func (s *memoryStorage) DeleteFlowNodeInstance(id int64) error {
	s.flowNodes.Delete(strconv.FormatInt(id, 10))
	return nil
}

func (s *memoryStorage) SaveConnector(c model.ConnectorInstance) error {
	key := fmt.Sprintf("%d:%d", c.FlowNodeInstanceID, c.ID)
	s.connectors.Set(key, c, cache.NoExpiration)
	return nil
}

func (s *memoryStorage) GetConnectorsOf(flowNodeInstanceID int64) ([]model.ConnectorInstance, error) {
	var connectors []model.ConnectorInstance
	for _, item := range s.connectors.Items() {
		c := item.Object.(model.ConnectorInstance)
		if c.FlowNodeInstanceID == flowNodeInstanceID {
			connectors = append(connectors, c)
		}
	}
	sort.Slice(connectors, func(i, j int) bool {
		return connectors[i].ID < connectors[j].ID
	})
	return connectors, nil
}

func (s *memoryStorage) Close() error {
	s.work.Flush()
	s.flowNodes.Flush()
	s.connectors.Flush()
	return nil
}
