package redis

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/flowrt/cluster"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"github.com/mohitkumar/flowrt/util"
	"go.uber.org/zap"
)

const WORK_KEY string = "WORK"
const WORK_SCHEDULE_KEY string = "WORK_SCHEDULE"
const FLOW_NODE_KEY string = "FLOWNODE"
const CONNECTOR_KEY string = "CONNECTOR"

var _ persistence.Storage = new(redisStorage)

type Codecs struct {
	Work      util.EncoderDecoder[model.WorkRecord]
	FlowNode  util.EncoderDecoder[model.FlowNodeInstance]
	Connector util.EncoderDecoder[model.ConnectorInstance]
}

type redisStorage struct {
	*baseDao
	codecs Codecs
}

func NewRedisStorage(conf Config, ring *cluster.Ring, codecs Codecs) *redisStorage {
	return &redisStorage{
		baseDao: newBaseDao(conf, ring),
		codecs:  codecs,
	}
}

func (r *redisStorage) Ping(ctx context.Context) error {
	return r.redisClient.Ping(ctx).Err()
}

func (r *redisStorage) SaveWork(rec model.WorkRecord) error {
	partition := r.getPartition(rec.InvocationID)
	key := r.getNamespaceKey(WORK_KEY, partition)
	scheduleKey := r.getNamespaceKey(WORK_SCHEDULE_KEY, partition)
	data, err := r.codecs.Work.Encode(rec)
	if err != nil {
		return err
	}
	ctx := context.Background()
	_, err = r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.HSet(ctx, key, []string{rec.InvocationID, string(data)})
		pipe.ZAdd(ctx, scheduleKey, rd.Z{
			Score:  float64(rec.NextAttemptAt.UnixMilli()),
			Member: rec.InvocationID,
		})
		return nil
	})
	if err != nil {
		logger.Error("error in saving work record", zap.String("invocationId", rec.InvocationID), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) DeleteWork(invocationID string) error {
	partition := r.getPartition(invocationID)
	key := r.getNamespaceKey(WORK_KEY, partition)
	scheduleKey := r.getNamespaceKey(WORK_SCHEDULE_KEY, partition)
	ctx := context.Background()
	_, err := r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.HDel(ctx, key, invocationID)
		pipe.ZRem(ctx, scheduleKey, invocationID)
		return nil
	})
	if err != nil {
		logger.Error("error in deleting work record", zap.String("invocationId", invocationID), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// ListPendingWork returns the records of the given partitions, each partition
// ordered by next attempt time.
func (r *redisStorage) ListPendingWork(partitions []int) ([]model.WorkRecord, error) {
	ctx := context.Background()
	if partitions == nil {
		partitions = r.ring.GetPartitions()
	}
	pipe := r.redisClient.Pipeline()
	schedules := make([]*rd.StringSliceCmd, len(partitions))
	hashes := make([]*rd.StringSliceCmd, len(partitions))
	for i, p := range partitions {
		partition := strconv.Itoa(p)
		schedules[i] = pipe.ZRange(ctx, r.getNamespaceKey(WORK_SCHEDULE_KEY, partition), 0, -1)
		hashes[i] = pipe.HVals(ctx, r.getNamespaceKey(WORK_KEY, partition))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, rd.Nil) {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}

	var records []model.WorkRecord
	for i := range partitions {
		ids, err := schedules[i].Result()
		if err != nil && !errors.Is(err, rd.Nil) {
			return nil, persistence.StorageLayerError{Message: err.Error()}
		}
		values, err := hashes[i].Result()
		if err != nil && !errors.Is(err, rd.Nil) {
			return nil, persistence.StorageLayerError{Message: err.Error()}
		}
		byID := make(map[string]model.WorkRecord, len(values))
		for _, data := range values {
			rec, err := r.codecs.Work.Decode([]byte(data))
			if err != nil {
				logger.Error("skipping undecodable work record", zap.Error(err))
				continue
			}
			byID[rec.InvocationID] = *rec
		}
		for _, id := range ids {
			if rec, ok := byID[id]; ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

func (r *redisStorage) SaveFlowNodeInstance(fni model.FlowNodeInstance) error {
	id := strconv.FormatInt(fni.ID, 10)
	key := r.getNamespaceKey(FLOW_NODE_KEY, r.getPartition(id))
	data, err := r.codecs.FlowNode.Encode(fni)
	if err != nil {
		return err
	}
	if err := r.redisClient.HSet(context.Background(), key, []string{id, string(data)}).Err(); err != nil {
		logger.Error("error in saving flow node instance", zap.Int64("flowNodeInstanceId", fni.ID), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) GetFlowNodeInstance(id int64) (*model.FlowNodeInstance, error) {
	field := strconv.FormatInt(id, 10)
	key := r.getNamespaceKey(FLOW_NODE_KEY, r.getPartition(field))
	data, err := r.redisClient.HGet(context.Background(), key, field).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Entity: persistence.ENTITY_FLOW_NODE, ID: field}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return r.codecs.FlowNode.Decode([]byte(data))
}

func (r *redisStorage) DeleteFlowNodeInstance(id int64) error {
	field := strconv.FormatInt(id, 10)
	key := r.getNamespaceKey(FLOW_NODE_KEY, r.getPartition(field))
	if err := r.redisClient.HDel(context.Background(), key, field).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) SaveConnector(c model.ConnectorInstance) error {
	key := r.getNamespaceKey(CONNECTOR_KEY, strconv.FormatInt(c.FlowNodeInstanceID, 10))
	data, err := r.codecs.Connector.Encode(c)
	if err != nil {
		return err
	}
	if err := r.redisClient.HSet(context.Background(), key, []string{strconv.FormatInt(c.ID, 10), string(data)}).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) GetConnectorsOf(flowNodeInstanceID int64) ([]model.ConnectorInstance, error) {
	key := r.getNamespaceKey(CONNECTOR_KEY, strconv.FormatInt(flowNodeInstanceID, 10))
	values, err := r.redisClient.HGetAll(context.Background(), key).Result()
	if err != nil && !errors.Is(err, rd.Nil) {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	connectors := make([]model.ConnectorInstance, 0, len(values))
	for _, v := range values {
		c, err := r.codecs.Connector.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, *c)
	}
	return connectors, nil
}

func (r *redisStorage) Close() error {
	return r.redisClient.Close()
}
