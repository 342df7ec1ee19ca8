package redis

import (
	"fmt"
	"strconv"
	"strings"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/flowrt/cluster"
)

type baseDao struct {
	redisClient rd.UniversalClient
	namespace   string
	ring        *cluster.Ring
}

func newBaseDao(conf Config, ring *cluster.Ring) *baseDao {
	redisClient := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs:    conf.Addrs,
		PoolSize: conf.PoolSize,
		Password: conf.Password,
	})
	return &baseDao{
		redisClient: redisClient,
		namespace:   conf.Namespace,
		ring:        ring,
	}
}

func (bs *baseDao) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", bs.namespace, strings.Join(args, ":"))
}

func (bs *baseDao) getPartition(key string) string {
	return strconv.Itoa(bs.ring.GetPartition(key))
}
