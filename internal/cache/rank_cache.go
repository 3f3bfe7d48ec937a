package cache

import (
	"strconv"
	"time"

	"tlb/internal/constants"

	"github.com/go-redis/redis"
)

// Entry is one member of a tournament day's ranking zset.
type Entry struct {
	PlayerID   string
	Score      int64
	AchievedAt time.Time
}

// rankEpoch bounds the achieved-at timestamp folded into a zset score.
const rankEpoch = int64(1) << 31

// MaxScore is the largest game score whose combined zset score is still
// integer-exact in a float64; ingest rejects anything above it.
const MaxScore = int64(1)<<22 - 1

// EncodeRankScore folds the tie-break into the zset score so redis descending
// order equals (score desc, first achieved asc): a higher game score always
// dominates, and between equal scores the earlier timestamp encodes higher.
func EncodeRankScore(score int64, achievedAt time.Time) float64 {
	ts := achievedAt.Unix()
	if ts < 0 {
		ts = 0
	}
	if ts >= rankEpoch {
		ts = rankEpoch - 1
	}
	// tie component is always < rankEpoch
	return float64(score)*float64(rankEpoch) + float64(rankEpoch-1-ts)
}

func DecodeRankScore(combined float64) int64 {
	return int64(combined) / rankEpoch
}

// RankCache is the disposable low-latency projection of per-day scores.
// It is constructed once per process and injected; an empty or absent key is
// a valid state meaning "rebuild from the durable store".
type RankCache struct {
	client *redis.Client
}

func NewRankCache(client *redis.Client) *RankCache {
	return &RankCache{client: client}
}

func (c *RankCache) ZAdd(day string, entry Entry) error {
	resp := c.client.ZAdd(constants.GetRankingKey(day), redis.Z{
		Score:  EncodeRankScore(entry.Score, entry.AchievedAt),
		Member: entry.PlayerID,
	})
	return resp.Err()
}

func (c *RankCache) ZRangeDesc(day string, offset, limit int64) ([]Entry, error) {
	res, err := c.client.ZRevRangeWithScores(constants.GetRankingKey(day), offset, offset+limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(res))
	for _, z := range res {
		playerID, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{PlayerID: playerID, Score: DecodeRankScore(z.Score)})
	}
	return entries, nil
}

func (c *RankCache) Count(day string) (int64, error) {
	return c.client.ZCard(constants.GetRankingKey(day)).Result()
}

// Rebuild replaces the whole day projection in one transaction, recording the
// member count so later reads can detect a partial or drifted cache.
func (c *RankCache) Rebuild(day string, entries []Entry, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.Del(constants.GetRankingKey(day))
	for _, entry := range entries {
		pipe.ZAdd(constants.GetRankingKey(day), redis.Z{
			Score:  EncodeRankScore(entry.Score, entry.AchievedAt),
			Member: entry.PlayerID,
		})
	}
	pipe.HSet(constants.GetMetaKey(day), "expected_count", int64(len(entries)))
	if ttl > 0 {
		pipe.Expire(constants.GetRankingKey(day), ttl)
		pipe.Expire(constants.GetMetaKey(day), ttl)
	}
	_, err := pipe.Exec()
	return err
}

// incrIfMetaExists refuses the increment when the meta hash is gone, e.g.
// after a cache flush. The count then stays behind the zset cardinality and
// the next read rebuilds from the store instead of trusting a partial zset.
var incrIfMetaExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
end
return 0
`)

// IncrExpectedCount keeps the meta count in step when a brand-new member is
// added outside a full rebuild.
func (c *RankCache) IncrExpectedCount(day string) error {
	return incrIfMetaExists.Run(c.client, []string{constants.GetMetaKey(day)}, "expected_count").Err()
}

func (c *RankCache) SetExpectedCount(day string, count int64) error {
	return c.client.HSet(constants.GetMetaKey(day), "expected_count", count).Err()
}

func (c *RankCache) ExpectedCount(day string) (int64, error) {
	val, err := c.client.HGet(constants.GetMetaKey(day), "expected_count").Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// BumpMarker advances the day's change marker. Racing writers may clobber each
// other, which is harmless: consumers only compare against last seen, and the
// wall clock keeps the value non-decreasing.
func (c *RankCache) BumpMarker(day string) error {
	return c.client.Set(constants.GetMarkerKey(day), time.Now().UnixNano(), 0).Err()
}

func (c *RankCache) Marker(day string) (int64, error) {
	return c.markerValue(constants.GetMarkerKey(day))
}

func (c *RankCache) BumpStatsMarker(day string) error {
	return c.client.Set(constants.GetStatsMarkerKey(day), time.Now().UnixNano(), 0).Err()
}

func (c *RankCache) StatsMarker(day string) (int64, error) {
	return c.markerValue(constants.GetStatsMarkerKey(day))
}

func (c *RankCache) markerValue(key string) (int64, error) {
	val, err := c.client.Get(key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *RankCache) SetStats(day string, data []byte, ttl time.Duration) error {
	return c.client.Set(constants.GetStatsKey(day), data, ttl).Err()
}

func (c *RankCache) Stats(day string) ([]byte, error) {
	val, err := c.client.Get(constants.GetStatsKey(day)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// ExpireDay bounds memory once a tournament has ended; the durable store
// remains authoritative so losing these keys is safe.
func (c *RankCache) ExpireDay(day string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.Expire(constants.GetRankingKey(day), ttl)
	pipe.Expire(constants.GetMetaKey(day), ttl)
	pipe.Expire(constants.GetMarkerKey(day), ttl)
	pipe.Expire(constants.GetStatsMarkerKey(day), ttl)
	pipe.Expire(constants.GetStatsKey(day), ttl)
	_, err := pipe.Exec()
	return err
}
