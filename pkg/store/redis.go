package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"holdem-server/pkg/holdem"
)

const (
	tableKeyPrefix   = "holdem:table:"
	tableSetKey      = "holdem:tables"
	lockKeyPrefix    = "holdem:lock:"
	buyInKeyPrefix   = "holdem:buyin:"
	redisDialTimeout = 5 * time.Second
)

// RedisConfig configures the Redis connection
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// saveScript writes the table only if the stored version matches
// Returns 1 on success, 0 on a version conflict, and -1 if the table is missing.
var saveScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "version")
if current == false then
	if ARGV[1] ~= "0" then
		return -1
	end
elseif current ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[1], "version", ARGV[2], "data", ARGV[3])
redis.call("SADD", KEYS[2], ARGV[4])
return 1
`)

// RedisStore keeps tables in Redis hashes
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore returns a store using the client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Load returns the table
func (r *RedisStore) Load(ctx context.Context, tableID string) (*holdem.Table, error) {
	data, err := r.client.HGet(ctx, tableKeyPrefix+tableID, "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("could not load table %s: %w", tableID, err)
	}

	var table holdem.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("could not decode table %s: %w", tableID, err)
	}

	return &table, nil
}

// Save writes the table with a compare-and-set on the version
func (r *RedisStore) Save(ctx context.Context, table *holdem.Table, expectedVersion int64) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}

	keys := []string{tableKeyPrefix + table.TableID, tableSetKey}
	res, err := saveScript.Run(ctx, r.client, keys,
		strconv.FormatInt(expectedVersion, 10),
		strconv.FormatInt(table.Version, 10),
		data,
		table.TableID,
	).Int()
	if err != nil {
		return fmt.Errorf("could not save table %s: %w", table.TableID, err)
	}

	switch res {
	case 1:
		return nil
	case 0:
		return ErrVersionConflict
	default:
		return ErrNotFound
	}
}

// List returns every table ID
func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, tableSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("could not list tables: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker built on SET NX PX
type RedisLocker struct {
	client     redis.UniversalClient
	instanceID string
}

// NewRedisLocker returns a new locker; instanceID prefixes lock tokens for debugging
func NewRedisLocker(client redis.UniversalClient, instanceID string) *RedisLocker {
	return &RedisLocker{client: client, instanceID: instanceID}
}

// Acquire waits for the lock
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lockKey := lockKeyPrefix + key
	token := fmt.Sprintf("%s:%s", r.instanceID, uuid.New().String())

	err := retry(ctx, func() (bool, error) {
		ok, err := r.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil && ctx.Err() == nil {
			return false, fmt.Errorf("could not acquire lock %s: %w", key, err)
		}

		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	return &redisLock{client: r.client, key: lockKey, token: token}, nil
}

type redisLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLock) Release(ctx context.Context) error {
	res, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("could not release lock: %w", err)
	}

	if res == 0 {
		return ErrLockNotHeld
	}

	return nil
}

// RedisReservations keeps buy-in keys in Redis
type RedisReservations struct {
	client redis.UniversalClient
}

// NewRedisReservations returns new reservations using the client
func NewRedisReservations(client redis.UniversalClient) *RedisReservations {
	return &RedisReservations{client: client}
}

// Reserve stores the reservation with SET NX, or returns the one already stored
func (r *RedisReservations) Reserve(ctx context.Context, res Reservation, ttl time.Duration) (Reservation, bool, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return Reservation{}, false, err
	}

	key := buyInKeyPrefix + res.Key
	ok, err := r.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return Reservation{}, false, fmt.Errorf("could not reserve buy-in: %w", err)
	}

	if ok {
		return res, true, nil
	}

	existing, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls
		return r.Reserve(ctx, res, ttl)
	} else if err != nil {
		return Reservation{}, false, fmt.Errorf("could not load buy-in: %w", err)
	}

	var stored Reservation
	if err := json.Unmarshal(existing, &stored); err != nil {
		return Reservation{}, false, fmt.Errorf("could not decode buy-in: %w", err)
	}

	return stored, false, nil
}

// Release forgets the key
func (r *RedisReservations) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, buyInKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("could not release buy-in: %w", err)
	}

	return nil
}
