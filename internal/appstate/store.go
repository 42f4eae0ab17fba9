package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Store persists State per user.
type Store interface {
	Load(ctx context.Context, userID uint) (State, error)
	Save(ctx context.Context, userID uint, s State) error
	// Update applies fn atomically with respect to other writers of the same user.
	Update(ctx context.Context, userID uint, fn func(State) State) (State, error)
}

const maxUpdateAttempts = 5

var ErrContention = errors.New("appstate: too many concurrent updates")

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(userID uint) string {
	return "state:" + strconv.FormatUint(uint64(userID), 10)
}

func decodeState(raw []byte) (State, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Load(ctx context.Context, userID uint) (State, error) {
	raw, err := r.client.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	return decodeState(raw)
}

func (r *RedisStore) Save(ctx context.Context, userID uint, s State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, stateKey(userID), raw, 0).Err()
}

// Update uses WATCH/MULTI so concurrent requests for one user do not lose writes.
func (r *RedisStore) Update(ctx context.Context, userID uint, fn func(State) State) (State, error) {
	key := stateKey(userID)
	var result State
	txf := func(tx *redis.Tx) error {
		current := State{}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if current, err = decodeState(raw); err != nil {
				return err
			}
		}

		next := fn(current)
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return State{}, ErrContention
}

// MemoryStore keeps state in process; used when Redis is not configured.
type MemoryStore struct {
	mu     sync.Mutex
	states map[uint]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[uint]State)}
}

func (m *MemoryStore) Load(_ context.Context, userID uint) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID].clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, userID uint, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = s.clone()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, userID uint, fn func(State) State) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := fn(m.states[userID])
	m.states[userID] = next.clone()
	return next, nil
}
