package services

import (
	"context"
	"hash/fnv"
	"sync"
)

const lockShards = 64

// UserLocks serializes mutations per user id. Different users never contend on
// the same lock; the shard mutexes only guard the bookkeeping maps.
type UserLocks struct {
	shards [lockShards]lockShard
}

type lockShard struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	ch   chan struct{}
	refs int
}

func NewUserLocks() *UserLocks {
	l := &UserLocks{}
	for i := range l.shards {
		l.shards[i].locks = make(map[string]*userLock)
	}
	return l
}

// Lock blocks until the caller holds userID's lock or ctx is done. A context
// that is already cancelled never acquires the lock.
func (l *UserLocks) Lock(ctx context.Context, userID string) (unlock func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shard := l.shard(userID)

	shard.mu.Lock()
	ul, ok := shard.locks[userID]
	if !ok {
		ul = &userLock{ch: make(chan struct{}, 1)}
		shard.locks[userID] = ul
	}
	ul.refs++
	shard.mu.Unlock()

	select {
	case ul.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-ul.ch
				shard.release(userID, ul)
			})
		}, nil
	case <-ctx.Done():
		shard.release(userID, ul)
		return nil, ctx.Err()
	}
}

// Held reports how many users currently have a holder or waiter. For tests.
func (l *UserLocks) Held() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.locks)
		s.mu.Unlock()
	}
	return n
}

func (l *UserLocks) shard(userID string) *lockShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &l.shards[h.Sum32()%lockShards]
}

func (s *lockShard) release(userID string, ul *userLock) {
	s.mu.Lock()
	ul.refs--
	if ul.refs == 0 {
		delete(s.locks, userID)
	}
	s.mu.Unlock()
}
