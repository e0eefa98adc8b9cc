package cache

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/pkg/timeutil"
)

/*
Responsibilities

- Serve reads from the fast tier and hydrate it from the durable tier
- Write through to both tiers
- Expire entries lazily on Get
- Hand every durable failure to the FailurePolicy

Reads never fail: a durable read error is recorded and treated as a miss.
Writes return whatever the FailurePolicy returns, which is always nil under
BestEffort.

All operations on one key are serialized, so durable writes for a key never
interleave and the last completed write wins. Clear excludes every other
operation while it runs.
*/

// DefaultTTL applies when neither Options nor the caller picks one.
const DefaultTTL = time.Hour

type Options struct {
	// Fast defaults to a new MemoryStore.
	Fast Store
	// Durable may be nil for memory-only caching.
	Durable Store
	// Policy defaults to BestEffort over Sink.
	Policy     FailurePolicy
	Clock      timeutil.Clock
	DefaultTTL time.Duration
	Metrics    *Metrics
	Sink       metadata.MetadataSink
}

type Tiered struct {
	fast       Store
	durable    Store
	policy     FailurePolicy
	clock      timeutil.Clock
	defaultTTL time.Duration
	metrics    *Metrics
	sink       metadata.MetadataSink

	clearMu sync.RWMutex
	keys    *keyedMutex
}

func NewTiered(opts Options) *Tiered {
	t := &Tiered{
		fast:       opts.Fast,
		durable:    opts.Durable,
		policy:     opts.Policy,
		clock:      opts.Clock,
		defaultTTL: opts.DefaultTTL,
		metrics:    opts.Metrics,
		sink:       opts.Sink,
		keys:       newKeyedMutex(),
	}
	if t.fast == nil {
		t.fast = NewMemoryStore()
	}
	if t.sink == nil {
		t.sink = metadata.NopSink{}
	}
	if t.policy == nil {
		t.policy = NewBestEffort(t.sink)
	}
	if t.clock == nil {
		t.clock = timeutil.SystemClock()
	}
	if t.defaultTTL <= 0 {
		t.defaultTTL = DefaultTTL
	}
	return t
}

func (t *Tiered) DefaultTTL() time.Duration {
	return t.defaultTTL
}

// HasDurable reports whether a durable tier is configured.
func (t *Tiered) HasDurable() bool {
	return t.durable != nil
}

// Set writes data under key in both tiers. ttl <= 0 means the default TTL.
func (t *Tiered) Set(key string, data json.RawMessage, typeTag string, ttl time.Duration) error {
	return t.write("Tiered.Set", key, data, typeTag, ttl)
}

// ForceSet overwrites key regardless of what is stored. It behaves like Set
// and exists so callers can state that intent.
func (t *Tiered) ForceSet(key string, data json.RawMessage, typeTag string, ttl time.Duration) error {
	return t.write("Tiered.ForceSet", key, data, typeTag, ttl)
}

func (t *Tiered) write(action string, key string, data json.RawMessage, typeTag string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = t.defaultTTL
	}
	now := t.clock.Now()
	entry := Entry{
		Data:      data,
		Timestamp: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
		Type:      typeTag,
	}

	unlock := t.lock(key)
	defer unlock()

	// The fast tier cannot fail for MemoryStore; other fast stores go
	// through the policy like the durable tier.
	if err := t.fast.Put(key, entry); err != nil {
		return t.policy.Handle(action, key, err)
	}
	t.sink.RecordCacheEvent(key, metadata.CacheWrite)

	if t.durable == nil {
		return nil
	}
	if err := t.durable.Put(key, entry); err != nil {
		t.metrics.durableFailure("put")
		return t.policy.Handle(action, key, err)
	}
	return nil
}

// Get returns the entry under key unless it is missing or expired. An
// expired entry is evicted from both tiers. A durable hit repopulates the
// fast tier.
func (t *Tiered) Get(key string) (Entry, bool) {
	unlock := t.lock(key)
	defer unlock()

	entry, tier, ok := t.lookup("Tiered.Get", key)
	if !ok {
		t.metrics.miss()
		t.sink.RecordCacheEvent(key, metadata.CacheMiss)
		return Entry{}, false
	}

	if entry.ExpiredAt(t.clock.Now()) {
		t.evict("Tiered.Get", key)
		t.metrics.expired()
		t.metrics.miss()
		t.sink.RecordCacheEvent(key, metadata.CacheExpired)
		return Entry{}, false
	}

	t.served(key, entry, tier)
	return entry, true
}

// GetStale is Get without the expiry check.
func (t *Tiered) GetStale(key string) (Entry, bool) {
	unlock := t.lock(key)
	defer unlock()

	entry, tier, ok := t.lookup("Tiered.GetStale", key)
	if !ok {
		t.metrics.miss()
		t.sink.RecordCacheEvent(key, metadata.CacheMiss)
		return Entry{}, false
	}

	if entry.ExpiredAt(t.clock.Now()) {
		t.metrics.stale()
		t.sink.RecordCacheEvent(key, metadata.CacheStale)
	}
	t.served(key, entry, tier)
	return entry, true
}

// Info describes key without hydrating, evicting or counting anything.
func (t *Tiered) Info(key string) Info {
	unlock := t.lock(key)
	defer unlock()

	entry, _, ok := t.lookup("Tiered.Info", key)
	if !ok {
		return Info{}
	}
	now := t.clock.Now()
	return Info{
		Exists:    true,
		Age:       now.Sub(time.UnixMilli(entry.Timestamp)),
		ExpiresIn: time.UnixMilli(entry.ExpiresAt).Sub(now),
		Expired:   entry.ExpiredAt(now),
	}
}

func (t *Tiered) Delete(key string) error {
	unlock := t.lock(key)
	defer unlock()

	return t.evict("Tiered.Delete", key)
}

// Clear empties both tiers. Foreign data sharing the durable storage is kept.
func (t *Tiered) Clear() error {
	t.clearMu.Lock()
	defer t.clearMu.Unlock()

	if err := t.fast.Clear(); err != nil {
		return t.policy.Handle("Tiered.Clear", "", err)
	}
	if t.durable == nil {
		return nil
	}
	if err := t.durable.Clear(); err != nil {
		t.metrics.durableFailure("clear")
		return t.policy.Handle("Tiered.Clear", "", err)
	}
	return nil
}

// ListKeysWithPrefix returns the sorted, de-duplicated key suffixes after
// prefix found in either tier.
func (t *Tiered) ListKeysWithPrefix(prefix string) ([]string, error) {
	t.clearMu.RLock()
	defer t.clearMu.RUnlock()

	seen := map[string]struct{}{}
	collect := func(keys []string) {
		for _, k := range keys {
			seen[strings.TrimPrefix(k, prefix)] = struct{}{}
		}
	}

	fastKeys, err := t.fast.Keys(prefix)
	if err != nil {
		if perr := t.policy.Handle("Tiered.ListKeysWithPrefix", prefix, err); perr != nil {
			return nil, perr
		}
	}
	collect(fastKeys)

	if t.durable != nil {
		durableKeys, err := t.durable.Keys(prefix)
		if err != nil {
			t.metrics.durableFailure("keys")
			if perr := t.policy.Handle("Tiered.ListKeysWithPrefix", prefix, err); perr != nil {
				return nil, perr
			}
		}
		collect(durableKeys)
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// lock takes the shared clear lock plus the per-key lock.
func (t *Tiered) lock(key string) func() {
	t.clearMu.RLock()
	release := t.keys.Lock(key)
	return func() {
		release()
		t.clearMu.RUnlock()
	}
}

// lookup finds key in the fast tier, then the durable tier. It never
// mutates either tier.
func (t *Tiered) lookup(action string, key string) (Entry, string, bool) {
	if entry, ok, err := t.fast.Get(key); err == nil && ok {
		return entry, tierMemory, true
	} else if err != nil {
		_ = t.policy.Handle(action, key, err)
	}

	if t.durable == nil {
		return Entry{}, "", false
	}
	entry, ok, err := t.durable.Get(key)
	if err != nil {
		t.metrics.durableFailure("get")
		_ = t.policy.Handle(action, key, err)
		return Entry{}, "", false
	}
	if !ok {
		return Entry{}, "", false
	}
	return entry, tierDurable, true
}

// served records a hit and hydrates the fast tier from a durable hit.
func (t *Tiered) served(key string, entry Entry, tier string) {
	t.metrics.hit(tier)
	if tier == tierDurable {
		t.sink.RecordCacheEvent(key, metadata.CacheHitDurable)
		if err := t.fast.Put(key, entry); err != nil {
			_ = t.policy.Handle("Tiered.hydrate", key, err)
		}
		return
	}
	t.sink.RecordCacheEvent(key, metadata.CacheHitMemory)
}

func (t *Tiered) evict(action string, key string) error {
	if err := t.fast.Delete(key); err != nil {
		return t.policy.Handle(action, key, err)
	}
	t.sink.RecordCacheEvent(key, metadata.CacheEvict)
	if t.durable == nil {
		return nil
	}
	if err := t.durable.Delete(key); err != nil {
		t.metrics.durableFailure("delete")
		return t.policy.Handle(action, key, err)
	}
	return nil
}
