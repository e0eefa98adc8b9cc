package cache

// Store is a single cache tier. Keys are caller keys; durable
// implementations apply Namespace themselves.
type Store interface {
	Get(key string) (Entry, bool, error)
	Put(key string, entry Entry) error
	Delete(key string) error
	Clear() error
	// Keys returns the full keys starting with prefix, in no particular order.
	Keys(prefix string) ([]string, error)
}
