package downloader

import (
	"context"
	"sync"
	"time"
)

// Caches downloaded responses in memory. Used for metadata that
// rarely changes upstream, e.g. direction and route lookups shared by
// several stops.
type Memory struct {
	mutex sync.Mutex
	cache map[string]memoryEntry

	TimeNow func() time.Time

	// Performs the actual request. Defaults to HTTPGet.
	Fetch func(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error)
}

func NewMemory() *Memory {
	return &Memory{
		cache:   make(map[string]memoryEntry),
		TimeNow: time.Now,
		Fetch:   HTTPGet,
	}
}

type memoryEntry struct {
	data       []byte
	expiration time.Time
}

func (d *Memory) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		d.mutex.Lock()
		entry, ok := d.cache[url]
		d.mutex.Unlock()

		if ok && entry.expiration.After(d.TimeNow()) {
			return entry.data, nil
		}
	}

	body, err := d.Fetch(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.mutex.Lock()
		d.cache[url] = memoryEntry{
			data:       body,
			expiration: d.TimeNow().Add(options.CacheTTL),
		}
		d.mutex.Unlock()
	}

	return body, nil
}
