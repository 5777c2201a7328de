package tokens

import (
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

var loaderOnce sync.Once

// useOfflineBPE makes tiktoken read its rank files from the embedded loader
// instead of downloading them.
func useOfflineBPE() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
}

type encoderEntry struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// encoderCache loads each encoding at most once and remembers failures.
type encoderCache struct {
	mu      sync.Mutex
	entries map[string]*encoderEntry
}

func newEncoderCache() *encoderCache {
	return &encoderCache{entries: make(map[string]*encoderEntry)}
}

func (c *encoderCache) get(encoding string) (*tiktoken.Tiktoken, error) {
	c.mu.Lock()
	entry, ok := c.entries[encoding]
	if !ok {
		entry = &encoderEntry{}
		c.entries[encoding] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		useOfflineBPE()
		defer func() {
			if r := recover(); r != nil {
				entry.enc, entry.err = nil, fmt.Errorf("load encoding %s: %v", encoding, r)
			}
		}()
		entry.enc, entry.err = tiktoken.GetEncoding(encoding)
	})
	return entry.enc, entry.err
}

// encode counts tokens with enc, converting a tokenizer panic into an error.
func encode(enc *tiktoken.Tiktoken, text string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("tokenizer panic: %v", r)
		}
	}()
	return len(enc.Encode(text, nil, nil)), nil
}

// EstimateTokens is the tokenizer-free fallback: one token per four characters, rounded up.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / 4))
}
