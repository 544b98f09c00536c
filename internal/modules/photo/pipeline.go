package photo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/platform/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errEmptyPhoto = errors.New("empty image buffer")

// DefaultPutTimeout bounds a single object write.
const DefaultPutTimeout = 30 * time.Second

// Pipeline uploads batches of pending photos. A failed photo is dropped from the
// result and reported; it never aborts the batch and is never retried.
type Pipeline struct {
	storage     Storage
	concurrency int
	log         *zap.Logger
	now         func() time.Time
	putTimeout  time.Duration
}

func NewPipeline(storage Storage, concurrency int, log *zap.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{storage: storage, concurrency: concurrency, log: log, now: time.Now, putTimeout: DefaultPutTimeout}
}

// Upload stores every photo under a unique key derived from ownerID and returns
// once all uploads have settled.
func (p *Pipeline) Upload(ctx context.Context, ownerID string, photos []Pending) Result {
	if len(photos) == 0 {
		return Result{}
	}

	stamp := p.now().UnixMilli()
	owner := sanitizeOwner(ownerID)

	resolved := make([]*Resolved, len(photos))
	failed := make([]*Failure, len(photos))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, ph := range photos {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ph Pending) {
			defer wg.Done()
			defer func() { <-sem }()

			key := objectKey(owner, stamp, i)
			if err := p.put(ctx, key, ph); err != nil {
				metrics.PhotoUploads.WithLabelValues("failed").Inc()
				p.log.Warn("photo upload failed, dropping photo",
					zap.String("owner_id", ownerID),
					zap.String("key", key),
					zap.String("tag", string(ph.Tag)),
					zap.Error(err))
				failed[i] = &Failure{Index: i, Tag: ph.Tag, Key: key, Err: err}
				return
			}
			metrics.PhotoUploads.WithLabelValues("ok").Inc()
			resolved[i] = &Resolved{URL: p.storage.PublicURL(key), Tag: ph.Tag, Index: i}
		}(i, ph)
	}
	wg.Wait()

	var res Result
	for i := range photos {
		if resolved[i] != nil {
			res.Resolved = append(res.Resolved, *resolved[i])
		}
		if failed[i] != nil {
			res.Failures = append(res.Failures, *failed[i])
		}
	}
	return res
}

func (p *Pipeline) put(ctx context.Context, key string, ph Pending) error {
	if len(ph.Data) == 0 {
		return errEmptyPhoto
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.putTimeout)
	defer cancel()
	return p.storage.Put(ctx, key, ph.Data, ContentType)
}

// objectKey follows {owner}_{unixMillis}_{index}-{random}.jpg.
func objectKey(owner string, stamp int64, index int) string {
	return fmt.Sprintf("%s_%d_%d-%s.jpg", owner, stamp, index, uuid.New().String()[:8])
}

func sanitizeOwner(ownerID string) string {
	owner := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, ownerID)
	if owner == "" {
		return "anonymous"
	}
	return owner
}
