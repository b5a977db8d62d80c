package storage

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// BulkItem names one object to download and the local path to write it to.
type BulkItem struct {
	Key    string
	Target string
}

// BulkResult is the outcome of one item in a bulk download.
type BulkResult struct {
	Key           string
	TargetPath    string
	Skipped       bool
	RetryAttempts int
	Duration      time.Duration
	Err           error
}

type bulkJob struct {
	index int
	item  BulkItem
}

// BulkDownload fetches every item through a bounded worker pool. Each item is
// retried per the configured policy; failures are recorded per item rather
// than aborting the batch. Results are returned in the order items were
// given, regardless of completion order.
//
// Cancelling the context stops new fetches from being issued. Items never
// attempted carry the context error, while completed work is preserved.
func BulkDownload(ctx context.Context, store ObjectStore, items []BulkItem, opts ...BulkOption) []BulkResult {
	if len(items) == 0 {
		return nil
	}

	options := BuildBulkOptions(opts...)

	jobs := make(chan bulkJob, len(items))
	results := make([]BulkResult, len(items))

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i := 0; i < options.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				var result BulkResult
				if ctx.Err() != nil {
					result = BulkResult{
						Key:        job.item.Key,
						TargetPath: job.item.Target,
						Err:        ctx.Err(),
					}
				} else {
					result = downloadOne(ctx, store, job.item, options)
				}
				results[job.index] = result

				if options.ProgressCallback != nil {
					mu.Lock()
					completed++
					options.ProgressCallback(completed, len(items), &results[job.index])
					mu.Unlock()
				}
			}
		}()
	}

	for i, item := range items {
		jobs <- bulkJob{index: i, item: item}
	}
	close(jobs)

	wg.Wait()

	return results
}

func downloadOne(ctx context.Context, store ObjectStore, item BulkItem, options BulkOptions) BulkResult {
	start := time.Now()
	result := BulkResult{
		Key:        item.Key,
		TargetPath: item.Target,
	}

	if options.Download.SkipExisting && !options.Download.Overwrite {
		if ok, _ := afero.Exists(options.TargetFs, item.Target); ok {
			result.Skipped = true
			result.Duration = time.Since(start)
			return result
		}
	}

	err := RetryOperation(ctx, options.Retry, func() error {
		result.RetryAttempts++
		return store.Download(ctx, item.Key, item.Target, WithOverwrite(true))
	})

	result.Err = err
	result.Duration = time.Since(start)

	return result
}
