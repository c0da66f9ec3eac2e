package extraction

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/pkg/jobcontext"
)

// BatchResult is the outcome of one transcript's extraction within a batch.
// A batch never aborts: failed transcripts carry their error here while the
// rest complete normally.
type BatchResult struct {
	TranscriptID string
	Result       *signals.ExtractionResult
	Err          error
}

// ExtractBatch runs extraction across transcripts with a bounded worker pool.
// Each transcript is an independent unit of work; results preserve input order.
func (s *extractionService) ExtractBatch(ctx context.Context, transcripts []*signals.Transcript) []BatchResult {
	results := make([]BatchResult, len(transcripts))
	if len(transcripts) == 0 {
		return results
	}

	workers := s.cfg.Extract.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(transcripts) {
		workers = len(transcripts)
	}

	type job struct {
		idx        int
		transcript *signals.Transcript
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobs {
				transcriptID := j.transcript.CallMetadata.CallID
				jobCtx, cancel := jobcontext.JobBegin(ctx, jobcontext.JobTypeExtract, transcriptID, workerID)
				meta := jobcontext.GetJobMetadata(jobCtx)

				if s.logger != nil {
					s.logger.Info("batch job started",
						zap.String("job_id", meta.JobID.String()),
						zap.String("transcript_id", transcriptID),
						zap.Int("worker_id", workerID),
					)
				}

				result, err := s.Extract(jobCtx, j.transcript)
				results[j.idx] = BatchResult{TranscriptID: transcriptID, Result: result, Err: err}

				if err != nil && s.logger != nil {
					s.logger.Error("batch job failed",
						zap.String("job_id", meta.JobID.String()),
						zap.String("transcript_id", transcriptID),
						zap.Error(err),
					)
				}
				cancel()
			}
		}(w)
	}

	for i, t := range transcripts {
		select {
		case jobs <- job{idx: i, transcript: t}:
		case <-ctx.Done():
			results[i] = BatchResult{TranscriptID: t.CallMetadata.CallID, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
