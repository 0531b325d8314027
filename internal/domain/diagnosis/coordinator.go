package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/namaste/internal/domain/terminology"
	"github.com/ehr/namaste/internal/platform/metrics"
)

// Mirror forwards a committed diagnosis to the external registry.
// *terminology.Service satisfies it.
type Mirror interface {
	Submit(ctx context.Context, payload *terminology.DiagnosisPayload) (*terminology.SubmitResult, error)
}

// DefaultMirrorTimeout bounds the mirror step once it is detached from the
// request.
const DefaultMirrorTimeout = 10 * time.Second

const (
	rejectedReason         = "could not save diagnosis, please try again"
	unknownPatientReason   = "patient not found"
	unknownReferenceReason = "clinician or facility not found"
)

// Coordinator writes a diagnosis to the primary store and then, best effort,
// to the registry. The primary store is authoritative: a mirror failure never
// undoes or fails a commit.
type Coordinator struct {
	store         Store
	mirror        Mirror
	mirrorTimeout time.Duration
	logger        zerolog.Logger
}

func NewCoordinator(store Store, mirror Mirror, mirrorTimeout time.Duration, logger zerolog.Logger) *Coordinator {
	if mirrorTimeout <= 0 {
		mirrorTimeout = DefaultMirrorTimeout
	}
	return &Coordinator{
		store:         store,
		mirror:        mirror,
		mirrorTimeout: mirrorTimeout,
		logger:        logger.With().Str("component", "diagnosis").Logger(),
	}
}

// Commit inserts rec and, only if that succeeds, mirrors it. The mirror runs
// after the insert returns, never concurrently with it.
func (c *Coordinator) Commit(ctx context.Context, rec *Record) CommitResult {
	if rec == nil {
		return c.finish(CommitResult{Status: Rejected, Reason: rejectedReason, Err: fmt.Errorf("nil record")})
	}

	if err := c.store.Insert(ctx, rec); err != nil {
		log := c.logger.With().
			Str("record_id", rec.ID.String()).
			Str("patient_id", rec.PatientID.String()).
			Logger()
		switch {
		case errors.Is(err, ErrUnknownPatient):
			log.Warn().Err(err).Msg("diagnosis for unknown patient")
			return c.finish(CommitResult{Status: Rejected, Reason: unknownPatientReason, Err: err})
		case errors.Is(err, ErrUnknownReference):
			log.Warn().Err(err).Msg("diagnosis references unknown row")
			return c.finish(CommitResult{Status: Rejected, Reason: unknownReferenceReason, Err: err})
		}
		log.Error().Err(err).Msg("primary store insert failed")
		return c.finish(CommitResult{Status: Rejected, Reason: rejectedReason, Retry: true, Err: err})
	}

	// The record is already durable; a client disconnect must not stop the mirror.
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.mirrorTimeout)
	defer cancel()

	res, err := c.submit(mctx, rec.Payload())
	log := c.logger.With().Str("record_id", rec.ID.String()).Logger()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("registry mirror failed")
		return c.finish(CommitResult{Status: CommittedPrimaryOnly})
	case res == nil:
		log.Warn().Msg("registry mirror returned no result")
		return c.finish(CommitResult{Status: CommittedPrimaryOnly})
	case res.Offline:
		log.Warn().Msg("registry offline, diagnosis kept locally")
		return c.finish(CommitResult{Status: CommittedPrimaryOnly, MirrorMessage: res.Message})
	case !res.Accepted:
		log.Warn().Str("message", res.Message).Msg("registry refused diagnosis")
		return c.finish(CommitResult{Status: CommittedPrimaryOnly, MirrorMessage: res.Message})
	}

	log.Info().Msg("diagnosis committed and mirrored")
	return c.finish(CommitResult{Status: Committed, MirrorMessage: res.Message})
}

func (c *Coordinator) submit(ctx context.Context, payload *terminology.DiagnosisPayload) (res *terminology.SubmitResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("mirror panicked: %v", r)
		}
	}()
	return c.mirror.Submit(ctx, payload)
}

func (c *Coordinator) finish(r CommitResult) CommitResult {
	metrics.RecordCommit(string(r.Status))
	return r
}
