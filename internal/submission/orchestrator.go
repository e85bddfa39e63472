package submission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Catmanpooh/oort-hackathon/internal/factory"
	"github.com/Catmanpooh/oort-hackathon/internal/metrics"
	"github.com/Catmanpooh/oort-hackathon/internal/traits"
)

// AssetUploader stores a project's files. Implemented by *factory.Client.
type AssetUploader interface {
	Upload(ctx context.Context, projectName string, image, jsonFile *factory.File) error
}

// ObjectRegistrar records a minted object. Implemented by *factory.Client.
type ObjectRegistrar interface {
	RegisterObject(ctx context.Context, reg factory.ObjectRegistration) (string, error)
}

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StateRegisteringMetadata
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateRegisteringMetadata:
		return "registering_metadata"
	default:
		return "unknown"
	}
}

type Stage string

const (
	StageValidation   Stage = "validation"
	StageUpload       Stage = "upload"
	StageRegistration Stage = "registration"
)

// Outcome is the result of one Submit call. Err is nil on success; otherwise
// Stage names the phase that failed.
type Outcome struct {
	ID        uuid.UUID
	Stage     Stage
	Err       error
	Metadata  traits.Metadata
	ObjectURL string
}

func (o Outcome) Succeeded() bool { return o.Err == nil }

// Notice is the message shown to the user once the submission is over.
func (o Outcome) Notice() string {
	switch {
	case o.Err == nil:
		return "Your piece was registered!"
	case errors.Is(o.Err, ErrNotConnected):
		return "Connect your wallet!"
	case errors.Is(o.Err, ErrUnsupportedFeature):
		return "Token URI submissions are not available yet."
	case errors.Is(o.Err, ErrSubmissionInFlight):
		return "A submission is already running."
	}
	var verr *ValidationError
	if errors.As(o.Err, &verr) {
		return fmt.Sprintf("Please check %s (%s).", verr.Field, verr.Rule)
	}
	return "Unsuccessful please try again!"
}

// Notifier surfaces finished submissions to the user.
type Notifier interface {
	Notify(Outcome)
}

type NotifierFunc func(Outcome)

func (f NotifierFunc) Notify(o Outcome) { f(o) }

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithCatalog(catalog traits.Catalog) Option {
	return func(o *Orchestrator) { o.catalog = catalog }
}

func WithContractAddress(address string) Option {
	return func(o *Orchestrator) { o.contractAddress = address }
}

// Orchestrator runs submissions for one form: validate, upload the assets
// when there are any, generate traits, register. Phases run strictly in that
// order and the first failure ends the submission. Nothing is retried or
// rolled back.
type Orchestrator struct {
	wallet          Wallet
	uploader        AssetUploader
	registrar       ObjectRegistrar
	generator       *traits.Generator
	catalog         traits.Catalog
	contractAddress string
	notifier        Notifier
	logger          *logrus.Logger

	inFlight atomic.Bool
	state    atomic.Int32
}

func NewOrchestrator(wallet Wallet, uploader AssetUploader, registrar ObjectRegistrar, generator *traits.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		wallet:          wallet,
		uploader:        uploader,
		registrar:       registrar,
		generator:       generator,
		catalog:         traits.DefaultCatalog,
		contractAddress: factory.DefaultContractAddress,
		logger:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// InFlight reports whether a submission is between Validating and its
// terminal state.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Submit runs one submission to completion. While another submission is in
// flight it returns immediately with ErrSubmissionInFlight and does nothing
// else.
func (o *Orchestrator) Submit(ctx context.Context, form Form) (outcome Outcome) {
	id := uuid.New()
	if !o.inFlight.CompareAndSwap(false, true) {
		metrics.SubmissionsRejected.Inc()
		o.logger.WithField("submission_id", id).Warn("submission rejected: another one is in flight")
		return Outcome{ID: id, Err: ErrSubmissionInFlight}
	}

	defer func() {
		if r := recover(); r != nil {
			stage := stageOf(o.State())
			outcome = Outcome{ID: id, Stage: stage, Err: fmt.Errorf("%s panicked: %v", stage, r)}
		}
		o.finish(outcome)
	}()

	return o.run(ctx, id, form)
}

func (o *Orchestrator) run(ctx context.Context, id uuid.UUID, form Form) Outcome {
	log := o.logger.WithField("submission_id", id)

	o.transition(log, StateValidating)
	req, err := Validate(o.wallet, form)
	if err != nil {
		return Outcome{ID: id, Stage: StageValidation, Err: err}
	}
	log = log.WithFields(logrus.Fields{
		"project_name": req.ProjectName,
		"mode":         req.Mode.String(),
	})

	if req.Mode == ModeUpload && req.HasAssets() {
		o.transition(log, StateUploading)
		if err := o.uploader.Upload(ctx, req.ProjectName, req.Image, req.JSON); err != nil {
			return Outcome{ID: id, Stage: StageUpload, Err: &UploadError{Cause: err}}
		}
	}

	o.transition(log, StateRegisteringMetadata)
	metadata, err := o.generator.Generate(o.catalog)
	if err != nil {
		return Outcome{ID: id, Stage: StageRegistration, Err: &RegistrationError{Cause: err}}
	}

	objectURL, err := o.registrar.RegisterObject(ctx, factory.ObjectRegistration{
		Address:         req.WalletAddress,
		ContractAddress: o.contractAddress,
		Metadata:        metadata,
		ProjectName:     factory.NormalizeProjectName(req.ProjectName),
		ObjectName:      req.ObjectName(),
	})
	if err != nil {
		return Outcome{ID: id, Stage: StageRegistration, Err: &RegistrationError{Cause: err}, Metadata: metadata}
	}

	return Outcome{ID: id, Stage: StageRegistration, Metadata: metadata, ObjectURL: objectURL}
}

func (o *Orchestrator) transition(log *logrus.Entry, to State) {
	from := State(o.state.Swap(int32(to)))
	log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Debug("submission state changed")
}

func (o *Orchestrator) finish(outcome Outcome) {
	o.state.Store(int32(StateIdle))
	o.inFlight.Store(false)

	log := o.logger.WithFields(logrus.Fields{
		"submission_id": outcome.ID,
		"stage":         string(outcome.Stage),
	})
	if outcome.Succeeded() {
		metrics.SubmissionsTotal.WithLabelValues(string(outcome.Stage), "success").Inc()
		log.WithField("object_url", outcome.ObjectURL).Info("submission registered")
	} else {
		metrics.SubmissionsTotal.WithLabelValues(string(outcome.Stage), "failure").Inc()
		log.WithError(outcome.Err).Warn("submission failed")
	}

	if o.notifier != nil {
		o.notifier.Notify(outcome)
	}
}

func stageOf(s State) Stage {
	switch s {
	case StateUploading:
		return StageUpload
	case StateRegisteringMetadata:
		return StageRegistration
	default:
		return StageValidation
	}
}
