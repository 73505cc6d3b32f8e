package service

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	defaultMaxFileBytes = 5 * 1024 * 1024
	defaultMaxFiles     = 10
)

// UploadFile is one image received from a client.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService binds uploaded images to tickets.
type AttachmentService struct {
	store        repository.Store
	blobs        storage.BlobStore
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
	ticketFolder string
	tempFolder   string
	maxFileBytes int64
	maxFiles     int
}

// AttachmentDependencies bundles collaborators for the attachment service.
type AttachmentDependencies struct {
	Store        repository.Store
	Blobs        storage.BlobStore
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Clock        func() time.Time
	TicketFolder string
	TempFolder   string
	MaxFileBytes int64
	MaxFiles     int
}

// NewAttachmentService constructs the service.
func NewAttachmentService(deps AttachmentDependencies) *AttachmentService {
	s := &AttachmentService{
		store:        deps.Store,
		blobs:        deps.Blobs,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		now:          deps.Clock,
		ticketFolder: deps.TicketFolder,
		tempFolder:   deps.TempFolder,
		maxFileBytes: deps.MaxFileBytes,
		maxFiles:     deps.MaxFiles,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxFileBytes <= 0 {
		s.maxFileBytes = defaultMaxFileBytes
	}
	if s.maxFiles <= 0 {
		s.maxFiles = defaultMaxFiles
	}
	return s
}

// UploadAttachments stores files remotely, then records one attachment and
// one attachment_added event per file in a single transaction. Blobs are
// removed again if the transaction fails.
func (s *AttachmentService) UploadAttachments(ctx context.Context, actor domain.Actor, ticketID int64, files []UploadFile) ([]domain.Attachment, error) {
	ticket, err := s.mutableTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(files); err != nil {
		return nil, err
	}

	urls, err := s.upload(ctx, s.ticketFolder, files)
	if err != nil {
		return nil, err
	}

	now := s.now()
	attachments := make([]domain.Attachment, len(files))
	added := make([]domain.TicketEvent, len(files))
	for i, f := range files {
		attachments[i] = domain.Attachment{
			TicketID:         ticketID,
			OriginalFilename: f.Filename,
			StoredFilename:   urls[i],
			MimeType:         f.ContentType,
			Size:             f.Size,
			UploadedByID:     actor.ID,
			UploadedAt:       now,
		}
		added[i] = domain.AttachmentAdded(urls[i]).For(ticketID, actor.ID, now)
	}

	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		for i := range attachments {
			if err := tx.Attachments.Create(ctx, &attachments[i]); err != nil {
				return err
			}
		}
		return tx.Events.CreateMany(ctx, added)
	})
	if err != nil {
		s.destroyAll(ctx, urls)
		return nil, mapStoreError(err, "ticket")
	}

	if uploader, err := s.store.Repos().Users.GetByID(ctx, actor.ID); err == nil {
		ref := uploader.Ref()
		for i := range attachments {
			attachments[i].UploadedBy = &ref
		}
	}

	s.metrics.TicketEvents(added)
	publishEvent(ctx, s.dispatcher, actor, ticket, events.EventAttachmentsAdded, events.AttachmentsPayload{URLs: urls}, now)
	return attachments, nil
}

// DeleteAttachment removes an attachment of ticketID and records the
// deletion. The remote blob is removed afterwards on a best-effort basis.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, actor domain.Actor, ticketID, attachmentID int64) error {
	ticket, err := s.mutableTicket(ctx, actor, ticketID)
	if err != nil {
		return err
	}

	attachment, err := s.store.Repos().Attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return mapStoreError(err, "attachment")
	}
	if attachment.TicketID != ticketID {
		return apperrors.NewNotFound("attachment", nil)
	}

	now := s.now()
	deleted := []domain.TicketEvent{domain.AttachmentDeleted(attachment.StoredFilename).For(ticketID, actor.ID, now)}
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Attachments.Delete(ctx, attachmentID); err != nil {
			return err
		}
		return tx.Events.CreateMany(ctx, deleted)
	})
	if err != nil {
		return mapStoreError(err, "attachment")
	}

	s.destroyAll(ctx, []string{attachment.StoredFilename})
	s.metrics.TicketEvents(deleted)
	publishEvent(ctx, s.dispatcher, actor, ticket, events.EventAttachmentDeleted,
		events.AttachmentsPayload{URLs: []string{attachment.StoredFilename}}, now)
	return nil
}

// UploadTemporary stores images before a ticket exists and returns their
// URLs for a later CreateTicket call. No rows are written.
func (s *AttachmentService) UploadTemporary(ctx context.Context, actor domain.Actor, files []UploadFile) ([]string, error) {
	if !auth.CanCreate(actor) {
		return nil, apperrors.NewForbidden("role cannot upload images")
	}
	if err := s.validate(files); err != nil {
		return nil, err
	}
	urls, err := s.upload(ctx, s.tempFolder, files)
	if err != nil {
		return nil, err
	}
	return DedupeURLs(urls), nil
}

func (s *AttachmentService) mutableTicket(ctx context.Context, actor domain.Actor, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.store.Repos().Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	if !auth.CanMutate(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *AttachmentService) validate(files []UploadFile) error {
	if len(files) == 0 {
		return apperrors.NewBadRequest("no files uploaded", nil)
	}
	if len(files) > s.maxFiles {
		return apperrors.NewBadRequest("too many files", map[string]any{"max_files": s.maxFiles})
	}
	for _, f := range files {
		if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
			return apperrors.NewBadRequest("only image files are allowed", map[string]any{"filename": f.Filename})
		}
		if f.Size < 0 || f.Size > s.maxFileBytes {
			return apperrors.NewBadRequest("file too large", map[string]any{
				"filename":  f.Filename,
				"max_bytes": s.maxFileBytes,
			})
		}
	}
	return nil
}

// upload pushes every file or none: on failure the ones already stored are
// destroyed.
func (s *AttachmentService) upload(ctx context.Context, folder string, files []UploadFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		u, err := s.blobs.Upload(ctx, folder, storage.Object{
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
			Body:        f.Body,
		})
		if err != nil {
			s.destroyAll(ctx, urls)
			return nil, apperrors.NewInternalError(err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (s *AttachmentService) destroyAll(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.blobs.Destroy(context.WithoutCancel(ctx), u); err != nil {
			s.logger.Warn("remote attachment cleanup failed", zap.String("url", u), zap.Error(err))
		}
	}
}
