package store

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwslabs/featreq/internal/api"
	"github.com/iwslabs/featreq/internal/convert"
	"github.com/iwslabs/featreq/internal/errs"
	"github.com/iwslabs/featreq/internal/event"
	"github.com/iwslabs/featreq/internal/model"
)

// RequestDetail owns the current request record and its open/closed
// attachment lists across clients.
type RequestDetail struct {
	tr     RequestTransport
	bus    *event.Bus
	log    *zap.Logger
	detail *model.RequestDetail
}

// NewRequestDetail constructs the detail store.
func NewRequestDetail(tr RequestTransport, bus *event.Bus, log *zap.Logger) *RequestDetail {
	if log == nil {
		log = zap.NewNop()
	}
	return &RequestDetail{tr: tr, bus: bus, log: log, detail: &model.RequestDetail{}}
}

// Detail returns the shared record consumers bind to.
func (s *RequestDetail) Detail() *model.RequestDetail { return s.detail }

// GetDetails loads one request. A repeated call for the cached id returns
// the shared record with no network calls. Otherwise the request record and
// its attachment lists are fetched concurrently; the cache is overwritten
// only once both succeed.
func (s *RequestDetail) GetDetails(ctx context.Context, id string) (*model.RequestDetail, error) {
	if id != "" && id == s.detail.Req.ID {
		return s.detail, nil
	}

	var (
		rec    api.ReqRecord
		open   []api.OpenReqRecord
		closed []api.ClosedReqRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = s.tr.RequestByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		open, closed, err = s.tr.RequestLists(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.detail.Req = convert.FeatureReqFromWire(rec)
	s.detail.Open = convert.OpenListFromWire(open)
	s.detail.Closed = convert.ClosedListFromWire(closed)
	s.bus.Publish(event.RequestSelected, s.detail)
	return s.detail, nil
}

// Add creates a request and then opens it for a client, as two dependent
// calls. Either failure aborts before the shared record is touched. Title,
// description, and the opening client are required up front.
func (s *RequestDetail) Add(ctx context.Context, req model.ReqPatch, open model.OpenPatch) (*model.RequestDetail, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errs.ErrTitleRequired
	}
	if req.Desc == nil || *req.Desc == "" {
		return nil, errs.ErrDescRequired
	}
	if open.ClientID == "" {
		return nil, errs.ErrClientRequired
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"title": *req.Title, "desc": *req.Desc}
	if req.RefURL != nil {
		fields["ref_url"] = *req.RefURL
	}
	if req.ProdArea != nil {
		fields["prod_area"] = *req.ProdArea
	}
	rec, err := s.tr.RequestAction(ctx, id.String(), "create", fields)
	if err != nil {
		return nil, err
	}

	ofields := map[string]any{"client_id": open.ClientID}
	addOptInt(ofields, "priority", open.Priority)
	addOptDate(ofields, "date_tgt", open.DateTgt)
	olist, clist, err := s.tr.OpenAction(ctx, rec.ID, "open", ofields)
	if err != nil {
		return nil, err
	}

	s.detail.Req = convert.FeatureReqFromWire(rec)
	s.detail.Open = convert.OpenListFromWire(olist)
	s.detail.Closed = convert.ClosedListFromWire(clist)
	s.log.Info("request created",
		zap.String("id", s.detail.Req.ID),
		zap.String("client", open.ClientID),
	)
	s.bus.Publish(event.RequestCreated, s.detail)
	return s.detail, nil
}

// Update diffs the editable request fields against the current record. The
// description is append-only: it is sent whenever present, never compared.
// A (nil, nil) return means nothing changed and no request was made.
func (s *RequestDetail) Update(ctx context.Context, patch model.ReqPatch) (*model.RequestDetail, error) {
	fields := make(map[string]any)
	if patch.Title != nil && *patch.Title != s.detail.Req.Title {
		fields["title"] = *patch.Title
	}
	if patch.RefURL != nil && *patch.RefURL != s.detail.Req.RefURL {
		fields["ref_url"] = *patch.RefURL
	}
	if patch.ProdArea != nil && *patch.ProdArea != s.detail.Req.ProdArea {
		fields["prod_area"] = *patch.ProdArea
	}
	if patch.Desc != nil && *patch.Desc != "" {
		fields["desc"] = *patch.Desc
	}
	if len(fields) == 0 {
		return nil, nil
	}
	rec, err := s.tr.RequestAction(ctx, s.detail.Req.ID, "update", fields)
	if err != nil {
		return nil, err
	}
	s.detail.Req = convert.FeatureReqFromWire(rec)
	s.bus.Publish(event.OpenRequestUpdated, &s.detail.Req)
	return s.detail, nil
}

// Open attaches the current request to another client. The client id is
// required; priority and target date are forwarded with the same key
// semantics as UpdateOpen. On success both attachment lists are replaced
// from the response.
func (s *RequestDetail) Open(ctx context.Context, patch model.OpenPatch) (*model.RequestDetail, error) {
	if patch.ClientID == "" {
		return nil, errs.ErrClientRequired
	}
	fields := map[string]any{"client_id": patch.ClientID}
	addOptInt(fields, "priority", patch.Priority)
	addOptDate(fields, "date_tgt", patch.DateTgt)

	olist, clist, err := s.tr.OpenAction(ctx, s.detail.Req.ID, "open", fields)
	if err != nil {
		return nil, err
	}
	s.detail.Open = convert.OpenListFromWire(olist)
	s.detail.Closed = convert.ClosedListFromWire(clist)
	s.bus.Publish(event.OpenRequestUpdated, &s.detail.Req)
	return s.detail, nil
}

// UpdateOpen patches one client's open attachment. The client id is
// required and checked before any network call. Priority and target date
// are sent whenever the patch carries them, including explicit nulls;
// an unset key is omitted entirely. A patch carrying neither is a vacuous
// success.
func (s *RequestDetail) UpdateOpen(ctx context.Context, patch model.OpenPatch) (*model.RequestDetail, error) {
	if patch.ClientID == "" {
		return nil, errs.ErrClientRequired
	}
	if !patch.Priority.Set && !patch.DateTgt.Set {
		return nil, nil
	}
	fields := map[string]any{"client_id": patch.ClientID}
	addOptInt(fields, "priority", patch.Priority)
	addOptDate(fields, "date_tgt", patch.DateTgt)

	olist, clist, err := s.tr.OpenAction(ctx, s.detail.Req.ID, "update", fields)
	if err != nil {
		return nil, err
	}
	s.detail.Open = convert.OpenListFromWire(olist)
	s.detail.Closed = convert.ClosedListFromWire(clist)
	s.bus.Publish(event.OpenRequestUpdated, &s.detail.Req)
	return s.detail, nil
}

// Close closes the request for one client, or across all clients when the
// patch has no client id. Status and reason are both required and checked
// before any network call. On success both attachment lists are replaced
// from the response.
func (s *RequestDetail) Close(ctx context.Context, patch model.ClosePatch) (*model.RequestDetail, error) {
	if patch.Status == "" {
		return nil, errs.ErrStatusRequired
	}
	if patch.Reason == "" {
		return nil, errs.ErrReasonRequired
	}
	fields := map[string]any{"status": patch.Status, "reason": patch.Reason}
	if patch.ClientID != "" {
		fields["client_id"] = patch.ClientID
	}
	olist, clist, err := s.tr.OpenAction(ctx, s.detail.Req.ID, "close", fields)
	if err != nil {
		return nil, err
	}
	s.detail.Open = convert.OpenListFromWire(olist)
	s.detail.Closed = convert.ClosedListFromWire(clist)
	s.log.Info("request closed",
		zap.String("id", s.detail.Req.ID),
		zap.String("status", patch.Status),
	)
	s.bus.Publish(event.OpenRequestClosed, s.detail)
	return s.detail, nil
}

// Clear resets the shared record for form reset and cache invalidation.
func (s *RequestDetail) Clear() *model.RequestDetail {
	*s.detail = model.RequestDetail{}
	return s.detail
}

func addOptInt(fields map[string]any, key string, opt model.OptInt) {
	if !opt.Set {
		return
	}
	if opt.Val == nil {
		fields[key] = nil
		return
	}
	fields[key] = *opt.Val
}

func addOptDate(fields map[string]any, key string, opt model.OptDate) {
	if !opt.Set {
		return
	}
	if opt.Val == nil {
		fields[key] = nil
		return
	}
	fields[key] = opt.Val.Format("2006-01-02")
}
