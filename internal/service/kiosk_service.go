// Package service exposes a kiosk session over Connect RPC.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/catalog"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/workflow"
)

// KioskServiceName is the fully-qualified name of the service.
const KioskServiceName = "kiosk.v1.KioskService"

const (
	KioskServiceGetViewProcedure  = "/" + KioskServiceName + "/GetView"
	KioskServiceDispatchProcedure = "/" + KioskServiceName + "/Dispatch"
	KioskServiceGetMenuProcedure  = "/" + KioskServiceName + "/GetMenu"
)

type GetViewRequest struct{}

type DispatchRequest struct {
	Command workflow.Command `json:"command"`
}

// ViewResponse carries the session after a call.
type ViewResponse struct {
	View workflow.View `json:"view"`
}

type GetMenuRequest struct {
	// Category filters items; empty means all.
	Category string `json:"category,omitempty"`
}

type GetMenuResponse struct {
	Categories  []string          `json:"categories"`
	Items       []models.MenuItem `json:"items"`
	AddOns      []models.AddOn    `json:"add_ons"`
	SugarLevels []string          `json:"sugar_levels"`
	MilkTypes   []string          `json:"milk_types"`
}

// KioskService implements the Connect KioskService for one terminal's session.
type KioskService struct {
	machine *workflow.Machine
	catalog catalog.Catalog
}

// NewKioskService creates a KioskService driving machine.
func NewKioskService(machine *workflow.Machine, cat catalog.Catalog) *KioskService {
	return &KioskService{machine: machine, catalog: cat}
}

// GetView returns the current session view.
func (s *KioskService) GetView(ctx context.Context, req *connect.Request[GetViewRequest]) (*connect.Response[ViewResponse], error) {
	v := s.machine.View()
	slog.Debug("GetView successful", "step", v.Step)
	return connect.NewResponse(&ViewResponse{View: v}), nil
}

// Dispatch applies one guest command.
func (s *KioskService) Dispatch(ctx context.Context, req *connect.Request[DispatchRequest]) (*connect.Response[ViewResponse], error) {
	cmd := req.Msg.Command
	slog.Info("Dispatch request received", "type", cmd.Type)

	e, err := cmd.Event()
	if err != nil {
		slog.Warn("Dispatch failed", "type", cmd.Type, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	v, err := s.machine.Dispatch(ctx, e)
	if err != nil {
		slog.Warn("Dispatch failed", "type", cmd.Type, "step", v.Step, "error", err)
		return nil, connect.NewError(codeFor(err), err)
	}

	slog.Info("Dispatch successful",
		"type", cmd.Type,
		"step", v.Step,
		"cart_count", v.CartCount,
		"order_number", v.OrderNumber,
	)
	return connect.NewResponse(&ViewResponse{View: v}), nil
}

// GetMenu lists the catalog and the customization options.
func (s *KioskService) GetMenu(ctx context.Context, req *connect.Request[GetMenuRequest]) (*connect.Response[GetMenuResponse], error) {
	slog.Info("GetMenu request received", "category", req.Msg.Category)

	items := s.catalog.Items()
	if req.Msg.Category != "" {
		items = s.catalog.ItemsIn(req.Msg.Category)
		if len(items) == 0 {
			slog.Warn("GetMenu failed", "category", req.Msg.Category)
			return nil, connect.NewError(connect.CodeNotFound, errors.New("unknown category"))
		}
	}

	slog.Info("GetMenu successful", "items_count", len(items))
	return connect.NewResponse(&GetMenuResponse{
		Categories:  s.catalog.Categories(),
		Items:       items,
		AddOns:      s.catalog.AddOns(),
		SugarLevels: models.SugarLevels,
		MilkTypes:   models.MilkTypes,
	}), nil
}

// codeFor maps a rejected event to a Connect code.
func codeFor(err error) connect.Code {
	switch {
	case errors.Is(err, workflow.ErrInvalidChoice),
		errors.Is(err, catalog.ErrItemNotFound):
		return connect.CodeInvalidArgument
	case errors.Is(err, workflow.ErrInvalidEvent),
		errors.Is(err, workflow.ErrActionDisabled),
		errors.Is(err, workflow.ErrEmptyCart),
		errors.Is(err, workflow.ErrCartLocked),
		errors.Is(err, workflow.ErrCustomizing),
		errors.Is(err, identity.ErrActionDisabled),
		errors.Is(err, identity.ErrUnexpectedInput),
		errors.Is(err, identity.ErrMemberLoginDisabled),
		errors.Is(err, payment.ErrActionDisabled),
		errors.Is(err, payment.ErrUnexpectedInput):
		return connect.CodeFailedPrecondition
	}
	return connect.CodeInternal
}

// NewKioskServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewKioskServiceHandler(svc *KioskService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec)}, opts...)

	readOnly := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	getView := connect.NewUnaryHandler(KioskServiceGetViewProcedure, svc.GetView, readOnly...)
	dispatch := connect.NewUnaryHandler(KioskServiceDispatchProcedure, svc.Dispatch, opts...)
	getMenu := connect.NewUnaryHandler(KioskServiceGetMenuProcedure, svc.GetMenu, readOnly...)

	return "/" + KioskServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case KioskServiceGetViewProcedure:
			getView.ServeHTTP(w, r)
		case KioskServiceDispatchProcedure:
			dispatch.ServeHTTP(w, r)
		case KioskServiceGetMenuProcedure:
			getMenu.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// KioskServiceClient calls a remote KioskService.
type KioskServiceClient struct {
	getView  *connect.Client[GetViewRequest, ViewResponse]
	dispatch *connect.Client[DispatchRequest, ViewResponse]
	getMenu  *connect.Client[GetMenuRequest, GetMenuResponse]
}

// NewKioskServiceClient constructs a client for the service at baseURL.
func NewKioskServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *KioskServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec)}, opts...)
	return &KioskServiceClient{
		getView:  connect.NewClient[GetViewRequest, ViewResponse](httpClient, baseURL+KioskServiceGetViewProcedure, opts...),
		dispatch: connect.NewClient[DispatchRequest, ViewResponse](httpClient, baseURL+KioskServiceDispatchProcedure, opts...),
		getMenu:  connect.NewClient[GetMenuRequest, GetMenuResponse](httpClient, baseURL+KioskServiceGetMenuProcedure, opts...),
	}
}

func (c *KioskServiceClient) GetView(ctx context.Context, req *connect.Request[GetViewRequest]) (*connect.Response[ViewResponse], error) {
	return c.getView.CallUnary(ctx, req)
}

func (c *KioskServiceClient) Dispatch(ctx context.Context, req *connect.Request[DispatchRequest]) (*connect.Response[ViewResponse], error) {
	return c.dispatch.CallUnary(ctx, req)
}

func (c *KioskServiceClient) GetMenu(ctx context.Context, req *connect.Request[GetMenuRequest]) (*connect.Response[GetMenuResponse], error) {
	return c.getMenu.CallUnary(ctx, req)
}
