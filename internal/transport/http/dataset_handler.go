package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fraudscope/internal/dataprocessing"
	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/middleware"
	"fraudscope/internal/services"
	apiv1 "fraudscope/pkg/contracts/api/v1"
	"fraudscope/pkg/contracts/domain"
)

// DefaultHeadRows is used when the head request has no n parameter
const DefaultHeadRows = 5

// DatasetHandler handles dataset queries with RFC 7807 errors
type DatasetHandler struct {
	service      DatasetServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	headRows     int
}

// NewDatasetHandler creates a new dataset handler. headRows is the default
// row count of head requests.
func NewDatasetHandler(service DatasetServiceInterface, headRows int, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if headRows <= 0 {
		headRows = DefaultHeadRows
	}
	return &DatasetHandler{
		service:      service,
		validator:    middleware.NewValidator(logger),
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
		headRows:     headRows,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetSummary)
	r.Get("/head", h.GetHead)
	r.Get("/profile", h.GetProfile)
	return r
}

// GetSummary handles GET /api/dataset
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Summary())
}

// GetHead handles GET /api/dataset/head
func (h *DatasetHandler) GetHead(w http.ResponseWriter, r *http.Request) {
	n, err := middleware.QueryInt(r, "n", h.headRows)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	raw, err := middleware.QueryBool(r, "raw", false)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	req := apiv1.HeadRequest{N: n}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.handleError(w, r, err)
		return
	}

	table := h.service.Current()
	if raw {
		table = h.service.Raw()
	}
	if table == nil {
		h.handleError(w, r, services.ErrDatasetNotLoaded)
		return
	}

	head := table.Head(req.N)
	resp := apiv1.HeadResponse{
		Columns: head.ColumnNames(),
		Rows:    make([]map[string]domain.Value, 0, head.NumRows()),
	}
	for i := 0; i < head.NumRows(); i++ {
		resp.Rows = append(resp.Rows, head.RowMap(i))
	}
	render.JSON(w, r, resp)
}

// GetProfile handles GET /api/dataset/profile
func (h *DatasetHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.ProfileSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, profile)
}

// GetGroupRates handles GET /api/group-rates
func (h *DatasetHandler) GetGroupRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := apiv1.GroupRatesRequest{
		Group:  q.Get("group"),
		Target: q.Get("target"),
	}
	if req.Target == "" {
		req.Target = domain.DefaultTargetColumn
	}

	var err error
	if req.FilterTrue, err = middleware.QueryBool(r, "filter_true", false); err != nil {
		h.handleError(w, r, err)
		return
	}
	if req.Raw, err = middleware.QueryBool(r, "raw", false); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.handleError(w, r, err)
		return
	}

	rates, err := h.service.Aggregate(r.Context(), dataprocessing.AggregateOptions{
		GroupColumn:  req.Group,
		TargetColumn: req.Target,
		FilterTrue:   req.FilterTrue,
	}, req.Raw)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "group rates computed",
		slog.String("group", req.Group),
		slog.String("target", req.Target),
		slog.Int("rows", len(rates)))

	if rates == nil {
		rates = []domain.GroupRate{}
	}
	render.JSON(w, r, apiv1.GroupRatesResponse{
		Group:  req.Group,
		Target: req.Target,
		Rows:   rates,
	})
}

func (h *DatasetHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrDatasetNotLoaded) {
		err = apperrors.ErrDatasetNotLoaded
	}
	h.errorHandler.HandleError(w, r, err)
}
