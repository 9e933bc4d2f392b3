package handlers

import (
	stderrors "errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roommate_service/authorization"
	"roommate_service/domain"
	"roommate_service/errors"
	application "roommate_service/service"
)

type ListingHandler struct {
	service *application.ListingService
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewListingHandler(service *application.ListingService, tracer trace.Tracer, logger *logrus.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *ListingHandler) Init(router *mux.Router) {
	router.HandleFunc("/", handler.Live).Methods(http.MethodGet)
	router.HandleFunc("/browse_listing", handler.GetAll).Methods(http.MethodGet)
	router.HandleFunc("/browse_listing/{email}", handler.GetByEmail).Methods(http.MethodGet)
	router.HandleFunc("/available-roommates", handler.GetAvailable).Methods(http.MethodGet)
	router.HandleFunc("/details/{id}", handler.Get).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/stats", handler.Stats).Methods(http.MethodGet)
	router.Handle("/add", handler.MiddlewareListingDeserialization(http.HandlerFunc(handler.Create))).Methods(http.MethodPost)
	router.HandleFunc("/like/{id}", handler.Like).Methods(http.MethodPut)
	router.Handle("/update-listing/{id}", handler.MiddlewareListingDeserialization(http.HandlerFunc(handler.Update))).Methods(http.MethodPut)
	router.HandleFunc("/delete-listing/{id}", handler.Delete).Methods(http.MethodDelete)
}

func (handler *ListingHandler) Live(writer http.ResponseWriter, req *http.Request) {
	jsonResponse("I'm live", writer)
}

func (handler *ListingHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetAll")
	defer span.End()

	query := domain.NewListingQuery(req.URL.Query().Get("search"), req.URL.Query().Get("sort"))
	listings, err := handler.service.GetAll(ctx, authorization.IdentityFromContext(ctx), query)
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(listings, writer)
}

func (handler *ListingHandler) GetByEmail(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetByEmail")
	defer span.End()

	email := mux.Vars(req)["email"]
	listings, err := handler.service.GetByEmail(ctx, authorization.IdentityFromContext(ctx), email)
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(listings, writer)
}

func (handler *ListingHandler) GetAvailable(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetAvailable")
	defer span.End()

	listings, err := handler.service.GetAvailable(ctx, authorization.IdentityFromContext(ctx))
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(listings, writer)
}

func (handler *ListingHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Get")
	defer span.End()

	listing, err := handler.service.Get(ctx, authorization.IdentityFromContext(ctx), mux.Vars(req)["id"])
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(listing, writer)
}

func (handler *ListingHandler) Stats(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Stats")
	defer span.End()

	stats, err := handler.service.Stats(ctx, authorization.IdentityFromContext(ctx))
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(stats, writer)
}

func (handler *ListingHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Create")
	defer span.End()

	raw := req.Context().Value(KeyListing{}).(map[string]interface{})
	input, err := domain.ParseListingInput(raw)
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}

	result, err := handler.service.Create(ctx, authorization.IdentityFromContext(ctx), input)
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(result, writer)
}

// Like ignores any userEmail in the body; the voter is the token's identity.
func (handler *ListingHandler) Like(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Like")
	defer span.End()

	result, err := handler.service.Like(ctx, authorization.IdentityFromContext(ctx), mux.Vars(req)["id"])
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(result, writer)
}

func (handler *ListingHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Update")
	defer span.End()

	raw := req.Context().Value(KeyListing{}).(map[string]interface{})
	patch, err := domain.ParseListingPatch(raw)
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}

	result, err := handler.service.Update(ctx, authorization.IdentityFromContext(ctx), mux.Vars(req)["id"], patch)
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(result, writer)
}

func (handler *ListingHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Delete")
	defer span.End()

	result, err := handler.service.Delete(ctx, authorization.IdentityFromContext(ctx), mux.Vars(req)["id"])
	if err != nil {
		handler.writeError(writer, span, err)
		return
	}
	jsonResponse(result, writer)
}

func (handler *ListingHandler) writeError(writer http.ResponseWriter, span trace.Span, err error) {
	var validationErr *errors.ValidationError
	switch {
	case stderrors.As(err, &validationErr):
		errorResponse(writer, http.StatusBadRequest, validationErr.Message)
	case stderrors.Is(err, errors.ErrInvalidID), stderrors.Is(err, errors.ErrEmptyUpdate):
		errorResponse(writer, http.StatusBadRequest, err.Error())
	case stderrors.Is(err, errors.ErrUnauthenticated):
		errorResponse(writer, http.StatusUnauthorized, err.Error())
	case stderrors.Is(err, errors.ErrForbidden):
		errorResponse(writer, http.StatusForbidden, err.Error())
	case stderrors.Is(err, errors.ErrNotFound):
		errorResponse(writer, http.StatusNotFound, err.Error())
	default:
		span.SetStatus(codes.Error, err.Error())
		handler.logger.WithError(err).Error("request failed")
		errorResponse(writer, http.StatusInternalServerError, errors.DatabaseError)
	}
}
