package streak

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
	"github.com/guiguit045/tailored-trainer-coach/pkg"
)

type summaryService interface {
	Summary(ctx context.Context, target int) (*Summary, error)
}

type Handler struct {
	service summaryService
}

func NewHandler(service summaryService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/streak", handler.HandleSummary).Methods("GET", "OPTIONS").Name("streak")
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.streak.summary")
	defer span.End()

	target := 0
	if targetStr := r.URL.Query().Get("target"); targetStr != "" {
		var err error
		target, err = strconv.Atoi(targetStr)
		if err != nil || target < 1 {
			http.Error(w, "error, target must be a positive number", http.StatusBadRequest)
			return
		}
	}

	summary, err := handler.service.Summary(ctx, target)
	if err != nil {
		log.Errorf("failed to get streak summary: %s", err)
		http.Error(w, "failed to get streak summary", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal streak summary: %s", err)
		http.Error(w, "failed to get streak summary", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}
