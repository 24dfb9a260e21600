package handler

import (
	"net/http"
	"strings"

	"go-character-api/internal/model"
	"go-character-api/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta := h.service.Query(model.AuditQuery{
		Action: strings.TrimSpace(query.Get("action")),
		Page:   parseIntOrDefault(query.Get("page"), 1),
		Limit:  parseIntOrDefault(query.Get("limit"), 50),
	})

	writeJSON(w, http.StatusOK, model.AuditListResponse{Items: items, Meta: meta})
}
