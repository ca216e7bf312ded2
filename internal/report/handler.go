package report

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Spok95/erp-core/internal/reserve"
)

// Handler отдаёт xlsx по резервам заказа. Служебная админ-выгрузка;
// публичный ERP API живёт в отдельном слое.
type Handler struct {
	svc *reserve.Service
	log *slog.Logger
}

func NewHandler(svc *reserve.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// ServeHTTP: GET ?org_id=<uuid>&wo_id=<uuid>
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.URL.Query().Get("org_id"))
	if err != nil {
		http.Error(w, "bad org_id", http.StatusBadRequest)
		return
	}
	woID, err := uuid.Parse(r.URL.Query().Get("wo_id"))
	if err != nil {
		http.Error(w, "bad wo_id", http.StatusBadRequest)
		return
	}

	mats, err := h.svc.WorkOrderReservations(r.Context(), orgID, woID)
	if err != nil {
		if errors.Is(err, reserve.ErrNotFound) {
			http.Error(w, "work order not found", http.StatusNotFound)
			return
		}
		h.log.Error("reservation report failed", "wo_id", woID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	f, err := BuildWorkOrderReservations(mats)
	if err != nil {
		h.log.Error("xlsx build failed", "wo_id", woID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="wo-%s-reservations.xlsx"`, woID))
	if err := f.Write(w); err != nil {
		h.log.Error("xlsx write failed", "wo_id", woID, "err", err)
	}
}
