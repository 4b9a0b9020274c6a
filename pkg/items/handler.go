package items

import (
	"net/http"

	"simpleapp/itemsvc/pkg/api"
	"simpleapp/itemsvc/pkg/telemetry/logging"
)

// DefaultPrefix is the path prefix of the item routes.
const DefaultPrefix = "/api/v1/item"

// Handler serves the item API.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the item API handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register adds the item routes under prefix to mux.
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.Handle("POST "+prefix+"/create-item", api.Handle(h.logger, h.create))
	mux.Handle("GET "+prefix+"/get-item/{item_id}", api.Handle(h.logger, h.get))
	mux.Handle("PUT "+prefix+"/update-item/{item_id}", api.Handle(h.logger, h.update))
	mux.Handle("DELETE "+prefix+"/delete-item/{item_id}", api.Handle(h.logger, h.delete))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var req Request
	if err := api.DecodeJSON(r, &req); err != nil {
		return err
	}
	in, err := req.Validate()
	if err != nil {
		return err
	}

	item, err := h.service.Create(r.Context(), in)
	if err != nil {
		return err
	}
	api.WriteSuccess(w, http.StatusCreated, LogItemCreated, item)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := h.itemID(r)
	if err != nil {
		return err
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		return err
	}
	api.WriteSuccess(w, http.StatusOK, LogItemRetrieved, item)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := h.itemID(r)
	if err != nil {
		return err
	}

	var req Request
	if err := api.DecodeJSON(r, &req); err != nil {
		return err
	}
	in, err := req.Validate()
	if err != nil {
		return err
	}

	item, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		return err
	}
	api.WriteSuccess(w, http.StatusOK, LogItemUpdated, item)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := h.itemID(r)
	if err != nil {
		return err
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		return err
	}
	api.WriteSuccess(w, http.StatusOK, LogItemDeleted, map[string]any{"item_id": id})
	return nil
}

// itemID parses the item_id path value, logging rejected values.
func (h *Handler) itemID(r *http.Request) (int64, error) {
	raw := r.PathValue("item_id")
	id, err := ParseID(raw)
	if err != nil {
		h.logger.Warning(r.Context(), "Invalid item_id", map[string]any{
			"error_code": CodeInvalidID,
			"item_id":    raw,
		})
		return 0, err
	}
	return id, nil
}
