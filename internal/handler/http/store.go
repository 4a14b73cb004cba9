package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/utils"
	"github.com/hostlog/hostlog/models"
)

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.status").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	status, err := h.services.RecordService.Status(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.status").Msg("error getting record status")
		resp := responseFromError(err)
		http.Error(w, resp.message, resp.status)
		return
	}

	utils.WriteJSON(w, models.ToStatusResponse(status), http.StatusOK)
}

func (h *Handler) nextRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.nextRecords").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()

	host, err := models.ParseHostId(q.Get("host"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.nextRecords").Str("host", q.Get("host")).Msg("invalid host passed")
		http.Error(w, "invalid host passed", http.StatusBadRequest)
		return
	}

	tag := models.Tag(q.Get("tag"))
	if tag == "" {
		log.Error().Str("func", "*Handler.nextRecords").Msg("empty tag passed")
		http.Error(w, "empty tag passed", http.StatusBadRequest)
		return
	}

	// start defaults to 0, count to the service's page ceiling.
	var start uint64
	if raw := q.Get("start"); raw != "" {
		if start, err = strconv.ParseUint(raw, 10, 64); err != nil {
			log.Err(err).Str("func", "*Handler.nextRecords").Str("start", raw).Msg("invalid start passed")
			http.Error(w, "invalid start passed", http.StatusBadRequest)
			return
		}
	}

	count := 0
	if raw := q.Get("count"); raw != "" {
		if count, err = strconv.Atoi(raw); err != nil {
			log.Err(err).Str("func", "*Handler.nextRecords").Str("count", raw).Msg("invalid count passed")
			http.Error(w, "invalid count passed", http.StatusBadRequest)
			return
		}
	}

	records, err := h.services.RecordService.NextRecords(ctx, userID, host, tag, start, count)
	if err != nil {
		log.Err(err).Str("func", "*Handler.nextRecords").Msg("error getting records")
		resp := responseFromError(err)
		http.Error(w, resp.message, resp.status)
		return
	}

	utils.WriteJSON(w, models.RecordsPage{Records: records}, http.StatusOK)
}

func (h *Handler) addRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.addRecords").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var batch models.PushBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		log.Err(err).Str("func", "*Handler.addRecords").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.RecordService.AddRecords(ctx, userID, batch.Records); err != nil {
		log.Err(err).Str("func", "*Handler.addRecords").Int("count", len(batch.Records)).Msg("error adding records")
		resp := responseFromError(err)
		http.Error(w, resp.message, resp.status)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) wipeStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.wipeStore").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	if err := h.services.RecordService.Wipe(ctx, userID); err != nil {
		log.Err(err).Str("func", "*Handler.wipeStore").Msg("error wiping store")
		resp := responseFromError(err)
		http.Error(w, resp.message, resp.status)
		return
	}

	log.Info().Str("func", "*Handler.wipeStore").Int64("user_id", userID).Msg("store wiped")
	w.WriteHeader(http.StatusOK)
}
