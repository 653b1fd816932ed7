// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api serves read-only access to an authorizer over HTTP.
package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/luxfi/auth"
	"github.com/luxfi/auth/utils"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
)

const (
	ValidateProofPath = "/validate-proof"
	EpochPath         = "/epoch"
	HashForEpochPath  = "/epochs/:epoch"
	EpochForHashPath  = "/operators/:hash/epoch"
	HealthPath        = "/health"
	EventsPath        = "/events"
)

// Authorizer is the part of the authorizer the API exposes.
type Authorizer interface {
	ValidateProof(messageHash common.Hash, proof []byte) (bool, error)
	CurrentEpoch() uint64
	EpochForHash(hash auth.Fingerprint) (uint64, error)
	HashForEpoch(epoch uint64) (auth.Fingerprint, bool, error)
}

var _ Authorizer = (*auth.AuthWeighted)(nil)

type ValidateProofRequest struct {
	// hex-encoded 32 byte message digest, optionally prefixed with "0x".
	MessageHash string `json:"message-hash"`
	// hex-encoded proof, optionally prefixed with "0x".
	Proof string `json:"proof"`
}

type ValidateProofResponse struct {
	Valid bool `json:"valid"`
}

type EpochResponse struct {
	Epoch         uint64 `json:"epoch"`
	OperatorsHash string `json:"operators-hash,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	// Code is set for authorization faults.
	Code int32 `json:"code,omitempty"`
}

// NewHandler routes the API endpoints to authorizer. The event stream is
// only served when events is non-nil.
func NewHandler(logger log.Logger, authorizer Authorizer, events EventSource) http.Handler {
	h := &handler{
		log:        logger,
		authorizer: authorizer,
		events:     events,
	}

	router := httprouter.New()
	router.POST(ValidateProofPath, h.validateProof)
	router.GET(EpochPath, h.currentEpoch)
	router.GET(HashForEpochPath, h.hashForEpoch)
	router.GET(EpochForHashPath, h.epochForHash)
	router.Handler(http.MethodGet, HealthPath, NewHealthHandler(authorizer))
	if events != nil {
		router.GET(EventsPath, h.streamEvents)
	}
	return router
}

type handler struct {
	log        log.Logger
	authorizer Authorizer
	events     EventSource
}

func (h *handler) validateProof(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ValidateProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "Could not decode request body"
		h.log.Warn(msg, log.Err(err))
		writeJSONError(h.log, w, http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	digest, err := utils.DecodeHexString(req.MessageHash)
	if err != nil || len(digest) != common.HashLength {
		msg := "Could not decode message hash"
		h.log.Warn(msg, log.String("messageHash", req.MessageHash))
		writeJSONError(h.log, w, http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}
	proof, err := utils.DecodeHexString(req.Proof)
	if err != nil {
		msg := "Could not decode proof"
		h.log.Warn(msg, log.Err(err))
		writeJSONError(h.log, w, http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	valid, err := h.authorizer.ValidateProof(common.BytesToHash(digest), proof)
	if err != nil {
		var fault *auth.Error
		if errors.As(err, &fault) {
			writeJSONError(h.log, w, http.StatusUnprocessableEntity, ErrorResponse{
				Error: err.Error(),
				Code:  fault.Code,
			})
			return
		}
		h.log.Error("failed to validate proof", log.Err(err))
		writeJSONError(h.log, w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(h.log, w, http.StatusOK, ValidateProofResponse{Valid: valid})
}

func (h *handler) currentEpoch(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(h.log, w, http.StatusOK, EpochResponse{Epoch: h.authorizer.CurrentEpoch()})
}

func (h *handler) hashForEpoch(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	epoch, err := strconv.ParseUint(ps.ByName("epoch"), 10, 64)
	if err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, ErrorResponse{Error: "Epoch must be an unsigned integer"})
		return
	}

	hash, ok, err := h.authorizer.HashForEpoch(epoch)
	if err != nil {
		h.log.Error("failed to read operators hash", log.Uint64("epoch", epoch), log.Err(err))
		writeJSONError(h.log, w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		writeJSONError(h.log, w, http.StatusNotFound, ErrorResponse{Error: "No operators committed at epoch"})
		return
	}
	writeJSON(h.log, w, http.StatusOK, EpochResponse{
		Epoch:         epoch,
		OperatorsHash: encodeHash(hash),
	})
}

func (h *handler) epochForHash(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	b, err := utils.DecodeHexString(ps.ByName("hash"))
	if err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, ErrorResponse{Error: "Could not decode operators hash"})
		return
	}
	hash, err := ids.ToID(b)
	if err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, ErrorResponse{Error: "Operators hash must be 32 bytes"})
		return
	}

	epoch, err := h.authorizer.EpochForHash(hash)
	if err != nil {
		h.log.Error("failed to read epoch", log.Err(err))
		writeJSONError(h.log, w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(h.log, w, http.StatusOK, EpochResponse{
		Epoch:         epoch,
		OperatorsHash: encodeHash(hash),
	})
}

func encodeHash(hash auth.Fingerprint) string {
	return "0x" + hex.EncodeToString(hash[:])
}

func writeJSON(logger log.Logger, w http.ResponseWriter, httpStatusCode int, v interface{}) {
	resp, err := json.Marshal(v)
	if err != nil {
		msg := "Failed to marshal response"
		logger.Error(msg, log.Err(err))
		writeJSONError(logger, w, http.StatusInternalServerError, ErrorResponse{Error: msg})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	if _, err := w.Write(resp); err != nil {
		logger.Error("Error writing response", log.Err(err))
	}
}

func writeJSONError(logger log.Logger, w http.ResponseWriter, httpStatusCode int, e ErrorResponse) {
	resp, err := json.Marshal(e)
	if err != nil {
		msg := "Error marshalling JSON error response"
		logger.Error(msg, log.Err(err))
		resp = []byte(msg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)

	if _, err := w.Write(resp); err != nil {
		logger.Error("Error writing error response", log.Err(err))
	}
}
