package main

import (
	"encoding/json"
	"net/http"
	"time"
)

type envelope struct {
	Code        int   `json:"code"`
	CurrentTime int64 `json:"currentTime"`
	Data        any   `json:"data,omitempty"`
}

type errorEnvelope struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
}

func (api *restAPI) sendResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(envelope{
		Code:        status,
		CurrentTime: time.Now().UnixMilli(),
		Data:        data,
	})
	if err != nil {
		api.app.Logger.Error("failed to encode response", "error", err)
	}
}

func (api *restAPI) sendError(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(errorEnvelope{
		Code:        status,
		CurrentTime: time.Now().UnixMilli(),
		Text:        text,
	})
	if err != nil {
		api.app.Logger.Error("failed to encode error response", "error", err)
	}
}

func (api *restAPI) badRequestResponse(w http.ResponseWriter, text string) {
	api.sendError(w, http.StatusBadRequest, text)
}

func (api *restAPI) notFoundResponse(w http.ResponseWriter) {
	api.sendError(w, http.StatusNotFound, "resource not found")
}

func (api *restAPI) serverErrorResponse(w http.ResponseWriter, err error) {
	api.app.Logger.Error("request failed", "error", err)
	api.sendError(w, http.StatusInternalServerError, "internal server error")
}
