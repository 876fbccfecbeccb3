/*
Package handler provides HTTP handler functions for user generation and waiting-queue management.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blahbluh/internal/pkg/errs"
	"blahbluh/internal/pkg/logx"
	"blahbluh/internal/pkg/req"
	"blahbluh/internal/pkg/resp"
)

// HandleGenerateUser mints a new anonymous identity with a random display name.
// It has no effect on queue or session state.
func HandleGenerateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := deps.Service.GenerateUser()
		if err != nil {
			logx.Error(err, "Failed to generate user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"userId":   u.ID,
			"username": u.Username,
		})
	}
}

type JoinQueueInput struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

// HandleJoinQueue places the user in the waiting queue and triggers an
// immediate pairing sweep. A missing identity is auto-generated; a user
// already paired or already queued is not enqueued again.
func HandleJoinQueue(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input JoinQueueInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		status, err := deps.Service.JoinQueue(input.UserID, input.Username)
		if err != nil {
			logx.Error(err, "Failed to join queue")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"userId":        status.User.ID,
			"username":      status.User.Username,
			"inQueue":       status.InQueue,
			"queuePosition": status.QueuePosition,
		})
	}
}

type LeaveQueueInput struct {
	UserID string `json:"userId"`
}

// HandleLeaveQueue removes the user from the waiting queue, or dissolves
// their active session (requeueing and notifying the partner).
func HandleLeaveQueue(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LeaveQueueInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		deps.Service.LeaveQueue(input.UserID)

		resp.RespondSuccess(w, r, map[string]any{
			"inQueue": false,
		})
	}
}

// HandleQueueStatus reports the user's queue standing. Unknown users are
// reported as not queued, without error.
func HandleQueueStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if userID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		status := deps.Service.Status(userID)

		resp.RespondSuccess(w, r, map[string]any{
			"inQueue":       status.InQueue,
			"queuePosition": status.QueuePosition,
			"totalInQueue":  status.TotalInQueue,
		})
	}
}
