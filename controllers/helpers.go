package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bloodlink/listing"
	"bloodlink/middleware"
	"bloodlink/store"
	"bloodlink/utils"
)

const defaultStoreTimeout = 10 * time.Second

// base carries what every controller shares
type base struct {
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

func newBase(logger logrus.FieldLogger, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	return base{Logger: logger, Timeout: timeout}
}

// storeCtx bounds a store call by the request context and the store timeout
func (b base) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), b.Timeout)
}

// serverError logs err and writes a generic 500 envelope
func (b base) serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	utils.LogError(b.Logger, message, err, logrus.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})
	utils.WriteError(w, http.StatusInternalServerError, message)
}

// list runs a paginated listing and writes the envelope
func (b base) list(w http.ResponseWriter, r *http.Request, src listing.Source, spec listing.Spec, fixed bson.M, scrub func(bson.M)) {
	q, err := spec.Build(r.URL.Query(), fixed)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	ctx, cancel := b.storeCtx(r)
	defer cancel()
	env, err := listing.Run(ctx, src, q)
	if err != nil {
		b.serverError(w, r, "Error fetching data", err)
		return
	}
	if scrub != nil {
		for _, item := range env.Items {
			scrub(item)
		}
	}
	utils.WriteJSON(w, http.StatusOK, env)
}

// pathID parses the {id} route variable as an ObjectID
func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// decodeDocument reads a JSON object body as a loosely typed document.
// Client-supplied _id values are dropped.
func decodeDocument(r *http.Request) (bson.M, error) {
	var doc bson.M
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("body must be a JSON object")
	}
	delete(doc, "_id")
	return doc, nil
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type createdResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	InsertedID primitive.ObjectID `json:"insertedId"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type countResponse struct {
	Success bool  `json:"success"`
	Total   int64 `json:"total"`
}

func writeMessage(w http.ResponseWriter, message string) {
	utils.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: message})
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
