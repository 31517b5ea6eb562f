package controllers

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bloodlink/listing"
	"bloodlink/models"
	"bloodlink/store"
	"bloodlink/utils"
)

var (
	requesterListing = listing.Spec{
		DefaultLimit: 5,
		Fields: []listing.Field{
			{Param: "status", Column: models.DonationFieldStatus, Normalize: strings.ToLower, Allowed: models.DonationStatuses},
		},
	}
	donationListing = listing.Spec{
		DefaultLimit: 5,
		Fields: []listing.Field{
			{Param: "status", Column: models.DonationFieldStatus, Allowed: models.DonationStatuses},
		},
	}
)

// DonationRequestController handles donation request lifecycle
type DonationRequestController struct {
	base
	Collection store.Collection
	Mailer     utils.Mailer
}

// NewDonationRequestController creates a new DonationRequestController
func NewDonationRequestController(requests store.Collection, mailer utils.Mailer, logger logrus.FieldLogger, timeout time.Duration) *DonationRequestController {
	if mailer == nil {
		mailer = utils.NopMailer{}
	}
	return &DonationRequestController{
		base:       newBase(logger, timeout),
		Collection: requests,
		Mailer:     mailer,
	}
}

// CreateDonationRequest stores the submitted request as is
func (dc *DonationRequestController) CreateDonationRequest(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if len(doc) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Donation request is empty")
		return
	}

	ctx, cancel := dc.storeCtx(r)
	defer cancel()
	id, err := dc.Collection.InsertOne(ctx, doc)
	if err != nil {
		dc.serverError(w, r, "Failed to create donation request. Please try again.", err)
		return
	}

	if email, _ := doc[models.DonationFieldRequesterEmail].(string); email != "" {
		go func() {
			if err := dc.Mailer.SendDonationRequestEmail(email, id.Hex()); err != nil {
				utils.LogError(dc.Logger, "donation request email failed", err, logrus.Fields{"email": email, "id": id.Hex()})
			}
		}()
	}

	utils.WriteJSON(w, http.StatusCreated, createdResponse{
		Success:    true,
		Message:    "Donation request created successfully!",
		InsertedID: id,
	})
}

// ListRequesterDonationRequests returns a page of one requester's requests
func (dc *DonationRequestController) ListRequesterDonationRequests(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	dc.list(w, r, dc.Collection, requesterListing, bson.M{models.DonationFieldRequesterEmail: email}, nil)
}

// ListDonationRequests returns a page of all requests
func (dc *DonationRequestController) ListDonationRequests(w http.ResponseWriter, r *http.Request) {
	dc.list(w, r, dc.Collection, donationListing, nil, nil)
}

// ListPendingDonationRequests returns every pending request, unpaginated
func (dc *DonationRequestController) ListPendingDonationRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dc.storeCtx(r)
	defer cancel()
	docs, err := dc.Collection.Find(ctx, bson.M{models.DonationFieldStatus: models.DonationPending}, 0, 0)
	if err != nil {
		dc.serverError(w, r, "Error fetching donation requests", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, docs)
}

// GetDonationRequest retrieves a single request by id
func (dc *DonationRequestController) GetDonationRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	ctx, cancel := dc.storeCtx(r)
	defer cancel()
	doc, err := dc.Collection.FindOne(ctx, bson.M{"_id": id})
	if isNotFound(err) {
		utils.WriteError(w, http.StatusNotFound, "Donation request not found")
		return
	}
	if err != nil {
		dc.serverError(w, r, "Error fetching donation request", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, doc)
}

// UpdateDonationRequest sets every submitted field on the request. A
// submitted donationStatus must still be one of the known statuses.
func (dc *DonationRequestController) UpdateDonationRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	fields, err := decodeDocument(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if len(fields) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if v, present := fields[models.DonationFieldStatus]; present {
		status, _ := v.(string)
		if !slices.Contains(models.DonationStatuses, status) {
			utils.WriteError(w, http.StatusBadRequest, "Invalid status value")
			return
		}
	}
	dc.update(w, r, id, fields, "Donation request updated successfully")
}

// UpdateDonationStatus moves a request to another status
func (dc *DonationRequestController) UpdateDonationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req models.DonationStatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid status value")
		return
	}
	dc.update(w, r, id, bson.M{models.DonationFieldStatus: req.Status}, "Donation status updated successfully")
}

// DeleteDonationRequest removes a request
func (dc *DonationRequestController) DeleteDonationRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	ctx, cancel := dc.storeCtx(r)
	defer cancel()
	deleted, err := dc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		dc.serverError(w, r, "Error deleting donation request", err)
		return
	}
	if deleted == 0 {
		utils.WriteError(w, http.StatusNotFound, "Donation request not found")
		return
	}
	writeMessage(w, "Donation request deleted successfully")
}

func (dc *DonationRequestController) update(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, fields bson.M, message string) {
	ctx, cancel := dc.storeCtx(r)
	defer cancel()
	matched, err := dc.Collection.UpdateOne(ctx, bson.M{"_id": id}, fields)
	if err != nil {
		dc.serverError(w, r, "Error updating donation request", err)
		return
	}
	if matched == 0 {
		utils.WriteError(w, http.StatusNotFound, "Donation request not found")
		return
	}
	writeMessage(w, message)
}
