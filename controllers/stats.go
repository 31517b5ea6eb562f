package controllers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"bloodlink/models"
	"bloodlink/store"
	"bloodlink/utils"
)

// StatsController serves dashboard counters
type StatsController struct {
	base
	Users    store.Collection
	Requests store.Collection
}

// NewStatsController creates a new StatsController
func NewStatsController(users, requests store.Collection, logger logrus.FieldLogger, timeout time.Duration) *StatsController {
	return &StatsController{base: newBase(logger, timeout), Users: users, Requests: requests}
}

// TotalDonors counts users with the donor role
func (sc *StatsController) TotalDonors(w http.ResponseWriter, r *http.Request) {
	sc.count(w, r, sc.Users, bson.M{models.UserFieldRole: models.RoleDonor})
}

// TotalDonationRequests counts all donation requests
func (sc *StatsController) TotalDonationRequests(w http.ResponseWriter, r *http.Request) {
	sc.count(w, r, sc.Requests, bson.M{})
}

func (sc *StatsController) count(w http.ResponseWriter, r *http.Request, coll store.Collection, filter bson.M) {
	ctx, cancel := sc.storeCtx(r)
	defer cancel()
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		sc.serverError(w, r, "Error counting documents", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, countResponse{Success: true, Total: n})
}

// Home is the liveness probe
func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("BloodLink server is running"))
}
