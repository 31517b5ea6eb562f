package models

// Donation request lifecycle states. Any state may follow any other.
const (
	DonationPending    = "pending"
	DonationInProgress = "inprogress"
	DonationDone       = "done"
	DonationCanceled   = "canceled"
)

var DonationStatuses = []string{DonationPending, DonationInProgress, DonationDone, DonationCanceled}

const (
	DonationFieldRequesterEmail = "requesterEmail"
	DonationFieldStatus         = "donationStatus"
)

// DonationStatusUpdate is the body of PATCH /donation-requests/{id}/status
type DonationStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending inprogress done canceled"`
}
