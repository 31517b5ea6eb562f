package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/listing"
	"bloodlink/models"
	"bloodlink/store"
	"bloodlink/utils"
)

var userListing = listing.Spec{
	DefaultLimit: 6,
	Fields: []listing.Field{
		{Param: "status", Column: models.UserFieldStatus, Allowed: models.UserStatuses},
	},
}

// tokenTTL bounds the lifetime of tokens issued by Login
const tokenTTL = 24 * time.Hour

var donorFilters = []string{models.UserFieldBloodGroup, models.UserFieldDistrict, models.UserFieldUpazila}

// UserController handles user-related requests
type UserController struct {
	base
	Collection store.Collection
	Mailer     utils.Mailer
	// JWTKey signs login tokens; empty disables Login
	JWTKey []byte
}

// NewUserController creates a new UserController
func NewUserController(users store.Collection, mailer utils.Mailer, jwtKey []byte, logger logrus.FieldLogger, timeout time.Duration) *UserController {
	if mailer == nil {
		mailer = utils.NopMailer{}
	}
	return &UserController{
		base:       newBase(logger, timeout),
		Collection: users,
		Mailer:     mailer,
		JWTKey:     jwtKey,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	user, err := decodeDocument(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	email, _ := user[models.UserFieldEmail].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		utils.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}
	user[models.UserFieldEmail] = email

	if err := hashPassword(user); err != nil {
		uc.serverError(w, r, "Error hashing password", err)
		return
	}

	ctx, cancel := uc.storeCtx(r)
	defer cancel()

	// Check if user already exists. The unique index on email catches
	// concurrent registrations that pass this check.
	count, err := uc.Collection.CountDocuments(ctx, bson.M{models.UserFieldEmail: email})
	if err != nil {
		uc.serverError(w, r, "Database error", err)
		return
	}
	if count > 0 {
		utils.WriteError(w, http.StatusConflict, "User already exists")
		return
	}

	id, err := uc.Collection.InsertOne(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		utils.WriteError(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		uc.serverError(w, r, "Error creating user", err)
		return
	}

	name, _ := user["name"].(string)
	go func() {
		if err := uc.Mailer.SendWelcomeEmail(email, name); err != nil {
			utils.LogError(uc.Logger, "welcome email failed", err, logrus.Fields{"email": email})
		}
	}()

	utils.WriteJSON(w, http.StatusCreated, createdResponse{
		Success:    true,
		Message:    "User registered successfully",
		InsertedID: id,
	})
}

// Login checks a registered user's password and issues a signed token
// carrying the user's role
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	if len(uc.JWTKey) == 0 {
		utils.WriteError(w, http.StatusNotFound, "Login is not enabled")
		return
	}

	var creds models.LoginInput
	if err := decodeJSON(r, &creds); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if err := utils.Validate.Struct(creds); err != nil {
		utils.WriteValidationError(w, "Email and password are required", utils.ValidationDetails(err))
		return
	}

	ctx, cancel := uc.storeCtx(r)
	defer cancel()
	user, err := uc.Collection.FindOne(ctx, bson.M{models.UserFieldEmail: creds.Email})
	if isNotFound(err) {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		uc.serverError(w, r, "Server error", err)
		return
	}

	hashed, _ := user[models.UserFieldPassword].(string)
	if hashed == "" || bcrypt.CompareHashAndPassword([]byte(hashed), []byte(creds.Password)) != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if status, _ := user[models.UserFieldStatus].(string); status == models.UserStatusBlocked {
		utils.WriteError(w, http.StatusForbidden, "Account is blocked")
		return
	}

	role, _ := user[models.UserFieldRole].(string)
	if role == "" {
		role = models.RoleDonor
	}
	token, err := utils.GenerateJWT(uc.JWTKey, creds.Email, role, tokenTTL)
	if err != nil {
		uc.serverError(w, r, "Error generating token", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tokenResponse{Success: true, Token: token})
}

// GetUser retrieves a user by email
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	ctx, cancel := uc.storeCtx(r)
	defer cancel()
	user, err := uc.Collection.FindOne(ctx, bson.M{models.UserFieldEmail: email})
	if isNotFound(err) {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		uc.serverError(w, r, "Server error", err)
		return
	}

	scrubUser(user)
	utils.WriteJSON(w, http.StatusOK, user)
}

// UpdateUser sets the submitted fields on the user with the given email
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	fields, err := decodeDocument(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := hashPassword(fields); err != nil {
		uc.serverError(w, r, "Error hashing password", err)
		return
	}
	if len(fields) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := uc.storeCtx(r)
	defer cancel()
	uc.update(ctx, w, r, bson.M{models.UserFieldEmail: email}, fields)
}

// ListUsers returns a page of users, optionally filtered by status
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	uc.list(w, r, uc.Collection, userListing, nil, scrubUser)
}

// AdminUpdateUser changes role and/or status of the user with the given id
func (uc *UserController) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req models.AdminUserUpdate
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.Role = strings.TrimSpace(req.Role)
	req.Status = strings.TrimSpace(req.Status)
	if req.Role == "" && req.Status == "" {
		utils.WriteError(w, http.StatusBadRequest, "Role or status is required")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		if utils.HasFieldError(err, "role") {
			utils.WriteError(w, http.StatusBadRequest, "Invalid role value")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	fields := bson.M{}
	if req.Role != "" {
		fields[models.UserFieldRole] = req.Role
	}
	if req.Status != "" {
		fields[models.UserFieldStatus] = req.Status
	}

	ctx, cancel := uc.storeCtx(r)
	defer cancel()
	uc.update(ctx, w, r, bson.M{"_id": id}, fields)
}

// GetDonors lists users with the donor role, optionally narrowed by
// blood group and location. The result is not paginated.
func (uc *UserController) GetDonors(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{models.UserFieldRole: models.RoleDonor}
	query := r.URL.Query()
	for _, field := range donorFilters {
		if v := strings.TrimSpace(query.Get(field)); v != "" {
			filter[field] = v
		}
	}

	ctx, cancel := uc.storeCtx(r)
	defer cancel()
	donors, err := uc.Collection.Find(ctx, filter, 0, 0)
	if err != nil {
		uc.serverError(w, r, "Error fetching donors", err)
		return
	}
	for _, d := range donors {
		scrubUser(d)
	}
	utils.WriteJSON(w, http.StatusOK, donors)
}

func (uc *UserController) update(ctx context.Context, w http.ResponseWriter, r *http.Request, filter, fields bson.M) {
	matched, err := uc.Collection.UpdateOne(ctx, filter, fields)
	if errors.Is(err, store.ErrDuplicate) {
		utils.WriteError(w, http.StatusConflict, "Email is already in use")
		return
	}
	if err != nil {
		uc.serverError(w, r, "Error updating user", err)
		return
	}
	if matched == 0 {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	writeMessage(w, "User updated successfully")
}

// hashPassword replaces a plaintext password field with its bcrypt hash
func hashPassword(doc bson.M) error {
	raw, ok := doc[models.UserFieldPassword].(string)
	if !ok || raw == "" {
		delete(doc, models.UserFieldPassword)
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	doc[models.UserFieldPassword] = string(hashed)
	return nil
}

func scrubUser(doc bson.M) {
	delete(doc, models.UserFieldPassword)
}
