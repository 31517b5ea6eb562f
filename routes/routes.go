// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bloodlink/controllers"
	"bloodlink/middleware"
	"bloodlink/utils"
)

// Controllers groups the handlers the route table binds
type Controllers struct {
	Users     *controllers.UserController
	Donations *controllers.DonationRequestController
	Blogs     *controllers.BlogController
	Stats     *controllers.StatsController
}

// RegisterRoutes sets up all the routes for the application. Admin routes
// require an admin JWT when jwtKey is set.
func RegisterRoutes(router *mux.Router, c Controllers, jwtKey []byte) {
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(jwtKey)(middleware.AdminMiddleware(jwtKey)(h))
	}

	router.HandleFunc("/", controllers.Home).Methods("GET")

	// User routes
	router.HandleFunc("/register", c.Users.Register).Methods("POST")
	router.HandleFunc("/login", c.Users.Login).Methods("POST")
	router.HandleFunc("/users/{email}", c.Users.GetUser).Methods("GET")
	router.HandleFunc("/users/{email}", c.Users.UpdateUser).Methods("PUT")
	router.HandleFunc("/donors", c.Users.GetDonors).Methods("GET")
	router.Handle("/users", admin(c.Users.ListUsers)).Methods("GET")
	router.Handle("/user/{id}", admin(c.Users.AdminUpdateUser)).Methods("PUT")

	// Donation request routes
	router.HandleFunc("/donation-requests", c.Donations.CreateDonationRequest).Methods("POST")
	router.HandleFunc("/donation-requests/{email}", c.Donations.ListRequesterDonationRequests).Methods("GET")
	router.HandleFunc("/donation-requests/{id}", c.Donations.UpdateDonationRequest).Methods("PUT")
	router.HandleFunc("/donation-requests/{id}", c.Donations.DeleteDonationRequest).Methods("DELETE")
	router.HandleFunc("/donation-requests/{id}/status", c.Donations.UpdateDonationStatus).Methods("PATCH")
	router.HandleFunc("/all-donation-requests", c.Donations.ListDonationRequests).Methods("GET")
	router.HandleFunc("/donation-requests-pending", c.Donations.ListPendingDonationRequests).Methods("GET")
	router.HandleFunc("/donation-request/{id}", c.Donations.GetDonationRequest).Methods("GET")

	// Blog routes
	router.HandleFunc("/blogs", c.Blogs.CreateBlog).Methods("POST")
	router.HandleFunc("/blogs", c.Blogs.ListBlogs).Methods("GET")
	router.HandleFunc("/blogs/{id}", c.Blogs.GetBlog).Methods("GET")
	router.HandleFunc("/blogs/{id}", c.Blogs.UpdateBlog).Methods("PUT")
	router.Handle("/blogs/{id}", admin(c.Blogs.DeleteBlog)).Methods("DELETE")
	router.Handle("/blog-status/{id}", admin(c.Blogs.UpdateBlogStatus)).Methods("PUT")
	router.HandleFunc("/published-blogs", c.Blogs.ListPublishedBlogs).Methods("GET")

	// Counters
	router.HandleFunc("/total-donors", c.Stats.TotalDonors).Methods("GET")
	router.HandleFunc("/total-donation-requests", c.Stats.TotalDonationRequests).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// NewHandler builds the router and wraps it with the request-scoped
// middleware. CORS sits outside the router so preflights never hit a 405.
func NewHandler(c Controllers, jwtKey []byte, allowedOrigins []string, logger logrus.FieldLogger) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c, jwtKey)

	var h http.Handler = router
	h = middleware.CORS(allowedOrigins)(h)
	h = middleware.Recoverer(logger)(h)
	h = middleware.Logger(logger)(h)
	h = middleware.RequestID(h)
	return h
}
