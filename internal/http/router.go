package http

import (
	"net/http"

	"fleet-backend/internal/handlers"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Bills        *handlers.BillHandler
	Payments     *handlers.PaymentHandler
	Transactions *handlers.TransactionHandler
	Loads        *handlers.LoadHandler
	Fleet        *handlers.FleetHandler
	Customers    *handlers.CustomerHandler
	Reports      *handlers.ReportHandler
	ActionLogs   *handlers.AdminActionLogHandler
	Health       *handlers.HealthHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")

	// Admin only, registered ahead of the general /api subrouter
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.RequireRole(models.RoleAdmin))
	usersAPI.HandleFunc("", h.Users.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", h.Users.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/{id}", h.Users.DeleteUser).Methods("DELETE")

	actionLogsAPI := r.PathPrefix("/api/action-logs").Subrouter()
	actionLogsAPI.Use(authMiddleware.RequireRole(models.RoleAdmin))
	actionLogsAPI.HandleFunc("", h.ActionLogs.ListActionLogs).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Bills
	api.HandleFunc("/bills", h.Bills.List).Methods("GET")
	api.HandleFunc("/bills", h.Bills.Create).Methods("POST")
	api.HandleFunc("/bills/{id}", h.Bills.Get).Methods("GET")
	api.HandleFunc("/bills/{id}", h.Bills.Update).Methods("PUT")
	api.HandleFunc("/bills/{id}", h.Bills.Delete).Methods("DELETE")
	api.HandleFunc("/bills/{id}/installments", h.Bills.AddInstallment).Methods("POST")
	api.HandleFunc("/bills/{id}/installments/{installmentId}", h.Bills.UpdateInstallment).Methods("PUT")
	api.HandleFunc("/bills/{id}/installments/{installmentId}", h.Bills.DeleteInstallment).Methods("DELETE")
	api.HandleFunc("/bills/{id}/receipt", h.Bills.Receipt).Methods("GET")

	// Payments
	api.HandleFunc("/payments", h.Payments.List).Methods("GET")
	api.HandleFunc("/payments", h.Payments.Create).Methods("POST")
	api.HandleFunc("/payments/{id}", h.Payments.Get).Methods("GET")
	api.HandleFunc("/payments/{id}", h.Payments.Update).Methods("PUT")
	api.HandleFunc("/payments/{id}", h.Payments.Delete).Methods("DELETE")
	api.HandleFunc("/payments/{id}/installments", h.Payments.AddInstallment).Methods("POST")
	api.HandleFunc("/payments/{id}/installments/{installmentId}", h.Payments.UpdateInstallment).Methods("PUT")
	api.HandleFunc("/payments/{id}/installments/{installmentId}", h.Payments.DeleteInstallment).Methods("DELETE")
	api.HandleFunc("/payments/{id}/receipt", h.Payments.Receipt).Methods("GET")

	// Rental transactions
	api.HandleFunc("/transactions/rental", h.Transactions.CreateRental).Methods("POST")
	api.HandleFunc("/transactions/rental/{idOrCode}", h.Transactions.GetRental).Methods("GET")
	api.HandleFunc("/transactions/rental/{idOrCode}", h.Transactions.UpdateRental).Methods("PUT")

	// Loads
	api.HandleFunc("/loads", h.Loads.List).Methods("GET")
	api.HandleFunc("/loads", h.Loads.Create).Methods("POST")
	api.HandleFunc("/loads/{id}", h.Loads.Get).Methods("GET")
	api.HandleFunc("/loads/{id}", h.Loads.Delete).Methods("DELETE")
	api.HandleFunc("/loads/{id}/assign-driver", h.Loads.AssignDriver).Methods("POST")
	api.HandleFunc("/loads/{id}/start", h.Loads.Start).Methods("POST")
	api.HandleFunc("/loads/{id}/complete", h.Loads.Complete).Methods("POST")
	api.HandleFunc("/loads/{id}/cancel", h.Loads.Cancel).Methods("POST")

	// Reference entities
	api.HandleFunc("/companies", h.Fleet.ListCompanies).Methods("GET")
	api.HandleFunc("/companies", h.Fleet.CreateCompany).Methods("POST")
	api.HandleFunc("/companies/{id}", h.Fleet.GetCompany).Methods("GET")
	api.HandleFunc("/drivers", h.Fleet.ListDrivers).Methods("GET")
	api.HandleFunc("/drivers", h.Fleet.CreateDriver).Methods("POST")
	api.HandleFunc("/drivers/{id}", h.Fleet.GetDriver).Methods("GET")
	api.HandleFunc("/vehicles", h.Fleet.ListVehicles).Methods("GET")
	api.HandleFunc("/vehicles", h.Fleet.CreateVehicle).Methods("POST")
	api.HandleFunc("/vehicles/{id}", h.Fleet.GetVehicle).Methods("GET")
	api.HandleFunc("/customers", h.Customers.ListCustomers).Methods("GET")
	api.HandleFunc("/customers", h.Customers.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers/{id}", h.Customers.GetCustomer).Methods("GET")

	// Dashboard and reports
	api.HandleFunc("/dashboard/monthly-rental-analytics", h.Reports.MonthlyRentalAnalytics).Methods("GET")
	api.HandleFunc("/dashboard/summary", h.Reports.Dashboard).Methods("GET")
	api.HandleFunc("/reports/profit-loss", h.Reports.ProfitLoss).Methods("GET")
	api.HandleFunc("/reports/profit-loss/csv", h.Reports.ProfitLossCSV).Methods("GET")
	api.HandleFunc("/reports/profit-loss/pdf", h.Reports.ProfitLossPDF).Methods("GET")
	api.HandleFunc("/reports/bills-summary", h.Reports.BillsSummary).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Wrap applies the global middleware chain around the router.
func Wrap(router http.Handler, cors func(http.Handler) http.Handler) http.Handler {
	return middleware.RequestLogging(middleware.PanicRecovery(middleware.MetricsMiddleware(cors(router))))
}
