// Package devstack hosts in-memory stand-ins for the supplier/order service
// and the payment service, so the orchestrator can be exercised locally
// without either dependency running. State lives in maps behind a mutex and
// is lost on restart.
package devstack

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type supplier struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	ZipCode   string  `json:"zipCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	DistanceFromCustomer    float64 `json:"distanceFromCustomer"`
	EstimatedProductionTime string  `json:"estimatedProductionTime"`
	QualityRating           int     `json:"qualityRating"`
	Active                  bool    `json:"isActive"`

	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

type order struct {
	ID         int64     `json:"id"`
	ProductID  string    `json:"productId"`
	SupplierID int64     `json:"supplierId"`
	CustomerID int64     `json:"customerId"`
	SellerID   int64     `json:"sellerId"`
	Quantity   int       `json:"quantity"`
	STLFileURL string    `json:"stlFileUrl"`
	OrderDate  time.Time `json:"orderDate"`
	Status     string    `json:"status"`
}

// OrderService is the in-memory supplier/order stub.
type OrderService struct {
	mu        sync.Mutex
	suppliers []supplier
	orders    map[int64]order
	nextID    int64
}

func NewOrderService() *OrderService {
	return &OrderService{
		suppliers: []supplier{
			{ID: 1, Name: "Brooklyn Print Works", City: "Brooklyn", State: "NY", Country: "US", ZipCode: "11201",
				Latitude: 40.6943, Longitude: -73.9903, EstimatedProductionTime: "2 days", QualityRating: 5, Active: true,
				ContactEmail: "orders@bkprintworks.example"},
			{ID: 2, Name: "Jersey Additive Labs", City: "Newark", State: "NJ", Country: "US", ZipCode: "07102",
				Latitude: 40.7357, Longitude: -74.1724, EstimatedProductionTime: "3 days", QualityRating: 4, Active: true,
				ContactEmail: "hello@jerseyadditive.example"},
			{ID: 3, Name: "Philly Fabrication", City: "Philadelphia", State: "PA", Country: "US", ZipCode: "19103",
				Latitude: 39.9526, Longitude: -75.1652, EstimatedProductionTime: "4 days", QualityRating: 4, Active: true,
				ContactEmail: "print@phillyfab.example"},
			{ID: 4, Name: "Dormant Printing Co", City: "Boston", State: "MA", Country: "US", ZipCode: "02108",
				Latitude: 42.3601, Longitude: -71.0589, EstimatedProductionTime: "5 days", QualityRating: 2, Active: false},
		},
		orders: make(map[int64]order),
		nextID: 1000,
	}
}

func (s *OrderService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/suppliers/closest", s.closestSupplier)
	r.Get("/suppliers/product/{productId}", s.suppliersForProduct)
	r.Post("/orders", s.createOrder)
	r.Get("/orders/{id}", s.getOrder)
	r.Put("/orders/{id}/status", s.updateOrderStatus)
	return r
}

func (s *OrderService) closestSupplier(w http.ResponseWriter, r *http.Request) {
	lat, _ := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	lon, _ := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	ranked := make([]supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		if !sup.Active {
			continue
		}
		sup.DistanceFromCustomer = haversineMiles(lat, lon, sup.Latitude, sup.Longitude)
		ranked = append(ranked, sup)
	}
	if len(ranked) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active suppliers"})
		return
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceFromCustomer < ranked[j].DistanceFromCustomer
	})
	writeJSON(w, http.StatusOK, ranked[0])
}

func (s *OrderService) suppliersForProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		if sup.Active {
			out = append(out, sup)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *OrderService) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  string `json:"productId"`
		SupplierID int64  `json:"supplierId"`
		CustomerID int64  `json:"customerId"`
		SellerID   int64  `json:"sellerId"`
		Quantity   int    `json:"quantity"`
		STLFileURL string `json:"stlFileUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" || req.SupplierID == 0 || req.Quantity <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "productId, supplierId and quantity are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	o := order{
		ID:         s.nextID,
		ProductID:  req.ProductID,
		SupplierID: req.SupplierID,
		CustomerID: req.CustomerID,
		SellerID:   req.SellerID,
		Quantity:   req.Quantity,
		STLFileURL: req.STLFileURL,
		OrderDate:  time.Now().UTC(),
		Status:     "PENDING",
	}
	s.orders[o.ID] = o
	slog.Info("devstack order created", "order_id", o.ID, "product_id", o.ProductID)
	writeJSON(w, http.StatusCreated, o)
}

func (s *OrderService) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *OrderService) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	o.Status = req.Status
	s.orders[id] = o
	writeJSON(w, http.StatusOK, o)
}

func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMiles = 3958.8
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
