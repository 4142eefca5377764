package domain

// SupplierCandidate is the supplier the order service ranked closest to the
// customer. Produced by the first saga step, consumed by order creation.
type SupplierCandidate struct {
	ID      int64
	Name    string
	Address string
	City    string
	State   string
	Country string
	ZipCode string

	Latitude  float64
	Longitude float64

	// DistanceFromCustomer is in miles, as reported by the order service.
	DistanceFromCustomer float64

	EstimatedProductionTime string
	QualityRating           int
	Active                  bool

	ContactEmail string
	ContactPhone string
}
