package orderservice

import (
	"time"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

// Wire representations of the order service's REST contract.

type supplierDTO struct {
	ID                      int64   `json:"id"`
	Name                    string  `json:"name"`
	Address                 string  `json:"address"`
	City                    string  `json:"city"`
	State                   string  `json:"state"`
	Country                 string  `json:"country"`
	ZipCode                 string  `json:"zipCode"`
	Latitude                float64 `json:"latitude"`
	Longitude               float64 `json:"longitude"`
	DistanceFromCustomer    float64 `json:"distanceFromCustomer"`
	EstimatedProductionTime string  `json:"estimatedProductionTime"`
	QualityRating           int     `json:"qualityRating"`
	IsActive                bool    `json:"isActive"`
	ContactEmail            string  `json:"contactEmail"`
	ContactPhone            string  `json:"contactPhone"`
}

func (d supplierDTO) toDomain() domain.SupplierCandidate {
	return domain.SupplierCandidate{
		ID:                      d.ID,
		Name:                    d.Name,
		Address:                 d.Address,
		City:                    d.City,
		State:                   d.State,
		Country:                 d.Country,
		ZipCode:                 d.ZipCode,
		Latitude:                d.Latitude,
		Longitude:               d.Longitude,
		DistanceFromCustomer:    d.DistanceFromCustomer,
		EstimatedProductionTime: d.EstimatedProductionTime,
		QualityRating:           d.QualityRating,
		Active:                  d.IsActive,
		ContactEmail:            d.ContactEmail,
		ContactPhone:            d.ContactPhone,
	}
}

type shippingAddressDTO struct {
	Street  string `json:"street"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type createOrderDTO struct {
	ProductID       string             `json:"productId"`
	SupplierID      int64              `json:"supplierId"`
	CustomerID      int64              `json:"customerId"`
	SellerID        int64              `json:"sellerId,omitempty"`
	Quantity        int                `json:"quantity"`
	STLFileURL      string             `json:"stlFileUrl,omitempty"`
	ShippingAddress shippingAddressDTO `json:"shippingAddress"`
}

func newCreateOrderDTO(draft domain.OrderDraft) createOrderDTO {
	return createOrderDTO{
		ProductID:  draft.ProductID,
		SupplierID: draft.SupplierID,
		CustomerID: draft.CustomerID,
		SellerID:   draft.SellerID,
		Quantity:   draft.Quantity,
		STLFileURL: draft.STLFileURL,
		ShippingAddress: shippingAddressDTO{
			Street:  draft.ShippingAddress.Street,
			Street2: draft.ShippingAddress.Street2,
			City:    draft.ShippingAddress.City,
			State:   draft.ShippingAddress.State,
			ZipCode: draft.ShippingAddress.ZipCode,
			Country: draft.ShippingAddress.Country,
		},
	}
}

type orderDTO struct {
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

func (d orderDTO) toDomain() domain.OrderRecord {
	return domain.OrderRecord{
		ID:         d.ID,
		ProductID:  d.ProductID,
		SupplierID: d.SupplierID,
		CustomerID: d.CustomerID,
		SellerID:   d.SellerID,
		Quantity:   d.Quantity,
		STLFileURL: d.STLFileURL,
		OrderDate:  d.OrderDate,
		Status:     domain.OrderStatus(d.Status),
	}
}
