package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the access level attached to a user
type Role string

// User roles
const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment record
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// AdStatus is the review state of an advertisement
type AdStatus string

// Advertisement statuses
const (
	AdStatusPending  AdStatus = "pending"
	AdStatusApproved AdStatus = "approved"
	AdStatusRejected AdStatus = "rejected"
)

// Valid reports whether s is a known advertisement status
func (s AdStatus) Valid() bool {
	switch s {
	case AdStatusPending, AdStatusApproved, AdStatusRejected:
		return true
	}
	return false
}

// User represents a marketplace account
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Medicine represents a catalog entry listed by a seller
type Medicine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	GenericName string             `bson:"genericName,omitempty" json:"genericName,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Company     string             `bson:"company,omitempty" json:"company,omitempty"`
	MassUnit    string             `bson:"massUnit,omitempty" json:"massUnit,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Discount    float64            `bson:"discount" json:"discount"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	SellerEmail string             `bson:"sellerEmail" json:"sellerEmail"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// CartItem represents one line in a buyer's cart
type CartItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email       string             `bson:"email" json:"email"`
	MedicineID  string             `bson:"medicineId" json:"medicineId"`
	Name        string             `bson:"name" json:"name"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	SellerEmail string             `bson:"sellerEmail" json:"sellerEmail"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	TotalPrice  float64            `bson:"totalPrice" json:"totalPrice"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Payment represents a recorded checkout
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email         string             `bson:"email" json:"email"`
	SellerEmail   EmailList          `bson:"sellerEmail" json:"sellerEmail"`
	Price         float64            `bson:"price" json:"price"`
	Status        PaymentStatus      `bson:"status" json:"status"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	CartIDs       []string           `bson:"cartIds,omitempty" json:"cartIds,omitempty"`
	MedicinesName []string           `bson:"medicinesName,omitempty" json:"medicinesName,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
}

// Advertisement represents a seller's request to feature a medicine
type Advertisement struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	MedicineID   string             `bson:"medicineId" json:"medicineId"`
	MedicineName string             `bson:"medicineName" json:"medicineName"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	SellerEmail  string             `bson:"sellerEmail" json:"sellerEmail"`
	Status       AdStatus           `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// RevenueTotals holds the dashboard sums over payment records
type RevenueTotals struct {
	TotalRevenue float64 `json:"totalRevenue"`
	PaidTotal    float64 `json:"paidTotal"`
	PendingTotal float64 `json:"pendingTotal"`
}

// EmailList accepts either a single email or an array of emails in JSON
type EmailList []string

// UnmarshalJSON decodes a string or a string array
func (l *EmailList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = EmailList{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// UnmarshalBSONValue decodes a stored string or string array, so payments
// saved with a single seller email still load
func (l *EmailList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.String:
		single, ok := raw.StringValueOK()
		if !ok {
			return fmt.Errorf("malformed sellerEmail string")
		}
		if single == "" {
			*l = nil
		} else {
			*l = EmailList{single}
		}
		return nil
	case bsontype.Array:
		var many []string
		if err := raw.Unmarshal(&many); err != nil {
			return err
		}
		*l = many
		return nil
	case bsontype.Null, bsontype.Undefined:
		*l = nil
		return nil
	default:
		return fmt.Errorf("cannot decode %s into an email list", t)
	}
}

// Contains reports whether email is in the list
func (l EmailList) Contains(email string) bool {
	for _, e := range l {
		if e == email {
			return true
		}
	}
	return false
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `bson:"_id"`
	EventType   string    `bson:"eventType"`
	ProcessedAt time.Time `bson:"processedAt"`
}
