package dto

import (
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/shop"
)

// RegisterRequest for user registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// CreateShopRequest for opening a new shop.
type CreateShopRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateShopRequest) ToEntity(ownerID id.ID) *shop.Shop {
	sh := shop.NewShop(ownerID, r.Name)
	sh.Address = r.Address
	sh.ContactNumber = r.ContactNumber
	return sh
}
