package model

import "time"

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "Active"
	CustomerInactive CustomerStatus = "Inactive"
)

type Customer struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	PhoneNumber  string         `json:"phone_number"`
	Email        string         `json:"email"`
	Address      string         `json:"address"`
	PinHash      string         `json:"-"`
	AadharNumber string         `json:"aadhar_number"`
	DOB          string         `json:"dob"`
	Status       CustomerStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}
