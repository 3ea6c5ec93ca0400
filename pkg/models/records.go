package models

import "time"

// GuestUser owns history written without a user id.
const GuestUser = "guest"

// ScanRecord is one persisted scan history entry.
type ScanRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserEmail string    `json:"userEmail"`
	ScanType  string    `json:"scanType"`
	Domain    string    `json:"domain"`
	URL       string    `json:"url"`
	Safety    string    `json:"safety"`
	IPAddress string    `json:"ipAddress"`
	Location  Location  `json:"location"`
	SSL       SSLInfo   `json:"ssl"`
	Timestamp time.Time `json:"timestamp"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Contact status values.
const (
	ContactPending = "pending"
)

type ContactMessage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      string    `json:"status"`
}
