package repository

import (
	"database/sql"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

// ICustomerRepository defines customer persistence. Duplicate detection goes
// through ExistsByAadharNumber rather than inspecting driver error strings.
type ICustomerRepository interface {
	CreateCustomer(customer *model.Customer) error
	GetByAadharNumber(aadharNumber string) (*model.Customer, error)
	GetAllCustomers() ([]*model.Customer, error)
	ExistsByAadharNumber(aadharNumber string) (bool, error)
}

type CustomerRepository struct {
	DB *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

// CreateCustomer adds a new customer to the database.
func (r *CustomerRepository) CreateCustomer(customer *model.Customer) error {
	log := logger.Log.WithFields(logrus.Fields{
		"aadhar_number": customer.AadharNumber,
		"name":          customer.Name,
	})
	log.Info("Executing query to create a new customer")

	query := `INSERT INTO customers (name, phone_number, email, address, customer_pin, aadhar_number, dob, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING customer_id, created_at`
	err := r.DB.QueryRow(query, customer.Name, customer.PhoneNumber, customer.Email,
		customer.Address, customer.PinHash, customer.AadharNumber, customer.DOB, customer.Status).
		Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create customer query")
		return err
	}
	return nil
}

// GetByAadharNumber retrieves a customer by aadhar number, or sql.ErrNoRows.
func (r *CustomerRepository) GetByAadharNumber(aadharNumber string) (*model.Customer, error) {
	customer := &model.Customer{}
	query := `SELECT customer_id, name, phone_number, email, address, customer_pin, aadhar_number, to_char(dob, 'YYYY-MM-DD'), status, created_at
		FROM customers WHERE aadhar_number = $1`
	err := r.DB.QueryRow(query, aadharNumber).Scan(&customer.ID, &customer.Name,
		&customer.PhoneNumber, &customer.Email, &customer.Address, &customer.PinHash,
		&customer.AadharNumber, &customer.DOB, &customer.Status, &customer.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("aadhar_number", aadharNumber).
				Error("Failed to execute query for customer by aadhar number")
		}
		return nil, err
	}
	return customer, nil
}

// GetAllCustomers retrieves all customers from the database.
func (r *CustomerRepository) GetAllCustomers() ([]*model.Customer, error) {
	logger.Log.Info("Executing query to get all customers")

	query := `SELECT customer_id, name, phone_number, email, address, customer_pin, aadhar_number, to_char(dob, 'YYYY-MM-DD'), status, created_at
		FROM customers ORDER BY customer_id`
	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all customers")
		return nil, err
	}
	defer rows.Close()

	var customers []*model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.Email, &c.Address,
			&c.PinHash, &c.AadharNumber, &c.DOB, &c.Status, &c.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan customer row")
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

// ExistsByAadharNumber reports whether a customer with the aadhar number is
// already registered.
func (r *CustomerRepository) ExistsByAadharNumber(aadharNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE aadhar_number = $1)`
	if err := r.DB.QueryRow(query, aadharNumber).Scan(&exists); err != nil {
		logger.Log.WithError(err).WithField("aadhar_number", aadharNumber).
			Error("Failed to execute customer existence check")
		return false, err
	}
	return exists, nil
}
