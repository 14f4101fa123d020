package repository

import (
	"database/sql"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

// IQueryRepository defines support-query persistence.
type IQueryRepository interface {
	CreateQuery(query *model.SupportQuery) error
	GetAllQueries() ([]*model.SupportQuery, error)
}

type QueryRepository struct {
	DB *sql.DB
}

func NewQueryRepository(db *sql.DB) *QueryRepository {
	return &QueryRepository{DB: db}
}

// CreateQuery adds a new support query to the database.
func (r *QueryRepository) CreateQuery(query *model.SupportQuery) error {
	log := logger.Log.WithFields(logrus.Fields{
		"name":  query.Name,
		"email": query.Email,
	})
	log.Info("Executing query to create a new support query")

	stmt := `INSERT INTO support_queries (name, email, message)
		VALUES ($1, $2, $3) RETURNING query_id, created_at`
	err := r.DB.QueryRow(stmt, query.Name, query.Email, query.Message).
		Scan(&query.ID, &query.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create support query")
		return err
	}
	return nil
}

// GetAllQueries retrieves every support query, newest first.
func (r *QueryRepository) GetAllQueries() ([]*model.SupportQuery, error) {
	logger.Log.Info("Executing query to get all support queries")

	stmt := `SELECT query_id, name, email, message, created_at
		FROM support_queries ORDER BY query_id DESC`
	rows, err := r.DB.Query(stmt)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all support queries")
		return nil, err
	}
	defer rows.Close()

	var queries []*model.SupportQuery
	for rows.Next() {
		var q model.SupportQuery
		if err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Message, &q.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan support query row")
			return nil, err
		}
		queries = append(queries, &q)
	}
	return queries, rows.Err()
}
