package router

import (
	"go-bank-ledger/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(
	customerHandler *handler.CustomerHandler,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	queryHandler *handler.QueryHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /api/customers", handler.ErrorHandlingMiddleware(customerHandler.CreateCustomer))
	mux.Handle("GET /api/customers", handler.ErrorHandlingMiddleware(customerHandler.ListCustomers))
	mux.Handle("GET /api/customers/{aadharNumber}", handler.ErrorHandlingMiddleware(customerHandler.GetCustomer))

	mux.Handle("POST /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.CreateAccount))
	mux.Handle("GET /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.ListAccounts))
	mux.Handle("GET /api/accounts/{accountNumber}", handler.ErrorHandlingMiddleware(accountHandler.GetAccount))

	mux.Handle("POST /api/transfers", handler.ErrorHandlingMiddleware(transactionHandler.CreateTransfer))
	mux.Handle("GET /api/accounts/{accountNumber}/transactions", handler.ErrorHandlingMiddleware(transactionHandler.ListTransactionsForAccount))
	mux.Handle("GET /api/accounts/{accountNumber}/transactions/export", handler.ErrorHandlingMiddleware(transactionHandler.ExportTransactionsForAccount))
	mux.Handle("GET /api/transactions", handler.ErrorHandlingMiddleware(transactionHandler.ListAllTransactions))
	mux.Handle("GET /api/transactions/export", handler.ErrorHandlingMiddleware(transactionHandler.ExportTransactions))

	mux.Handle("POST /api/queries", handler.ErrorHandlingMiddleware(queryHandler.CreateQuery))
	mux.Handle("GET /api/queries", handler.ErrorHandlingMiddleware(queryHandler.ListQueries))

	return handler.RequestIDMiddleware(mux)
}
