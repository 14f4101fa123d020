// cmd/main.go
package main

import (
	"go-bank-ledger/app"

	_ "go-bank-ledger/docs"
)

// @title           Go-Bank-Ledger API
// @version         1.0
// @description     A banking ledger with an atomic fund-transfer engine.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
func main() {
	app.Run()
}
