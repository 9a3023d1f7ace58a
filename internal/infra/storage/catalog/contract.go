package catalog

import "github.com/m04kA/SMC-SpaBookingService/pkg/txmanager"

// DBExecutor *sql.DB или *sql.Tx
type DBExecutor = txmanager.DBExecutor
