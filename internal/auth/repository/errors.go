package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	postgresUniqueViolation = "23505"
	mysqlDuplicateEntry     = 1062
)

func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == postgresUniqueViolation
}

func isMySQLUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
