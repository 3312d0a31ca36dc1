// Package source loads user records from sources other than the JSON data file.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	// Drivers selectable through DATA_DRIVER.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
)

// Drivers lists the database/sql driver names this package registers.
var Drivers = []string{"postgres", "mysql", "sqlite3"}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidTable is returned when the table name is not a plain identifier.
var ErrInvalidTable = errors.New("table name must be a plain identifier")

// SupportedDriver reports whether name is one of Drivers.
func SupportedDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}

// Open opens and pings a database handle for driver/dsn.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if !SupportedDriver(driver) {
		return nil, fmt.Errorf("unsupported driver %q (want one of %s)", driver, strings.Join(Drivers, ", "))
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// LoadSQL reads every row of table, ordered by id, into a user.MemoryStore.
// A NULL in any required column fails the whole load.
func LoadSQL(ctx context.Context, db *sql.DB, table string) (*user.MemoryStore, error) {
	source := "table " + table
	if !identPattern.MatchString(table) {
		return nil, &user.LoadError{Source: source, Index: -1, Err: ErrInvalidTable}
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(user.RequiredFields, ", "), table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &user.LoadError{Source: source, Index: -1, Err: err}
	}
	defer rows.Close()

	var users []user.User
	for i := 0; rows.Next(); i++ {
		var id sql.NullInt64
		var first, last, email, gender, ipAddress sql.NullString
		if err := rows.Scan(&id, &first, &last, &email, &gender, &ipAddress); err != nil {
			return nil, &user.LoadError{Source: source, Index: i, Err: err}
		}

		valid := []bool{id.Valid, first.Valid, last.Valid, email.Valid, gender.Valid, ipAddress.Valid}
		for col, ok := range valid {
			if !ok {
				return nil, &user.LoadError{Source: source, Index: i, Field: user.RequiredFields[col], Err: user.ErrMissingField}
			}
		}

		users = append(users, user.User{
			ID:        int(id.Int64),
			FirstName: first.String,
			LastName:  last.String,
			Email:     email.String,
			Gender:    gender.String,
			IPAddress: ipAddress.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &user.LoadError{Source: source, Index: -1, Err: err}
	}

	return user.NewMemoryStore(users), nil
}
